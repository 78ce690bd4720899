package records

import (
	"context"
	"crypto/tls"
	"errors"
	"strings"
	"time"

	"github.com/golang/glog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cryptichearts/backend/internal/protocol"
)

var ErrMongoBadInput = errors.New("records: mongo uri and database are required")

// MongoBackend keeps every tenant in one "records" collection.
type MongoBackend struct {
	client     *mongo.Client
	db         *mongo.Database
	recordsCol *mongo.Collection
}

type mongoRecordDoc struct {
	ID           string        `bson:"_id"`
	Tenant       string        `bson:"tenant"`
	RecordID     string        `bson:"record_id"`
	ContextID    string        `bson:"context_id"`
	ParentID     string        `bson:"parent_id,omitempty"`
	Author       string        `bson:"author"`
	Recipient    string        `bson:"recipient,omitempty"`
	Protocol     string        `bson:"protocol"`
	ProtocolPath protocol.Path `bson:"protocol_path"`
	Schema       string        `bson:"schema"`
	DataFormat   string        `bson:"data_format"`
	DateCreated  time.Time     `bson:"date_created"`
	DateModified time.Time     `bson:"date_modified"`
	Data         []byte        `bson:"data,omitempty"`
}

func NewMongoBackend(ctx context.Context, mongoURI, dbName string) (*MongoBackend, error) {
	if mongoURI == "" || dbName == "" {
		return nil, ErrMongoBadInput
	}

	opts := options.Client().ApplyURI(mongoURI)
	if strings.HasPrefix(mongoURI, "mongodb+srv://") {
		// Atlas clusters fail TLS negotiation in some environments unless pinned to 1.2.
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS12,
		})
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(dbName)
	col := db.Collection("records")

	// Best-effort indexes.
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant", Value: 1}, {Key: "record_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "tenant", Value: 1}, {Key: "protocol_path", Value: 1}, {Key: "author", Value: 1}}},
		{Keys: bson.D{{Key: "tenant", Value: 1}, {Key: "protocol_path", Value: 1}, {Key: "recipient", Value: 1}}},
		{Keys: bson.D{{Key: "tenant", Value: 1}, {Key: "parent_id", Value: 1}}},
	})

	glog.Infof("MongoDB connected (records): db=%s", dbName)
	return &MongoBackend{client: client, db: db, recordsCol: col}, nil
}

func (b *MongoBackend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}

func docKey(tenant, recordID string) string {
	return tenant + "|" + recordID
}

func filterDoc(tenant string, f Filter) bson.M {
	q := bson.M{"tenant": tenant}
	if f.Path != "" {
		q["protocol_path"] = f.Path
	}
	if f.Author != "" {
		q["author"] = f.Author
	}
	if f.Recipient != "" {
		q["recipient"] = f.Recipient
	}
	if f.ParentID != "" {
		q["parent_id"] = f.ParentID
	}
	if f.RecordID != "" {
		q["record_id"] = f.RecordID
	}
	return q
}

func recordDocToModel(d mongoRecordDoc) *Record {
	return &Record{
		ID:           d.RecordID,
		ContextID:    d.ContextID,
		ParentID:     d.ParentID,
		Author:       d.Author,
		Recipient:    d.Recipient,
		Protocol:     d.Protocol,
		ProtocolPath: d.ProtocolPath,
		Schema:       d.Schema,
		DataFormat:   d.DataFormat,
		DateCreated:  d.DateCreated,
		DateModified: d.DateModified,
		Data:         d.Data,
	}
}

func (b *MongoBackend) Find(ctx context.Context, tenant string, f Filter) ([]*Record, error) {
	// record ids are ULIDs, so id order is creation order
	cur, err := b.recordsCol.Find(ctx, filterDoc(tenant, f),
		options.Find().SetSort(bson.D{{Key: "record_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*Record
	for cur.Next(ctx) {
		var doc mongoRecordDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, recordDocToModel(doc))
	}
	return out, cur.Err()
}

func (b *MongoBackend) Get(ctx context.Context, tenant, recordID string) (*Record, error) {
	var doc mongoRecordDoc
	err := b.recordsCol.FindOne(ctx, bson.M{"_id": docKey(tenant, recordID)}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return recordDocToModel(doc), nil
}

func (b *MongoBackend) Put(ctx context.Context, tenant string, rec *Record) error {
	doc := mongoRecordDoc{
		ID:           docKey(tenant, rec.ID),
		Tenant:       tenant,
		RecordID:     rec.ID,
		ContextID:    rec.ContextID,
		ParentID:     rec.ParentID,
		Author:       rec.Author,
		Recipient:    rec.Recipient,
		Protocol:     rec.Protocol,
		ProtocolPath: rec.ProtocolPath,
		Schema:       rec.Schema,
		DataFormat:   rec.DataFormat,
		DateCreated:  rec.DateCreated,
		DateModified: rec.DateModified,
		Data:         rec.Data,
	}
	_, err := b.recordsCol.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (b *MongoBackend) Remove(ctx context.Context, tenant, recordID string) error {
	_, err := b.recordsCol.DeleteOne(ctx, bson.M{"_id": docKey(tenant, recordID)})
	return err
}
