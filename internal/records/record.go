package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cryptichearts/backend/internal/protocol"
)

var (
	ErrInvalidQuery = errors.New("records: query has no valid protocol path")
	ErrNoData       = errors.New("records: record has no data")
)

// Record is one stored protocol record. Replicated copies in other tenants
// keep the same ID.
type Record struct {
	ID           string        `json:"id" bson:"record_id"`
	ContextID    string        `json:"contextId" bson:"context_id"`
	ParentID     string        `json:"parentId,omitempty" bson:"parent_id,omitempty"`
	Author       string        `json:"author" bson:"author"`
	Recipient    string        `json:"recipient,omitempty" bson:"recipient,omitempty"`
	Protocol     string        `json:"protocol" bson:"protocol"`
	ProtocolPath protocol.Path `json:"protocolPath" bson:"protocol_path"`
	Schema       string        `json:"schema" bson:"schema"`
	DataFormat   string        `json:"dataFormat" bson:"data_format"`
	DateCreated  time.Time     `json:"dateCreated" bson:"date_created"`
	DateModified time.Time     `json:"dateModified" bson:"date_modified"`
	Data         []byte        `json:"data,omitempty" bson:"data,omitempty"`
}

// DecodeData unmarshals the JSON payload of the record into v.
func (r *Record) DecodeData(v any) error {
	if len(r.Data) == 0 {
		return ErrNoData
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("decode %s record %s: %w", r.ProtocolPath, r.ID, err)
	}
	return nil
}

func (r *Record) clone() *Record {
	c := *r
	if r.Data != nil {
		c.Data = append([]byte(nil), r.Data...)
	}
	return &c
}

// Status is the store's verdict on a request. Codes follow HTTP: 200-399
// is success, anything else carries a human-readable Detail.
type Status struct {
	Code   int    `json:"code"`
	Detail string `json:"detail"`
}

func (s Status) OK() bool {
	return s.Code >= 200 && s.Code < 400
}

func (s Status) String() string {
	return fmt.Sprintf("%d %s", s.Code, s.Detail)
}

func status(code int, detail string) Status {
	if detail == "" {
		detail = http.StatusText(code)
	}
	return Status{Code: code, Detail: detail}
}

func encodeData(data any) ([]byte, error) {
	switch v := data.(type) {
	case nil:
		return nil, nil
	case []byte:
		return append([]byte(nil), v...), nil
	case json.RawMessage:
		return append([]byte(nil), v...), nil
	default:
		return json.Marshal(v)
	}
}
