package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/cryptichearts/backend/internal/models"
	"github.com/cryptichearts/backend/internal/protocol"
	"github.com/cryptichearts/backend/internal/records"
)

var (
	ErrNoRecipients  = errors.New("a post needs at least one recipient")
	ErrImageTooLarge = errors.New("image is too large")
	ErrPostNotStored = errors.New("post was not stored for any recipient")
)

type PostService struct {
	client        records.Client
	follows       *FollowService
	limit         int
	maxImageBytes int
}

func NewPostService(client records.Client, follows *FollowService, opts Options) *PostService {
	opts = opts.withDefaults()
	return &PostService{
		client:        client,
		follows:       follows,
		limit:         opts.BatchLimit,
		maxImageBytes: opts.MaxImageBytes,
	}
}

// PostReceipt describes a created post and where each copy went.
type PostReceipt struct {
	Post       models.Post             `json:"post"`
	Deliveries []models.DeliveryReport `json:"deliveries"`
}

// GetPosts returns the posts the caller wrote plus those peers sent to the
// caller, one entry per logical post, in store order. Authors are labelled
// with the caller's name for them, "You" for the caller, or "Anonymous".
func (s *PostService) GetPosts(ctx context.Context) ([]models.Post, error) {
	self := s.client.DID()

	own, err := s.client.Query(ctx, records.Posts().By(self))
	if err != nil {
		return nil, fmt.Errorf("query own posts: %w", err)
	}
	received, err := s.client.Query(ctx, records.Posts().To(self))
	if err != nil {
		return nil, fmt.Errorf("query received posts: %w", err)
	}

	labels, err := s.follows.labels(ctx)
	if err != nil {
		glog.Warningf("[GetPosts] following labels unavailable: %v", err)
		labels = map[string]string{}
	}

	seen := make(map[string]bool)
	var out []models.Post
	for _, rec := range append(own, received...) {
		var data models.PostData
		if err := rec.DecodeData(&data); err != nil {
			glog.Warningf("[GetPosts] skipping record=%s error=%v", rec.ID, err)
			continue
		}
		key := data.UniqueID
		if key == "" {
			key = rec.ID
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		post := postFromRecord(rec, data)
		if label, ok := labels[rec.Author]; ok {
			post.AuthorLabel = label
		} else if rec.Author == self {
			post.AuthorLabel = models.LabelSelf
		}
		out = append(out, post)
	}
	return out, nil
}

// Timeline is GetPosts ordered newest first. Posts created at the same
// instant keep their store order.
func (s *PostService) Timeline(ctx context.Context) ([]models.Post, error) {
	posts, err := s.GetPosts(ctx)
	if err != nil {
		return nil, err
	}
	SortNewestFirst(posts)
	return posts, nil
}

func SortNewestFirst(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].DateCreated.After(posts[j].DateCreated)
	})
}

// CreatePost stores one copy of the post per recipient, all sharing a fresh
// unique id, and sends each copy to its recipient. A recipient whose copy
// fails is reported without affecting the others.
func (s *PostService) CreatePost(ctx context.Context, req *models.CreatePostRequest) (*PostReceipt, error) {
	recipients := dedupe(req.Recipients)
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	if len(req.Image) > s.maxImageBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrImageTooLarge, len(req.Image), s.maxImageBytes)
	}

	data := models.PostData{UniqueID: uuid.NewString(), Content: req.Content}
	if len(req.Image) > 0 {
		data.Image = base64.StdEncoding.EncodeToString(req.Image)
	}

	type delivery struct {
		rec        *records.Record
		replicated bool
	}
	results := fanOut(ctx, s.limit, recipients, func(ctx context.Context, did string) (delivery, error) {
		rec, st, err := s.client.Create(ctx, records.CreateRequest{
			Path:      protocol.PathPost,
			Data:      data,
			Recipient: did,
		})
		if err != nil {
			return delivery{}, err
		}
		if !st.OK() {
			return delivery{}, &StatusError{Op: "create post", Status: st}
		}
		return delivery{rec: rec, replicated: replicate(ctx, s.client, "CreatePost", rec.ID, did)}, nil
	})

	receipt := &PostReceipt{Deliveries: make([]models.DeliveryReport, 0, len(results))}
	var stored *records.Record
	var firstErr error
	for _, r := range results {
		rep := models.DeliveryReport{DID: r.Item, Stored: r.Err == nil, Replicated: r.Value.replicated}
		if r.Err != nil {
			rep.Error = r.Err.Error()
			if firstErr == nil {
				firstErr = r.Err
			}
		} else if stored == nil {
			stored = r.Value.rec
		}
		receipt.Deliveries = append(receipt.Deliveries, rep)
	}
	if stored == nil {
		return nil, fmt.Errorf("%w: %v", ErrPostNotStored, firstErr)
	}

	receipt.Post = postFromRecord(stored, data)
	receipt.Post.AuthorLabel = models.LabelSelf
	glog.Infof("[CreatePost] author=%s uniqueId=%s recipients=%d", s.client.DID(), data.UniqueID, len(recipients))
	return receipt, nil
}

func postFromRecord(rec *records.Record, data models.PostData) models.Post {
	return models.Post{
		UniqueID:    data.UniqueID,
		Content:     data.Content,
		Image:       data.Image,
		AuthorID:    rec.Author,
		AuthorLabel: models.LabelAnonymous,
		DateCreated: rec.DateCreated,
		RecordID:    rec.ID,
	}
}
