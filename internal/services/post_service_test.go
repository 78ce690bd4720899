package services

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/cryptichearts/backend/internal/models"
	"github.com/cryptichearts/backend/internal/records"
)

func TestCreatePost_OneLogicalPost(t *testing.T) {
	net := newNetwork()
	ctx := context.Background()
	a := NewSession(net.Connect(amy), nil, Options{})

	receipt, err := a.Posts.CreatePost(ctx, &models.CreatePostRequest{
		Content:    "hello",
		Image:      []byte{0xff, 0xd8, 0xff},
		Recipients: []string{bob, eve, bob},
	})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 2, len(receipt.Deliveries))
	assert.Equal(t, models.LabelSelf, receipt.Post.AuthorLabel)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff}), receipt.Post.Image)

	copies, _ := net.Connect(amy).Query(ctx, records.Posts().By(amy))
	assert.Equal(t, 2, len(copies))

	posts, err := a.Posts.GetPosts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1, len(posts))
	assert.Equal(t, receipt.Post.UniqueID, posts[0].UniqueID)
	assert.Equal(t, models.LabelSelf, posts[0].AuthorLabel)
}

func TestCreatePost_Rejections(t *testing.T) {
	a := NewSession(newNetwork().Connect(amy), nil, Options{MaxImageBytes: 4})
	ctx := context.Background()

	_, err := a.Posts.CreatePost(ctx, &models.CreatePostRequest{Content: "x"})
	assert.Equal(t, ErrNoRecipients, err)

	_, err = a.Posts.CreatePost(ctx, &models.CreatePostRequest{Content: "x", Image: make([]byte, 5), Recipients: []string{bob}})
	assert.Equal(t, true, errors.Is(err, ErrImageTooLarge))
}

func TestCreatePost_PerRecipientFailure(t *testing.T) {
	net := newNetwork()
	ctx := context.Background()
	client := &faultyClient{
		Client: net.Connect(amy),
		createFault: func(req records.CreateRequest) *records.Status {
			if req.Recipient == eve {
				return &records.Status{Code: http.StatusInternalServerError, Detail: "disk full"}
			}
			return nil
		},
	}
	a := NewSession(client, nil, Options{})

	receipt, err := a.Posts.CreatePost(ctx, &models.CreatePostRequest{Content: "hi", Recipients: []string{eve, bob}})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, eve, receipt.Deliveries[0].DID)
	assert.Equal(t, false, receipt.Deliveries[0].Stored)
	assert.Equal(t, true, receipt.Deliveries[1].Stored)
	assert.Equal(t, true, receipt.Deliveries[1].Replicated)

	_, err = a.Posts.CreatePost(ctx, &models.CreatePostRequest{Content: "hi", Recipients: []string{eve}})
	assert.Equal(t, true, errors.Is(err, ErrPostNotStored))
}

func TestGetPosts_Labels(t *testing.T) {
	net := newNetwork()
	ctx := context.Background()
	a := NewSession(net.Connect(amy), nil, Options{})
	b := NewSession(net.Connect(bob), nil, Options{})
	e := NewSession(net.Connect(eve), nil, Options{})

	mustFollow(t, b, nil, amy, "Amy from work")
	for _, s := range []*Session{a, e, b} {
		if _, err := s.Posts.CreatePost(ctx, &models.CreatePostRequest{Content: "from " + s.DID, Recipients: []string{bob}}); err != nil {
			t.Fatal(err)
		}
	}

	posts, err := b.Posts.Timeline(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 3, len(posts))
	// newest first
	assert.Equal(t, bob, posts[0].AuthorID)
	assert.Equal(t, models.LabelSelf, posts[0].AuthorLabel)
	assert.Equal(t, eve, posts[1].AuthorID)
	assert.Equal(t, models.LabelAnonymous, posts[1].AuthorLabel)
	assert.Equal(t, amy, posts[2].AuthorID)
	assert.Equal(t, "Amy from work", posts[2].AuthorLabel)
}

func TestSortNewestFirst_Stable(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p := []models.Post{
		{RecordID: "a", DateCreated: t0},
		{RecordID: "b", DateCreated: t0.Add(time.Minute)},
		{RecordID: "c", DateCreated: t0},
	}
	SortNewestFirst(p)
	assert.Equal(t, "b", p[0].RecordID)
	assert.Equal(t, "a", p[1].RecordID)
	assert.Equal(t, "c", p[2].RecordID)
}

func TestGetPosts_EachRecipientSeesOneCopy(t *testing.T) {
	net := newNetwork()
	ctx := context.Background()
	a := NewSession(net.Connect(amy), nil, Options{})
	receipt, err := a.Posts.CreatePost(ctx, &models.CreatePostRequest{Content: "hello both", Recipients: []string{bob, eve}})
	if err != nil {
		t.Fatal(err)
	}

	for _, did := range []string{bob, eve} {
		posts, err := NewSession(net.Connect(did), nil, Options{}).Posts.GetPosts(ctx)
		if err != nil {
			t.Fatal(err)
		}
		assert.Equal(t, 1, len(posts))
		assert.Equal(t, receipt.Post.UniqueID, posts[0].UniqueID)
	}
}

func TestTimeline_NewestFirst(t *testing.T) {
	net := newNetwork()
	ctx := context.Background()
	a := NewSession(net.Connect(amy), nil, Options{})
	for _, content := range []string{"older", "newer"} {
		if _, err := a.Posts.CreatePost(ctx, &models.CreatePostRequest{Content: content, Recipients: []string{bob}}); err != nil {
			t.Fatal(err)
		}
	}

	posts, err := a.Posts.Timeline(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 2, len(posts))
	assert.Equal(t, "newer", posts[0].Content)
	assert.NotEqual(t, posts[0].UniqueID, posts[1].UniqueID)
}
