package models

import (
	"strings"
	"time"
)

const (
	LabelSelf      = "You"
	LabelAnonymous = "Anonymous"
)

// PostData is the stored payload of one per-recipient post record.
type PostData struct {
	UniqueID string `json:"uniqueId"`
	Content  string `json:"content"`
	Image    string `json:"image,omitempty"` // base64
}

// Post is one logical post. Every recipient copy shares UniqueID.
type Post struct {
	UniqueID    string    `json:"uniqueId"`
	Content     string    `json:"content"`
	Image       string    `json:"image,omitempty"`
	AuthorID    string    `json:"authorId"`
	AuthorLabel string    `json:"authorLabel"`
	DateCreated time.Time `json:"dateCreated"`
	RecordID    string    `json:"recordId"`
}

type CreatePostRequest struct {
	Content    string   `json:"content"`
	Image      []byte   `json:"image,omitempty"` // raw bytes, base64 in JSON
	Recipients []string `json:"recipients"`
}

func (r *CreatePostRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.Content) == "" {
		errors["content"] = "Content is required"
	}
	if len(r.Recipients) == 0 {
		errors["recipients"] = "Select at least one DID to share this post with"
	}

	return errors
}
