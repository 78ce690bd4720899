package models

import (
	"strings"
	"time"
)

// MessageData is the stored payload of a message record.
type MessageData struct {
	Content string `json:"content"`
	ReplyTo string `json:"replyTo,omitempty"`
}

type Message struct {
	RecordID    string    `json:"recordId"`
	DateCreated time.Time `json:"dateCreated"`
	ReplyTo     string    `json:"replyTo,omitempty"`
	AuthorID    string    `json:"authorId"`
	RecipientID string    `json:"recipientId"`
	Content     string    `json:"content"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
	ReplyTo string `json:"replyTo,omitempty"`
}

func (r *SendMessageRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.Content) == "" {
		errors["content"] = "Message cannot be empty"
	}

	return errors
}
