package events

import (
	"time"
)

const (
	TypePostCreated = "post.created"
	TypePostUpdated = "post.updated"
	TypePostDeleted = "post.deleted"
)

type PostChangedPayload struct {
	PostID string `json:"post_id"`
	Slug   string `json:"slug,omitempty"`
	Title  string `json:"title,omitempty"`
}

type PostChanged struct {
	Type      string             `json:"type"`
	Timestamp time.Time          `json:"timestamp"`
	Payload   PostChangedPayload `json:"payload"`
}

func NewPostChanged(eventType, postID, slug, title string) PostChanged {
	return PostChanged{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload: PostChangedPayload{
			PostID: postID,
			Slug:   slug,
			Title:  title,
		},
	}
}

// IsPostChange reports whether t is one of the post.* event types.
func IsPostChange(t string) bool {
	switch t {
	case TypePostCreated, TypePostUpdated, TypePostDeleted:
		return true
	}
	return false
}
