package entities

import (
	"time"

	"github.com/google/uuid"
)

// Session groups one farmer's multi-turn conversation history under an
// opaque key. Sessions are created lazily on first use and mutated only by
// appending messages.
type Session struct {
	ID         string    `json:"id" bson:"_id"`
	Messages   []Message `json:"messages" bson:"messages"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
	LastAccess time.Time `json:"last_access" bson:"last_access"`
}

func NewSession(id string) *Session {
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now()
	return &Session{
		ID:         id,
		Messages:   make([]Message, 0),
		CreatedAt:  now,
		UpdatedAt:  now,
		LastAccess: now,
	}
}
