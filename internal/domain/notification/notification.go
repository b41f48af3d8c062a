package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a persisted user-facing message produced by a booking
// lifecycle event. Records are append-only; only the read flag changes.
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Body      string
	TargetURL string
	Read      bool
	CreatedAt time.Time
}

// New creates a Notification for the given user.
func New(userID uuid.UUID, title, body, targetURL string) *Notification {
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Body:      body,
		TargetURL: targetURL,
		CreatedAt: time.Now().UTC(),
	}
}
