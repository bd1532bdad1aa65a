package db

import (
	"time"

	"github.com/google/uuid"
)

// DefaultListLimit is used when a caller passes a non-positive limit.
const DefaultListLimit = 50

// MaxListLimit caps a single page of messages.
const MaxListLimit = 200

// ContactMessage is an archived contact form submission.
type ContactMessage struct {
	ID         uuid.UUID `json:"id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	Message    string    `json:"message"`
	RemoteAddr string    `json:"remoteAddr,omitempty"`
	UserAgent  string    `json:"userAgent,omitempty"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// ContactMessagePage is one page of archived messages, newest first.
type ContactMessagePage struct {
	Messages []ContactMessage `json:"messages"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// NormalizePage clamps limit and offset into the accepted range.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
