package onboarding

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrDraftNotFound = errors.New("draft not found")

// Draft is a wizard session held by the server between requests.
type Draft struct {
	ID        uuid.UUID `json:"id"`
	SourceURL string    `json:"sourceUrl,omitempty"`
	Portfolio Portfolio `json:"portfolio"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DraftRepository stores drafts in their Snapshot form.
type DraftRepository interface {
	Save(ctx context.Context, d *Draft, ttl time.Duration) error
	FindByID(ctx context.Context, id uuid.UUID) (*Draft, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
