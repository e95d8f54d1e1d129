package portfolio

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventGenerated EventType = "generated"
	EventUpdated   EventType = "updated"
	EventDeleted   EventType = "deleted"
)

// Event is published on every change of a record. ImageURL and
// AvatarPublicID let the worker act without reading the record back.
type Event struct {
	Type           EventType `json:"event_type"`
	PortfolioID    uuid.UUID `json:"portfolio_id"`
	Username       string    `json:"username"`
	ImageURL       string    `json:"image_url,omitempty"`
	AvatarPublicID string    `json:"avatar_public_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
