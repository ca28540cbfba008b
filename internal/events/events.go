package events

import (
	"context"

	"github.com/google/uuid"
)

// StreamCampaigns carries every marketplace event.
const StreamCampaigns = "events:campaign"

// Event types
const (
	EventCampaignCreated       = "campaign_created"
	EventCampaignStatusChanged = "campaign_status_changed"
	EventApplicationSubmitted  = "application_submitted"
	EventApplicationsUpdated   = "applications_updated"
)

// Event is delivered to the identities listed in Recipients. An event with
// no recipients is broadcast.
type Event struct {
	Type       string         `json:"type"`
	Recipients []uuid.UUID    `json:"user_ids,omitempty"`
	Payload    map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}

// NopPublisher drops every event. Used when Redis is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }
