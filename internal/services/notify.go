package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/review-campaigns/backend/internal/events"
	"github.com/review-campaigns/backend/internal/models"
	"go.uber.org/zap"
)

// Audit and event delivery happen after the business write has committed.
// Failures are logged and never reach the caller.

func userAudit(actor uuid.UUID, action, entityType string, entityID uuid.UUID, meta map[string]any) models.AuditLog {
	return models.AuditLog{
		ActorUserID: &actor,
		ActorType:   models.ActorUser,
		Action:      action,
		EntityType:  entityType,
		EntityID:    &entityID,
		Meta:        meta,
	}
}

func recordAudit(ctx context.Context, audit AuditLogger, log *zap.Logger, entry models.AuditLog) {
	if err := audit.Log(ctx, entry); err != nil {
		log.Warn("audit log failed", zap.String("action", entry.Action), zap.Error(err))
	}
}

func publish(ctx context.Context, pub events.Publisher, log *zap.Logger, event events.Event) {
	if err := pub.Publish(ctx, events.StreamCampaigns, event); err != nil {
		log.Warn("publish event failed", zap.String("type", event.Type), zap.Error(err))
	}
}
