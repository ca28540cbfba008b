package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/review-campaigns/backend/internal/events"
	"github.com/review-campaigns/backend/internal/models"
	"go.uber.org/zap"
)

type campaignTransition struct {
	CampaignID  uuid.UUID
	OwnerUserID uuid.UUID
	From        models.CampaignStatus
	To          models.CampaignStatus
}

// transitionCampaign is the only place campaign status is written.
func transitionCampaign(ctx context.Context, store CampaignStore, c *models.Campaign, to models.CampaignStatus) (campaignTransition, error) {
	if !models.CanTransitionCampaign(c.Status, to) {
		return campaignTransition{}, fmt.Errorf("%w: campaign cannot move from %s to %s", models.ErrInvalidState, c.Status, to)
	}
	if err := store.UpdateStatus(ctx, c.ID, c.Status, to); err != nil {
		return campaignTransition{}, err
	}
	t := campaignTransition{CampaignID: c.ID, OwnerUserID: c.AdvertiserUserID, From: c.Status, To: to}
	c.Status = to
	return t, nil
}

// completeCampaign walks c forward through the transition table until it
// reaches completed. Already completed campaigns are left alone.
func completeCampaign(ctx context.Context, store CampaignStore, c *models.Campaign) ([]campaignTransition, error) {
	var steps []campaignTransition
	for c.Status != models.CampaignStatusCompleted {
		next := models.ValidCampaignTransitions[c.Status]
		if len(next) == 0 {
			return nil, fmt.Errorf("%w: campaign in %s cannot be completed", models.ErrInvalidState, c.Status)
		}
		t, err := transitionCampaign(ctx, store, c, next[0])
		if err != nil {
			return nil, err
		}
		steps = append(steps, t)
	}
	return steps, nil
}

// announceTransitions records committed transitions. actor is nil for
// system-initiated changes.
func announceTransitions(ctx context.Context, audit AuditLogger, pub events.Publisher, log *zap.Logger, actor *uuid.UUID, steps []campaignTransition) {
	actorType := models.ActorUser
	if actor == nil {
		actorType = models.ActorSystem
	}
	for _, t := range steps {
		campaignTransitionsTotal.WithLabelValues(string(t.From), string(t.To)).Inc()

		recordAudit(ctx, audit, log, models.AuditLog{
			ActorUserID: actor,
			ActorType:   actorType,
			Action:      fmt.Sprintf("campaign_status_%s_to_%s", t.From, t.To),
			EntityType:  "campaign",
			EntityID:    &t.CampaignID,
			Meta:        map[string]any{"old_status": t.From, "new_status": t.To},
		})

		publish(ctx, pub, log, events.Event{
			Type:       events.EventCampaignStatusChanged,
			Recipients: []uuid.UUID{t.OwnerUserID},
			Payload: map[string]any{
				"campaign_id": t.CampaignID.String(),
				"old_status":  t.From,
				"new_status":  t.To,
			},
		})
	}
}
