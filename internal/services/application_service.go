package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/review-campaigns/backend/internal/events"
	"github.com/review-campaigns/backend/internal/models"
	"go.uber.org/zap"
)

var ErrAlreadyApplied = fmt.Errorf("%w: already applied to this campaign", models.ErrConflict)

// BulkResult reports the outcome of a bulk status change.
type BulkResult struct {
	Updated        int                   `json:"updated"`
	CampaignStatus models.CampaignStatus `json:"campaign_status"`
}

// FinalizeResult reports the outcome of a finalize call.
type FinalizeResult struct {
	Selected       int                   `json:"selected"`
	Rejected       int                   `json:"rejected"`
	CampaignStatus models.CampaignStatus `json:"campaign_status"`
}

type ApplicationService struct {
	applications ApplicationStore
	campaigns    CampaignStore
	authz        *Authorizer
	tx           TxRunner
	audit        AuditLogger
	publisher    events.Publisher
	calendar     Calendar
	log          *zap.Logger
}

func NewApplicationService(
	applications ApplicationStore,
	campaigns CampaignStore,
	authz *Authorizer,
	tx TxRunner,
	audit AuditLogger,
	publisher events.Publisher,
	calendar Calendar,
	log *zap.Logger,
) *ApplicationService {
	return &ApplicationService{
		applications: applications,
		campaigns:    campaigns,
		authz:        authz,
		tx:           tx,
		audit:        audit,
		publisher:    publisher,
		calendar:     calendar,
		log:          log,
	}
}

func (s *ApplicationService) Create(ctx context.Context, identity uuid.UUID, a *models.Application) error {
	// 1. Influencer onboarding must be complete
	influencerID, err := s.authz.InfluencerID(ctx, identity)
	if err != nil {
		return err
	}

	// 2. Campaign must exist
	c, err := s.campaigns.GetByID(ctx, a.CampaignID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrCampaignNotFound
		}
		return err
	}

	// 3-4. Status first, then the recruitment window
	if err := c.AcceptsApplications(s.calendar.Today()); err != nil {
		return err
	}

	// 5. One application per influencer and campaign
	a.InfluencerID = influencerID
	a.Status = models.ApplicationStatusPending
	if err := s.applications.Create(ctx, a); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return ErrAlreadyApplied
		}
		return err
	}

	applicationsTotal.WithLabelValues(string(a.Status)).Inc()
	recordAudit(ctx, s.audit, s.log, userAudit(identity, "application_submitted", "application", a.ID,
		map[string]any{"campaign_id": c.ID}))
	publish(ctx, s.publisher, s.log, events.Event{
		Type:       events.EventApplicationSubmitted,
		Recipients: []uuid.UUID{c.AdvertiserUserID},
		Payload: map[string]any{
			"campaign_id":    c.ID.String(),
			"application_id": a.ID.String(),
		},
	})
	return nil
}

// ListMine returns the caller's applications, optionally filtered by status.
// An empty status means no filter.
func (s *ApplicationService) ListMine(ctx context.Context, identity uuid.UUID, status string) ([]models.ApplicationWithCampaign, error) {
	var filter *models.ApplicationStatus
	if status != "" {
		st := models.ApplicationStatus(status)
		if !st.Valid() {
			return nil, fmt.Errorf("%w: unknown application status %q", models.ErrValidation, status)
		}
		filter = &st
	}

	influencerID, err := s.authz.InfluencerID(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.applications.ListByInfluencer(ctx, influencerID, filter)
}

func (s *ApplicationService) ListByCampaign(ctx context.Context, identity, campaignID uuid.UUID) ([]models.ApplicationWithInfluencer, error) {
	if _, err := s.authz.RequireCampaignOwner(ctx, identity, campaignID); err != nil {
		return nil, err
	}
	return s.applications.ListByCampaign(ctx, campaignID)
}

// BulkUpdate decides the listed pending applications of one campaign. Ids
// that belong to another campaign or were already decided are skipped.
// Selecting always completes the campaign, even when nothing matched.
func (s *ApplicationService) BulkUpdate(ctx context.Context, identity, campaignID uuid.UUID, ids []uuid.UUID, status models.ApplicationStatus) (*BulkResult, error) {
	if !models.CanTransitionApplication(models.ApplicationStatusPending, status) {
		return nil, fmt.Errorf("%w: status must be selected or rejected", models.ErrValidation)
	}
	c, err := s.authz.RequireCampaignOwner(ctx, identity, campaignID)
	if err != nil {
		return nil, err
	}

	var changes []models.ApplicationChange
	var steps []campaignTransition
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := s.campaigns.LockByID(ctx, campaignID)
		if err != nil {
			return err
		}
		c = locked
		changes, err = s.applications.UpdatePendingStatus(ctx, campaignID, ids, status)
		if err != nil {
			return err
		}
		if status == models.ApplicationStatusSelected {
			steps, err = completeCampaign(ctx, s.campaigns, locked)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.announceChanges(ctx, identity, c, changes)
	announceTransitions(ctx, s.audit, s.publisher, s.log, &identity, steps)
	return &BulkResult{Updated: len(changes), CampaignStatus: c.Status}, nil
}

// Finalize selects the given applications, rejects every other pending
// application of the campaign and completes it, all in one transaction.
func (s *ApplicationService) Finalize(ctx context.Context, identity, campaignID uuid.UUID, selectedIDs []uuid.UUID) (*FinalizeResult, error) {
	c, err := s.authz.RequireCampaignOwner(ctx, identity, campaignID)
	if err != nil {
		return nil, err
	}

	var selected, rejected []models.ApplicationChange
	var steps []campaignTransition
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := s.campaigns.LockByID(ctx, campaignID)
		if err != nil {
			return err
		}
		c = locked
		if selected, err = s.applications.UpdatePendingStatus(ctx, campaignID, selectedIDs, models.ApplicationStatusSelected); err != nil {
			return err
		}
		if rejected, err = s.applications.RejectPendingExcept(ctx, campaignID, selectedIDs); err != nil {
			return err
		}
		steps, err = completeCampaign(ctx, s.campaigns, locked)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.announceChanges(ctx, identity, c, append(selected, rejected...))
	announceTransitions(ctx, s.audit, s.publisher, s.log, &identity, steps)
	return &FinalizeResult{Selected: len(selected), Rejected: len(rejected), CampaignStatus: c.Status}, nil
}

func (s *ApplicationService) announceChanges(ctx context.Context, actor uuid.UUID, c *models.Campaign, changes []models.ApplicationChange) {
	if len(changes) == 0 {
		return
	}
	recipients := make([]uuid.UUID, 0, len(changes))
	decided := make(map[string]models.ApplicationStatus, len(changes))
	for _, ch := range changes {
		applicationsTotal.WithLabelValues(string(ch.Status)).Inc()
		recipients = append(recipients, ch.InfluencerUserID)
		decided[ch.ApplicationID.String()] = ch.Status
	}

	recordAudit(ctx, s.audit, s.log, userAudit(actor, "applications_updated", "campaign", c.ID,
		map[string]any{"applications": decided}))
	publish(ctx, s.publisher, s.log, events.Event{
		Type:       events.EventApplicationsUpdated,
		Recipients: recipients,
		Payload: map[string]any{
			"campaign_id":  c.ID.String(),
			"applications": decided,
		},
	})
}
