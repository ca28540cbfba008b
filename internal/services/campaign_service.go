package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/review-campaigns/backend/internal/events"
	"github.com/review-campaigns/backend/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type CampaignService struct {
	campaigns CampaignStore
	authz     *Authorizer
	audit     AuditTrail
	publisher events.Publisher
	calendar  Calendar
	log       *zap.Logger
}

func NewCampaignService(
	campaigns CampaignStore,
	authz *Authorizer,
	audit AuditTrail,
	publisher events.Publisher,
	calendar Calendar,
	log *zap.Logger,
) *CampaignService {
	return &CampaignService{
		campaigns: campaigns,
		authz:     authz,
		audit:     audit,
		publisher: publisher,
		calendar:  calendar,
		log:       log,
	}
}

func (s *CampaignService) Create(ctx context.Context, identity uuid.UUID, c *models.Campaign) error {
	if err := validateRecruitment(c); err != nil {
		return err
	}

	advertiserID, err := s.authz.AdvertiserID(ctx, identity)
	if err != nil {
		return err
	}

	c.AdvertiserID = advertiserID
	c.AdvertiserUserID = identity
	c.Status = models.CampaignStatusRecruiting
	if err := s.campaigns.Create(ctx, c); err != nil {
		return err
	}

	recordAudit(ctx, s.audit, s.log, userAudit(identity, "campaign_created", "campaign", c.ID, nil))
	publish(ctx, s.publisher, s.log, events.Event{
		Type:    events.EventCampaignCreated,
		Payload: map[string]any{"campaign_id": c.ID.String()},
	})
	return nil
}

func validateRecruitment(c *models.Campaign) error {
	start, err := time.Parse(models.DateLayout, c.RecruitmentStartDate)
	if err != nil {
		return fmt.Errorf("%w: recruitment start date must be YYYY-MM-DD", models.ErrValidation)
	}
	end, err := time.Parse(models.DateLayout, c.RecruitmentEndDate)
	if err != nil {
		return fmt.Errorf("%w: recruitment end date must be YYYY-MM-DD", models.ErrValidation)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: recruitment end date is before start date", models.ErrValidation)
	}
	if c.RecruitmentCount < 1 {
		return fmt.Errorf("%w: recruitment count must be at least 1", models.ErrValidation)
	}
	return nil
}

// ListRecruiting is the public feed: open campaigns whose window has not ended.
func (s *CampaignService) ListRecruiting(ctx context.Context, limit, offset int) ([]models.CampaignWithAdvertiser, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.campaigns.ListRecruiting(ctx, s.calendar.Today(), limit, offset)
}

func (s *CampaignService) GetByID(ctx context.Context, id uuid.UUID) (*models.CampaignDetail, error) {
	d, err := s.campaigns.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return d, nil
}

func (s *CampaignService) ListMine(ctx context.Context, identity uuid.UUID) ([]models.CampaignWithCount, error) {
	advertiserID, err := s.authz.AdvertiserID(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.campaigns.ListByAdvertiser(ctx, advertiserID)
}

func (s *CampaignService) UpdateStatus(ctx context.Context, identity, id uuid.UUID, status models.CampaignStatus) (*models.Campaign, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown campaign status %q", models.ErrValidation, status)
	}
	c, err := s.authz.RequireCampaignOwner(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	t, err := transitionCampaign(ctx, s.campaigns, c, status)
	if err != nil {
		return nil, err
	}

	announceTransitions(ctx, s.audit, s.publisher, s.log, &identity, []campaignTransition{t})
	return c, nil
}

// History returns the audit trail of a campaign to its owner.
func (s *CampaignService) History(ctx context.Context, identity, id uuid.UUID, limit, offset int) ([]models.AuditLog, error) {
	if _, err := s.authz.RequireCampaignOwner(ctx, identity, id); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxPageSize {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	logs, err := s.audit.GetByEntity(ctx, "campaign", id, limit, offset)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}
	return logs, nil
}

// CloseExpired closes recruiting campaigns whose end date has passed and
// returns how many were closed.
func (s *CampaignService) CloseExpired(ctx context.Context) (int, error) {
	today := s.calendar.Today()
	expired, err := s.campaigns.ListExpiredRecruiting(ctx, today)
	if err != nil {
		return 0, err
	}

	var errs []error
	var steps []campaignTransition
	for i := range expired {
		t, err := transitionCampaign(ctx, s.campaigns, &expired[i], models.CampaignStatusClosed)
		if errors.Is(err, models.ErrCampaignStatusChanged) {
			// The owner moved it first; nothing left to close.
			s.log.Debug("expired campaign changed before close",
				zap.String("campaign_id", expired[i].ID.String()))
			continue
		}
		if err != nil {
			s.log.Error("failed to close expired campaign",
				zap.String("campaign_id", expired[i].ID.String()), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		steps = append(steps, t)
	}

	announceTransitions(ctx, s.audit, s.publisher, s.log, nil, steps)
	if len(steps) > 0 {
		s.log.Info("closed expired campaigns", zap.Int("count", len(steps)), zap.String("today", today))
	}
	return len(steps), errors.Join(errs...)
}
