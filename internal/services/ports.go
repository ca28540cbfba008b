package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/review-campaigns/backend/internal/models"
)

// The stores below are implemented by the pgx repositories.

type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ProfileStore interface {
	Create(ctx context.Context, p *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	SetRole(ctx context.Context, id uuid.UUID, role models.Role) error
	CreateInfluencer(ctx context.Context, ip *models.InfluencerProfile) error
	GetInfluencerByUserID(ctx context.Context, userID uuid.UUID) (*models.InfluencerProfile, error)
	CreateAdvertiser(ctx context.Context, ap *models.AdvertiserProfile) error
	GetAdvertiserByUserID(ctx context.Context, userID uuid.UUID) (*models.AdvertiserProfile, error)
}

type CampaignStore interface {
	Create(ctx context.Context, c *models.Campaign) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*models.CampaignDetail, error)
	ListRecruiting(ctx context.Context, today string, limit, offset int) ([]models.CampaignWithAdvertiser, error)
	ListByAdvertiser(ctx context.Context, advertiserID uuid.UUID) ([]models.CampaignWithCount, error)
	// LockByID loads the campaign and holds its row until the enclosing
	// transaction ends.
	LockByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	// UpdateStatus writes to only while the stored status is still from,
	// else it returns models.ErrCampaignStatusChanged.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.CampaignStatus) error
	ListExpiredRecruiting(ctx context.Context, today string) ([]models.Campaign, error)
}

type ApplicationStore interface {
	Create(ctx context.Context, a *models.Application) error
	ListByInfluencer(ctx context.Context, influencerID uuid.UUID, status *models.ApplicationStatus) ([]models.ApplicationWithCampaign, error)
	ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]models.ApplicationWithInfluencer, error)
	UpdatePendingStatus(ctx context.Context, campaignID uuid.UUID, ids []uuid.UUID, status models.ApplicationStatus) ([]models.ApplicationChange, error)
	RejectPendingExcept(ctx context.Context, campaignID uuid.UUID, keep []uuid.UUID) ([]models.ApplicationChange, error)
}

type AuditLogger interface {
	Log(ctx context.Context, entry models.AuditLog) error
}

// AuditTrail also reads entries back, newest first.
type AuditTrail interface {
	AuditLogger
	GetByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]models.AuditLog, error)
}

// Calendar decides which calendar day "today" is.
type Calendar struct {
	Location *time.Location
	Now      func() time.Time
}

func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{Location: loc, Now: time.Now}
}

func (c Calendar) Today() string {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc).Format(models.DateLayout)
}
