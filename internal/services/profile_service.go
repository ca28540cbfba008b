package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/review-campaigns/backend/internal/models"
	"go.uber.org/zap"
)

var (
	ErrProfileExists   = fmt.Errorf("%w: profile already exists", models.ErrConflict)
	ErrProfileNotFound = fmt.Errorf("%w: profile not found, create a profile first", models.ErrNotFound)
	ErrRoleTaken       = fmt.Errorf("%w: a role profile already exists for this user", models.ErrConflict)
)

type ProfileService struct {
	profiles ProfileStore
	tx       TxRunner
	audit    AuditLogger
	log      *zap.Logger
}

func NewProfileService(profiles ProfileStore, tx TxRunner, audit AuditLogger, log *zap.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, tx: tx, audit: audit, log: log}
}

func (s *ProfileService) CreateProfile(ctx context.Context, identity uuid.UUID, p *models.Profile) error {
	p.ID = identity
	if err := s.profiles.Create(ctx, p); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return ErrProfileExists
		}
		return err
	}

	s.record(ctx, identity, "profile_created", "profile", identity, nil)
	return nil
}

func (s *ProfileService) CreateInfluencerProfile(ctx context.Context, identity uuid.UUID, ip *models.InfluencerProfile) error {
	if ip.FollowerCount < 0 {
		return fmt.Errorf("%w: follower count must not be negative", models.ErrValidation)
	}
	ip.UserID = identity

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.requireUnassigned(ctx, identity); err != nil {
			return err
		}
		if err := s.profiles.CreateInfluencer(ctx, ip); err != nil {
			return s.roleConflict(err)
		}
		return s.profiles.SetRole(ctx, identity, models.RoleInfluencer)
	})
	if err != nil {
		return err
	}

	s.record(ctx, identity, "influencer_profile_created", "influencer_profile", ip.ID, nil)
	return nil
}

func (s *ProfileService) CreateAdvertiserProfile(ctx context.Context, identity uuid.UUID, ap *models.AdvertiserProfile) error {
	ap.UserID = identity

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.requireUnassigned(ctx, identity); err != nil {
			return err
		}
		if err := s.profiles.CreateAdvertiser(ctx, ap); err != nil {
			return s.roleConflict(err)
		}
		return s.profiles.SetRole(ctx, identity, models.RoleAdvertiser)
	})
	if err != nil {
		return err
	}

	s.record(ctx, identity, "advertiser_profile_created", "advertiser_profile", ap.ID,
		map[string]any{"business_number": ap.BusinessNumber})
	return nil
}

// GetFullProfile returns nil without error when the identity has no profile.
func (s *ProfileService) GetFullProfile(ctx context.Context, identity uuid.UUID) (*models.FullProfile, error) {
	if identity == uuid.Nil {
		return nil, nil
	}
	p, err := s.profiles.GetByID(ctx, identity)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	full := &models.FullProfile{Profile: *p}
	if p.Role == nil {
		return full, nil
	}

	switch *p.Role {
	case models.RoleInfluencer:
		ip, err := s.profiles.GetInfluencerByUserID(ctx, identity)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		if ip != nil {
			full.RoleProfile = models.InfluencerRole(ip)
		}
	case models.RoleAdvertiser:
		ap, err := s.profiles.GetAdvertiserByUserID(ctx, identity)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		if ap != nil {
			full.RoleProfile = models.AdvertiserRole(ap)
		}
	}
	return full, nil
}

// requireUnassigned checks that the parent profile exists and holds no
// role sub-profile yet.
func (s *ProfileService) requireUnassigned(ctx context.Context, identity uuid.UUID) error {
	if _, err := s.profiles.GetByID(ctx, identity); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrProfileNotFound
		}
		return err
	}
	if _, err := s.profiles.GetInfluencerByUserID(ctx, identity); err == nil {
		return ErrRoleTaken
	} else if !errors.Is(err, models.ErrNotFound) {
		return err
	}
	if _, err := s.profiles.GetAdvertiserByUserID(ctx, identity); err == nil {
		return ErrRoleTaken
	} else if !errors.Is(err, models.ErrNotFound) {
		return err
	}
	return nil
}

func (s *ProfileService) roleConflict(err error) error {
	if errors.Is(err, models.ErrConflict) {
		return ErrRoleTaken
	}
	return err
}

func (s *ProfileService) record(ctx context.Context, actor uuid.UUID, action, entityType string, entityID uuid.UUID, meta map[string]any) {
	recordAudit(ctx, s.audit, s.log, userAudit(actor, action, entityType, entityID, meta))
}
