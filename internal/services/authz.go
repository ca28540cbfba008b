package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/review-campaigns/backend/internal/models"
)

var (
	ErrNoAdvertiserProfile = fmt.Errorf("%w: advertiser profile not found", models.ErrNotFound)
	ErrNoInfluencerProfile = fmt.Errorf("%w: influencer profile not found", models.ErrNotFound)
	ErrCampaignNotFound    = fmt.Errorf("%w: campaign not found", models.ErrNotFound)
	ErrNotCampaignOwner    = fmt.Errorf("%w: campaign belongs to another advertiser", models.ErrForbidden)
)

// Authorizer resolves identities to role profiles and checks campaign ownership.
type Authorizer struct {
	profiles  ProfileStore
	campaigns CampaignStore
}

func NewAuthorizer(profiles ProfileStore, campaigns CampaignStore) *Authorizer {
	return &Authorizer{profiles: profiles, campaigns: campaigns}
}

func (a *Authorizer) AdvertiserID(ctx context.Context, identity uuid.UUID) (uuid.UUID, error) {
	ap, err := a.profiles.GetAdvertiserByUserID(ctx, identity)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return uuid.Nil, ErrNoAdvertiserProfile
		}
		return uuid.Nil, err
	}
	return ap.ID, nil
}

func (a *Authorizer) InfluencerID(ctx context.Context, identity uuid.UUID) (uuid.UUID, error) {
	ip, err := a.profiles.GetInfluencerByUserID(ctx, identity)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return uuid.Nil, ErrNoInfluencerProfile
		}
		return uuid.Nil, err
	}
	return ip.ID, nil
}

// RequireCampaignOwner fails with ErrForbidden unless identity's advertiser
// profile owns the campaign.
func (a *Authorizer) RequireCampaignOwner(ctx context.Context, identity, campaignID uuid.UUID) (*models.Campaign, error) {
	advertiserID, err := a.AdvertiserID(ctx, identity)
	if err != nil {
		return nil, err
	}
	c, err := a.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	if c.AdvertiserID != advertiserID {
		return nil, ErrNotCampaignOwner
	}
	return c, nil
}
