package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

type CampaignStatus string

const (
	CampaignStatusRecruiting CampaignStatus = "recruiting"
	CampaignStatusClosed     CampaignStatus = "closed"
	CampaignStatusCompleted  CampaignStatus = "completed"
)

// Valid campaign transitions: from -> []to
var ValidCampaignTransitions = map[CampaignStatus][]CampaignStatus{
	CampaignStatusRecruiting: {CampaignStatusClosed},
	CampaignStatusClosed:     {CampaignStatusCompleted},
	CampaignStatusCompleted:  {},
}

func (s CampaignStatus) Valid() bool {
	_, ok := ValidCampaignTransitions[s]
	return ok
}

func CanTransitionCampaign(from, to CampaignStatus) bool {
	for _, s := range ValidCampaignTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ErrCampaignStatusChanged means the campaign left the expected status
// between the read and the write.
var ErrCampaignStatusChanged = fmt.Errorf("%w: campaign status changed concurrently", ErrInvalidState)

type Campaign struct {
	ID                   uuid.UUID      `json:"id"`
	AdvertiserID         uuid.UUID      `json:"advertiser_id"`
	AdvertiserUserID     uuid.UUID      `json:"-"`
	Title                string         `json:"title"`
	RecruitmentStartDate string         `json:"recruitment_start_date"`
	RecruitmentEndDate   string         `json:"recruitment_end_date"`
	RecruitmentCount     int            `json:"recruitment_count"`
	Benefits             string         `json:"benefits"`
	StoreInfo            string         `json:"store_info"`
	Mission              string         `json:"mission"`
	Status               CampaignStatus `json:"status"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// AcceptsApplications reports whether influencers may still apply on the given day.
func (c *Campaign) AcceptsApplications(today string) error {
	if c.Status != CampaignStatusRecruiting {
		return ErrCampaignNotRecruiting
	}
	if c.RecruitmentEndDate < today {
		return ErrRecruitmentEnded
	}
	return nil
}

// CampaignAdvertiser is the public slice of the owning advertiser profile.
type CampaignAdvertiser struct {
	CompanyName   string  `json:"company_name"`
	Address       string  `json:"address"`
	BusinessPhone *string `json:"business_phone,omitempty"`
}

type CampaignWithAdvertiser struct {
	Campaign
	Advertiser CampaignAdvertiser `json:"advertiser"`
}

type CampaignDetail struct {
	Campaign
	Advertiser       CampaignAdvertiser `json:"advertiser"`
	ApplicationCount int                `json:"application_count"`
}

type CampaignWithCount struct {
	Campaign
	ApplicationCount int `json:"application_count"`
}
