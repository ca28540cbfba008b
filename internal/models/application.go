package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusSelected ApplicationStatus = "selected"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

var ValidApplicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusPending:  {ApplicationStatusSelected, ApplicationStatusRejected},
	ApplicationStatusSelected: {},
	ApplicationStatusRejected: {},
}

func (s ApplicationStatus) Valid() bool {
	_, ok := ValidApplicationTransitions[s]
	return ok
}

func CanTransitionApplication(from, to ApplicationStatus) bool {
	for _, s := range ValidApplicationTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

var (
	ErrCampaignNotRecruiting = fmt.Errorf("%w: campaign is not recruiting", ErrInvalidState)
	ErrRecruitmentEnded      = fmt.Errorf("%w: recruitment period has ended", ErrInvalidState)
)

type Application struct {
	ID           uuid.UUID         `json:"id"`
	CampaignID   uuid.UUID         `json:"campaign_id"`
	InfluencerID uuid.UUID         `json:"influencer_id"`
	Message      string            `json:"message"`
	VisitDate    string            `json:"visit_date"`
	Status       ApplicationStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type ApplicationCampaignSummary struct {
	Title              string         `json:"title"`
	Benefits           string         `json:"benefits"`
	RecruitmentEndDate string         `json:"recruitment_end_date"`
	Status             CampaignStatus `json:"status"`
}

// ApplicationWithCampaign is the applicant's own view.
type ApplicationWithCampaign struct {
	Application
	Campaign ApplicationCampaignSummary `json:"campaign"`
}

type ApplicantContact struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	BirthDate string `json:"birth_date"`
}

type ApplicantInfluencer struct {
	ChannelName   string           `json:"channel_name"`
	ChannelURL    string           `json:"channel_url"`
	FollowerCount int              `json:"follower_count"`
	Profile       ApplicantContact `json:"profile"`
}

// ApplicationWithInfluencer is the privileged view shown to the campaign owner.
type ApplicationWithInfluencer struct {
	Application
	Influencer ApplicantInfluencer `json:"influencer"`
}

// ApplicationChange describes one row touched by a status update.
type ApplicationChange struct {
	ApplicationID    uuid.UUID
	InfluencerUserID uuid.UUID
	Status           ApplicationStatus
}
