package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdvertiser Role = "advertiser"
	RoleInfluencer Role = "influencer"
)

func (r Role) Valid() bool {
	return r == RoleAdvertiser || r == RoleInfluencer
}

type Profile struct {
	ID            uuid.UUID `json:"id"` // identity provider subject
	Name          string    `json:"name"`
	BirthDate     string    `json:"birth_date"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Role          *Role     `json:"role"`
	TermsAgreedAt time.Time `json:"terms_agreed_at"`
	CreatedAt     time.Time `json:"created_at"`
}

type InfluencerProfile struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	ChannelName   string    `json:"channel_name"`
	ChannelURL    string    `json:"channel_url"`
	FollowerCount int       `json:"follower_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type AdvertiserProfile struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"user_id"`
	CompanyName        string    `json:"company_name"`
	Address            string    `json:"address"`
	BusinessPhone      string    `json:"business_phone"`
	BusinessNumber     string    `json:"business_number"`
	RepresentativeName string    `json:"representative_name"`
	CreatedAt          time.Time `json:"created_at"`
}

// RoleProfile holds at most one of the role-specific sub-profiles.
// The zero value is the unassigned variant.
type RoleProfile struct {
	Influencer *InfluencerProfile
	Advertiser *AdvertiserProfile
}

func InfluencerRole(p *InfluencerProfile) RoleProfile { return RoleProfile{Influencer: p} }
func AdvertiserRole(p *AdvertiserProfile) RoleProfile { return RoleProfile{Advertiser: p} }

func (r RoleProfile) Role() *Role {
	var role Role
	switch {
	case r.Influencer != nil:
		role = RoleInfluencer
	case r.Advertiser != nil:
		role = RoleAdvertiser
	default:
		return nil
	}
	return &role
}

func (r RoleProfile) IsAssigned() bool {
	return r.Influencer != nil || r.Advertiser != nil
}

func (r RoleProfile) MarshalJSON() ([]byte, error) {
	switch {
	case r.Influencer != nil:
		return json.Marshal(r.Influencer)
	case r.Advertiser != nil:
		return json.Marshal(r.Advertiser)
	default:
		return []byte("null"), nil
	}
}

// FullProfile is the common profile merged with its role sub-profile.
type FullProfile struct {
	Profile
	RoleProfile RoleProfile `json:"roleProfile"`
}
