package dto

import "github.com/review-campaigns/backend/internal/models"

// Request bodies use camelCase keys. Validation tags are checked by
// handlers before any service call.

type CreateProfileRequest struct {
	Name      string `json:"name" validate:"required"`
	BirthDate string `json:"birthDate" validate:"required,date"`
	Phone     string `json:"phone" validate:"required,min=10"`
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role" validate:"required,oneof=advertiser influencer"`
}

func (r CreateProfileRequest) Model() *models.Profile {
	role := models.Role(r.Role)
	return &models.Profile{
		Name:      r.Name,
		BirthDate: r.BirthDate,
		Phone:     r.Phone,
		Email:     r.Email,
		Role:      &role,
	}
}

type CreateInfluencerProfileRequest struct {
	ChannelName   string `json:"channelName" validate:"required"`
	ChannelURL    string `json:"channelUrl" validate:"required,url"`
	FollowerCount *int   `json:"followerCount" validate:"omitempty,min=0"`
}

func (r CreateInfluencerProfileRequest) Model() *models.InfluencerProfile {
	ip := &models.InfluencerProfile{ChannelName: r.ChannelName, ChannelURL: r.ChannelURL}
	if r.FollowerCount != nil {
		ip.FollowerCount = *r.FollowerCount
	}
	return ip
}

type CreateAdvertiserProfileRequest struct {
	CompanyName        string `json:"companyName" validate:"required"`
	Address            string `json:"address" validate:"required"`
	BusinessPhone      string `json:"businessPhone" validate:"required,min=10"`
	BusinessNumber     string `json:"businessNumber" validate:"required,bizno"`
	RepresentativeName string `json:"representativeName" validate:"required"`
}

func (r CreateAdvertiserProfileRequest) Model() *models.AdvertiserProfile {
	return &models.AdvertiserProfile{
		CompanyName:        r.CompanyName,
		Address:            r.Address,
		BusinessPhone:      r.BusinessPhone,
		BusinessNumber:     r.BusinessNumber,
		RepresentativeName: r.RepresentativeName,
	}
}

type CreateCampaignRequest struct {
	Title                string `json:"title" validate:"required"`
	RecruitmentStartDate string `json:"recruitmentStartDate" validate:"required,date"`
	RecruitmentEndDate   string `json:"recruitmentEndDate" validate:"required,date"`
	RecruitmentCount     int    `json:"recruitmentCount" validate:"min=1"`
	Benefits             string `json:"benefits" validate:"required"`
	StoreInfo            string `json:"storeInfo" validate:"required"`
	Mission              string `json:"mission" validate:"required"`
}

func (r CreateCampaignRequest) Model() *models.Campaign {
	return &models.Campaign{
		Title:                r.Title,
		RecruitmentStartDate: r.RecruitmentStartDate,
		RecruitmentEndDate:   r.RecruitmentEndDate,
		RecruitmentCount:     r.RecruitmentCount,
		Benefits:             r.Benefits,
		StoreInfo:            r.StoreInfo,
		Mission:              r.Mission,
	}
}

type UpdateCampaignStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=recruiting closed completed"`
}

type CreateApplicationRequest struct {
	CampaignID string `json:"campaignId" validate:"required,uuid"`
	Message    string `json:"message" validate:"required"`
	VisitDate  string `json:"visitDate" validate:"required,date"`
}

type BulkUpdateApplicationsRequest struct {
	ApplicationIDs []string `json:"applicationIds" validate:"dive,uuid"`
	Status         string   `json:"status" validate:"required,oneof=selected rejected"`
}

type FinalizeApplicationsRequest struct {
	SelectedIDs []string `json:"selectedIds" validate:"dive,uuid"`
}
