package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/review-campaigns/backend/internal/models"
)

type MetaHandler struct{}

func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

type MetaStatus struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Next  []string `json:"next"`
}

type MetaStatuses struct {
	Campaign    []MetaStatus `json:"campaign"`
	Application []MetaStatus `json:"application"`
}

var campaignStatusLabels = []struct {
	status models.CampaignStatus
	label  string
}{
	{models.CampaignStatusRecruiting, "Recruiting"},
	{models.CampaignStatusClosed, "Closed"},
	{models.CampaignStatusCompleted, "Completed"},
}

var applicationStatusLabels = []struct {
	status models.ApplicationStatus
	label  string
}{
	{models.ApplicationStatusPending, "Pending"},
	{models.ApplicationStatusSelected, "Selected"},
	{models.ApplicationStatusRejected, "Rejected"},
}

// GetStatuses lists both status enums with the moves each one allows, so
// clients can render only the actions the server will accept.
func (h *MetaHandler) GetStatuses(c *fiber.Ctx) error {
	out := MetaStatuses{}
	for _, s := range campaignStatusLabels {
		next := []string{}
		for _, to := range models.ValidCampaignTransitions[s.status] {
			next = append(next, string(to))
		}
		out.Campaign = append(out.Campaign, MetaStatus{ID: string(s.status), Label: s.label, Next: next})
	}
	for _, s := range applicationStatusLabels {
		next := []string{}
		for _, to := range models.ValidApplicationTransitions[s.status] {
			next = append(next, string(to))
		}
		out.Application = append(out.Application, MetaStatus{ID: string(s.status), Label: s.label, Next: next})
	}
	return ok200(c, out)
}
