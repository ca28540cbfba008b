package handlers

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/review-campaigns/backend/internal/http/dto"
	"github.com/review-campaigns/backend/internal/middleware"
	"github.com/review-campaigns/backend/internal/models"
	"github.com/review-campaigns/backend/internal/services"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ApplicationAPI is implemented by services.ApplicationService.
type ApplicationAPI interface {
	Create(ctx context.Context, identity uuid.UUID, a *models.Application) error
	ListMine(ctx context.Context, identity uuid.UUID, status string) ([]models.ApplicationWithCampaign, error)
	ListByCampaign(ctx context.Context, identity, campaignID uuid.UUID) ([]models.ApplicationWithInfluencer, error)
	BulkUpdate(ctx context.Context, identity, campaignID uuid.UUID, ids []uuid.UUID, status models.ApplicationStatus) (*services.BulkResult, error)
	Finalize(ctx context.Context, identity, campaignID uuid.UUID, selectedIDs []uuid.UUID) (*services.FinalizeResult, error)
	ExportApplicants(ctx context.Context, identity, campaignID uuid.UUID) ([]byte, string, error)
}

type ApplicationHandler struct {
	applications ApplicationAPI
	validator    *validator.Validate
	log          *zap.Logger
}

func NewApplicationHandler(applications ApplicationAPI, log *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, validator: newValidator(), log: log}
}

func (h *ApplicationHandler) Apply(c *fiber.Ctx) error {
	var req dto.CreateApplicationRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	app := &models.Application{
		CampaignID: uuid.MustParse(req.CampaignID),
		Message:    req.Message,
		VisitDate:  req.VisitDate,
	}
	identity := middleware.MustIdentity(c)
	if err := h.applications.Create(c.UserContext(), identity, app); err != nil {
		return err
	}
	h.log.Info("application submitted",
		zap.String("request_id", middleware.RequestID(c)),
		zap.String("user_id", identity.String()),
		zap.String("campaign_id", app.CampaignID.String()),
		zap.String("application_id", app.ID.String()),
	)
	return ok(c, fiber.StatusCreated, app)
}

func (h *ApplicationHandler) MyApplications(c *fiber.Ctx) error {
	apps, err := h.applications.ListMine(c.UserContext(), middleware.MustIdentity(c), c.Query("status"))
	if err != nil {
		return err
	}
	return ok200(c, apps)
}

func (h *ApplicationHandler) CampaignApplicants(c *fiber.Ctx) error {
	campaignID, err := paramUUID(c, "campaignId")
	if err != nil {
		return err
	}

	apps, err := h.applications.ListByCampaign(c.UserContext(), middleware.MustIdentity(c), campaignID)
	if err != nil {
		return err
	}
	return ok200(c, apps)
}

func (h *ApplicationHandler) BulkUpdate(c *fiber.Ctx) error {
	campaignID, err := paramUUID(c, "campaignId")
	if err != nil {
		return err
	}
	var req dto.BulkUpdateApplicationsRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	identity := middleware.MustIdentity(c)
	res, err := h.applications.BulkUpdate(c.UserContext(), identity, campaignID,
		parseUUIDs(req.ApplicationIDs), models.ApplicationStatus(req.Status))
	if err != nil {
		return err
	}
	h.log.Info("applications decided",
		zap.String("request_id", middleware.RequestID(c)),
		zap.String("user_id", identity.String()),
		zap.String("campaign_id", campaignID.String()),
		zap.String("status", req.Status),
		zap.Int("updated", res.Updated),
		zap.String("campaign_status", string(res.CampaignStatus)),
	)
	return ok200(c, res)
}

func (h *ApplicationHandler) Finalize(c *fiber.Ctx) error {
	campaignID, err := paramUUID(c, "campaignId")
	if err != nil {
		return err
	}
	var req dto.FinalizeApplicationsRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	identity := middleware.MustIdentity(c)
	res, err := h.applications.Finalize(c.UserContext(), identity, campaignID, parseUUIDs(req.SelectedIDs))
	if err != nil {
		return err
	}
	h.log.Info("campaign finalized",
		zap.String("request_id", middleware.RequestID(c)),
		zap.String("user_id", identity.String()),
		zap.String("campaign_id", campaignID.String()),
		zap.Int("selected", res.Selected),
		zap.Int("rejected", res.Rejected),
	)
	return ok200(c, res)
}

func (h *ApplicationHandler) Export(c *fiber.Ctx) error {
	campaignID, err := paramUUID(c, "campaignId")
	if err != nil {
		return err
	}

	identity := middleware.MustIdentity(c)
	data, filename, err := h.applications.ExportApplicants(c.UserContext(), identity, campaignID)
	if err != nil {
		return err
	}
	h.log.Info("applicants exported",
		zap.String("request_id", middleware.RequestID(c)),
		zap.String("user_id", identity.String()),
		zap.String("campaign_id", campaignID.String()),
		zap.Int("bytes", len(data)),
	)
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}
