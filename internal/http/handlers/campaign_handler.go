package handlers

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/review-campaigns/backend/internal/http/dto"
	"github.com/review-campaigns/backend/internal/middleware"
	"github.com/review-campaigns/backend/internal/models"
	"go.uber.org/zap"
)

// CampaignAPI is implemented by services.CampaignService.
type CampaignAPI interface {
	Create(ctx context.Context, identity uuid.UUID, c *models.Campaign) error
	ListRecruiting(ctx context.Context, limit, offset int) ([]models.CampaignWithAdvertiser, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.CampaignDetail, error)
	ListMine(ctx context.Context, identity uuid.UUID) ([]models.CampaignWithCount, error)
	UpdateStatus(ctx context.Context, identity, id uuid.UUID, status models.CampaignStatus) (*models.Campaign, error)
	History(ctx context.Context, identity, id uuid.UUID, limit, offset int) ([]models.AuditLog, error)
}

type CampaignHandler struct {
	campaigns CampaignAPI
	validator *validator.Validate
	log       *zap.Logger
}

func NewCampaignHandler(campaigns CampaignAPI, log *zap.Logger) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns, validator: newValidator(), log: log}
}

func (h *CampaignHandler) CreateCampaign(c *fiber.Ctx) error {
	var req dto.CreateCampaignRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	identity := middleware.MustIdentity(c)
	campaign := req.Model()
	if err := h.campaigns.Create(c.UserContext(), identity, campaign); err != nil {
		return err
	}
	h.log.Info("campaign created",
		zap.String("request_id", middleware.RequestID(c)),
		zap.String("user_id", identity.String()),
		zap.String("campaign_id", campaign.ID.String()),
	)
	return ok(c, fiber.StatusCreated, campaign)
}

// ListRecruiting is the public feed. limit and offset are optional.
func (h *CampaignHandler) ListRecruiting(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return err
	}

	campaigns, err := h.campaigns.ListRecruiting(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	return ok200(c, campaigns)
}

func (h *CampaignHandler) GetCampaign(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	campaign, err := h.campaigns.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok200(c, campaign)
}

func (h *CampaignHandler) MyCampaigns(c *fiber.Ctx) error {
	campaigns, err := h.campaigns.ListMine(c.UserContext(), middleware.MustIdentity(c))
	if err != nil {
		return err
	}
	return ok200(c, campaigns)
}

func (h *CampaignHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateCampaignStatusRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	identity := middleware.MustIdentity(c)
	campaign, err := h.campaigns.UpdateStatus(c.UserContext(), identity, id, models.CampaignStatus(req.Status))
	if err != nil {
		return err
	}
	h.log.Info("campaign status updated",
		zap.String("request_id", middleware.RequestID(c)),
		zap.String("user_id", identity.String()),
		zap.String("campaign_id", id.String()),
		zap.String("status", string(campaign.Status)),
	)
	return ok200(c, campaign)
}

// History is the owner's view of the campaign audit trail.
func (h *CampaignHandler) History(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return err
	}

	logs, err := h.campaigns.History(c.UserContext(), middleware.MustIdentity(c), id, limit, offset)
	if err != nil {
		return err
	}
	return ok200(c, logs)
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &requestError{message: "invalid query parameter", fields: map[string]string{key: "must be an integer"}}
	}
	return n, nil
}
