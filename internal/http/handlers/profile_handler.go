package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/review-campaigns/backend/internal/http/dto"
	"github.com/review-campaigns/backend/internal/middleware"
	"github.com/review-campaigns/backend/internal/models"
	"go.uber.org/zap"
)

// ProfileAPI is implemented by services.ProfileService.
type ProfileAPI interface {
	CreateProfile(ctx context.Context, identity uuid.UUID, p *models.Profile) error
	CreateInfluencerProfile(ctx context.Context, identity uuid.UUID, ip *models.InfluencerProfile) error
	CreateAdvertiserProfile(ctx context.Context, identity uuid.UUID, ap *models.AdvertiserProfile) error
	GetFullProfile(ctx context.Context, identity uuid.UUID) (*models.FullProfile, error)
}

type ProfileHandler struct {
	profiles  ProfileAPI
	validator *validator.Validate
	log       *zap.Logger
}

func NewProfileHandler(profiles ProfileAPI, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, validator: newValidator(), log: log}
}

// GetProfile answers {data: null} for anonymous callers and callers
// without a profile.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	identity, ok := middleware.Identity(c)
	if !ok {
		return ok200(c, nil)
	}
	full, err := h.profiles.GetFullProfile(c.UserContext(), identity)
	if err != nil {
		return err
	}
	if full == nil {
		return ok200(c, nil)
	}
	return ok200(c, full)
}

func (h *ProfileHandler) CreateProfile(c *fiber.Ctx) error {
	var req dto.CreateProfileRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	p := req.Model()
	if err := h.profiles.CreateProfile(c.UserContext(), middleware.MustIdentity(c), p); err != nil {
		return err
	}
	h.logCreated(c, "profile created", p.ID, p.Role)
	return ok(c, fiber.StatusCreated, p)
}

func (h *ProfileHandler) CreateInfluencerProfile(c *fiber.Ctx) error {
	var req dto.CreateInfluencerProfileRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	ip := req.Model()
	if err := h.profiles.CreateInfluencerProfile(c.UserContext(), middleware.MustIdentity(c), ip); err != nil {
		return err
	}
	role := models.RoleInfluencer
	h.logCreated(c, "role profile created", ip.UserID, &role)
	return ok(c, fiber.StatusCreated, ip)
}

func (h *ProfileHandler) CreateAdvertiserProfile(c *fiber.Ctx) error {
	var req dto.CreateAdvertiserProfileRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	ap := req.Model()
	if err := h.profiles.CreateAdvertiserProfile(c.UserContext(), middleware.MustIdentity(c), ap); err != nil {
		return err
	}
	role := models.RoleAdvertiser
	h.logCreated(c, "role profile created", ap.UserID, &role)
	return ok(c, fiber.StatusCreated, ap)
}

func (h *ProfileHandler) logCreated(c *fiber.Ctx, msg string, userID uuid.UUID, role *models.Role) {
	fields := []zap.Field{
		zap.String("request_id", middleware.RequestID(c)),
		zap.String("user_id", userID.String()),
	}
	if role != nil {
		fields = append(fields, zap.String("role", string(*role)))
	}
	h.log.Info(msg, fields...)
}
