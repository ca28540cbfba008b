package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/review-campaigns/backend/internal/auth"
	"github.com/review-campaigns/backend/internal/config"
	"github.com/review-campaigns/backend/internal/http/dto"
	"go.uber.org/zap"
)

const CtxIdentity = "identity"

// IdentityMiddleware attaches the caller's identity when the session token
// verifies. The token is read from the session cookie, then from a bearer
// header. Requests without a valid token pass through anonymously.
func IdentityMiddleware(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := sessionToken(c, cfg.AuthCookieName)
		if tokenStr == "" {
			return c.Next()
		}

		id, err := auth.ParseIdentityToken(cfg.AuthJWTSecret, cfg.AuthIssuer, tokenStr)
		if err != nil {
			log.Debug("session token rejected", zap.Error(err))
			return c.Next()
		}

		c.Locals(CtxIdentity, id)
		return c.Next()
	}
}

func sessionToken(c *fiber.Ctx, cookieName string) string {
	if v := c.Cookies(cookieName); v != "" {
		return v
	}
	header := c.Get(fiber.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// RequireAuth rejects requests that carry no verified identity.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := Identity(c); !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:      dto.CodeUnauthenticated,
				Message:   "authentication required",
				RequestID: RequestID(c),
			})
		}
		return c.Next()
	}
}

// Identity returns the verified caller identity, if any.
func Identity(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(CtxIdentity).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// MustIdentity is for handlers mounted behind RequireAuth.
func MustIdentity(c *fiber.Ctx) uuid.UUID {
	id, _ := Identity(c)
	return id
}
