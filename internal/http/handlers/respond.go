package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/review-campaigns/backend/internal/http/dto"
	"github.com/review-campaigns/backend/internal/middleware"
	"github.com/review-campaigns/backend/internal/models"
	"go.uber.org/zap"
)

type errorClass struct {
	sentinel error
	status   int
	code     string
}

var errorClasses = []errorClass{
	{models.ErrValidation, fiber.StatusBadRequest, dto.CodeValidation},
	{models.ErrUnauthenticated, fiber.StatusUnauthorized, dto.CodeUnauthenticated},
	{models.ErrForbidden, fiber.StatusForbidden, dto.CodeForbidden},
	{models.ErrNotFound, fiber.StatusNotFound, dto.CodeNotFound},
	{models.ErrConflict, fiber.StatusConflict, dto.CodeConflict},
	{models.ErrInvalidState, fiber.StatusConflict, dto.CodeInvalidState},
}

func ok(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(dto.DataResponse{Data: data})
}

func ok200(c *fiber.Ctx, data any) error {
	return ok(c, fiber.StatusOK, data)
}

func fail(c *fiber.Ctx, status int, code, message string, fields map[string]string) error {
	return c.Status(status).JSON(dto.ErrorResponse{
		Code:      code,
		Message:   message,
		Fields:    fields,
		RequestID: middleware.RequestID(c),
	})
}

// requestError is a malformed request caught before any service call.
type requestError struct {
	message string
	fields  map[string]string
}

func (e *requestError) Error() string { return e.message }

func badRequest(message string) error {
	return &requestError{message: message}
}

// bind parses and validates a JSON body into req.
func bind(c *fiber.Ctx, v *validator.Validate, req any) error {
	if err := c.BodyParser(req); err != nil {
		return badRequest("invalid request body")
	}
	if err := v.Struct(req); err != nil {
		return &requestError{message: "validation failed", fields: fieldErrors(err)}
	}
	return nil
}

// ErrorHandler renders every error returned by a handler in the failure
// envelope. Unclassified errors are logged and hidden behind a generic
// message.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var re *requestError
		if errors.As(err, &re) {
			return fail(c, fiber.StatusBadRequest, dto.CodeValidation, re.message, re.fields)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return fail(c, fe.Code, fiberCode(fe.Code), fe.Message, nil)
		}

		for _, ec := range errorClasses {
			if errors.Is(err, ec.sentinel) {
				log.Debug("request failed", zap.String("code", ec.code), zap.Error(err))
				return fail(c, ec.status, ec.code, publicMessage(err, ec.sentinel), nil)
			}
		}

		log.Error("internal error",
			zap.String("request_id", middleware.RequestID(c)),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return fail(c, fiber.StatusInternalServerError, dto.CodeInternal, "internal server error", nil)
	}
}

func fiberCode(status int) string {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity:
		return dto.CodeValidation
	case fiber.StatusUnauthorized:
		return dto.CodeUnauthenticated
	case fiber.StatusForbidden:
		return dto.CodeForbidden
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return dto.CodeNotFound
	case fiber.StatusTooManyRequests:
		return dto.CodeRateLimited
	case fiber.StatusUpgradeRequired:
		return "UPGRADE_REQUIRED"
	default:
		return dto.CodeInternal
	}
}

// publicMessage strips the sentinel prefix: "not found: campaign not found"
// becomes "campaign not found".
func publicMessage(err, sentinel error) string {
	msg := err.Error()
	if rest, found := strings.CutPrefix(msg, sentinel.Error()+": "); found {
		return rest
	}
	return msg
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, badRequest("invalid " + name)
	}
	return id, nil
}

func parseUUIDs(raw []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		if id, err := uuid.Parse(s); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
