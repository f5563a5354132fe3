package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/application/dto"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain"
	"github.com/rogerboy38/raven-ai-agent-sub002/pkg/logger"
)

// StatusClientClosedRequest el cliente abandonó la solicitud antes de la respuesta.
const StatusClientClosedRequest = 499

// writeError traduce errores de los casos de uso a respuestas HTTP.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var verr *domain.ValidationError
	var derr *domain.DataUnavailableError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.As(err, &derr), errors.Is(err, domain.ErrDataUnavailable):
		log.Warn().Err(err).Str("path", c.Path()).Msg("colaborador no disponible")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "DATA_UNAVAILABLE", Message: err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.Status(StatusClientClosedRequest).JSON(dto.ErrorResponse{Code: "CANCELLED", Message: "solicitud cancelada"})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
