package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/application/dto"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/batchcode"
)

// BatchIdentifier godoc
// @Summary      Decodificar el identificador de un código de lote
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código de lote"
// @Success      200   {object}  dto.IdentifierResponse
// @Router       /api/batches/{code}/identifier [get]
func BatchIdentifier(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_CODE", Message: "code es requerido"})
	}
	id, ok := batchcode.Parse(code)
	return c.JSON(dto.NewIdentifierResponse(code, id, ok))
}
