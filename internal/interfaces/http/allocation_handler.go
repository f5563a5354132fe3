package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	appalloc "github.com/rogerboy38/raven-ai-agent-sub002/internal/application/allocation"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/application/dto"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/application/report"
	"github.com/rogerboy38/raven-ai-agent-sub002/pkg/logger"
)

// AllocationHandler maneja las peticiones HTTP de asignación de lotes (protegido).
type AllocationHandler struct {
	svc     *appalloc.Service
	picking *report.PickingListUseCase
	log     *logger.Logger
}

// NewAllocationHandler construye el handler. picking puede ser nil.
func NewAllocationHandler(svc *appalloc.Service, picking *report.PickingListUseCase, log *logger.Logger) *AllocationHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AllocationHandler{svc: svc, picking: picking, log: log}
}

// Select godoc
// @Summary      Seleccionar lotes para un requerimiento
// @Tags         allocations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SelectRequest  true  "Artículos y cantidades"
// @Success      200   {object}  dto.PlanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/allocations/select [post]
func (h *AllocationHandler) Select(c *fiber.Ctx) error {
	var in dto.SelectRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	req, err := in.ToUseCase()
	if err != nil {
		return writeError(c, h.log, err)
	}
	plan, err := h.svc.SelectBatchesForRequirement(c.UserContext(), req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewPlanResponse(plan))
}

// Optimize godoc
// @Summary      Comparar estrategias para un artículo
// @Tags         allocations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OptimizeRequest  true  "Artículo, cantidad y estrategias"
// @Success      200   {object}  dto.PlanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/allocations/optimize [post]
func (h *AllocationHandler) Optimize(c *fiber.Ctx) error {
	var in dto.OptimizeRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	req, err := in.ToUseCase()
	if err != nil {
		return writeError(c, h.log, err)
	}
	plan, err := h.svc.SelectBatchesForRequirement(c.UserContext(), req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewPlanResponse(plan))
}

// Alternatives godoc
// @Summary      Sugerir alternativas que cumplan la especificación
// @Tags         allocations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AlternativesRequest  true  "Asignación propuesta"
// @Success      200   {object}  dto.AlternativesResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/allocations/alternatives [post]
func (h *AllocationHandler) Alternatives(c *fiber.Ctx) error {
	var in dto.AlternativesRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	req, err := in.ToUseCase()
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.svc.SuggestAlternatives(c.UserContext(), req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewAlternativesResponse(out))
}

// PickingList godoc
// @Summary      Lista de surtido en PDF
// @Tags         allocations
// @Security     Bearer
// @Accept       json
// @Produce      application/pdf
// @Param        body  body  dto.SelectRequest  true  "Artículos y cantidades"
// @Success      200
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/allocations/picking-list [post]
func (h *AllocationHandler) PickingList(c *fiber.Ctx) error {
	if h.picking == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_CONFIGURED", Message: "generador de PDF no configurado"})
	}
	var in dto.SelectRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	req, err := in.ToUseCase()
	if err != nil {
		return writeError(c, h.log, err)
	}
	doc, plan, err := h.picking.Generate(c.UserContext(), req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.log.Info().Str("plan_id", plan.PlanID).Str("user_id", GetUserID(c)).Int("bytes", len(doc)).Msg("lista de surtido generada")
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="surtido-`+plan.PlanID+`.pdf"`)
	c.Set("X-Plan-Status", string(plan.OverallStatus))
	c.Set("X-Plan-Items", strconv.Itoa(len(plan.Items)))
	return c.Send(doc)
}
