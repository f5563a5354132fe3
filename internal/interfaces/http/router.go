package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	appalloc "github.com/rogerboy38/raven-ai-agent-sub002/internal/application/allocation"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/application/report"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/infrastructure/metrics"
	"github.com/rogerboy38/raven-ai-agent-sub002/pkg/logger"
)

// Roles con acceso a la asignación de lotes.
var allocationRoles = []string{"admin", "planner", "bodeguero"}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Allocation  *appalloc.Service
	PickingList *report.PickingListUseCase
	Metrics     *metrics.Collector // opcional
	Log         *logger.Logger
	JWTSecret   string
	AppName     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), RequireRole(allocationRoles...))

	allocations := protected.Group("/allocations")
	allocationHandler := NewAllocationHandler(deps.Allocation, deps.PickingList, deps.Log)
	allocations.Post("/select", allocationHandler.Select)
	allocations.Post("/optimize", allocationHandler.Optimize)
	allocations.Post("/alternatives", allocationHandler.Alternatives)
	allocations.Post("/picking-list", allocationHandler.PickingList)

	batches := protected.Group("/batches")
	batches.Get("/:code/identifier", BatchIdentifier)
}
