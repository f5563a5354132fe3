package allocation

import (
	"context"
	"time"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/costing"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/repository"
)

// Repositories colaboradores de lectura atados a una misma foto de datos.
type Repositories struct {
	Batches        repository.BatchRepository
	Specifications repository.SpecificationRepository
	Prices         repository.PriceRepository
	Items          repository.ItemRepository
	Warehouses     repository.WarehouseRepository
}

// SnapshotRunner ejecuta fn con repositorios que leen una sola foto consistente
// (en PostgreSQL, una transacción REPEATABLE READ de solo lectura).
type SnapshotRunner interface {
	Run(ctx context.Context, fn func(repos Repositories) error) error
}

// StaticRunner entrega siempre los mismos repositorios (memoria, pruebas).
type StaticRunner Repositories

// Run implementa SnapshotRunner.
func (r StaticRunner) Run(_ context.Context, fn func(repos Repositories) error) error {
	return fn(Repositories(r))
}

// UnitCostResolver resuelve costos unitarios antes de ordenar por costo.
// *costing.Calculator lo implementa.
type UnitCostResolver interface {
	ResolveUnitCosts(ctx context.Context, itemCode string, batches []entity.Batch, pc costing.PriceContext) (map[string]costing.Resolution, error)
}

// Observer recibe una observación por cada estrategia ejecutada (métricas).
type Observer interface {
	ObserveStrategyRun(strategy, status string, compliant bool, elapsed time.Duration)
	ObserveOptimization(recommended string, infeasible bool)
}

type nopObserver struct{}

func (nopObserver) ObserveStrategyRun(string, string, bool, time.Duration) {}
func (nopObserver) ObserveOptimization(string, bool)                       {}
