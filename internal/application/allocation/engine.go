// Package allocation orquesta la selección de lotes: ejecuta las estrategias pedidas
// sobre la misma foto de inventario, verifica cumplimiento, valora el costo y recomienda.
package allocation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/allocation"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/batchcode"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/compliance"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/costing"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/inventory"
	"github.com/rogerboy38/raven-ai-agent-sub002/pkg/logger"
)

// OptimizeRequest entrada del motor para un artículo.
type OptimizeRequest struct {
	ItemCode      string
	Required      decimal.Decimal
	Candidates    []entity.Batch
	Specification *entity.Specification // nil = sin verificación de cumplimiento
	Strategies    []allocation.StrategyKind
	Options       allocation.Options // Strategy y UnitCosts se ignoran
	Price         costing.PriceContext
	Costs         UnitCostResolver // nil = solo la tasa registrada en cada lote
}

// Metrics indicadores de comparación entre estrategias.
type Metrics struct {
	TotalCost      decimal.Decimal
	BatchCount     int
	MaxAgeDays     *int
	FEFOViolations int
	FEFOCompliant  bool
}

// StrategyResult resultado completo de una estrategia.
type StrategyResult struct {
	Strategy     allocation.StrategyKind
	Allocation   entity.Allocation
	Compliance   entity.ComplianceResult
	Cost         entity.CostBreakdown
	Metrics      Metrics
	Alternatives *compliance.Suggestion // solo cuando el cumplimiento falla
}

// Compliant cumple la especificación (o no había especificación).
func (r StrategyResult) Compliant() bool { return r.Compliance.Passed }

// OptimizeResult resultados en el orden pedido más la recomendación.
type OptimizeResult struct {
	ItemCode    string
	Required    decimal.Decimal
	Results     []StrategyResult
	Recommended allocation.StrategyKind
	Infeasible  bool // ninguna estrategia cubre la cantidad
	Warnings    []string
}

// RecommendedResult devuelve el resultado recomendado (nil si no hay resultados).
func (r OptimizeResult) RecommendedResult() *StrategyResult {
	for i := range r.Results {
		if r.Results[i].Strategy == r.Recommended {
			return &r.Results[i]
		}
	}
	return nil
}

// Engine motor de optimización. Es seguro para uso concurrente.
type Engine struct {
	observer        Observer
	maxAlternatives int
	log             *logger.Logger
}

// NewEngine construye el motor. observer y log pueden ser nil.
func NewEngine(observer Observer, maxAlternatives int, log *logger.Logger) *Engine {
	if observer == nil {
		observer = nopObserver{}
	}
	if maxAlternatives <= 0 {
		maxAlternatives = compliance.DefaultMaxAlternatives
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{observer: observer, maxAlternatives: maxAlternatives, log: log}
}

// Optimize ejecuta cada estrategia sobre su propia copia de los candidatos en paralelo.
// Los costos unitarios se resuelven una sola vez antes de repartir el trabajo.
func (e *Engine) Optimize(ctx context.Context, req OptimizeRequest) (OptimizeResult, error) {
	if !req.Required.IsPositive() {
		return OptimizeResult{}, &domain.ValidationError{
			Field: "required_qty", ItemCode: req.ItemCode, Required: req.Required,
			Reason: "la cantidad requerida debe ser positiva",
		}
	}
	kinds, err := normalizeKinds(req.Strategies)
	if err != nil {
		return OptimizeResult{}, err
	}

	opts := req.Options
	if opts.AsOf.IsZero() {
		opts.AsOf = time.Now().UTC()
	}
	price := req.Price
	if price.AsOf.IsZero() {
		price.AsOf = opts.AsOf
	}

	eligible := allocation.Eligible(req.Candidates, opts)
	for _, b := range eligible {
		if batchcode.Ambiguous(b.ID) {
			e.log.Warn().Str("item", req.ItemCode).Str("batch", b.ID).Msg("batchcode: código ambiguo")
		}
	}

	resolver := req.Costs
	if resolver == nil {
		resolver = costing.NewCalculator(nil, nil)
	}
	resolved, err := resolver.ResolveUnitCosts(ctx, req.ItemCode, eligible, price)
	if err != nil {
		return OptimizeResult{}, err
	}
	opts.UnitCosts = costing.UnitCosts(resolved)

	results := make([]StrategyResult, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, k := range kinds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.run(req, k, opts, price, resolved, eligible)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return OptimizeResult{}, err
	}

	out := OptimizeResult{ItemCode: req.ItemCode, Required: req.Required, Results: results}
	out.Recommended = results[recommend(results)].Strategy
	out.Infeasible = true
	for _, r := range results {
		if r.Allocation.Status != entity.AllocationShort {
			out.Infeasible = false
		}
	}
	if req.Specification == nil {
		out.Warnings = append(out.Warnings, "sin especificación técnica: cumplimiento no verificado")
	}
	e.observer.ObserveOptimization(out.Recommended.String(), out.Infeasible)
	return out, nil
}

func (e *Engine) run(req OptimizeRequest, kind allocation.StrategyKind, opts allocation.Options, price costing.PriceContext, resolved map[string]costing.Resolution, eligible []entity.Batch) (StrategyResult, error) {
	start := time.Now()
	opts.Strategy = kind
	candidates := entity.CloneBatches(req.Candidates)

	alloc, err := allocation.Select(req.ItemCode, req.Required, candidates, opts)
	if err != nil {
		return StrategyResult{}, err
	}
	res := StrategyResult{
		Strategy:   kind,
		Allocation: alloc,
		Compliance: compliance.Check(alloc, req.Specification, candidates),
		Cost:       costing.Breakdown(alloc, resolved, price),
	}
	violations := inventory.FEFOViolations(alloc.Lines, eligible)
	res.Metrics = Metrics{
		TotalCost:      res.Cost.TotalCost,
		BatchCount:     len(alloc.Lines),
		FEFOViolations: violations,
		FEFOCompliant:  violations == 0,
	}
	if age, ok := inventory.MaxAgeDays(alloc.Lines, opts.AsOf); ok {
		res.Metrics.MaxAgeDays = &age
	}

	if !res.Compliance.Passed {
		s := compliance.SuggestAlternatives(alloc, req.Specification, candidates, compliance.SuggestOptions{
			MaxAlternatives: e.maxAlternatives,
			Warehouse:       opts.Warehouse,
			IncludeExpired:  opts.IncludeExpired,
			AsOf:            opts.AsOf,
			Cost: func(a entity.Allocation) (decimal.Decimal, bool) {
				b := costing.Breakdown(a, resolved, price)
				return b.TotalCost, b.AllPriced()
			},
		})
		res.Alternatives = &s
	}

	e.observer.ObserveStrategyRun(kind.String(), string(alloc.Status), res.Compliance.Passed, time.Since(start))
	return res, nil
}

// normalizeKinds valida la lista y elimina duplicados conservando el orden.
func normalizeKinds(in []allocation.StrategyKind) ([]allocation.StrategyKind, error) {
	if len(in) == 0 {
		return nil, domain.NewValidationError("strategies", "debe indicar al menos una estrategia")
	}
	seen := make(map[allocation.StrategyKind]struct{}, len(in))
	out := make([]allocation.StrategyKind, 0, len(in))
	for _, k := range in {
		if !k.IsValid() {
			return nil, domain.NewValidationError("strategies", "estrategia desconocida")
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out, nil
}

// recommend: la primera que cumple en orden de prioridad, prefiriendo las que cubren
// la cantidad; si ninguna cumple, Balanced si se pidió, si no la primera pedida.
func recommend(results []StrategyResult) int {
	pos := make(map[allocation.StrategyKind]int, len(results))
	for i, r := range results {
		pos[r.Strategy] = i
	}
	for _, needFulfilled := range []bool{true, false} {
		for _, k := range allocation.Kinds() {
			i, ok := pos[k]
			if !ok || !results[i].Compliant() {
				continue
			}
			if needFulfilled && !results[i].Allocation.Fulfilled() {
				continue
			}
			return i
		}
	}
	if i, ok := pos[allocation.StrategyBalanced]; ok {
		return i
	}
	return 0
}
