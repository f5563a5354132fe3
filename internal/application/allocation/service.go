package allocation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/allocation"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/compliance"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/costing"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
	"github.com/rogerboy38/raven-ai-agent-sub002/pkg/config"
	"github.com/rogerboy38/raven-ai-agent-sub002/pkg/logger"
)

// StrategyAll pide ejecutar las cuatro estrategias (análisis "qué pasaría si").
const StrategyAll = "all"

// Defaults valores por defecto inyectados al construir el servicio.
type Defaults struct {
	Warehouse      string
	NearExpiryDays int
	IncludeExpired bool
	Strategy       allocation.StrategyKind
	Weights        allocation.BalanceWeights
	PriceList      string
	Currency       string
}

// DefaultsFromConfig traduce la configuración ALLOC_*.
func DefaultsFromConfig(c config.AllocConfig) (Defaults, error) {
	kind, err := allocation.ParseStrategyKind(c.DefaultStrategy)
	if err != nil {
		return Defaults{}, fmt.Errorf("ALLOC_DEFAULT_STRATEGY: %w", err)
	}
	return Defaults{
		Warehouse:      c.DefaultWarehouse,
		NearExpiryDays: c.NearExpiryDays,
		IncludeExpired: c.IncludeExpired,
		Strategy:       kind,
		Weights:        allocation.BalanceWeights{ExpiryUrgency: c.UrgencyWeight, Cost: c.CostWeight},
		PriceList:      c.PriceList,
		Currency:       c.Currency,
	}, nil
}

// RequiredItem cantidad requerida de un artículo.
type RequiredItem struct {
	ItemCode    string
	RequiredQty decimal.Decimal
}

// SelectRequest solicitud de asignación para una o varias líneas de requerimiento.
type SelectRequest struct {
	Items          []RequiredItem
	Warehouse      string // vacío = bodega por defecto
	Strategy       string // nombre o "all"; vacío = estrategia por defecto
	Strategies     []allocation.StrategyKind
	Customer       string
	IncludeExpired *bool
	OutputQuantity *decimal.Decimal
	AsOf           time.Time
}

// PlanStatus estado global del plan.
type PlanStatus string

const (
	PlanFulfilled PlanStatus = "FULFILLED"
	PlanPartial   PlanStatus = "PARTIAL"
)

// ItemAllocation resultado por artículo.
type ItemAllocation struct {
	ItemCode    string
	Required    decimal.Decimal
	Result      OptimizeResult
	Recommended StrategyResult
	Comparison  Comparison
}

// Plan respuesta de SelectBatchesForRequirement.
type Plan struct {
	PlanID        string
	CreatedAt     time.Time
	Warehouse     string
	Customer      string
	Currency      string
	Items         []ItemAllocation
	OverallStatus PlanStatus
}

// Service caso de uso de asignación de lotes.
type Service struct {
	runner   SnapshotRunner
	engine   *Engine
	defaults Defaults
	log      *logger.Logger
	now      func() time.Time
}

// NewService construye el servicio.
func NewService(runner SnapshotRunner, engine *Engine, defaults Defaults, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if engine == nil {
		engine = NewEngine(nil, 0, log)
	}
	if !defaults.Strategy.IsValid() {
		defaults.Strategy = allocation.StrategyBalanced
	}
	return &Service{runner: runner, engine: engine, defaults: defaults, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// SelectBatchesForRequirement asigna lotes a cada línea del requerimiento leyendo
// catálogo, especificaciones y precios de una misma foto de datos.
func (s *Service) SelectBatchesForRequirement(ctx context.Context, req SelectRequest) (*Plan, error) {
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}
	kinds, err := s.kinds(req)
	if err != nil {
		return nil, err
	}
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = s.now()
	}
	warehouse := req.Warehouse
	if warehouse == "" {
		warehouse = s.defaults.Warehouse
	}
	plan := &Plan{
		PlanID:        uuid.NewString(),
		CreatedAt:     asOf,
		Warehouse:     warehouse,
		Customer:      req.Customer,
		Currency:      s.defaults.Currency,
		Items:         make([]ItemAllocation, 0, len(req.Items)),
		OverallStatus: PlanFulfilled,
	}

	err = s.runner.Run(ctx, func(repos Repositories) error {
		if err := checkWarehouse(ctx, repos, warehouse); err != nil {
			return err
		}
		calc := costing.NewCalculator(repos.Prices, repos.Items)
		for _, it := range req.Items {
			res, err := s.optimizeItem(ctx, repos, calc, it, kinds, req, warehouse, asOf)
			if err != nil {
				return err
			}
			ia := ItemAllocation{ItemCode: it.ItemCode, Required: it.RequiredQty, Result: res, Comparison: Compare(res)}
			if rec := res.RecommendedResult(); rec != nil {
				ia.Recommended = *rec
			}
			if !ia.Recommended.Allocation.Fulfilled() {
				plan.OverallStatus = PlanPartial
			}
			s.log.Info().
				Str("plan_id", plan.PlanID).
				Str("item", it.ItemCode).
				Str("strategy", res.Recommended.String()).
				Str("status", string(ia.Recommended.Allocation.Status)).
				Str("shortage", ia.Recommended.Allocation.Shortage.String()).
				Bool("compliant", ia.Recommended.Compliant()).
				Msg("asignación de lotes")
			plan.Items = append(plan.Items, ia)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *Service) optimizeItem(ctx context.Context, repos Repositories, calc *costing.Calculator, it RequiredItem, kinds []allocation.StrategyKind, req SelectRequest, warehouse string, asOf time.Time) (OptimizeResult, error) {
	if err := checkItem(ctx, repos, it); err != nil {
		return OptimizeResult{}, err
	}
	batches, err := repos.Batches.GetAvailableBatches(ctx, it.ItemCode, warehouse)
	if err != nil {
		return OptimizeResult{}, &domain.DataUnavailableError{Collaborator: "catalog", ItemCode: it.ItemCode, Err: err}
	}
	spec, err := s.specification(ctx, repos, it.ItemCode, req.Customer)
	if err != nil {
		return OptimizeResult{}, err
	}
	return s.engine.Optimize(ctx, OptimizeRequest{
		ItemCode:      it.ItemCode,
		Required:      it.RequiredQty,
		Candidates:    batches,
		Specification: spec,
		Strategies:    kinds,
		Options:       s.selectorOptions(warehouse, req.IncludeExpired, asOf),
		Price:         s.priceContext(asOf, req.OutputQuantity),
		Costs:         calc,
	})
}

// AlternativesRequest verifica una asignación propuesta y busca alternativas si no cumple.
type AlternativesRequest struct {
	ItemCode        string
	Customer        string
	Warehouse       string
	Lines           []LineRequest
	IncludeExpired  *bool
	MaxAlternatives int
	AsOf            time.Time
}

// LineRequest lote y cantidad propuestos.
type LineRequest struct {
	BatchID  string
	Quantity decimal.Decimal
}

// AlternativesResult cumplimiento de la asignación propuesta y alternativas.
type AlternativesResult struct {
	Allocation entity.Allocation
	Current    entity.ComplianceResult
	Suggestion compliance.Suggestion
}

// SuggestAlternatives evalúa la asignación propuesta contra la especificación del artículo.
func (s *Service) SuggestAlternatives(ctx context.Context, req AlternativesRequest) (*AlternativesResult, error) {
	if strings.TrimSpace(req.ItemCode) == "" {
		return nil, domain.NewValidationError("item_code", "el artículo es obligatorio")
	}
	if len(req.Lines) == 0 {
		return nil, domain.NewValidationError("lines", "debe indicar al menos un lote")
	}
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = s.now()
	}
	warehouse := req.Warehouse
	if warehouse == "" {
		warehouse = s.defaults.Warehouse
	}
	var out *AlternativesResult
	err := s.runner.Run(ctx, func(repos Repositories) error {
		batches, err := repos.Batches.GetAvailableBatches(ctx, req.ItemCode, warehouse)
		if err != nil {
			return &domain.DataUnavailableError{Collaborator: "catalog", ItemCode: req.ItemCode, Err: err}
		}
		alloc, err := proposedAllocation(req, batches)
		if err != nil {
			return err
		}
		spec, err := s.specification(ctx, repos, req.ItemCode, req.Customer)
		if err != nil {
			return err
		}
		out = &AlternativesResult{Allocation: alloc, Current: compliance.Check(alloc, spec, batches), Suggestion: compliance.Suggestion{Options: []compliance.AlternativeOption{}}}
		if out.Current.Passed {
			return nil
		}

		opts := s.selectorOptions(warehouse, req.IncludeExpired, asOf)
		price := s.priceContext(asOf, nil)
		resolved, err := costing.NewCalculator(repos.Prices, repos.Items).
			ResolveUnitCosts(ctx, req.ItemCode, allocation.Eligible(batches, opts), price)
		if err != nil {
			return err
		}
		out.Suggestion = compliance.SuggestAlternatives(alloc, spec, batches, compliance.SuggestOptions{
			MaxAlternatives: req.MaxAlternatives,
			Warehouse:       warehouse,
			IncludeExpired:  opts.IncludeExpired,
			AsOf:            asOf,
			Cost: func(a entity.Allocation) (decimal.Decimal, bool) {
				b := costing.Breakdown(a, resolved, price)
				return b.TotalCost, b.AllPriced()
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) specification(ctx context.Context, repos Repositories, itemCode, customer string) (*entity.Specification, error) {
	if repos.Specifications == nil {
		return nil, nil
	}
	spec, err := repos.Specifications.GetSpecification(ctx, itemCode, customer)
	if err != nil {
		return nil, &domain.DataUnavailableError{Collaborator: "specification", ItemCode: itemCode, Err: err}
	}
	if spec == nil {
		s.log.Warn().Str("item", itemCode).Str("customer", customer).Msg("sin especificación técnica; se omite el cumplimiento")
	}
	return spec, nil
}

func (s *Service) selectorOptions(warehouse string, includeExpired *bool, asOf time.Time) allocation.Options {
	opts := allocation.Options{
		Warehouse:      warehouse,
		IncludeExpired: s.defaults.IncludeExpired,
		NearExpiryDays: s.defaults.NearExpiryDays,
		AsOf:           asOf,
		Weights:        s.defaults.Weights,
	}
	if includeExpired != nil {
		opts.IncludeExpired = *includeExpired
	}
	return opts
}

func (s *Service) priceContext(asOf time.Time, output *decimal.Decimal) costing.PriceContext {
	return costing.PriceContext{PriceList: s.defaults.PriceList, AsOf: asOf, Currency: s.defaults.Currency, OutputQuantity: output}
}

func (s *Service) kinds(req SelectRequest) ([]allocation.StrategyKind, error) {
	if len(req.Strategies) > 0 {
		return req.Strategies, nil
	}
	name := strings.TrimSpace(strings.ToLower(req.Strategy))
	switch name {
	case "":
		return []allocation.StrategyKind{s.defaults.Strategy}, nil
	case StrategyAll:
		return allocation.Kinds(), nil
	}
	k, err := allocation.ParseStrategyKind(name)
	if err != nil {
		return nil, domain.NewValidationError("strategy", err.Error())
	}
	return []allocation.StrategyKind{k}, nil
}

func validateItems(items []RequiredItem) error {
	if len(items) == 0 {
		return domain.NewValidationError("items", "debe indicar al menos un artículo")
	}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.ItemCode) == "" {
			return domain.NewValidationError("item_code", "el artículo es obligatorio")
		}
		if !it.RequiredQty.IsPositive() {
			return &domain.ValidationError{Field: "required_qty", ItemCode: it.ItemCode, Required: it.RequiredQty, Reason: "la cantidad requerida debe ser positiva"}
		}
		if _, dup := seen[it.ItemCode]; dup {
			return &domain.ValidationError{Field: "item_code", ItemCode: it.ItemCode, Required: it.RequiredQty, Reason: "artículo repetido en la solicitud"}
		}
		seen[it.ItemCode] = struct{}{}
	}
	return nil
}

func checkItem(ctx context.Context, repos Repositories, it RequiredItem) error {
	if repos.Items == nil {
		return nil
	}
	item, err := repos.Items.GetByCode(ctx, it.ItemCode)
	if err != nil {
		return &domain.DataUnavailableError{Collaborator: "item", ItemCode: it.ItemCode, Err: err}
	}
	if item == nil {
		return &domain.ValidationError{Field: "item_code", ItemCode: it.ItemCode, Required: it.RequiredQty, Reason: "artículo desconocido"}
	}
	return nil
}

func checkWarehouse(ctx context.Context, repos Repositories, name string) error {
	if name == "" || repos.Warehouses == nil {
		return nil
	}
	w, err := repos.Warehouses.GetByName(ctx, name)
	if err != nil {
		return &domain.DataUnavailableError{Collaborator: "warehouse", Err: err}
	}
	if w == nil {
		return domain.NewValidationError("warehouse", "bodega desconocida: "+name)
	}
	return nil
}

// proposedAllocation arma la asignación propuesta con los datos del catálogo.
func proposedAllocation(req AlternativesRequest, batches []entity.Batch) (entity.Allocation, error) {
	byID := make(map[string]entity.Batch, len(batches))
	for _, b := range batches {
		byID[b.ID] = b
	}
	alloc := entity.Allocation{ItemCode: req.ItemCode, Status: entity.AllocationFulfilled}
	seen := make(map[string]struct{}, len(req.Lines))
	for _, l := range req.Lines {
		if !l.Quantity.IsPositive() {
			return entity.Allocation{}, &domain.ValidationError{Field: "quantity", ItemCode: req.ItemCode, Required: l.Quantity, Reason: "la cantidad del lote debe ser positiva"}
		}
		b, ok := byID[l.BatchID]
		if !ok {
			return entity.Allocation{}, domain.NewValidationError("batch_id", "lote no encontrado: "+l.BatchID)
		}
		if _, dup := seen[b.ID]; dup {
			return entity.Allocation{}, domain.NewValidationError("batch_id", "lote repetido en la propuesta: "+b.ID)
		}
		seen[b.ID] = struct{}{}
		if l.Quantity.GreaterThan(b.QuantityAvailable) {
			return entity.Allocation{}, &domain.ValidationError{
				Field: "quantity", ItemCode: req.ItemCode, Required: l.Quantity,
				Reason: fmt.Sprintf("el lote %s solo tiene %s disponible", b.ID, b.QuantityAvailable.String()),
			}
		}
		alloc.Lines = append(alloc.Lines, entity.AllocationLine{
			BatchID:         b.ID,
			Warehouse:       b.Warehouse,
			QuantityTaken:   l.Quantity,
			ExpiryDate:      b.ExpiryDate,
			ManufactureDate: b.ManufactureDate,
		})
		alloc.Required = alloc.Required.Add(l.Quantity)
	}
	alloc.Allocated = alloc.Required
	return alloc, nil
}
