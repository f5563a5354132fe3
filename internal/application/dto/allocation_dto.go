package dto

import (
	"time"

	"github.com/shopspring/decimal"

	appalloc "github.com/rogerboy38/raven-ai-agent-sub002/internal/application/allocation"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/allocation"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/compliance"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
)

// RequiredItemRequest línea de requerimiento.
type RequiredItemRequest struct {
	ItemCode    string          `json:"item_code"`
	RequiredQty decimal.Decimal `json:"required_qty"`
}

// SelectRequest body para POST /api/allocations/select.
type SelectRequest struct {
	Items          []RequiredItemRequest `json:"items"`
	Warehouse      string                `json:"warehouse,omitempty"`
	Strategy       string                `json:"strategy,omitempty"` // balanced | fefo | min_cost | min_batches | all
	Customer       string                `json:"customer,omitempty"`
	IncludeExpired *bool                 `json:"include_expired,omitempty"`
	OutputQuantity *decimal.Decimal      `json:"output_quantity,omitempty"`
	AsOf           string                `json:"as_of,omitempty"`
}

// ToUseCase traduce al modelo del caso de uso.
func (r SelectRequest) ToUseCase() (appalloc.SelectRequest, error) {
	asOf, err := ParseAsOf(r.AsOf)
	if err != nil {
		return appalloc.SelectRequest{}, err
	}
	out := appalloc.SelectRequest{
		Warehouse: r.Warehouse, Strategy: r.Strategy, Customer: r.Customer,
		IncludeExpired: r.IncludeExpired, OutputQuantity: r.OutputQuantity, AsOf: asOf,
	}
	for _, it := range r.Items {
		out.Items = append(out.Items, appalloc.RequiredItem{ItemCode: it.ItemCode, RequiredQty: it.RequiredQty})
	}
	return out, nil
}

// OptimizeRequest body para POST /api/allocations/optimize (qué pasaría si).
type OptimizeRequest struct {
	ItemCode       string           `json:"item_code"`
	RequiredQty    decimal.Decimal  `json:"required_qty"`
	Strategies     []string         `json:"strategies"` // vacío = las cuatro
	Warehouse      string           `json:"warehouse,omitempty"`
	Customer       string           `json:"customer,omitempty"`
	IncludeExpired *bool            `json:"include_expired,omitempty"`
	OutputQuantity *decimal.Decimal `json:"output_quantity,omitempty"`
	AsOf           string           `json:"as_of,omitempty"`
}

// ToUseCase traduce al modelo del caso de uso; las estrategias se validan aquí.
func (r OptimizeRequest) ToUseCase() (appalloc.SelectRequest, error) {
	asOf, err := ParseAsOf(r.AsOf)
	if err != nil {
		return appalloc.SelectRequest{}, err
	}
	out := appalloc.SelectRequest{
		Items:     []appalloc.RequiredItem{{ItemCode: r.ItemCode, RequiredQty: r.RequiredQty}},
		Warehouse: r.Warehouse, Customer: r.Customer,
		IncludeExpired: r.IncludeExpired, OutputQuantity: r.OutputQuantity, AsOf: asOf,
	}
	if len(r.Strategies) == 0 {
		out.Strategy = appalloc.StrategyAll
		return out, nil
	}
	for _, s := range r.Strategies {
		k, err := allocation.ParseStrategyKind(s)
		if err != nil {
			return appalloc.SelectRequest{}, domain.NewValidationError("strategies", err.Error())
		}
		out.Strategies = append(out.Strategies, k)
	}
	return out, nil
}

// LineRequest lote y cantidad propuestos.
type LineRequest struct {
	BatchID  string          `json:"batch_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// AlternativesRequest body para POST /api/allocations/alternatives.
type AlternativesRequest struct {
	ItemCode        string        `json:"item_code"`
	Customer        string        `json:"customer,omitempty"`
	Warehouse       string        `json:"warehouse,omitempty"`
	Lines           []LineRequest `json:"lines"`
	IncludeExpired  *bool         `json:"include_expired,omitempty"`
	MaxAlternatives int           `json:"max_alternatives,omitempty"`
	AsOf            string        `json:"as_of,omitempty"`
}

// ToUseCase traduce al modelo del caso de uso.
func (r AlternativesRequest) ToUseCase() (appalloc.AlternativesRequest, error) {
	asOf, err := ParseAsOf(r.AsOf)
	if err != nil {
		return appalloc.AlternativesRequest{}, err
	}
	out := appalloc.AlternativesRequest{
		ItemCode: r.ItemCode, Customer: r.Customer, Warehouse: r.Warehouse,
		IncludeExpired: r.IncludeExpired, MaxAlternatives: r.MaxAlternatives, AsOf: asOf,
	}
	for _, l := range r.Lines {
		out.Lines = append(out.Lines, appalloc.LineRequest{BatchID: l.BatchID, Quantity: l.Quantity})
	}
	return out, nil
}

// PlanResponse respuesta de select y optimize.
type PlanResponse struct {
	PlanID        string              `json:"plan_id"`
	CreatedAt     time.Time           `json:"created_at"`
	Warehouse     string              `json:"warehouse,omitempty"`
	Customer      string              `json:"customer,omitempty"`
	Currency      string              `json:"currency"`
	OverallStatus string              `json:"overall_status"`
	Items         []ItemAllocationDTO `json:"items"`
}

// ItemAllocationDTO resultado por artículo.
type ItemAllocationDTO struct {
	ItemCode            string              `json:"item_code"`
	Required            decimal.Decimal     `json:"required"`
	RecommendedStrategy string              `json:"recommended_strategy"`
	Infeasible          bool                `json:"infeasible"`
	Warnings            []string            `json:"warnings,omitempty"`
	Recommended         StrategyResultDTO   `json:"recommended"`
	Results             []StrategyResultDTO `json:"results,omitempty"`
	Comparison          []ComparisonRowDTO  `json:"comparison,omitempty"`
}

// StrategyResultDTO resultado de una estrategia.
type StrategyResultDTO struct {
	Strategy     string              `json:"strategy"`
	Status       string              `json:"status"`
	Allocated    decimal.Decimal     `json:"allocated"`
	Shortage     decimal.Decimal     `json:"shortage"`
	Lines        []AllocationLineDTO `json:"lines"`
	Compliance   ComplianceDTO       `json:"compliance"`
	Cost         CostDTO             `json:"cost"`
	Metrics      MetricsDTO          `json:"metrics"`
	Alternatives *AlternativesDTO    `json:"alternatives,omitempty"`
}

// AllocationLineDTO lote asignado con su costo.
type AllocationLineDTO struct {
	BatchID         string          `json:"batch_id"`
	Warehouse       string          `json:"warehouse,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	ExpiryDate      *string         `json:"expiry_date,omitempty"`
	ManufactureDate *string         `json:"manufacture_date,omitempty"`
	DaysToExpiry    *int            `json:"days_to_expiry,omitempty"`
	Warnings        []string        `json:"warnings,omitempty"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	LineCost        decimal.Decimal `json:"line_cost"`
	PriceSource     string          `json:"price_source,omitempty"`
}

// ParameterDTO resultado de un parámetro de calidad.
type ParameterDTO struct {
	Name      string           `json:"name"`
	Value     *decimal.Decimal `json:"value,omitempty"`
	Min       *decimal.Decimal `json:"min,omitempty"`
	Max       *decimal.Decimal `json:"max,omitempty"`
	Status    string           `json:"status"`
	Deviation decimal.Decimal  `json:"deviation"`
}

// ComplianceDTO verificación contra la hoja técnica.
type ComplianceDTO struct {
	Passed     bool            `json:"passed"`
	Skipped    bool            `json:"skipped,omitempty"`
	Score      decimal.Decimal `json:"score"`
	Parameters []ParameterDTO  `json:"parameters"`
	Warnings   []string        `json:"warnings,omitempty"`
}

// CostDTO totales de costo.
type CostDTO struct {
	TotalCost         decimal.Decimal  `json:"total_cost"`
	Currency          string           `json:"currency"`
	CostPerOutputUnit *decimal.Decimal `json:"cost_per_output_unit,omitempty"`
	Warnings          []string         `json:"warnings,omitempty"`
}

// MetricsDTO indicadores de comparación.
type MetricsDTO struct {
	TotalCost      decimal.Decimal `json:"total_cost"`
	BatchCount     int             `json:"batch_count"`
	MaxAgeDays     *int            `json:"max_age_days,omitempty"`
	FEFOViolations int             `json:"fefo_violations"`
	FEFOCompliant  bool            `json:"fefo_compliant"`
}

// BatchQtyDTO lote y cantidad de una alternativa.
type BatchQtyDTO struct {
	BatchID  string          `json:"batch_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// AlternativeDTO una alternativa que cumple.
type AlternativeDTO struct {
	Kind       string           `json:"kind"`
	Parameter  string           `json:"parameter,omitempty"`
	Proportion *decimal.Decimal `json:"proportion,omitempty"`
	Batches    []BatchQtyDTO    `json:"batches"`
	Score      decimal.Decimal  `json:"score"`
	TotalCost  *decimal.Decimal `json:"total_cost,omitempty"`
}

// AlternativesDTO alternativas y análisis.
type AlternativesDTO struct {
	Options                    []AlternativeDTO `json:"options"`
	LimitingParameter          string           `json:"limiting_parameter,omitempty"`
	MaxDeviation               decimal.Decimal  `json:"max_deviation"`
	CompliantAlternativesFound int              `json:"compliant_alternatives_found"`
	CandidatesEvaluated        int              `json:"candidates_evaluated"`
}

// AlternativesResponse respuesta de POST /api/allocations/alternatives.
type AlternativesResponse struct {
	ItemCode     string          `json:"item_code"`
	Current      ComplianceDTO   `json:"current"`
	Alternatives AlternativesDTO `json:"alternatives"`
}

// ComparisonRowDTO fila de la comparación entre estrategias.
type ComparisonRowDTO struct {
	Strategy        string          `json:"strategy"`
	Status          string          `json:"status"`
	Compliant       bool            `json:"compliant"`
	Score           decimal.Decimal `json:"score"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	CostDelta       decimal.Decimal `json:"cost_delta"`
	BatchCount      int             `json:"batch_count"`
	BatchCountDelta int             `json:"batch_count_delta"`
	FEFOViolations  int             `json:"fefo_violations"`
	Shortage        decimal.Decimal `json:"shortage"`
	Recommended     bool            `json:"recommended"`
}

// NewPlanResponse arma la respuesta a partir del plan.
func NewPlanResponse(p *appalloc.Plan) PlanResponse {
	out := PlanResponse{
		PlanID: p.PlanID, CreatedAt: p.CreatedAt, Warehouse: p.Warehouse, Customer: p.Customer,
		Currency: p.Currency, OverallStatus: string(p.OverallStatus),
		Items: make([]ItemAllocationDTO, 0, len(p.Items)),
	}
	for _, it := range p.Items {
		item := ItemAllocationDTO{
			ItemCode:            it.ItemCode,
			Required:            it.Required,
			RecommendedStrategy: it.Result.Recommended.String(),
			Infeasible:          it.Result.Infeasible,
			Warnings:            it.Result.Warnings,
			Recommended:         NewStrategyResultDTO(it.Recommended),
		}
		if len(it.Result.Results) > 1 {
			for _, r := range it.Result.Results {
				item.Results = append(item.Results, NewStrategyResultDTO(r))
			}
			for _, row := range it.Comparison.Rows {
				item.Comparison = append(item.Comparison, ComparisonRowDTO{
					Strategy: row.Strategy.String(), Status: string(row.Status), Compliant: row.Compliant,
					Score: row.Score, TotalCost: row.TotalCost, CostDelta: row.CostDelta,
					BatchCount: row.BatchCount, BatchCountDelta: row.BatchCountDelta,
					FEFOViolations: row.FEFOViolations, Shortage: row.Shortage, Recommended: row.Recommended,
				})
			}
		}
		out.Items = append(out.Items, item)
	}
	return out
}

// NewStrategyResultDTO convierte un resultado de estrategia.
func NewStrategyResultDTO(r appalloc.StrategyResult) StrategyResultDTO {
	costs := make(map[string]entity.CostLine, len(r.Cost.Lines))
	for _, c := range r.Cost.Lines {
		costs[c.BatchID] = c
	}
	out := StrategyResultDTO{
		Strategy:   r.Strategy.String(),
		Status:     string(r.Allocation.Status),
		Allocated:  r.Allocation.Allocated,
		Shortage:   r.Allocation.Shortage,
		Lines:      make([]AllocationLineDTO, 0, len(r.Allocation.Lines)),
		Compliance: NewComplianceDTO(r.Compliance),
		Cost: CostDTO{
			TotalCost: r.Cost.TotalCost.Round(4), Currency: r.Cost.Currency,
			CostPerOutputUnit: r.Cost.CostPerOutputUnit, Warnings: r.Cost.Warnings,
		},
		Metrics: MetricsDTO{
			TotalCost: r.Metrics.TotalCost.Round(4), BatchCount: r.Metrics.BatchCount, MaxAgeDays: r.Metrics.MaxAgeDays,
			FEFOViolations: r.Metrics.FEFOViolations, FEFOCompliant: r.Metrics.FEFOCompliant,
		},
	}
	for _, l := range r.Allocation.Lines {
		c := costs[l.BatchID]
		out.Lines = append(out.Lines, AllocationLineDTO{
			BatchID: l.BatchID, Warehouse: l.Warehouse, Quantity: l.QuantityTaken,
			ExpiryDate: formatDate(l.ExpiryDate), ManufactureDate: formatDate(l.ManufactureDate),
			DaysToExpiry: l.DaysToExpiry, Warnings: l.Warnings,
			UnitCost: c.UnitCost, LineCost: c.LineCost.Round(4), PriceSource: string(c.Source),
		})
	}
	if r.Alternatives != nil {
		alt := NewAlternativesDTO(*r.Alternatives)
		out.Alternatives = &alt
	}
	return out
}

// NewComplianceDTO convierte el resultado de cumplimiento.
func NewComplianceDTO(c entity.ComplianceResult) ComplianceDTO {
	out := ComplianceDTO{Passed: c.Passed, Skipped: c.Skipped, Score: c.Score, Parameters: make([]ParameterDTO, 0, len(c.Parameters)), Warnings: c.Warnings}
	for _, p := range c.Parameters {
		out.Parameters = append(out.Parameters, ParameterDTO{
			Name: p.Name, Value: p.Value, Min: p.Min, Max: p.Max, Status: string(p.Status), Deviation: p.Deviation,
		})
	}
	return out
}

// NewAlternativesDTO convierte la sugerencia de alternativas.
func NewAlternativesDTO(s compliance.Suggestion) AlternativesDTO {
	out := AlternativesDTO{
		Options:                    make([]AlternativeDTO, 0, len(s.Options)),
		LimitingParameter:          s.Analysis.LimitingParameter,
		MaxDeviation:               s.Analysis.MaxDeviation,
		CompliantAlternativesFound: s.Analysis.CompliantAlternativesFound,
		CandidatesEvaluated:        s.Analysis.CandidatesEvaluated,
	}
	for _, o := range s.Options {
		a := AlternativeDTO{Kind: string(o.Kind), Parameter: o.Parameter, Score: o.Compliance.Score}
		if o.Kind == compliance.AlternativeBlend {
			p := o.Proportion
			a.Proportion = &p
		}
		if o.CostKnown {
			c := o.TotalCost.Round(4)
			a.TotalCost = &c
		}
		for _, l := range o.Allocation.Lines {
			a.Batches = append(a.Batches, BatchQtyDTO{BatchID: l.BatchID, Quantity: l.QuantityTaken})
		}
		out.Options = append(out.Options, a)
	}
	return out
}

// NewAlternativesResponse arma la respuesta del endpoint de alternativas.
func NewAlternativesResponse(r *appalloc.AlternativesResult) AlternativesResponse {
	return AlternativesResponse{
		ItemCode:     r.Allocation.ItemCode,
		Current:      NewComplianceDTO(r.Current),
		Alternatives: NewAlternativesDTO(r.Suggestion),
	}
}
