package allocation

import (
	"github.com/shopspring/decimal"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/allocation"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
)

// ComparisonRow una fila del análisis "qué pasaría si" frente a la recomendada.
type ComparisonRow struct {
	Strategy        allocation.StrategyKind
	Status          entity.AllocationStatus
	Compliant       bool
	Score           decimal.Decimal
	TotalCost       decimal.Decimal
	CostDelta       decimal.Decimal // positivo = más caro que la recomendada
	BatchCount      int
	BatchCountDelta int
	FEFOViolations  int
	Shortage        decimal.Decimal
	Recommended     bool
}

// Comparison tabla de comparación entre estrategias.
type Comparison struct {
	Baseline allocation.StrategyKind
	Rows     []ComparisonRow
}

// Compare arma la tabla con diferencias respecto a la estrategia recomendada.
func Compare(res OptimizeResult) Comparison {
	out := Comparison{Baseline: res.Recommended, Rows: make([]ComparisonRow, 0, len(res.Results))}
	base := res.RecommendedResult()
	for _, r := range res.Results {
		row := ComparisonRow{
			Strategy:       r.Strategy,
			Status:         r.Allocation.Status,
			Compliant:      r.Compliant(),
			Score:          r.Compliance.Score,
			TotalCost:      r.Metrics.TotalCost,
			BatchCount:     r.Metrics.BatchCount,
			FEFOViolations: r.Metrics.FEFOViolations,
			Shortage:       r.Allocation.Shortage,
			Recommended:    r.Strategy == res.Recommended,
		}
		if base != nil {
			row.CostDelta = r.Metrics.TotalCost.Sub(base.Metrics.TotalCost)
			row.BatchCountDelta = r.Metrics.BatchCount - base.Metrics.BatchCount
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
