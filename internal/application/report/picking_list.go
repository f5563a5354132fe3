// Package report arma la lista de surtido (picking list) de un plan de asignación
// y la entrega a un renderizador (PDF) definido en infraestructura.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	appalloc "github.com/rogerboy38/raven-ai-agent-sub002/internal/application/allocation"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain"
)

// PickingLine un lote a surtir.
type PickingLine struct {
	BatchID     string
	Warehouse   string
	Expiry      string // AAAA-MM-DD o vacío
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	LineCost    decimal.Decimal
	CostUnknown bool
	Flags       string // EXPIRED, NEAR_EXPIRY
}

// PickingItem bloque de un artículo.
type PickingItem struct {
	ItemCode          string
	Strategy          string
	Status            string
	Required          decimal.Decimal
	Allocated         decimal.Decimal
	Shortage          decimal.Decimal
	TotalCost         decimal.Decimal
	CompliancePassed  bool
	ComplianceSkipped bool
	Score             decimal.Decimal
	Lines             []PickingLine
	Warnings          []string
}

// PickingList documento completo.
type PickingList struct {
	PlanID        string
	CreatedAt     time.Time
	Warehouse     string
	Customer      string
	Currency      string
	OverallStatus string
	Items         []PickingItem
}

// PickingListRenderer puerto de salida: convierte la lista en un documento.
type PickingListRenderer interface {
	RenderPickingList(ctx context.Context, list PickingList) ([]byte, error)
}

// Planner produce el plan de asignación (implementado por allocation.Service).
type Planner interface {
	SelectBatchesForRequirement(ctx context.Context, req appalloc.SelectRequest) (*appalloc.Plan, error)
}

// BuildPickingList arma la lista a partir de la estrategia recomendada de cada artículo.
func BuildPickingList(plan *appalloc.Plan) PickingList {
	out := PickingList{
		PlanID: plan.PlanID, CreatedAt: plan.CreatedAt, Warehouse: plan.Warehouse,
		Customer: plan.Customer, Currency: plan.Currency, OverallStatus: string(plan.OverallStatus),
		Items: make([]PickingItem, 0, len(plan.Items)),
	}
	for _, it := range plan.Items {
		rec := it.Recommended
		item := PickingItem{
			ItemCode:          it.ItemCode,
			Strategy:          rec.Strategy.String(),
			Status:            string(rec.Allocation.Status),
			Required:          it.Required,
			Allocated:         rec.Allocation.Allocated,
			Shortage:          rec.Allocation.Shortage,
			TotalCost:         rec.Cost.TotalCost,
			CompliancePassed:  rec.Compliance.Passed,
			ComplianceSkipped: rec.Compliance.Skipped,
			Score:             rec.Compliance.Score,
		}
		item.Warnings = append(item.Warnings, it.Result.Warnings...)
		item.Warnings = append(item.Warnings, rec.Compliance.Warnings...)
		item.Warnings = append(item.Warnings, rec.Cost.Warnings...)
		if rec.Allocation.Shortage.IsPositive() {
			item.Warnings = append(item.Warnings, fmt.Sprintf("faltante de %s", rec.Allocation.Shortage.String()))
		}
		for i, l := range rec.Allocation.Lines {
			pl := PickingLine{BatchID: l.BatchID, Warehouse: l.Warehouse, Quantity: l.QuantityTaken, Flags: strings.Join(l.Warnings, ",")}
			if l.ExpiryDate != nil {
				pl.Expiry = l.ExpiryDate.Format("2006-01-02")
			}
			if i < len(rec.Cost.Lines) && rec.Cost.Lines[i].BatchID == l.BatchID {
				c := rec.Cost.Lines[i]
				pl.UnitCost, pl.LineCost, pl.CostUnknown = c.UnitCost, c.LineCost, c.CostUnknown
			}
			item.Lines = append(item.Lines, pl)
		}
		out.Items = append(out.Items, item)
	}
	return out
}

// PickingListUseCase genera el documento de surtido de una solicitud.
type PickingListUseCase struct {
	planner  Planner
	renderer PickingListRenderer
}

// NewPickingListUseCase construye el caso de uso.
func NewPickingListUseCase(planner Planner, renderer PickingListRenderer) *PickingListUseCase {
	return &PickingListUseCase{planner: planner, renderer: renderer}
}

// Generate calcula el plan y lo renderiza. Devuelve también el plan para registro.
func (uc *PickingListUseCase) Generate(ctx context.Context, req appalloc.SelectRequest) ([]byte, *appalloc.Plan, error) {
	if uc.renderer == nil {
		return nil, nil, fmt.Errorf("report: %w: renderizador no configurado", domain.ErrDataUnavailable)
	}
	plan, err := uc.planner.SelectBatchesForRequirement(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	doc, err := uc.renderer.RenderPickingList(ctx, BuildPickingList(plan))
	if err != nil {
		return nil, nil, fmt.Errorf("report: renderizar lista de surtido: %w", err)
	}
	return doc, plan, nil
}
