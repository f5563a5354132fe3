// Package costing valora asignaciones de lotes resolviendo el costo unitario de cada lote
// con una cadena de respaldo ordenada: precio del lote, lista de precios, tasa estándar,
// última compra y tasa de valuación. Un lote sin precio vale 0 y se marca, nunca bloquea.
package costing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/repository"
)

// PriceContext parámetros de valuación de una solicitud.
type PriceContext struct {
	PriceList      string
	AsOf           time.Time
	Currency       string           // moneda de la empresa, para tasas sin moneda propia
	OutputQuantity *decimal.Decimal // opcional: cantidad de producto terminado
}

func (pc PriceContext) asOf() time.Time {
	if pc.AsOf.IsZero() {
		return time.Now().UTC()
	}
	return pc.AsOf
}

// Resolution costo unitario resuelto para un lote.
type Resolution struct {
	UnitCost decimal.Decimal
	Currency string
	Source   entity.PriceSource
}

// Known indica si algún nivel de la cadena resolvió el precio.
func (r Resolution) Known() bool { return r.Source != entity.PriceSourceUnknown }

// Calculator servicio de costeo. items puede ser nil (se omiten los niveles 3 a 5).
type Calculator struct {
	prices repository.PriceRepository
	items  repository.ItemRepository
}

// NewCalculator construye el calculador de costos.
func NewCalculator(prices repository.PriceRepository, items repository.ItemRepository) *Calculator {
	return &Calculator{prices: prices, items: items}
}

// ResolveUnitCosts resuelve el costo unitario de cada lote. Los niveles por artículo
// (2 a 5) se consultan una sola vez por llamada.
func (c *Calculator) ResolveUnitCosts(ctx context.Context, itemCode string, batches []entity.Batch, pc PriceContext) (map[string]Resolution, error) {
	out := make(map[string]Resolution, len(batches))
	var itemLevel *Resolution
	for _, b := range batches {
		if _, done := out[b.ID]; done {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, ok, err := c.batchPrice(ctx, itemCode, b, pc)
		if err != nil {
			return nil, err
		}
		if !ok {
			if itemLevel == nil {
				r, err := c.itemPrice(ctx, itemCode, pc)
				if err != nil {
					return nil, err
				}
				itemLevel = &r
			}
			res = *itemLevel
		}
		out[b.ID] = res
	}
	return out, nil
}

// Cost valora la asignación completa consultando los colaboradores de precios.
func (c *Calculator) Cost(ctx context.Context, alloc entity.Allocation, snapshot []entity.Batch, pc PriceContext) (entity.CostBreakdown, error) {
	used := make([]entity.Batch, 0, len(alloc.Lines))
	byID := make(map[string]entity.Batch, len(snapshot))
	for _, b := range snapshot {
		byID[b.ID] = b
	}
	for _, l := range alloc.Lines {
		b, ok := byID[l.BatchID]
		if !ok {
			b = entity.Batch{ID: l.BatchID, ItemCode: alloc.ItemCode}
		}
		used = append(used, b)
	}
	res, err := c.ResolveUnitCosts(ctx, alloc.ItemCode, used, pc)
	if err != nil {
		return entity.CostBreakdown{}, err
	}
	return Breakdown(alloc, res, pc), nil
}

func (c *Calculator) batchPrice(ctx context.Context, itemCode string, b entity.Batch, pc PriceContext) (Resolution, bool, error) {
	if c.prices != nil {
		q, err := c.prices.GetBatchPrice(ctx, itemCode, b.ID, pc.asOf())
		if err != nil {
			return Resolution{}, false, unavailable(itemCode, err)
		}
		if q != nil {
			return Resolution{UnitCost: q.Rate, Currency: currencyOr(q.Currency, pc.Currency), Source: entity.PriceSourceBatch}, true, nil
		}
	}
	// la tasa de entrada registrada en el lote cuenta como precio específico del lote
	if b.UnitCostHint != nil {
		return Resolution{UnitCost: *b.UnitCostHint, Currency: currencyOr(b.Currency, pc.Currency), Source: entity.PriceSourceBatch}, true, nil
	}
	return Resolution{}, false, nil
}

func (c *Calculator) itemPrice(ctx context.Context, itemCode string, pc PriceContext) (Resolution, error) {
	if c.prices != nil && pc.PriceList != "" {
		q, err := c.prices.GetPriceListRate(ctx, itemCode, pc.PriceList, pc.asOf())
		if err != nil {
			return Resolution{}, unavailable(itemCode, err)
		}
		if q != nil {
			return Resolution{UnitCost: q.Rate, Currency: currencyOr(q.Currency, pc.Currency), Source: entity.PriceSourcePriceList}, nil
		}
	}
	if c.items != nil {
		item, err := c.items.GetByCode(ctx, itemCode)
		if err != nil {
			return Resolution{}, &domain.DataUnavailableError{Collaborator: "item", ItemCode: itemCode, Err: err}
		}
		if item != nil {
			tiers := []struct {
				rate   *decimal.Decimal
				source entity.PriceSource
			}{
				{item.StandardRate, entity.PriceSourceStandardRate},
				{item.LastPurchaseRate, entity.PriceSourceLastPurchaseRate},
				{item.ValuationRate, entity.PriceSourceValuationRate},
			}
			for _, t := range tiers {
				if t.rate != nil && t.rate.IsPositive() {
					return Resolution{UnitCost: *t.rate, Currency: pc.Currency, Source: t.source}, nil
				}
			}
		}
	}
	return Resolution{UnitCost: decimal.Zero, Currency: pc.Currency, Source: entity.PriceSourceUnknown}, nil
}

// Breakdown arma el desglose a partir de costos ya resueltos (sin E/S).
func Breakdown(alloc entity.Allocation, res map[string]Resolution, pc PriceContext) entity.CostBreakdown {
	out := entity.CostBreakdown{Lines: make([]entity.CostLine, 0, len(alloc.Lines)), TotalCost: decimal.Zero, Currency: pc.Currency}
	currencies := map[string]struct{}{}
	for _, l := range alloc.Lines {
		r, ok := res[l.BatchID]
		if !ok {
			r = Resolution{Currency: pc.Currency, Source: entity.PriceSourceUnknown}
		}
		line := entity.CostLine{
			BatchID:     l.BatchID,
			Quantity:    l.QuantityTaken,
			UnitCost:    r.UnitCost,
			LineCost:    r.UnitCost.Mul(l.QuantityTaken),
			Currency:    r.Currency,
			Source:      r.Source,
			CostUnknown: !r.Known(),
		}
		if line.CostUnknown {
			line.UnitCost, line.LineCost = decimal.Zero, decimal.Zero
			out.Warnings = append(out.Warnings, fmt.Sprintf("lote %s sin precio: costo tomado como 0", l.BatchID))
		}
		if r.Currency != "" {
			if len(currencies) == 0 {
				out.Currency = r.Currency
			}
			currencies[r.Currency] = struct{}{}
		}
		out.TotalCost = out.TotalCost.Add(line.LineCost)
		out.Lines = append(out.Lines, line)
	}
	if len(currencies) > 1 {
		out.Warnings = append(out.Warnings, fmt.Sprintf("monedas mezcladas en la asignación (%d): no se realizó conversión", len(currencies)))
	}
	if pc.OutputQuantity != nil && pc.OutputQuantity.IsPositive() {
		per := out.TotalCost.Div(*pc.OutputQuantity)
		out.CostPerOutputUnit = &per
	}
	return out
}

// UnitCosts extrae los costos conocidos para ordenar por costo en el selector.
func UnitCosts(res map[string]Resolution) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(res))
	for id, r := range res {
		if r.Known() {
			out[id] = r.UnitCost
		}
	}
	return out
}

func currencyOr(c, def string) string {
	if c != "" {
		return c
	}
	return def
}

func unavailable(itemCode string, err error) error {
	return &domain.DataUnavailableError{Collaborator: "price", ItemCode: itemCode, Err: err}
}
