package entity

import "github.com/shopspring/decimal"

// PriceSource nivel de la cadena de precios que resolvió el costo unitario.
type PriceSource string

const (
	PriceSourceBatch            PriceSource = "batch_price"
	PriceSourcePriceList        PriceSource = "price_list"
	PriceSourceStandardRate     PriceSource = "standard_rate"
	PriceSourceLastPurchaseRate PriceSource = "last_purchase_rate"
	PriceSourceValuationRate    PriceSource = "valuation_rate"
	PriceSourceUnknown          PriceSource = "unknown"
)

// PriceQuote precio devuelto por el colaborador de precios.
type PriceQuote struct {
	Rate     decimal.Decimal
	Currency string
}

// CostLine costo de un lote asignado.
type CostLine struct {
	BatchID     string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	LineCost    decimal.Decimal
	Currency    string
	Source      PriceSource
	CostUnknown bool
}

// CostBreakdown costo agregado de una asignación.
type CostBreakdown struct {
	Lines             []CostLine
	TotalCost         decimal.Decimal
	Currency          string
	CostPerOutputUnit *decimal.Decimal
	Warnings          []string
}

// AllPriced indica que ninguna línea se costeó en 0 por falta de precio.
// Las monedas mezcladas generan aviso pero no vuelven desconocido el costo.
func (b CostBreakdown) AllPriced() bool {
	for _, l := range b.Lines {
		if l.CostUnknown {
			return false
		}
	}
	return true
}
