package entity

import "github.com/shopspring/decimal"

// Item representa un artículo del maestro de inventario.
// Las tasas alimentan los niveles 3 a 5 de la cadena de precios.
type Item struct {
	Code             string
	Name             string
	StockUOM         string
	DefaultWarehouse string
	StandardRate     *decimal.Decimal
	LastPurchaseRate *decimal.Decimal
	ValuationRate    *decimal.Decimal
}
