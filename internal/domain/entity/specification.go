package entity

import "github.com/shopspring/decimal"

// ParameterSpec rango aceptable de un parámetro de calidad (TDS).
// Cualquiera de los límites puede omitirse para rangos abiertos.
type ParameterSpec struct {
	Name string
	Min  *decimal.Decimal
	Max  *decimal.Decimal
}

// Contains indica si v está dentro de los límites (inclusivos).
func (p ParameterSpec) Contains(v decimal.Decimal) bool {
	if p.Min != nil && v.LessThan(*p.Min) {
		return false
	}
	if p.Max != nil && v.GreaterThan(*p.Max) {
		return false
	}
	return true
}

// Deviation distancia de v fuera del rango; cero si está dentro.
func (p ParameterSpec) Deviation(v decimal.Decimal) decimal.Decimal {
	if p.Min != nil && v.LessThan(*p.Min) {
		return p.Min.Sub(v)
	}
	if p.Max != nil && v.GreaterThan(*p.Max) {
		return v.Sub(*p.Max)
	}
	return decimal.Zero
}

// Specification hoja técnica de un artículo, opcionalmente específica de un cliente.
type Specification struct {
	ItemCode   string
	Customer   string
	Parameters []ParameterSpec
}
