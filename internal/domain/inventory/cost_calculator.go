package inventory

import "github.com/shopspring/decimal"

// Weighted par (peso, valor) para promedios ponderados por cantidad.
type Weighted struct {
	Weight decimal.Decimal
	Value  decimal.Decimal
}

// WeightedAverage promedio ponderado (servicio de dominio).
// Valor = Σ(Peso_i * Valor_i) / Σ(Peso_i). ok es false si la suma de pesos no es positiva.
// Se usa tanto para valores mezclados de calidad como para el costo unitario promedio.
func WeightedAverage(items []Weighted) (avg decimal.Decimal, ok bool) {
	sum := decimal.Zero
	num := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Weight)
		num = num.Add(it.Weight.Mul(it.Value))
	}
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false
	}
	return num.Div(sum), true
}

// BlendProportion resuelve p tal que p*high + (1-p)*low = target.
// ok es false si no hay cruce (target fuera de [low, high] o valores iguales).
func BlendProportion(high, low, target decimal.Decimal) (p decimal.Decimal, ok bool) {
	span := high.Sub(low)
	if span.IsZero() {
		return decimal.Zero, false
	}
	p = target.Sub(low).Div(span)
	if p.LessThan(decimal.Zero) || p.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, false
	}
	return p, true
}
