package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch representa un lote de un artículo producido en una misma corrida.
// Lo crea y actualiza exclusivamente el sistema de inventario externo; el motor de
// asignación lo trata como una instantánea de solo lectura durante una decisión.
type Batch struct {
	ID                string
	ItemCode          string
	Warehouse         string
	QuantityAvailable decimal.Decimal
	ExpiryDate        *time.Time       // opcional
	ManufactureDate   *time.Time       // explícita o derivada del código de lote
	UnitCostHint      *decimal.Decimal // costo crudo antes de resolver la cadena de precios
	Currency          string
	QualityParameters map[string]decimal.Decimal // COA: parámetro → valor medido
}

// IsExpired indica si el lote ya venció a la fecha asOf. El día de caducidad
// todavía es utilizable. Sin fecha de caducidad nunca vence.
func (b Batch) IsExpired(asOf time.Time) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return truncateDay(*b.ExpiryDate).Before(truncateDay(asOf))
}

// DaysToExpiry días calendario hasta la caducidad (negativo si ya venció).
// ok es false si el lote no tiene fecha de caducidad.
func (b Batch) DaysToExpiry(asOf time.Time) (days int, ok bool) {
	if b.ExpiryDate == nil {
		return 0, false
	}
	d := truncateDay(*b.ExpiryDate).Sub(truncateDay(asOf))
	return int(d.Hours() / 24), true
}

// Clone copia profunda; las estrategias trabajan sobre copias independientes.
func (b Batch) Clone() Batch {
	c := b
	if b.ExpiryDate != nil {
		t := *b.ExpiryDate
		c.ExpiryDate = &t
	}
	if b.ManufactureDate != nil {
		t := *b.ManufactureDate
		c.ManufactureDate = &t
	}
	if b.UnitCostHint != nil {
		v := *b.UnitCostHint
		c.UnitCostHint = &v
	}
	if b.QualityParameters != nil {
		c.QualityParameters = make(map[string]decimal.Decimal, len(b.QualityParameters))
		for k, v := range b.QualityParameters {
			c.QualityParameters[k] = v
		}
	}
	return c
}

// CloneBatches copia una lista completa de lotes.
func CloneBatches(in []Batch) []Batch {
	out := make([]Batch, len(in))
	for i, b := range in {
		out[i] = b.Clone()
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
