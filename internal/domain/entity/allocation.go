package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllocationStatus estado de una asignación.
type AllocationStatus string

const (
	AllocationFulfilled AllocationStatus = "FULFILLED"
	AllocationShort     AllocationStatus = "SHORT"
)

// Etiquetas de advertencia por línea.
const (
	WarningExpired    = "EXPIRED"
	WarningNearExpiry = "NEAR_EXPIRY"
)

// AllocationLine un lote tomado y la cantidad consumida de él.
type AllocationLine struct {
	BatchID         string
	Warehouse       string
	QuantityTaken   decimal.Decimal
	ExpiryDate      *time.Time
	ManufactureDate *time.Time
	DaysToExpiry    *int
	Warnings        []string
}

// HasWarning indica si la línea lleva la etiqueta dada.
func (l AllocationLine) HasWarning(tag string) bool {
	for _, w := range l.Warnings {
		if w == tag {
			return true
		}
	}
	return false
}

// Allocation lista ordenada de (lote, cantidad) para un artículo.
// Invariantes: 0 < QuantityTaken <= disponible, Allocated <= Required, sin lotes repetidos.
type Allocation struct {
	ItemCode  string
	Required  decimal.Decimal
	Lines     []AllocationLine
	Allocated decimal.Decimal
	Shortage  decimal.Decimal
	Status    AllocationStatus
}

// Fulfilled indica si la asignación cubre el requerimiento completo.
func (a Allocation) Fulfilled() bool { return a.Status == AllocationFulfilled }

// BatchIDs identificadores de lote usados, en orden de consumo.
func (a Allocation) BatchIDs() []string {
	ids := make([]string, len(a.Lines))
	for i, l := range a.Lines {
		ids[i] = l.BatchID
	}
	return ids
}
