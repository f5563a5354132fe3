package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound        = errors.New("recurso no encontrado")
	ErrInvalidInput    = errors.New("entrada inválida")
	ErrUnauthorized    = errors.New("no autorizado")
	ErrForbidden       = errors.New("acceso denegado")
	ErrDataUnavailable = errors.New("datos no disponibles")
)

// ValidationError solicitud mal formada (cantidad no positiva, artículo desconocido,
// lista de estrategias vacía). Es fatal para la solicitud y nunca se reintenta.
type ValidationError struct {
	Field    string
	ItemCode string
	Required decimal.Decimal
	Reason   string
}

func (e *ValidationError) Error() string {
	msg := "validación: " + e.Reason
	if e.Field != "" {
		msg += " (campo " + e.Field + ")"
	}
	if e.ItemCode != "" {
		msg += fmt.Sprintf(" [artículo %s, requerido %s]", e.ItemCode, e.Required.String())
	}
	return msg
}

// Unwrap permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError atajo para errores de validación sin artículo asociado.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// DataUnavailableError un colaborador externo (catálogo, especificación, precios)
// no respondió. Lleva el colaborador y el artículo para que el llamador pueda actuar.
type DataUnavailableError struct {
	Collaborator string // "catalog" | "specification" | "price" | "item"
	ItemCode     string
	Err          error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("%s no disponible para %s: %v", e.Collaborator, e.ItemCode, e.Err)
}

// Unwrap expone ErrDataUnavailable y la causa original.
func (e *DataUnavailableError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDataUnavailable}
	}
	return []error{ErrDataUnavailable, e.Err}
}
