package entity

import "github.com/shopspring/decimal"

// ParameterStatus resultado de evaluar un parámetro.
type ParameterStatus string

const (
	ParameterPass    ParameterStatus = "PASS"
	ParameterFail    ParameterStatus = "FAIL"
	ParameterUnknown ParameterStatus = "UNKNOWN"
)

// ParameterResult evaluación de un parámetro de la especificación.
type ParameterResult struct {
	Name      string
	Value     *decimal.Decimal // nil si ningún lote lo reporta
	Min       *decimal.Decimal
	Max       *decimal.Decimal
	Status    ParameterStatus
	Deviation decimal.Decimal
}

// ComplianceResult cumplimiento de una asignación contra la especificación.
// Score es el porcentaje de parámetros evaluados con PASS (UNKNOWN fuera del denominador).
type ComplianceResult struct {
	Passed     bool
	Score      decimal.Decimal
	Parameters []ParameterResult
	Blended    map[string]decimal.Decimal
	Warnings   []string
	Skipped    bool // sin especificación: paso omitido
}

// Failing parámetros con estado FAIL.
func (r ComplianceResult) Failing() []ParameterResult {
	var out []ParameterResult
	for _, p := range r.Parameters {
		if p.Status == ParameterFail {
			out = append(out, p)
		}
	}
	return out
}
