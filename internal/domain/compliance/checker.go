// Package compliance valida asignaciones contra la hoja técnica (TDS) del artículo.
// Para asignaciones de varios lotes se evalúa el promedio ponderado por cantidad
// de cada parámetro, sumando solo los lotes que lo reportan en su COA.
package compliance

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/inventory"
	"github.com/rogerboy38/raven-ai-agent-sub002/pkg/textnorm"
)

var hundred = decimal.NewFromInt(100)

// Check evalúa alloc contra spec usando los parámetros de calidad de snapshot.
// Sin especificación el paso se omite con una advertencia (no es una falla).
func Check(alloc entity.Allocation, spec *entity.Specification, snapshot []entity.Batch) entity.ComplianceResult {
	if spec == nil || len(spec.Parameters) == 0 {
		return entity.ComplianceResult{
			Passed:   true,
			Score:    hundred,
			Skipped:  true,
			Blended:  map[string]decimal.Decimal{},
			Warnings: []string{fmt.Sprintf("sin especificación para %s: validación de calidad omitida", alloc.ItemCode)},
		}
	}

	byID := indexBatches(snapshot)
	res := entity.ComplianceResult{
		Passed:     true,
		Blended:    make(map[string]decimal.Decimal, len(spec.Parameters)),
		Parameters: make([]entity.ParameterResult, 0, len(spec.Parameters)),
	}
	if len(alloc.Lines) == 0 {
		res.Warnings = append(res.Warnings, "asignación vacía: no hay lotes que evaluar")
	}

	evaluated, passed := 0, 0
	for _, ps := range spec.Parameters {
		pr := entity.ParameterResult{Name: ps.Name, Min: ps.Min, Max: ps.Max, Status: entity.ParameterUnknown}

		weights := make([]inventory.Weighted, 0, len(alloc.Lines))
		missing := 0
		for _, l := range alloc.Lines {
			b, ok := byID[l.BatchID]
			if !ok {
				missing++
				continue
			}
			v, ok := LookupParameter(b.QualityParameters, ps.Name)
			if !ok {
				missing++
				continue
			}
			weights = append(weights, inventory.Weighted{Weight: l.QuantityTaken, Value: v})
		}

		value, ok := inventory.WeightedAverage(weights)
		if !ok {
			res.Warnings = append(res.Warnings, fmt.Sprintf("parámetro %s sin datos en los lotes asignados", ps.Name))
			res.Parameters = append(res.Parameters, pr)
			continue
		}
		if missing > 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("parámetro %s reportado solo por %d de %d lotes", ps.Name, len(weights), len(weights)+missing))
		}

		pr.Value = &value
		res.Blended[ps.Name] = value
		evaluated++
		if ps.Contains(value) {
			pr.Status = entity.ParameterPass
			passed++
		} else {
			pr.Status = entity.ParameterFail
			pr.Deviation = ps.Deviation(value)
			res.Passed = false
		}
		res.Parameters = append(res.Parameters, pr)
	}

	res.Score = score(passed, evaluated)
	return res
}

// score porcentaje de PASS sobre los parámetros evaluados; sin evaluados no hay fallas.
func score(passed, evaluated int) decimal.Decimal {
	if evaluated == 0 {
		return hundred
	}
	return decimal.NewFromInt(int64(passed)).Mul(hundred).Div(decimal.NewFromInt(int64(evaluated))).Round(2)
}

// LookupParameter busca name en params comparando nombres normalizados.
// La coincidencia exacta gana; entre variantes normalizadas gana la menor en
// orden de bytes, así el resultado no depende del orden del mapa.
func LookupParameter(params map[string]decimal.Decimal, name string) (decimal.Decimal, bool) {
	if v, ok := params[name]; ok {
		return v, true
	}
	key := textnorm.Key(name)
	names := make([]string, 0, len(params))
	for k := range params {
		if textnorm.Key(k) == key {
			names = append(names, k)
		}
	}
	if len(names) == 0 {
		return decimal.Zero, false
	}
	sort.Strings(names)
	return params[names[0]], true
}

func indexBatches(batches []entity.Batch) map[string]entity.Batch {
	m := make(map[string]entity.Batch, len(batches))
	for _, b := range batches {
		m[b.ID] = b
	}
	return m
}
