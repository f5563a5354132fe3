package compliance_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/compliance"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
)

var asOf = time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal  { return decimal.RequireFromString(s) }
func p(s string) *decimal.Decimal { v := d(s); return &v }

func day(m time.Month, dd int) *time.Time {
	t := time.Date(2026, m, dd, 0, 0, 0, 0, time.UTC)
	return &t
}

func aloeSpec() *entity.Specification {
	return &entity.Specification{
		ItemCode: "ALOE-200X",
		Parameters: []entity.ParameterSpec{
			{Name: "Aloína", Min: p("0.5"), Max: p("2.0")},
			{Name: "pH", Min: p("3.5"), Max: p("5.0")},
		},
	}
}

func alloc(required string, lines ...entity.AllocationLine) entity.Allocation {
	a := entity.Allocation{ItemCode: "ALOE-200X", Required: d(required), Lines: lines, Status: entity.AllocationFulfilled}
	for _, l := range lines {
		a.Allocated = a.Allocated.Add(l.QuantityTaken)
	}
	return a
}

func line(id, qty string) entity.AllocationLine {
	return entity.AllocationLine{BatchID: id, QuantityTaken: d(qty)}
}

func TestCheck_EscenarioC_Mezcla(t *testing.T) {
	snapshot := []entity.Batch{
		{ID: "B1", QualityParameters: map[string]decimal.Decimal{"aloina": d("2.5"), "pH": d("4.1")}},
		{ID: "B2", QualityParameters: map[string]decimal.Decimal{"ALOÍNA": d("1.0"), "pH": d("4.3")}},
	}
	res := compliance.Check(alloc("100", line("B1", "30"), line("B2", "70")), aloeSpec(), snapshot)

	assert.True(t, res.Passed)
	assert.True(t, res.Blended["Aloína"].Equal(d("1.45")), res.Blended["Aloína"].String())
	assert.True(t, res.Score.Equal(d("100")))
	require.Len(t, res.Parameters, 2)
	assert.Equal(t, entity.ParameterPass, res.Parameters[0].Status)
}

func TestCheck_LoteUnicoEsIdempotente(t *testing.T) {
	snapshot := []entity.Batch{{ID: "B1", QualityParameters: map[string]decimal.Decimal{"Aloína": d("2.5"), "pH": d("4.12")}}}
	res := compliance.Check(alloc("30", line("B1", "30")), aloeSpec(), snapshot)

	assert.True(t, res.Blended["Aloína"].Equal(d("2.5")))
	assert.True(t, res.Blended["pH"].Equal(d("4.12")))
	assert.False(t, res.Passed)
	assert.True(t, res.Score.Equal(d("50")))
	failing := res.Failing()
	require.Len(t, failing, 1)
	assert.Equal(t, "Aloína", failing[0].Name)
	assert.True(t, failing[0].Deviation.Equal(d("0.5")))
}

func TestCheck_ParametroAusenteEsUnknown(t *testing.T) {
	snapshot := []entity.Batch{
		{ID: "B1", QualityParameters: map[string]decimal.Decimal{"Aloína": d("1.0")}},
		{ID: "B2", QualityParameters: map[string]decimal.Decimal{}},
	}
	res := compliance.Check(alloc("10", line("B1", "5"), line("B2", "5")), aloeSpec(), snapshot)

	assert.True(t, res.Passed, "UNKNOWN no es FAIL")
	assert.Equal(t, entity.ParameterUnknown, res.Parameters[1].Status)
	assert.True(t, res.Score.Equal(d("100")), "UNKNOWN fuera del denominador")
	// Aloína solo la reporta B1: promedio sobre los lotes que la reportan.
	assert.True(t, res.Blended["Aloína"].Equal(d("1.0")))
	assert.Len(t, res.Warnings, 2)
}

func TestCheck_SinEspecificacionSeOmite(t *testing.T) {
	res := compliance.Check(alloc("10", line("B1", "10")), nil, nil)
	assert.True(t, res.Skipped)
	assert.True(t, res.Passed)
	assert.NotEmpty(t, res.Warnings)
}

func TestCheck_LimiteAbierto(t *testing.T) {
	spec := &entity.Specification{Parameters: []entity.ParameterSpec{{Name: "Humedad", Max: p("8")}}}
	snapshot := []entity.Batch{{ID: "B1", QualityParameters: map[string]decimal.Decimal{"humedad": d("-3")}}}
	res := compliance.Check(alloc("1", line("B1", "1")), spec, snapshot)
	assert.True(t, res.Passed)
}

func alternativesPool() []entity.Batch {
	return []entity.Batch{
		{ID: "B1", QuantityAvailable: d("200"), ExpiryDate: day(time.January, 10), QualityParameters: map[string]decimal.Decimal{"aloina": d("2.5"), "pH": d("4")}},
		{ID: "B2", QuantityAvailable: d("90"), ExpiryDate: day(time.February, 10), QualityParameters: map[string]decimal.Decimal{"aloina": d("1.0"), "pH": d("4")}},
		{ID: "B3", QuantityAvailable: d("150"), ExpiryDate: day(time.March, 10), QualityParameters: map[string]decimal.Decimal{"aloina": d("1.8"), "pH": d("4")}},
	}
}

func costOf(unit map[string]string) compliance.CostFunc {
	return func(a entity.Allocation) (decimal.Decimal, bool) {
		total := decimal.Zero
		for _, l := range a.Lines {
			total = total.Add(l.QuantityTaken.Mul(d(unit[l.BatchID])))
		}
		return total, true
	}
}

func TestSuggestAlternatives_ReemplazosYMezclas(t *testing.T) {
	pool := alternativesPool()
	failed := alloc("100", entity.AllocationLine{BatchID: "B1", QuantityTaken: d("100"), ExpiryDate: pool[0].ExpiryDate})

	sug := compliance.SuggestAlternatives(failed, aloeSpec(), pool, compliance.SuggestOptions{
		MaxAlternatives: 3,
		AsOf:            asOf,
		Cost:            costOf(map[string]string{"B1": "1", "B2": "2", "B3": "3"}),
	})

	assert.Equal(t, "Aloína", sug.Analysis.LimitingParameter)
	assert.True(t, sug.Analysis.MaxDeviation.Equal(d("0.5")))
	assert.Equal(t, 4, sug.Analysis.CompliantAlternativesFound)
	require.Len(t, sug.Options, 3)

	best := sug.Options[0]
	assert.Equal(t, compliance.AlternativeBlend, best.Kind)
	assert.Equal(t, "Aloína", best.Parameter)
	require.Len(t, best.Allocation.Lines, 2)
	assert.Equal(t, "B1", best.Allocation.Lines[0].BatchID)
	assert.True(t, best.Allocation.Lines[0].QuantityTaken.Equal(d("16.6666")))
	assert.True(t, best.Allocation.Lines[1].QuantityTaken.Equal(d("83.3334")))
	assert.True(t, best.Compliance.Passed)
	assert.True(t, best.TotalCost.Equal(d("183.3334")))

	assert.Equal(t, compliance.AlternativeReselection, sug.Options[1].Kind)
	assert.True(t, sug.Options[1].TotalCost.Equal(d("210")))
	assert.Equal(t, compliance.AlternativeBlend, sug.Options[2].Kind)

	for _, opt := range sug.Options {
		assert.True(t, opt.Allocation.Fulfilled())
		for _, l := range opt.Allocation.Lines {
			for _, b := range pool {
				if b.ID == l.BatchID {
					assert.True(t, l.QuantityTaken.LessThanOrEqual(b.QuantityAvailable))
				}
			}
		}
	}
}

func TestSuggestAlternatives_EscenarioD_SinCandidatos(t *testing.T) {
	failed := alloc("100")
	failed.Status = entity.AllocationShort
	sug := compliance.SuggestAlternatives(failed, aloeSpec(), nil, compliance.SuggestOptions{AsOf: asOf})
	assert.Empty(t, sug.Options)
	assert.Equal(t, 0, sug.Analysis.CompliantAlternativesFound)
}

func TestSuggestAlternatives_SinCruceNoHayMezcla(t *testing.T) {
	pool := []entity.Batch{
		{ID: "A", QuantityAvailable: d("100"), QualityParameters: map[string]decimal.Decimal{"aloina": d("2.5")}},
		{ID: "B", QuantityAvailable: d("100"), QualityParameters: map[string]decimal.Decimal{"aloina": d("2.2")}},
	}
	failed := alloc("50", line("A", "50"))
	sug := compliance.SuggestAlternatives(failed, aloeSpec(), pool, compliance.SuggestOptions{AsOf: asOf})
	assert.Empty(t, sug.Options)
	assert.Equal(t, "Aloína", sug.Analysis.LimitingParameter)
	assert.Positive(t, sug.Analysis.CandidatesEvaluated)
}

func TestLookupParameter_VariantesDeNombre(t *testing.T) {
	params := map[string]decimal.Decimal{
		"aloina": d("2"),
		"Aloína": d("3"),
		"ALOINA": d("1"),
	}

	v, ok := compliance.LookupParameter(params, "Aloína")
	require.True(t, ok)
	assert.True(t, v.Equal(d("3")), "la coincidencia exacta gana")

	for i := 0; i < 50; i++ {
		v, ok = compliance.LookupParameter(params, "ALOÍNA")
		require.True(t, ok)
		require.True(t, v.Equal(d("1")), "iteración %d: %s", i, v)
	}

	_, ok = compliance.LookupParameter(params, "pH")
	assert.False(t, ok)
}
