package allocation_test

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/allocation"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
)

var asOf = time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, dd int) *time.Time {
	t := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
	return &t
}

func cost(s string) *decimal.Decimal { v := d(s); return &v }

// scenarioBatches B1 vence antes pero es más caro que B2.
func scenarioBatches() []entity.Batch {
	return []entity.Batch{
		{ID: "B1", ItemCode: "ALOE-200X", Warehouse: "Almacén MP", QuantityAvailable: d("50"), ExpiryDate: day(2026, time.January, 10), UnitCostHint: cost("2.0")},
		{ID: "B2", ItemCode: "ALOE-200X", Warehouse: "Almacén MP", QuantityAvailable: d("80"), ExpiryDate: day(2026, time.March, 1), UnitCostHint: cost("1.5")},
	}
}

func lines(a entity.Allocation) []string {
	out := make([]string, len(a.Lines))
	for i, l := range a.Lines {
		out[i] = fmt.Sprintf("%s:%s", l.BatchID, l.QuantityTaken.String())
	}
	return out
}

func TestSelect_EscenarioA_FEFOCompleto(t *testing.T) {
	a, err := allocation.Select("ALOE-200X", d("100"), scenarioBatches(), allocation.Options{Strategy: allocation.StrategyStrictFEFO, AsOf: asOf})
	require.NoError(t, err)
	assert.Equal(t, []string{"B1:50", "B2:50"}, lines(a))
	assert.Equal(t, entity.AllocationFulfilled, a.Status)
	assert.True(t, a.Shortage.IsZero())
	assert.True(t, a.Allocated.Equal(d("100")))
}

func TestSelect_EscenarioB_Faltante(t *testing.T) {
	a, err := allocation.Select("ALOE-200X", d("200"), scenarioBatches(), allocation.Options{Strategy: allocation.StrategyStrictFEFO, AsOf: asOf})
	require.NoError(t, err)
	assert.Equal(t, []string{"B1:50", "B2:80"}, lines(a))
	assert.Equal(t, entity.AllocationShort, a.Status)
	assert.True(t, a.Shortage.Equal(d("70")), a.Shortage.String())
}

func TestSelect_SinCandidatos(t *testing.T) {
	a, err := allocation.Select("ALOE-200X", d("25"), nil, allocation.Options{AsOf: asOf})
	require.NoError(t, err)
	assert.Empty(t, a.Lines)
	assert.Equal(t, entity.AllocationShort, a.Status)
	assert.True(t, a.Shortage.Equal(d("25")))
}

func TestSelect_CantidadNoPositivaEsErrorDeValidacion(t *testing.T) {
	for _, q := range []string{"0", "-5"} {
		_, err := allocation.Select("ALOE-200X", d(q), scenarioBatches(), allocation.Options{AsOf: asOf})
		require.Error(t, err)
		var ve *domain.ValidationError
		assert.True(t, errors.As(err, &ve))
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	}
}

func TestSelect_MinCostOrdenaPorCosto(t *testing.T) {
	a, err := allocation.Select("ALOE-200X", d("100"), scenarioBatches(), allocation.Options{Strategy: allocation.StrategyMinimizeCost, AsOf: asOf})
	require.NoError(t, err)
	assert.Equal(t, []string{"B2:80", "B1:20"}, lines(a))
}

func TestSelect_MinCostUsaCostosResueltos(t *testing.T) {
	opts := allocation.Options{
		Strategy:  allocation.StrategyMinimizeCost,
		AsOf:      asOf,
		UnitCosts: map[string]decimal.Decimal{"B1": d("1.0"), "B2": d("1.5")},
	}
	a, err := allocation.Select("ALOE-200X", d("60"), scenarioBatches(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"B1:50", "B2:10"}, lines(a))
}

func TestSelect_MinCostLoteSinPrecioCuentaComoCero(t *testing.T) {
	batches := []entity.Batch{
		{ID: "K", QuantityAvailable: d("100"), ExpiryDate: day(2026, time.June, 1), UnitCostHint: cost("5")},
		{ID: "U", QuantityAvailable: d("100"), ExpiryDate: day(2026, time.February, 1)},
	}
	a, err := allocation.Select("X", d("50"), batches, allocation.Options{Strategy: allocation.StrategyMinimizeCost, AsOf: asOf})
	require.NoError(t, err)
	assert.Equal(t, []string{"U:50"}, lines(a))
}

func TestSelect_MinimumBatchesPrefiereLotesGrandes(t *testing.T) {
	a, err := allocation.Select("ALOE-200X", d("60"), scenarioBatches(), allocation.Options{Strategy: allocation.StrategyMinimumBatches, AsOf: asOf})
	require.NoError(t, err)
	assert.Equal(t, []string{"B2:60"}, lines(a))
}

func TestSelect_BalancedEmpataHaciaFEFO(t *testing.T) {
	a, err := allocation.Select("ALOE-200X", d("100"), scenarioBatches(), allocation.Options{Strategy: allocation.StrategyBalanced, AsOf: asOf})
	require.NoError(t, err)
	assert.Equal(t, []string{"B1:50", "B2:50"}, lines(a))
}

func TestSelect_BalancedConPesoDeCosto(t *testing.T) {
	opts := allocation.Options{
		Strategy: allocation.StrategyBalanced,
		AsOf:     asOf,
		Weights:  allocation.BalanceWeights{ExpiryUrgency: d("0.2"), Cost: d("0.8")},
	}
	a, err := allocation.Select("ALOE-200X", d("100"), scenarioBatches(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"B2:80", "B1:20"}, lines(a))
}

func TestSelect_FiltrosDeBodegaYExclusion(t *testing.T) {
	batches := append(scenarioBatches(), entity.Batch{
		ID: "B3", Warehouse: "Planta 2", QuantityAvailable: d("500"), ExpiryDate: day(2025, time.December, 20),
	})
	a, err := allocation.Select("ALOE-200X", d("40"), batches, allocation.Options{
		Warehouse:       "Almacén MP",
		ExcludeBatchIDs: map[string]struct{}{"B1": {}},
		AsOf:            asOf,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"B2:40"}, lines(a))
}

func TestSelect_LoteQueCaducaHoyEsUtilizable(t *testing.T) {
	batches := append(scenarioBatches(), entity.Batch{
		ID: "HOY", QuantityAvailable: d("10"), ExpiryDate: day(2025, time.December, 1),
	})
	a, err := allocation.Select("ALOE-200X", d("30"), batches, allocation.Options{AsOf: asOf.Add(15 * time.Hour)})
	require.NoError(t, err)
	require.Equal(t, []string{"HOY:10", "B1:20"}, lines(a))
	assert.False(t, a.Lines[0].HasWarning(entity.WarningExpired))
	assert.True(t, a.Lines[0].HasWarning(entity.WarningNearExpiry))

	a, err = allocation.Select("ALOE-200X", d("30"), batches, allocation.Options{AsOf: asOf.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.NotContains(t, lines(a), "HOY:10", "al día siguiente ya venció")
}

func TestSelect_CaducadosSoloConOptIn(t *testing.T) {
	batches := append(scenarioBatches(), entity.Batch{
		ID: "B0", QuantityAvailable: d("10"), ExpiryDate: day(2025, time.November, 1),
	})
	a, err := allocation.Select("ALOE-200X", d("30"), batches, allocation.Options{AsOf: asOf})
	require.NoError(t, err)
	assert.Equal(t, []string{"B1:30"}, lines(a))

	a, err = allocation.Select("ALOE-200X", d("30"), batches, allocation.Options{AsOf: asOf, IncludeExpired: true})
	require.NoError(t, err)
	require.Equal(t, []string{"B0:10", "B1:20"}, lines(a))
	assert.True(t, a.Lines[0].HasWarning(entity.WarningExpired), "los lotes caducados llevan etiqueta obligatoria")
	assert.False(t, a.Lines[1].HasWarning(entity.WarningExpired))
}

func TestSelect_EtiquetaProximaCaducidad(t *testing.T) {
	a, err := allocation.Select("ALOE-200X", d("100"), scenarioBatches(), allocation.Options{AsOf: asOf, NearExpiryDays: 45})
	require.NoError(t, err)
	require.Len(t, a.Lines, 2)
	assert.True(t, a.Lines[0].HasWarning(entity.WarningNearExpiry))
	assert.Equal(t, 40, *a.Lines[0].DaysToExpiry)
	assert.False(t, a.Lines[1].HasWarning(entity.WarningNearExpiry))

	a, err = allocation.Select("ALOE-200X", d("100"), scenarioBatches(), allocation.Options{AsOf: asOf, NearExpiryDays: -1})
	require.NoError(t, err)
	assert.Empty(t, a.Lines[0].Warnings)
}

func TestSelect_SinCaducidadUsaFechaDelCodigo(t *testing.T) {
	batches := []entity.Batch{
		{ID: "SIN-CODIGO", QuantityAvailable: d("10")},
		{ID: "25101001", QuantityAvailable: d("10")}, // 2025-W10
		{ID: "25021001", QuantityAvailable: d("10")}, // 2025-W02
		{ID: "FECHADO", QuantityAvailable: d("10"), ExpiryDate: day(2027, time.January, 1)},
	}
	a, err := allocation.Select("X", d("40"), batches, allocation.Options{AsOf: asOf})
	require.NoError(t, err)
	assert.Equal(t, []string{"FECHADO:10", "25021001:10", "25101001:10", "SIN-CODIGO:10"}, lines(a))
}

func TestSelect_NoModificaLaEntrada(t *testing.T) {
	batches := scenarioBatches()
	batches[0], batches[1] = batches[1], batches[0]
	_, err := allocation.Select("ALOE-200X", d("100"), batches, allocation.Options{AsOf: asOf})
	require.NoError(t, err)
	assert.Equal(t, "B2", batches[0].ID)
	assert.True(t, batches[0].QuantityAvailable.Equal(d("80")))
}

func randomBatches(r *rand.Rand, n int) []entity.Batch {
	out := make([]entity.Batch, n)
	for i := range out {
		out[i] = entity.Batch{
			ID:                fmt.Sprintf("L%03d", i),
			QuantityAvailable: decimal.NewFromInt(int64(r.Intn(120))),
			ExpiryDate:        day(2026, time.Month(1+r.Intn(12)), 1+r.Intn(28)),
			UnitCostHint:      cost(fmt.Sprintf("%d.%02d", 1+r.Intn(5), r.Intn(100))),
		}
	}
	return out
}

func TestSelect_Propiedades(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for iter := 0; iter < 50; iter++ {
		batches := randomBatches(r, 1+r.Intn(15))
		required := decimal.NewFromInt(int64(1 + r.Intn(600)))
		total := decimal.Zero
		avail := map[string]decimal.Decimal{}
		for _, b := range batches {
			total = total.Add(b.QuantityAvailable)
			avail[b.ID] = b.QuantityAvailable
		}
		for _, k := range allocation.Kinds() {
			a, err := allocation.Select("X", required, batches, allocation.Options{Strategy: k, AsOf: asOf})
			require.NoError(t, err)

			sum := decimal.Zero
			seen := map[string]bool{}
			for _, l := range a.Lines {
				assert.True(t, l.QuantityTaken.IsPositive())
				assert.True(t, l.QuantityTaken.LessThanOrEqual(avail[l.BatchID]), "sin sobreasignación")
				assert.False(t, seen[l.BatchID], "lote repetido")
				seen[l.BatchID] = true
				sum = sum.Add(l.QuantityTaken)
			}
			assert.True(t, sum.LessThanOrEqual(required), "conservación")
			if total.GreaterThanOrEqual(required) {
				assert.True(t, sum.Equal(required), "debe cubrir cuando hay existencia")
			}

			again, err := allocation.Select("X", required, batches, allocation.Options{Strategy: k, AsOf: asOf})
			require.NoError(t, err)
			assert.Equal(t, lines(a), lines(again), "determinismo")

			if k == allocation.StrategyStrictFEFO {
				for i := 1; i < len(a.Lines); i++ {
					assert.False(t, a.Lines[i].ExpiryDate.Before(*a.Lines[i-1].ExpiryDate), "monotonía FEFO")
				}
			}
		}
	}
}

func TestParseStrategyKind(t *testing.T) {
	cases := map[string]allocation.StrategyKind{
		"fefo":            allocation.StrategyStrictFEFO,
		"min_cost":        allocation.StrategyMinimizeCost,
		"MINIMUM_BATCHES": allocation.StrategyMinimumBatches,
		"":                allocation.StrategyBalanced,
	}
	for in, want := range cases {
		got, err := allocation.ParseStrategyKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := allocation.ParseStrategyKind("lifo")
	assert.Error(t, err)
	assert.Equal(t, "strict_fefo", allocation.StrategyStrictFEFO.String())
}
