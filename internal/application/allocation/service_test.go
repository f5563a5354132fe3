package allocation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appalloc "github.com/rogerboy38/raven-ai-agent-sub002/internal/application/allocation"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/allocation"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/compliance"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/costing"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/infrastructure/memory"
	"github.com/rogerboy38/raven-ai-agent-sub002/pkg/config"
)

func appCostContext() costing.PriceContext {
	return costing.PriceContext{PriceList: "Standard Buying", Currency: "MXN", AsOf: asOf}
}

func calculatorFor(s *memory.Store) *costing.Calculator {
	return costing.NewCalculator(s, s)
}

func newService(t *testing.T, runner appalloc.SnapshotRunner) *appalloc.Service {
	t.Helper()
	defaults, err := appalloc.DefaultsFromConfig(config.AllocConfig{
		DefaultStrategy: "balanced",
		PriceList:       "Standard Buying",
		Currency:        "MXN",
		NearExpiryDays:  30,
		UrgencyWeight:   d("0.5"),
		CostWeight:      d("0.5"),
	})
	require.NoError(t, err)
	return appalloc.NewService(runner, appalloc.NewEngine(nil, 0, nil), defaults, nil)
}

func TestSelectBatches_PlanCompleto(t *testing.T) {
	svc := newService(t, loadStore(t).Runner())

	plan, err := svc.SelectBatchesForRequirement(context.Background(), appalloc.SelectRequest{
		Items:    []appalloc.RequiredItem{{ItemCode: "ALOE-200X", RequiredQty: d("100")}, {ItemCode: "GLICERINA", RequiredQty: d("4")}},
		Strategy: appalloc.StrategyAll,
		AsOf:     asOf,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, plan.PlanID)
	assert.Equal(t, appalloc.PlanFulfilled, plan.OverallStatus)
	require.Len(t, plan.Items, 2)

	aloe := plan.Items[0]
	assert.Len(t, aloe.Result.Results, 4)
	assert.Equal(t, allocation.StrategyBalanced, aloe.Recommended.Strategy)
	assert.Len(t, aloe.Comparison.Rows, 4)

	gli := plan.Items[1]
	assert.True(t, gli.Recommended.Compliance.Skipped)
	require.Len(t, gli.Recommended.Cost.Lines, 1)
	assert.Equal(t, entity.PriceSourceStandardRate, gli.Recommended.Cost.Lines[0].Source)
	assert.True(t, gli.Recommended.Cost.TotalCost.Equal(d("12")))
}

func TestSelectBatches_EstrategiaPorDefectoYParcial(t *testing.T) {
	svc := newService(t, loadStore(t).Runner())

	plan, err := svc.SelectBatchesForRequirement(context.Background(), appalloc.SelectRequest{
		Items: []appalloc.RequiredItem{{ItemCode: "ALOE-200X", RequiredQty: d("500")}},
		AsOf:  asOf,
	})
	require.NoError(t, err)
	assert.Equal(t, appalloc.PlanPartial, plan.OverallStatus)
	require.Len(t, plan.Items[0].Result.Results, 1)
	assert.Equal(t, allocation.StrategyBalanced, plan.Items[0].Recommended.Strategy)
	assert.True(t, plan.Items[0].Result.Infeasible)
	assert.True(t, plan.Items[0].Recommended.Allocation.Shortage.Equal(d("160")))
}

func TestSelectBatches_ErroresDeValidacion(t *testing.T) {
	svc := newService(t, loadStore(t).Runner())
	ctx := context.Background()

	cases := []struct {
		name  string
		req   appalloc.SelectRequest
		field string
	}{
		{"sin artículos", appalloc.SelectRequest{}, "items"},
		{"cantidad cero", appalloc.SelectRequest{Items: []appalloc.RequiredItem{{ItemCode: "ALOE-200X", RequiredQty: d("0")}}}, "required_qty"},
		{"artículo desconocido", appalloc.SelectRequest{Items: []appalloc.RequiredItem{{ItemCode: "NOPE", RequiredQty: d("1")}}}, "item_code"},
		{"artículo repetido", appalloc.SelectRequest{Items: []appalloc.RequiredItem{{ItemCode: "ALOE-200X", RequiredQty: d("1")}, {ItemCode: "ALOE-200X", RequiredQty: d("2")}}}, "item_code"},
		{"estrategia inválida", appalloc.SelectRequest{Items: []appalloc.RequiredItem{{ItemCode: "ALOE-200X", RequiredQty: d("1")}}, Strategy: "lifo"}, "strategy"},
		{"bodega desconocida", appalloc.SelectRequest{Items: []appalloc.RequiredItem{{ItemCode: "ALOE-200X", RequiredQty: d("1")}}, Warehouse: "Bodega 9"}, "warehouse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SelectBatchesForRequirement(ctx, tc.req)
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve), "%v", err)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

type failingBatches struct{}

func (failingBatches) GetAvailableBatches(context.Context, string, string) ([]entity.Batch, error) {
	return nil, errors.New("conexión rechazada")
}

func TestSelectBatches_CatalogoNoDisponible(t *testing.T) {
	runner := appalloc.StaticRunner{Batches: failingBatches{}}
	svc := newService(t, runner)

	_, err := svc.SelectBatchesForRequirement(context.Background(), appalloc.SelectRequest{
		Items: []appalloc.RequiredItem{{ItemCode: "ALOE-200X", RequiredQty: d("1")}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	var due *domain.DataUnavailableError
	require.True(t, errors.As(err, &due))
	assert.Equal(t, "catalog", due.Collaborator)
	assert.Equal(t, "ALOE-200X", due.ItemCode)
}

func TestSuggestAlternatives_PropuestaFueraDeRango(t *testing.T) {
	svc := newService(t, loadStore(t).Runner())

	out, err := svc.SuggestAlternatives(context.Background(), appalloc.AlternativesRequest{
		ItemCode: "ALOE-200X",
		Lines:    []appalloc.LineRequest{{BatchID: "25021001", Quantity: d("50")}},
		AsOf:     asOf,
	})
	require.NoError(t, err)
	assert.False(t, out.Current.Passed)
	require.NotEmpty(t, out.Suggestion.Options)

	best := out.Suggestion.Options[0]
	assert.Equal(t, compliance.AlternativeSingleBatch, best.Kind)
	assert.Equal(t, []string{"25061002"}, best.Allocation.BatchIDs())
	assert.True(t, best.TotalCost.Equal(d("475")), best.TotalCost.String())
	assert.Equal(t, "Aloína", out.Suggestion.Analysis.LimitingParameter)
}

func TestSuggestAlternatives_PropuestaQueCumple(t *testing.T) {
	svc := newService(t, loadStore(t).Runner())

	out, err := svc.SuggestAlternatives(context.Background(), appalloc.AlternativesRequest{
		ItemCode: "ALOE-200X",
		Lines:    []appalloc.LineRequest{{BatchID: "25101003", Quantity: d("50")}},
		AsOf:     asOf,
	})
	require.NoError(t, err)
	assert.True(t, out.Current.Passed)
	assert.Empty(t, out.Suggestion.Options)
}

func TestSuggestAlternatives_LoteInexistente(t *testing.T) {
	svc := newService(t, loadStore(t).Runner())

	_, err := svc.SuggestAlternatives(context.Background(), appalloc.AlternativesRequest{
		ItemCode: "ALOE-200X",
		Lines:    []appalloc.LineRequest{{BatchID: "X-1", Quantity: d("5")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSuggestAlternatives_PropuestaInvalida(t *testing.T) {
	svc := newService(t, loadStore(t).Runner())

	cases := []struct {
		name  string
		lines []appalloc.LineRequest
		field string
	}{
		{"excede lo disponible", []appalloc.LineRequest{{BatchID: "25021001", Quantity: d("1000")}}, "quantity"},
		{"excede por una unidad", []appalloc.LineRequest{{BatchID: "25021001", Quantity: d("61")}}, "quantity"},
		{"lote repetido", []appalloc.LineRequest{{BatchID: "25021001", Quantity: d("5")}, {BatchID: "25021001", Quantity: d("5")}}, "batch_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SuggestAlternatives(context.Background(), appalloc.AlternativesRequest{
				ItemCode: "ALOE-200X",
				Lines:    tc.lines,
				AsOf:     asOf,
			})
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve), "%v", err)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestSuggestAlternatives_MonedasMezcladasConservanCosto(t *testing.T) {
	s := loadStore(t)
	s.AddBatchPrice(memory.Price{ItemCode: "ALOE-200X", BatchID: "25061002", Rate: d("0.5"), Currency: "USD"})
	svc := newService(t, s.Runner())

	out, err := svc.SuggestAlternatives(context.Background(), appalloc.AlternativesRequest{
		ItemCode: "ALOE-200X",
		Lines:    []appalloc.LineRequest{{BatchID: "25021001", Quantity: d("50")}},
		AsOf:     asOf,
	})
	require.NoError(t, err)

	var blend *compliance.AlternativeOption
	for i, opt := range out.Suggestion.Options {
		assert.True(t, opt.CostKnown, "%s %v", opt.Kind, opt.Allocation.BatchIDs())
		ids := opt.Allocation.BatchIDs()
		if opt.Kind == compliance.AlternativeBlend && assert.ObjectsAreEqual([]string{"25021001", "25061002"}, ids) {
			blend = &out.Suggestion.Options[i]
		}
	}
	require.NotNil(t, blend, "se espera la mezcla MXN/USD")
	assert.True(t, blend.TotalCost.IsPositive())
}
