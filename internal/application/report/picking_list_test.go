package report_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appalloc "github.com/rogerboy38/raven-ai-agent-sub002/internal/application/allocation"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/application/report"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/allocation"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func samplePlan() *appalloc.Plan {
	exp := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	rec := appalloc.StrategyResult{
		Strategy: allocation.StrategyStrictFEFO,
		Allocation: entity.Allocation{
			ItemCode: "ALOE-200X", Required: d("100"), Allocated: d("90"), Shortage: d("10"),
			Status: entity.AllocationShort,
			Lines: []entity.AllocationLine{
				{BatchID: "25021001", Warehouse: "MP", QuantityTaken: d("60"), ExpiryDate: &exp, Warnings: []string{entity.WarningNearExpiry}},
				{BatchID: "25061002", Warehouse: "MP", QuantityTaken: d("30")},
			},
		},
		Compliance: entity.ComplianceResult{Passed: true, Score: d("100")},
		Cost: entity.CostBreakdown{
			TotalCost: d("945"),
			Lines: []entity.CostLine{
				{BatchID: "25021001", UnitCost: d("11"), LineCost: d("660")},
				{BatchID: "25061002", UnitCost: d("9.5"), LineCost: d("285")},
			},
		},
	}
	return &appalloc.Plan{
		PlanID: "p-1", Currency: "MXN", OverallStatus: appalloc.PlanPartial,
		Items: []appalloc.ItemAllocation{{ItemCode: "ALOE-200X", Required: d("100"), Recommended: rec}},
	}
}

func TestBuildPickingList_LineasYFaltante(t *testing.T) {
	list := report.BuildPickingList(samplePlan())

	assert.Equal(t, "PARTIAL", list.OverallStatus)
	require.Len(t, list.Items, 1)
	item := list.Items[0]
	assert.Equal(t, "strict_fefo", item.Strategy)
	require.Len(t, item.Lines, 2)
	assert.Equal(t, "2026-01-20", item.Lines[0].Expiry)
	assert.Equal(t, "NEAR_EXPIRY", item.Lines[0].Flags)
	assert.True(t, item.Lines[1].LineCost.Equal(d("285")))
	assert.Contains(t, item.Warnings, "faltante de 10")
}

type planner struct {
	plan *appalloc.Plan
	err  error
}

func (p planner) SelectBatchesForRequirement(context.Context, appalloc.SelectRequest) (*appalloc.Plan, error) {
	return p.plan, p.err
}

type renderer struct{ got report.PickingList }

func (r *renderer) RenderPickingList(_ context.Context, l report.PickingList) ([]byte, error) {
	r.got = l
	return []byte("%PDF-fake"), nil
}

func TestGenerate_RenderizaElPlan(t *testing.T) {
	r := &renderer{}
	uc := report.NewPickingListUseCase(planner{plan: samplePlan()}, r)

	doc, plan, err := uc.Generate(context.Background(), appalloc.SelectRequest{})
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(doc))
	assert.Equal(t, "p-1", plan.PlanID)
	assert.Equal(t, "p-1", r.got.PlanID)
}

func TestGenerate_PropagaErrorDelPlan(t *testing.T) {
	boom := errors.New("boom")
	uc := report.NewPickingListUseCase(planner{err: boom}, &renderer{})

	_, _, err := uc.Generate(context.Background(), appalloc.SelectRequest{})
	assert.ErrorIs(t, err, boom)
}
