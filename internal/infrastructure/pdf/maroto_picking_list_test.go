package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/application/report"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":       "0.00",
		"999.999": "1,000.00",
		"25000":   "25,000.00",
		"-1234.5": "-1,234.50",
		"1000000": "1,000,000.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestSplitEvery_RespetaRunas(t *testing.T) {
	parts := splitEvery("ñandú-ñandú", 5)
	assert.Equal(t, []string{"ñandú", "-ñand", "ú"}, parts)
}

func TestRenderPickingList_GeneraPDF(t *testing.T) {
	list := report.PickingList{
		PlanID: "plan-1", CreatedAt: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		Currency: "MXN", OverallStatus: "FULFILLED",
		Items: []report.PickingItem{{
			ItemCode: "ALOE-200X", Strategy: "balanced", Status: "FULFILLED",
			Required: decimal.NewFromInt(100), Allocated: decimal.NewFromInt(100),
			TotalCost: decimal.NewFromInt(1040), CompliancePassed: true, Score: decimal.NewFromInt(100),
			Lines: []report.PickingLine{
				{BatchID: "25021001", Warehouse: "MP", Expiry: "2026-01-20", Quantity: decimal.NewFromInt(60), UnitCost: decimal.NewFromInt(11), LineCost: decimal.NewFromInt(660), Flags: "NEAR_EXPIRY"},
				{BatchID: "25061002", Warehouse: "MP", Quantity: decimal.NewFromInt(40), CostUnknown: true},
			},
			Warnings: []string{"Aloína reportado solo por 1 de 2 lotes"},
		}},
	}

	doc, err := NewPickingListRenderer("Planta Norte").RenderPickingList(context.Background(), list)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}
