// Package pdf genera la lista de surtido (picking list) de un plan de asignación.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: LISTA DE SURTIDO + Plan  │  Fecha + Estado          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  Por artículo:                                              │
//	│    Artículo / Estrategia / Requerido / Asignado / Faltante  │
//	│    TABLA: Lote | Bodega | Caducidad | Cant | C.Unit | Costo  │
//	│    Cumplimiento + avisos                                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: firma de surtido y verificación                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/application/report"
)

var _ report.PickingListRenderer = (*PickingListRenderer)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// PickingListRenderer implementa report.PickingListRenderer con Maroto v2.
type PickingListRenderer struct {
	company string
}

// NewPickingListRenderer construye el renderizador; company aparece como autor del PDF.
func NewPickingListRenderer(company string) *PickingListRenderer {
	return &PickingListRenderer{company: company}
}

// RenderPickingList genera el PDF y devuelve sus bytes.
func (g *PickingListRenderer) RenderPickingList(_ context.Context, list report.PickingList) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Lista de surtido "+list.PlanID, true).
		WithAuthor(nonEmpty(g.company, "Almacén"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(list))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	for _, item := range list.Items {
		m.AddRows(itemHeaderRow(item, list.Currency))
		m.AddRows(tableHeaderRow())
		m.AddRows(tableDetailRows(item)...)
		m.AddRows(complianceRows(item)...)
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.2}))
	}

	m.AddRows(line.NewRow(4))
	m.AddRows(footerRow(list))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(list report.PickingList) core.Row {
	fecha := "—"
	if !list.CreatedAt.IsZero() {
		fecha = list.CreatedAt.Format("02/01/2006")
	}
	return row.New(20).Add(
		col.New(8).Add(
			text.New("LISTA DE SURTIDO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Plan: "+list.PlanID, props.Text{Size: 8, Top: 9, Color: colorGray}),
			text.New(fmt.Sprintf("Bodega: %s   |   Cliente: %s",
				nonEmpty(list.Warehouse, "todas"), nonEmpty(list.Customer, "—"),
			), props.Text{Size: 8, Top: 14, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Fecha: "+fecha, props.Text{Size: 8, Align: align.Right, Top: 2, Color: colorGray}),
			text.New(list.OverallStatus, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 8, Color: statusColor(list.OverallStatus),
			}),
		),
	)
}

func itemHeaderRow(item report.PickingItem, currency string) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New(item.ItemCode, props.Text{Style: fontstyle.Bold, Size: 10, Top: 2}),
			text.New(fmt.Sprintf("Estrategia: %s   |   Requerido: %s   |   Asignado: %s   |   Faltante: %s   |   Costo: %s %s",
				item.Strategy,
				item.Required.String(), item.Allocated.String(), item.Shortage.String(),
				formatMoney(item.TotalCost), currency,
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(7).Add(
		h("Lote", 3, align.Left),
		h("Bodega", 2, align.Left),
		h("Caducidad", 2, align.Center),
		h("Cant.", 1, align.Right),
		h("C. Unit.", 2, align.Right),
		h("Costo", 2, align.Right),
	)
}

func tableDetailRows(item report.PickingItem) []core.Row {
	result := make([]core.Row, 0, len(item.Lines))
	for _, l := range item.Lines {
		expiry := nonEmpty(l.Expiry, "—")
		expiryColor := colorGray
		if l.Flags != "" {
			expiry += " (" + l.Flags + ")"
			expiryColor = colorAlert
		}
		unit, cost := formatMoney(l.UnitCost), formatMoney(l.LineCost)
		if l.CostUnknown {
			unit, cost = "s/p", "s/p"
		}
		result = append(result, row.New(6).Add(
			col.New(3).Add(text.New(l.BatchID, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(l.Warehouse, "—"), props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(expiry, props.Text{Size: 7, Align: align.Center, Top: 1, Color: expiryColor})),
			col.New(1).Add(text.New(l.Quantity.String(), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(unit, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(cost, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func complianceRows(item report.PickingItem) []core.Row {
	status := fmt.Sprintf("Cumplimiento: %s (puntaje %s)", passLabel(item.CompliancePassed), item.Score.StringFixed(2))
	if item.ComplianceSkipped {
		status = "Cumplimiento: sin especificación técnica"
	}
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(text.New(status, props.Text{
			Style: fontstyle.Bold, Size: 8, Top: 1, Color: statusColor(passLabel(item.CompliancePassed)),
		}))),
	}
	for _, w := range item.Warnings {
		for _, chunk := range splitEvery(w, 110) {
			rows = append(rows, row.New(4).Add(col.New(12).Add(
				text.New("• "+chunk, props.Text{Size: 7, Color: colorGray, Left: 2}),
			)))
		}
	}
	return rows
}

func footerRow(list report.PickingList) core.Row {
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(list.PlanID, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Surtió: ______________________", props.Text{Size: 9, Top: 6, Left: 3}),
			text.New("Verificó: ____________________", props.Text{Size: 9, Top: 16, Left: 3}),
			text.New(strings.ToUpper("tomar los lotes en el orden listado"), props.Text{
				Size: 7, Top: 25, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func passLabel(ok bool) string {
	if ok {
		return "CUMPLE"
	}
	return "NO CUMPLE"
}

func statusColor(s string) *props.Color {
	switch s {
	case "FULFILLED", "CUMPLE":
		return colorPrimary
	default:
		return colorAlert
	}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney redondea a 2 decimales e inserta comas de miles.
// Ej: 25000 → "25,000.00", -1234.5 → "-1,234.50"
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	return sign + string(buf) + "." + frac
}

// splitEvery divide s en trozos de max n runas.
func splitEvery(s string, n int) []string {
	r := []rune(s)
	var parts []string
	for len(r) > n {
		parts = append(parts, string(r[:n]))
		r = r[n:]
	}
	if len(r) > 0 {
		parts = append(parts, string(r))
	}
	return parts
}
