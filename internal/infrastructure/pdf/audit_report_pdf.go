// Package pdf genera el informe de auditoría de inventario en PDF con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + alcance    │  Fecha + usuario             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: total / auditados / avance / varianza             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Ubicación | Total | Aud. | Coinc. | Disc. | % | Var │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Nombre | Ubic. | Sist. | Fís. | Var | Estado   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
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

	"github.com/jhoicas/inventario-audit/internal/application/report"
	domainaudit "github.com/jhoicas/inventario-audit/internal/domain/audit"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorDanger  = &props.Color{Red: 170, Green: 30, Blue: 30}
	colorOK      = &props.Color{Red: 20, Green: 110, Blue: 50}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ report.Generator = (*ReportGenerator)(nil)

// ReportGenerator implementa report.Generator usando Maroto v2.
type ReportGenerator struct{}

// NewReportGenerator construye el generador.
func NewReportGenerator() *ReportGenerator { return &ReportGenerator{} }

// ContentType MIME del documento.
func (g *ReportGenerator) ContentType() string { return "application/pdf" }

// Generate genera el PDF y devuelve sus bytes.
func (g *ReportGenerator) Generate(_ context.Context, r *report.Report) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(r.Title, true).
		WithAuthor(nonEmpty(r.GeneratedBy, "sistema"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(r.Summary))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	// Desglose por ubicación
	m.AddRows(sectionTitle("AVANCE POR UBICACIÓN"))
	m.AddRows(locationHeaderRow())
	for _, b := range r.ByLocation {
		m.AddRows(locationRow(b.Location, b.Summary, false))
	}
	m.AddRows(locationRow("TOTAL", r.Summary, true))

	// Detalle
	m.AddRows(line.NewRow(3))
	m.AddRows(sectionTitle(fmt.Sprintf("DETALLE (%d registros, estado: %s)", len(r.Items), statusLabel(r.StatusScope))))
	m.AddRows(itemHeaderRow())
	for _, it := range r.Items {
		m.AddRows(itemRow(it))
	}
	if len(r.Items) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin registros para los filtros seleccionados.", props.Text{
				Size: 8, Align: align.Center, Color: colorGray, Top: 2,
			}),
		)))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título + alcance (izq) y fecha + usuario (der).
func headerRow(r *report.Report) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(r.Title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Alcance: "+r.Scope, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("AUDITORÍA DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Generado: "+r.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 7,
			}),
			text.New("Usuario: "+nonEmpty(r.GeneratedBy, "-"), props.Text{
				Size: 8, Align: align.Right, Top: 12, Color: colorGray,
			}),
		),
	)
}

// summaryRow: indicadores globales en cuatro bloques.
func summaryRow(s domainaudit.Summary) core.Row {
	block := func(label, value string, c *props.Color) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 7, Color: colorGray, Align: align.Center, Top: 1,
			}),
			text.New(value, props.Text{
				Style: fontstyle.Bold, Size: 12, Color: c, Align: align.Center, Top: 6,
			}),
		)
	}
	valueColor := colorOK
	if s.NetVariance < 0 {
		valueColor = colorDanger
	}
	return row.New(16).Add(
		block("ÍTEMS", strconv.Itoa(s.TotalItems), colorPrimary),
		block("AUDITADOS", fmt.Sprintf("%d (%d%%)", s.AuditedCount, s.CompletionPct), colorPrimary),
		block("DISCREPANCIAS", fmt.Sprintf("%d  (-%d / +%d)", s.Discrepancy, s.ShortageUnits, s.OverageUnits), colorPrimary),
		block("VALOR VARIANZA", money(s.VarianceValue), valueColor),
	)
}

func sectionTitle(label string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2,
		}),
	))
}

func headerCell(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a,
		Color: colorWhite, Top: 2, Left: 1, Right: 1,
	}))
}

func locationHeaderRow() core.Row {
	return row.New(8).Add(
		headerCell("Ubicación", 3, align.Left),
		headerCell("Total", 1, align.Center),
		headerCell("Aud.", 1, align.Center),
		headerCell("Coinc.", 1, align.Center),
		headerCell("Disc.", 1, align.Center),
		headerCell("Avance", 1, align.Center),
		headerCell("Var. neta", 2, align.Right),
		headerCell("Valor var.", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func locationRow(label string, s domainaudit.Summary, bold bool) core.Row {
	style := fontstyle.Normal
	if bold {
		style = fontstyle.Bold
	}
	cell := func(v string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(v, props.Text{
			Style: style, Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		}))
	}
	return row.New(6).Add(
		cell(label, 3, align.Left),
		cell(strconv.Itoa(s.TotalItems), 1, align.Center),
		cell(strconv.Itoa(s.AuditedCount), 1, align.Center),
		cell(strconv.Itoa(s.Matched), 1, align.Center),
		cell(strconv.Itoa(s.Discrepancy), 1, align.Center),
		cell(strconv.Itoa(s.CompletionPct)+"%", 1, align.Center),
		cell(signed(s.NetVariance), 2, align.Right),
		cell(money(s.VarianceValue), 2, align.Right),
	)
}

func itemHeaderRow() core.Row {
	return row.New(8).Add(
		headerCell("SKU", 2, align.Left),
		headerCell("Nombre", 3, align.Left),
		headerCell("Ubicación", 2, align.Left),
		headerCell("Sist.", 1, align.Center),
		headerCell("Fís.", 1, align.Center),
		headerCell("Var.", 1, align.Center),
		headerCell("Estado", 2, align.Center),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// itemRow: una fila por registro; la varianza se resalta si hay faltante.
func itemRow(it entity.AuditItem) core.Row {
	physical, variance := "-", "-"
	varColor := colorGray
	if it.PhysicalQuantity != nil {
		physical = strconv.Itoa(*it.PhysicalQuantity)
	}
	if v, ok := domainaudit.Variance(it.SystemQuantity, it.PhysicalQuantity); ok {
		variance = signed(v)
		switch {
		case v < 0:
			varColor = colorDanger
		case v > 0:
			varColor = colorPrimary
		default:
			varColor = colorOK
		}
	}
	status := domainaudit.DeriveStatus(it.SystemQuantity, it.PhysicalQuantity)
	return row.New(6).Add(
		col.New(2).Add(text.New(it.SKU, props.Text{Size: 7.5, Top: 1, Left: 1})),
		col.New(3).Add(text.New(it.Name, props.Text{Size: 7.5, Top: 1, Left: 1})),
		col.New(2).Add(text.New(it.Location, props.Text{Size: 7.5, Top: 1, Left: 1})),
		col.New(1).Add(text.New(strconv.Itoa(it.SystemQuantity), props.Text{Size: 7.5, Align: align.Center, Top: 1})),
		col.New(1).Add(text.New(physical, props.Text{Size: 7.5, Align: align.Center, Top: 1})),
		col.New(1).Add(text.New(variance, props.Text{Size: 7.5, Align: align.Center, Top: 1, Color: varColor})),
		col.New(2).Add(text.New(statusLabel(string(status)), props.Text{Size: 7.5, Align: align.Center, Top: 1})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func statusLabel(s string) string {
	switch s {
	case string(entity.StatusPending):
		return "Pendiente"
	case string(entity.StatusMatched):
		return "Coincide"
	case string(entity.StatusDiscrepancy):
		return "Discrepancia"
	case "":
		return "todos"
	}
	return s
}

func signed(v int) string {
	if v > 0 {
		return "+" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}

// money formatea un valor con signo y puntos de miles, sin decimales. Ej: -25000 → "-$25.000"
func money(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + "$" + formatMoney(d.StringFixed(0))
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
