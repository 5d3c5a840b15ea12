package tabular

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/inventario-audit/internal/application/report"
	domainaudit "github.com/jhoicas/inventario-audit/internal/domain/audit"
)

const (
	sheetSummary = "Resumen"
	sheetDetail  = "Detalle"
)

var _ report.Generator = (*XLSXReportGenerator)(nil)

// XLSXReportGenerator escribe el informe en un libro con hoja de resumen y hoja de detalle.
type XLSXReportGenerator struct{}

// NewXLSXReportGenerator construye el generador.
func NewXLSXReportGenerator() *XLSXReportGenerator { return &XLSXReportGenerator{} }

// ContentType MIME de XLSX.
func (g *XLSXReportGenerator) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Generate arma el libro y devuelve sus bytes.
func (g *XLSXReportGenerator) Generate(_ context.Context, r *report.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}
	setRow := func(sheet string, rowIdx int, values []interface{}) {
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowIdx)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	writeHeaders := func(sheet string, rowIdx int, headers []string) {
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowIdx)
			_ = f.SetCellValue(sheet, cell, h)
			_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
		}
	}

	// Hoja 1: resumen global + desglose por ubicación
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("xlsx: hoja resumen: %w", err)
	}
	setRow(sheetSummary, 1, []interface{}{r.Title})
	setRow(sheetSummary, 2, []interface{}{"Alcance", r.Scope})
	setRow(sheetSummary, 3, []interface{}{"Estado", statusLabel(r.StatusScope)})
	setRow(sheetSummary, 4, []interface{}{"Generado", r.GeneratedAt.Format("02-01-2006 15:04"), r.GeneratedBy})

	locHeaders := []string{
		"Ubicación", "Total", "Auditados", "Pendientes", "Coinciden",
		"Discrepancias", "Avance %", "Varianza neta", "Faltantes", "Sobrantes", "Valor varianza",
	}
	writeHeaders(sheetSummary, 6, locHeaders)
	rowS := 7
	for _, b := range r.ByLocation {
		setRow(sheetSummary, rowS, summaryValues(b.Location, b.Summary))
		rowS++
	}
	setRow(sheetSummary, rowS, summaryValues("TOTAL", r.Summary))
	totalCell, _ := excelize.CoordinatesToCellName(1, rowS)
	_ = f.SetCellStyle(sheetSummary, totalCell, totalCell, headerStyle)
	_ = f.SetColWidth(sheetSummary, "A", "A", 28)

	// Hoja 2: detalle de registros
	if _, err := f.NewSheet(sheetDetail); err != nil {
		return nil, fmt.Errorf("xlsx: hoja detalle: %w", err)
	}
	detailHeaders := []string{
		"SKU", "Código de barras", "Nombre", "Categoría", "Ubicación", "Costo unitario",
		"Cant. sistema", "Cant. física", "Estado", "Varianza", "Valor varianza",
		"Auditado por", "Última auditoría", "Notas",
	}
	writeHeaders(sheetDetail, 1, detailHeaders)
	rowD := 2
	for _, it := range r.Items {
		var physical, variance, audited interface{} = "", "", ""
		if it.PhysicalQuantity != nil {
			physical = *it.PhysicalQuantity
		}
		if v, ok := domainaudit.Variance(it.SystemQuantity, it.PhysicalQuantity); ok {
			variance = v
		}
		if it.LastAuditedAt != nil {
			audited = it.LastAuditedAt.Format("02-01-2006 15:04")
		}
		setRow(sheetDetail, rowD, []interface{}{
			it.SKU,
			it.Barcode,
			it.Name,
			it.Category,
			it.Location,
			it.UnitCost.InexactFloat64(),
			it.SystemQuantity,
			physical,
			statusLabel(string(domainaudit.DeriveStatus(it.SystemQuantity, it.PhysicalQuantity))),
			variance,
			domainaudit.VarianceValue(it).InexactFloat64(),
			it.AuditedBy,
			audited,
			it.Notes,
		})
		rowD++
	}

	lastCol, _ := excelize.ColumnNumberToName(len(detailHeaders))
	_ = f.AutoFilter(sheetDetail, "A1:"+lastCol+"1", []excelize.AutoFilterOptions{})
	_ = f.SetPanes(sheetDetail, &excelize.Panes{Freeze: true, Split: true, YSplit: 1})
	_ = f.SetColWidth(sheetDetail, "C", "C", 36)

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

func summaryValues(label string, s domainaudit.Summary) []interface{} {
	return []interface{}{
		label,
		s.TotalItems,
		s.AuditedCount,
		s.PendingItems,
		s.Matched,
		s.Discrepancy,
		s.CompletionPct,
		s.NetVariance,
		s.ShortageUnits,
		s.OverageUnits,
		s.VarianceValue.InexactFloat64(),
	}
}

func statusLabel(s string) string {
	switch s {
	case "pending":
		return "Pendiente"
	case "matched":
		return "Coincide"
	case "discrepancy":
		return "Discrepancia"
	case "":
		return "Todos"
	}
	return s
}
