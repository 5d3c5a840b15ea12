package tabular

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/inventario-audit/internal/application/audit"
	"github.com/jhoicas/inventario-audit/internal/application/report"
	"github.com/jhoicas/inventario-audit/internal/domain"
	domainaudit "github.com/jhoicas/inventario-audit/internal/domain/audit"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// CSV
// ──────────────────────────────────────────────────────────────────────────────

func TestReadCSV_ComaYBOM(t *testing.T) {
	in := "\ufeffSKU,Location,Name,Category\nA1,L1,Tornillo,Ferretería\n\nB2,L2,Tuerca,Ferretería\n"
	tbl, err := ReadCSV(strings.NewReader(in), "")
	require.NoError(t, err)

	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "A1", tbl.Rows[0].Fields["sku"])
	assert.Equal(t, 1, tbl.Rows[0].Line)
	assert.Equal(t, 2, tbl.Rows[1].Line)
	assert.Equal(t, "L2", tbl.Rows[1].Fields["location"])
}

func TestReadCSV_Windows1252PuntoYComa(t *testing.T) {
	src := "Código;Ubicación;Descripción;Categoría;Costo\nA1;Bodega Norte;Café molido;Víveres;12,50\n"
	enc, err := charmap.Windows1252.NewEncoder().String(src)
	require.NoError(t, err)

	tbl, err := ReadCSV(strings.NewReader(enc), "windows-1252")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	f := tbl.Rows[0].Fields
	assert.Equal(t, "Café molido", f["descripcion"])
	assert.Equal(t, "Bodega Norte", f["ubicacion"])
	assert.Equal(t, "12,50", f["costo"])

	rows, err := audit.ToCatalogRows(tbl)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].UnitCost.Equal(decimal.RequireFromString("12.5")))
}

func TestReadCSV_Latin1(t *testing.T) {
	enc, err := charmap.ISO8859_1.NewEncoder().String("sku,location,name,category\nX,L1,Añejo,Licores\n")
	require.NoError(t, err)
	tbl, err := ReadCSV(strings.NewReader(enc), "ISO-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "Añejo", tbl.Rows[0].Fields["name"])
}

func TestReadCSV_CharsetDesconocido(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n1,2\n"), "ebcdic")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestReadCSV_Vacio(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), "")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = ReadCSV(strings.NewReader("sku,location\n\n"), "")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

// ──────────────────────────────────────────────────────────────────────────────
// XLSX y despacho por extensión
// ──────────────────────────────────────────────────────────────────────────────

func workbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadXLSX_PrimeraHoja(t *testing.T) {
	data := workbook(t, [][]interface{}{
		{"SKU", "Location", "Quantity"},
		{"A1", "L1", 7},
		{"B2", "L1", 0},
	})
	tbl, err := Read("cierre.XLSX", bytes.NewReader(data), Options{})
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "7", tbl.Rows[0].Fields["quantity"])
	assert.Equal(t, "B2", tbl.Rows[1].Fields["sku"])

	stock, err := audit.ToStockRows(tbl)
	require.NoError(t, err)
	assert.Equal(t, 7, stock[0].Quantity)
}

func TestReadXLSX_Invalido(t *testing.T) {
	_, err := ReadXLSX(strings.NewReader("no es un zip"), "")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestRead_ExtensionNoSoportada(t *testing.T) {
	_, err := Read("catalogo.pdf", strings.NewReader("x"), Options{})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

// ──────────────────────────────────────────────────────────────────────────────
// Informe XLSX
// ──────────────────────────────────────────────────────────────────────────────

func TestXLSXReportGenerator_Generate(t *testing.T) {
	items := []entity.AuditItem{
		{SKU: "A1", Location: "L1", Name: "Tornillo", Category: "Ferretería", UnitCost: decimal.NewFromInt(100), SystemQuantity: 5, PhysicalQuantity: entity.IntPtr(3)},
		{SKU: "B2", Location: "L2", Name: "Tuerca", Category: "Ferretería", UnitCost: decimal.NewFromInt(10), SystemQuantity: 2},
	}
	r := &report.Report{
		Title:       "Informe",
		Scope:       "Todas las ubicaciones",
		GeneratedAt: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
		GeneratedBy: "u-admin",
		Summary:     domainaudit.GlobalSummary(items),
		ByLocation:  domainaudit.SummaryByLocation(items),
		Items:       items,
	}

	g := NewXLSXReportGenerator()
	data, err := g.Generate(context.Background(), r)
	require.NoError(t, err)
	assert.Contains(t, g.ContentType(), "spreadsheetml")

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{sheetSummary, sheetDetail}, f.GetSheetList())

	detail, err := f.GetRows(sheetDetail)
	require.NoError(t, err)
	require.Len(t, detail, 3)
	assert.Equal(t, "SKU", detail[0][0])
	assert.Equal(t, "A1", detail[1][0])
	assert.Equal(t, "Discrepancia", detail[1][8])
	assert.Equal(t, "-2", detail[1][9])
	assert.Equal(t, "-200", detail[1][10])
	assert.Equal(t, "Pendiente", detail[2][8])

	summary, err := f.GetRows(sheetSummary)
	require.NoError(t, err)
	last := summary[len(summary)-1]
	assert.Equal(t, "TOTAL", last[0])
	assert.Equal(t, "2", last[1])
	assert.Equal(t, "50", last[6])
}
