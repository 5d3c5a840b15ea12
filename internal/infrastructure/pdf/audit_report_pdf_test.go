package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-audit/internal/application/report"
	domainaudit "github.com/jhoicas/inventario-audit/internal/domain/audit"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
)

func TestReportGenerator_Generate(t *testing.T) {
	items := []entity.AuditItem{
		{SKU: "A1", Location: "L1", Name: "Tornillo", UnitCost: decimal.NewFromInt(1500), SystemQuantity: 10, PhysicalQuantity: entity.IntPtr(7)},
		{SKU: "B2", Location: "L2", Name: "Tuerca", SystemQuantity: 4},
	}
	r := &report.Report{
		Title:       "Informe de auditoría de inventario",
		Scope:       "Todas las ubicaciones",
		GeneratedAt: time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC),
		GeneratedBy: "u-admin",
		Summary:     domainaudit.GlobalSummary(items),
		ByLocation:  domainaudit.SummaryByLocation(items),
		Items:       items,
	}

	g := NewReportGenerator()
	data, err := g.Generate(context.Background(), r)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Equal(t, "application/pdf", g.ContentType())
}

func TestReportGenerator_SinRegistros(t *testing.T) {
	data, err := NewReportGenerator().Generate(context.Background(), &report.Report{
		Title:       "Informe",
		Scope:       "L9",
		StatusScope: "matched",
		GeneratedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$0", money(decimal.Zero))
	assert.Equal(t, "$25.000", money(decimal.NewFromInt(25000)))
	assert.Equal(t, "-$4.500", money(decimal.NewFromInt(-4500)))
	assert.Equal(t, "$1.000.000", money(decimal.RequireFromString("999999.6")))
}

func TestSigned(t *testing.T) {
	assert.Equal(t, "+3", signed(3))
	assert.Equal(t, "-2", signed(-2))
	assert.Equal(t, "0", signed(0))
}
