package audit_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-audit/internal/domain"
	"github.com/jhoicas/inventario-audit/internal/domain/audit"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
)

// mapLookup implementa audit.Lookup sobre un mapa.
type mapLookup map[entity.ItemKey]entity.AuditItem

func (m mapLookup) Get(k entity.ItemKey) (entity.AuditItem, bool) {
	it, ok := m[k]
	return it, ok
}

func (m mapLookup) apply(items []entity.AuditItem) {
	for _, it := range items {
		m[it.Key()] = it
	}
}

var (
	t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Hour)
)

// ──────────────────────────────────────────────────────────────────────────────
// MergeCatalog
// ──────────────────────────────────────────────────────────────────────────────

func TestMergeCatalog_FuerzaCantidadSistemaEnCero(t *testing.T) {
	rows := []audit.CatalogRow{{Line: 1, SKU: "A1", Location: "L1", Name: "Widget", Category: "Tools"}}
	current := mapLookup{{SKU: "A1", Location: "L1"}: {SKU: "A1", Location: "L1", Name: "Old", Category: "X", SystemQuantity: 40}}

	out, err := audit.MergeCatalog(rows, current, t0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].SystemQuantity)
	assert.Equal(t, "Widget", out[0].Name)
	assert.Equal(t, entity.StatusPending, out[0].Status)
}

func TestMergeCatalog_ConservaConteoFisicoExistente(t *testing.T) {
	audited := t0
	current := mapLookup{{SKU: "A1", Location: "L1"}: {
		SKU: "A1", Location: "L1", Name: "Widget", Category: "Tools",
		SystemQuantity: 3, PhysicalQuantity: entity.IntPtr(3), Status: entity.StatusMatched,
		LastAuditedAt: &audited, Notes: "estante 2",
	}}
	out, err := audit.MergeCatalog([]audit.CatalogRow{{Line: 1, SKU: "A1", Location: "L1", Name: "Widget", Category: "Tools"}}, current, t1)
	require.NoError(t, err)
	require.NotNil(t, out[0].PhysicalQuantity)
	assert.Equal(t, 3, *out[0].PhysicalQuantity)
	assert.Equal(t, entity.StatusDiscrepancy, out[0].Status, "sistema en 0 vs físico 3")
	assert.Equal(t, "estante 2", out[0].Notes)
}

func TestMergeCatalog_UltimaFilaRepetidaGana(t *testing.T) {
	rows := []audit.CatalogRow{
		{Line: 1, SKU: "A1", Location: "L1", Name: "Primero", Category: "C"},
		{Line: 2, SKU: "B2", Location: "L1", Name: "Otro", Category: "C"},
		{Line: 3, SKU: "A1", Location: "L1", Name: "Segundo", Category: "C", UnitCost: decimal.NewFromInt(4), HasUnitCost: true},
	}
	out, err := audit.MergeCatalog(rows, mapLookup{}, t0)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "A1", out[0].SKU)
	assert.Equal(t, "Segundo", out[0].Name)
	assert.True(t, decimal.NewFromInt(4).Equal(out[0].UnitCost))
}

func TestMergeCatalog_RechazaCamposFaltantes(t *testing.T) {
	rows := []audit.CatalogRow{
		{Line: 1, SKU: "A1", Location: "L1", Name: "Widget", Category: "Tools"},
		{Line: 2, SKU: "A2", Location: "L1", Name: "", Category: "Tools"},
		{Line: 3, SKU: "", Location: "L1", Name: "X", Category: "Tools"},
	}
	out, err := audit.MergeCatalog(rows, mapLookup{}, t0)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []int{2, 3}, ve.Rows)
}

func TestMergeCatalog_VacioEsValidationError(t *testing.T) {
	_, err := audit.MergeCatalog(nil, mapLookup{}, t0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// MergeClosingStock
// ──────────────────────────────────────────────────────────────────────────────

func TestMergeClosingStock_PreservaCamposDescriptivos(t *testing.T) {
	current := mapLookup{{SKU: "A1", Location: "L1"}: {
		SKU: "A1", Location: "L1", Name: "Widget", Category: "Tools", Barcode: "7701",
		Status: entity.StatusPending, UpdatedAt: t0,
	}}
	out, err := audit.MergeClosingStock([]audit.StockRow{{Line: 1, SKU: "A1", Location: "L1", Quantity: 50}}, current, t1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Widget", out[0].Name)
	assert.Equal(t, "Tools", out[0].Category)
	assert.Equal(t, "7701", out[0].Barcode)
	assert.Equal(t, 50, out[0].SystemQuantity)
	assert.Equal(t, t1, out[0].UpdatedAt)
}

func TestMergeClosingStock_RecalculaEstado(t *testing.T) {
	current := mapLookup{{SKU: "A1", Location: "L1"}: {
		SKU: "A1", Location: "L1", Name: "Widget", Category: "Tools",
		PhysicalQuantity: entity.IntPtr(5), Status: entity.StatusDiscrepancy,
	}}
	out, err := audit.MergeClosingStock([]audit.StockRow{{Line: 1, SKU: "A1", Location: "L1", Quantity: 5}}, current, t1)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusMatched, out[0].Status)
}

func TestMergeClosingStock_Idempotente(t *testing.T) {
	current := mapLookup{{SKU: "A1", Location: "L1"}: {SKU: "A1", Location: "L1", Name: "Widget", Category: "Tools", UpdatedAt: t0}}
	rows := []audit.StockRow{
		{Line: 1, SKU: "A1", Location: "L1", Quantity: 50},
		{Line: 2, SKU: "B7", Location: "L2", Quantity: 3, Name: "Tuerca", Category: "Ferretería"},
	}

	first, err := audit.MergeClosingStock(rows, current, t1)
	require.NoError(t, err)
	current.apply(first)

	second, err := audit.MergeClosingStock(rows, current, t1.Add(time.Hour))
	require.NoError(t, err)
	current.apply(second)

	require.Len(t, second, len(first))
	for i := range first {
		assert.True(t, audit.SameContent(first[i], second[i]))
		assert.Equal(t, first[i].UpdatedAt, second[i].UpdatedAt, "sin cambios no avanza UpdatedAt")
	}
	assert.Len(t, current, 2, "no se duplican registros")
}

func TestMergeClosingStock_NuevoSinDescripcionRechazaLote(t *testing.T) {
	rows := []audit.StockRow{
		{Line: 1, SKU: "A1", Location: "L1", Quantity: 5, Name: "Widget", Category: "Tools"},
		{Line: 2, SKU: "Z9", Location: "L1", Quantity: 5},
	}
	out, err := audit.MergeClosingStock(rows, mapLookup{}, t0)
	assert.Nil(t, out)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []int{2}, ve.Rows)
}

func TestMergeClosingStock_CantidadNegativa(t *testing.T) {
	_, err := audit.MergeClosingStock([]audit.StockRow{{Line: 4, SKU: "A1", Location: "L1", Quantity: -1, Name: "W", Category: "C"}}, mapLookup{}, t0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMergeClosingStock_ClaveNuevaRepetidaUsaPrimeraDescripcion(t *testing.T) {
	rows := []audit.StockRow{
		{Line: 1, SKU: "N1", Location: "L1", Quantity: 5, Name: "Nuevo", Category: "C"},
		{Line: 2, SKU: "N1", Location: "L1", Quantity: 8},
	}
	out, err := audit.MergeClosingStock(rows, mapLookup{}, t0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Nuevo", out[0].Name)
	assert.Equal(t, 8, out[0].SystemQuantity)
}
