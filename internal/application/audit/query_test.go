package audit_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-audit/internal/application/audit"
	"github.com/jhoicas/inventario-audit/internal/application/dto"
	"github.com/jhoicas/inventario-audit/internal/domain"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
)

func newQuery(t *testing.T) *audit.QueryUseCase {
	t.Helper()
	locL3 := entity.Location{ID: "loc-3", Name: "L3", Active: true}
	store := audit.NewStore(newMemItems(
		item("A1", "L1", 2, entity.IntPtr(2)),
		item("B2", "L1", 3, nil),
		item("C3", "L2", 1, entity.IntPtr(4)),
	), nil, nil)
	require.NoError(t, store.Load(context.Background()))
	return audit.NewQueryUseCase(store, newMemLocations(locL1, locL2, locL3))
}

func TestOverview_AdminVeTodoEIncluyeUbicacionesVacias(t *testing.T) {
	uc := newQuery(t)

	res, err := uc.Overview(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Global.TotalItems)
	assert.Equal(t, 2, res.Global.AuditedCount)
	assert.Equal(t, 67, res.Global.CompletionPct)
	require.Len(t, res.ByLocation, 3)
	assert.Equal(t, "L1", res.ByLocation[0].Location)
	assert.Equal(t, "loc-1", res.ByLocation[0].LocationID)
	assert.Equal(t, "L3", res.ByLocation[2].Location)
	assert.Equal(t, 0, res.ByLocation[2].Summary.TotalItems)
}

func TestOverview_NoAdminSoloVeSusUbicaciones(t *testing.T) {
	uc := newQuery(t)

	res, err := uc.Overview(context.Background(), auditor)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Global.TotalItems)
	assert.Equal(t, 50, res.Global.CompletionPct)
	require.Len(t, res.ByLocation, 1)
	assert.Equal(t, "L1", res.ByLocation[0].Location)
}

func TestLocationSummary_AccesoDenegado(t *testing.T) {
	uc := newQuery(t)

	_, err := uc.LocationSummary(context.Background(), auditor, "loc-2")
	require.ErrorIs(t, err, domain.ErrAccessDenied)

	res, err := uc.LocationSummary(context.Background(), admin, "loc-2")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.Discrepancy)
	assert.Equal(t, 3, res.Summary.OverageUnits)
}

func TestListItems_FiltrosYPaginacion(t *testing.T) {
	uc := newQuery(t)
	ctx := context.Background()

	res, err := uc.ListItems(ctx, admin, dto.ListAuditItemsQuery{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "B2", res.Items[0].SKU)

	res, err = uc.ListItems(ctx, admin, dto.ListAuditItemsQuery{Search: "item c", Limit: 10})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "C3", res.Items[0].SKU)

	res, err = uc.ListItems(ctx, admin, dto.ListAuditItemsQuery{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Page.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "C3", res.Items[0].SKU)
}

func TestListItems_NoAdminNoFiltraPorUbicacionAjena(t *testing.T) {
	uc := newQuery(t)

	_, err := uc.ListItems(context.Background(), auditor, dto.ListAuditItemsQuery{LocationID: "loc-2"})
	require.ErrorIs(t, err, domain.ErrAccessDenied)

	res, err := uc.ListItems(context.Background(), auditor, dto.ListAuditItemsQuery{})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
}
