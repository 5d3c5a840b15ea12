package report_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-audit/internal/application/dto"
	"github.com/jhoicas/inventario-audit/internal/application/report"
	"github.com/jhoicas/inventario-audit/internal/domain"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
)

type fixedSource struct {
	items []entity.AuditItem
	locs  []entity.Location
	err   error
}

func (s fixedSource) VisibleItems(context.Context, entity.Principal) ([]entity.AuditItem, []entity.Location, error) {
	return s.items, s.locs, s.err
}

// captureGen guarda el último informe recibido.
type captureGen struct{ last *report.Report }

func (g *captureGen) Generate(_ context.Context, r *report.Report) ([]byte, error) {
	g.last = r
	return []byte("%PDF"), nil
}

func (g *captureGen) ContentType() string { return "application/pdf" }

func source() fixedSource {
	return fixedSource{
		items: []entity.AuditItem{
			{SKU: "A1", Location: "L1", Name: "a", Category: "c", SystemQuantity: 2, PhysicalQuantity: entity.IntPtr(2), Status: entity.StatusMatched},
			{SKU: "B2", Location: "L1", Name: "b", Category: "c", SystemQuantity: 2, PhysicalQuantity: entity.IntPtr(1), Status: entity.StatusDiscrepancy},
			{SKU: "C3", Location: "L2", Name: "c", Category: "c", SystemQuantity: 1, Status: entity.StatusPending},
		},
		locs: []entity.Location{{ID: "loc-1", Name: "L1"}, {ID: "loc-2", Name: "L2"}},
	}
}

var admin = entity.Principal{UserID: "u-admin", Role: entity.RoleAdmin}

func TestBuild_FiltroDeEstadoSoloAfectaDetalle(t *testing.T) {
	uc := report.NewUseCase(source(), nil, nil)

	r, err := uc.Build(context.Background(), admin, dto.ReportQuery{Status: "discrepancy"})
	require.NoError(t, err)
	assert.Equal(t, 3, r.Summary.TotalItems)
	require.Len(t, r.Items, 1)
	assert.Equal(t, "B2", r.Items[0].SKU)
	assert.Len(t, r.ByLocation, 2)
}

func TestBuild_AlcancePorUbicacion(t *testing.T) {
	uc := report.NewUseCase(source(), nil, nil)

	r, err := uc.Build(context.Background(), admin, dto.ReportQuery{LocationID: "loc-2"})
	require.NoError(t, err)
	assert.Equal(t, "L2", r.Scope)
	assert.Equal(t, 1, r.Summary.TotalItems)
	assert.Equal(t, 0, r.Summary.CompletionPct)
}

func TestBuild_UbicacionNoVisible(t *testing.T) {
	uc := report.NewUseCase(source(), nil, nil)
	aud := entity.Principal{UserID: "u", Role: entity.RoleAuditor}

	_, err := uc.Build(context.Background(), aud, dto.ReportQuery{LocationID: "loc-9"})
	require.ErrorIs(t, err, domain.ErrAccessDenied)
	_, err = uc.Build(context.Background(), admin, dto.ReportQuery{LocationID: "loc-9"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRender_FormatoPorDefectoYNoSoportado(t *testing.T) {
	gen := &captureGen{}
	uc := report.NewUseCase(source(), map[string]report.Generator{report.FormatPDF: gen}, nil)

	content, filename, ct, err := uc.Render(context.Background(), admin, dto.ReportQuery{})
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), content)
	assert.Contains(t, filename, ".pdf")
	assert.Equal(t, "application/pdf", ct)
	require.NotNil(t, gen.last)
	assert.Equal(t, "u-admin", gen.last.GeneratedBy)

	_, _, _, err = uc.Render(context.Background(), admin, dto.ReportQuery{Format: "xlsx"})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestRender_PropagaErrorDeFuente(t *testing.T) {
	src := source()
	src.err = domain.Persistence("listar ubicaciones", errors.New("down"))
	uc := report.NewUseCase(src, map[string]report.Generator{report.FormatPDF: &captureGen{}}, nil)

	_, _, _, err := uc.Render(context.Background(), admin, dto.ReportQuery{})
	require.ErrorIs(t, err, domain.ErrPersistence)
}
