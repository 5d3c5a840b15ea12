// Package report arma el informe de auditoría (resumen, desglose por ubicación y detalle)
// a partir de los registros visibles y lo entrega a un generador de formato (PDF, XLSX).
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-audit/internal/application/dto"
	"github.com/jhoicas/inventario-audit/internal/domain"
	domainaudit "github.com/jhoicas/inventario-audit/internal/domain/audit"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
	"github.com/jhoicas/inventario-audit/pkg/logger"
)

// Formatos soportados.
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// Report contenido del informe, independiente del formato.
type Report struct {
	Title       string
	Scope       string // nombre de la ubicación o "Todas las ubicaciones"
	StatusScope string // vacío = todos los estados
	GeneratedAt time.Time
	GeneratedBy string
	Summary     domainaudit.Summary
	ByLocation  []domainaudit.LocationBreakdown
	Items       []entity.AuditItem
}

// Generator convierte un Report a bytes en un formato concreto.
type Generator interface {
	Generate(ctx context.Context, r *Report) ([]byte, error)
	ContentType() string
}

// ItemSource registros y ubicaciones visibles para un principal. Lo implementa audit.QueryUseCase.
type ItemSource interface {
	VisibleItems(ctx context.Context, principal entity.Principal) ([]entity.AuditItem, []entity.Location, error)
}

// UseCase genera informes de auditoría.
type UseCase struct {
	source     ItemSource
	generators map[string]Generator
	log        *logger.Logger
	now        func() time.Time
}

// NewUseCase construye el caso de uso con los generadores por formato.
func NewUseCase(source ItemSource, generators map[string]Generator, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{source: source, generators: generators, log: log.Component("report"), now: time.Now}
}

// Build arma el informe. El resumen se calcula sobre el alcance de ubicación; el filtro de
// estado solo restringe el detalle.
func (uc *UseCase) Build(ctx context.Context, principal entity.Principal, q dto.ReportQuery) (*Report, error) {
	items, locs, err := uc.source.VisibleItems(ctx, principal)
	if err != nil {
		return nil, err
	}
	r := &Report{
		Title:       "Informe de auditoría de inventario",
		Scope:       "Todas las ubicaciones",
		StatusScope: q.Status,
		GeneratedAt: uc.now(),
		GeneratedBy: principal.UserID,
	}
	if q.LocationID != "" {
		name, ok := locationName(locs, q.LocationID)
		if !ok {
			if principal.IsAdmin() {
				return nil, fmt.Errorf("ubicación %q: %w", q.LocationID, domain.ErrNotFound)
			}
			return nil, domain.ErrAccessDenied
		}
		r.Scope = name
		scoped := items[:0:0]
		for _, it := range items {
			if it.Location == name {
				scoped = append(scoped, it)
			}
		}
		items = scoped
	}
	r.Summary = domainaudit.GlobalSummary(items)
	r.ByLocation = domainaudit.SummaryByLocation(items)
	for _, it := range items {
		if q.Status != "" && string(it.Status) != q.Status {
			continue
		}
		r.Items = append(r.Items, it)
	}
	return r, nil
}

// Render arma el informe y lo genera en el formato pedido (pdf por defecto).
func (uc *UseCase) Render(ctx context.Context, principal entity.Principal, q dto.ReportQuery) (content []byte, filename, contentType string, err error) {
	format := q.Format
	if format == "" {
		format = FormatPDF
	}
	gen, ok := uc.generators[format]
	if !ok {
		return nil, "", "", domain.NewValidationError("formato de informe no soportado: " + format)
	}
	r, err := uc.Build(ctx, principal, q)
	if err != nil {
		return nil, "", "", err
	}
	content, err = gen.Generate(ctx, r)
	if err != nil {
		return nil, "", "", fmt.Errorf("informe %s: %w", format, err)
	}
	uc.log.Info().
		Str("format", format).
		Str("scope", r.Scope).
		Int("items", len(r.Items)).
		Str("user_id", principal.UserID).
		Msg("informe generado")
	filename = fmt.Sprintf("auditoria_%s.%s", r.GeneratedAt.Format("20060102_1504"), format)
	return content, filename, gen.ContentType(), nil
}

func locationName(locs []entity.Location, id string) (string, bool) {
	for _, l := range locs {
		if l.ID == id {
			return l.Name, true
		}
	}
	return "", false
}
