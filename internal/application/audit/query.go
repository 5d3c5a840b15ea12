package audit

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/inventario-audit/internal/application/dto"
	"github.com/jhoicas/inventario-audit/internal/domain"
	domainaudit "github.com/jhoicas/inventario-audit/internal/domain/audit"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
	"github.com/jhoicas/inventario-audit/internal/domain/repository"
)

// QueryUseCase lecturas sobre el snapshot: resúmenes y listados, siempre filtrados por visibilidad.
// Se recalcula en cada llamada; no hay caché.
type QueryUseCase struct {
	store *Store
	dir   locationDirectory
	now   func() time.Time
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(store *Store, locations repository.LocationRepository) *QueryUseCase {
	return &QueryUseCase{store: store, dir: locationDirectory{repo: locations}, now: time.Now}
}

// VisibleItems registros visibles para el principal, ordenados por ubicación y SKU.
func (uc *QueryUseCase) VisibleItems(ctx context.Context, principal entity.Principal) ([]entity.AuditItem, []entity.Location, error) {
	locs, names, err := uc.dir.visible(ctx, principal)
	if err != nil {
		return nil, nil, err
	}
	return domainaudit.VisibleRecords(principal.Role, names, uc.store.Snapshot().All()), locs, nil
}

// Overview resumen global de lo visible más desglose por ubicación visible (incluye ubicaciones sin ítems).
func (uc *QueryUseCase) Overview(ctx context.Context, principal entity.Principal) (*dto.AuditOverviewResponse, error) {
	items, locs, err := uc.VisibleItems(ctx, principal)
	if err != nil {
		return nil, err
	}
	idByName := make(map[string]string, len(locs))
	for _, l := range locs {
		idByName[l.Name] = l.ID
	}
	out := &dto.AuditOverviewResponse{
		Global:      ToSummaryResponse(domainaudit.GlobalSummary(items)),
		ByLocation:  make([]dto.LocationSummaryResponse, 0, len(locs)),
		GeneratedAt: uc.now(),
	}
	seen := make(map[string]struct{})
	for _, b := range domainaudit.SummaryByLocation(items) {
		seen[b.Location] = struct{}{}
		out.ByLocation = append(out.ByLocation, dto.LocationSummaryResponse{
			LocationID: idByName[b.Location],
			Location:   b.Location,
			Summary:    ToSummaryResponse(b.Summary),
		})
	}
	for _, l := range locs {
		if _, ok := seen[l.Name]; ok {
			continue
		}
		out.ByLocation = append(out.ByLocation, dto.LocationSummaryResponse{
			LocationID: l.ID,
			Location:   l.Name,
			Summary:    ToSummaryResponse(domainaudit.LocationSummary(nil, l.Name)),
		})
	}
	return out, nil
}

// LocationSummary resumen de una ubicación visible.
func (uc *QueryUseCase) LocationSummary(ctx context.Context, principal entity.Principal, locationID string) (*dto.LocationSummaryResponse, error) {
	loc, err := uc.dir.resolve(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && !visibleID(principal.LocationIDs, loc.ID) {
		return nil, domain.ErrAccessDenied
	}
	items, _, err := uc.VisibleItems(ctx, principal)
	if err != nil {
		return nil, err
	}
	return &dto.LocationSummaryResponse{
		LocationID: loc.ID,
		Location:   loc.Name,
		Summary:    ToSummaryResponse(domainaudit.LocationSummary(items, loc.Name)),
	}, nil
}

// ListItems listado paginado de registros visibles con filtros de ubicación, estado y texto.
func (uc *QueryUseCase) ListItems(ctx context.Context, principal entity.Principal, q dto.ListAuditItemsQuery) (*dto.AuditItemListResponse, error) {
	items, _, err := uc.VisibleItems(ctx, principal)
	if err != nil {
		return nil, err
	}
	location := ""
	if q.LocationID != "" {
		loc, err := uc.dir.resolve(ctx, q.LocationID)
		if err != nil {
			return nil, err
		}
		if !principal.IsAdmin() && !visibleID(principal.LocationIDs, loc.ID) {
			return nil, domain.ErrAccessDenied
		}
		location = loc.Name
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))
	filtered := make([]entity.AuditItem, 0, len(items))
	for _, it := range items {
		if location != "" && it.Location != location {
			continue
		}
		if q.Status != "" && string(it.Status) != q.Status {
			continue
		}
		if search != "" && !matches(it, search) {
			continue
		}
		filtered = append(filtered, it)
	}

	limit, offset := q.Limit, q.Offset
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	total := len(filtered)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := make([]dto.AuditItemResponse, 0, end-offset)
	for _, it := range filtered[offset:end] {
		page = append(page, *ToAuditItemResponse(it))
	}
	return &dto.AuditItemListResponse{
		Items: page,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

func matches(it entity.AuditItem, needle string) bool {
	for _, s := range []string{it.SKU, it.Barcode, it.Name, it.Category} {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

func visibleID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
