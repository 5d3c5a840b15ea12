package audit

import (
	"context"

	"github.com/jhoicas/inventario-audit/internal/domain"
	domainaudit "github.com/jhoicas/inventario-audit/internal/domain/audit"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
	"github.com/jhoicas/inventario-audit/internal/domain/repository"
)

// locationDirectory resuelve ubicaciones y visibilidad del principal.
type locationDirectory struct {
	repo repository.LocationRepository
}

func (d locationDirectory) resolve(ctx context.Context, id string) (*entity.Location, error) {
	if id == "" {
		return nil, domain.ErrLocationRequired
	}
	loc, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("resolver ubicación", err)
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}
	return loc, nil
}

// visible devuelve las ubicaciones visibles para el principal y sus nombres.
func (d locationDirectory) visible(ctx context.Context, p entity.Principal) ([]entity.Location, []string, error) {
	list, err := d.repo.List(ctx)
	if err != nil {
		return nil, nil, domain.Persistence("listar ubicaciones", err)
	}
	all := make([]entity.Location, 0, len(list))
	for _, l := range list {
		all = append(all, *l)
	}
	locs := domainaudit.VisibleLocations(p.Role, p.LocationIDs, all)
	return locs, domainaudit.LocationNames(locs), nil
}
