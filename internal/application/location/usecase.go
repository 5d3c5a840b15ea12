package location

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-audit/internal/application/dto"
	"github.com/jhoicas/inventario-audit/internal/domain"
	domainaudit "github.com/jhoicas/inventario-audit/internal/domain/audit"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
	"github.com/jhoicas/inventario-audit/internal/domain/repository"
	"github.com/jhoicas/inventario-audit/pkg/logger"
)

// ReferenceGuard verifica que ningún ítem de auditoría referencie una ubicación por nombre.
// Lo implementa audit.Store.
type ReferenceGuard interface {
	EnsureLocationDeletable(ctx context.Context, name string) error
}

// UseCase casos de uso CRUD para ubicaciones.
type UseCase struct {
	repo  repository.LocationRepository
	guard ReferenceGuard
	log   *logger.Logger
	now   func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.LocationRepository, guard ReferenceGuard, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{repo: repo, guard: guard, log: log.Component("locations"), now: time.Now}
}

// Create crea una nueva ubicación. El nombre es único.
func (uc *UseCase) Create(ctx context.Context, principal entity.Principal, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrAccessDenied
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("el nombre de la ubicación es obligatorio")
	}
	if err := uc.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}
	now := uc.now()
	loc := &entity.Location{
		ID:          uuid.New().String(),
		CompanyID:   principal.CompanyID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Active:      in.Active == nil || *in.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, loc); err != nil {
		return nil, domain.Persistence("crear ubicación", err)
	}
	uc.log.Info().Str("location_id", loc.ID).Str("name", loc.Name).Msg("ubicación creada")
	return toLocationResponse(loc), nil
}

// GetByID obtiene una ubicación visible para el principal.
func (uc *UseCase) GetByID(ctx context.Context, principal entity.Principal, id string) (*dto.LocationResponse, error) {
	loc, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && len(domainaudit.VisibleLocations(principal.Role, principal.LocationIDs, []entity.Location{*loc})) == 0 {
		return nil, domain.ErrAccessDenied
	}
	return toLocationResponse(loc), nil
}

// Update actualiza nombre, descripción o estado. El renombre se rechaza mientras haya
// ítems de auditoría con el nombre anterior.
func (uc *UseCase) Update(ctx context.Context, principal entity.Principal, id string, in dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrAccessDenied
	}
	loc, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.NewValidationError("el nombre de la ubicación es obligatorio")
		}
		if name != loc.Name {
			if err := uc.ensureNameFree(ctx, name, loc.ID); err != nil {
				return nil, err
			}
			if err := uc.guard.EnsureLocationDeletable(ctx, loc.Name); err != nil {
				return nil, fmt.Errorf("renombrar %q: %w", loc.Name, err)
			}
			loc.Name = name
		}
	}
	if in.Description != nil {
		loc.Description = strings.TrimSpace(*in.Description)
	}
	if in.Active != nil {
		loc.Active = *in.Active
	}
	loc.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, loc); err != nil {
		return nil, domain.Persistence("actualizar ubicación", err)
	}
	return toLocationResponse(loc), nil
}

// List lista las ubicaciones visibles para el principal.
func (uc *UseCase) List(ctx context.Context, principal entity.Principal) (*dto.LocationListResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, domain.Persistence("listar ubicaciones", err)
	}
	all := make([]entity.Location, 0, len(list))
	for _, l := range list {
		all = append(all, *l)
	}
	visible := domainaudit.VisibleLocations(principal.Role, principal.LocationIDs, all)
	items := make([]dto.LocationResponse, 0, len(visible))
	for i := range visible {
		items = append(items, *toLocationResponse(&visible[i]))
	}
	return &dto.LocationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: len(items), Total: len(items)},
	}, nil
}

// Delete elimina una ubicación si ningún ítem la referencia por nombre.
func (uc *UseCase) Delete(ctx context.Context, principal entity.Principal, id string) error {
	if !principal.IsAdmin() {
		return domain.ErrAccessDenied
	}
	loc, err := uc.get(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.guard.EnsureLocationDeletable(ctx, loc.Name); err != nil {
		uc.log.Warn().Err(err).Str("location", loc.Name).Msg("borrado de ubicación rechazado")
		return fmt.Errorf("ubicación %q en uso: %w", loc.Name, err)
	}
	if err := uc.repo.Delete(ctx, loc.ID); err != nil {
		return domain.Persistence("eliminar ubicación", err)
	}
	uc.log.Info().Str("location_id", loc.ID).Str("name", loc.Name).Msg("ubicación eliminada")
	return nil
}

func (uc *UseCase) get(ctx context.Context, id string) (*entity.Location, error) {
	loc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("obtener ubicación", err)
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}
	return loc, nil
}

func (uc *UseCase) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return domain.Persistence("buscar ubicación", err)
	}
	if existing != nil && existing.ID != selfID {
		return fmt.Errorf("ubicación %q: %w", name, domain.ErrDuplicate)
	}
	return nil
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	if l == nil {
		return nil
	}
	return &dto.LocationResponse{
		ID:          l.ID,
		CompanyID:   l.CompanyID,
		Name:        l.Name,
		Description: l.Description,
		Active:      l.Active,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}
