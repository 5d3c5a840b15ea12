package audit

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/jhoicas/inventario-audit/internal/application/dto"
	"github.com/jhoicas/inventario-audit/internal/domain"
	domainaudit "github.com/jhoicas/inventario-audit/internal/domain/audit"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
	"github.com/jhoicas/inventario-audit/internal/domain/repository"
	"github.com/jhoicas/inventario-audit/pkg/logger"
)

// CountUseCase conteo manual: fija la cantidad física de forma absoluta o la limpia para reconteo.
// A diferencia del escaneo, la ubicación es explícita y no se corrige.
type CountUseCase struct {
	store  *Store
	dir    locationDirectory
	locker Locker
	log    *logger.Logger
	now    func() time.Time
}

// NewCountUseCase construye el caso de uso. Debe compartir Locker con el ScanProcessor.
func NewCountUseCase(store *Store, locations repository.LocationRepository, locker Locker, log *logger.Logger) *CountUseCase {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CountUseCase{store: store, dir: locationDirectory{repo: locations}, locker: locker, log: log.Component("manual_count"), now: time.Now}
}

// SetCount fija PhysicalQuantity = in.Quantity. Notes se reemplaza solo si viene en la petición.
func (uc *CountUseCase) SetCount(ctx context.Context, principal entity.Principal, in dto.SetCountRequest) (*dto.AuditItemResponse, error) {
	if in.Quantity < 0 {
		return nil, domain.NewValidationError("la cantidad no puede ser negativa")
	}
	if in.Quantity > math.MaxInt32 {
		return nil, domain.NewValidationError("la cantidad excede el máximo permitido")
	}
	qty := in.Quantity
	return uc.mutate(ctx, principal, in.LocationID, in.SKU, func(it *entity.AuditItem, now time.Time) {
		it.PhysicalQuantity = &qty
		it.LastAuditedAt = &now
		if in.Notes != nil {
			it.Notes = strings.TrimSpace(*in.Notes)
		}
	})
}

// ClearCount elimina el conteo físico del ítem (vuelve a pending).
func (uc *CountUseCase) ClearCount(ctx context.Context, principal entity.Principal, in dto.ClearCountRequest) (*dto.AuditItemResponse, error) {
	return uc.mutate(ctx, principal, in.LocationID, in.SKU, func(it *entity.AuditItem, _ time.Time) {
		it.PhysicalQuantity = nil
		it.LastAuditedAt = nil
	})
}

func (uc *CountUseCase) mutate(ctx context.Context, principal entity.Principal, locationID, sku string, apply func(*entity.AuditItem, time.Time)) (*dto.AuditItemResponse, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, domain.NewValidationError("sku es obligatorio")
	}
	loc, err := uc.dir.resolve(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() {
		_, assigned, err := uc.dir.visible(ctx, principal)
		if err != nil {
			return nil, err
		}
		if !domainaudit.CanAccessLocation(principal.Role, assigned, loc.Name) {
			return nil, domain.ErrAccessDenied
		}
	}

	key := entity.ItemKey{SKU: sku, Location: loc.Name}
	unlock, err := uc.locker.Lock(ctx, key)
	if err != nil {
		return nil, lockError(key, err)
	}
	defer unlock()

	current, found, err := uc.store.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	now := uc.now()
	updated := current.Clone()
	apply(&updated, now)
	updated.AuditedBy = principal.UserID
	updated.UpdatedAt = now
	domainaudit.Restamp(&updated)

	if err := uc.store.Upsert(ctx, []entity.AuditItem{updated}); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("user_id", principal.UserID).
		Str("sku", sku).
		Str("location", loc.Name).
		Str("status", string(updated.Status)).
		Msg("conteo manual aplicado")
	return ToAuditItemResponse(updated), nil
}
