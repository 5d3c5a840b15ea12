package repository

import (
	"context"

	"github.com/jhoicas/inventario-audit/internal/domain/entity"
)

// LocationRepository puerto de persistencia para ubicaciones (clave: id; nombre único).
type LocationRepository interface {
	Create(ctx context.Context, loc *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	GetByName(ctx context.Context, name string) (*entity.Location, error)
	Update(ctx context.Context, loc *entity.Location) error
	List(ctx context.Context) ([]*entity.Location, error)
	Delete(ctx context.Context, id string) error
}
