package repository

import (
	"context"

	"github.com/jhoicas/inventario-audit/internal/domain/entity"
)

// AuditItemFilter predicado de lectura; campos vacíos no filtran.
type AuditItemFilter struct {
	Location string
	SKU      string
}

// AuditItemRepository puerto de persistencia para ítems de auditoría (clave única: sku + location).
type AuditItemRepository interface {
	// Upsert inserta o reemplaza los ítems por (sku, location). Es atómico para el lote completo
	// e idempotente ante entradas idénticas.
	Upsert(ctx context.Context, items []entity.AuditItem) error
	// SelectAll devuelve los ítems que cumplen el filtro, ordenados por location, sku.
	SelectAll(ctx context.Context, filter AuditItemFilter) ([]entity.AuditItem, error)
	// CountByLocation cuenta ítems que referencian la ubicación por nombre.
	CountByLocation(ctx context.Context, location string) (int, error)
	// DeleteAll vacía la tabla (reset de auditoría).
	DeleteAll(ctx context.Context) error
}
