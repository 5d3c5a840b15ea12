package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-audit/internal/domain/entity"
	"github.com/jhoicas/inventario-audit/internal/domain/repository"
)

var _ repository.AuditItemRepository = (*AuditItemRepo)(nil)

// AuditItemRepo ítems de auditoría sobre SQLite.
type AuditItemRepo struct {
	c conn
}

// NewAuditItemRepository construye el adaptador.
func NewAuditItemRepository(db *sql.DB) *AuditItemRepo {
	return &AuditItemRepo{c: conn{db: db}}
}

// Upsert inserta o reemplaza el lote por (sku, location) en una transacción.
func (r *AuditItemRepo) Upsert(ctx context.Context, items []entity.AuditItem) error {
	if len(items) == 0 {
		return nil
	}
	query := `
		INSERT INTO audit_items (sku, location, barcode, name, category, unit_cost, system_quantity,
			physical_quantity, status, last_audited_at, audited_by, notes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (sku, location) DO UPDATE SET barcode = excluded.barcode, name = excluded.name,
			category = excluded.category, unit_cost = excluded.unit_cost,
			system_quantity = excluded.system_quantity, physical_quantity = excluded.physical_quantity,
			status = excluded.status, last_audited_at = excluded.last_audited_at,
			audited_by = excluded.audited_by, notes = excluded.notes, updated_at = excluded.updated_at`
	return r.c.atomic(ctx, func(q dbtx) error {
		for _, it := range items {
			if _, err := q.ExecContext(ctx, query,
				it.SKU, it.Location, it.Barcode, it.Name, it.Category, it.UnitCost.String(), it.SystemQuantity,
				nullInt(it.PhysicalQuantity), string(it.Status), nullTime(it.LastAuditedAt), it.AuditedBy, it.Notes, it.UpdatedAt,
			); err != nil {
				return fmt.Errorf("upsert audit item %s/%s: %w", it.Location, it.SKU, err)
			}
		}
		return nil
	})
}

// SelectAll lee los ítems que cumplen el filtro ordenados por location, sku.
func (r *AuditItemRepo) SelectAll(ctx context.Context, f repository.AuditItemFilter) ([]entity.AuditItem, error) {
	rows, err := r.c.q().QueryContext(ctx, `
		SELECT sku, location, barcode, name, category, unit_cost, system_quantity,
			physical_quantity, status, last_audited_at, audited_by, notes, updated_at
		FROM audit_items
		WHERE (? = '' OR sku = ?) AND (? = '' OR location = ?)
		ORDER BY location, sku`, f.SKU, f.SKU, f.Location, f.Location)
	if err != nil {
		return nil, fmt.Errorf("select audit items: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var list []entity.AuditItem
	for rows.Next() {
		var it entity.AuditItem
		var status string
		var physical sql.NullInt64
		var audited sql.NullTime
		if err := rows.Scan(
			&it.SKU, &it.Location, &it.Barcode, &it.Name, &it.Category, &it.UnitCost, &it.SystemQuantity,
			&physical, &status, &audited, &it.AuditedBy, &it.Notes, &it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit item: %w", err)
		}
		it.Status = entity.AuditStatus(status)
		if physical.Valid {
			it.PhysicalQuantity = entity.IntPtr(int(physical.Int64))
		}
		if audited.Valid {
			t := audited.Time
			it.LastAuditedAt = &t
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// CountByLocation cuenta ítems que referencian la ubicación por nombre.
func (r *AuditItemRepo) CountByLocation(ctx context.Context, location string) (int, error) {
	var n int
	if err := r.c.q().QueryRowContext(ctx, `SELECT count(*) FROM audit_items WHERE location = ?`, location).Scan(&n); err != nil {
		return 0, fmt.Errorf("count audit items: %w", err)
	}
	return n, nil
}

// DeleteAll vacía la tabla de ítems.
func (r *AuditItemRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.c.q().ExecContext(ctx, `DELETE FROM audit_items`); err != nil {
		return fmt.Errorf("delete audit items: %w", err)
	}
	return nil
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return *v
}
