package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-audit/internal/domain/entity"
	"github.com/jhoicas/inventario-audit/internal/domain/repository"
)

var _ repository.AuditItemRepository = (*AuditItemRepo)(nil)

// AuditItemRepo implementación de AuditItemRepository sobre PostgreSQL (usable con pool o tx).
type AuditItemRepo struct {
	q Querier
}

// NewAuditItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditItemRepository(q Querier) *AuditItemRepo {
	return &AuditItemRepo{q: q}
}

const upsertAuditItem = `
	INSERT INTO audit_items (sku, location, barcode, name, category, unit_cost, system_quantity,
		physical_quantity, status, last_audited_at, audited_by, notes, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (sku, location)
	DO UPDATE SET barcode = EXCLUDED.barcode, name = EXCLUDED.name, category = EXCLUDED.category,
		unit_cost = EXCLUDED.unit_cost, system_quantity = EXCLUDED.system_quantity,
		physical_quantity = EXCLUDED.physical_quantity, status = EXCLUDED.status,
		last_audited_at = EXCLUDED.last_audited_at, audited_by = EXCLUDED.audited_by,
		notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at`

// Upsert inserta o reemplaza el lote en una sola transacción (todo o nada).
func (r *AuditItemRepo) Upsert(ctx context.Context, items []entity.AuditItem) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upsert audit items: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(upsertAuditItem,
			it.SKU, it.Location, it.Barcode, it.Name, it.Category, it.UnitCost, it.SystemQuantity,
			it.PhysicalQuantity, string(it.Status), it.LastAuditedAt, it.AuditedBy, it.Notes, it.UpdatedAt,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for i := range items {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("upsert audit item %s/%s: %w", items[i].Location, items[i].SKU, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit upsert audit items: %w", err)
	}
	return nil
}

// SelectAll lee los ítems que cumplen el filtro ordenados por location, sku.
func (r *AuditItemRepo) SelectAll(ctx context.Context, f repository.AuditItemFilter) ([]entity.AuditItem, error) {
	query := `
		SELECT sku, location, barcode, name, category, unit_cost, system_quantity,
			physical_quantity, status, last_audited_at, audited_by, notes, updated_at
		FROM audit_items
		WHERE ($1::text = '' OR sku = $1) AND ($2::text = '' OR location = $2)
		ORDER BY location, sku`
	rows, err := r.q.Query(ctx, query, f.SKU, f.Location)
	if err != nil {
		return nil, fmt.Errorf("select audit items: %w", err)
	}
	defer rows.Close()
	var list []entity.AuditItem
	for rows.Next() {
		var it entity.AuditItem
		var status string
		if err := rows.Scan(
			&it.SKU, &it.Location, &it.Barcode, &it.Name, &it.Category, &it.UnitCost, &it.SystemQuantity,
			&it.PhysicalQuantity, &status, &it.LastAuditedAt, &it.AuditedBy, &it.Notes, &it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit item: %w", err)
		}
		it.Status = entity.AuditStatus(status)
		list = append(list, it)
	}
	return list, rows.Err()
}

// CountByLocation cuenta ítems que referencian la ubicación por nombre.
func (r *AuditItemRepo) CountByLocation(ctx context.Context, location string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM audit_items WHERE location = $1`, location).Scan(&n); err != nil {
		return 0, fmt.Errorf("count audit items: %w", err)
	}
	return n, nil
}

// DeleteAll vacía la tabla de ítems.
func (r *AuditItemRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM audit_items`); err != nil {
		return fmt.Errorf("delete audit items: %w", err)
	}
	return nil
}
