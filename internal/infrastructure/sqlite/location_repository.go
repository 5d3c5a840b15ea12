package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/inventario-audit/internal/domain"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
	"github.com/jhoicas/inventario-audit/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo ubicaciones sobre SQLite.
type LocationRepo struct {
	c conn
}

// NewLocationRepository construye el adaptador.
func NewLocationRepository(db *sql.DB) *LocationRepo {
	return &LocationRepo{c: conn{db: db}}
}

const locationColumns = `id, company_id, name, description, active, created_at, updated_at`

// Create persiste una ubicación. Nombre repetido devuelve domain.ErrDuplicate.
func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	_, err := r.c.q().ExecContext(ctx, `INSERT INTO locations (`+locationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.CompanyID, l.Name, l.Description, l.Active, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert location %q: %w", l.Name, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

// GetByID (nil, nil) si no existe.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	return r.getOne(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = ?`, id)
}

// GetByName (nil, nil) si no existe.
func (r *LocationRepo) GetByName(ctx context.Context, name string) (*entity.Location, error) {
	return r.getOne(ctx, `SELECT `+locationColumns+` FROM locations WHERE name = ?`, name)
}

func (r *LocationRepo) getOne(ctx context.Context, query, arg string) (*entity.Location, error) {
	var l entity.Location
	err := r.c.q().QueryRowContext(ctx, query, arg).Scan(&l.ID, &l.CompanyID, &l.Name, &l.Description, &l.Active, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &l, nil
}

// Update actualiza nombre, descripción y estado.
func (r *LocationRepo) Update(ctx context.Context, l *entity.Location) error {
	res, err := r.c.q().ExecContext(ctx, `UPDATE locations SET name = ?, description = ?, active = ?, updated_at = ? WHERE id = ?`,
		l.Name, l.Description, l.Active, l.UpdatedAt, l.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update location %q: %w", l.Name, domain.ErrDuplicate)
		}
		return fmt.Errorf("update location: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List todas las ubicaciones por nombre.
func (r *LocationRepo) List(ctx context.Context) ([]*entity.Location, error) {
	rows, err := r.c.q().QueryContext(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var list []*entity.Location
	for rows.Next() {
		var l entity.Location
		if err := rows.Scan(&l.ID, &l.CompanyID, &l.Name, &l.Description, &l.Active, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// Delete elimina una ubicación por ID.
func (r *LocationRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.c.q().ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	return nil
}
