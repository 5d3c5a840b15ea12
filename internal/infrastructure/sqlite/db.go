// Package sqlite adaptador de persistencia embebido (modernc.org/sqlite, sin cgo) para
// auditorías offline en una sola estación y para pruebas de integración.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id          TEXT PRIMARY KEY,
		company_id  TEXT NOT NULL DEFAULT '',
		name        TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		active      INTEGER NOT NULL DEFAULT 1,
		created_at  DATETIME NOT NULL,
		updated_at  DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS audit_items (
		sku               TEXT NOT NULL,
		location          TEXT NOT NULL,
		barcode           TEXT NOT NULL DEFAULT '',
		name              TEXT NOT NULL CHECK (name <> ''),
		category          TEXT NOT NULL CHECK (category <> ''),
		unit_cost         TEXT NOT NULL DEFAULT '0',
		system_quantity   INTEGER NOT NULL DEFAULT 0 CHECK (system_quantity >= 0),
		physical_quantity INTEGER CHECK (physical_quantity >= 0),
		status            TEXT NOT NULL,
		last_audited_at   DATETIME,
		audited_by        TEXT NOT NULL DEFAULT '',
		notes             TEXT NOT NULL DEFAULT '',
		updated_at        DATETIME NOT NULL,
		PRIMARY KEY (sku, location)
	)`,
	`CREATE TABLE IF NOT EXISTS questions (
		id         TEXT PRIMARY KEY,
		text       TEXT NOT NULL,
		type       TEXT NOT NULL,
		required   INTEGER NOT NULL DEFAULT 0,
		options    TEXT NOT NULL DEFAULT '[]',
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS questionnaire_answers (
		question_id TEXT NOT NULL REFERENCES questions (id),
		location_id TEXT NOT NULL,
		text        TEXT NOT NULL DEFAULT '',
		option_ids  TEXT NOT NULL DEFAULT '[]',
		answered_by TEXT NOT NULL DEFAULT '',
		answered_on DATETIME NOT NULL,
		PRIMARY KEY (question_id, location_id)
	)`,
}

// Open abre (o crea) la base en path y aplica el esquema.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		path = "audit.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// un solo escritor; evita SQLITE_BUSY entre conexiones del mismo proceso
	db.SetMaxOpenConns(1)
	for i, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return db, nil
}

// dbtx operaciones comunes a *sql.DB y *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn apunta a la base o a una transacción en curso.
type conn struct {
	db *sql.DB
	tx *sql.Tx
}

func (c conn) q() dbtx {
	if c.tx != nil {
		return c.tx
	}
	return c.db
}

// atomic ejecuta fn en una transacción; si ya hay una en curso la reutiliza.
func (c conn) atomic(ctx context.Context, fn func(dbtx) error) (retErr error) {
	if c.tx != nil {
		return fn(c.tx)
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func isConstraint(err error, codes ...int) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	for _, c := range codes {
		if se.Code() == c {
			return true
		}
	}
	return false
}

func isUniqueViolation(err error) bool {
	return isConstraint(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY)
}

func isForeignKeyViolation(err error) bool {
	return isConstraint(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY)
}
