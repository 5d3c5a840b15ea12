// Package storage abre el adaptador de persistencia configurado (PostgreSQL o SQLite)
// y entrega los repositorios ya construidos.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-audit/internal/application/questionnaire"
	"github.com/jhoicas/inventario-audit/internal/domain/repository"
	"github.com/jhoicas/inventario-audit/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-audit/internal/infrastructure/sqlite"
	"github.com/jhoicas/inventario-audit/pkg/config"
	"github.com/jhoicas/inventario-audit/pkg/logger"
)

// Repositories repositorios del driver elegido.
type Repositories struct {
	Driver    string
	Items     repository.AuditItemRepository
	Locations repository.LocationRepository
	Questions repository.QuestionRepository
	Answers   repository.AnswerRepository
	Tx        questionnaire.TxRunner

	close func()
}

// Close libera el pool o la conexión.
func (r *Repositories) Close() {
	if r.close != nil {
		r.close()
	}
}

// Open conecta y migra el esquema del driver configurado.
func Open(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*Repositories, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return &Repositories{
			Driver:    cfg.Driver,
			Items:     postgres.NewAuditItemRepository(pool),
			Locations: postgres.NewLocationRepository(pool),
			Questions: postgres.NewQuestionRepository(pool),
			Answers:   postgres.NewAnswerRepository(pool),
			Tx:        postgres.NewTxRunner(pool),
			close:     pool.Close,
		}, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("SQLite listo")
		return &Repositories{
			Driver:    cfg.Driver,
			Items:     sqlite.NewAuditItemRepository(db),
			Locations: sqlite.NewLocationRepository(db),
			Questions: sqlite.NewQuestionRepository(db),
			Answers:   sqlite.NewAnswerRepository(db),
			Tx:        sqlite.NewTxRunner(db),
			close:     func() { _ = db.Close() },
		}, nil
	default:
		return nil, fmt.Errorf("driver de persistencia no soportado: %q", cfg.Driver)
	}
}
