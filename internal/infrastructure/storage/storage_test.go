package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-audit/internal/domain/repository"
	"github.com/jhoicas/inventario-audit/pkg/config"
	"github.com/jhoicas/inventario-audit/pkg/logger"
)

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "audit.db")
	repos, err := Open(context.Background(), config.DBConfig{Driver: config.DriverSQLite, SQLitePath: path}, logger.Nop())
	require.NoError(t, err)
	defer repos.Close()

	assert.Equal(t, config.DriverSQLite, repos.Driver)
	items, err := repos.Items.SelectAll(context.Background(), repository.AuditItemFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestOpen_DriverDesconocido(t *testing.T) {
	_, err := Open(context.Background(), config.DBConfig{Driver: "mongo"}, logger.Nop())
	assert.Error(t, err)
}
