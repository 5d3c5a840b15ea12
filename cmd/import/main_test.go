package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-audit/internal/domain/repository"
	"github.com/jhoicas/inventario-audit/internal/infrastructure/storage"
	"github.com/jhoicas/inventario-audit/pkg/config"
	"github.com/jhoicas/inventario-audit/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DB:     config.DBConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "cli.db")},
		Import: config.ImportConfig{MaxRows: 100},
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestRun_CatalogoYCierre(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	catalog := writeFile(t, "maestro.csv", "sku,location,name,category\nA1,L1,Tornillo,Ferretería\nB2,L1,Tuerca,Ferretería\n")
	stock := writeFile(t, "cierre.csv", "sku,location,quantity\nA1,L1,9\n")

	require.NoError(t, run(ctx, cfg, logger.Nop(), "catalog", "", "", false, []string{catalog}))
	require.NoError(t, run(ctx, cfg, logger.Nop(), "closing_stock", "", "", false, []string{stock}))

	repos, err := storage.Open(ctx, cfg.DB, logger.Nop())
	require.NoError(t, err)
	defer repos.Close()
	items, err := repos.Items.SelectAll(ctx, repository.AuditItemFilter{SKU: "A1"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 9, items[0].SystemQuantity)
}

func TestRun_Reset(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	catalog := writeFile(t, "maestro.csv", "sku,location,name,category\nA1,L1,Tornillo,Ferretería\n")
	require.NoError(t, run(ctx, cfg, logger.Nop(), "catalog", "", "", false, []string{catalog}))
	require.NoError(t, run(ctx, cfg, logger.Nop(), "catalog", "", "", true, nil))

	repos, err := storage.Open(ctx, cfg.DB, logger.Nop())
	require.NoError(t, err)
	defer repos.Close()
	items, err := repos.Items.SelectAll(ctx, repository.AuditItemFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRun_Errores(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	assert.Error(t, run(ctx, cfg, logger.Nop(), "catalog", "", "", false, nil))
	assert.Error(t, run(ctx, cfg, logger.Nop(), "catalog", "", "", false, []string{"/no/existe.csv"}))

	f := writeFile(t, "x.csv", "sku,location,quantity\nA1,L1,1\n")
	assert.Error(t, run(ctx, cfg, logger.Nop(), "otro", "", "", false, []string{f}))
}
