// import carga un archivo de maestro o de existencias de cierre (CSV/XLSX) en la base configurada,
// sin pasar por la API. Útil para la carga inicial de una auditoría.
//
// Uso:
//
//	go run ./cmd/import -kind catalog maestro.csv
//	go run ./cmd/import -kind closing_stock -charset windows-1252 cierre.csv
//	go run ./cmd/import -reset
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/inventario-audit/internal/application/audit"
	"github.com/jhoicas/inventario-audit/internal/application/dto"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
	"github.com/jhoicas/inventario-audit/internal/infrastructure/storage"
	"github.com/jhoicas/inventario-audit/internal/infrastructure/tabular"
	"github.com/jhoicas/inventario-audit/pkg/config"
	"github.com/jhoicas/inventario-audit/pkg/logger"
)

func main() {
	kind := flag.String("kind", audit.ImportCatalog, "catalog | closing_stock")
	charset := flag.String("charset", "", "codificación del CSV (por defecto IMPORT_CHARSET)")
	sheet := flag.String("sheet", "", "hoja XLSX (por defecto la primera)")
	reset := flag.Bool("reset", false, "borra todos los registros de auditoría antes de importar")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	if *charset == "" {
		*charset = cfg.Import.Charset
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if err := run(context.Background(), cfg, log, *kind, *charset, *sheet, *reset, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Importación: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, kind, charset, sheet string, reset bool, args []string) error {
	if len(args) == 0 && !reset {
		return fmt.Errorf("falta la ruta del archivo")
	}
	repos, err := storage.Open(ctx, cfg.DB, log)
	if err != nil {
		return err
	}
	defer repos.Close()

	store := audit.NewStore(repos.Items, nil, log)
	if err := store.Load(ctx); err != nil {
		return err
	}
	uc := audit.NewImportUseCase(store, cfg.Import.MaxRows, nil, log)

	if reset {
		// la CLI corre con credenciales de operador
		if err := uc.Reset(ctx, entity.Principal{UserID: "cli", Role: entity.RoleAdmin}); err != nil {
			return err
		}
		fmt.Println("Registros de auditoría eliminados")
	}
	if len(args) == 0 {
		return nil
	}

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("abrir %s: %w", path, err)
	}
	defer f.Close()

	table, err := tabular.Read(filepath.Base(path), f, tabular.Options{Charset: charset, Sheet: sheet})
	if err != nil {
		return err
	}

	var out *dto.ImportResultResponse
	switch kind {
	case audit.ImportCatalog:
		out, err = uc.ImportCatalog(ctx, table)
	case audit.ImportClosingStock:
		out, err = uc.ImportClosingStock(ctx, table)
	default:
		return fmt.Errorf("tipo de importación desconocido: %q", kind)
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d filas leídas, %d creadas, %d actualizadas, %d sin cambios\n",
		out.Kind, out.RowsRead, out.Created, out.Updated, out.Unchanged)
	return nil
}
