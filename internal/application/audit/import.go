package audit

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-audit/internal/application/dto"
	"github.com/jhoicas/inventario-audit/internal/domain"
	domainaudit "github.com/jhoicas/inventario-audit/internal/domain/audit"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
	"github.com/jhoicas/inventario-audit/pkg/logger"
)

// Tipos de importación.
const (
	ImportCatalog      = "catalog"
	ImportClosingStock = "closing_stock"
)

// ImportUseCase importación masiva: valida, fusiona (domain/audit) y persiste vía Store.
// Cualquier error de validación rechaza el lote completo antes de escribir.
type ImportUseCase struct {
	store   *Store
	maxRows int
	metrics Metrics
	log     *logger.Logger
	now     func() time.Time
}

// NewImportUseCase construye el caso de uso. maxRows <= 0 desactiva el límite.
func NewImportUseCase(store *Store, maxRows int, metrics Metrics, log *logger.Logger) *ImportUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ImportUseCase{store: store, maxRows: maxRows, metrics: metrics, log: log.Component("audit_import"), now: time.Now}
}

// ImportCatalog importa el maestro de ítems (identidad y descripción; cantidad de sistema en 0).
func (uc *ImportUseCase) ImportCatalog(ctx context.Context, table dto.ImportTable) (*dto.ImportResultResponse, error) {
	if err := uc.checkSize(table); err != nil {
		return nil, err
	}
	rows, err := ToCatalogRows(table)
	if err != nil {
		return nil, err
	}
	merged, err := domainaudit.MergeCatalog(rows, uc.store.Snapshot(), uc.now())
	if err != nil {
		return nil, err
	}
	return uc.persist(ctx, ImportCatalog, len(table.Rows), merged)
}

// ImportClosingStock importa cantidades de sistema preservando los campos descriptivos existentes.
func (uc *ImportUseCase) ImportClosingStock(ctx context.Context, table dto.ImportTable) (*dto.ImportResultResponse, error) {
	if err := uc.checkSize(table); err != nil {
		return nil, err
	}
	rows, err := ToStockRows(table)
	if err != nil {
		return nil, err
	}
	merged, err := domainaudit.MergeClosingStock(rows, uc.store.Snapshot(), uc.now())
	if err != nil {
		return nil, err
	}
	return uc.persist(ctx, ImportClosingStock, len(table.Rows), merged)
}

// Reset borra todos los registros de auditoría. Solo admin.
func (uc *ImportUseCase) Reset(ctx context.Context, principal entity.Principal) error {
	if !principal.IsAdmin() {
		return domain.ErrAccessDenied
	}
	if err := uc.store.Reset(ctx); err != nil {
		return err
	}
	uc.log.Warn().Str("user_id", principal.UserID).Msg("auditoría reiniciada")
	return nil
}

func (uc *ImportUseCase) checkSize(table dto.ImportTable) error {
	if len(table.Rows) == 0 {
		return domain.NewValidationError("el archivo no contiene filas")
	}
	if uc.maxRows > 0 && len(table.Rows) > uc.maxRows {
		return domain.NewValidationError("el archivo supera el máximo de filas permitido")
	}
	return nil
}

func (uc *ImportUseCase) persist(ctx context.Context, kind string, read int, merged []entity.AuditItem) (*dto.ImportResultResponse, error) {
	res := &dto.ImportResultResponse{Kind: kind, RowsRead: read}
	changed := make([]entity.AuditItem, 0, len(merged))
	snap := uc.store.Snapshot()
	for _, it := range merged {
		prev, found := snap.Get(it.Key())
		switch {
		case !found:
			res.Created++
		case domainaudit.SameContent(prev, it):
			res.Unchanged++
			continue
		default:
			res.Updated++
		}
		changed = append(changed, it)
	}
	if err := uc.store.Upsert(ctx, changed); err != nil {
		return nil, err
	}
	res.Upserted = len(changed)
	uc.metrics.ImportCompleted(kind, read)
	uc.log.Info().
		Str("kind", kind).
		Int("rows", read).
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("unchanged", res.Unchanged).
		Msg("importación aplicada")
	return res, nil
}
