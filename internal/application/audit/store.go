package audit

import (
	"context"
	"strings"

	"github.com/jhoicas/inventario-audit/internal/domain"
	domainaudit "github.com/jhoicas/inventario-audit/internal/domain/audit"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
	"github.com/jhoicas/inventario-audit/internal/domain/repository"
	"github.com/jhoicas/inventario-audit/pkg/logger"
)

// Store fachada sobre el colaborador de persistencia de ítems de auditoría.
// Normaliza registros por clave compuesta, rechaza filas sin campos descriptivos antes de
// escribir y mantiene el Snapshot sincronizado solo con escrituras confirmadas.
type Store struct {
	repo    repository.AuditItemRepository
	snap    *Snapshot
	metrics Metrics
	log     *logger.Logger
}

// NewStore construye la fachada. metrics y log pueden ser nil.
func NewStore(repo repository.AuditItemRepository, metrics Metrics, log *logger.Logger) *Store {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Store{repo: repo, snap: NewSnapshot(), metrics: metrics, log: log.Component("audit_store")}
}

// Snapshot devuelve el espejo en memoria (solo lectura para los consumidores).
func (s *Store) Snapshot() *Snapshot {
	return s.snap
}

// Load reemplaza el snapshot con el contenido completo de la persistencia.
func (s *Store) Load(ctx context.Context) error {
	items, err := s.repo.SelectAll(ctx, repository.AuditItemFilter{})
	if err != nil {
		s.metrics.PersistenceFailed("select_items")
		return domain.Persistence("cargar ítems", err)
	}
	for i := range items {
		domainaudit.Restamp(&items[i])
	}
	s.snap.replace(items)
	s.log.Info().Int("items", len(items)).Msg("snapshot de auditoría cargado")
	return nil
}

// Upsert persiste el lote por (sku, location) y, solo si la escritura fue exitosa, lo refleja
// en el snapshot. Ante error el snapshot queda en su valor previo.
func (s *Store) Upsert(ctx context.Context, items []entity.AuditItem) error {
	if len(items) == 0 {
		return nil
	}
	normalized := make([]entity.AuditItem, 0, len(items))
	var bad []int
	for i, it := range items {
		it = normalize(it)
		if it.SKU == "" || it.Location == "" || it.Name == "" || it.Category == "" {
			bad = append(bad, i+1)
			continue
		}
		domainaudit.Restamp(&it)
		normalized = append(normalized, it)
	}
	if len(bad) > 0 {
		return domain.NewValidationError("registro sin sku, location, name o category", bad...)
	}
	if err := s.repo.Upsert(ctx, normalized); err != nil {
		s.metrics.PersistenceFailed("upsert_items")
		s.log.Error().Err(err).Int("items", len(normalized)).Msg("upsert de ítems falló")
		return domain.Persistence("guardar ítems", err)
	}
	s.snap.put(normalized...)
	return nil
}

// Fetch relee una clave desde la persistencia y actualiza el snapshot para esa clave.
// Se usa bajo bloqueo antes de un read-modify-write para no incrementar sobre un valor viejo
// cuando otra estación escribió la misma clave.
func (s *Store) Fetch(ctx context.Context, key entity.ItemKey) (entity.AuditItem, bool, error) {
	items, err := s.repo.SelectAll(ctx, repository.AuditItemFilter{SKU: key.SKU, Location: key.Location})
	if err != nil {
		s.metrics.PersistenceFailed("select_items")
		return entity.AuditItem{}, false, domain.Persistence("leer ítem", err)
	}
	for _, it := range items {
		if it.Key() == key {
			domainaudit.Restamp(&it)
			s.snap.put(it)
			return it.Clone(), true, nil
		}
	}
	s.snap.remove(key)
	return entity.AuditItem{}, false, nil
}

// Reset vacía todos los ítems (persistencia y snapshot).
func (s *Store) Reset(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		s.metrics.PersistenceFailed("delete_items")
		return domain.Persistence("reiniciar auditoría", err)
	}
	s.snap.replace(nil)
	return nil
}

// EnsureLocationDeletable verifica que ningún registro referencie la ubicación por nombre,
// primero en el snapshot y luego contra la persistencia al momento del borrado.
func (s *Store) EnsureLocationDeletable(ctx context.Context, name string) error {
	if err := domainaudit.EnsureLocationDeletable(name, s.snap.All()); err != nil {
		return err
	}
	n, err := s.repo.CountByLocation(ctx, name)
	if err != nil {
		s.metrics.PersistenceFailed("count_items")
		return domain.Persistence("contar ítems por ubicación", err)
	}
	if n > 0 {
		return domain.ErrConflict
	}
	return nil
}

func normalize(it entity.AuditItem) entity.AuditItem {
	it.SKU = strings.TrimSpace(it.SKU)
	it.Location = strings.TrimSpace(it.Location)
	it.Name = strings.TrimSpace(it.Name)
	it.Category = strings.TrimSpace(it.Category)
	it.Barcode = strings.TrimSpace(it.Barcode)
	return it
}
