package audit

import (
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/inventario-audit/internal/domain/entity"
)

// Snapshot espejo en memoria del conjunto conciliado, indexado por (SKU, ubicación).
// Es propiedad del llamador (Store) y se refresca tras cada escritura exitosa; nunca se
// persiste entre reinicios. Las lecturas son seguras en concurrencia y devuelven copias.
type Snapshot struct {
	mu    sync.RWMutex
	items map[entity.ItemKey]entity.AuditItem
}

// NewSnapshot construye un snapshot vacío.
func NewSnapshot() *Snapshot {
	return &Snapshot{items: make(map[entity.ItemKey]entity.AuditItem)}
}

// Get implementa domain/audit.Lookup.
func (s *Snapshot) Get(key entity.ItemKey) (entity.AuditItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[key]
	if !ok {
		return entity.AuditItem{}, false
	}
	return it.Clone(), true
}

// Len número de registros.
func (s *Snapshot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// All devuelve todos los registros ordenados por ubicación y SKU.
func (s *Snapshot) All() []entity.AuditItem {
	s.mu.RLock()
	out := make([]entity.AuditItem, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it.Clone())
	}
	s.mu.RUnlock()
	sortItems(out)
	return out
}

// FindByCode busca registros cuyo SKU o código de barras coincide con code (sin distinguir mayúsculas).
// Un mismo SKU puede existir en varias ubicaciones; el resultado va ordenado por ubicación.
func (s *Snapshot) FindByCode(code string) []entity.AuditItem {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}
	s.mu.RLock()
	var out []entity.AuditItem
	for _, it := range s.items {
		if strings.EqualFold(it.SKU, code) || (it.Barcode != "" && strings.EqualFold(it.Barcode, code)) {
			out = append(out, it.Clone())
		}
	}
	s.mu.RUnlock()
	sortItems(out)
	return out
}

func (s *Snapshot) put(items ...entity.AuditItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		s.items[it.Key()] = it.Clone()
	}
}

func (s *Snapshot) remove(key entity.ItemKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

func (s *Snapshot) replace(items []entity.AuditItem) {
	next := make(map[entity.ItemKey]entity.AuditItem, len(items))
	for _, it := range items {
		next[it.Key()] = it.Clone()
	}
	s.mu.Lock()
	s.items = next
	s.mu.Unlock()
}

func sortItems(items []entity.AuditItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Location != items[j].Location {
			return items[i].Location < items[j].Location
		}
		return items[i].SKU < items[j].SKU
	})
}
