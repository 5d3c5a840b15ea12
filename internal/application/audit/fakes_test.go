package audit_test

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/inventario-audit/internal/domain/entity"
	"github.com/jhoicas/inventario-audit/internal/domain/repository"
)

// memItems AuditItemRepository en memoria con inyección de fallos.
type memItems struct {
	mu         sync.Mutex
	rows       map[entity.ItemKey]entity.AuditItem
	upsertErr  error
	selectErr  error
	upsertCall int
}

func newMemItems(items ...entity.AuditItem) *memItems {
	m := &memItems{rows: make(map[entity.ItemKey]entity.AuditItem)}
	for _, it := range items {
		m.rows[it.Key()] = it.Clone()
	}
	return m
}

func (m *memItems) Upsert(_ context.Context, items []entity.AuditItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertCall++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for _, it := range items {
		m.rows[it.Key()] = it.Clone()
	}
	return nil
}

func (m *memItems) SelectAll(_ context.Context, f repository.AuditItemFilter) ([]entity.AuditItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selectErr != nil {
		return nil, m.selectErr
	}
	var out []entity.AuditItem
	for _, it := range m.rows {
		if f.SKU != "" && it.SKU != f.SKU {
			continue
		}
		if f.Location != "" && it.Location != f.Location {
			continue
		}
		out = append(out, it.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Location != out[j].Location {
			return out[i].Location < out[j].Location
		}
		return out[i].SKU < out[j].SKU
	})
	return out, nil
}

func (m *memItems) CountByLocation(_ context.Context, location string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, it := range m.rows {
		if it.Location == location {
			n++
		}
	}
	return n, nil
}

func (m *memItems) DeleteAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = make(map[entity.ItemKey]entity.AuditItem)
	return nil
}

func (m *memItems) physical(key entity.ItemKey) *int {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.rows[key]
	if !ok {
		return nil
	}
	return it.Clone().PhysicalQuantity
}

// memLocations LocationRepository en memoria.
type memLocations struct {
	mu   sync.Mutex
	byID map[string]*entity.Location
}

func newMemLocations(locs ...entity.Location) *memLocations {
	m := &memLocations{byID: make(map[string]*entity.Location)}
	for i := range locs {
		l := locs[i]
		m.byID[l.ID] = &l
	}
	return m
}

func (m *memLocations) Create(_ context.Context, loc *entity.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *loc
	m.byID[loc.ID] = &c
	return nil
}

func (m *memLocations) GetByID(_ context.Context, id string) (*entity.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	c := *l
	return &c, nil
}

func (m *memLocations) GetByName(_ context.Context, name string) (*entity.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.byID {
		if l.Name == name {
			c := *l
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memLocations) Update(_ context.Context, loc *entity.Location) error {
	return m.Create(context.Background(), loc)
}

func (m *memLocations) List(context.Context) ([]*entity.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.Location, 0, len(m.byID))
	for _, l := range m.byID {
		c := *l
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memLocations) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

// Fixtures comunes: dos ubicaciones y un ítem A1 en L1 con sistema 2.
var (
	locL1 = entity.Location{ID: "loc-1", Name: "L1", Active: true}
	locL2 = entity.Location{ID: "loc-2", Name: "L2", Active: true}

	admin   = entity.Principal{UserID: "u-admin", Role: entity.RoleAdmin}
	auditor = entity.Principal{UserID: "u-aud", Role: entity.RoleAuditor, LocationIDs: []string{"loc-1"}}
)

func item(sku, location string, system int, physical *int) entity.AuditItem {
	return entity.AuditItem{
		SKU: sku, Location: location, Name: "Item " + sku, Category: "General",
		SystemQuantity: system, PhysicalQuantity: physical,
	}
}
