package audit

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-audit/internal/domain"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
)

// Lookup acceso de solo lectura al conjunto conciliado vigente (snapshot en memoria).
type Lookup interface {
	Get(key entity.ItemKey) (entity.AuditItem, bool)
}

// CatalogRow fila tipada del maestro de ítems (identidad y datos descriptivos, sin cantidades).
type CatalogRow struct {
	Line        int // fila de origen (base 1) para reportar errores
	SKU         string
	Location    string
	Barcode     string
	Name        string
	Category    string
	UnitCost    decimal.Decimal
	HasUnitCost bool
}

// StockRow fila tipada de stock de cierre. Name/Category solo son obligatorios si la clave es nueva.
type StockRow struct {
	Line     int
	SKU      string
	Location string
	Quantity int
	Barcode  string
	Name     string
	Category string
}

// MergeCatalog fusiona filas del maestro sobre el conjunto vigente.
// La cantidad de sistema queda en cero: el maestro define identidad, nunca cantidades.
// Si la clave ya existe se conservan conteo físico, notas y fecha de auditoría.
// Filas repetidas dentro del lote: gana la última.
func MergeCatalog(rows []CatalogRow, current Lookup, now time.Time) ([]entity.AuditItem, error) {
	if len(rows) == 0 {
		return nil, domain.NewValidationError("el archivo no contiene filas")
	}
	var bad []int
	for _, r := range rows {
		if blank(r.SKU) || blank(r.Location) || blank(r.Name) || blank(r.Category) {
			bad = append(bad, r.Line)
		}
	}
	if len(bad) > 0 {
		return nil, domain.NewValidationError("sku, location, name y category son obligatorios", bad...)
	}

	acc := newBatch(current)
	for _, r := range rows {
		key := entity.ItemKey{SKU: strings.TrimSpace(r.SKU), Location: strings.TrimSpace(r.Location)}
		item, found := acc.get(key)
		if !found {
			item = entity.AuditItem{SKU: key.SKU, Location: key.Location}
		}
		item.Name = strings.TrimSpace(r.Name)
		item.Category = strings.TrimSpace(r.Category)
		if !blank(r.Barcode) {
			item.Barcode = strings.TrimSpace(r.Barcode)
		}
		if r.HasUnitCost {
			item.UnitCost = r.UnitCost
		}
		item.SystemQuantity = 0
		Restamp(&item)
		acc.put(item)
	}
	return acc.result(now), nil
}

// MergeClosingStock aplica cantidades de sistema de un stock de cierre.
// Clave existente: solo se sobrescribe SystemQuantity, los campos descriptivos se preservan.
// Clave nueva: la fila debe traer name y category; si falta alguno se rechaza el lote completo.
func MergeClosingStock(rows []StockRow, current Lookup, now time.Time) ([]entity.AuditItem, error) {
	if len(rows) == 0 {
		return nil, domain.NewValidationError("el archivo no contiene filas")
	}
	var badKey, badQty, missingDesc []int
	acc := newBatch(current)
	for _, r := range rows {
		if blank(r.SKU) || blank(r.Location) {
			badKey = append(badKey, r.Line)
			continue
		}
		if r.Quantity < 0 {
			badQty = append(badQty, r.Line)
			continue
		}
		key := entity.ItemKey{SKU: strings.TrimSpace(r.SKU), Location: strings.TrimSpace(r.Location)}
		item, found := acc.get(key)
		if !found {
			if blank(r.Name) || blank(r.Category) {
				missingDesc = append(missingDesc, r.Line)
				continue
			}
			item = entity.AuditItem{
				SKU:      key.SKU,
				Location: key.Location,
				Barcode:  strings.TrimSpace(r.Barcode),
				Name:     strings.TrimSpace(r.Name),
				Category: strings.TrimSpace(r.Category),
			}
		}
		item.SystemQuantity = r.Quantity
		Restamp(&item)
		acc.put(item)
	}
	switch {
	case len(badKey) > 0:
		return nil, domain.NewValidationError("sku y location son obligatorios", badKey...)
	case len(badQty) > 0:
		return nil, domain.NewValidationError("la cantidad no puede ser negativa", badQty...)
	case len(missingDesc) > 0:
		return nil, domain.NewValidationError("ítem nuevo sin name o category", missingDesc...)
	}
	return acc.result(now), nil
}

// batch acumula los registros fusionados de un lote preservando el orden de primera aparición.
type batch struct {
	current Lookup
	order   []entity.ItemKey
	items   map[entity.ItemKey]entity.AuditItem
}

func newBatch(current Lookup) *batch {
	return &batch{current: current, items: make(map[entity.ItemKey]entity.AuditItem)}
}

func (b *batch) get(key entity.ItemKey) (entity.AuditItem, bool) {
	if it, ok := b.items[key]; ok {
		return it, true
	}
	if b.current == nil {
		return entity.AuditItem{}, false
	}
	it, ok := b.current.Get(key)
	if !ok {
		return entity.AuditItem{}, false
	}
	return it.Clone(), true
}

func (b *batch) put(item entity.AuditItem) {
	key := item.Key()
	if _, seen := b.items[key]; !seen {
		b.order = append(b.order, key)
	}
	b.items[key] = item
}

// result devuelve los registros del lote. UpdatedAt solo avanza cuando el contenido cambia,
// de modo que reaplicar el mismo lote produce registros idénticos.
func (b *batch) result(now time.Time) []entity.AuditItem {
	out := make([]entity.AuditItem, 0, len(b.order))
	for _, key := range b.order {
		item := b.items[key]
		var prev entity.AuditItem
		var existed bool
		if b.current != nil {
			prev, existed = b.current.Get(key)
		}
		if !existed || !SameContent(prev, item) {
			item.UpdatedAt = now
		} else {
			item.UpdatedAt = prev.UpdatedAt
		}
		out = append(out, item)
	}
	return out
}

// SameContent compara dos registros ignorando UpdatedAt.
func SameContent(a, b entity.AuditItem) bool {
	if a.SKU != b.SKU || a.Location != b.Location || a.Barcode != b.Barcode ||
		a.Name != b.Name || a.Category != b.Category || !a.UnitCost.Equal(b.UnitCost) ||
		a.SystemQuantity != b.SystemQuantity || a.Status != b.Status ||
		a.Notes != b.Notes || a.AuditedBy != b.AuditedBy {
		return false
	}
	if (a.PhysicalQuantity == nil) != (b.PhysicalQuantity == nil) {
		return false
	}
	if a.PhysicalQuantity != nil && *a.PhysicalQuantity != *b.PhysicalQuantity {
		return false
	}
	if (a.LastAuditedAt == nil) != (b.LastAuditedAt == nil) {
		return false
	}
	return a.LastAuditedAt == nil || a.LastAuditedAt.Equal(*b.LastAuditedAt)
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
