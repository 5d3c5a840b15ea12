package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditStatus estado derivado de la conciliación de un ítem. Nunca se asigna a mano:
// se obtiene siempre con audit.DeriveStatus.
type AuditStatus string

const (
	StatusPending     AuditStatus = "pending"
	StatusMatched     AuditStatus = "matched"
	StatusDiscrepancy AuditStatus = "discrepancy"
)

// Valid indica si s es uno de los estados conocidos.
func (s AuditStatus) Valid() bool {
	switch s {
	case StatusPending, StatusMatched, StatusDiscrepancy:
		return true
	}
	return false
}

// ItemKey clave natural compuesta (SKU, ubicación) de un ítem de auditoría.
type ItemKey struct {
	SKU      string
	Location string
}

// AuditItem registro conciliado: cantidad esperada (sistema) y contada (física) por SKU y ubicación.
type AuditItem struct {
	SKU              string
	Location         string // nombre de la ubicación (no ID)
	Barcode          string // código de identidad alterno al SKU
	Name             string
	Category         string
	UnitCost         decimal.Decimal
	SystemQuantity   int
	PhysicalQuantity *int // nil mientras no exista conteo
	Status           AuditStatus
	LastAuditedAt    *time.Time
	AuditedBy        string
	Notes            string
	UpdatedAt        time.Time
}

// Key devuelve la clave compuesta del ítem.
func (i AuditItem) Key() ItemKey {
	return ItemKey{SKU: i.SKU, Location: i.Location}
}

// Counted indica si el ítem ya tiene cantidad física.
func (i AuditItem) Counted() bool {
	return i.PhysicalQuantity != nil
}

// Clone devuelve una copia sin punteros compartidos.
func (i AuditItem) Clone() AuditItem {
	c := i
	if i.PhysicalQuantity != nil {
		q := *i.PhysicalQuantity
		c.PhysicalQuantity = &q
	}
	if i.LastAuditedAt != nil {
		t := *i.LastAuditedAt
		c.LastAuditedAt = &t
	}
	return c
}

// IntPtr helper para cantidades opcionales.
func IntPtr(v int) *int { return &v }
