package entity

import "time"

// Location ubicación física donde se audita inventario (bodega, sala, estante).
// Los ítems de auditoría la referencian por Name, no por ID.
type Location struct {
	ID          string
	CompanyID   string // opcional
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
