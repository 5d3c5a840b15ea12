// Package audit contiene las reglas puras del motor de conciliación de inventario:
// derivación de estado, fusión de catálogo y stock de cierre, agregación de resúmenes
// y filtro de visibilidad por ubicación. No depende de persistencia ni de transporte.
package audit

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-audit/internal/domain/entity"
)

// DeriveStatus es la única regla de estado del sistema.
//
//	physical == nil            → pending
//	*physical == system        → matched
//	*physical != system        → discrepancy
//
// El signo de la diferencia no se codifica en el estado; ver Variance.
func DeriveStatus(system int, physical *int) entity.AuditStatus {
	if physical == nil {
		return entity.StatusPending
	}
	if *physical == system {
		return entity.StatusMatched
	}
	return entity.StatusDiscrepancy
}

// Variance devuelve physical - system. ok es false si no hay conteo físico.
func Variance(system int, physical *int) (variance int, ok bool) {
	if physical == nil {
		return 0, false
	}
	return *physical - system, true
}

// VarianceValue valoriza la diferencia al costo unitario del ítem (cero si no hay conteo).
func VarianceValue(item entity.AuditItem) decimal.Decimal {
	v, ok := Variance(item.SystemQuantity, item.PhysicalQuantity)
	if !ok {
		return decimal.Zero
	}
	return item.UnitCost.Mul(decimal.NewFromInt(int64(v)))
}

// Restamp recalcula el estado del ítem a partir de sus cantidades. Todo camino de escritura pasa por aquí.
func Restamp(item *entity.AuditItem) {
	item.Status = DeriveStatus(item.SystemQuantity, item.PhysicalQuantity)
}
