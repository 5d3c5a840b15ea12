package audit

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-audit/internal/domain/entity"
)

// Summary estadísticas de avance de auditoría sobre un conjunto de registros.
type Summary struct {
	TotalItems    int
	AuditedCount  int
	PendingItems  int
	Matched       int
	Discrepancy   int
	CompletionPct int
	NetVariance   int             // suma de (físico - sistema) de los auditados
	VarianceValue decimal.Decimal // NetVariance valorizado al costo unitario
	ShortageUnits int             // unidades faltantes (varianzas negativas, en valor absoluto)
	OverageUnits  int             // unidades sobrantes
}

// LocationBreakdown resumen de una ubicación.
type LocationBreakdown struct {
	Location string
	Summary  Summary
}

// GlobalSummary calcula el resumen sobre todos los registros. Se recalcula en cada llamada.
// AuditedCount cuenta pares (SKU, ubicación) distintos con conteo físico.
func GlobalSummary(items []entity.AuditItem) Summary {
	return summarize(items, func(entity.AuditItem) bool { return true })
}

// LocationSummary calcula el resumen restringido a la ubicación indicada (por nombre).
func LocationSummary(items []entity.AuditItem, location string) Summary {
	return summarize(items, func(it entity.AuditItem) bool { return it.Location == location })
}

// SummaryByLocation devuelve un resumen por cada ubicación presente en items, ordenado por nombre.
func SummaryByLocation(items []entity.AuditItem) []LocationBreakdown {
	names := make(map[string]struct{})
	for _, it := range items {
		names[it.Location] = struct{}{}
	}
	out := make([]LocationBreakdown, 0, len(names))
	for name := range names {
		out = append(out, LocationBreakdown{Location: name, Summary: LocationSummary(items, name)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location < out[j].Location })
	return out
}

// CompletionPercentage round(audited/total*100); 0 si total es 0.
func CompletionPercentage(audited, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(audited) / float64(total) * 100))
}

func summarize(items []entity.AuditItem, keep func(entity.AuditItem) bool) Summary {
	var s Summary
	s.VarianceValue = decimal.Zero
	audited := make(map[entity.ItemKey]struct{})
	for _, it := range items {
		if !keep(it) {
			continue
		}
		s.TotalItems++
		if it.PhysicalQuantity == nil {
			continue
		}
		key := it.Key()
		if _, dup := audited[key]; dup {
			continue
		}
		audited[key] = struct{}{}
		switch DeriveStatus(it.SystemQuantity, it.PhysicalQuantity) {
		case entity.StatusMatched:
			s.Matched++
		case entity.StatusDiscrepancy:
			s.Discrepancy++
		}
		v, _ := Variance(it.SystemQuantity, it.PhysicalQuantity)
		s.NetVariance += v
		if v < 0 {
			s.ShortageUnits += -v
		} else {
			s.OverageUnits += v
		}
		s.VarianceValue = s.VarianceValue.Add(VarianceValue(it))
	}
	s.AuditedCount = len(audited)
	s.PendingItems = s.TotalItems - s.AuditedCount
	s.CompletionPct = CompletionPercentage(s.AuditedCount, s.TotalItems)
	return s
}
