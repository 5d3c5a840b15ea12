package audit

import (
	"github.com/jhoicas/inventario-audit/internal/application/dto"
	domainaudit "github.com/jhoicas/inventario-audit/internal/domain/audit"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
)

// ToAuditItemResponse mapea un registro conciliado a su DTO de salida.
func ToAuditItemResponse(it entity.AuditItem) *dto.AuditItemResponse {
	out := &dto.AuditItemResponse{
		SKU:              it.SKU,
		Location:         it.Location,
		Barcode:          it.Barcode,
		Name:             it.Name,
		Category:         it.Category,
		UnitCost:         it.UnitCost,
		SystemQuantity:   it.SystemQuantity,
		PhysicalQuantity: it.PhysicalQuantity,
		Status:           string(domainaudit.DeriveStatus(it.SystemQuantity, it.PhysicalQuantity)),
		VarianceValue:    domainaudit.VarianceValue(it),
		LastAuditedAt:    it.LastAuditedAt,
		AuditedBy:        it.AuditedBy,
		Notes:            it.Notes,
		UpdatedAt:        it.UpdatedAt,
	}
	if v, ok := domainaudit.Variance(it.SystemQuantity, it.PhysicalQuantity); ok {
		out.Variance = &v
	}
	return out
}

// ToSummaryResponse mapea un resumen de dominio a su DTO.
func ToSummaryResponse(s domainaudit.Summary) dto.SummaryResponse {
	return dto.SummaryResponse{
		TotalItems:    s.TotalItems,
		AuditedCount:  s.AuditedCount,
		PendingItems:  s.PendingItems,
		Matched:       s.Matched,
		Discrepancy:   s.Discrepancy,
		CompletionPct: s.CompletionPct,
		NetVariance:   s.NetVariance,
		ShortageUnits: s.ShortageUnits,
		OverageUnits:  s.OverageUnits,
		VarianceValue: s.VarianceValue,
	}
}

// ToScanResponse mapea el resultado de un escaneo.
func ToScanResponse(o *ScanOutcome) dto.ScanResponse {
	out := dto.ScanResponse{
		State:            string(o.State),
		Trace:            make([]string, 0, len(o.Trace)),
		Warning:          o.Warning,
		SelectedLocation: o.SelectedLocation,
		Before:           o.Before,
		After:            o.After,
	}
	for _, s := range o.Trace {
		out.Trace = append(out.Trace, string(s))
	}
	if o.Err != nil {
		out.Message = o.Err.Error()
	}
	if o.State == ScanSuccess {
		out.Item = ToAuditItemResponse(o.Item)
	}
	return out
}
