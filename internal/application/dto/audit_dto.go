package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ImportRow fila cruda entregada por el colaborador de importación (CSV/XLSX).
// Fields usa los encabezados normalizados (minúsculas, "_" en lugar de espacios).
type ImportRow struct {
	Line   int
	Fields map[string]string
}

// ImportTable resultado del parseo de un archivo delimitado u hoja de cálculo.
type ImportTable struct {
	Columns []string
	Rows    []ImportRow
}

// ImportResultResponse salida de una importación.
type ImportResultResponse struct {
	Kind      string `json:"kind"` // catalog | closing_stock
	RowsRead  int    `json:"rows_read"`
	Upserted  int    `json:"upserted"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Unchanged int    `json:"unchanged"`
}

// ScanRequest body para POST /api/audit/scans. Mismo punto de entrada para cámara, lector y captura manual.
type ScanRequest struct {
	Code       string `json:"code" validate:"required,max=128"`
	LocationID string `json:"location_id"`
}

// ScanResponse resultado de un escaneo.
type ScanResponse struct {
	State            string             `json:"state"`
	Trace            []string           `json:"trace"`
	Warning          string             `json:"warning,omitempty"`
	Message          string             `json:"message,omitempty"`
	SelectedLocation string             `json:"selected_location,omitempty"`
	Item             *AuditItemResponse `json:"item,omitempty"`
	Before           int                `json:"before"`
	After            int                `json:"after"`
}

// SetCountRequest body para PUT /api/audit/counts (conteo manual absoluto).
type SetCountRequest struct {
	SKU        string  `json:"sku" validate:"required,max=128"`
	LocationID string  `json:"location_id" validate:"required"`
	Quantity   int     `json:"quantity" validate:"min=0,max=2147483647"`
	Notes      *string `json:"notes" validate:"omitempty,max=1000"`
}

// ClearCountRequest body para DELETE /api/audit/counts.
type ClearCountRequest struct {
	SKU        string `json:"sku" validate:"required,max=128"`
	LocationID string `json:"location_id" validate:"required"`
}

// AuditItemResponse salida de un registro conciliado.
type AuditItemResponse struct {
	SKU              string          `json:"sku"`
	Location         string          `json:"location"`
	Barcode          string          `json:"barcode,omitempty"`
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	SystemQuantity   int             `json:"system_quantity"`
	PhysicalQuantity *int            `json:"physical_quantity"`
	Status           string          `json:"status"`
	Variance         *int            `json:"variance"`
	VarianceValue    decimal.Decimal `json:"variance_value"`
	LastAuditedAt    *time.Time      `json:"last_audited_at"`
	AuditedBy        string          `json:"audited_by,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ListAuditItemsQuery filtros de listado.
type ListAuditItemsQuery struct {
	LocationID string `query:"location_id"`
	Status     string `query:"status" validate:"omitempty,oneof=pending matched discrepancy"`
	Search     string `query:"q" validate:"omitempty,max=128"`
	Limit      int    `query:"limit"`
	Offset     int    `query:"offset"`
}

// AuditItemListResponse lista paginada de registros.
type AuditItemListResponse struct {
	Items []AuditItemResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// SummaryResponse estadísticas de avance.
type SummaryResponse struct {
	TotalItems    int             `json:"total_items"`
	AuditedCount  int             `json:"audited_count"`
	PendingItems  int             `json:"pending_items"`
	Matched       int             `json:"matched"`
	Discrepancy   int             `json:"discrepancy"`
	CompletionPct int             `json:"completion_pct"`
	NetVariance   int             `json:"net_variance"`
	ShortageUnits int             `json:"shortage_units"`
	OverageUnits  int             `json:"overage_units"`
	VarianceValue decimal.Decimal `json:"variance_value"`
}

// LocationSummaryResponse resumen de una ubicación.
type LocationSummaryResponse struct {
	LocationID string          `json:"location_id,omitempty"`
	Location   string          `json:"location"`
	Summary    SummaryResponse `json:"summary"`
}

// AuditOverviewResponse resumen global más desglose por ubicación visible.
type AuditOverviewResponse struct {
	Global      SummaryResponse           `json:"global"`
	ByLocation  []LocationSummaryResponse `json:"by_location"`
	GeneratedAt time.Time                 `json:"generated_at"`
}

// ReportQuery parámetros de GET /api/audit/report.
type ReportQuery struct {
	Format     string `query:"format" validate:"omitempty,oneof=pdf xlsx"`
	LocationID string `query:"location_id"`
	Status     string `query:"status" validate:"omitempty,oneof=pending matched discrepancy"`
}
