package audit

import (
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/inventario-audit/internal/application/dto"
	"github.com/jhoicas/inventario-audit/internal/domain"
	domainaudit "github.com/jhoicas/inventario-audit/internal/domain/audit"
)

// Alias de columnas aceptados por campo (encabezados ya normalizados).
var columnAliases = map[string][]string{
	"sku":      {"sku", "item_code", "code", "codigo", "referencia"},
	"location": {"location", "location_name", "ubicacion", "bodega"},
	"name":     {"name", "item_name", "nombre", "descripcion"},
	"category": {"category", "categoria", "grupo"},
	"barcode":  {"barcode", "ean", "codigo_barras", "codigo_de_barras"},
	"unitcost": {"unit_cost", "cost", "costo", "costo_unitario"},
	"quantity": {"quantity", "qty", "system_quantity", "closing_stock", "cantidad", "stock"},
}

// NormalizeHeader lleva un encabezado a la forma usada en ImportRow.Fields:
// minúsculas, sin tildes, con "_" como separador.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	if plain, _, err := transform.String(stripMarks(), h); err == nil {
		h = plain
	}
	h = strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(h)
	return h
}

func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// resolveColumns encuentra, para cada campo pedido, la columna presente que lo representa.
func resolveColumns(columns []string, required []string, optional []string) (map[string]string, error) {
	present := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		present[NormalizeHeader(c)] = struct{}{}
	}
	out := make(map[string]string)
	var missing []string
	find := func(field string) bool {
		for _, alias := range columnAliases[field] {
			if _, ok := present[alias]; ok {
				out[field] = alias
				return true
			}
		}
		return false
	}
	for _, f := range required {
		if !find(f) {
			missing = append(missing, f)
		}
	}
	for _, f := range optional {
		find(f)
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError("columnas requeridas ausentes: " + strings.Join(missing, ", "))
	}
	return out, nil
}

// ToCatalogRows mapea la tabla importada a filas de maestro. Función total: toda fila produce
// un CatalogRow o un error de validación que la identifica.
func ToCatalogRows(t dto.ImportTable) ([]domainaudit.CatalogRow, error) {
	if len(t.Rows) == 0 {
		return nil, domain.NewValidationError("el archivo no contiene filas")
	}
	cols, err := resolveColumns(t.Columns, []string{"sku", "location", "name", "category"}, []string{"barcode", "unitcost"})
	if err != nil {
		return nil, err
	}
	out := make([]domainaudit.CatalogRow, 0, len(t.Rows))
	var bad []int
	for _, r := range t.Rows {
		row := domainaudit.CatalogRow{
			Line:     r.Line,
			SKU:      field(r, cols, "sku"),
			Location: field(r, cols, "location"),
			Name:     field(r, cols, "name"),
			Category: field(r, cols, "category"),
			Barcode:  field(r, cols, "barcode"),
		}
		if raw := field(r, cols, "unitcost"); raw != "" {
			cost, err := parseDecimal(raw)
			if err != nil || cost.IsNegative() {
				bad = append(bad, r.Line)
				continue
			}
			row.UnitCost, row.HasUnitCost = cost, true
		}
		out = append(out, row)
	}
	if len(bad) > 0 {
		return nil, domain.NewValidationError("costo unitario inválido", bad...)
	}
	return out, nil
}

// ToStockRows mapea la tabla importada a filas de stock de cierre.
func ToStockRows(t dto.ImportTable) ([]domainaudit.StockRow, error) {
	if len(t.Rows) == 0 {
		return nil, domain.NewValidationError("el archivo no contiene filas")
	}
	cols, err := resolveColumns(t.Columns, []string{"sku", "location", "quantity"}, []string{"name", "category", "barcode"})
	if err != nil {
		return nil, err
	}
	out := make([]domainaudit.StockRow, 0, len(t.Rows))
	var bad []int
	for _, r := range t.Rows {
		qty, err := parseQuantity(field(r, cols, "quantity"))
		if err != nil {
			bad = append(bad, r.Line)
			continue
		}
		out = append(out, domainaudit.StockRow{
			Line:     r.Line,
			SKU:      field(r, cols, "sku"),
			Location: field(r, cols, "location"),
			Quantity: qty,
			Barcode:  field(r, cols, "barcode"),
			Name:     field(r, cols, "name"),
			Category: field(r, cols, "category"),
		})
	}
	if len(bad) > 0 {
		return nil, domain.NewValidationError("cantidad no numérica o no entera", bad...)
	}
	return out, nil
}

func field(r dto.ImportRow, cols map[string]string, name string) string {
	col, ok := cols[name]
	if !ok {
		return ""
	}
	return strings.TrimSpace(r.Fields[col])
}

// parseDecimal acepta "1234.5" y "1234,5" (coma decimal sin separador de miles).
func parseDecimal(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, ",") && !strings.Contains(raw, ".") {
		raw = strings.Replace(raw, ",", ".", 1)
	}
	return decimal.NewFromString(raw)
}

// Límites de cantidad: las columnas de cantidad son INTEGER de 32 bits.
var (
	maxQuantity = decimal.NewFromInt(math.MaxInt32)
	minQuantity = decimal.NewFromInt(math.MinInt32)
)

// parseQuantity acepta enteros y decimales con parte fraccionaria nula ("12", "12.0").
// Valores fuera del rango de la columna se rechazan en lugar de truncarse.
func parseQuantity(raw string) (int, error) {
	d, err := parseDecimal(raw)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() || d.GreaterThan(maxQuantity) || d.LessThan(minQuantity) {
		return 0, domain.ErrValidation
	}
	return int(d.IntPart()), nil
}
