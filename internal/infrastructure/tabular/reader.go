// Package tabular lee archivos de importación (CSV y XLSX) hacia dto.ImportTable y escribe
// el informe de auditoría en XLSX.
package tabular

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jhoicas/inventario-audit/internal/application/audit"
	"github.com/jhoicas/inventario-audit/internal/application/dto"
	"github.com/jhoicas/inventario-audit/internal/domain"
)

// Options opciones de lectura.
type Options struct {
	Charset string // utf-8 (defecto), iso-8859-1, windows-1252; solo aplica a CSV
	Sheet   string // hoja XLSX; vacío = primera
}

// Read elige el lector por extensión del nombre de archivo.
func Read(filename string, r io.Reader, opts Options) (dto.ImportTable, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return ReadCSV(r, opts.Charset)
	case ".xlsx":
		return ReadXLSX(r, opts.Sheet)
	default:
		return dto.ImportTable{}, domain.NewValidationError(fmt.Sprintf("tipo de archivo no soportado: %q (use .csv o .xlsx)", filepath.Ext(filename)))
	}
}

// buildTable arma la tabla a partir de encabezado y filas crudas. Omite filas vacías;
// Line es el número de registro (base 1) sin contar el encabezado.
func buildTable(records [][]string) (dto.ImportTable, error) {
	if len(records) == 0 {
		return dto.ImportTable{}, domain.NewValidationError("el archivo está vacío")
	}
	header := records[0]
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = audit.NormalizeHeader(h)
	}
	t := dto.ImportTable{Columns: header}
	for i, rec := range records[1:] {
		if blankRecord(rec) {
			continue
		}
		fields := make(map[string]string, len(keys))
		for j, k := range keys {
			if k == "" || j >= len(rec) {
				continue
			}
			fields[k] = strings.TrimSpace(rec[j])
		}
		t.Rows = append(t.Rows, dto.ImportRow{Line: i + 1, Fields: fields})
	}
	if len(t.Rows) == 0 {
		return t, domain.NewValidationError("el archivo no contiene filas")
	}
	return t, nil
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
