package tabular

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/inventario-audit/internal/application/dto"
	"github.com/jhoicas/inventario-audit/internal/domain"
)

// ReadXLSX lee la hoja indicada (o la primera) de un libro XLSX.
func ReadXLSX(r io.Reader, sheet string) (dto.ImportTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return dto.ImportTable{}, domain.NewValidationError("xlsx inválido: " + err.Error())
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return dto.ImportTable{}, domain.NewValidationError("el libro no tiene hojas")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return dto.ImportTable{}, fmt.Errorf("leer hoja %q: %w", sheet, err)
	}
	return buildTable(rows)
}
