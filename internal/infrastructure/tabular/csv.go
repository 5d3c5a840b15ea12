package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/inventario-audit/internal/application/dto"
	"github.com/jhoicas/inventario-audit/internal/domain"
)

// ReadCSV lee un CSV delimitado por coma o punto y coma (se detecta en el encabezado).
// Los exportes de hojas de cálculo en español suelen venir en windows-1252 con ';'.
func ReadCSV(r io.Reader, charset string) (dto.ImportTable, error) {
	decoded, err := decode(r, charset)
	if err != nil {
		return dto.ImportTable{}, err
	}
	br := bufio.NewReader(decoded)
	head, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return dto.ImportTable{}, fmt.Errorf("leer csv: %w", err)
	}

	cr := csv.NewReader(br)
	cr.Comma = sniffDelimiter(head)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return dto.ImportTable{}, domain.NewValidationError("csv mal formado: " + err.Error())
	}
	return buildTable(records)
}

func decode(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, domain.NewValidationError("codificación no soportada: " + charset)
	}
}

// sniffDelimiter usa ';' si la primera línea tiene más ';' que ','.
func sniffDelimiter(head []byte) rune {
	line := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		line = head[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}
