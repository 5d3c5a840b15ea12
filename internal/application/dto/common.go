package dto

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Rows    []int             `json:"rows,omitempty"`   // filas rechazadas en importaciones
	Fields  map[string]string `json:"fields,omitempty"` // campo -> regla incumplida
}
