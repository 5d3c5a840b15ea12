package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-audit/internal/application/dto"
	"github.com/jhoicas/inventario-audit/internal/application/report"
)

// ReportHandler descarga del informe de auditoría.
type ReportHandler struct {
	uc *report.UseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.UseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Download godoc
// @Summary      Descargar informe de auditoría
// @Tags         audit
// @Security     Bearer
// @Produce      application/pdf
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        format       query  string  false  "pdf | xlsx"  default(pdf)
// @Param        location_id  query  string  false  "Restringir a una ubicación"
// @Param        status       query  string  false  "pending | matched | discrepancy"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/audit/report [get]
func (h *ReportHandler) Download(c *fiber.Ctx) error {
	var q dto.ReportQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	content, filename, contentType, err := h.uc.Render(c.UserContext(), GetPrincipal(c), q)
	if err != nil {
		return handleError(c, err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(content)
}
