package http

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-audit/internal/application/audit"
	"github.com/jhoicas/inventario-audit/internal/application/dto"
	"github.com/jhoicas/inventario-audit/internal/domain"
)

// TableReader convierte un archivo subido (CSV/XLSX) en una tabla de importación.
type TableReader func(filename string, r io.Reader) (dto.ImportTable, error)

// AuditHandler maneja importación, escaneo, conteo manual y consultas de auditoría.
type AuditHandler struct {
	imports *audit.ImportUseCase
	scans   *audit.ScanProcessor
	counts  *audit.CountUseCase
	query   *audit.QueryUseCase
	read    TableReader
}

// NewAuditHandler construye el handler.
func NewAuditHandler(imports *audit.ImportUseCase, scans *audit.ScanProcessor, counts *audit.CountUseCase, query *audit.QueryUseCase, read TableReader) *AuditHandler {
	return &AuditHandler{imports: imports, scans: scans, counts: counts, query: query, read: read}
}

// ImportCatalog godoc
// @Summary      Importar maestro de artículos
// @Description  CSV o XLSX con columnas sku, location, name, category (barcode y unit_cost opcionales).
// @Tags         audit
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Archivo .csv o .xlsx"
// @Success      200   {object}  dto.ImportResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/audit/imports/catalog [post]
func (h *AuditHandler) ImportCatalog(c *fiber.Ctx) error {
	table, err := h.uploadedTable(c)
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.imports.ImportCatalog(c.UserContext(), table)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// ImportClosingStock godoc
// @Summary      Importar existencias de cierre
// @Description  CSV o XLSX con columnas sku, location, quantity. Fija la cantidad de sistema.
// @Tags         audit
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Archivo .csv o .xlsx"
// @Success      200   {object}  dto.ImportResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/audit/imports/closing-stock [post]
func (h *AuditHandler) ImportClosingStock(c *fiber.Ctx) error {
	table, err := h.uploadedTable(c)
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.imports.ImportClosingStock(c.UserContext(), table)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

func (h *AuditHandler) uploadedTable(c *fiber.Ctx) (dto.ImportTable, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return dto.ImportTable{}, domain.NewValidationError("campo 'file' requerido")
	}
	f, err := fh.Open()
	if err != nil {
		return dto.ImportTable{}, domain.NewValidationError("no se pudo abrir el archivo")
	}
	defer f.Close()
	return h.read(fh.Filename, f)
}

// Scan godoc
// @Summary      Registrar un escaneo
// @Description  Incrementa en 1 la cantidad física del artículo escaneado en la ubicación seleccionada.
// @Tags         audit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScanRequest  true  "Código y ubicación seleccionada"
// @Success      200   {object}  dto.ScanResponse
// @Failure      400   {object}  dto.ScanResponse
// @Failure      403   {object}  dto.ScanResponse
// @Failure      404   {object}  dto.ScanResponse
// @Router       /api/audit/scans [post]
func (h *AuditHandler) Scan(c *fiber.Ctx) error {
	var in dto.ScanRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.scans.Process(c.UserContext(), GetPrincipal(c), audit.ScanInput{Code: in.Code, LocationID: in.LocationID})
	resp := audit.ToScanResponse(out)
	if err != nil {
		// el cliente necesita la traza también en rechazo
		return c.Status(scanStatus(err)).JSON(resp)
	}
	return c.JSON(resp)
}

func scanStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrLocationRequired), errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrAccessDenied):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrPersistence):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// SetCount godoc
// @Summary      Fijar conteo físico
// @Tags         audit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SetCountRequest  true  "Cantidad física absoluta"
// @Success      200   {object}  dto.AuditItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/audit/counts [put]
func (h *AuditHandler) SetCount(c *fiber.Ctx) error {
	var in dto.SetCountRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.counts.SetCount(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// ClearCount godoc
// @Summary      Borrar conteo físico (vuelve a pendiente)
// @Tags         audit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ClearCountRequest  true  "Registro a reiniciar"
// @Success      200   {object}  dto.AuditItemResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/audit/counts [delete]
func (h *AuditHandler) ClearCount(c *fiber.Ctx) error {
	var in dto.ClearCountRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.counts.ClearCount(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// ListItems godoc
// @Summary      Listar registros de auditoría visibles
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Filtrar por ubicación"
// @Param        status       query  string  false  "pending | matched | discrepancy"
// @Param        q            query  string  false  "Búsqueda por sku, código, nombre o categoría"
// @Param        limit        query  int     false  "Límite"  default(50)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.AuditItemListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/audit/items [get]
func (h *AuditHandler) ListItems(c *fiber.Ctx) error {
	var q dto.ListAuditItemsQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	out, err := h.query.ListItems(c.UserContext(), GetPrincipal(c), q)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Overview godoc
// @Summary      Resumen global y por ubicación
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AuditOverviewResponse
// @Router       /api/audit/summary [get]
func (h *AuditHandler) Overview(c *fiber.Ctx) error {
	out, err := h.query.Overview(c.UserContext(), GetPrincipal(c))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// LocationSummary godoc
// @Summary      Resumen de una ubicación
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.LocationSummaryResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/audit/summary/{id} [get]
func (h *AuditHandler) LocationSummary(c *fiber.Ctx) error {
	out, err := h.query.LocationSummary(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Reset godoc
// @Summary      Reiniciar auditoría (borra todos los registros)
// @Tags         audit
// @Security     Bearer
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/audit/items [delete]
func (h *AuditHandler) Reset(c *fiber.Ctx) error {
	if err := h.imports.Reset(c.UserContext(), GetPrincipal(c)); err != nil {
		return handleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
