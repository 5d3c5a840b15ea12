package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-audit/internal/application/audit"
	"github.com/jhoicas/inventario-audit/internal/application/location"
	"github.com/jhoicas/inventario-audit/internal/application/questionnaire"
	"github.com/jhoicas/inventario-audit/internal/application/report"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Imports       *audit.ImportUseCase
	Scans         *audit.ScanProcessor
	Counts        *audit.CountUseCase
	Query         *audit.QueryUseCase
	Locations     *location.UseCase
	Questionnaire *questionnaire.UseCase
	Reports       *report.UseCase
	ReadTable     TableReader
	JWTSecret     string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	adminOnly := RequireRole(entity.RoleAdmin)
	// los tres roles operan dentro de sus ubicaciones; el filtro de acceso vive en los casos de uso
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleAuditor, entity.RoleClient)

	// Auditoría
	auditGroup := api.Group("/audit")
	auditHandler := NewAuditHandler(deps.Imports, deps.Scans, deps.Counts, deps.Query, deps.ReadTable)
	auditGroup.Post("/imports/catalog", adminOnly, auditHandler.ImportCatalog)
	auditGroup.Post("/imports/closing-stock", adminOnly, auditHandler.ImportClosingStock)
	auditGroup.Post("/scans", anyRole, auditHandler.Scan)
	auditGroup.Put("/counts", anyRole, auditHandler.SetCount)
	auditGroup.Delete("/counts", anyRole, auditHandler.ClearCount)
	auditGroup.Get("/items", anyRole, auditHandler.ListItems)
	auditGroup.Delete("/items", adminOnly, auditHandler.Reset)
	auditGroup.Get("/summary", anyRole, auditHandler.Overview)
	auditGroup.Get("/summary/:id", anyRole, auditHandler.LocationSummary)

	reportHandler := NewReportHandler(deps.Reports)
	auditGroup.Get("/report", anyRole, reportHandler.Download)

	// Ubicaciones (el caso de uso restringe escritura a admin)
	locations := api.Group("/locations")
	locationHandler := NewLocationHandler(deps.Locations)
	locations.Get("/", anyRole, locationHandler.List)
	locations.Get("/:id", anyRole, locationHandler.GetByID)
	locations.Post("/", adminOnly, locationHandler.Create)
	locations.Put("/:id", adminOnly, locationHandler.Update)
	locations.Delete("/:id", adminOnly, locationHandler.Delete)

	// Cuestionario
	q := api.Group("/questionnaire")
	qHandler := NewQuestionnaireHandler(deps.Questionnaire)
	q.Get("/questions", anyRole, qHandler.ListQuestions)
	q.Post("/questions", adminOnly, qHandler.CreateQuestion)
	q.Put("/questions/:id", adminOnly, qHandler.UpdateQuestion)
	q.Delete("/questions/:id", adminOnly, qHandler.DeleteQuestion)
	q.Get("/answers", anyRole, qHandler.ListAnswers)
	q.Put("/answers", anyRole, qHandler.SaveAnswer)
}
