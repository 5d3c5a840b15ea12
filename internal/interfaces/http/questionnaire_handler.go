package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-audit/internal/application/dto"
	"github.com/jhoicas/inventario-audit/internal/application/questionnaire"
)

// QuestionnaireHandler preguntas y respuestas por ubicación.
type QuestionnaireHandler struct {
	uc *questionnaire.UseCase
}

// NewQuestionnaireHandler construye el handler.
func NewQuestionnaireHandler(uc *questionnaire.UseCase) *QuestionnaireHandler {
	return &QuestionnaireHandler{uc: uc}
}

// CreateQuestion godoc
// @Summary      Crear pregunta
// @Tags         questionnaire
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateQuestionRequest  true  "Pregunta"
// @Success      201   {object}  dto.QuestionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/questionnaire/questions [post]
func (h *QuestionnaireHandler) CreateQuestion(c *fiber.Ctx) error {
	var in dto.CreateQuestionRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateQuestion(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateQuestion godoc
// @Summary      Actualizar pregunta
// @Tags         questionnaire
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la pregunta"
// @Param        body  body  dto.UpdateQuestionRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.QuestionResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/questionnaire/questions/{id} [put]
func (h *QuestionnaireHandler) UpdateQuestion(c *fiber.Ctx) error {
	var in dto.UpdateQuestionRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateQuestion(c.UserContext(), GetPrincipal(c), c.Params("id"), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// ListQuestions godoc
// @Summary      Listar preguntas
// @Tags         questionnaire
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.QuestionResponse
// @Router       /api/questionnaire/questions [get]
func (h *QuestionnaireHandler) ListQuestions(c *fiber.Ctx) error {
	out, err := h.uc.ListQuestions(c.UserContext())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// DeleteQuestion godoc
// @Summary      Eliminar pregunta y sus respuestas
// @Tags         questionnaire
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la pregunta"
// @Success      200  {object}  dto.DeleteQuestionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/questionnaire/questions/{id} [delete]
func (h *QuestionnaireHandler) DeleteQuestion(c *fiber.Ctx) error {
	out, err := h.uc.DeleteQuestion(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// SaveAnswer godoc
// @Summary      Guardar respuesta de una ubicación
// @Description  Reemplaza la respuesta previa a la misma pregunta en la misma ubicación.
// @Tags         questionnaire
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaveAnswerRequest  true  "Respuesta"
// @Success      200   {object}  dto.AnswerResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/questionnaire/answers [put]
func (h *QuestionnaireHandler) SaveAnswer(c *fiber.Ctx) error {
	var in dto.SaveAnswerRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.SaveAnswer(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// ListAnswers godoc
// @Summary      Respuestas de una ubicación
// @Tags         questionnaire
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  true  "ID de la ubicación"
// @Success      200  {array}  dto.AnswerResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/questionnaire/answers [get]
func (h *QuestionnaireHandler) ListAnswers(c *fiber.Ctx) error {
	out, err := h.uc.ListAnswers(c.UserContext(), GetPrincipal(c), c.Query("location_id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}
