package questionnaire

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-audit/internal/application/dto"
	"github.com/jhoicas/inventario-audit/internal/domain"
	domainaudit "github.com/jhoicas/inventario-audit/internal/domain/audit"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
	domainq "github.com/jhoicas/inventario-audit/internal/domain/questionnaire"
	"github.com/jhoicas/inventario-audit/internal/domain/repository"
	"github.com/jhoicas/inventario-audit/pkg/logger"
)

// TxRunner ejecuta fn dentro de una transacción con repositorios atados a ella.
type TxRunner interface {
	Run(ctx context.Context, fn func(questions repository.QuestionRepository, answers repository.AnswerRepository) error) error
}

// UseCase preguntas del cuestionario y respuestas únicas por (pregunta, ubicación).
type UseCase struct {
	questions repository.QuestionRepository
	answers   repository.AnswerRepository
	locations repository.LocationRepository
	tx        TxRunner
	log       *logger.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(questions repository.QuestionRepository, answers repository.AnswerRepository, locations repository.LocationRepository, tx TxRunner, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		questions: questions,
		answers:   answers,
		locations: locations,
		tx:        tx,
		log:       log.Component("questionnaire"),
		now:       time.Now,
	}
}

// CreateQuestion crea una pregunta (solo admin).
func (uc *UseCase) CreateQuestion(ctx context.Context, principal entity.Principal, in dto.CreateQuestionRequest) (*dto.QuestionResponse, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrAccessDenied
	}
	now := uc.now()
	q := entity.Question{
		ID:        uuid.New().String(),
		Text:      strings.TrimSpace(in.Text),
		Type:      entity.QuestionType(in.Type),
		Required:  in.Required,
		Options:   toOptions(in.Options),
		SortOrder: in.SortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := domainq.ValidateQuestion(q); err != nil {
		return nil, err
	}
	if err := uc.questions.Create(ctx, &q); err != nil {
		return nil, domain.Persistence("crear pregunta", err)
	}
	return toQuestionResponse(&q), nil
}

// UpdateQuestion actualiza texto, obligatoriedad, opciones u orden. El tipo no cambia.
func (uc *UseCase) UpdateQuestion(ctx context.Context, principal entity.Principal, id string, in dto.UpdateQuestionRequest) (*dto.QuestionResponse, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrAccessDenied
	}
	q, err := uc.question(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Text != nil {
		q.Text = strings.TrimSpace(*in.Text)
	}
	if in.Required != nil {
		q.Required = *in.Required
	}
	if in.Options != nil {
		q.Options = toOptions(in.Options)
	}
	if in.SortOrder != nil {
		q.SortOrder = *in.SortOrder
	}
	if err := domainq.ValidateQuestion(*q); err != nil {
		return nil, err
	}
	q.UpdatedAt = uc.now()
	if err := uc.questions.Update(ctx, q); err != nil {
		return nil, domain.Persistence("actualizar pregunta", err)
	}
	return toQuestionResponse(q), nil
}

// ListQuestions lista las preguntas por SortOrder.
func (uc *UseCase) ListQuestions(ctx context.Context) ([]dto.QuestionResponse, error) {
	list, err := uc.questions.List(ctx)
	if err != nil {
		return nil, domain.Persistence("listar preguntas", err)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].SortOrder < list[j].SortOrder })
	out := make([]dto.QuestionResponse, 0, len(list))
	for _, q := range list {
		out = append(out, *toQuestionResponse(q))
	}
	return out, nil
}

// SaveAnswer guarda la respuesta de una ubicación: reemplaza la existente para la misma
// (pregunta, ubicación) o la agrega, y persiste el conjunto de la ubicación por clave compuesta.
func (uc *UseCase) SaveAnswer(ctx context.Context, principal entity.Principal, in dto.SaveAnswerRequest) (*dto.AnswerResponse, error) {
	if strings.TrimSpace(in.LocationID) == "" {
		return nil, domain.ErrLocationRequired
	}
	if err := uc.checkLocation(ctx, principal, in.LocationID); err != nil {
		return nil, err
	}
	q, err := uc.question(ctx, in.QuestionID)
	if err != nil {
		return nil, err
	}
	answer, err := domainq.NormalizeAnswer(*q, entity.Answer{
		QuestionID: q.ID,
		LocationID: in.LocationID,
		Text:       in.Text,
		OptionIDs:  in.OptionIDs,
		AnsweredBy: principal.UserID,
		AnsweredOn: uc.now(),
	})
	if err != nil {
		return nil, err
	}

	existing, err := uc.answers.ListByLocation(ctx, in.LocationID)
	if err != nil {
		return nil, domain.Persistence("leer respuestas", err)
	}
	merged := domainq.MergeAnswer(existing, answer)
	if err := uc.answers.Upsert(ctx, merged); err != nil {
		return nil, domain.Persistence("guardar respuestas", err)
	}
	uc.log.Info().
		Str("question_id", q.ID).
		Str("location_id", in.LocationID).
		Str("user_id", principal.UserID).
		Msg("respuesta guardada")
	return toAnswerResponse(answer), nil
}

// ListAnswers respuestas de una ubicación visible.
func (uc *UseCase) ListAnswers(ctx context.Context, principal entity.Principal, locationID string) ([]dto.AnswerResponse, error) {
	if strings.TrimSpace(locationID) == "" {
		return nil, domain.ErrLocationRequired
	}
	if err := uc.checkLocation(ctx, principal, locationID); err != nil {
		return nil, err
	}
	list, err := uc.answers.ListByLocation(ctx, locationID)
	if err != nil {
		return nil, domain.Persistence("leer respuestas", err)
	}
	out := make([]dto.AnswerResponse, 0, len(list))
	for _, a := range list {
		out = append(out, *toAnswerResponse(a))
	}
	return out, nil
}

// DeleteQuestion elimina la pregunta y todas sus respuestas en una sola transacción.
// Si alguno de los dos pasos falla no se aplica ninguno y el error indica cuál.
func (uc *UseCase) DeleteQuestion(ctx context.Context, principal entity.Principal, id string) (*dto.DeleteQuestionResponse, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrAccessDenied
	}
	if _, err := uc.question(ctx, id); err != nil {
		return nil, err
	}
	removed := 0
	err := uc.tx.Run(ctx, func(questions repository.QuestionRepository, answers repository.AnswerRepository) error {
		n, err := answers.DeleteByQuestion(ctx, id)
		if err != nil {
			return domain.Persistence("eliminar respuestas de la pregunta", err)
		}
		if err := questions.Delete(ctx, id); err != nil {
			return domain.Persistence("eliminar pregunta", err)
		}
		removed = n
		return nil
	})
	if err != nil {
		uc.log.Error().Err(err).Str("question_id", id).Msg("borrado de pregunta revertido")
		return nil, domain.Persistence("borrado en cascada", err)
	}
	uc.log.Info().Str("question_id", id).Int("answers_removed", removed).Msg("pregunta eliminada")
	return &dto.DeleteQuestionResponse{QuestionID: id, AnswersRemoved: removed}, nil
}

func (uc *UseCase) question(ctx context.Context, id string) (*entity.Question, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError("question_id es obligatorio")
	}
	q, err := uc.questions.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("obtener pregunta", err)
	}
	if q == nil {
		return nil, fmt.Errorf("pregunta %q: %w", id, domain.ErrNotFound)
	}
	return q, nil
}

// checkLocation verifica que la ubicación exista y sea visible para el principal.
func (uc *UseCase) checkLocation(ctx context.Context, principal entity.Principal, locationID string) error {
	loc, err := uc.locations.GetByID(ctx, locationID)
	if err != nil {
		return domain.Persistence("obtener ubicación", err)
	}
	if loc == nil {
		return fmt.Errorf("ubicación %q: %w", locationID, domain.ErrNotFound)
	}
	if len(domainaudit.VisibleLocations(principal.Role, principal.LocationIDs, []entity.Location{*loc})) == 0 {
		return domain.ErrAccessDenied
	}
	return nil
}

func toOptions(in []dto.QuestionOptionDTO) []entity.QuestionOption {
	out := make([]entity.QuestionOption, 0, len(in))
	for _, o := range in {
		out = append(out, entity.QuestionOption{ID: strings.TrimSpace(o.ID), Label: strings.TrimSpace(o.Label)})
	}
	return out
}

func toQuestionResponse(q *entity.Question) *dto.QuestionResponse {
	opts := make([]dto.QuestionOptionDTO, 0, len(q.Options))
	for _, o := range q.Options {
		opts = append(opts, dto.QuestionOptionDTO{ID: o.ID, Label: o.Label})
	}
	return &dto.QuestionResponse{
		ID:        q.ID,
		Text:      q.Text,
		Type:      string(q.Type),
		Required:  q.Required,
		Options:   opts,
		SortOrder: q.SortOrder,
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
	}
}

func toAnswerResponse(a entity.Answer) *dto.AnswerResponse {
	return &dto.AnswerResponse{
		QuestionID: a.QuestionID,
		LocationID: a.LocationID,
		Text:       a.Text,
		OptionIDs:  a.OptionIDs,
		AnsweredBy: a.AnsweredBy,
		AnsweredOn: a.AnsweredOn,
	}
}
