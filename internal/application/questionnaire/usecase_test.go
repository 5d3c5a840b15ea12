package questionnaire_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-audit/internal/application/dto"
	"github.com/jhoicas/inventario-audit/internal/application/questionnaire"
	"github.com/jhoicas/inventario-audit/internal/domain"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
	"github.com/jhoicas/inventario-audit/internal/domain/repository"
)

// memStore preguntas y respuestas en memoria; el TxRunner trabaja sobre una copia y solo
// la publica si fn no falla.
type memStore struct {
	questions    map[string]entity.Question
	answers      map[entity.AnswerKey]entity.Answer
	failDeleteQ  error
	upsertedSets [][]entity.Answer
}

func newMemStore() *memStore {
	return &memStore{questions: map[string]entity.Question{}, answers: map[entity.AnswerKey]entity.Answer{}}
}

func (m *memStore) clone() *memStore {
	c := newMemStore()
	for k, v := range m.questions {
		c.questions[k] = v
	}
	for k, v := range m.answers {
		c.answers[k] = v
	}
	c.failDeleteQ = m.failDeleteQ
	return c
}

type memQuestions struct{ s *memStore }

func (r memQuestions) Create(_ context.Context, q *entity.Question) error {
	r.s.questions[q.ID] = *q
	return nil
}

func (r memQuestions) GetByID(_ context.Context, id string) (*entity.Question, error) {
	q, ok := r.s.questions[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (r memQuestions) Update(ctx context.Context, q *entity.Question) error { return r.Create(ctx, q) }

func (r memQuestions) List(context.Context) ([]*entity.Question, error) {
	out := make([]*entity.Question, 0, len(r.s.questions))
	for _, q := range r.s.questions {
		c := q
		out = append(out, &c)
	}
	return out, nil
}

func (r memQuestions) Delete(_ context.Context, id string) error {
	if r.s.failDeleteQ != nil {
		return r.s.failDeleteQ
	}
	delete(r.s.questions, id)
	return nil
}

type memAnswers struct{ s *memStore }

func (r memAnswers) Upsert(_ context.Context, answers []entity.Answer) error {
	r.s.upsertedSets = append(r.s.upsertedSets, answers)
	for _, a := range answers {
		r.s.answers[a.Key()] = a
	}
	return nil
}

func (r memAnswers) ListByLocation(_ context.Context, locationID string) ([]entity.Answer, error) {
	var out []entity.Answer
	for _, a := range r.s.answers {
		if a.LocationID == locationID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r memAnswers) ListAll(context.Context) ([]entity.Answer, error) {
	out := make([]entity.Answer, 0, len(r.s.answers))
	for _, a := range r.s.answers {
		out = append(out, a)
	}
	return out, nil
}

func (r memAnswers) DeleteByQuestion(_ context.Context, questionID string) (int, error) {
	n := 0
	for k := range r.s.answers {
		if k.QuestionID == questionID {
			delete(r.s.answers, k)
			n++
		}
	}
	return n, nil
}

type memTx struct{ s *memStore }

func (t memTx) Run(_ context.Context, fn func(repository.QuestionRepository, repository.AnswerRepository) error) error {
	work := t.s.clone()
	if err := fn(memQuestions{work}, memAnswers{work}); err != nil {
		return err
	}
	t.s.questions, t.s.answers = work.questions, work.answers
	return nil
}

type memLocations map[string]entity.Location

func (m memLocations) Create(context.Context, *entity.Location) error { return nil }
func (m memLocations) GetByID(_ context.Context, id string) (*entity.Location, error) {
	l, ok := m[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}
func (m memLocations) GetByName(context.Context, string) (*entity.Location, error) { return nil, nil }
func (m memLocations) Update(context.Context, *entity.Location) error              { return nil }
func (m memLocations) List(context.Context) ([]*entity.Location, error)            { return nil, nil }
func (m memLocations) Delete(context.Context, string) error                        { return nil }

var (
	admin   = entity.Principal{UserID: "u-admin", Role: entity.RoleAdmin}
	auditor = entity.Principal{UserID: "u-aud", Role: entity.RoleAuditor, LocationIDs: []string{"loc-1"}}
)

func newUseCase() (*memStore, *questionnaire.UseCase) {
	s := newMemStore()
	locs := memLocations{"loc-1": {ID: "loc-1", Name: "L1"}, "loc-2": {ID: "loc-2", Name: "L2"}}
	return s, questionnaire.NewUseCase(memQuestions{s}, memAnswers{s}, locs, memTx{s}, nil)
}

func createYesNo(t *testing.T, uc *questionnaire.UseCase) string {
	t.Helper()
	q, err := uc.CreateQuestion(context.Background(), admin, dto.CreateQuestionRequest{Text: "¿Área señalizada?", Type: "yesNo", Required: true})
	require.NoError(t, err)
	return q.ID
}

// ──────────────────────────────────────────────────────────────────────────────
// Preguntas
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateQuestion_SeleccionSinOpciones(t *testing.T) {
	_, uc := newUseCase()

	_, err := uc.CreateQuestion(context.Background(), admin, dto.CreateQuestionRequest{Text: "Estado", Type: "singleSelect"})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateQuestion_SoloAdmin(t *testing.T) {
	_, uc := newUseCase()

	_, err := uc.CreateQuestion(context.Background(), auditor, dto.CreateQuestionRequest{Text: "x", Type: "text"})
	require.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestListQuestions_OrdenadasPorSortOrder(t *testing.T) {
	_, uc := newUseCase()
	ctx := context.Background()
	_, err := uc.CreateQuestion(ctx, admin, dto.CreateQuestionRequest{Text: "Segunda", Type: "text", SortOrder: 2})
	require.NoError(t, err)
	_, err = uc.CreateQuestion(ctx, admin, dto.CreateQuestionRequest{Text: "Primera", Type: "text", SortOrder: 1})
	require.NoError(t, err)

	list, err := uc.ListQuestions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Primera", list[0].Text)
}

// ──────────────────────────────────────────────────────────────────────────────
// Respuestas
// ──────────────────────────────────────────────────────────────────────────────

func TestSaveAnswer_SegundaRespuestaReemplazaPrimera(t *testing.T) {
	s, uc := newUseCase()
	qid := createYesNo(t, uc)
	ctx := context.Background()

	_, err := uc.SaveAnswer(ctx, auditor, dto.SaveAnswerRequest{QuestionID: qid, LocationID: "loc-1", Text: "yes"})
	require.NoError(t, err)
	res, err := uc.SaveAnswer(ctx, auditor, dto.SaveAnswerRequest{QuestionID: qid, LocationID: "loc-1", Text: " NO "})
	require.NoError(t, err)
	assert.Equal(t, "no", res.Text)

	list, err := uc.ListAnswers(ctx, auditor, "loc-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "no", list[0].Text)
	assert.Equal(t, "u-aud", list[0].AnsweredBy)
	require.Len(t, s.upsertedSets, 2)
	assert.Len(t, s.upsertedSets[1], 1, "se persiste el conjunto de la ubicación sin duplicar")
}

func TestSaveAnswer_UbicacionNoAsignada(t *testing.T) {
	_, uc := newUseCase()
	qid := createYesNo(t, uc)

	_, err := uc.SaveAnswer(context.Background(), auditor, dto.SaveAnswerRequest{QuestionID: qid, LocationID: "loc-2", Text: "yes"})
	require.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestSaveAnswer_SinUbicacion(t *testing.T) {
	_, uc := newUseCase()
	qid := createYesNo(t, uc)

	_, err := uc.SaveAnswer(context.Background(), admin, dto.SaveAnswerRequest{QuestionID: qid, Text: "yes"})
	require.ErrorIs(t, err, domain.ErrLocationRequired)
}

func TestSaveAnswer_ValorInvalido(t *testing.T) {
	_, uc := newUseCase()
	qid := createYesNo(t, uc)

	_, err := uc.SaveAnswer(context.Background(), admin, dto.SaveAnswerRequest{QuestionID: qid, LocationID: "loc-1", Text: "quizás"})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestSaveAnswer_PreguntaInexistente(t *testing.T) {
	_, uc := newUseCase()

	_, err := uc.SaveAnswer(context.Background(), admin, dto.SaveAnswerRequest{QuestionID: "nope", LocationID: "loc-1"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Borrado en cascada
// ──────────────────────────────────────────────────────────────────────────────

func TestDeleteQuestion_EliminaRespuestas(t *testing.T) {
	s, uc := newUseCase()
	qid := createYesNo(t, uc)
	ctx := context.Background()
	for _, loc := range []string{"loc-1", "loc-2"} {
		_, err := uc.SaveAnswer(ctx, admin, dto.SaveAnswerRequest{QuestionID: qid, LocationID: loc, Text: "yes"})
		require.NoError(t, err)
	}

	res, err := uc.DeleteQuestion(ctx, admin, qid)
	require.NoError(t, err)
	assert.Equal(t, 2, res.AnswersRemoved)
	assert.Empty(t, s.questions)
	assert.Empty(t, s.answers)
}

func TestDeleteQuestion_FalloParcialNoAplicaNada(t *testing.T) {
	s, uc := newUseCase()
	qid := createYesNo(t, uc)
	ctx := context.Background()
	_, err := uc.SaveAnswer(ctx, admin, dto.SaveAnswerRequest{QuestionID: qid, LocationID: "loc-1", Text: "yes"})
	require.NoError(t, err)
	s.failDeleteQ = errors.New("fk violation")

	_, err = uc.DeleteQuestion(ctx, admin, qid)
	require.ErrorIs(t, err, domain.ErrPersistence)
	assert.Contains(t, err.Error(), "eliminar pregunta")
	assert.Len(t, s.questions, 1)
	assert.Len(t, s.answers, 1)
}
