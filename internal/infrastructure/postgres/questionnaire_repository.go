package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-audit/internal/domain"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
	"github.com/jhoicas/inventario-audit/internal/domain/repository"
)

var (
	_ repository.QuestionRepository = (*QuestionRepo)(nil)
	_ repository.AnswerRepository   = (*AnswerRepo)(nil)
)

// QuestionRepo preguntas del cuestionario sobre PostgreSQL. Las opciones se guardan en JSONB.
type QuestionRepo struct {
	q Querier
}

// NewQuestionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewQuestionRepository(q Querier) *QuestionRepo {
	return &QuestionRepo{q: q}
}

// Create persiste una pregunta.
func (r *QuestionRepo) Create(ctx context.Context, q *entity.Question) error {
	opts, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	query := `
		INSERT INTO questions (id, text, type, required, options, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.q.Exec(ctx, query, q.ID, q.Text, string(q.Type), q.Required, opts, q.SortOrder, q.CreatedAt, q.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

// GetByID obtiene una pregunta. (nil, nil) si no existe.
func (r *QuestionRepo) GetByID(ctx context.Context, id string) (*entity.Question, error) {
	query := `
		SELECT id, text, type, required, options, sort_order, created_at, updated_at
		FROM questions WHERE id = $1`
	q, err := scanQuestion(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get question: %w", err)
	}
	return q, nil
}

// Update actualiza texto, obligatoriedad, opciones y orden.
func (r *QuestionRepo) Update(ctx context.Context, q *entity.Question) error {
	opts, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	query := `
		UPDATE questions SET text = $2, required = $3, options = $4, sort_order = $5, updated_at = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, q.ID, q.Text, q.Required, opts, q.SortOrder, q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista las preguntas por sort_order.
func (r *QuestionRepo) List(ctx context.Context) ([]*entity.Question, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, text, type, required, options, sort_order, created_at, updated_at
		FROM questions ORDER BY sort_order, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		list = append(list, q)
	}
	return list, rows.Err()
}

// Delete elimina una pregunta. Las respuestas deben borrarse antes (ver AnswerRepo.DeleteByQuestion).
func (r *QuestionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("delete question %q con respuestas: %w", id, domain.ErrConflict)
		}
		return fmt.Errorf("delete question: %w", err)
	}
	return nil
}

func scanQuestion(row pgx.Row) (*entity.Question, error) {
	var q entity.Question
	var typ string
	var opts []byte
	if err := row.Scan(&q.ID, &q.Text, &typ, &q.Required, &opts, &q.SortOrder, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, err
	}
	q.Type = entity.QuestionType(typ)
	if len(opts) > 0 {
		if err := json.Unmarshal(opts, &q.Options); err != nil {
			return nil, fmt.Errorf("decode options: %w", err)
		}
	}
	return &q, nil
}

// AnswerRepo respuestas del cuestionario (clave: question_id + location_id).
type AnswerRepo struct {
	q Querier
}

// NewAnswerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAnswerRepository(q Querier) *AnswerRepo {
	return &AnswerRepo{q: q}
}

// Upsert inserta o reemplaza las respuestas por (question_id, location_id) en una transacción.
func (r *AnswerRepo) Upsert(ctx context.Context, answers []entity.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upsert answers: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO questionnaire_answers (question_id, location_id, text, option_ids, answered_by, answered_on)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (question_id, location_id)
		DO UPDATE SET text = EXCLUDED.text, option_ids = EXCLUDED.option_ids,
			answered_by = EXCLUDED.answered_by, answered_on = EXCLUDED.answered_on`
	batch := &pgx.Batch{}
	for _, a := range answers {
		ids := a.OptionIDs
		if ids == nil {
			ids = []string{}
		}
		batch.Queue(query, a.QuestionID, a.LocationID, a.Text, ids, a.AnsweredBy, a.AnsweredOn)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert answers: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit upsert answers: %w", err)
	}
	return nil
}

// ListByLocation respuestas de una ubicación.
func (r *AnswerRepo) ListByLocation(ctx context.Context, locationID string) ([]entity.Answer, error) {
	return r.list(ctx, `WHERE location_id = $1`, locationID)
}

// ListAll todas las respuestas.
func (r *AnswerRepo) ListAll(ctx context.Context) ([]entity.Answer, error) {
	return r.list(ctx, ``)
}

func (r *AnswerRepo) list(ctx context.Context, where string, args ...any) ([]entity.Answer, error) {
	rows, err := r.q.Query(ctx, `
		SELECT question_id, location_id, text, option_ids, answered_by, answered_on
		FROM questionnaire_answers `+where+` ORDER BY location_id, question_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()
	var list []entity.Answer
	for rows.Next() {
		var a entity.Answer
		if err := rows.Scan(&a.QuestionID, &a.LocationID, &a.Text, &a.OptionIDs, &a.AnsweredBy, &a.AnsweredOn); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		if len(a.OptionIDs) == 0 {
			a.OptionIDs = nil
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// DeleteByQuestion borra las respuestas de la pregunta.
func (r *AnswerRepo) DeleteByQuestion(ctx context.Context, questionID string) (int, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM questionnaire_answers WHERE question_id = $1`, questionID)
	if err != nil {
		return 0, fmt.Errorf("delete answers: %w", err)
	}
	return int(cmd.RowsAffected()), nil
}
