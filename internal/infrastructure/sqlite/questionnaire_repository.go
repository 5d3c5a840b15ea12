package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jhoicas/inventario-audit/internal/domain"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
	"github.com/jhoicas/inventario-audit/internal/domain/repository"
)

var (
	_ repository.QuestionRepository = (*QuestionRepo)(nil)
	_ repository.AnswerRepository   = (*AnswerRepo)(nil)
)

// QuestionRepo preguntas sobre SQLite; opciones en JSON.
type QuestionRepo struct {
	c conn
}

// NewQuestionRepository construye el adaptador.
func NewQuestionRepository(db *sql.DB) *QuestionRepo {
	return &QuestionRepo{c: conn{db: db}}
}

const questionColumns = `id, text, type, required, options, sort_order, created_at, updated_at`

// Create persiste una pregunta.
func (r *QuestionRepo) Create(ctx context.Context, q *entity.Question) error {
	opts, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	_, err = r.c.q().ExecContext(ctx, `INSERT INTO questions (`+questionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.Text, string(q.Type), q.Required, string(opts), q.SortOrder, q.CreatedAt, q.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

// GetByID (nil, nil) si no existe.
func (r *QuestionRepo) GetByID(ctx context.Context, id string) (*entity.Question, error) {
	q, err := scanQuestion(r.c.q().QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
	res, err := r.c.q().ExecContext(ctx, `UPDATE questions SET text = ?, required = ?, options = ?, sort_order = ?, updated_at = ? WHERE id = ?`,
		q.Text, q.Required, string(opts), q.SortOrder, q.UpdatedAt, q.ID)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List preguntas por sort_order.
func (r *QuestionRepo) List(ctx context.Context) ([]*entity.Question, error) {
	rows, err := r.c.q().QueryContext(ctx, `SELECT `+questionColumns+` FROM questions ORDER BY sort_order, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer func() { _ = rows.Close() }()
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

// Delete elimina una pregunta. Con respuestas vigentes falla con domain.ErrConflict.
func (r *QuestionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.c.q().ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("delete question %q con respuestas: %w", id, domain.ErrConflict)
		}
		return fmt.Errorf("delete question: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (*entity.Question, error) {
	var q entity.Question
	var typ, opts string
	if err := row.Scan(&q.ID, &q.Text, &typ, &q.Required, &opts, &q.SortOrder, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, err
	}
	q.Type = entity.QuestionType(typ)
	if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	return &q, nil
}

// AnswerRepo respuestas del cuestionario sobre SQLite; option_ids en JSON.
type AnswerRepo struct {
	c conn
}

// NewAnswerRepository construye el adaptador.
func NewAnswerRepository(db *sql.DB) *AnswerRepo {
	return &AnswerRepo{c: conn{db: db}}
}

// Upsert inserta o reemplaza por (question_id, location_id) en una transacción.
func (r *AnswerRepo) Upsert(ctx context.Context, answers []entity.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	query := `
		INSERT INTO questionnaire_answers (question_id, location_id, text, option_ids, answered_by, answered_on)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (question_id, location_id) DO UPDATE SET text = excluded.text,
			option_ids = excluded.option_ids, answered_by = excluded.answered_by, answered_on = excluded.answered_on`
	return r.c.atomic(ctx, func(q dbtx) error {
		for _, a := range answers {
			ids := a.OptionIDs
			if ids == nil {
				ids = []string{}
			}
			raw, err := json.Marshal(ids)
			if err != nil {
				return fmt.Errorf("encode option ids: %w", err)
			}
			if _, err := q.ExecContext(ctx, query, a.QuestionID, a.LocationID, a.Text, string(raw), a.AnsweredBy, a.AnsweredOn); err != nil {
				return fmt.Errorf("upsert answer: %w", err)
			}
		}
		return nil
	})
}

// ListByLocation respuestas de una ubicación.
func (r *AnswerRepo) ListByLocation(ctx context.Context, locationID string) ([]entity.Answer, error) {
	return r.list(ctx, `WHERE location_id = ?`, locationID)
}

// ListAll todas las respuestas.
func (r *AnswerRepo) ListAll(ctx context.Context) ([]entity.Answer, error) {
	return r.list(ctx, ``)
}

func (r *AnswerRepo) list(ctx context.Context, where string, args ...any) ([]entity.Answer, error) {
	rows, err := r.c.q().QueryContext(ctx, `
		SELECT question_id, location_id, text, option_ids, answered_by, answered_on
		FROM questionnaire_answers `+where+` ORDER BY location_id, question_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var list []entity.Answer
	for rows.Next() {
		var a entity.Answer
		var raw string
		if err := rows.Scan(&a.QuestionID, &a.LocationID, &a.Text, &raw, &a.AnsweredBy, &a.AnsweredOn); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &a.OptionIDs); err != nil {
			return nil, fmt.Errorf("decode option ids: %w", err)
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
	res, err := r.c.q().ExecContext(ctx, `DELETE FROM questionnaire_answers WHERE question_id = ?`, questionID)
	if err != nil {
		return 0, fmt.Errorf("delete answers: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
