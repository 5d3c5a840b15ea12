package repository

import (
	"context"

	"github.com/jhoicas/inventario-audit/internal/domain/entity"
)

// QuestionRepository puerto de persistencia para preguntas del cuestionario.
type QuestionRepository interface {
	Create(ctx context.Context, q *entity.Question) error
	GetByID(ctx context.Context, id string) (*entity.Question, error)
	Update(ctx context.Context, q *entity.Question) error
	List(ctx context.Context) ([]*entity.Question, error)
	Delete(ctx context.Context, id string) error
}

// AnswerRepository puerto de persistencia para respuestas (clave única: question_id + location_id).
type AnswerRepository interface {
	Upsert(ctx context.Context, answers []entity.Answer) error
	ListByLocation(ctx context.Context, locationID string) ([]entity.Answer, error)
	ListAll(ctx context.Context) ([]entity.Answer, error)
	// DeleteByQuestion borra las respuestas de la pregunta y devuelve cuántas eliminó.
	DeleteByQuestion(ctx context.Context, questionID string) (int, error)
}
