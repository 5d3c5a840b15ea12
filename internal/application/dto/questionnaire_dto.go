package dto

import "time"

// QuestionOptionDTO opción de una pregunta de selección.
type QuestionOptionDTO struct {
	ID    string `json:"id" validate:"required,max=64"`
	Label string `json:"label" validate:"required,max=200"`
}

// CreateQuestionRequest entrada para crear una pregunta.
type CreateQuestionRequest struct {
	Text      string              `json:"text" validate:"required,max=1000"`
	Type      string              `json:"type" validate:"required,oneof=text singleSelect multiSelect yesNo"`
	Required  bool                `json:"required"`
	Options   []QuestionOptionDTO `json:"options" validate:"omitempty,dive"`
	SortOrder int                 `json:"sort_order"`
}

// UpdateQuestionRequest entrada para actualizar una pregunta.
type UpdateQuestionRequest struct {
	Text      *string             `json:"text" validate:"omitempty,max=1000"`
	Required  *bool               `json:"required"`
	Options   []QuestionOptionDTO `json:"options" validate:"omitempty,dive"`
	SortOrder *int                `json:"sort_order"`
}

// QuestionResponse salida de una pregunta.
type QuestionResponse struct {
	ID        string              `json:"id"`
	Text      string              `json:"text"`
	Type      string              `json:"type"`
	Required  bool                `json:"required"`
	Options   []QuestionOptionDTO `json:"options"`
	SortOrder int                 `json:"sort_order"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// SaveAnswerRequest body para PUT /api/questionnaire/answers.
type SaveAnswerRequest struct {
	QuestionID string   `json:"question_id" validate:"required"`
	LocationID string   `json:"location_id" validate:"required"`
	Text       string   `json:"text" validate:"omitempty,max=4000"`
	OptionIDs  []string `json:"option_ids"`
}

// AnswerResponse salida de una respuesta.
type AnswerResponse struct {
	QuestionID string    `json:"question_id"`
	LocationID string    `json:"location_id"`
	Text       string    `json:"text,omitempty"`
	OptionIDs  []string  `json:"option_ids,omitempty"`
	AnsweredBy string    `json:"answered_by"`
	AnsweredOn time.Time `json:"answered_on"`
}

// DeleteQuestionResponse resultado del borrado en cascada.
type DeleteQuestionResponse struct {
	QuestionID     string `json:"question_id"`
	AnswersRemoved int    `json:"answers_removed"`
}
