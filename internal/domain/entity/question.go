package entity

import "time"

// QuestionType tipo de respuesta esperada por una pregunta del cuestionario.
type QuestionType string

const (
	QuestionText         QuestionType = "text"
	QuestionSingleSelect QuestionType = "singleSelect"
	QuestionMultiSelect  QuestionType = "multiSelect"
	QuestionYesNo        QuestionType = "yesNo"
)

// Valid indica si t es un tipo conocido.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionText, QuestionSingleSelect, QuestionMultiSelect, QuestionYesNo:
		return true
	}
	return false
}

// HasOptions indica si el tipo requiere lista de opciones.
func (t QuestionType) HasOptions() bool {
	return t == QuestionSingleSelect || t == QuestionMultiSelect
}

// QuestionOption opción seleccionable.
type QuestionOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Question pregunta del cuestionario de auditoría por ubicación.
type Question struct {
	ID        string
	Text      string
	Type      QuestionType
	Required  bool
	Options   []QuestionOption
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AnswerKey clave compuesta (pregunta, ubicación).
type AnswerKey struct {
	QuestionID string
	LocationID string
}

// Answer respuesta única por (pregunta, ubicación). Text para text/yesNo; OptionIDs (ordenados) para selects.
type Answer struct {
	QuestionID string
	LocationID string
	Text       string
	OptionIDs  []string
	AnsweredBy string
	AnsweredOn time.Time
}

// Key devuelve la clave compuesta de la respuesta.
func (a Answer) Key() AnswerKey {
	return AnswerKey{QuestionID: a.QuestionID, LocationID: a.LocationID}
}
