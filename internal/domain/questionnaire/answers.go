// Package questionnaire reglas puras del cuestionario por ubicación: una sola respuesta
// por (pregunta, ubicación) y validación de la respuesta según el tipo de pregunta.
package questionnaire

import (
	"strings"

	"github.com/jhoicas/inventario-audit/internal/domain"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
)

// Yes/No valores aceptados para preguntas yesNo.
const (
	AnswerYes = "yes"
	AnswerNo  = "no"
)

// MergeAnswer reemplaza en su lugar la respuesta con la misma clave o la agrega al final.
// No modifica el slice recibido.
func MergeAnswer(existing []entity.Answer, incoming entity.Answer) []entity.Answer {
	out := make([]entity.Answer, len(existing), len(existing)+1)
	copy(out, existing)
	for i := range out {
		if out[i].Key() == incoming.Key() {
			out[i] = incoming
			return out
		}
	}
	return append(out, incoming)
}

// RemoveQuestion quita todas las respuestas de la pregunta indicada.
func RemoveQuestion(existing []entity.Answer, questionID string) []entity.Answer {
	out := make([]entity.Answer, 0, len(existing))
	for _, a := range existing {
		if a.QuestionID != questionID {
			out = append(out, a)
		}
	}
	return out
}

// ValidateQuestion verifica tipo, texto y opciones de una pregunta.
func ValidateQuestion(q entity.Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return domain.NewValidationError("el texto de la pregunta es obligatorio")
	}
	if !q.Type.Valid() {
		return domain.NewValidationError("tipo de pregunta desconocido: " + string(q.Type))
	}
	if !q.Type.HasOptions() {
		if len(q.Options) > 0 {
			return domain.NewValidationError("solo las preguntas de selección admiten opciones")
		}
		return nil
	}
	if len(q.Options) == 0 {
		return domain.NewValidationError("las preguntas de selección requieren opciones")
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, o := range q.Options {
		if strings.TrimSpace(o.ID) == "" || strings.TrimSpace(o.Label) == "" {
			return domain.NewValidationError("cada opción requiere id y label")
		}
		if _, dup := seen[o.ID]; dup {
			return domain.NewValidationError("opción repetida: " + o.ID)
		}
		seen[o.ID] = struct{}{}
	}
	return nil
}

// NormalizeAnswer valida la respuesta contra la pregunta y devuelve la forma canónica:
// text → Text sin espacios extremos; yesNo → "yes"/"no"; singleSelect → una opción;
// multiSelect → opciones sin repetir en el orden de la pregunta.
func NormalizeAnswer(q entity.Question, a entity.Answer) (entity.Answer, error) {
	if a.QuestionID != q.ID {
		return a, domain.NewValidationError("la respuesta no corresponde a la pregunta")
	}
	if strings.TrimSpace(a.LocationID) == "" {
		return a, domain.ErrLocationRequired
	}
	switch q.Type {
	case entity.QuestionText:
		a.Text = strings.TrimSpace(a.Text)
		a.OptionIDs = nil
		if q.Required && a.Text == "" {
			return a, domain.NewValidationError("respuesta obligatoria")
		}
	case entity.QuestionYesNo:
		v := strings.ToLower(strings.TrimSpace(a.Text))
		if v != AnswerYes && v != AnswerNo {
			return a, domain.NewValidationError("la respuesta debe ser yes o no")
		}
		a.Text = v
		a.OptionIDs = nil
	case entity.QuestionSingleSelect, entity.QuestionMultiSelect:
		ids, err := orderedOptions(q, a.OptionIDs)
		if err != nil {
			return a, err
		}
		if q.Type == entity.QuestionSingleSelect && len(ids) > 1 {
			return a, domain.NewValidationError("selección única admite una sola opción")
		}
		if q.Required && len(ids) == 0 {
			return a, domain.NewValidationError("respuesta obligatoria")
		}
		a.Text = ""
		a.OptionIDs = ids
	default:
		return a, domain.NewValidationError("tipo de pregunta desconocido")
	}
	return a, nil
}

func orderedOptions(q entity.Question, selected []string) ([]string, error) {
	chosen := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		chosen[id] = struct{}{}
	}
	out := make([]string, 0, len(chosen))
	for _, o := range q.Options {
		if _, ok := chosen[o.ID]; ok {
			out = append(out, o.ID)
			delete(chosen, o.ID)
		}
	}
	if len(chosen) > 0 {
		return nil, domain.NewValidationError("opción no válida para la pregunta")
	}
	return out, nil
}
