package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrValidation       = errors.New("entrada inválida")
	ErrDuplicate        = errors.New("recurso duplicado")
	ErrUnauthorized     = errors.New("no autorizado")
	ErrAccessDenied     = errors.New("acceso denegado")
	ErrConflict         = errors.New("conflicto con el estado actual")
	ErrPersistence      = errors.New("fallo de persistencia")
	ErrLocationRequired = errors.New("ubicación requerida")
)

// ValidationError detalla qué filas o campos fallaron la validación. errors.Is(err, ErrValidation) es true.
type ValidationError struct {
	Reason string
	Rows   []int // filas (base 1, sin encabezado) con problemas; vacío si no aplica
}

func (e *ValidationError) Error() string {
	if len(e.Rows) == 0 {
		return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: %s (filas %v)", ErrValidation.Error(), e.Reason, e.Rows)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError construye un ValidationError.
func NewValidationError(reason string, rows ...int) error {
	return &ValidationError{Reason: reason, Rows: rows}
}

// PersistenceError envuelve el error del colaborador de persistencia sin alterarlo.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// Persistence envuelve err como PersistenceError. Devuelve nil si err es nil y no
// re-envuelve errores de dominio ya clasificados.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPersistence) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) || errors.Is(err, ErrDuplicate) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
