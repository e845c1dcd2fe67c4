package domain

import (
	"errors"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrCodeNotMapped        = errors.New("código sin equivalencia AFIP")
	ErrAuthorityUnavailable = errors.New("servicio AFIP no disponible")
	ErrCAENotRecorded       = errors.New("CAE obtenido pero no registrado localmente")
)

// FieldError un error de validación sobre un campo de una entidad.
type FieldError struct {
	Entity  string
	Field   string
	Message string
}

func (e FieldError) String() string {
	return e.Entity + "." + e.Field + ": " + e.Message
}

// ValidationErrors agrupa todos los errores de validación de una operación en un único valor.
type ValidationErrors []FieldError

// Add agrega un error.
func (v *ValidationErrors) Add(entity, field, message string) {
	*v = append(*v, FieldError{Entity: entity, Field: field, Message: message})
}

// Err devuelve nil si no hay errores.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.String()
	}
	return "validación: " + strings.Join(parts, "; ")
}

// Is permite errors.Is(err, ErrInvalidInput).
func (v ValidationErrors) Is(target error) bool {
	return target == ErrInvalidInput
}
