// Package apierror provides standardized error response structures for the API
// and the sentinel errors that services return so handlers can pick a status
// code without leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

var (
	ErrNoEncontrado       = errors.New("registro no encontrado")
	ErrConflicto          = errors.New("el registro ya existe")
	ErrTransicionInvalida = errors.New("transicion de estado no permitida")
	ErrServicioExterno    = errors.New("servicio externo no disponible")
)

// ErrValidacion is returned by services when input is rejected before any write.
type ErrValidacion struct {
	Campos map[string]string
}

func (e *ErrValidacion) Error() string {
	keys := make([]string, 0, len(e.Campos))
	for k := range e.Campos {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Campos[k])
	}
	return "validacion: " + strings.Join(parts, "; ")
}

// Validacion builds an ErrValidacion for a single field.
func Validacion(campo, mensaje string) error {
	return &ErrValidacion{Campos: map[string]string{campo: mensaje}}
}

// NoEncontrado wraps ErrNoEncontrado with the entity name.
func NoEncontrado(entidad string, id any) error {
	return fmt.Errorf("%s %v: %w", entidad, id, ErrNoEncontrado)
}

// Transicion wraps ErrTransicionInvalida with origin and destination.
func Transicion(desde, hacia string) error {
	return fmt.Errorf("de %q a %q: %w", desde, hacia, ErrTransicionInvalida)
}

// Respuesta maps a service error to its HTTP status and JSON body. Unknown
// errors become a generic 500 so internal details never reach the client.
func Respuesta(err error) (int, any) {
	var v *ErrValidacion
	switch {
	case errors.As(err, &v):
		return http.StatusUnprocessableEntity, NewValidation(v.Campos)
	case errors.Is(err, ErrNoEncontrado):
		return http.StatusNotFound, New(err.Error())
	case errors.Is(err, ErrConflicto):
		return http.StatusConflict, New(err.Error())
	case errors.Is(err, ErrTransicionInvalida):
		return http.StatusUnprocessableEntity, New(err.Error())
	case errors.Is(err, ErrServicioExterno):
		return http.StatusBadGateway, New(err.Error())
	}
	return http.StatusInternalServerError, New("Error interno del servidor")
}
