package dto

import (
	"time"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain"
)

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DateLayout formato de fechas en los cuerpos JSON.
const DateLayout = "2006-01-02"

// ParseAsOf interpreta la fecha de referencia opcional (vacía = ahora).
func ParseAsOf(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, domain.NewValidationError("as_of", "fecha inválida, use AAAA-MM-DD")
	}
	return t.UTC(), nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
