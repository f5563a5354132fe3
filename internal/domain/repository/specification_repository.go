package repository

import (
	"context"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
)

// SpecificationRepository puerto de hojas técnicas (TDS).
// Devuelve (nil, nil) si el artículo no tiene especificación; customer vacío = especificación general.
type SpecificationRepository interface {
	GetSpecification(ctx context.Context, itemCode, customer string) (*entity.Specification, error)
}
