package repository

import (
	"context"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
)

// ItemRepository puerto del maestro de artículos. Devuelve (nil, nil) si no existe.
type ItemRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Item, error)
}
