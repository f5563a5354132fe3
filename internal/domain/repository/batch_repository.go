package repository

import (
	"context"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
)

// BatchRepository puerto del catálogo de lotes (sistema de inventario externo).
// Devuelve los lotes con existencia de un artículo; warehouse vacío = todas las bodegas.
type BatchRepository interface {
	GetAvailableBatches(ctx context.Context, itemCode, warehouse string) ([]entity.Batch, error)
}
