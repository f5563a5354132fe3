package repository

import (
	"context"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
)

// WarehouseRepository puerto de bodegas; valida el filtro de bodega de una solicitud.
type WarehouseRepository interface {
	GetByName(ctx context.Context, name string) (*entity.Warehouse, error)
	List(ctx context.Context) ([]entity.Warehouse, error)
}
