package repository

import (
	"context"
	"time"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
)

// PriceRepository puerto de precios. Un precio ausente se reporta como (nil, nil);
// el error queda reservado para fallas del colaborador.
type PriceRepository interface {
	// GetBatchPrice precio específico del lote vigente a asOf.
	GetBatchPrice(ctx context.Context, itemCode, batchID string, asOf time.Time) (*entity.PriceQuote, error)
	// GetPriceListRate precio del artículo en la lista indicada vigente a asOf.
	GetPriceListRate(ctx context.Context, itemCode, priceList string, asOf time.Time) (*entity.PriceQuote, error)
}
