package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/repository"
)

var _ repository.PriceRepository = (*PriceRepo)(nil)

// PriceRepo precios por lote y por lista sobre PostgreSQL.
type PriceRepo struct {
	q Querier
}

// NewPriceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPriceRepository(q Querier) *PriceRepo {
	return &PriceRepo{q: q}
}

// GetBatchPrice precio vigente más reciente del lote a la fecha asOf.
func (r *PriceRepo) GetBatchPrice(ctx context.Context, itemCode, batchID string, asOf time.Time) (*entity.PriceQuote, error) {
	return r.quote(ctx, "get batch price", `
		SELECT rate, COALESCE(currency, '')
		FROM batch_prices
		WHERE item_code = $1 AND batch_id = $2
		  AND (valid_from IS NULL OR valid_from <= $3)
		  AND (valid_to IS NULL OR valid_to >= $3)
		ORDER BY valid_from DESC NULLS LAST
		LIMIT 1`, itemCode, batchID, asOf)
}

// GetPriceListRate precio vigente más reciente del artículo en la lista indicada.
func (r *PriceRepo) GetPriceListRate(ctx context.Context, itemCode, priceList string, asOf time.Time) (*entity.PriceQuote, error) {
	return r.quote(ctx, "get price list rate", `
		SELECT rate, COALESCE(currency, '')
		FROM item_prices
		WHERE item_code = $1 AND price_list = $2
		  AND (valid_from IS NULL OR valid_from <= $3)
		  AND (valid_to IS NULL OR valid_to >= $3)
		ORDER BY valid_from DESC NULLS LAST
		LIMIT 1`, itemCode, priceList, asOf)
}

func (r *PriceRepo) quote(ctx context.Context, op, query string, args ...any) (*entity.PriceQuote, error) {
	var q entity.PriceQuote
	if err := r.q.QueryRow(ctx, query, args...).Scan(&q.Rate, &q.Currency); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, queryError(op, err)
	}
	return &q, nil
}
