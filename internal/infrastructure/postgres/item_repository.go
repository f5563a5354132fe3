package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo maestro de artículos sobre PostgreSQL.
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// GetByCode obtiene un artículo por código.
func (r *ItemRepo) GetByCode(ctx context.Context, code string) (*entity.Item, error) {
	query := `
		SELECT code, name, COALESCE(stock_uom, ''), COALESCE(default_warehouse, ''),
		       standard_rate, last_purchase_rate, valuation_rate
		FROM items WHERE code = $1`
	var it entity.Item
	err := r.q.QueryRow(ctx, query, code).Scan(
		&it.Code, &it.Name, &it.StockUOM, &it.DefaultWarehouse,
		&it.StandardRate, &it.LastPurchaseRate, &it.ValuationRate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, queryError("get item", err)
	}
	return &it, nil
}
