package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo catálogo de lotes sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// GetAvailableBatches lotes con existencia positiva del artículo, con sus parámetros de calidad.
func (r *BatchRepo) GetAvailableBatches(ctx context.Context, itemCode, warehouse string) ([]entity.Batch, error) {
	query := `
		SELECT id, item_code, warehouse, qty, expiry_date, manufacture_date, incoming_rate, COALESCE(currency, '')
		FROM batches
		WHERE item_code = $1 AND ($2 = '' OR warehouse = $2) AND qty > 0
		ORDER BY id`
	rows, err := r.q.Query(ctx, query, itemCode, warehouse)
	if err != nil {
		return nil, queryError("list batches", err)
	}
	defer rows.Close()

	batches := []entity.Batch{}
	index := map[string]int{}
	ids := []string{}
	for rows.Next() {
		var b entity.Batch
		var expiry, mfg *time.Time
		var rate *decimal.Decimal
		if err := rows.Scan(&b.ID, &b.ItemCode, &b.Warehouse, &b.QuantityAvailable, &expiry, &mfg, &rate, &b.Currency); err != nil {
			return nil, queryError("scan batch", err)
		}
		b.ExpiryDate, b.ManufactureDate, b.UnitCostHint = utcDate(expiry), utcDate(mfg), rate
		index[b.ID] = len(batches)
		ids = append(ids, b.ID)
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("list batches", err)
	}
	if len(ids) == 0 {
		return batches, nil
	}

	prows, err := r.q.Query(ctx, `
		SELECT batch_id, name, value
		FROM batch_quality_parameters
		WHERE batch_id = ANY($1) AND value IS NOT NULL`, ids)
	if err != nil {
		return nil, queryError("list quality parameters", err)
	}
	defer prows.Close()
	for prows.Next() {
		var batchID, name string
		var value decimal.Decimal
		if err := prows.Scan(&batchID, &name, &value); err != nil {
			return nil, queryError("scan quality parameter", err)
		}
		b := &batches[index[batchID]]
		if b.QualityParameters == nil {
			b.QualityParameters = map[string]decimal.Decimal{}
		}
		b.QualityParameters[name] = value
	}
	if err := prows.Err(); err != nil {
		return nil, queryError("list quality parameters", err)
	}
	return batches, nil
}

// utcDate normaliza un DATE de PostgreSQL a medianoche UTC.
func utcDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
