package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo bodegas sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// GetByName obtiene una bodega por nombre.
func (r *WarehouseRepo) GetByName(ctx context.Context, name string) (*entity.Warehouse, error) {
	var w entity.Warehouse
	err := r.q.QueryRow(ctx, `SELECT name, COALESCE(company, '') FROM warehouses WHERE name = $1`, name).Scan(&w.Name, &w.Company)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, queryError("get warehouse", err)
	}
	return &w, nil
}

// List todas las bodegas ordenadas por nombre.
func (r *WarehouseRepo) List(ctx context.Context) ([]entity.Warehouse, error) {
	rows, err := r.q.Query(ctx, `SELECT name, COALESCE(company, '') FROM warehouses ORDER BY name`)
	if err != nil {
		return nil, queryError("list warehouses", err)
	}
	defer rows.Close()
	out := []entity.Warehouse{}
	for rows.Next() {
		var w entity.Warehouse
		if err := rows.Scan(&w.Name, &w.Company); err != nil {
			return nil, queryError("scan warehouse", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("list warehouses", err)
	}
	return out, nil
}
