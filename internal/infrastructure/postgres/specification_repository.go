package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/repository"
)

var _ repository.SpecificationRepository = (*SpecificationRepo)(nil)

// SpecificationRepo hojas técnicas (TDS) sobre PostgreSQL.
type SpecificationRepo struct {
	q Querier
}

// NewSpecificationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSpecificationRepository(q Querier) *SpecificationRepo {
	return &SpecificationRepo{q: q}
}

// GetSpecification prefiere la especificación del cliente; si no existe usa la general (customer = ”).
func (r *SpecificationRepo) GetSpecification(ctx context.Context, itemCode, customer string) (*entity.Specification, error) {
	var id int64
	spec := entity.Specification{ItemCode: itemCode}
	err := r.q.QueryRow(ctx, `
		SELECT id, customer
		FROM specifications
		WHERE item_code = $1 AND (customer = $2 OR customer = '')
		ORDER BY (customer = $2) DESC, id
		LIMIT 1`, itemCode, customer).Scan(&id, &spec.Customer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, queryError("get specification", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT name, min_value, max_value
		FROM specification_parameters
		WHERE specification_id = $1
		ORDER BY position, name`, id)
	if err != nil {
		return nil, queryError("list specification parameters", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p entity.ParameterSpec
		var lo, hi *decimal.Decimal
		if err := rows.Scan(&p.Name, &lo, &hi); err != nil {
			return nil, queryError("scan specification parameter", err)
		}
		p.Min, p.Max = lo, hi
		spec.Parameters = append(spec.Parameters, p)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("list specification parameters", err)
	}
	return &spec, nil
}
