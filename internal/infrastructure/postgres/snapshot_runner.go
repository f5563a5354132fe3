package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	appalloc "github.com/rogerboy38/raven-ai-agent-sub002/internal/application/allocation"
)

var _ appalloc.SnapshotRunner = (*SnapshotRunner)(nil)

// SnapshotRunner ejecuta callbacks dentro de una transacción REPEATABLE READ de solo
// lectura: catálogo, especificaciones y precios se leen de la misma foto.
type SnapshotRunner struct {
	pool *pgxpool.Pool
}

// NewSnapshotRunner construye el runner con el pool.
func NewSnapshotRunner(pool *pgxpool.Pool) *SnapshotRunner {
	return &SnapshotRunner{pool: pool}
}

// Run inicia la transacción, ejecuta fn con repos atados a la tx y la cierra.
func (r *SnapshotRunner) Run(ctx context.Context, fn func(repos appalloc.Repositories) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(Repositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Repositories construye todos los adaptadores de lectura sobre q (pool o tx).
func Repositories(q Querier) appalloc.Repositories {
	return appalloc.Repositories{
		Batches:        NewBatchRepository(q),
		Specifications: NewSpecificationRepository(q),
		Prices:         NewPriceRepository(q),
		Items:          NewItemRepository(q),
		Warehouses:     NewWarehouseRepository(q),
	}
}
