package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/ispstock-api/internal/application/inventory"
)

var _ inventory.UnitOfWork = (*TxRunner)(nil)

// lockTimeout evita que una aprobación espere indefinidamente la fila de un ítem bloqueado.
const lockTimeout = "5s"

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Un pánico dentro de fn hace Rollback (defer) y se propaga.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "SET LOCAL lock_timeout = '"+lockTimeout+"'"); err != nil {
		return fmt.Errorf("lock timeout: %w", err)
	}

	repos := inventory.TxRepos{
		Items:     NewInventoryItemRepository(tx),
		Movements: NewInventoryMovementRepository(tx),
		GoodsOut:  NewGoodsOutRequestRepository(tx),
	}
	if err := fn(repos); err != nil {
		return classifyTxError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classifyTxError(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}
