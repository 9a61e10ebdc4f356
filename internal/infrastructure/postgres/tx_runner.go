package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/material-stock-api/internal/application/inventory"
	"github.com/jhoicas/material-stock-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con
// repositorios atados a esa tx. El FOR UPDATE de GetForUpdate da la sección
// crítica por material (fila); lock_timeout acota la espera para que un
// ajuste concurrente no cuelgue: al agotarse sale como
// domain.ErrStoreUnavailable y el caller decide reintentar.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. Fallo de fn = rollback = cero escritos.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stocks repository.MaterialStockRepository,
	entries repository.StockEntryRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SET LOCAL lock_timeout = '3s'`); err != nil {
		return fmt.Errorf("set lock_timeout: %w", err)
	}

	if err := fn(NewMaterialStockRepository(tx), NewStockEntryRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunReadOnly ejecuta fn en una transacción REPEATABLE READ de solo lectura:
// registro y ledger se leen del mismo snapshot, nunca un registro actualizado
// sin su entrada correspondiente.
func (r *TxRunner) RunReadOnly(ctx context.Context, fn func(
	stocks repository.MaterialStockRepository,
	entries repository.StockEntryRepository,
) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("begin read-only transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewMaterialStockRepository(tx), NewStockEntryRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit read-only transaction: %w", err)
	}
	return nil
}
