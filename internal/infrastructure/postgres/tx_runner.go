package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/kardex-core/internal/application/kardex"
	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

// Ensure TxRunner implements kardex.TxRunner.
var _ kardex.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// La escritura de stock y el asiento del kardex comparten la misma tx:
// Commit confirma ambos, cualquier error revierte ambos.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	kardexRepo repository.KardexRepository,
	productRepo repository.ProductRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	kardexRepo := NewKardexRepository(tx)
	productRepo := NewProductRepository(tx)

	if err := fn(kardexRepo, productRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
