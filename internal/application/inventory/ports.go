package inventory

import (
	"context"

	"github.com/jhoicas/material-stock-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una unidad atómica del store,
// pasando repositorios atados a esa unidad. Garantiza que la actualización
// del registro de stock y el append al ledger sean visibles juntos o no
// sean visibles en absoluto.
type TxRunner interface {
	// Run unidad de lectura-modificación-escritura. Si fn devuelve error
	// no queda ningún escrito.
	Run(ctx context.Context, fn func(
		stocks repository.MaterialStockRepository,
		entries repository.StockEntryRepository,
	) error) error

	// RunReadOnly unidad de solo lectura sobre un punto consistente: el
	// registro de stock y las entradas del ledger se leen de la misma
	// foto, nunca un registro actualizado sin su entrada correspondiente.
	RunReadOnly(ctx context.Context, fn func(
		stocks repository.MaterialStockRepository,
		entries repository.StockEntryRepository,
	) error) error
}
