package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/material-stock-api/internal/domain"
	"github.com/jhoicas/material-stock-api/internal/domain/entity"
	"github.com/jhoicas/material-stock-api/internal/domain/repository"
)

// Run ejecuta fn sobre una transacción en memoria: GetForUpdate toma el lock
// del material (espera acotada), las escrituras quedan en staging y se
// aplican de una sola vez bajo el mutex global si fn termina sin error.
// Un fn que falla no deja ningún escrito.
func (s *Store) Run(ctx context.Context, fn func(
	stocks repository.MaterialStockRepository,
	entries repository.StockEntryRepository,
) error) error {
	tx := &memTx{store: s}
	defer tx.releaseAll()

	if err := fn(tx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// RunReadOnly ejecuta fn sobre una foto consistente: se sostiene el RLock
// global durante toda la función, de modo que registro y ledger se leen del
// mismo punto y ningún commit puede intercalarse a medias.
func (s *Store) RunReadOnly(_ context.Context, fn func(
	stocks repository.MaterialStockRepository,
	entries repository.StockEntryRepository,
) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := &memReader{store: s}
	return fn(r, r)
}

// memTx transacción de escritura: lecturas contra el store con overlay de lo
// ya escrito en la propia transacción, escrituras en staging.
type memTx struct {
	store    *Store
	releases []func()
	locked   map[string]bool

	stagedStocks  map[string]*entity.MaterialStock
	stagedDeletes map[string]bool
	stagedEntries []*entity.StockEntry
}

var _ repository.MaterialStockRepository = (*memTx)(nil)
var _ repository.StockEntryRepository = (*memTx)(nil)

func (t *memTx) releaseAll() {
	for _, release := range t.releases {
		release()
	}
}

func (t *memTx) commit() {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, st := range t.stagedStocks {
		s.stocks[id] = st
	}
	for id := range t.stagedDeletes {
		delete(s.stocks, id)
	}
	for _, e := range t.stagedEntries {
		s.appendLocked(e)
	}
}

// GetForUpdate toma el lock del material y lee su estado vigente. Materiales
// distintos no se bloquean entre sí.
func (t *memTx) GetForUpdate(ctx context.Context, materialID string) (*entity.MaterialStock, error) {
	if !t.locked[materialID] {
		release, err := t.store.acquire(ctx, materialID)
		if err != nil {
			return nil, err
		}
		if t.locked == nil {
			t.locked = map[string]bool{}
		}
		t.locked[materialID] = true
		t.releases = append(t.releases, release)
	}
	return t.GetByMaterialID(ctx, materialID)
}

func (t *memTx) GetByMaterialID(ctx context.Context, materialID string) (*entity.MaterialStock, error) {
	if t.stagedDeletes[materialID] {
		return nil, nil
	}
	if st, ok := t.stagedStocks[materialID]; ok {
		return st.Clone(), nil
	}
	return t.store.GetByMaterialID(ctx, materialID)
}

func (t *memTx) Create(ctx context.Context, stock *entity.MaterialStock) error {
	existing, err := t.GetByMaterialID(ctx, stock.MaterialID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("material %s: %w", stock.MaterialID, domain.ErrConflict)
	}
	t.stage(stock)
	return nil
}

func (t *memTx) Update(ctx context.Context, stock *entity.MaterialStock) error {
	existing, err := t.GetByMaterialID(ctx, stock.MaterialID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("material %s: %w", stock.MaterialID, domain.ErrNotFound)
	}
	t.stage(stock)
	return nil
}

func (t *memTx) Delete(ctx context.Context, materialID string) error {
	existing, err := t.GetByMaterialID(ctx, materialID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("material %s: %w", materialID, domain.ErrNotFound)
	}
	if t.stagedDeletes == nil {
		t.stagedDeletes = map[string]bool{}
	}
	delete(t.stagedStocks, materialID)
	t.stagedDeletes[materialID] = true
	return nil
}

func (t *memTx) stage(stock *entity.MaterialStock) {
	if t.stagedStocks == nil {
		t.stagedStocks = map[string]*entity.MaterialStock{}
	}
	delete(t.stagedDeletes, stock.MaterialID)
	t.stagedStocks[stock.MaterialID] = stock.Clone()
}

func (t *memTx) List(ctx context.Context, skip, limit int, search string) ([]*entity.MaterialStock, int, error) {
	return t.store.List(ctx, skip, limit, search)
}

func (t *memTx) LowStock(ctx context.Context, threshold decimal.Decimal) ([]*entity.MaterialStock, error) {
	return t.store.LowStock(ctx, threshold)
}

func (t *memTx) Append(_ context.Context, entry *entity.StockEntry) error {
	t.stagedEntries = append(t.stagedEntries, entry)
	return nil
}

func (t *memTx) ListByMaterialBetween(ctx context.Context, materialID string, from, to time.Time) ([]*entity.StockEntry, error) {
	return t.store.ListByMaterialBetween(ctx, materialID, from, to)
}

func (t *memTx) ListRecent(ctx context.Context, materialID string, limit int) ([]*entity.StockEntry, error) {
	return t.store.ListRecent(ctx, materialID, limit)
}

func (t *memTx) CountByMaterial(ctx context.Context, materialID string) (int, error) {
	return t.store.CountByMaterial(ctx, materialID)
}

// memReader vista de solo lectura con acceso directo a los mapas: el RLock
// lo sostiene RunReadOnly, no cada método.
type memReader struct {
	store *Store
}

var _ repository.MaterialStockRepository = (*memReader)(nil)
var _ repository.StockEntryRepository = (*memReader)(nil)

func (r *memReader) GetByMaterialID(_ context.Context, materialID string) (*entity.MaterialStock, error) {
	if st, ok := r.store.stocks[materialID]; ok {
		return st.Clone(), nil
	}
	return nil, nil
}

func (r *memReader) GetForUpdate(context.Context, string) (*entity.MaterialStock, error) {
	return nil, errReadOnlyTx
}

func (r *memReader) Create(context.Context, *entity.MaterialStock) error { return errReadOnlyTx }
func (r *memReader) Update(context.Context, *entity.MaterialStock) error { return errReadOnlyTx }
func (r *memReader) Delete(context.Context, string) error                { return errReadOnlyTx }

func (r *memReader) List(_ context.Context, skip, limit int, search string) ([]*entity.MaterialStock, int, error) {
	return nil, 0, errReadOnlyTx
}

func (r *memReader) LowStock(context.Context, decimal.Decimal) ([]*entity.MaterialStock, error) {
	return nil, errReadOnlyTx
}

func (r *memReader) Append(context.Context, *entity.StockEntry) error { return errReadOnlyTx }

func (r *memReader) ListByMaterialBetween(_ context.Context, materialID string, from, to time.Time) ([]*entity.StockEntry, error) {
	return listBetween(r.store.entries, materialID, from, to), nil
}

func (r *memReader) ListRecent(_ context.Context, materialID string, limit int) ([]*entity.StockEntry, error) {
	return listRecent(r.store.entries, materialID, limit), nil
}

func (r *memReader) CountByMaterial(_ context.Context, materialID string) (int, error) {
	return len(r.store.entries[materialID]), nil
}
