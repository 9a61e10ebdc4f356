package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/material-stock-api/internal/application/inventory"
	"github.com/jhoicas/material-stock-api/internal/domain"
	"github.com/jhoicas/material-stock-api/internal/domain/entity"
	"github.com/jhoicas/material-stock-api/internal/domain/repository"
)

// Comprobación de que Store cubre los puertos del ledger.
var _ repository.MaterialStockRepository = (*Store)(nil)
var _ repository.StockEntryRepository = (*Store)(nil)
var _ inventory.TxRunner = (*Store)(nil)

var errReadOnlyTx = errors.New("memory: escritura en transacción de solo lectura")
var errNoTx = errors.New("memory: GetForUpdate requiere TxRunner.Run")

// Store implementación de referencia del ledger en memoria. Mapa protegido
// por RWMutex global para la visibilidad, más un lock por material que
// serializa los ajustes concurrentes sobre el mismo material_id sin bloquear
// materiales distintos. La adquisición del lock por material es acotada:
// al agotarse la espera devuelve domain.ErrStoreUnavailable.
type Store struct {
	mu      sync.RWMutex
	stocks  map[string]*entity.MaterialStock
	entries map[string][]*entity.StockEntry
	seq     int64

	locks    sync.Map // materialID -> chan struct{} (capacidad 1)
	lockWait time.Duration
}

// NewStore construye el store vacío.
func NewStore() *Store {
	return &Store{
		stocks:   make(map[string]*entity.MaterialStock),
		entries:  make(map[string][]*entity.StockEntry),
		lockWait: 3 * time.Second,
	}
}

// SetLockWait ajusta la espera máxima del lock por material. Para tests.
func (s *Store) SetLockWait(d time.Duration) { s.lockWait = d }

// acquire toma el lock del material con espera acotada por ctx y lockWait.
func (s *Store) acquire(ctx context.Context, materialID string) (release func(), err error) {
	chAny, _ := s.locks.LoadOrStore(materialID, make(chan struct{}, 1))
	ch := chAny.(chan struct{})

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	default:
	}
	timer := time.NewTimer(s.lockWait)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("lock material %s: %w: %w", materialID, ctx.Err(), domain.ErrStoreUnavailable)
	case <-timer.C:
		return nil, fmt.Errorf("lock material %s: espera agotada: %w", materialID, domain.ErrStoreUnavailable)
	}
}

// ──────────────────────────────────────────────────────────────────────────
// MaterialStockRepository
// ──────────────────────────────────────────────────────────────────────────

// GetByMaterialID devuelve una copia del registro o (nil, nil) si no existe.
func (s *Store) GetByMaterialID(_ context.Context, materialID string) (*entity.MaterialStock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.stocks[materialID]; ok {
		return st.Clone(), nil
	}
	return nil, nil
}

// GetForUpdate solo tiene sentido dentro de TxRunner.Run.
func (s *Store) GetForUpdate(context.Context, string) (*entity.MaterialStock, error) {
	return nil, errNoTx
}

// Create inserta el registro. ErrConflict si el material_id ya existe.
func (s *Store) Create(_ context.Context, stock *entity.MaterialStock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stocks[stock.MaterialID]; ok {
		return fmt.Errorf("material %s: %w", stock.MaterialID, domain.ErrConflict)
	}
	s.stocks[stock.MaterialID] = stock.Clone()
	return nil
}

// Update sobrescribe el registro completo.
func (s *Store) Update(_ context.Context, stock *entity.MaterialStock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stocks[stock.MaterialID]; !ok {
		return fmt.Errorf("material %s: %w", stock.MaterialID, domain.ErrNotFound)
	}
	s.stocks[stock.MaterialID] = stock.Clone()
	return nil
}

// Delete elimina el registro; el ledger del material se conserva.
func (s *Store) Delete(_ context.Context, materialID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stocks[materialID]; !ok {
		return fmt.Errorf("material %s: %w", materialID, domain.ErrNotFound)
	}
	delete(s.stocks, materialID)
	return nil
}

// List pagina con orden estable por material_id y búsqueda opcional.
func (s *Store) List(_ context.Context, skip, limit int, search string) ([]*entity.MaterialStock, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(search)
	matched := make([]*entity.MaterialStock, 0, len(s.stocks))
	for _, st := range s.stocks {
		if needle != "" &&
			!strings.Contains(strings.ToLower(st.MaterialID), needle) &&
			!strings.Contains(strings.ToLower(st.Description), needle) {
			continue
		}
		matched = append(matched, st)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].MaterialID < matched[j].MaterialID })

	total := len(matched)
	if skip >= total {
		return []*entity.MaterialStock{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	page := make([]*entity.MaterialStock, 0, end-skip)
	for _, st := range matched[skip:end] {
		page = append(page, st.Clone())
	}
	return page, total, nil
}

// LowStock devuelve materiales con available <= threshold.
func (s *Store) LowStock(_ context.Context, threshold decimal.Decimal) ([]*entity.MaterialStock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*entity.MaterialStock
	for _, st := range s.stocks {
		if st.Available.LessThanOrEqual(threshold) {
			out = append(out, st.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MaterialID < out[j].MaterialID })
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────
// StockEntryRepository
// ──────────────────────────────────────────────────────────────────────────

// Append persiste una entrada del ledger asignando secuencia de inserción.
func (s *Store) Append(_ context.Context, entry *entity.StockEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(entry)
	return nil
}

func (s *Store) appendLocked(entry *entity.StockEntry) {
	s.seq++
	c := entry.Clone()
	c.Seq = s.seq
	entry.Seq = s.seq
	s.entries[c.MaterialID] = append(s.entries[c.MaterialID], c)
}

// ListByMaterialBetween entradas en [from, to] ascendente por created_at,
// desempate por secuencia de inserción.
func (s *Store) ListByMaterialBetween(_ context.Context, materialID string, from, to time.Time) ([]*entity.StockEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listBetween(s.entries, materialID, from, to), nil
}

func listBetween(entries map[string][]*entity.StockEntry, materialID string, from, to time.Time) []*entity.StockEntry {
	var out []*entity.StockEntry
	for _, e := range entries[materialID] {
		if e.CreatedAt.Before(from) || e.CreatedAt.After(to) {
			continue
		}
		out = append(out, e.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

// ListRecent últimas entradas del material, la más reciente primero.
func (s *Store) ListRecent(_ context.Context, materialID string, limit int) ([]*entity.StockEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listRecent(s.entries, materialID, limit), nil
}

func listRecent(entries map[string][]*entity.StockEntry, materialID string, limit int) []*entity.StockEntry {
	all := entries[materialID]
	out := make([]*entity.StockEntry, 0, len(all))
	for _, e := range all {
		out = append(out, e.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Seq > out[j].Seq
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CountByMaterial total de entradas del material.
func (s *Store) CountByMaterial(_ context.Context, materialID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries[materialID]), nil
}
