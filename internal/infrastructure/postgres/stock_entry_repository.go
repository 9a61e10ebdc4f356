package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/material-stock-api/internal/domain/entity"
	"github.com/jhoicas/material-stock-api/internal/domain/repository"
)

var _ repository.StockEntryRepository = (*StockEntryRepo)(nil)

const entryColumns = `id, material_id, quantity_change, is_reserved, previous_value, new_value, notes, created_at, seq`

// StockEntryRepo implementación del ledger append-only sobre PostgreSQL
// (usable con pool o tx). No expone UPDATE ni DELETE: las entradas son
// inmutables.
type StockEntryRepo struct {
	q Querier
}

// NewStockEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockEntryRepository(q Querier) *StockEntryRepo {
	return &StockEntryRepo{q: q}
}

// Append persiste una entrada. seq lo asigna la secuencia de la tabla
// (desempate de created_at por orden de inserción).
func (r *StockEntryRepo) Append(ctx context.Context, entry *entity.StockEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_entries (id, material_id, quantity_change, is_reserved, previous_value, new_value, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		entry.ID, entry.MaterialID, entry.QuantityChange, entry.IsReserved,
		entry.PreviousValue, entry.NewValue, entry.Notes, entry.CreatedAt,
	).Scan(&entry.Seq)
	if err != nil {
		return fmt.Errorf("append stock entry: %w", err)
	}
	return nil
}

func (r *StockEntryRepo) queryEntries(ctx context.Context, query string, args ...any) ([]*entity.StockEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stock entries: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockEntry
	for rows.Next() {
		var e entity.StockEntry
		if err := rows.Scan(&e.ID, &e.MaterialID, &e.QuantityChange, &e.IsReserved,
			&e.PreviousValue, &e.NewValue, &e.Notes, &e.CreatedAt, &e.Seq); err != nil {
			return nil, fmt.Errorf("scan stock entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// ListByMaterialBetween entradas en [from, to] ascendente por created_at,
// desempate por seq. Usa el índice (material_id, created_at).
func (r *StockEntryRepo) ListByMaterialBetween(ctx context.Context, materialID string, from, to time.Time) ([]*entity.StockEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM stock_entries
		WHERE material_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at ASC, seq ASC`
	return r.queryEntries(ctx, query, materialID, from, to)
}

// ListRecent últimas entradas del material, la más reciente primero.
func (r *StockEntryRepo) ListRecent(ctx context.Context, materialID string, limit int) ([]*entity.StockEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM stock_entries
		WHERE material_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2`
	return r.queryEntries(ctx, query, materialID, limit)
}

// CountByMaterial total de entradas del material.
func (r *StockEntryRepo) CountByMaterial(ctx context.Context, materialID string) (int, error) {
	var total int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_entries WHERE material_id = $1`, materialID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count stock entries: %w", err)
	}
	return total, nil
}
