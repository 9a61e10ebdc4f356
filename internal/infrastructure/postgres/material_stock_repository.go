package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/material-stock-api/internal/domain"
	"github.com/jhoicas/material-stock-api/internal/domain/entity"
	"github.com/jhoicas/material-stock-api/internal/domain/repository"
)

var _ repository.MaterialStockRepository = (*MaterialStockRepo)(nil)

const stockColumns = `material_id, description, quantity, reserved, available, created_at, updated_at`

// MaterialStockRepo implementación de MaterialStockRepository sobre
// PostgreSQL (usable con pool o tx).
type MaterialStockRepo struct {
	q Querier
}

// NewMaterialStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMaterialStockRepository(q Querier) *MaterialStockRepo {
	return &MaterialStockRepo{q: q}
}

func scanStock(row pgx.Row) (*entity.MaterialStock, error) {
	var s entity.MaterialStock
	err := row.Scan(&s.MaterialID, &s.Description, &s.Quantity, &s.Reserved,
		&s.Available, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByMaterialID obtiene el registro o (nil, nil) si no existe.
func (r *MaterialStockRepo) GetByMaterialID(ctx context.Context, materialID string) (*entity.MaterialStock, error) {
	query := `SELECT ` + stockColumns + ` FROM material_stocks WHERE material_id = $1`
	s, err := scanStock(r.q.QueryRow(ctx, query, materialID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material stock: %w", err)
	}
	return s, nil
}

// GetForUpdate obtiene el registro bloqueando la fila (SELECT FOR UPDATE).
// El lock_timeout lo fija el TxRunner; si se agota devuelve
// domain.ErrStoreUnavailable.
func (r *MaterialStockRepo) GetForUpdate(ctx context.Context, materialID string) (*entity.MaterialStock, error) {
	query := `SELECT ` + stockColumns + ` FROM material_stocks WHERE material_id = $1 FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, materialID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isLockNotAvailable(err) {
			return nil, fmt.Errorf("lock material %s: %w", materialID, domain.ErrStoreUnavailable)
		}
		return nil, fmt.Errorf("get material stock for update: %w", err)
	}
	return s, nil
}

// Create inserta el registro. ErrConflict si el material_id ya existe.
func (r *MaterialStockRepo) Create(ctx context.Context, stock *entity.MaterialStock) error {
	query := `
		INSERT INTO material_stocks (material_id, description, quantity, reserved, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, stock.MaterialID, stock.Description,
		stock.Quantity, stock.Reserved, stock.Available, stock.CreatedAt, stock.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("material %s: %w", stock.MaterialID, domain.ErrConflict)
		}
		return fmt.Errorf("create material stock: %w", err)
	}
	return nil
}

// Update persiste el registro completo.
func (r *MaterialStockRepo) Update(ctx context.Context, stock *entity.MaterialStock) error {
	query := `
		UPDATE material_stocks
		SET description = $2, quantity = $3, reserved = $4, available = $5, updated_at = $6
		WHERE material_id = $1`
	tag, err := r.q.Exec(ctx, query, stock.MaterialID, stock.Description,
		stock.Quantity, stock.Reserved, stock.Available, stock.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update material stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("material %s: %w", stock.MaterialID, domain.ErrNotFound)
	}
	return nil
}

// Delete elimina el registro; las entradas del ledger no llevan FK en
// cascada y conservan su material_id.
func (r *MaterialStockRepo) Delete(ctx context.Context, materialID string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM material_stocks WHERE material_id = $1`, materialID)
	if err != nil {
		return fmt.Errorf("delete material stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("material %s: %w", materialID, domain.ErrNotFound)
	}
	return nil
}

// List pagina con orden estable por material_id; search filtra con ILIKE
// sobre material_id o description.
func (r *MaterialStockRepo) List(ctx context.Context, skip, limit int, search string) ([]*entity.MaterialStock, int, error) {
	where := ""
	args := []any{}
	if search != "" {
		where = ` WHERE material_id ILIKE $1 OR description ILIKE $1`
		args = append(args, "%"+search+"%")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM material_stocks` + where
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count material stocks: %w", err)
	}

	pos := len(args) + 1
	query := `SELECT ` + stockColumns + ` FROM material_stocks` + where +
		fmt.Sprintf(` ORDER BY material_id ASC LIMIT $%d OFFSET $%d`, pos, pos+1)
	args = append(args, limit, skip)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list material stocks: %w", err)
	}
	defer rows.Close()

	var list []*entity.MaterialStock
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan material stock: %w", err)
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}

// LowStock materiales con available <= threshold.
func (r *MaterialStockRepo) LowStock(ctx context.Context, threshold decimal.Decimal) ([]*entity.MaterialStock, error) {
	query := `SELECT ` + stockColumns + ` FROM material_stocks WHERE available <= $1 ORDER BY material_id ASC`
	rows, err := r.q.Query(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	defer rows.Close()

	var list []*entity.MaterialStock
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan material stock: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
