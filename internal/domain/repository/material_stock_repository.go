package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/material-stock-api/internal/domain/entity"
)

// MaterialStockRepository define el puerto de persistencia para registros de
// stock. La implementación es dueña exclusiva del estado persistido; el motor
// de ajustes y el reconstructor de tendencia no guardan estado entre llamadas.
type MaterialStockRepository interface {
	// GetByMaterialID devuelve el registro o (nil, nil) si no existe.
	GetByMaterialID(ctx context.Context, materialID string) (*entity.MaterialStock, error)

	// GetForUpdate devuelve el registro bloqueando su sección crítica
	// por material (fila con SELECT FOR UPDATE en SQL, lock por material
	// en memoria). Solo válido dentro de un TxRunner.Run. La espera es
	// acotada: al agotarse devuelve domain.ErrStoreUnavailable.
	GetForUpdate(ctx context.Context, materialID string) (*entity.MaterialStock, error)

	// Create inserta un registro nuevo. Devuelve domain.ErrConflict si el
	// material_id ya existe.
	Create(ctx context.Context, stock *entity.MaterialStock) error

	// Update persiste el registro completo.
	Update(ctx context.Context, stock *entity.MaterialStock) error

	// Delete elimina el registro. Las entradas del ledger que lo referencian
	// se conservan (referencia huérfana). domain.ErrNotFound si no existe.
	Delete(ctx context.Context, materialID string) error

	// List pagina sobre orden estable por material_id. search, si no es
	// vacío, filtra sin distinguir mayúsculas contra material_id o
	// description. Devuelve la página y el total de coincidencias.
	List(ctx context.Context, skip, limit int, search string) ([]*entity.MaterialStock, int, error)

	// LowStock devuelve los materiales con available <= threshold,
	// ordenados por material_id.
	LowStock(ctx context.Context, threshold decimal.Decimal) ([]*entity.MaterialStock, error)
}
