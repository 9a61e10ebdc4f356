package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/material-stock-api/internal/domain"
	"github.com/jhoicas/material-stock-api/internal/domain/entity"
	"github.com/jhoicas/material-stock-api/internal/domain/repository"
	"github.com/jhoicas/material-stock-api/pkg/logger"
)

// UseCase agrupa las operaciones del ledger de stock: CRUD de materiales,
// ajustes transaccionales, historial y tendencia diaria. No guarda estado
// propio entre llamadas; todo vive en el store.
type UseCase struct {
	tx      TxRunner
	stocks  repository.MaterialStockRepository
	entries repository.StockEntryRepository
	log     *logger.Logger
}

// NewUseCase construye el caso de uso. stocks y entries son los repositorios
// atados al pool (lecturas sueltas); tx produce repositorios atados a una
// unidad atómica para las mutaciones.
func NewUseCase(
	tx TxRunner,
	stocks repository.MaterialStockRepository,
	entries repository.StockEntryRepository,
	log *logger.Logger,
) *UseCase {
	return &UseCase{tx: tx, stocks: stocks, entries: entries, log: log}
}

// CreateMaterialInput entrada para crear un registro de stock.
type CreateMaterialInput struct {
	MaterialID  string
	Description string
	Quantity    decimal.Decimal
	Reserved    decimal.Decimal // opcional, por defecto 0
}

// Create crea el registro de stock de un material. Devuelve
// domain.ErrConflict si el material_id ya existe.
func (uc *UseCase) Create(ctx context.Context, in CreateMaterialInput) (*entity.MaterialStock, error) {
	if in.MaterialID == "" {
		return nil, fmt.Errorf("material_id vacío: %w", domain.ErrInvalidInput)
	}
	if in.Quantity.IsNegative() || in.Reserved.IsNegative() {
		return nil, fmt.Errorf("material %s: cantidades negativas: %w", in.MaterialID, domain.ErrInvalidInput)
	}
	if in.Reserved.GreaterThan(in.Quantity) {
		return nil, &domain.InvariantViolationError{
			MaterialID: in.MaterialID,
			Quantity:   in.Quantity,
			Reserved:   in.Reserved,
		}
	}
	now := time.Now().UTC()
	stock := &entity.MaterialStock{
		MaterialID:  in.MaterialID,
		Description: in.Description,
		Quantity:    in.Quantity,
		Reserved:    in.Reserved,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	stock.RecomputeAvailable()
	if err := uc.stocks.Create(ctx, stock); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("material_id", stock.MaterialID).
		Str("quantity", stock.Quantity.String()).
		Str("reserved", stock.Reserved.String()).
		Msg("material creado")
	return stock, nil
}

// Get obtiene el registro de stock de un material.
func (uc *UseCase) Get(ctx context.Context, materialID string) (*entity.MaterialStock, error) {
	stock, err := uc.stocks.GetByMaterialID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, fmt.Errorf("material %s: %w", materialID, domain.ErrNotFound)
	}
	return stock, nil
}

// List pagina los materiales con búsqueda opcional (material_id o
// description, sin distinguir mayúsculas). Devuelve página y total.
func (uc *UseCase) List(ctx context.Context, skip, limit int, search string) ([]*entity.MaterialStock, int, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 100
	}
	return uc.stocks.List(ctx, skip, limit, search)
}

// UpdateMaterialInput campos opcionales para actualización completa.
// Un puntero nil deja el campo como está.
type UpdateMaterialInput struct {
	Description *string
	Quantity    *decimal.Decimal
	Reserved    *decimal.Decimal
}

// Update aplica una actualización de campos completos dentro de la sección
// crítica del material. No escribe en el ledger: el historial registra solo
// ajustes. Falla con InvariantViolation si reservado quedaría por encima de
// la cantidad; en ese caso no se escribe nada.
func (uc *UseCase) Update(ctx context.Context, materialID string, in UpdateMaterialInput) (*entity.MaterialStock, error) {
	if in.Quantity != nil && in.Quantity.IsNegative() {
		return nil, fmt.Errorf("material %s: cantidad negativa: %w", materialID, domain.ErrInvalidInput)
	}
	if in.Reserved != nil && in.Reserved.IsNegative() {
		return nil, fmt.Errorf("material %s: reservado negativo: %w", materialID, domain.ErrInvalidInput)
	}
	var updated *entity.MaterialStock
	err := uc.tx.Run(ctx, func(stocks repository.MaterialStockRepository, _ repository.StockEntryRepository) error {
		stock, err := stocks.GetForUpdate(ctx, materialID)
		if err != nil {
			return err
		}
		if stock == nil {
			return fmt.Errorf("material %s: %w", materialID, domain.ErrNotFound)
		}
		if in.Description != nil {
			stock.Description = *in.Description
		}
		// Se aplican ambos ejes y se valida el estado resultante una sola
		// vez: bajar cantidad y reservado juntos es válido mientras el
		// estado final cumpla reservado <= cantidad.
		if in.Quantity != nil {
			stock.Quantity = *in.Quantity
		}
		if in.Reserved != nil {
			stock.Reserved = *in.Reserved
		}
		if stock.Reserved.GreaterThan(stock.Quantity) {
			return &domain.InvariantViolationError{
				MaterialID: stock.MaterialID,
				Quantity:   stock.Quantity,
				Reserved:   stock.Reserved,
			}
		}
		stock.RecomputeAvailable()
		stock.UpdatedAt = time.Now().UTC()
		if err := stocks.Update(ctx, stock); err != nil {
			return err
		}
		updated = stock
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete elimina el registro de stock. Las entradas del ledger conservan su
// material_id como referencia huérfana; trend e history sobre un material
// eliminado devuelven NotFound.
func (uc *UseCase) Delete(ctx context.Context, materialID string) error {
	if err := uc.stocks.Delete(ctx, materialID); err != nil {
		return err
	}
	uc.log.Info().Str("material_id", materialID).Msg("material eliminado")
	return nil
}

// LowStock devuelve los materiales con disponible igual o inferior al umbral.
func (uc *UseCase) LowStock(ctx context.Context, threshold decimal.Decimal) ([]*entity.MaterialStock, error) {
	return uc.stocks.LowStock(ctx, threshold)
}

// History devuelve las últimas entradas del ledger de un material, la más
// reciente primero. NotFound si el material no existe.
func (uc *UseCase) History(ctx context.Context, materialID string, limit int) ([]*entity.StockEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if _, err := uc.Get(ctx, materialID); err != nil {
		return nil, err
	}
	return uc.entries.ListRecent(ctx, materialID, limit)
}
