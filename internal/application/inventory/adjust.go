package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/material-stock-api/internal/domain"
	"github.com/jhoicas/material-stock-api/internal/domain/entity"
	"github.com/jhoicas/material-stock-api/internal/domain/repository"
)

// Adjust aplica un delta con signo sobre el eje indicado (quantity o
// reserved) y registra la entrada correspondiente en el ledger, como una
// sola unidad atómica: o se ven ambos escritos o ninguno. Un ajuste
// rechazado no escribe nada.
//
// Reglas: sobre reserved el nuevo valor no puede ser negativo ni exceder la
// cantidad total; sobre quantity el nuevo valor no puede quedar por debajo de
// lo reservado.
func (uc *UseCase) Adjust(ctx context.Context, materialID string, delta decimal.Decimal, axis string, notes string) (*entity.MaterialStock, error) {
	if axis != entity.AxisQuantity && axis != entity.AxisReserved {
		return nil, fmt.Errorf("eje %q: %w", axis, domain.ErrInvalidInput)
	}

	var updated *entity.MaterialStock
	err := uc.tx.Run(ctx, func(stocks repository.MaterialStockRepository, entries repository.StockEntryRepository) error {
		// Sección crítica por material: GetForUpdate serializa los
		// ajustes concurrentes sobre el mismo material_id.
		stock, err := stocks.GetForUpdate(ctx, materialID)
		if err != nil {
			return err
		}
		if stock == nil {
			return fmt.Errorf("material %s: %w", materialID, domain.ErrNotFound)
		}

		isReserved := axis == entity.AxisReserved
		var previous decimal.Decimal
		if isReserved {
			previous = stock.Reserved
		} else {
			previous = stock.Quantity
		}
		newValue := previous.Add(delta)

		if isReserved && newValue.IsNegative() {
			return &domain.InvalidAdjustmentError{
				MaterialID: materialID,
				Axis:       entity.AxisReserved,
				Previous:   previous,
				Delta:      delta,
				Reserved:   stock.Reserved,
			}
		}
		if !isReserved && newValue.LessThan(stock.Reserved) {
			return &domain.InvalidAdjustmentError{
				MaterialID: materialID,
				Axis:       entity.AxisQuantity,
				Previous:   previous,
				Delta:      delta,
				Reserved:   stock.Reserved,
			}
		}

		// Los setters recalculan el disponible; SetReserved además rechaza
		// un reservado por encima de la cantidad total.
		if isReserved {
			if err := stock.SetReserved(newValue); err != nil {
				return err
			}
		} else {
			if err := stock.SetQuantity(newValue); err != nil {
				return err
			}
		}
		now := time.Now().UTC()
		stock.UpdatedAt = now

		if err := stocks.Update(ctx, stock); err != nil {
			return err
		}
		if err := entries.Append(ctx, &entity.StockEntry{
			ID:             uuid.New().String(),
			MaterialID:     materialID,
			QuantityChange: delta,
			IsReserved:     isReserved,
			PreviousValue:  previous,
			NewValue:       newValue,
			Notes:          notes,
			CreatedAt:      now,
		}); err != nil {
			return err
		}
		updated = stock
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("material_id", materialID).
		Str("axis", axis).
		Str("delta", delta.String()).
		Str("available", updated.Available.String()).
		Msg("ajuste de stock aplicado")
	return updated, nil
}
