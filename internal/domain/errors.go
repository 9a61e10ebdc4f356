package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrConflict           = errors.New("material_id duplicado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvariantViolation = errors.New("reservado no puede exceder la cantidad total")
	ErrInvalidAdjustment  = errors.New("ajuste de stock inválido")
	ErrStoreUnavailable   = errors.New("almacenamiento no disponible temporalmente")
)

// InvariantViolationError detalla una actualización directa que dejaría
// reserved > quantity. Envuelve ErrInvariantViolation (errors.Is).
type InvariantViolationError struct {
	MaterialID string
	Quantity   decimal.Decimal
	Reserved   decimal.Decimal
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("material %s: reservado %s excede la cantidad %s",
		e.MaterialID, e.Reserved, e.Quantity)
}

func (e *InvariantViolationError) Unwrap() error { return ErrInvariantViolation }

// InvalidAdjustmentError detalla un ajuste rechazado: reservado negativo o
// cantidad total por debajo de lo reservado. Envuelve ErrInvalidAdjustment.
type InvalidAdjustmentError struct {
	MaterialID string
	Axis       string // "quantity" o "reserved"
	Previous   decimal.Decimal
	Delta      decimal.Decimal
	Reserved   decimal.Decimal // reservado vigente al momento del rechazo
}

func (e *InvalidAdjustmentError) Error() string {
	return fmt.Sprintf("material %s: ajuste %s sobre %s deja %s=%s (reservado %s)",
		e.MaterialID, e.Delta, e.Axis, e.Axis, e.Previous.Add(e.Delta), e.Reserved)
}

func (e *InvalidAdjustmentError) Unwrap() error { return ErrInvalidAdjustment }
