package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/material-stock-api/internal/domain"
)

// MaterialStock representa el estado autoritativo de stock de un material:
// cantidad total, reservado y disponible (siempre derivado, nunca asignado
// de forma independiente).
type MaterialStock struct {
	MaterialID  string // asignado externamente, único y estable
	Description string
	Quantity    decimal.Decimal
	Reserved    decimal.Decimal
	Available   decimal.Decimal // = Quantity - Reserved
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecomputeAvailable recalcula Available = Quantity - Reserved. Debe llamarse
// tras cualquier mutación directa de Quantity o Reserved, antes de leer o
// persistir el registro.
func (m *MaterialStock) RecomputeAvailable() {
	m.Available = m.Quantity.Sub(m.Reserved)
}

// SetReserved fija el reservado y recalcula el disponible. Falla cuando el
// nuevo valor excede la cantidad total; nunca recorta en silencio.
func (m *MaterialStock) SetReserved(v decimal.Decimal) error {
	if v.GreaterThan(m.Quantity) {
		return &domain.InvariantViolationError{
			MaterialID: m.MaterialID,
			Quantity:   m.Quantity,
			Reserved:   v,
		}
	}
	m.Reserved = v
	m.RecomputeAvailable()
	return nil
}

// SetQuantity fija la cantidad total y recalcula el disponible. Falla cuando
// el nuevo valor queda por debajo de lo ya reservado.
func (m *MaterialStock) SetQuantity(v decimal.Decimal) error {
	if v.LessThan(m.Reserved) {
		return &domain.InvariantViolationError{
			MaterialID: m.MaterialID,
			Quantity:   v,
			Reserved:   m.Reserved,
		}
	}
	m.Quantity = v
	m.RecomputeAvailable()
	return nil
}

// Clone devuelve una copia independiente (los stores en memoria devuelven
// copias para que el caller no mute el estado interno).
func (m *MaterialStock) Clone() *MaterialStock {
	c := *m
	return &c
}
