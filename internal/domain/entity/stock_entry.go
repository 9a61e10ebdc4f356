package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ejes sobre los que actúa un ajuste de stock.
const (
	AxisQuantity = "quantity" // cantidad total en mano
	AxisReserved = "reserved" // porción reservada
)

// StockEntry es un hecho inmutable del ledger: un cambio de cantidad o de
// reserva sobre un material. Nunca se modifica ni se elimina una vez escrito;
// el ledger es la fuente de verdad de "qué cambió y cuándo".
// PreviousValue y NewValue se miden sobre el eje indicado por IsReserved y
// cumplen NewValue = PreviousValue + QuantityChange.
type StockEntry struct {
	ID             string // uuid
	MaterialID     string // puede sobrevivir al MaterialStock (referencia huérfana)
	QuantityChange decimal.Decimal
	IsReserved     bool
	PreviousValue  decimal.Decimal
	NewValue       decimal.Decimal
	Notes          string
	CreatedAt      time.Time // clave de orden del ledger
	Seq            int64     // desempate por orden de inserción
}

// Axis devuelve el eje afectado por la entrada.
func (e *StockEntry) Axis() string {
	if e.IsReserved {
		return AxisReserved
	}
	return AxisQuantity
}

// Clone devuelve una copia independiente.
func (e *StockEntry) Clone() *StockEntry {
	c := *e
	return &c
}
