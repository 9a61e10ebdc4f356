package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMaterialRequest body para POST /api/v1/inventory.
type CreateMaterialRequest struct {
	MaterialID  string          `json:"material_id"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reserved    decimal.Decimal `json:"reserved"` // opcional, por defecto 0
}

// UpdateMaterialRequest body para PUT /api/v1/inventory/:material_id.
// Campo ausente = sin cambio.
type UpdateMaterialRequest struct {
	Description *string          `json:"description,omitempty"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	Reserved    *decimal.Decimal `json:"reserved,omitempty"`
}

// AdjustStockRequest body para POST /api/v1/inventory/:material_id/adjust.
// quantity_change positivo aumenta, negativo disminuye; is_reserved indica
// si el delta aplica al reservado o a la cantidad total.
type AdjustStockRequest struct {
	QuantityChange decimal.Decimal `json:"quantity_change"`
	IsReserved     bool            `json:"is_reserved"`
	Notes          string          `json:"notes,omitempty"`
}

// MaterialResponse registro de stock en respuestas.
type MaterialResponse struct {
	MaterialID  string          `json:"material_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reserved    decimal.Decimal `json:"reserved"`
	Available   decimal.Decimal `json:"available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// MaterialListResponse página de materiales con total de coincidencias.
type MaterialListResponse struct {
	Items []MaterialResponse `json:"items"`
	Total int                `json:"total"`
}

// StockEntryResponse entrada del ledger en respuestas de historial.
type StockEntryResponse struct {
	ID             string          `json:"id"`
	MaterialID     string          `json:"material_id"`
	QuantityChange decimal.Decimal `json:"quantity_change"`
	IsReserved     bool            `json:"is_reserved"`
	PreviousValue  decimal.Decimal `json:"previous_value"`
	NewValue       decimal.Decimal `json:"new_value"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TrendPointResponse snapshot diario de la tendencia.
type TrendPointResponse struct {
	Date      string          `json:"date"` // YYYY-MM-DD
	Quantity  decimal.Decimal `json:"quantity"`
	Reserved  decimal.Decimal `json:"reserved"`
	Available decimal.Decimal `json:"available"`
}
