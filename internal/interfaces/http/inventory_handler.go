package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/material-stock-api/internal/application/dto"
	"github.com/jhoicas/material-stock-api/internal/application/inventory"
	"github.com/jhoicas/material-stock-api/internal/domain"
	"github.com/jhoicas/material-stock-api/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP del ledger de stock. Capa fina:
// traduce requests al caso de uso y errores de dominio a códigos HTTP, sin
// lógica de inventario propia.
type InventoryHandler struct {
	uc *inventory.UseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.UseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// mapError traduce errores de dominio a respuestas HTTP. El mensaje lleva los
// valores que causaron el fallo (errores tipados del dominio).
func mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrInvariantViolation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVARIANT_VIOLATION", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidAdjustment):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ADJUSTMENT", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrStoreUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORE_UNAVAILABLE", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func toMaterialResponse(s *entity.MaterialStock) dto.MaterialResponse {
	return dto.MaterialResponse{
		MaterialID:  s.MaterialID,
		Description: s.Description,
		Quantity:    s.Quantity,
		Reserved:    s.Reserved,
		Available:   s.Available,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toEntryResponse(e *entity.StockEntry) dto.StockEntryResponse {
	return dto.StockEntryResponse{
		ID:             e.ID,
		MaterialID:     e.MaterialID,
		QuantityChange: e.QuantityChange,
		IsReserved:     e.IsReserved,
		PreviousValue:  e.PreviousValue,
		NewValue:       e.NewValue,
		Notes:          e.Notes,
		CreatedAt:      e.CreatedAt,
	}
}

// List godoc
// @Summary      Listar materiales
// @Tags         inventory
// @Produce      json
// @Param        skip    query  int     false  "Registros a omitir"
// @Param        limit   query  int     false  "Máximo de registros (por defecto 100)"
// @Param        search  query  string  false  "Busca en material_id o description"
// @Success      200  {object}  dto.MaterialListResponse
// @Router       /api/v1/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros de paginación inválidos"})
	}
	page.DefaultPage()

	items, total, err := h.uc.List(c.Context(), page.Skip, page.Limit, c.Query("search"))
	if err != nil {
		return mapError(c, err)
	}
	out := dto.MaterialListResponse{Items: make([]dto.MaterialResponse, 0, len(items)), Total: total}
	for _, s := range items {
		out.Items = append(out.Items, toMaterialResponse(s))
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear registro de stock de un material
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMaterialRequest  true  "material_id, description, quantity, reserved"
// @Success      201  {object}  dto.MaterialResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/v1/inventory [post]
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	stock, err := h.uc.Create(c.Context(), inventory.CreateMaterialInput{
		MaterialID:  in.MaterialID,
		Description: in.Description,
		Quantity:    in.Quantity,
		Reserved:    in.Reserved,
	})
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMaterialResponse(stock))
}

// Get godoc
// @Summary      Obtener el stock de un material
// @Tags         inventory
// @Produce      json
// @Param        material_id  path  string  true  "ID externo del material"
// @Success      200  {object}  dto.MaterialResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/{material_id} [get]
func (h *InventoryHandler) Get(c *fiber.Ctx) error {
	stock, err := h.uc.Get(c.Context(), c.Params("material_id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(toMaterialResponse(stock))
}

// Update godoc
// @Summary      Actualizar campos de un material
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        material_id  path  string                     true  "ID externo del material"
// @Param        body         body  dto.UpdateMaterialRequest  true  "Campos a cambiar"
// @Success      200  {object}  dto.MaterialResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/{material_id} [put]
func (h *InventoryHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	stock, err := h.uc.Update(c.Context(), c.Params("material_id"), inventory.UpdateMaterialInput{
		Description: in.Description,
		Quantity:    in.Quantity,
		Reserved:    in.Reserved,
	})
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(toMaterialResponse(stock))
}

// Delete godoc
// @Summary      Eliminar el registro de stock de un material
// @Description  El historial del ledger se conserva como referencia huérfana.
// @Tags         inventory
// @Param        material_id  path  string  true  "ID externo del material"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/{material_id} [delete]
func (h *InventoryHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("material_id")); err != nil {
		return mapError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Adjust godoc
// @Summary      Ajustar stock (delta con signo sobre quantity o reserved)
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        material_id  path  string                  true  "ID externo del material"
// @Param        body         body  dto.AdjustStockRequest  true  "quantity_change, is_reserved, notes"
// @Success      200  {object}  dto.MaterialResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/{material_id}/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	axis := entity.AxisQuantity
	if in.IsReserved {
		axis = entity.AxisReserved
	}
	stock, err := h.uc.Adjust(c.Context(), c.Params("material_id"), in.QuantityChange, axis, in.Notes)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(toMaterialResponse(stock))
}

// LowStock godoc
// @Summary      Materiales con disponible igual o inferior al umbral
// @Tags         inventory
// @Produce      json
// @Param        threshold  query  number  false  "Umbral de disponible (por defecto 10)"
// @Success      200  {array}  dto.MaterialResponse
// @Router       /api/v1/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	threshold := decimal.NewFromInt(10)
	if raw := c.Query("threshold"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "threshold inválido"})
		}
		threshold = parsed
	}
	items, err := h.uc.LowStock(c.Context(), threshold)
	if err != nil {
		return mapError(c, err)
	}
	out := make([]dto.MaterialResponse, 0, len(items))
	for _, s := range items {
		out = append(out, toMaterialResponse(s))
	}
	return c.JSON(out)
}

// Trend godoc
// @Summary      Tendencia diaria de stock reconstruida desde el ledger
// @Description  Un snapshot por día calendario de los últimos N días:
//
//	línea base con el estado actual, sobrescrita con los valores
//	conocidos del ledger para cada día.
//
// @Tags         inventory
// @Produce      json
// @Param        material_id  path   string  true   "ID externo del material"
// @Param        days         query  int     false  "Días hacia atrás (por defecto 30)"
// @Success      200  {array}   dto.TrendPointResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/{material_id}/trend [get]
func (h *InventoryHandler) Trend(c *fiber.Ctx) error {
	days := 30
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 365 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "days debe estar entre 1 y 365"})
		}
		days = parsed
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	snapshots, err := h.uc.Trend(c.Context(), c.Params("material_id"), start, end)
	if err != nil {
		return mapError(c, err)
	}
	out := make([]dto.TrendPointResponse, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, dto.TrendPointResponse{
			Date:      s.Date.Format("2006-01-02"),
			Quantity:  s.Quantity,
			Reserved:  s.Reserved,
			Available: s.Available,
		})
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Historial de ajustes de un material
// @Tags         inventory
// @Produce      json
// @Param        material_id  path   string  true   "ID externo del material"
// @Param        limit        query  int     false  "Máximo de entradas (por defecto 50)"
// @Success      200  {array}   dto.StockEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/{material_id}/history [get]
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "limit debe estar entre 1 y 500"})
		}
		limit = parsed
	}
	entries, err := h.uc.History(c.Context(), c.Params("material_id"), limit)
	if err != nil {
		return mapError(c, err)
	}
	out := make([]dto.StockEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	return c.JSON(out)
}
