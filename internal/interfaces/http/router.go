package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/material-stock-api/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	InventoryUC *inventory.UseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api/v1")

	inv := api.Group("/inventory")
	h := NewInventoryHandler(deps.InventoryUC)

	// low-stock antes de :material_id para que no lo capture el path param
	inv.Get("/low-stock", h.LowStock)

	inv.Get("/", h.List)
	inv.Post("/", h.Create)
	inv.Get("/:material_id", h.Get)
	inv.Put("/:material_id", h.Update)
	inv.Delete("/:material_id", h.Delete)
	inv.Post("/:material_id/adjust", h.Adjust)
	inv.Get("/:material_id/trend", h.Trend)
	inv.Get("/:material_id/history", h.History)
}
