package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/material-stock-api/internal/application/dto"
	"github.com/jhoicas/material-stock-api/internal/application/inventory"
	"github.com/jhoicas/material-stock-api/internal/infrastructure/memory"
	apihttp "github.com/jhoicas/material-stock-api/internal/interfaces/http"
	"github.com/jhoicas/material-stock-api/pkg/logger"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	uc := inventory.NewUseCase(store, store, store, logger.Nop())
	app := fiber.New()
	apihttp.Router(app, apihttp.RouterDeps{InventoryUC: uc})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createMaterial(t *testing.T, app *fiber.App, id, quantity, reserved string) {
	t.Helper()
	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/inventory", fiber.Map{
		"material_id": id,
		"quantity":    quantity,
		"reserved":    reserved,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func TestCrear_201ConDisponibleDerivado(t *testing.T) {
	app := newApp(t)

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/inventory", fiber.Map{
		"material_id": "M1",
		"description": "tornillo M8",
		"quantity":    "100",
		"reserved":    "25",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	out := decode[dto.MaterialResponse](t, resp)
	assert.Equal(t, "M1", out.MaterialID)
	assert.True(t, out.Available.Equal(d("75")))
}

func TestCrear_Duplicado409(t *testing.T) {
	app := newApp(t)
	createMaterial(t, app, "M1", "10", "0")

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/inventory", fiber.Map{
		"material_id": "M1",
		"quantity":    "5",
	})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	out := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "CONFLICT", out.Code)
}

func TestCrear_InvarianteViolada400(t *testing.T) {
	app := newApp(t)

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/inventory", fiber.Map{
		"material_id": "M1",
		"quantity":    "10",
		"reserved":    "11",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	out := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INVARIANT_VIOLATION", out.Code)
}

func TestObtener_Inexistente404(t *testing.T) {
	app := newApp(t)

	resp := doJSON(t, app, fiber.MethodGet, "/api/v1/inventory/NADA", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	out := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "NOT_FOUND", out.Code)
}

func TestListar_PaginacionYTotal(t *testing.T) {
	app := newApp(t)
	createMaterial(t, app, "M1", "10", "0")
	createMaterial(t, app, "M2", "10", "0")
	createMaterial(t, app, "M3", "10", "0")

	resp := doJSON(t, app, fiber.MethodGet, "/api/v1/inventory?skip=1&limit=1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decode[dto.MaterialListResponse](t, resp)
	assert.Equal(t, 3, out.Total)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "M2", out.Items[0].MaterialID)
}

func TestActualizar_ParcialYRechazo(t *testing.T) {
	app := newApp(t)
	createMaterial(t, app, "M1", "100", "20")

	resp := doJSON(t, app, fiber.MethodPut, "/api/v1/inventory/M1", fiber.Map{
		"description": "nueva",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decode[dto.MaterialResponse](t, resp)
	assert.Equal(t, "nueva", out.Description)
	assert.True(t, out.Quantity.Equal(d("100")))

	resp = doJSON(t, app, fiber.MethodPut, "/api/v1/inventory/M1", fiber.Map{
		"reserved": "101",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	errOut := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INVARIANT_VIOLATION", errOut.Code)
}

func TestAjustar_SalidaYRechazo(t *testing.T) {
	app := newApp(t)
	createMaterial(t, app, "M1", "100", "0")

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/inventory/M1/adjust", fiber.Map{
		"quantity_change": "-30",
		"notes":           "salida a obra",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decode[dto.MaterialResponse](t, resp)
	assert.True(t, out.Quantity.Equal(d("70")))
	assert.True(t, out.Available.Equal(d("70")))

	// reservar 50 sobre el eje reserved
	resp = doJSON(t, app, fiber.MethodPost, "/api/v1/inventory/M1/adjust", fiber.Map{
		"quantity_change": "50",
		"is_reserved":     true,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out = decode[dto.MaterialResponse](t, resp)
	assert.True(t, out.Available.Equal(d("20")))

	// bajar quantity por debajo del reservado: 400 y estado intacto
	resp = doJSON(t, app, fiber.MethodPost, "/api/v1/inventory/M1/adjust", fiber.Map{
		"quantity_change": "-25",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	errOut := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INVALID_ADJUSTMENT", errOut.Code)

	resp = doJSON(t, app, fiber.MethodGet, "/api/v1/inventory/M1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out = decode[dto.MaterialResponse](t, resp)
	assert.True(t, out.Quantity.Equal(d("70")))
	assert.True(t, out.Reserved.Equal(d("50")))
}

func TestEliminar_204YLuego404(t *testing.T) {
	app := newApp(t)
	createMaterial(t, app, "M1", "10", "0")

	resp := doJSON(t, app, fiber.MethodDelete, "/api/v1/inventory/M1", nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, fiber.MethodDelete, "/api/v1/inventory/M1", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestHistorial_OrdenYLimite(t *testing.T) {
	app := newApp(t)
	createMaterial(t, app, "M1", "100", "0")

	for _, delta := range []string{"-10", "-20", "-5"} {
		resp := doJSON(t, app, fiber.MethodPost, "/api/v1/inventory/M1/adjust", fiber.Map{
			"quantity_change": delta,
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	resp := doJSON(t, app, fiber.MethodGet, "/api/v1/inventory/M1/history?limit=2", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decode[[]dto.StockEntryResponse](t, resp)
	require.Len(t, out, 2)
	assert.True(t, out[0].QuantityChange.Equal(d("-5")), "más reciente primero")
	assert.True(t, out[1].QuantityChange.Equal(d("-20")))
}

func TestHistorial_LimiteFueraDeRango400(t *testing.T) {
	app := newApp(t)
	createMaterial(t, app, "M1", "10", "0")

	resp := doJSON(t, app, fiber.MethodGet, "/api/v1/inventory/M1/history?limit=0", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestTendencia_PuntosPorDia(t *testing.T) {
	app := newApp(t)
	createMaterial(t, app, "M1", "100", "40")

	resp := doJSON(t, app, fiber.MethodGet, "/api/v1/inventory/M1/trend?days=7", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decode[[]dto.TrendPointResponse](t, resp)
	require.Len(t, out, 8, "7 días hacia atrás más hoy")
	for _, p := range out {
		assert.True(t, p.Available.Equal(d("60")))
		assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, p.Date)
	}
}

func TestTendencia_DiasInvalido400(t *testing.T) {
	app := newApp(t)
	createMaterial(t, app, "M1", "10", "0")

	resp := doJSON(t, app, fiber.MethodGet, "/api/v1/inventory/M1/trend?days=400", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestStockBajo_UmbralPorQuery(t *testing.T) {
	app := newApp(t)
	createMaterial(t, app, "BAJO", "10", "9")
	createMaterial(t, app, "ALTO", "100", "0")

	resp := doJSON(t, app, fiber.MethodGet, "/api/v1/inventory/low-stock?threshold=5", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decode[[]dto.MaterialResponse](t, resp)
	require.Len(t, out, 1)
	assert.Equal(t, "BAJO", out[0].MaterialID)
}
