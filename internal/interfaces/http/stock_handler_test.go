package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelia-joyas/stock-api/internal/application/dto"
	"github.com/aurelia-joyas/stock-api/internal/application/stock"
	"github.com/aurelia-joyas/stock-api/internal/domain/entity"
	apphttp "github.com/aurelia-joyas/stock-api/internal/interfaces/http"
)

// stubStockRepo repositorio de solo lectura para el endpoint de disponibilidad.
type stubStockRepo struct {
	stocks map[string]entity.ProductStock
}

func (r *stubStockRepo) Get(_ context.Context, productID string) (*entity.ProductStock, error) {
	if st, ok := r.stocks[productID]; ok {
		cp := st
		return &cp, nil
	}
	return &entity.ProductStock{ProductID: productID, UnitCost: decimal.Zero}, nil
}

func (r *stubStockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.ProductStock, error) {
	return r.Get(ctx, productID)
}

func (r *stubStockRepo) Upsert(context.Context, *entity.ProductStock) error { return nil }

func (r *stubStockRepo) Reserve(context.Context, string, int64) (*entity.ProductStock, error) {
	return nil, nil
}

func buildAvailabilityApp(stocks map[string]entity.ProductStock) *fiber.App {
	availability := stock.NewAvailabilityUseCase(&stubStockRepo{stocks: stocks}, stock.Thresholds{})
	handler := apphttp.NewStockHandler(nil, availability, nil)

	app := fiber.New()
	app.Get("/api/stock/:productID/availability", handler.GetAvailability)
	return app
}

func getAvailability(t *testing.T, app *fiber.App, productID string) (int, dto.AvailabilityResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/stock/"+productID+"/availability", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out dto.AvailabilityResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal(body, &out))
	}
	return resp.StatusCode, out
}

// La vitrina recibe on_hand, reserved, available y estado derivado.
func TestGetAvailability_ProductoConStock(t *testing.T) {
	app := buildAvailabilityApp(map[string]entity.ProductStock{
		"prod-1": {ProductID: "prod-1", OnHand: 10, Reserved: 4, UnitCost: decimal.Zero},
	})

	status, out := getAvailability(t, app, "prod-1")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(10), out.OnHand)
	assert.Equal(t, int64(4), out.Reserved)
	assert.Equal(t, int64(6), out.Available)
	assert.Equal(t, "in_stock", out.Status)
}

// Producto sin fila de stock: contadores en cero y out_of_stock (compra deshabilitada).
func TestGetAvailability_ProductoSinStock(t *testing.T) {
	app := buildAvailabilityApp(map[string]entity.ProductStock{})

	status, out := getAvailability(t, app, "prod-nuevo")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(0), out.Available)
	assert.Equal(t, "out_of_stock", out.Status)
}

// Reservas por encima de on-hand (tras un ajuste a la baja): available se
// recorta en cero, nunca negativo.
func TestGetAvailability_ClampEnCero(t *testing.T) {
	app := buildAvailabilityApp(map[string]entity.ProductStock{
		"prod-1": {ProductID: "prod-1", OnHand: 2, Reserved: 5, UnitCost: decimal.Zero},
	})

	status, out := getAvailability(t, app, "prod-1")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(0), out.Available)
	assert.Equal(t, "out_of_stock", out.Status)
}
