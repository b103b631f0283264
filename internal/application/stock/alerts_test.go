package stock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelia-joyas/stock-api/internal/application/stock"
	"github.com/aurelia-joyas/stock-api/internal/domain/entity"
)

// Ciclo de vida: bajar la disponibilidad de 10 a 3 (umbral 5) abre exactamente
// una alerta low_stock; reponer a 20 la cierra sin abrir otra (20 ≤ 100).
func TestReconcile_CicloLowStock(t *testing.T) {
	e := defaultEngine()
	ctx := context.Background()

	require.NoError(t, e.uc.AddStock(ctx, stock.AddStockInput{ProductID: productJoya, Quantity: 10, Reason: "compra"}))
	assert.Empty(t, e.store.activeAlertsOf(productJoya))

	require.NoError(t, e.uc.ReserveOrder(ctx, "pedido-A", []stock.OrderLine{{ProductID: productJoya, Quantity: 7}}))
	require.NoError(t, e.uc.ConsumeOrder(ctx, "pedido-A"))

	alerts := e.store.activeAlertsOf(productJoya)
	require.Len(t, alerts, 1)
	assert.Equal(t, entity.AlertLowStock, alerts[0].Kind)
	assert.Equal(t, int64(3), alerts[0].StockLevel)
	assert.Equal(t, int64(5), alerts[0].Threshold)

	require.NoError(t, e.uc.AddStock(ctx, stock.AddStockInput{ProductID: productJoya, Quantity: 17, Reason: "reposición"}))
	assert.Empty(t, e.store.activeAlertsOf(productJoya), "reponer a 20 cierra la alerta y no abre otra")
}

// Dos mutaciones dentro de la banda baja no duplican la alerta activa.
func TestReconcile_NoDuplicaAlertas(t *testing.T) {
	e := defaultEngine()
	ctx := context.Background()

	require.NoError(t, e.uc.AddStock(ctx, stock.AddStockInput{ProductID: productJoya, Quantity: 4, Reason: "compra"}))
	require.NoError(t, e.uc.AdjustStock(ctx, stock.AdjustStockInput{ProductID: productJoya, NewQuantity: 3, Reason: "merma"}))

	alerts := e.store.activeAlertsOf(productJoya)
	require.Len(t, alerts, 1)
	assert.Equal(t, entity.AlertLowStock, alerts[0].Kind)
}

// Al caer de low_stock a out_of_stock se cierra la alerta anterior y queda
// una sola activa del tipo nuevo.
func TestReconcile_TransicionLowAOut(t *testing.T) {
	e := defaultEngine()
	ctx := context.Background()

	require.NoError(t, e.uc.AddStock(ctx, stock.AddStockInput{ProductID: productJoya, Quantity: 3, Reason: "compra"}))
	require.Len(t, e.store.activeAlertsOf(productJoya), 1)

	require.NoError(t, e.uc.AdjustStock(ctx, stock.AdjustStockInput{ProductID: productJoya, NewQuantity: 0, Reason: "mercancía dañada"}))

	alerts := e.store.activeAlertsOf(productJoya)
	require.Len(t, alerts, 1)
	assert.Equal(t, entity.AlertOutOfStock, alerts[0].Kind)
}

func TestReconcile_Overstock(t *testing.T) {
	e := defaultEngine()
	ctx := context.Background()

	require.NoError(t, e.uc.AddStock(ctx, stock.AddStockInput{ProductID: productJoya, Quantity: 150, Reason: "compra grande"}))

	alerts := e.store.activeAlertsOf(productJoya)
	require.Len(t, alerts, 1)
	assert.Equal(t, entity.AlertOverstock, alerts[0].Kind)
	assert.Equal(t, int64(100), alerts[0].Threshold)

	require.NoError(t, e.uc.AdjustStock(ctx, stock.AdjustStockInput{ProductID: productJoya, NewQuantity: 50, Reason: "devolución a proveedor"}))
	assert.Empty(t, e.store.activeAlertsOf(productJoya))
}

// Los umbrales por producto tienen prioridad sobre los por defecto.
func TestReconcile_UmbralPorProducto(t *testing.T) {
	e := defaultEngine()
	ctx := context.Background()

	low := int64(20)
	e.store.seed(productJoya, 0)
	e.store.mu.Lock()
	st := e.store.stocks[productJoya]
	st.LowThreshold = &low
	e.store.stocks[productJoya] = st
	e.store.mu.Unlock()

	require.NoError(t, e.uc.AddStock(ctx, stock.AddStockInput{ProductID: productJoya, Quantity: 15, Reason: "compra"}))

	alerts := e.store.activeAlertsOf(productJoya)
	require.Len(t, alerts, 1)
	assert.Equal(t, entity.AlertLowStock, alerts[0].Kind)
	assert.Equal(t, int64(20), alerts[0].Threshold)
}

// Las transiciones reserved/released no disparan el monitor: no cambian on-hand.
func TestReconcile_ReservaNoDisparaAlertas(t *testing.T) {
	e := defaultEngine()
	e.store.seed(productJoya, 10)
	ctx := context.Background()

	require.NoError(t, e.uc.ReserveOrder(ctx, "pedido-A", []stock.OrderLine{{ProductID: productJoya, Quantity: 8}}))
	// available=2 estaría en banda baja, pero sin mutación de on-hand no hay alerta.
	assert.Empty(t, e.store.activeAlertsOf(productJoya))
}

func TestListActive_Paginado(t *testing.T) {
	e := defaultEngine()
	ctx := context.Background()

	require.NoError(t, e.uc.AddStock(ctx, stock.AddStockInput{ProductID: "prod-1", Quantity: 2, Reason: "compra"}))
	require.NoError(t, e.uc.AddStock(ctx, stock.AddStockInput{ProductID: "prod-2", Quantity: 3, Reason: "compra"}))

	alerts, err := e.monitor.ListActive(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, alerts, 2)

	alerts, err = e.monitor.ListActive(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}
