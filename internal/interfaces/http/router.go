package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aurelia-joyas/stock-api/internal/application/stock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StockUC      *stock.UseCase
	Availability *stock.AvailabilityUseCase
	AlertMonitor *stock.AlertMonitor
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	stockHandler := NewStockHandler(deps.StockUC, deps.Availability, deps.AlertMonitor)
	orderEvents := NewOrderEventsHandler(deps.StockUC)

	// Disponibilidad (público: lo consume la vitrina)
	api.Get("/stock/:productID/availability", stockHandler.GetAvailability)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Panel de operaciones
	st := protected.Group("/stock")
	st.Get("/alerts", stockHandler.ListActiveAlerts)
	st.Post("/:productID/add", stockHandler.AddStock)
	st.Post("/:productID/adjust", stockHandler.AdjustStock)
	st.Get("/:productID/movements", stockHandler.History)
	st.Get("/:productID/alerts", stockHandler.ProductAlerts)
	st.Post("/:productID/verify", stockHandler.VerifyLedger)
	st.Post("/:productID/unfreeze", stockHandler.Unfreeze)

	// Eventos del subsistema de pedidos/pagos
	orders := protected.Group("/orders")
	orders.Post("/:orderID/events/created", orderEvents.OrderCreated)
	orders.Post("/:orderID/events/payment-confirmed", orderEvents.PaymentConfirmed)
	orders.Post("/:orderID/events/cancelled", orderEvents.OrderCancelled)
}
