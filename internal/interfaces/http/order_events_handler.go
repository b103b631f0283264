package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aurelia-joyas/stock-api/internal/application/dto"
	"github.com/aurelia-joyas/stock-api/internal/application/stock"
)

// OrderEventsHandler recibe los eventos del subsistema de pedidos/pagos que
// mueven la máquina de estados de reservas. El ciclo de vida del pedido en sí
// (pasarela, webhooks) vive fuera de este servicio.
type OrderEventsHandler struct {
	uc *stock.UseCase
}

// NewOrderEventsHandler construye el handler.
func NewOrderEventsHandler(uc *stock.UseCase) *OrderEventsHandler {
	return &OrderEventsHandler{uc: uc}
}

// OrderCreated godoc
// @Summary      Pedido creado → reservar stock
// @Description  Reserva todas las líneas del pedido (todo-o-nada). Reenvíos del evento son no-op.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        orderID  path  string                   true  "ID del pedido"
// @Param        body     body  dto.OrderCreatedRequest  true  "líneas del pedido"
// @Success      201  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse  "stock insuficiente"
// @Router       /api/orders/{orderID}/events/created [post]
func (h *OrderEventsHandler) OrderCreated(c *fiber.Ctx) error {
	var in dto.OrderCreatedRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines := make([]stock.OrderLine, 0, len(in.Items))
	for _, item := range in.Items {
		lines = append(lines, stock.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	if err := h.uc.ReserveOrder(c.Context(), c.Params("orderID"), lines); err != nil {
		return errorStatus(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "stock reservado"})
}

// PaymentConfirmed godoc
// @Summary      Pago confirmado → consumir reservas
// @Description  Única transición que decrementa on-hand. Reenvíos del webhook no descuentan dos veces.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        orderID  path  string  true  "ID del pedido"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse  "pedido sin reservas"
// @Failure      409  {object}  dto.ErrorResponse  "reserva ya liberada"
// @Router       /api/orders/{orderID}/events/payment-confirmed [post]
func (h *OrderEventsHandler) PaymentConfirmed(c *fiber.Ctx) error {
	if err := h.uc.ConsumeOrder(c.Context(), c.Params("orderID")); err != nil {
		return errorStatus(c, err)
	}
	return c.JSON(fiber.Map{"message": "venta registrada"})
}

// OrderCancelled godoc
// @Summary      Pedido cancelado → liberar reservas
// @Description  Idempotente: liberar un pedido ya liberado es no-op.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        orderID  path  string  true  "ID del pedido"
// @Success      200  {object}  map[string]string
// @Router       /api/orders/{orderID}/events/cancelled [post]
func (h *OrderEventsHandler) OrderCancelled(c *fiber.Ctx) error {
	if err := h.uc.ReleaseOrder(c.Context(), c.Params("orderID"), "pedido cancelado"); err != nil {
		return errorStatus(c, err)
	}
	return c.JSON(fiber.Map{"message": "reservas liberadas"})
}
