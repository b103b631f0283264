package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/aurelia-joyas/stock-api/internal/application/dto"
	"github.com/aurelia-joyas/stock-api/internal/application/stock"
	"github.com/aurelia-joyas/stock-api/internal/domain"
)

// StockHandler maneja las peticiones HTTP del motor de stock (panel y vitrina).
type StockHandler struct {
	uc           *stock.UseCase
	availability *stock.AvailabilityUseCase
	monitor      *stock.AlertMonitor
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *stock.UseCase, availability *stock.AvailabilityUseCase, monitor *stock.AlertMonitor) *StockHandler {
	return &StockHandler{uc: uc, availability: availability, monitor: monitor}
}

// errorStatus mapea errores de dominio a códigos HTTP.
func errorStatus(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrConsistency):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "CONSISTENCY", Message: "producto congelado por inconsistencia; requiere reconciliación manual"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// GetAvailability godoc
// @Summary      Disponibilidad actual de un producto
// @Description  on_hand, reserved, available y estado; la vitrina deshabilita compra cuando available = 0.
// @Tags         stock
// @Produce      json
// @Param        productID  path  string  true  "ID del producto"
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/{productID}/availability [get]
func (h *StockHandler) GetAvailability(c *fiber.Ctx) error {
	a, err := h.availability.GetAvailability(c.Context(), c.Params("productID"))
	if err != nil {
		return errorStatus(c, err)
	}
	return c.JSON(dto.NewAvailabilityResponse(a))
}

// AddStock godoc
// @Summary      Ingreso de mercancía
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productID  path  string                true  "ID del producto"
// @Param        body       body  dto.AddStockRequest  true  "quantity > 0, reason, unit_cost opcional"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/stock/{productID}/add [post]
func (h *StockHandler) AddStock(c *fiber.Ctx) error {
	var in dto.AddStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	err := h.uc.AddStock(c.Context(), stock.AddStockInput{
		ProductID: c.Params("productID"),
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		ActorID:   GetUserID(c),
		UnitCost:  in.UnitCost,
	})
	if err != nil {
		return errorStatus(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "ingreso registrado"})
}

// AdjustStock godoc
// @Summary      Corrección de inventario a un valor absoluto
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productID  path  string                   true  "ID del producto"
// @Param        body       body  dto.AdjustStockRequest  true  "new_quantity ≥ 0, reason"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/stock/{productID}/adjust [post]
func (h *StockHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.NewQuantity == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "new_quantity requerido"})
	}
	err := h.uc.AdjustStock(c.Context(), stock.AdjustStockInput{
		ProductID:   c.Params("productID"),
		NewQuantity: *in.NewQuantity,
		Reason:      in.Reason,
		ActorID:     GetUserID(c),
	})
	if err != nil {
		return errorStatus(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "ajuste registrado"})
}

// History godoc
// @Summary      Historial de movimientos de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productID  path   string  true   "ID del producto"
// @Param        limit      query  int     false  "máximo de movimientos (default 20)"
// @Param        offset     query  int     false  "desplazamiento"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/{productID}/movements [get]
func (h *StockHandler) History(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	movements, err := h.uc.History(c.Context(), c.Params("productID"), page.Limit, page.Offset)
	if err != nil {
		return errorStatus(c, err)
	}
	return c.JSON(fiber.Map{
		"total":     len(movements),
		"movements": dto.NewMovementResponses(movements),
	})
}

// ListActiveAlerts godoc
// @Summary      Alertas de stock activas
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máximo de alertas (default 20)"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {array}  dto.AlertResponse
// @Router       /api/stock/alerts [get]
func (h *StockHandler) ListActiveAlerts(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	alerts, err := h.monitor.ListActive(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return errorStatus(c, err)
	}
	return c.JSON(fiber.Map{
		"total":  len(alerts),
		"alerts": dto.NewAlertResponses(alerts),
	})
}

// ProductAlerts godoc
// @Summary      Historial de alertas de un producto
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        productID  path   string  true   "ID del producto"
// @Param        limit      query  int     false  "máximo de alertas (default 20)"
// @Param        offset     query  int     false  "desplazamiento"
// @Success      200  {array}  dto.AlertResponse
// @Router       /api/stock/{productID}/alerts [get]
func (h *StockHandler) ProductAlerts(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	alerts, err := h.monitor.ListByProduct(c.Context(), c.Params("productID"), page.Limit, page.Offset)
	if err != nil {
		return errorStatus(c, err)
	}
	return c.JSON(fiber.Map{
		"total":  len(alerts),
		"alerts": dto.NewAlertResponses(alerts),
	})
}

// VerifyLedger godoc
// @Summary      Verificar ledger contra contadores
// @Description  Re-ejecuta el ledger del producto; ante divergencia congela el producto para reconciliación manual.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productID  path  string  true  "ID del producto"
// @Success      200  {object}  dto.LedgerReportResponse
// @Router       /api/stock/{productID}/verify [post]
func (h *StockHandler) VerifyLedger(c *fiber.Ctx) error {
	report, err := h.uc.VerifyLedger(c.Context(), c.Params("productID"))
	if err != nil {
		return errorStatus(c, err)
	}
	return c.JSON(dto.LedgerReportResponse{
		ProductID:       report.ProductID,
		CounterOnHand:   report.CounterOnHand,
		LedgerOnHand:    report.LedgerOnHand,
		CounterReserved: report.CounterReserved,
		LedgerReserved:  report.LedgerReserved,
		Consistent:      report.Consistent,
		Frozen:          report.Frozen,
	})
}

// Unfreeze godoc
// @Summary      Descongelar producto tras reconciliación manual
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productID  path  string  true  "ID del producto"
// @Success      200  {object}  map[string]string
// @Router       /api/stock/{productID}/unfreeze [post]
func (h *StockHandler) Unfreeze(c *fiber.Ctx) error {
	if err := h.uc.Unfreeze(c.Context(), c.Params("productID"), GetUserID(c)); err != nil {
		return errorStatus(c, err)
	}
	return c.JSON(fiber.Map{"message": "producto descongelado"})
}
