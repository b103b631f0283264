package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aurelia-joyas/stock-api/internal/application/stock"
	"github.com/aurelia-joyas/stock-api/internal/domain/entity"
)

// AddStockRequest ingreso de mercancía del operador.
type AddStockRequest struct {
	Quantity int64            `json:"quantity"`
	Reason   string           `json:"reason"`
	UnitCost *decimal.Decimal `json:"unit_cost,omitempty"`
}

// AdjustStockRequest corrección a un valor absoluto de on-hand.
type AdjustStockRequest struct {
	NewQuantity *int64 `json:"new_quantity"`
	Reason      string `json:"reason"`
}

// OrderLineRequest línea de pedido en eventos del subsistema de pedidos.
type OrderLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// OrderCreatedRequest evento de pedido creado (dispara la reserva).
type OrderCreatedRequest struct {
	Items []OrderLineRequest `json:"items"`
}

// AvailabilityResponse disponibilidad derivada de un producto.
type AvailabilityResponse struct {
	ProductID string `json:"product_id"`
	OnHand    int64  `json:"on_hand"`
	Reserved  int64  `json:"reserved"`
	Available int64  `json:"available"`
	Status    string `json:"status"`
	Frozen    bool   `json:"frozen,omitempty"`
}

// NewAvailabilityResponse mapea la disponibilidad del caso de uso.
func NewAvailabilityResponse(a *stock.Availability) AvailabilityResponse {
	return AvailabilityResponse{
		ProductID: a.ProductID,
		OnHand:    a.OnHand,
		Reserved:  a.Reserved,
		Available: a.Available,
		Status:    string(a.Status),
		Frozen:    a.Frozen,
	}
}

// MovementResponse entrada del ledger en respuestas HTTP.
type MovementResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	Kind         string          `json:"kind"`
	Quantity     int64           `json:"quantity"`
	Delta        int64           `json:"delta"`
	PrevOnHand   int64           `json:"previous_on_hand"`
	NewOnHand    int64           `json:"new_on_hand"`
	PrevReserved int64           `json:"previous_reserved"`
	NewReserved  int64           `json:"new_reserved"`
	Reason       string          `json:"reason"`
	OrderID      string          `json:"order_id,omitempty"`
	ActorID      string          `json:"actor_id,omitempty"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewMovementResponses mapea movimientos del dominio.
func NewMovementResponses(movements []*entity.StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, MovementResponse{
			ID:           m.ID,
			ProductID:    m.ProductID,
			Kind:         m.Kind,
			Quantity:     m.Quantity,
			Delta:        m.Delta,
			PrevOnHand:   m.PrevOnHand,
			NewOnHand:    m.NewOnHand,
			PrevReserved: m.PrevReserved,
			NewReserved:  m.NewReserved,
			Reason:       m.Reason,
			OrderID:      m.OrderID,
			ActorID:      m.ActorID,
			UnitCost:     m.UnitCost,
			TotalCost:    m.TotalCost,
			CreatedAt:    m.CreatedAt,
		})
	}
	return out
}

// AlertResponse alerta de stock en respuestas HTTP.
type AlertResponse struct {
	ID         string     `json:"id"`
	ProductID  string     `json:"product_id"`
	Kind       string     `json:"kind"`
	Threshold  int64      `json:"threshold"`
	StockLevel int64      `json:"stock_level"`
	Active     bool       `json:"active"`
	OpenedAt   time.Time  `json:"opened_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// NewAlertResponses mapea alertas del dominio.
func NewAlertResponses(alerts []*entity.StockAlert) []AlertResponse {
	out := make([]AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, AlertResponse{
			ID:         a.ID,
			ProductID:  a.ProductID,
			Kind:       a.Kind,
			Threshold:  a.Threshold,
			StockLevel: a.StockLevel,
			Active:     a.Active,
			OpenedAt:   a.OpenedAt,
			ResolvedAt: a.ResolvedAt,
		})
	}
	return out
}

// LedgerReportResponse resultado de la verificación del ledger.
type LedgerReportResponse struct {
	ProductID       string `json:"product_id"`
	CounterOnHand   int64  `json:"counter_on_hand"`
	LedgerOnHand    int64  `json:"ledger_on_hand"`
	CounterReserved int64  `json:"counter_reserved"`
	LedgerReserved  int64  `json:"ledger_reserved"`
	Consistent      bool   `json:"consistent"`
	Frozen          bool   `json:"frozen"`
}
