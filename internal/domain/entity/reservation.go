package entity

import "time"

// Estados de una reserva de stock.
const (
	ReservationActive   = "active"
	ReservationReleased = "released"
	ReservationConsumed = "consumed"
)

// Reservation aparta unidades de un producto para un pedido pendiente de pago.
// Única por (pedido, producto); resolverla (released/consumed) es idempotente.
type Reservation struct {
	ID         string
	OrderID    string
	ProductID  string
	Quantity   int64
	Status     string
	CreatedAt  time.Time
	ExpiresAt  time.Time // vencida y aún activa → elegible para liberación automática
	ResolvedAt *time.Time
}
