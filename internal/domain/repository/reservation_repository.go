package repository

import (
	"context"
	"time"

	"github.com/aurelia-joyas/stock-api/internal/domain/entity"
)

// ReservationRepository define el puerto de persistencia de reservas.
type ReservationRepository interface {
	// Create inserta la reserva; (order_id, product_id) es único → ErrDuplicate.
	Create(ctx context.Context, reservation *entity.Reservation) error
	// GetByOrderAndProduct devuelve nil, nil si no existe.
	GetByOrderAndProduct(ctx context.Context, orderID, productID string) (*entity.Reservation, error)
	ListByOrder(ctx context.Context, orderID string) ([]*entity.Reservation, error)
	// ListExpired devuelve reservas activas con expires_at ≤ now (para el barrido).
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*entity.Reservation, error)
	// MarkResolved cambia estado solo si la reserva sigue activa; devuelve false
	// si ya estaba resuelta (transición idempotente).
	MarkResolved(ctx context.Context, id, status string, resolvedAt time.Time) (bool, error)
}
