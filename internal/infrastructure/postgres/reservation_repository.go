package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aurelia-joyas/stock-api/internal/domain"
	"github.com/aurelia-joyas/stock-api/internal/domain/entity"
	"github.com/aurelia-joyas/stock-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo implementación de ReservationRepository sobre PostgreSQL.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

const reservationColumns = `id, order_id, product_id, quantity, status, created_at, expires_at, resolved_at`

// Create inserta la reserva. La constraint única (order_id, product_id) hace
// idempotente la creación por reenvío de eventos → ErrDuplicate.
func (r *ReservationRepo) Create(ctx context.Context, reservation *entity.Reservation) error {
	if reservation.ID == "" {
		reservation.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		reservation.ID, reservation.OrderID, reservation.ProductID, reservation.Quantity,
		reservation.Status, reservation.CreatedAt, reservation.ExpiresAt, reservation.ResolvedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

// GetByOrderAndProduct devuelve nil, nil si no existe.
func (r *ReservationRepo) GetByOrderAndProduct(ctx context.Context, orderID, productID string) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM stock_reservations WHERE order_id = $1 AND product_id = $2`
	res, err := scanReservation(r.q.QueryRow(ctx, query, orderID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

// ListByOrder lista todas las reservas de un pedido.
func (r *ReservationRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM stock_reservations WHERE order_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list reservations by order: %w", err)
	}
	defer rows.Close()
	return scanReservations(rows)
}

// ListExpired devuelve reservas activas vencidas, más antiguas primero.
func (r *ReservationRepo) ListExpired(ctx context.Context, now time.Time, limit int) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM stock_reservations
		WHERE status = $1 AND expires_at <= $2
		ORDER BY expires_at
		LIMIT $3`
	rows, err := r.q.Query(ctx, query, entity.ReservationActive, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired reservations: %w", err)
	}
	defer rows.Close()
	return scanReservations(rows)
}

// MarkResolved cambia el estado solo si la reserva sigue activa.
// Devuelve false si otra transición ya la resolvió (idempotencia).
func (r *ReservationRepo) MarkResolved(ctx context.Context, id, status string, resolvedAt time.Time) (bool, error) {
	query := `
		UPDATE stock_reservations
		SET status = $2, resolved_at = $3
		WHERE id = $1 AND status = $4`
	tag, err := r.q.Exec(ctx, query, id, status, resolvedAt, entity.ReservationActive)
	if err != nil {
		return false, fmt.Errorf("mark reservation resolved: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanReservation(row pgx.Row) (*entity.Reservation, error) {
	var res entity.Reservation
	err := row.Scan(
		&res.ID, &res.OrderID, &res.ProductID, &res.Quantity,
		&res.Status, &res.CreatedAt, &res.ExpiresAt, &res.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func scanReservations(rows pgx.Rows) ([]*entity.Reservation, error) {
	var list []*entity.Reservation
	for rows.Next() {
		var res entity.Reservation
		if err := rows.Scan(
			&res.ID, &res.OrderID, &res.ProductID, &res.Quantity,
			&res.Status, &res.CreatedAt, &res.ExpiresAt, &res.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, &res)
	}
	return list, rows.Err()
}
