package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aurelia-joyas/stock-api/internal/domain/entity"
	"github.com/aurelia-joyas/stock-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
// Los movimientos solo se insertan; nunca hay UPDATE ni DELETE sobre la tabla.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, product_id, kind, quantity, delta, previous_on_hand, new_on_hand, previous_reserved, new_reserved, reason, order_id, actor_id, unit_cost, total_cost, created_at`

// Create persiste un movimiento de stock.
func (r *MovementRepo) Create(ctx context.Context, movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	orderID := nullable(movement.OrderID)
	actorID := nullable(movement.ActorID)
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.ProductID, movement.Kind, movement.Quantity, movement.Delta,
		movement.PrevOnHand, movement.NewOnHand, movement.PrevReserved, movement.NewReserved,
		movement.Reason, orderID, actorID, movement.UnitCost, movement.TotalCost, movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// ListByProduct lista movimientos de un producto, más recientes primero.
func (r *MovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements WHERE product_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements by product: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// ListByOrder lista los movimientos asociados a un pedido.
func (r *MovementRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements WHERE order_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list movements by order: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// Totals suma los deltas de snapshots del producto. Con contadores iniciales en
// cero, estos acumulados deben coincidir exactamente con los contadores actuales.
func (r *MovementRepo) Totals(ctx context.Context, productID string) (repository.LedgerTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(new_on_hand - previous_on_hand), 0),
			COALESCE(SUM(new_reserved - previous_reserved), 0)
		FROM stock_movements WHERE product_id = $1`
	var t repository.LedgerTotals
	if err := r.q.QueryRow(ctx, query, productID).Scan(&t.OnHand, &t.Reserved); err != nil {
		return repository.LedgerTotals{}, fmt.Errorf("ledger totals: %w", err)
	}
	return t, nil
}

func scanMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var orderID, actorID *string
		if err := rows.Scan(
			&m.ID, &m.ProductID, &m.Kind, &m.Quantity, &m.Delta,
			&m.PrevOnHand, &m.NewOnHand, &m.PrevReserved, &m.NewReserved,
			&m.Reason, &orderID, &actorID, &m.UnitCost, &m.TotalCost, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if orderID != nil {
			m.OrderID = *orderID
		}
		if actorID != nil {
			m.ActorID = *actorID
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
