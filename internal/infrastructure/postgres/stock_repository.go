package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/aurelia-joyas/stock-api/internal/domain"
	"github.com/aurelia-joyas/stock-api/internal/domain/entity"
	"github.com/aurelia-joyas/stock-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `product_id, on_hand_quantity, reserved_quantity, unit_cost, low_threshold, overstock_threshold, frozen, updated_at`

func scanStock(row pgx.Row) (*entity.ProductStock, error) {
	var s entity.ProductStock
	err := row.Scan(
		&s.ProductID, &s.OnHand, &s.Reserved, &s.UnitCost,
		&s.LowThreshold, &s.OverThreshold, &s.Frozen, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// zeroStock contadores en cero para un producto aún sin fila.
func zeroStock(productID string) *entity.ProductStock {
	return &entity.ProductStock{ProductID: productID, UnitCost: decimal.Zero}
}

// Get obtiene los contadores de stock de un producto.
func (r *StockRepo) Get(ctx context.Context, productID string) (*entity.ProductStock, error) {
	query := `SELECT ` + stockColumns + ` FROM product_stock WHERE product_id = $1`
	s, err := scanStock(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zeroStock(productID), nil
		}
		return nil, fmt.Errorf("get product stock: %w", err)
	}
	return s, nil
}

// GetForUpdate obtiene los contadores y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.ProductStock, error) {
	query := `SELECT ` + stockColumns + ` FROM product_stock WHERE product_id = $1 FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zeroStock(productID), nil
		}
		return nil, fmt.Errorf("get product stock for update: %w", err)
	}
	return s, nil
}

// Upsert inserta o actualiza los contadores (por producto).
func (r *StockRepo) Upsert(ctx context.Context, stock *entity.ProductStock) error {
	query := `
		INSERT INTO product_stock (product_id, on_hand_quantity, reserved_quantity, unit_cost, low_threshold, overstock_threshold, frozen, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (product_id)
		DO UPDATE SET
			on_hand_quantity = EXCLUDED.on_hand_quantity,
			reserved_quantity = EXCLUDED.reserved_quantity,
			unit_cost = EXCLUDED.unit_cost,
			low_threshold = EXCLUDED.low_threshold,
			overstock_threshold = EXCLUDED.overstock_threshold,
			frozen = EXCLUDED.frozen,
			updated_at = now()`
	_, err := r.q.Exec(ctx, query,
		stock.ProductID, stock.OnHand, stock.Reserved, stock.UnitCost,
		stock.LowThreshold, stock.OverThreshold, stock.Frozen,
	)
	if err != nil {
		return fmt.Errorf("upsert product stock: %w", err)
	}
	return nil
}

// Reserve incrementa el contador reservado de forma condicional: el chequeo de
// disponibilidad y el incremento ocurren en el mismo UPDATE, así dos reservas
// concurrentes cerca del límite no pueden pasar ambas.
func (r *StockRepo) Reserve(ctx context.Context, productID string, qty int64) (*entity.ProductStock, error) {
	query := `
		UPDATE product_stock
		SET reserved_quantity = reserved_quantity + $2, updated_at = now()
		WHERE product_id = $1
		  AND NOT frozen
		  AND on_hand_quantity - reserved_quantity >= $2
		RETURNING ` + stockColumns
	s, err := scanStock(r.q.QueryRow(ctx, query, productID, qty))
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("reserve stock: %w", err)
	}

	// La condición falló: distinguir entre congelado y stock insuficiente.
	current, err := r.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if current.Frozen {
		return nil, domain.ErrConsistency
	}
	return nil, domain.ErrInsufficientStock
}
