package repository

import (
	"context"

	"github.com/aurelia-joyas/stock-api/internal/domain/entity"
)

// StockRepository define el puerto para los contadores de stock por producto.
// Las mutaciones se usan dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get obtiene los contadores; si el producto no tiene fila devuelve contadores en cero.
	Get(ctx context.Context, productID string) (*entity.ProductStock, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, productID string) (*entity.ProductStock, error)
	// Upsert inserta o actualiza contadores, costo, umbrales y flag frozen.
	Upsert(ctx context.Context, stock *entity.ProductStock) error
	// Reserve incrementa el contador reservado de forma condicional y atómica:
	// solo si el producto no está congelado y on_hand − reserved ≥ qty.
	// Devuelve ErrInsufficientStock si la condición no se cumple y
	// ErrConsistency si el producto está congelado.
	Reserve(ctx context.Context, productID string, qty int64) (*entity.ProductStock, error)
}
