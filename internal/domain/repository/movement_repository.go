package repository

import (
	"context"

	"github.com/aurelia-joyas/stock-api/internal/domain/entity"
)

// LedgerTotals acumulados del ledger de un producto, para verificación contra contadores.
type LedgerTotals struct {
	OnHand   int64
	Reserved int64
}

// MovementRepository define el puerto de persistencia del ledger de movimientos.
// Los movimientos son inmutables: solo inserción y lectura.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByProduct lista movimientos de un producto, más recientes primero.
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error)
	ListByOrder(ctx context.Context, orderID string) ([]*entity.StockMovement, error)
	// Totals suma los deltas de snapshots; con contadores iniciales en cero,
	// replay(ledger) debe reproducir los contadores actuales exactamente.
	Totals(ctx context.Context, productID string) (LedgerTotals, error)
}
