package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStock representa los contadores de stock de un producto.
// OnHand es la cantidad física asignable; Reserved es el contador mantenido de
// unidades apartadas por pedidos pendientes de pago. Ambos se mutan solo dentro
// de una transacción junto con su movimiento en el ledger.
type ProductStock struct {
	ProductID     string
	OnHand        int64
	Reserved      int64
	UnitCost      decimal.Decimal // costo promedio ponderado
	LowThreshold  *int64          // nil = usar el umbral por defecto
	OverThreshold *int64
	// Frozen bloquea toda mutación tras detectar divergencia ledger/contador.
	Frozen    bool
	UpdatedAt time.Time
}

// Available devuelve la cantidad que un cliente aún puede comprar (nunca negativa).
func (s *ProductStock) Available() int64 {
	a := s.OnHand - s.Reserved
	if a < 0 {
		return 0
	}
	return a
}
