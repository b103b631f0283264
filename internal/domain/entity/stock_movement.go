package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementIn         = "in"         // entrada de mercancía
	MovementOut        = "out"        // salida (venta)
	MovementAdjustment = "adjustment" // corrección a un valor absoluto
	MovementReserved   = "reserved"   // apartado por pedido pendiente
	MovementReleased   = "released"   // liberación de un apartado
)

// StockMovement es una entrada inmutable del ledger. Registra el efecto de un
// evento sobre los contadores: Delta lleva el signo (para adjustment puede ser
// negativo) y Quantity la magnitud. Los snapshots previos/nuevos de ambos
// contadores permiten reconstruir el historial por replay.
type StockMovement struct {
	ID           string
	ProductID    string
	Kind         string
	Quantity     int64 // magnitud, siempre ≥ 0
	Delta        int64 // efecto con signo sobre el contador afectado
	PrevOnHand   int64
	NewOnHand    int64
	PrevReserved int64
	NewReserved  int64
	Reason       string
	OrderID      string          // opcional: pedido asociado
	ActorID      string          // opcional: usuario que operó
	UnitCost     decimal.Decimal // costo unitario en entradas
	TotalCost    decimal.Decimal
	CreatedAt    time.Time
}
