package entity

import "time"

// Tipos de alerta de stock.
const (
	AlertLowStock   = "low_stock"
	AlertOutOfStock = "out_of_stock"
	AlertOverstock  = "overstock"
)

// StockAlert señala que la disponibilidad de un producto cruzó un umbral.
// Invariante: a lo sumo una alerta activa por (producto, tipo).
type StockAlert struct {
	ID         string
	ProductID  string
	Kind       string
	Threshold  int64
	StockLevel int64 // disponibilidad al momento de disparar
	Active     bool
	OpenedAt   time.Time
	ResolvedAt *time.Time
}
