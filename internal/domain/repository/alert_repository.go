package repository

import (
	"context"
	"time"

	"github.com/aurelia-joyas/stock-api/internal/domain/entity"
)

// AlertRepository define el puerto de persistencia de alertas de stock.
// Solo el monitor de alertas escribe aquí.
type AlertRepository interface {
	// GetActive devuelve la alerta activa del tipo indicado, o nil, nil si no hay.
	GetActive(ctx context.Context, productID, kind string) (*entity.StockAlert, error)
	Create(ctx context.Context, alert *entity.StockAlert) error
	// CloseActive cierra las alertas activas del producto, exceptuando keepKind
	// (vacío = cerrar todas). Devuelve cuántas cerró.
	CloseActive(ctx context.Context, productID, keepKind string, resolvedAt time.Time) (int64, error)
	ListActive(ctx context.Context, limit, offset int) ([]*entity.StockAlert, error)
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockAlert, error)
}
