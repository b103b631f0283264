package stock

import (
	"context"

	"github.com/aurelia-joyas/stock-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Stock        repository.StockRepository
	Movements    repository.MovementRepository
	Reservations repository.ReservationRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza que la mutación del contador y el movimiento del ledger
// se confirmen o reviertan juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(r TxRepos) error) error
}

// Thresholds umbrales por defecto a aplicar cuando el producto no define los suyos.
type Thresholds struct {
	Low       int64
	Overstock int64
}
