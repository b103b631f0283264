package stock

import (
	"context"
	"time"

	"github.com/aurelia-joyas/stock-api/internal/domain/repository"
	"github.com/aurelia-joyas/stock-api/pkg/logger"
)

const sweepBatchSize = 100

// ExpirySweeper libera reservas vencidas en segundo plano: reservas sin
// confirmación de pago dentro de la ventana configurada pasan a RELEASED
// usando la misma transición idempotente que la liberación manual.
type ExpirySweeper struct {
	uc           *UseCase
	reservations repository.ReservationRepository
	interval     time.Duration
	log          *logger.Logger
}

// NewExpirySweeper construye el barrido.
func NewExpirySweeper(uc *UseCase, reservations repository.ReservationRepository, interval time.Duration, log *logger.Logger) *ExpirySweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ExpirySweeper{uc: uc, reservations: reservations, interval: interval, log: log}
}

// Run ejecuta el barrido periódico hasta que el contexto se cancele.
func (s *ExpirySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			released, err := s.SweepOnce(ctx)
			if err != nil {
				s.log.Warn().Err(err).Msg("barrido de reservas vencidas con errores")
			}
			if released > 0 {
				s.log.Info().Int("released", released).Msg("reservas vencidas liberadas")
			}
		}
	}
}

// SweepOnce libera un lote de reservas vencidas y devuelve cuántas liberó.
// Cada liberación es su propia transacción: un producto congelado no bloquea
// el resto del lote.
func (s *ExpirySweeper) SweepOnce(ctx context.Context) (int, error) {
	expired, err := s.reservations.ListExpired(ctx, time.Now(), sweepBatchSize)
	if err != nil {
		return 0, err
	}
	released := 0
	var lastErr error
	for _, res := range expired {
		if err := s.uc.Release(ctx, res.OrderID, res.ProductID, "reserva expirada"); err != nil {
			lastErr = err
			s.log.Warn().Err(err).
				Str("order_id", res.OrderID).
				Str("product_id", res.ProductID).
				Msg("no se pudo liberar reserva vencida")
			continue
		}
		released++
	}
	return released, lastErr
}
