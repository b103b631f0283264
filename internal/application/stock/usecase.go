package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aurelia-joyas/stock-api/internal/domain"
	"github.com/aurelia-joyas/stock-api/internal/domain/entity"
	"github.com/aurelia-joyas/stock-api/internal/domain/repository"
	domstock "github.com/aurelia-joyas/stock-api/internal/domain/stock"
	"github.com/aurelia-joyas/stock-api/pkg/logger"
)

// Config parámetros del coordinador de reservas.
type Config struct {
	Defaults       Thresholds
	ReservationTTL time.Duration
}

// UseCase es el coordinador de reservas: el único componente que muta los
// contadores de stock. Cada operación ejecuta su read-modify-write y el
// movimiento del ledger dentro de una misma transacción, y al confirmar
// reconcilia las alertas (fallos de alertas se loguean, nunca revierten stock).
type UseCase struct {
	tx        TxRunner
	stocks    repository.StockRepository
	movements repository.MovementRepository
	monitor   *AlertMonitor
	cfg       Config
	log       *logger.Logger
}

// NewUseCase construye el coordinador.
func NewUseCase(
	tx TxRunner,
	stocks repository.StockRepository,
	movements repository.MovementRepository,
	monitor *AlertMonitor,
	cfg Config,
	log *logger.Logger,
) *UseCase {
	if cfg.Defaults.Low <= 0 {
		cfg.Defaults.Low = domstock.DefaultLowThreshold
	}
	if cfg.Defaults.Overstock <= 0 {
		cfg.Defaults.Overstock = domstock.DefaultOverstockThreshold
	}
	if cfg.ReservationTTL <= 0 {
		cfg.ReservationTTL = 30 * time.Minute
	}
	return &UseCase{tx: tx, stocks: stocks, movements: movements, monitor: monitor, cfg: cfg, log: log}
}

// OrderLine línea de un pedido (producto y cantidad solicitada).
type OrderLine struct {
	ProductID string
	Quantity  int64
}

// ReserveOrder aparta stock para todas las líneas de un pedido recién creado
// (transición NONE → RESERVED). Todo-o-nada: si alguna línea no tiene
// disponibilidad suficiente, la transacción se revierte completa y se devuelve
// ErrInsufficientStock sin mutación alguna. Reintentos del mismo pedido son no-op.
func (uc *UseCase) ReserveOrder(ctx context.Context, orderID string, lines []OrderLine) error {
	if orderID == "" || len(lines) == 0 {
		return domain.ErrInvalidInput
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
	}
	now := time.Now()
	return uc.tx.Run(ctx, func(r TxRepos) error {
		for _, l := range lines {
			if err := uc.reserveLine(ctx, r, orderID, l, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// reserveLine aparta una línea dentro de la tx. La condición
// on_hand − reserved ≥ qty se evalúa en el mismo UPDATE que incrementa el
// contador reservado, de modo que dos pedidos concurrentes cerca del límite
// no puedan sobrevender.
func (uc *UseCase) reserveLine(ctx context.Context, r TxRepos, orderID string, line OrderLine, now time.Time) error {
	existing, err := r.Reservations.GetByOrderAndProduct(ctx, orderID, line.ProductID)
	if err != nil {
		return err
	}
	if existing != nil {
		// Evento de pedido reenviado: la reserva ya existe.
		return nil
	}

	st, err := r.Stock.Reserve(ctx, line.ProductID, line.Quantity)
	if err != nil {
		return err
	}

	res := &entity.Reservation{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
		Status:    entity.ReservationActive,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.cfg.ReservationTTL),
	}
	if err := r.Reservations.Create(ctx, res); err != nil {
		return err
	}

	mov := &entity.StockMovement{
		ID:           uuid.New().String(),
		ProductID:    line.ProductID,
		Kind:         entity.MovementReserved,
		Quantity:     line.Quantity,
		Delta:        line.Quantity,
		PrevOnHand:   st.OnHand,
		NewOnHand:    st.OnHand,
		PrevReserved: st.Reserved - line.Quantity,
		NewReserved:  st.Reserved,
		Reason:       "reserva de pedido",
		OrderID:      orderID,
		CreatedAt:    now,
	}
	return r.Movements.Create(ctx, mov)
}

// ReleaseOrder libera todas las reservas activas de un pedido cancelado o
// expirado (RESERVED → RELEASED). Idempotente: liberar un pedido ya liberado
// o sin reservas es un no-op exitoso.
func (uc *UseCase) ReleaseOrder(ctx context.Context, orderID, reason string) error {
	if orderID == "" {
		return domain.ErrInvalidInput
	}
	return uc.tx.Run(ctx, func(r TxRepos) error {
		reservations, err := r.Reservations.ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		for _, res := range reservations {
			if res.Status != entity.ReservationActive {
				continue
			}
			if err := uc.releaseTx(ctx, r, res, reason); err != nil {
				return err
			}
		}
		return nil
	})
}

// Release libera una reserva puntual (usada por el barrido de expiración).
// Idempotente con la liberación manual: si la reserva ya fue resuelta, no-op.
func (uc *UseCase) Release(ctx context.Context, orderID, productID, reason string) error {
	if orderID == "" || productID == "" {
		return domain.ErrInvalidInput
	}
	return uc.tx.Run(ctx, func(r TxRepos) error {
		res, err := r.Reservations.GetByOrderAndProduct(ctx, orderID, productID)
		if err != nil {
			return err
		}
		if res == nil || res.Status != entity.ReservationActive {
			return nil
		}
		return uc.releaseTx(ctx, r, res, reason)
	})
}

func (uc *UseCase) releaseTx(ctx context.Context, r TxRepos, res *entity.Reservation, reason string) error {
	now := time.Now()

	// Bloquear primero la fila de stock: serializa liberación manual, barrido y consumo.
	st, err := r.Stock.GetForUpdate(ctx, res.ProductID)
	if err != nil {
		return err
	}
	if st.Frozen {
		return domain.ErrConsistency
	}

	resolved, err := r.Reservations.MarkResolved(ctx, res.ID, entity.ReservationReleased, now)
	if err != nil {
		return err
	}
	if !resolved {
		// Otra transición ganó la carrera (pago o barrido): no-op.
		return nil
	}

	if st.Reserved < res.Quantity {
		return uc.freezeTx(ctx, r, st, "released", res.OrderID)
	}
	st.Reserved -= res.Quantity
	st.UpdatedAt = now
	if err := r.Stock.Upsert(ctx, st); err != nil {
		return err
	}

	if reason == "" {
		reason = "liberación de reserva"
	}
	mov := &entity.StockMovement{
		ID:           uuid.New().String(),
		ProductID:    res.ProductID,
		Kind:         entity.MovementReleased,
		Quantity:     res.Quantity,
		Delta:        -res.Quantity,
		PrevOnHand:   st.OnHand,
		NewOnHand:    st.OnHand,
		PrevReserved: st.Reserved + res.Quantity,
		NewReserved:  st.Reserved,
		Reason:       reason,
		OrderID:      res.OrderID,
		CreatedAt:    now,
	}
	return r.Movements.Create(ctx, mov)
}

// ConsumeOrder confirma el pago de un pedido (RESERVED → CONSUMED): la única
// transición que decrementa on-hand. Idempotente: reenviar la confirmación de
// un pedido ya consumido no vuelve a descontar.
func (uc *UseCase) ConsumeOrder(ctx context.Context, orderID string) error {
	if orderID == "" {
		return domain.ErrInvalidInput
	}
	var touched []string
	err := uc.tx.Run(ctx, func(r TxRepos) error {
		reservations, err := r.Reservations.ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if len(reservations) == 0 {
			return domain.ErrNotFound
		}
		for _, res := range reservations {
			switch res.Status {
			case entity.ReservationConsumed:
				continue // replay del webhook de pago
			case entity.ReservationReleased:
				// Pago confirmado sobre una reserva ya liberada: estado en conflicto.
				return domain.ErrConflict
			}
			if err := uc.consumeTx(ctx, r, res); err != nil {
				return err
			}
			touched = append(touched, res.ProductID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, productID := range touched {
		uc.reconcileAlerts(ctx, productID)
	}
	return nil
}

func (uc *UseCase) consumeTx(ctx context.Context, r TxRepos, res *entity.Reservation) error {
	now := time.Now()

	st, err := r.Stock.GetForUpdate(ctx, res.ProductID)
	if err != nil {
		return err
	}
	if st.Frozen {
		return domain.ErrConsistency
	}

	resolved, err := r.Reservations.MarkResolved(ctx, res.ID, entity.ReservationConsumed, now)
	if err != nil {
		return err
	}
	if !resolved {
		return nil
	}

	if st.Reserved < res.Quantity {
		return uc.freezeTx(ctx, r, st, "consumed", res.OrderID)
	}

	prevOnHand := st.OnHand
	prevReserved := st.Reserved
	newOnHand := st.OnHand - res.Quantity
	if newOnHand < 0 {
		newOnHand = 0
	}
	st.OnHand = newOnHand
	st.Reserved -= res.Quantity
	st.UpdatedAt = now
	if err := r.Stock.Upsert(ctx, st); err != nil {
		return err
	}

	mov := &entity.StockMovement{
		ID:           uuid.New().String(),
		ProductID:    res.ProductID,
		Kind:         entity.MovementOut,
		Quantity:     res.Quantity,
		Delta:        newOnHand - prevOnHand,
		PrevOnHand:   prevOnHand,
		NewOnHand:    newOnHand,
		PrevReserved: prevReserved,
		NewReserved:  st.Reserved,
		Reason:       "sale",
		OrderID:      res.OrderID,
		UnitCost:     st.UnitCost,
		TotalCost:    st.UnitCost.Mul(decimal.NewFromInt(res.Quantity)),
		CreatedAt:    now,
	}
	return r.Movements.Create(ctx, mov)
}

// AddStockInput entrada para un ingreso de mercancía del operador.
type AddStockInput struct {
	ProductID string
	Quantity  int64
	Reason    string
	ActorID   string
	UnitCost  *decimal.Decimal // opcional: actualiza el costo promedio ponderado
}

// AddStock incrementa on-hand (movimiento "in") y reevalúa alertas.
// Cantidad cero o negativa es error del caller (ErrInvalidQuantity).
func (uc *UseCase) AddStock(ctx context.Context, in AddStockInput) error {
	if in.ProductID == "" {
		return domain.ErrInvalidInput
	}
	if in.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	err := uc.tx.Run(ctx, func(r TxRepos) error {
		now := time.Now()
		st, err := r.Stock.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if st.Frozen {
			return domain.ErrConsistency
		}

		prev := st.OnHand
		unitCost := st.UnitCost
		if in.UnitCost != nil {
			unitCost = *in.UnitCost
			st.UnitCost = domstock.WeightedAverageCost(st.OnHand, st.UnitCost, in.Quantity, unitCost)
		}
		st.OnHand += in.Quantity
		st.UpdatedAt = now
		if err := r.Stock.Upsert(ctx, st); err != nil {
			return err
		}

		reason := in.Reason
		if reason == "" {
			reason = "ingreso de mercancía"
		}
		mov := &entity.StockMovement{
			ID:           uuid.New().String(),
			ProductID:    in.ProductID,
			Kind:         entity.MovementIn,
			Quantity:     in.Quantity,
			Delta:        in.Quantity,
			PrevOnHand:   prev,
			NewOnHand:    st.OnHand,
			PrevReserved: st.Reserved,
			NewReserved:  st.Reserved,
			Reason:       reason,
			ActorID:      in.ActorID,
			UnitCost:     unitCost,
			TotalCost:    unitCost.Mul(decimal.NewFromInt(in.Quantity)),
			CreatedAt:    now,
		}
		return r.Movements.Create(ctx, mov)
	})
	if err != nil {
		return err
	}
	uc.reconcileAlerts(ctx, in.ProductID)
	return nil
}

// AdjustStockInput entrada para una corrección del operador a un valor absoluto.
type AdjustStockInput struct {
	ProductID   string
	NewQuantity int64
	Reason      string
	ActorID     string
}

// AdjustStock corrige on-hand a un valor absoluto (movimiento "adjustment" con
// delta firmado = nuevo − anterior) y reevalúa alertas. Ajustar al valor actual
// es un no-op exitoso sin movimiento.
func (uc *UseCase) AdjustStock(ctx context.Context, in AdjustStockInput) error {
	if in.ProductID == "" {
		return domain.ErrInvalidInput
	}
	if in.NewQuantity < 0 {
		return domain.ErrInvalidQuantity
	}
	err := uc.tx.Run(ctx, func(r TxRepos) error {
		now := time.Now()
		st, err := r.Stock.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if st.Frozen {
			return domain.ErrConsistency
		}

		delta := in.NewQuantity - st.OnHand
		if delta == 0 {
			return nil
		}
		prev := st.OnHand
		st.OnHand = in.NewQuantity
		st.UpdatedAt = now
		if err := r.Stock.Upsert(ctx, st); err != nil {
			return err
		}

		qty := delta
		if qty < 0 {
			qty = -qty
		}
		mov := &entity.StockMovement{
			ID:           uuid.New().String(),
			ProductID:    in.ProductID,
			Kind:         entity.MovementAdjustment,
			Quantity:     qty,
			Delta:        delta,
			PrevOnHand:   prev,
			NewOnHand:    st.OnHand,
			PrevReserved: st.Reserved,
			NewReserved:  st.Reserved,
			Reason:       in.Reason,
			ActorID:      in.ActorID,
			CreatedAt:    now,
		}
		return r.Movements.Create(ctx, mov)
	})
	if err != nil {
		return err
	}
	uc.reconcileAlerts(ctx, in.ProductID)
	return nil
}

// History devuelve los movimientos más recientes de un producto (solo lectura).
func (uc *UseCase) History(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = 20
	}
	return uc.movements.ListByProduct(ctx, productID, limit, offset)
}

// freezeTx congela el producto dentro de la tx en curso y devuelve ErrConsistency.
// El contador y las reservas divergieron: no se auto-corrige, se detiene la
// mutación y se deja la reconciliación al operador.
func (uc *UseCase) freezeTx(ctx context.Context, r TxRepos, st *entity.ProductStock, transition, orderID string) error {
	st.Frozen = true
	st.UpdatedAt = time.Now()
	if err := r.Stock.Upsert(ctx, st); err != nil {
		return err
	}
	uc.log.Error().
		Str("product_id", st.ProductID).
		Str("order_id", orderID).
		Str("transition", transition).
		Int64("reserved", st.Reserved).
		Msg("contador reservado menor que la reserva: producto congelado")
	return domain.ErrConsistency
}

// reconcileAlerts invoca al monitor tras una mutación de on-hand confirmada.
// Los fallos se loguean y se reintentan en la siguiente mutación; nunca
// revierten la operación de stock que los disparó.
func (uc *UseCase) reconcileAlerts(ctx context.Context, productID string) {
	if err := uc.monitor.Reconcile(ctx, productID); err != nil {
		uc.log.Warn().Err(err).
			Str("product_id", productID).
			Msg("reconciliación de alertas fallida; se reintenta en la próxima mutación")
	}
}
