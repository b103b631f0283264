package stock

import (
	"context"
	"time"

	"github.com/aurelia-joyas/stock-api/internal/domain"
)

// LedgerReport resultado de verificar el ledger de un producto contra sus contadores.
type LedgerReport struct {
	ProductID       string
	CounterOnHand   int64
	LedgerOnHand    int64
	CounterReserved int64
	LedgerReserved  int64
	Consistent      bool
	Frozen          bool
}

// VerifyLedger re-ejecuta el ledger del producto (suma de deltas de snapshots
// desde contadores en cero) y lo compara con los contadores actuales. Ante
// divergencia congela el producto: toda mutación posterior falla con
// ErrConsistency hasta que un operador reconcilie y descongele. Nunca se
// auto-corrige.
func (uc *UseCase) VerifyLedger(ctx context.Context, productID string) (*LedgerReport, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	var report *LedgerReport
	err := uc.tx.Run(ctx, func(r TxRepos) error {
		st, err := r.Stock.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		totals, err := r.Movements.Totals(ctx, productID)
		if err != nil {
			return err
		}
		report = &LedgerReport{
			ProductID:       productID,
			CounterOnHand:   st.OnHand,
			LedgerOnHand:    totals.OnHand,
			CounterReserved: st.Reserved,
			LedgerReserved:  totals.Reserved,
			Consistent:      totals.OnHand == st.OnHand && totals.Reserved == st.Reserved,
			Frozen:          st.Frozen,
		}
		if report.Consistent || st.Frozen {
			return nil
		}
		st.Frozen = true
		st.UpdatedAt = time.Now()
		report.Frozen = true
		return r.Stock.Upsert(ctx, st)
	})
	if err != nil {
		return nil, err
	}
	if !report.Consistent {
		uc.log.Error().
			Str("product_id", productID).
			Int64("counter_on_hand", report.CounterOnHand).
			Int64("ledger_on_hand", report.LedgerOnHand).
			Int64("counter_reserved", report.CounterReserved).
			Int64("ledger_reserved", report.LedgerReserved).
			Msg("ledger y contadores divergen: producto congelado")
	}
	return report, nil
}

// Unfreeze reactiva las mutaciones de un producto tras la reconciliación manual.
func (uc *UseCase) Unfreeze(ctx context.Context, productID, actorID string) error {
	if productID == "" {
		return domain.ErrInvalidInput
	}
	err := uc.tx.Run(ctx, func(r TxRepos) error {
		st, err := r.Stock.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if !st.Frozen {
			return nil
		}
		st.Frozen = false
		st.UpdatedAt = time.Now()
		return r.Stock.Upsert(ctx, st)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("product_id", productID).Str("actor_id", actorID).Msg("producto descongelado")
	return nil
}
