package stock_test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aurelia-joyas/stock-api/internal/application/stock"
	"github.com/aurelia-joyas/stock-api/internal/domain"
	"github.com/aurelia-joyas/stock-api/internal/domain/entity"
	"github.com/aurelia-joyas/stock-api/internal/domain/repository"
	"github.com/aurelia-joyas/stock-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Store en memoria para tests: emula el comportamiento transaccional de los
// repositorios Postgres. El TxRunner serializa las transacciones con un mutex,
// igual que el bloqueo de fila serializa las mutaciones por producto en la BD.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu           sync.Mutex
	stocks       map[string]entity.ProductStock
	reservations map[string]entity.Reservation // por ID
	movements    []entity.StockMovement
	alerts       []entity.StockAlert
}

func newMemStore() *memStore {
	return &memStore{
		stocks:       make(map[string]entity.ProductStock),
		reservations: make(map[string]entity.Reservation),
	}
}

// seed fija on-hand directamente (bootstrap de tests).
func (s *memStore) seed(productID string, onHand int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stocks[productID] = entity.ProductStock{
		ProductID: productID,
		OnHand:    onHand,
		UnitCost:  decimal.Zero,
		UpdatedAt: time.Now(),
	}
}

func (s *memStore) stockOf(productID string) entity.ProductStock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stocks[productID]
}

func (s *memStore) movementsOf(productID string) []entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.StockMovement
	for _, m := range s.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out
}

func (s *memStore) activeAlertsOf(productID string) []entity.StockAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.StockAlert
	for _, a := range s.alerts {
		if a.ProductID == productID && a.Active {
			out = append(out, a)
		}
	}
	return out
}

// Los métodos de repositorio no toman el mutex: dentro de una tx el lock ya
// está tomado por el runner. Las lecturas fuera de tx en los tests son
// secuenciales salvo por los helpers de arriba, que sí lo toman.

type memStockRepo struct{ s *memStore }

func (r *memStockRepo) Get(_ context.Context, productID string) (*entity.ProductStock, error) {
	if st, ok := r.s.stocks[productID]; ok {
		cp := st
		return &cp, nil
	}
	return &entity.ProductStock{ProductID: productID, UnitCost: decimal.Zero}, nil
}

func (r *memStockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.ProductStock, error) {
	return r.Get(ctx, productID)
}

func (r *memStockRepo) Upsert(_ context.Context, st *entity.ProductStock) error {
	r.s.stocks[st.ProductID] = *st
	return nil
}

func (r *memStockRepo) Reserve(_ context.Context, productID string, qty int64) (*entity.ProductStock, error) {
	st, ok := r.s.stocks[productID]
	if ok && st.Frozen {
		return nil, domain.ErrConsistency
	}
	if !ok || st.OnHand-st.Reserved < qty {
		return nil, domain.ErrInsufficientStock
	}
	st.Reserved += qty
	st.UpdatedAt = time.Now()
	r.s.stocks[productID] = st
	cp := st
	return &cp, nil
}

type memMovementRepo struct{ s *memStore }

func (r *memMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *memMovementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	var matched []*entity.StockMovement
	for i := len(r.s.movements) - 1; i >= 0; i-- { // más recientes primero
		if r.s.movements[i].ProductID == productID {
			cp := r.s.movements[i]
			matched = append(matched, &cp)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *memMovementRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		if r.s.movements[i].OrderID == orderID {
			cp := r.s.movements[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memMovementRepo) Totals(_ context.Context, productID string) (repository.LedgerTotals, error) {
	var t repository.LedgerTotals
	for _, m := range r.s.movements {
		if m.ProductID != productID {
			continue
		}
		t.OnHand += m.NewOnHand - m.PrevOnHand
		t.Reserved += m.NewReserved - m.PrevReserved
	}
	return t, nil
}

type memReservationRepo struct{ s *memStore }

func (r *memReservationRepo) Create(_ context.Context, res *entity.Reservation) error {
	for _, existing := range r.s.reservations {
		if existing.OrderID == res.OrderID && existing.ProductID == res.ProductID {
			return domain.ErrDuplicate
		}
	}
	r.s.reservations[res.ID] = *res
	return nil
}

func (r *memReservationRepo) GetByOrderAndProduct(_ context.Context, orderID, productID string) (*entity.Reservation, error) {
	for _, res := range r.s.reservations {
		if res.OrderID == orderID && res.ProductID == productID {
			cp := res
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memReservationRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.Reservation, error) {
	var out []*entity.Reservation
	for _, res := range r.s.reservations {
		if res.OrderID == orderID {
			cp := res
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memReservationRepo) ListExpired(_ context.Context, now time.Time, limit int) ([]*entity.Reservation, error) {
	var out []*entity.Reservation
	for _, res := range r.s.reservations {
		if res.Status == entity.ReservationActive && !res.ExpiresAt.After(now) {
			cp := res
			out = append(out, &cp)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *memReservationRepo) MarkResolved(_ context.Context, id, status string, resolvedAt time.Time) (bool, error) {
	res, ok := r.s.reservations[id]
	if !ok || res.Status != entity.ReservationActive {
		return false, nil
	}
	res.Status = status
	res.ResolvedAt = &resolvedAt
	r.s.reservations[id] = res
	return true, nil
}

type memAlertRepo struct{ s *memStore }

func (r *memAlertRepo) GetActive(_ context.Context, productID, kind string) (*entity.StockAlert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.alerts {
		if a.ProductID == productID && a.Kind == kind && a.Active {
			cp := a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memAlertRepo) Create(_ context.Context, alert *entity.StockAlert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.alerts {
		if a.ProductID == alert.ProductID && a.Kind == alert.Kind && a.Active {
			return domain.ErrDuplicate
		}
	}
	r.s.alerts = append(r.s.alerts, *alert)
	return nil
}

func (r *memAlertRepo) CloseActive(_ context.Context, productID, keepKind string, resolvedAt time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var closed int64
	for i := range r.s.alerts {
		a := &r.s.alerts[i]
		if a.ProductID == productID && a.Active && (keepKind == "" || a.Kind != keepKind) {
			a.Active = false
			ts := resolvedAt
			a.ResolvedAt = &ts
			closed++
		}
	}
	return closed, nil
}

func (r *memAlertRepo) ListActive(_ context.Context, limit, offset int) ([]*entity.StockAlert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StockAlert
	for _, a := range r.s.alerts {
		if a.Active {
			cp := a
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memAlertRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.StockAlert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StockAlert
	for _, a := range r.s.alerts {
		if a.ProductID == productID {
			cp := a
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// memTxRunner serializa las transacciones con el mutex del store.
type memTxRunner struct{ s *memStore }

func (t *memTxRunner) Run(_ context.Context, fn func(r stock.TxRepos) error) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return fn(stock.TxRepos{
		Stock:        &memStockRepo{s: t.s},
		Movements:    &memMovementRepo{s: t.s},
		Reservations: &memReservationRepo{s: t.s},
	})
}

// lockedStockRepo variante con lock para lecturas fuera de transacción
// (agregador y monitor de alertas).
type lockedStockRepo struct{ s *memStore }

func (r *lockedStockRepo) Get(ctx context.Context, productID string) (*entity.ProductStock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&memStockRepo{s: r.s}).Get(ctx, productID)
}

func (r *lockedStockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.ProductStock, error) {
	return r.Get(ctx, productID)
}

func (r *lockedStockRepo) Upsert(ctx context.Context, st *entity.ProductStock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&memStockRepo{s: r.s}).Upsert(ctx, st)
}

func (r *lockedStockRepo) Reserve(ctx context.Context, productID string, qty int64) (*entity.ProductStock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&memStockRepo{s: r.s}).Reserve(ctx, productID, qty)
}

// engine agrupa los casos de uso construidos sobre un store en memoria.
type engine struct {
	store        *memStore
	uc           *stock.UseCase
	availability *stock.AvailabilityUseCase
	monitor      *stock.AlertMonitor
	reservations repository.ReservationRepository
}

func newEngine(cfg stock.Config) *engine {
	store := newMemStore()
	stocks := &lockedStockRepo{s: store}
	alerts := &memAlertRepo{s: store}
	availability := stock.NewAvailabilityUseCase(stocks, cfg.Defaults)
	monitor := stock.NewAlertMonitor(availability, stocks, alerts)
	uc := stock.NewUseCase(&memTxRunner{s: store}, stocks, &memMovementRepo{s: store}, monitor, cfg, logger.Nop())
	return &engine{
		store:        store,
		uc:           uc,
		availability: availability,
		monitor:      monitor,
		reservations: &memReservationRepo{s: store},
	}
}
