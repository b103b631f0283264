package stock

import (
	"context"

	"github.com/aurelia-joyas/stock-api/internal/domain"
	"github.com/aurelia-joyas/stock-api/internal/domain/entity"
	"github.com/aurelia-joyas/stock-api/internal/domain/repository"
	domstock "github.com/aurelia-joyas/stock-api/internal/domain/stock"
)

// Availability estado derivado de stock de un producto, tal como lo consume
// la vitrina (para deshabilitar compra cuando available = 0) y el panel.
type Availability struct {
	ProductID string
	OnHand    int64
	Reserved  int64
	Available int64
	Status    domstock.Status
	Frozen    bool
}

// AvailabilityUseCase calcula la disponibilidad actual de un producto.
// Contrato: available = max(0, on_hand − reserved), con reserved como contador
// mantenido transaccionalmente (no se re-escanean pedidos pendientes).
type AvailabilityUseCase struct {
	stocks   repository.StockRepository
	defaults Thresholds
}

// NewAvailabilityUseCase construye el agregador de lectura.
func NewAvailabilityUseCase(stocks repository.StockRepository, defaults Thresholds) *AvailabilityUseCase {
	if defaults.Low <= 0 {
		defaults.Low = domstock.DefaultLowThreshold
	}
	if defaults.Overstock <= 0 {
		defaults.Overstock = domstock.DefaultOverstockThreshold
	}
	return &AvailabilityUseCase{stocks: stocks, defaults: defaults}
}

// GetAvailability lee los contadores y clasifica la disponibilidad.
func (uc *AvailabilityUseCase) GetAvailability(ctx context.Context, productID string) (*Availability, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	st, err := uc.stocks.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	low, over := uc.ResolveThresholds(st)
	available := st.Available()
	return &Availability{
		ProductID: st.ProductID,
		OnHand:    st.OnHand,
		Reserved:  st.Reserved,
		Available: available,
		Status:    domstock.Classify(available, low, over),
		Frozen:    st.Frozen,
	}, nil
}

// ResolveThresholds aplica los umbrales del producto o los por defecto.
func (uc *AvailabilityUseCase) ResolveThresholds(st *entity.ProductStock) (low, over int64) {
	low, over = uc.defaults.Low, uc.defaults.Overstock
	if st.LowThreshold != nil {
		low = *st.LowThreshold
	}
	if st.OverThreshold != nil {
		over = *st.OverThreshold
	}
	return low, over
}
