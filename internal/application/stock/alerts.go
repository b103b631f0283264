package stock

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aurelia-joyas/stock-api/internal/domain/entity"
	"github.com/aurelia-joyas/stock-api/internal/domain/repository"
	domstock "github.com/aurelia-joyas/stock-api/internal/domain/stock"
)

// AlertMonitor mantiene las alertas activas consistentes con la disponibilidad.
// Es el único escritor de alertas. Se invoca tras cada mutación de on-hand
// (consumo, ingreso, ajuste); las transiciones reserved/released no lo disparan
// porque no cambian on-hand y el agregador ya refleja lo reservado en vivo.
type AlertMonitor struct {
	availability *AvailabilityUseCase
	stocks       repository.StockRepository
	alerts       repository.AlertRepository
}

// NewAlertMonitor construye el monitor.
func NewAlertMonitor(availability *AvailabilityUseCase, stocks repository.StockRepository, alerts repository.AlertRepository) *AlertMonitor {
	return &AlertMonitor{availability: availability, stocks: stocks, alerts: alerts}
}

// Reconcile clasifica la disponibilidad actual y deja exactamente una alerta
// activa del tipo correspondiente (o ninguna si el nivel es normal).
// Pre-consulta la alerta activa para no duplicar filas.
func (m *AlertMonitor) Reconcile(ctx context.Context, productID string) error {
	st, err := m.stocks.Get(ctx, productID)
	if err != nil {
		return err
	}
	low, over := m.availability.ResolveThresholds(st)
	available := st.Available()
	status := domstock.Classify(available, low, over)
	now := time.Now()

	kind, alertable := domstock.AlertKind(status)
	if !alertable {
		// Nivel normal: cerrar cualquier alerta activa del producto.
		_, err := m.alerts.CloseActive(ctx, productID, "", now)
		return err
	}

	// Cerrar alertas activas de otros tipos (p. ej. low_stock al caer a out_of_stock).
	if _, err := m.alerts.CloseActive(ctx, productID, kind, now); err != nil {
		return err
	}

	active, err := m.alerts.GetActive(ctx, productID, kind)
	if err != nil {
		return err
	}
	if active != nil {
		return nil
	}

	threshold := low
	switch kind {
	case entity.AlertOutOfStock:
		threshold = 0
	case entity.AlertOverstock:
		threshold = over
	}
	return m.alerts.Create(ctx, &entity.StockAlert{
		ID:         uuid.New().String(),
		ProductID:  productID,
		Kind:       kind,
		Threshold:  threshold,
		StockLevel: available,
		Active:     true,
		OpenedAt:   now,
	})
}

// ListActive lista las alertas activas (panel de operaciones).
func (m *AlertMonitor) ListActive(ctx context.Context, limit, offset int) ([]*entity.StockAlert, error) {
	if limit <= 0 {
		limit = 20
	}
	return m.alerts.ListActive(ctx, limit, offset)
}

// ListByProduct lista el historial de alertas de un producto.
func (m *AlertMonitor) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockAlert, error) {
	if limit <= 0 {
		limit = 20
	}
	return m.alerts.ListByProduct(ctx, productID, limit, offset)
}
