package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aurelia-joyas/stock-api/internal/domain"
	"github.com/aurelia-joyas/stock-api/internal/domain/entity"
	"github.com/aurelia-joyas/stock-api/internal/domain/repository"
)

var _ repository.AlertRepository = (*AlertRepo)(nil)

// AlertRepo implementación de AlertRepository sobre PostgreSQL.
// La tabla lleva un índice único parcial sobre (product_id, kind) WHERE active,
// que respalda el invariante de una sola alerta activa por tipo.
type AlertRepo struct {
	q Querier
}

// NewAlertRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAlertRepository(q Querier) *AlertRepo {
	return &AlertRepo{q: q}
}

const alertColumns = `id, product_id, kind, threshold, stock_level, active, opened_at, resolved_at`

// GetActive devuelve la alerta activa del tipo indicado, o nil, nil si no hay.
func (r *AlertRepo) GetActive(ctx context.Context, productID, kind string) (*entity.StockAlert, error) {
	query := `SELECT ` + alertColumns + ` FROM stock_alerts WHERE product_id = $1 AND kind = $2 AND active`
	a, err := scanAlert(r.q.QueryRow(ctx, query, productID, kind))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active alert: %w", err)
	}
	return a, nil
}

// Create inserta una alerta. El índice único parcial rechaza duplicados activos.
func (r *AlertRepo) Create(ctx context.Context, alert *entity.StockAlert) error {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_alerts (` + alertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		alert.ID, alert.ProductID, alert.Kind, alert.Threshold,
		alert.StockLevel, alert.Active, alert.OpenedAt, alert.ResolvedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

// CloseActive cierra las alertas activas del producto, exceptuando keepKind (vacío = todas).
func (r *AlertRepo) CloseActive(ctx context.Context, productID, keepKind string, resolvedAt time.Time) (int64, error) {
	query := `
		UPDATE stock_alerts
		SET active = false, resolved_at = $2
		WHERE product_id = $1 AND active AND ($3 = '' OR kind <> $3)`
	tag, err := r.q.Exec(ctx, query, productID, resolvedAt, keepKind)
	if err != nil {
		return 0, fmt.Errorf("close active alerts: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListActive lista las alertas activas, más recientes primero.
func (r *AlertRepo) ListActive(ctx context.Context, limit, offset int) ([]*entity.StockAlert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM stock_alerts WHERE active
		ORDER BY opened_at DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list active alerts: %w", err)
	}
	defer rows.Close()
	return scanAlerts(rows)
}

// ListByProduct lista el historial de alertas de un producto.
func (r *AlertRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockAlert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM stock_alerts WHERE product_id = $1
		ORDER BY opened_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list alerts by product: %w", err)
	}
	defer rows.Close()
	return scanAlerts(rows)
}

func scanAlert(row pgx.Row) (*entity.StockAlert, error) {
	var a entity.StockAlert
	err := row.Scan(
		&a.ID, &a.ProductID, &a.Kind, &a.Threshold,
		&a.StockLevel, &a.Active, &a.OpenedAt, &a.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func scanAlerts(rows pgx.Rows) ([]*entity.StockAlert, error) {
	var list []*entity.StockAlert
	for rows.Next() {
		var a entity.StockAlert
		if err := rows.Scan(
			&a.ID, &a.ProductID, &a.Kind, &a.Threshold,
			&a.StockLevel, &a.Active, &a.OpenedAt, &a.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
