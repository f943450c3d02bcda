package repositories

import (
	"context"
	"time"

	"dinepos/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesTotals is the aggregate of completed orders in a period.
type SalesTotals struct {
	OrderCount int
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
}

type AnalyticsRepository interface {
	SalesTotals(ctx context.Context, outletID uuid.UUID, from, to time.Time) (*SalesTotals, error)
	CancelledCount(ctx context.Context, outletID uuid.UUID, from, to time.Time) (int, error)
	SalesByPaymentMethod(ctx context.Context, outletID uuid.UUID, from, to time.Time) (map[string]decimal.Decimal, error)
	OrdersByType(ctx context.Context, outletID uuid.UUID, from, to time.Time) (map[string]int, error)
	TopItems(ctx context.Context, outletID uuid.UUID, from, to time.Time, limit int) ([]models.TopItem, error)
}

type analyticsRepo struct {
	db DBTX
}

func NewAnalyticsRepo(db DBTX) AnalyticsRepository {
	return &analyticsRepo{db: db}
}

func (r *analyticsRepo) SalesTotals(ctx context.Context, outletID uuid.UUID, from, to time.Time) (*SalesTotals, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(subtotal), 0), COALESCE(SUM(tax), 0), COALESCE(SUM(total), 0)
		FROM orders
		WHERE outlet_id = $1 AND status = 'COMPLETED' AND billed_at >= $2 AND billed_at < $3
	`
	totals := &SalesTotals{}
	err := r.db.QueryRow(ctx, query, outletID, from, to).Scan(&totals.OrderCount, &totals.Subtotal, &totals.Tax, &totals.Total)
	if err != nil {
		return nil, err
	}
	return totals, nil
}

func (r *analyticsRepo) CancelledCount(ctx context.Context, outletID uuid.UUID, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM orders
		WHERE outlet_id = $1 AND status = 'CANCELLED' AND updated_at >= $2 AND updated_at < $3
	`
	var count int
	if err := r.db.QueryRow(ctx, query, outletID, from, to).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *analyticsRepo) SalesByPaymentMethod(ctx context.Context, outletID uuid.UUID, from, to time.Time) (map[string]decimal.Decimal, error) {
	query := `
		SELECT payment_method, COALESCE(SUM(total), 0)
		FROM orders
		WHERE outlet_id = $1 AND status = 'COMPLETED' AND billed_at >= $2 AND billed_at < $3
		GROUP BY payment_method
	`
	rows, err := r.db.Query(ctx, query, outletID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]decimal.Decimal)
	for rows.Next() {
		var method string
		var total decimal.Decimal
		if err := rows.Scan(&method, &total); err != nil {
			return nil, err
		}
		result[method] = total
	}
	return result, rows.Err()
}

func (r *analyticsRepo) OrdersByType(ctx context.Context, outletID uuid.UUID, from, to time.Time) (map[string]int, error) {
	query := `
		SELECT order_type, COUNT(*)
		FROM orders
		WHERE outlet_id = $1 AND status = 'COMPLETED' AND billed_at >= $2 AND billed_at < $3
		GROUP BY order_type
	`
	rows, err := r.db.Query(ctx, query, outletID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var orderType string
		var count int
		if err := rows.Scan(&orderType, &count); err != nil {
			return nil, err
		}
		result[orderType] = count
	}
	return result, rows.Err()
}

func (r *analyticsRepo) TopItems(ctx context.Context, outletID uuid.UUID, from, to time.Time, limit int) ([]models.TopItem, error) {
	query := `
		SELECT oi.item_id, oi.item_name, SUM(oi.quantity), SUM(oi.price * oi.quantity)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.outlet_id = $1 AND o.status = 'COMPLETED' AND o.billed_at >= $2 AND o.billed_at < $3
		GROUP BY oi.item_id, oi.item_name
		ORDER BY SUM(oi.quantity) DESC
		LIMIT $4
	`
	rows, err := r.db.Query(ctx, query, outletID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.TopItem
	for rows.Next() {
		var item models.TopItem
		if err := rows.Scan(&item.ItemID, &item.Name, &item.Quantity, &item.Revenue); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
