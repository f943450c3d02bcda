package repositories

import (
	"context"
	"fmt"

	"dinepos/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, outletID, id uuid.UUID) (*models.Order, error)
	// GetForUpdate locks the order row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, outletID, id uuid.UUID) (*models.Order, error)
	UpdateTotals(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, order *models.Order) error
	// Complete finalizes a non-terminal order. It reports false when the order was
	// already terminal, leaving it untouched.
	Complete(ctx context.Context, order *models.Order) (bool, error)
	List(ctx context.Context, outletID uuid.UUID, filter *models.OrderSearchFilter) ([]*models.Order, error)
	ActiveByTable(ctx context.Context, outletID, tableID uuid.UUID) (*models.Order, error)
}

const orderColumns = `id, outlet_id, table_id, user_id, status, order_type, payment_method, subtotal, tax, total, tax_rate, cancellation_reason, bill_number, billed_at, cgst, sgst, created_at, updated_at`

type orderRepo struct {
	db DBTX
}

func NewOrderRepo(db DBTX) OrderRepository {
	return &orderRepo{db: db}
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(&order.ID, &order.OutletID, &order.TableID, &order.UserID, &order.Status, &order.OrderType,
		&order.PaymentMethod, &order.Subtotal, &order.Tax, &order.Total, &order.TaxRate,
		&order.CancellationReason, &order.BillNumber, &order.BilledAt, &order.CGST, &order.SGST, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, outlet_id, table_id, user_id, status, order_type, subtotal, tax, total, tax_rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, order.ID, order.OutletID, order.TableID, order.UserID, order.Status,
		order.OrderType, order.Subtotal, order.Tax, order.Total, order.TaxRate).Scan(&order.CreatedAt, &order.UpdatedAt)
}

func (r *orderRepo) GetByID(ctx context.Context, outletID, id uuid.UUID) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE outlet_id = $1 AND id = $2`
	order, err := scanOrder(r.db.QueryRow(ctx, query, outletID, id))
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

func (r *orderRepo) GetForUpdate(ctx context.Context, outletID, id uuid.UUID) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE outlet_id = $1 AND id = $2 FOR UPDATE`
	order, err := scanOrder(r.db.QueryRow(ctx, query, outletID, id))
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

func (r *orderRepo) UpdateTotals(ctx context.Context, order *models.Order) error {
	query := `
		UPDATE orders
		SET subtotal = $1, tax = $2, total = $3, tax_rate = $4, updated_at = NOW()
		WHERE outlet_id = $5 AND id = $6
	`
	_, err := r.db.Exec(ctx, query, order.Subtotal, order.Tax, order.Total, order.TaxRate, order.OutletID, order.ID)
	return err
}

func (r *orderRepo) UpdateStatus(ctx context.Context, order *models.Order) error {
	query := `
		UPDATE orders
		SET status = $1, cancellation_reason = $2, updated_at = NOW()
		WHERE outlet_id = $3 AND id = $4
	`
	_, err := r.db.Exec(ctx, query, order.Status, order.CancellationReason, order.OutletID, order.ID)
	return err
}

func (r *orderRepo) Complete(ctx context.Context, order *models.Order) (bool, error) {
	query := `
		UPDATE orders
		SET status = 'COMPLETED', payment_method = $1, subtotal = $2, tax = $3, total = $4, tax_rate = $5, bill_number = $6, billed_at = $7,
			cgst = $8, sgst = $9, updated_at = NOW()
		WHERE outlet_id = $10 AND id = $11 AND status NOT IN ('COMPLETED', 'CANCELLED')
	`
	tag, err := r.db.Exec(ctx, query, order.PaymentMethod, order.Subtotal, order.Tax, order.Total, order.TaxRate,
		order.BillNumber, order.BilledAt, order.CGST, order.SGST, order.OutletID, order.ID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *orderRepo) ActiveByTable(ctx context.Context, outletID, tableID uuid.UUID) (*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE outlet_id = $1 AND table_id = $2 AND status NOT IN ('COMPLETED', 'CANCELLED')
		ORDER BY created_at DESC
		LIMIT 1
	`
	order, err := scanOrder(r.db.QueryRow(ctx, query, outletID, tableID))
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

func (r *orderRepo) List(ctx context.Context, outletID uuid.UUID, filter *models.OrderSearchFilter) ([]*models.Order, error) {
	if filter == nil {
		filter = &models.OrderSearchFilter{}
	}
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE outlet_id = $1`
	args := []interface{}{outletID}
	conditionCount := 1

	if filter.Status != nil {
		conditionCount++
		query += fmt.Sprintf(` AND status = $%d`, conditionCount)
		args = append(args, *filter.Status)
	}
	if filter.OrderType != nil {
		conditionCount++
		query += fmt.Sprintf(` AND order_type = $%d`, conditionCount)
		args = append(args, *filter.OrderType)
	}
	if filter.TableID != nil {
		conditionCount++
		query += fmt.Sprintf(` AND table_id = $%d`, conditionCount)
		args = append(args, *filter.TableID)
	}
	if filter.DateFrom != nil {
		conditionCount++
		query += fmt.Sprintf(` AND created_at >= $%d`, conditionCount)
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditionCount++
		query += fmt.Sprintf(` AND created_at < $%d`, conditionCount)
		args = append(args, *filter.DateTo)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, conditionCount+1, conditionCount+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
