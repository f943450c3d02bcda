package repositories

import (
	"context"

	"dinepos/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrderItemRepository interface {
	Create(ctx context.Context, orderItem *models.OrderItem) error
	GetByID(ctx context.Context, orderID, id uuid.UUID) (*models.OrderItem, error)
	Update(ctx context.Context, orderItem *models.OrderItem) error
	Delete(ctx context.Context, orderID, id uuid.UUID) error
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]*models.OrderItem, error)
}

const orderItemColumns = `id, order_id, item_id, item_name, quantity, quantity_type, price, notes, created_at, updated_at`

type orderItemRepo struct {
	db DBTX
}

func NewOrderItemRepo(db DBTX) OrderItemRepository {
	return &orderItemRepo{db: db}
}

func scanOrderItem(row pgx.Row) (*models.OrderItem, error) {
	orderItem := &models.OrderItem{}
	err := row.Scan(&orderItem.ID, &orderItem.OrderID, &orderItem.ItemID, &orderItem.ItemName, &orderItem.Quantity,
		&orderItem.QuantityType, &orderItem.Price, &orderItem.Notes, &orderItem.CreatedAt, &orderItem.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return orderItem, nil
}

func (r *orderItemRepo) Create(ctx context.Context, orderItem *models.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, item_id, item_name, quantity, quantity_type, price, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, orderItem.ID, orderItem.OrderID, orderItem.ItemID, orderItem.ItemName,
		orderItem.Quantity, orderItem.QuantityType, orderItem.Price, orderItem.Notes)
	return err
}

func (r *orderItemRepo) GetByID(ctx context.Context, orderID, id uuid.UUID) (*models.OrderItem, error) {
	query := `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = $1 AND id = $2`
	orderItem, err := scanOrderItem(r.db.QueryRow(ctx, query, orderID, id))
	if err != nil {
		return nil, notFound(err)
	}
	return orderItem, nil
}

// Update writes quantity and notes. Price is never rewritten once a line exists.
func (r *orderItemRepo) Update(ctx context.Context, orderItem *models.OrderItem) error {
	query := `
		UPDATE order_items
		SET quantity = $1, notes = $2, updated_at = NOW()
		WHERE order_id = $3 AND id = $4
	`
	tag, err := r.db.Exec(ctx, query, orderItem.Quantity, orderItem.Notes, orderItem.OrderID, orderItem.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderItemRepo) Delete(ctx context.Context, orderID, id uuid.UUID) error {
	query := `DELETE FROM order_items WHERE order_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, orderID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderItemRepo) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]*models.OrderItem, error) {
	query := `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orderItems []*models.OrderItem
	for rows.Next() {
		orderItem, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		orderItems = append(orderItems, orderItem)
	}
	return orderItems, rows.Err()
}
