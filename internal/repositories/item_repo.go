package repositories

import (
	"context"
	"fmt"

	"dinepos/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, outletID, id uuid.UUID) (*models.Item, error)
	GetByIDs(ctx context.Context, outletID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	List(ctx context.Context, outletID uuid.UUID, filter *models.ItemSearchFilter) ([]*models.Item, error)
}

const itemColumns = `id, outlet_id, name, category, pricing_mode, price, base_price, quarter_price, half_price, three_quarter_price, full_price, requires_quantity, available_quantity_types, is_available, created_at, updated_at`

type itemRepo struct {
	db DBTX
}

func NewItemRepo(db DBTX) ItemRepository {
	return &itemRepo{db: db}
}

func scanItem(row pgx.Row) (*models.Item, error) {
	item := &models.Item{}
	err := row.Scan(&item.ID, &item.OutletID, &item.Name, &item.Category, &item.PricingMode, &item.Price,
		&item.BasePrice, &item.QuarterPrice, &item.HalfPrice, &item.ThreeQuarterPrice, &item.FullPrice,
		&item.RequiresQuantity, &item.AvailableQuantityTypes, &item.IsAvailable, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *itemRepo) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (id, outlet_id, name, category, pricing_mode, price, base_price, quarter_price, half_price, three_quarter_price, full_price, requires_quantity, available_quantity_types, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.OutletID, item.Name, item.Category, item.PricingMode, item.Price,
		item.BasePrice, item.QuarterPrice, item.HalfPrice, item.ThreeQuarterPrice, item.FullPrice,
		item.RequiresQuantity, item.AvailableQuantityTypes, item.IsAvailable)
	return err
}

func (r *itemRepo) GetByID(ctx context.Context, outletID, id uuid.UUID) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE outlet_id = $1 AND id = $2`
	item, err := scanItem(r.db.QueryRow(ctx, query, outletID, id))
	if err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

func (r *itemRepo) GetByIDs(ctx context.Context, outletID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE outlet_id = $1 AND id = ANY($2)`
	rows, err := r.db.Query(ctx, query, outletID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[uuid.UUID]*models.Item, len(ids))
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items[item.ID] = item
	}
	return items, rows.Err()
}

func (r *itemRepo) Update(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE items
		SET name = $1, category = $2, pricing_mode = $3, price = $4, base_price = $5, quarter_price = $6, half_price = $7, three_quarter_price = $8, full_price = $9, requires_quantity = $10, available_quantity_types = $11, is_available = $12, updated_at = NOW()
		WHERE outlet_id = $13 AND id = $14
	`
	tag, err := r.db.Exec(ctx, query, item.Name, item.Category, item.PricingMode, item.Price, item.BasePrice,
		item.QuarterPrice, item.HalfPrice, item.ThreeQuarterPrice, item.FullPrice, item.RequiresQuantity,
		item.AvailableQuantityTypes, item.IsAvailable, item.OutletID, item.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *itemRepo) List(ctx context.Context, outletID uuid.UUID, filter *models.ItemSearchFilter) ([]*models.Item, error) {
	if filter == nil {
		filter = &models.ItemSearchFilter{}
	}
	if filter.Limit == 0 {
		filter.Limit = 100
	}

	query := `SELECT ` + itemColumns + ` FROM items WHERE outlet_id = $1`
	args := []interface{}{outletID}
	conditionCount := 1

	if filter.Query != "" {
		conditionCount++
		query += fmt.Sprintf(` AND name ILIKE $%d`, conditionCount)
		args = append(args, "%"+filter.Query+"%")
	}
	if filter.Category != "" {
		conditionCount++
		query += fmt.Sprintf(` AND category = $%d`, conditionCount)
		args = append(args, filter.Category)
	}
	if filter.AvailableOnly {
		query += ` AND is_available`
	}

	query += fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, conditionCount+1, conditionCount+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
