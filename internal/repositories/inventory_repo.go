package repositories

import (
	"context"
	"fmt"

	"dinepos/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InventoryRepository interface {
	Create(ctx context.Context, inventory *models.Inventory) error
	GetByItem(ctx context.Context, outletID, itemID uuid.UUID) (*models.Inventory, error)
	// GetByItemForUpdate locks the record until the surrounding transaction ends.
	GetByItemForUpdate(ctx context.Context, outletID, itemID uuid.UUID) (*models.Inventory, error)
	Update(ctx context.Context, inventory *models.Inventory) error
	List(ctx context.Context, outletID uuid.UUID, filter *models.InventorySearchFilter) ([]*models.Inventory, error)
	ListOutletIDs(ctx context.Context) ([]uuid.UUID, error)
}

const inventoryColumns = `id, outlet_id, item_id, stock, low_stock_threshold, updated_at`

type inventoryRepo struct {
	db DBTX
}

func NewInventoryRepo(db DBTX) InventoryRepository {
	return &inventoryRepo{db: db}
}

func scanInventory(row pgx.Row) (*models.Inventory, error) {
	inventory := &models.Inventory{}
	if err := row.Scan(&inventory.ID, &inventory.OutletID, &inventory.ItemID, &inventory.Stock, &inventory.LowStockThreshold, &inventory.UpdatedAt); err != nil {
		return nil, err
	}
	return inventory, nil
}

func (r *inventoryRepo) Create(ctx context.Context, inventory *models.Inventory) error {
	query := `
		INSERT INTO inventory (id, outlet_id, item_id, stock, low_stock_threshold, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.db.Exec(ctx, query, inventory.ID, inventory.OutletID, inventory.ItemID, inventory.Stock, inventory.LowStockThreshold)
	return err
}

func (r *inventoryRepo) GetByItem(ctx context.Context, outletID, itemID uuid.UUID) (*models.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE outlet_id = $1 AND item_id = $2`
	inventory, err := scanInventory(r.db.QueryRow(ctx, query, outletID, itemID))
	if err != nil {
		return nil, notFound(err)
	}
	return inventory, nil
}

func (r *inventoryRepo) GetByItemForUpdate(ctx context.Context, outletID, itemID uuid.UUID) (*models.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE outlet_id = $1 AND item_id = $2 FOR UPDATE`
	inventory, err := scanInventory(r.db.QueryRow(ctx, query, outletID, itemID))
	if err != nil {
		return nil, notFound(err)
	}
	return inventory, nil
}

func (r *inventoryRepo) Update(ctx context.Context, inventory *models.Inventory) error {
	query := `
		UPDATE inventory
		SET stock = $1, low_stock_threshold = $2, updated_at = NOW()
		WHERE outlet_id = $3 AND id = $4
	`
	_, err := r.db.Exec(ctx, query, inventory.Stock, inventory.LowStockThreshold, inventory.OutletID, inventory.ID)
	return err
}

func (r *inventoryRepo) List(ctx context.Context, outletID uuid.UUID, filter *models.InventorySearchFilter) ([]*models.Inventory, error) {
	if filter == nil {
		filter = &models.InventorySearchFilter{}
	}
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE outlet_id = $1`
	args := []interface{}{outletID}
	conditionCount := 1

	if filter.ItemID != nil {
		conditionCount++
		query += fmt.Sprintf(` AND item_id = $%d`, conditionCount)
		args = append(args, *filter.ItemID)
	}
	if filter.LowStockOnly {
		query += ` AND stock <= low_stock_threshold`
	}

	query += fmt.Sprintf(` ORDER BY updated_at DESC LIMIT $%d OFFSET $%d`, conditionCount+1, conditionCount+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inventories []*models.Inventory
	for rows.Next() {
		inventory, err := scanInventory(rows)
		if err != nil {
			return nil, err
		}
		inventories = append(inventories, inventory)
	}
	return inventories, rows.Err()
}

func (r *inventoryRepo) ListOutletIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT outlet_id FROM inventory`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
