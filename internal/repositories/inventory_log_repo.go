package repositories

import (
	"context"

	"dinepos/internal/models"

	"github.com/google/uuid"
)

// InventoryLogRepository is append-only: entries are never updated or deleted.
type InventoryLogRepository interface {
	Create(ctx context.Context, entry *models.InventoryLog) error
	ListByItem(ctx context.Context, outletID, itemID uuid.UUID, limit, offset int) ([]*models.InventoryLog, error)
}

type inventoryLogRepo struct {
	db DBTX
}

func NewInventoryLogRepo(db DBTX) InventoryLogRepository {
	return &inventoryLogRepo{db: db}
}

func (r *inventoryLogRepo) Create(ctx context.Context, entry *models.InventoryLog) error {
	query := `
		INSERT INTO inventory_logs (id, outlet_id, item_id, change, reason, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`
	return r.db.QueryRow(ctx, query, entry.ID, entry.OutletID, entry.ItemID, entry.Change, entry.Reason, entry.CreatedBy).Scan(&entry.CreatedAt)
}

func (r *inventoryLogRepo) ListByItem(ctx context.Context, outletID, itemID uuid.UUID, limit, offset int) ([]*models.InventoryLog, error) {
	query := `
		SELECT id, outlet_id, item_id, change, reason, created_by, created_at
		FROM inventory_logs
		WHERE outlet_id = $1 AND item_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, outletID, itemID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.InventoryLog
	for rows.Next() {
		e := &models.InventoryLog{}
		if err := rows.Scan(&e.ID, &e.OutletID, &e.ItemID, &e.Change, &e.Reason, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
