package repositories

import (
	"context"

	"dinepos/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TableRepository interface {
	GetByID(ctx context.Context, outletID, id uuid.UUID) (*models.Table, error)
	GetForUpdate(ctx context.Context, outletID, id uuid.UUID) (*models.Table, error)
	UpdateStatus(ctx context.Context, outletID, id uuid.UUID, status models.TableStatus) error
	List(ctx context.Context, outletID uuid.UUID) ([]*models.Table, error)
}

const tableColumns = `id, outlet_id, name, status, capacity, created_at, updated_at`

type tableRepo struct {
	db DBTX
}

func NewTableRepo(db DBTX) TableRepository {
	return &tableRepo{db: db}
}

func scanTable(row pgx.Row) (*models.Table, error) {
	table := &models.Table{}
	if err := row.Scan(&table.ID, &table.OutletID, &table.Name, &table.Status, &table.Capacity, &table.CreatedAt, &table.UpdatedAt); err != nil {
		return nil, err
	}
	return table, nil
}

func (r *tableRepo) GetByID(ctx context.Context, outletID, id uuid.UUID) (*models.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM restaurant_tables WHERE outlet_id = $1 AND id = $2`
	table, err := scanTable(r.db.QueryRow(ctx, query, outletID, id))
	if err != nil {
		return nil, notFound(err)
	}
	return table, nil
}

func (r *tableRepo) GetForUpdate(ctx context.Context, outletID, id uuid.UUID) (*models.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM restaurant_tables WHERE outlet_id = $1 AND id = $2 FOR UPDATE`
	table, err := scanTable(r.db.QueryRow(ctx, query, outletID, id))
	if err != nil {
		return nil, notFound(err)
	}
	return table, nil
}

func (r *tableRepo) UpdateStatus(ctx context.Context, outletID, id uuid.UUID, status models.TableStatus) error {
	query := `UPDATE restaurant_tables SET status = $1, updated_at = NOW() WHERE outlet_id = $2 AND id = $3`
	tag, err := r.db.Exec(ctx, query, status, outletID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tableRepo) List(ctx context.Context, outletID uuid.UUID) ([]*models.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM restaurant_tables WHERE outlet_id = $1 ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query, outletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []*models.Table
	for rows.Next() {
		table, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, rows.Err()
}
