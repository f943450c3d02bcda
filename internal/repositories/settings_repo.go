package repositories

import (
	"context"

	"dinepos/internal/models"

	"github.com/google/uuid"
)

type OutletSettingsRepository interface {
	Get(ctx context.Context, outletID uuid.UUID) (*models.OutletSettings, error)
	Upsert(ctx context.Context, settings *models.OutletSettings) error
}

type outletSettingsRepo struct {
	db DBTX
}

func NewOutletSettingsRepo(db DBTX) OutletSettingsRepository {
	return &outletSettingsRepo{db: db}
}

func (r *outletSettingsRepo) Get(ctx context.Context, outletID uuid.UUID) (*models.OutletSettings, error) {
	s := &models.OutletSettings{}
	query := `
		SELECT outlet_id, gst_enabled, gst_percentage, cgst_percentage, sgst_percentage, updated_at
		FROM outlet_settings
		WHERE outlet_id = $1
	`
	err := r.db.QueryRow(ctx, query, outletID).Scan(&s.OutletID, &s.GSTEnabled, &s.GSTPercentage, &s.CGSTPercentage, &s.SGSTPercentage, &s.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

func (r *outletSettingsRepo) Upsert(ctx context.Context, s *models.OutletSettings) error {
	query := `
		INSERT INTO outlet_settings (outlet_id, gst_enabled, gst_percentage, cgst_percentage, sgst_percentage, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (outlet_id) DO UPDATE
		SET gst_enabled = EXCLUDED.gst_enabled, gst_percentage = EXCLUDED.gst_percentage, cgst_percentage = EXCLUDED.cgst_percentage, sgst_percentage = EXCLUDED.sgst_percentage, updated_at = NOW()
		RETURNING updated_at
	`
	return r.db.QueryRow(ctx, query, s.OutletID, s.GSTEnabled, s.GSTPercentage, s.CGSTPercentage, s.SGSTPercentage).Scan(&s.UpdatedAt)
}
