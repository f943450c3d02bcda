package services

import (
	"context"
	"errors"
	"time"

	"dinepos/internal/caching"
	"dinepos/internal/models"
	"dinepos/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const settingsCacheTTL = 10 * time.Minute

type SettingsService interface {
	// Get returns the outlet's settings, or GST-enabled defaults when none are stored.
	Get(ctx context.Context, outletID uuid.UUID) (*models.OutletSettings, error)
	Put(ctx context.Context, outletID uuid.UUID, settings *models.OutletSettings) error
}

type settingsService struct {
	store repositories.Store
	cache caching.CacheService
}

func NewSettingsService(store repositories.Store, cache caching.CacheService) SettingsService {
	return &settingsService{store: store, cache: cache}
}

func (s *settingsService) Get(ctx context.Context, outletID uuid.UUID) (*models.OutletSettings, error) {
	if cached, err := s.cache.GetSettings(ctx, outletID); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		logrus.WithError(err).WithField("outlet_id", outletID).Warn("settings cache read failed")
	}

	settings, err := s.store.Settings().Get(ctx, outletID)
	if errors.Is(err, repositories.ErrNotFound) {
		return &models.OutletSettings{OutletID: outletID, GSTEnabled: true}, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetSettings(ctx, settings, settingsCacheTTL); err != nil {
		logrus.WithError(err).WithField("outlet_id", outletID).Warn("settings cache write failed")
	}
	return settings, nil
}

func (s *settingsService) Put(ctx context.Context, outletID uuid.UUID, settings *models.OutletSettings) error {
	verr := &ValidationError{}
	checkPercentage(verr, "gst_percentage", settings.GSTPercentage)
	checkPercentage(verr, "cgst_percentage", settings.CGSTPercentage)
	checkPercentage(verr, "sgst_percentage", settings.SGSTPercentage)
	if err := verr.ErrOrNil(); err != nil {
		return err
	}

	settings.OutletID = outletID
	if err := s.store.Settings().Upsert(ctx, settings); err != nil {
		return err
	}
	if err := s.cache.DeleteSettings(ctx, outletID); err != nil {
		logrus.WithError(err).WithField("outlet_id", outletID).Warn("failed to invalidate settings cache")
	}
	return nil
}

func checkPercentage(verr *ValidationError, field string, p *decimal.Decimal) {
	if p == nil {
		return
	}
	if p.IsNegative() || p.GreaterThan(hundred) {
		verr.Add(field, field+" must be between 0 and 100")
	}
}
