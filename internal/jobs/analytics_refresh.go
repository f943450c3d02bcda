package jobs

import (
	"context"
	"sync/atomic"
	"time"

	"dinepos/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type SummaryRefresher interface {
	Refresh(ctx context.Context, outletID uuid.UUID) (*models.SalesSummary, error)
}

type AnalyticsRefreshService struct {
	outlets   OutletLister
	analytics SummaryRefresher
}

type AnalyticsRefreshResult struct {
	OutletsProcessed int
	Failed           int
	LastRefreshAt    time.Time
}

func NewAnalyticsRefreshService(outlets OutletLister, analytics SummaryRefresher) *AnalyticsRefreshService {
	return &AnalyticsRefreshService{
		outlets:   outlets,
		analytics: analytics,
	}
}

func (a *AnalyticsRefreshService) RefreshAnalyticsForOutlet(ctx context.Context, outletID uuid.UUID) error {
	summary, err := a.analytics.Refresh(ctx, outletID)
	if err != nil {
		logrus.WithError(err).WithField("outlet_id", outletID).Error("failed to refresh analytics")
		return err
	}
	logrus.WithFields(logrus.Fields{
		"outlet_id":   outletID,
		"orders":      summary.OrderCount,
		"gross_sales": summary.GrossSales.StringFixed(2),
	}).Debug("analytics refreshed")
	return nil
}

func (a *AnalyticsRefreshService) RefreshAllOutlets(ctx context.Context) (*AnalyticsRefreshResult, error) {
	outletIDs, err := a.outlets.ListOutletIDs(ctx)
	if err != nil {
		return nil, err
	}

	var (
		processed, failed atomic.Int64
		group             errgroup.Group
	)
	group.SetLimit(maxConcurrentOutlets)
	for _, outletID := range outletIDs {
		group.Go(func() error {
			if err := a.RefreshAnalyticsForOutlet(ctx, outletID); err != nil {
				failed.Add(1)
				return nil
			}
			processed.Add(1)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return &AnalyticsRefreshResult{
		OutletsProcessed: int(processed.Load()),
		Failed:           int(failed.Load()),
		LastRefreshAt:    time.Now().UTC(),
	}, nil
}

// ScheduledAnalyticsRefresh is the scheduler entry point.
func (a *AnalyticsRefreshService) ScheduledAnalyticsRefresh(ctx context.Context) error {
	start := time.Now()
	result, err := a.RefreshAllOutlets(ctx)
	if err != nil {
		logrus.WithError(err).Error("scheduled analytics refresh failed")
		return err
	}
	logrus.WithFields(logrus.Fields{
		"outlets":  result.OutletsProcessed,
		"failed":   result.Failed,
		"duration": time.Since(start),
	}).Info("scheduled analytics refresh completed")
	return nil
}
