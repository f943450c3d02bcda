package analytics

import (
	"context"
	"fmt"
	"time"

	"dinepos/internal/caching"
	"dinepos/internal/models"
	"dinepos/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	summaryCacheTTL = 5 * time.Minute
	topItemsLimit   = 10
)

// AnalyticsService computes sales summaries over completed orders.
type AnalyticsService struct {
	repo         repositories.AnalyticsRepository
	cacheService caching.CacheService
	now          func() time.Time
}

func NewAnalyticsService(repo repositories.AnalyticsRepository, cacheService caching.CacheService) *AnalyticsService {
	return &AnalyticsService{
		repo:         repo,
		cacheService: cacheService,
		now:          time.Now,
	}
}

func periodKey(from, to time.Time) string {
	return fmt.Sprintf("%d-%d", from.Unix(), to.Unix())
}

// Today returns the half-open range covering the current UTC day.
func (a *AnalyticsService) Today() (time.Time, time.Time) {
	now := a.now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// Summary aggregates [from, to). Results are cached per outlet and range.
func (a *AnalyticsService) Summary(ctx context.Context, outletID uuid.UUID, from, to time.Time) (*models.SalesSummary, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("invalid range: %s is not after %s", to, from)
	}
	key := periodKey(from, to)
	if cached, err := a.cacheService.GetSalesSummary(ctx, outletID, key); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		logrus.WithError(err).WithField("outlet_id", outletID).Warn("analytics cache read failed")
	}

	summary, err := a.compute(ctx, outletID, from, to)
	if err != nil {
		return nil, err
	}
	if err := a.cacheService.SetSalesSummary(ctx, outletID, key, summary, summaryCacheTTL); err != nil {
		logrus.WithError(err).WithField("outlet_id", outletID).Warn("analytics cache write failed")
	}
	return summary, nil
}

func (a *AnalyticsService) compute(ctx context.Context, outletID uuid.UUID, from, to time.Time) (*models.SalesSummary, error) {
	summary := &models.SalesSummary{
		OutletID:    outletID,
		From:        from,
		To:          to,
		GeneratedAt: a.now().UTC(),
	}

	var totals *repositories.SalesTotals
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = a.repo.SalesTotals(gctx, outletID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		summary.CancelledCount, err = a.repo.CancelledCount(gctx, outletID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		summary.ByPaymentMethod, err = a.repo.SalesByPaymentMethod(gctx, outletID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		summary.ByOrderType, err = a.repo.OrdersByType(gctx, outletID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		summary.TopItems, err = a.repo.TopItems(gctx, outletID, from, to, topItemsLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute sales summary: %w", err)
	}

	summary.OrderCount = totals.OrderCount
	summary.NetSales = totals.Subtotal
	summary.TaxCollected = totals.Tax
	summary.GrossSales = totals.Total
	summary.AverageTicket = decimal.Zero
	if totals.OrderCount > 0 {
		summary.AverageTicket = totals.Total.Div(decimal.NewFromInt(int64(totals.OrderCount))).Round(2)
	}
	if summary.TopItems == nil {
		summary.TopItems = []models.TopItem{}
	}
	return summary, nil
}

// Refresh recomputes today's summary for the outlet and overwrites the cache entry.
func (a *AnalyticsService) Refresh(ctx context.Context, outletID uuid.UUID) (*models.SalesSummary, error) {
	from, to := a.Today()
	summary, err := a.compute(ctx, outletID, from, to)
	if err != nil {
		return nil, err
	}
	if err := a.cacheService.SetSalesSummary(ctx, outletID, periodKey(from, to), summary, summaryCacheTTL); err != nil {
		return summary, err
	}
	return summary, nil
}
