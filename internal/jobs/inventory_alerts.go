package jobs

import (
	"context"
	"sync/atomic"

	"dinepos/internal/models"
	"dinepos/internal/realtime"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentOutlets bounds how many outlets a job processes at once.
const maxConcurrentOutlets = 5

// OutletLister yields the outlets that have any inventory.
type OutletLister interface {
	ListOutletIDs(ctx context.Context) ([]uuid.UUID, error)
}

type LowStockFinder interface {
	LowStock(ctx context.Context, outletID uuid.UUID) ([]*models.InventoryView, error)
}

type InventoryAlert struct {
	ItemID    uuid.UUID `json:"item_id"`
	ItemName  string    `json:"item_name"`
	Stock     string    `json:"stock"`
	Threshold string    `json:"threshold"`
}

type InventoryAlertService struct {
	outlets   OutletLister
	inventory LowStockFinder
	publisher realtime.Publisher
}

func NewInventoryAlertService(outlets OutletLister, inventory LowStockFinder, publisher realtime.Publisher) *InventoryAlertService {
	return &InventoryAlertService{
		outlets:   outlets,
		inventory: inventory,
		publisher: publisher,
	}
}

// CheckLowStock returns the alerts for one outlet.
func (a *InventoryAlertService) CheckLowStock(ctx context.Context, outletID uuid.UUID) ([]InventoryAlert, error) {
	views, err := a.inventory.LowStock(ctx, outletID)
	if err != nil {
		logrus.WithError(err).WithField("outlet_id", outletID).Error("failed to list low stock inventory")
		return nil, err
	}

	alerts := make([]InventoryAlert, 0, len(views))
	for _, view := range views {
		alerts = append(alerts, InventoryAlert{
			ItemID:    view.ItemID,
			ItemName:  view.ItemName,
			Stock:     view.Stock.String(),
			Threshold: view.LowStockThreshold.String(),
		})
	}
	return alerts, nil
}

// PublishAlerts sends one low-stock event per outlet. Nothing is sent when alerts is empty.
func (a *InventoryAlertService) PublishAlerts(ctx context.Context, outletID uuid.UUID, alerts []InventoryAlert) error {
	if len(alerts) == 0 {
		return nil
	}
	for _, alert := range alerts {
		logrus.WithFields(logrus.Fields{
			"outlet_id": outletID,
			"item_id":   alert.ItemID,
			"item_name": alert.ItemName,
			"stock":     alert.Stock,
			"threshold": alert.Threshold,
		}).Warn("low stock")
	}
	return a.publisher.Publish(ctx, realtime.Event{
		Table:    realtime.TableInventory,
		Type:     realtime.EventLowStock,
		OutletID: outletID,
		Payload:  alerts,
	})
}

// ScanAllOutlets checks every outlet with inventory and returns how many alerts were raised.
// A failing outlet is logged and skipped.
func (a *InventoryAlertService) ScanAllOutlets(ctx context.Context) (int, error) {
	outletIDs, err := a.outlets.ListOutletIDs(ctx)
	if err != nil {
		return 0, err
	}

	var (
		total atomic.Int64
		group errgroup.Group
	)
	group.SetLimit(maxConcurrentOutlets)
	for _, outletID := range outletIDs {
		group.Go(func() error {
			alerts, err := a.CheckLowStock(ctx, outletID)
			if err != nil {
				return nil
			}
			if err := a.PublishAlerts(ctx, outletID, alerts); err != nil {
				logrus.WithError(err).WithField("outlet_id", outletID).Warn("failed to publish low stock alerts")
			}
			total.Add(int64(len(alerts)))
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return 0, err
	}
	return int(total.Load()), nil
}

// ScheduledLowStockCheck is the scheduler entry point.
func (a *InventoryAlertService) ScheduledLowStockCheck(ctx context.Context) error {
	logrus.Info("starting scheduled low stock check")
	total, err := a.ScanAllOutlets(ctx)
	if err != nil {
		logrus.WithError(err).Error("scheduled low stock check failed")
		return err
	}
	logrus.WithField("alerts", total).Info("scheduled low stock check completed")
	return nil
}
