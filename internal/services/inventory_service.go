package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dinepos/internal/models"
	"dinepos/internal/realtime"
	"dinepos/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SetStockInput is a manual stock count. Reason defaults to "Manual adjustment".
type SetStockInput struct {
	Stock             decimal.Decimal  `json:"stock"`
	LowStockThreshold *decimal.Decimal `json:"low_stock_threshold"`
	Reason            string           `json:"reason"`
}

type InventoryService interface {
	// ApplyChange is the ledger write path: stock moves by delta, never below zero,
	// and the movement is logged.
	ApplyChange(ctx context.Context, outletID, itemID uuid.UUID, delta decimal.Decimal, reason string, userID uuid.UUID) (*models.Inventory, error)
	SetStock(ctx context.Context, outletID, itemID uuid.UUID, in *SetStockInput, userID uuid.UUID) (*models.Inventory, error)
	Get(ctx context.Context, outletID, itemID uuid.UUID) (*models.InventoryView, error)
	List(ctx context.Context, outletID uuid.UUID, filter *models.InventorySearchFilter) ([]*models.InventoryView, error)
	LowStock(ctx context.Context, outletID uuid.UUID) ([]*models.InventoryView, error)
	Logs(ctx context.Context, outletID, itemID uuid.UUID, limit, offset int) ([]*models.InventoryLog, error)
}

type inventoryService struct {
	store     repositories.Store
	publisher realtime.Publisher
}

func NewInventoryService(store repositories.Store, publisher realtime.Publisher) InventoryService {
	return &inventoryService{
		store:     store,
		publisher: publisher,
	}
}

// applyStockChange runs inside the caller's transaction. It reports ErrNotFound when the
// item has no inventory record at the outlet.
func applyStockChange(ctx context.Context, tx repositories.Store, outletID, itemID uuid.UUID, delta decimal.Decimal, reason string, userID uuid.UUID) (*models.Inventory, error) {
	inventory, err := tx.Inventory().GetByItemForUpdate(ctx, outletID, itemID)
	if err != nil {
		return nil, err
	}

	inventory.Stock = decimal.Max(decimal.Zero, inventory.Stock.Add(delta))
	if err := tx.Inventory().Update(ctx, inventory); err != nil {
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	entry := &models.InventoryLog{
		ID:        uuid.New(),
		OutletID:  outletID,
		ItemID:    itemID,
		Change:    delta,
		Reason:    reason,
		CreatedBy: userID,
	}
	if err := tx.InventoryLogs().Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append inventory log: %w", err)
	}
	return inventory, nil
}

func (s *inventoryService) ApplyChange(ctx context.Context, outletID, itemID uuid.UUID, delta decimal.Decimal, reason string, userID uuid.UUID) (*models.Inventory, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, NewValidationError("reason", "reason is required")
	}

	var inventory *models.Inventory
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		var err error
		inventory, err = applyStockChange(ctx, tx, outletID, itemID, delta, reason, userID)
		return err
	})
	if err != nil {
		return nil, notFoundAs(err, "inventory")
	}

	s.publishChange(ctx, inventory)
	return inventory, nil
}

func (s *inventoryService) SetStock(ctx context.Context, outletID, itemID uuid.UUID, in *SetStockInput, userID uuid.UUID) (*models.Inventory, error) {
	verr := &ValidationError{}
	if in.Stock.IsNegative() {
		verr.Add("stock", "stock cannot be negative")
	}
	if in.LowStockThreshold != nil && in.LowStockThreshold.IsNegative() {
		verr.Add("low_stock_threshold", "low_stock_threshold cannot be negative")
	}
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = "Manual adjustment"
	}

	var inventory *models.Inventory
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		if _, err := tx.Items().GetByID(ctx, outletID, itemID); err != nil {
			return notFoundAs(err, "item")
		}

		current, err := tx.Inventory().GetByItemForUpdate(ctx, outletID, itemID)
		if errors.Is(err, repositories.ErrNotFound) {
			current = &models.Inventory{
				ID:                uuid.New(),
				OutletID:          outletID,
				ItemID:            itemID,
				Stock:             decimal.Zero,
				LowStockThreshold: decimal.Zero,
			}
			if err := tx.Inventory().Create(ctx, current); err != nil {
				return fmt.Errorf("failed to create inventory record: %w", err)
			}
		} else if err != nil {
			return err
		}

		if in.LowStockThreshold != nil && !in.LowStockThreshold.Equal(current.LowStockThreshold) {
			current.LowStockThreshold = *in.LowStockThreshold
			if err := tx.Inventory().Update(ctx, current); err != nil {
				return fmt.Errorf("failed to update threshold: %w", err)
			}
		}

		delta := in.Stock.Sub(current.Stock)
		if delta.IsZero() {
			inventory = current
			return nil
		}
		inventory, err = applyStockChange(ctx, tx, outletID, itemID, delta, reason, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishChange(ctx, inventory)
	return inventory, nil
}

func (s *inventoryService) Get(ctx context.Context, outletID, itemID uuid.UUID) (*models.InventoryView, error) {
	inventory, err := s.store.Inventory().GetByItem(ctx, outletID, itemID)
	if err != nil {
		return nil, notFoundAs(err, "inventory")
	}
	views, err := s.decorate(ctx, outletID, []*models.Inventory{inventory})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *inventoryService) List(ctx context.Context, outletID uuid.UUID, filter *models.InventorySearchFilter) ([]*models.InventoryView, error) {
	inventories, err := s.store.Inventory().List(ctx, outletID, filter)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, outletID, inventories)
}

func (s *inventoryService) LowStock(ctx context.Context, outletID uuid.UUID) ([]*models.InventoryView, error) {
	return s.List(ctx, outletID, &models.InventorySearchFilter{LowStockOnly: true, Limit: 500})
}

func (s *inventoryService) Logs(ctx context.Context, outletID, itemID uuid.UUID, limit, offset int) ([]*models.InventoryLog, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.InventoryLogs().ListByItem(ctx, outletID, itemID, limit, offset)
}

func (s *inventoryService) decorate(ctx context.Context, outletID uuid.UUID, inventories []*models.Inventory) ([]*models.InventoryView, error) {
	if len(inventories) == 0 {
		return []*models.InventoryView{}, nil
	}
	ids := make([]uuid.UUID, 0, len(inventories))
	for _, inv := range inventories {
		ids = append(ids, inv.ItemID)
	}
	items, err := s.store.Items().GetByIDs(ctx, outletID, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*models.InventoryView, 0, len(inventories))
	for _, inv := range inventories {
		view := &models.InventoryView{Inventory: inv, IsLow: inv.LowStock()}
		if item, ok := items[inv.ItemID]; ok {
			view.ItemName = item.Name
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *inventoryService) publishChange(ctx context.Context, inventory *models.Inventory) {
	event := realtime.Event{
		Table:    realtime.TableInventory,
		Type:     realtime.EventUpdate,
		OutletID: inventory.OutletID,
		RecordID: inventory.ItemID,
		Payload:  inventory,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logrus.WithError(err).WithField("item_id", inventory.ItemID).Warn("failed to publish inventory change")
	}
}
