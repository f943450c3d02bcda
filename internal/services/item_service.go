package services

import (
	"context"
	"strings"
	"time"

	"dinepos/internal/caching"
	"dinepos/internal/models"
	"dinepos/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const itemCacheTTL = 5 * time.Minute

// ItemService manages the menu catalog. Price edits only affect lines created afterwards.
type ItemService interface {
	Create(ctx context.Context, outletID uuid.UUID, item *models.Item) error
	Get(ctx context.Context, outletID, itemID uuid.UUID) (*models.Item, error)
	Update(ctx context.Context, outletID uuid.UUID, item *models.Item) error
	List(ctx context.Context, outletID uuid.UUID, filter *models.ItemSearchFilter) ([]*models.Item, error)
}

type itemService struct {
	store repositories.Store
	cache caching.CacheService
}

func NewItemService(store repositories.Store, cache caching.CacheService) ItemService {
	return &itemService{store: store, cache: cache}
}

func validateItem(item *models.Item) error {
	verr := &ValidationError{}
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		verr.Add("name", "name is required")
	}
	if item.PricingMode == "" {
		item.PricingMode = models.PricingModeFixed
	}
	if !item.PricingMode.Valid() {
		verr.Add("pricing_mode", "pricing_mode must be FIXED, QUANTITY_AUTO or QUANTITY_MANUAL")
	}
	prices := map[string]*decimal.Decimal{
		"price":               &item.Price,
		"base_price":          item.BasePrice,
		"quarter_price":       item.QuarterPrice,
		"half_price":          item.HalfPrice,
		"three_quarter_price": item.ThreeQuarterPrice,
		"full_price":          item.FullPrice,
	}
	for field, p := range prices {
		if p != nil && p.IsNegative() {
			verr.Add(field, field+" cannot be negative")
		}
	}
	for _, qt := range item.AvailableQuantityTypes {
		if !models.QuantityType(qt).Valid() {
			verr.Add("available_quantity_types", "unknown quantity type "+qt)
		}
	}
	item.RequiresQuantity = item.NeedsQuantityType()
	return verr.ErrOrNil()
}

func (s *itemService) Create(ctx context.Context, outletID uuid.UUID, item *models.Item) error {
	if err := validateItem(item); err != nil {
		return err
	}
	item.ID = uuid.New()
	item.OutletID = outletID
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()
	return s.store.Items().Create(ctx, item)
}

func (s *itemService) Get(ctx context.Context, outletID, itemID uuid.UUID) (*models.Item, error) {
	if cached, err := s.cache.GetItem(ctx, outletID, itemID); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		logrus.WithError(err).WithField("item_id", itemID).Warn("item cache read failed")
	}

	item, err := s.store.Items().GetByID(ctx, outletID, itemID)
	if err != nil {
		return nil, notFoundAs(err, "item")
	}
	if err := s.cache.SetItem(ctx, item, itemCacheTTL); err != nil {
		logrus.WithError(err).WithField("item_id", itemID).Warn("item cache write failed")
	}
	return item, nil
}

func (s *itemService) Update(ctx context.Context, outletID uuid.UUID, item *models.Item) error {
	if err := validateItem(item); err != nil {
		return err
	}
	item.OutletID = outletID
	if err := s.store.Items().Update(ctx, item); err != nil {
		return notFoundAs(err, "item")
	}
	item.UpdatedAt = time.Now()

	if err := s.cache.DeleteItem(ctx, outletID, item.ID); err != nil {
		logrus.WithError(err).WithField("item_id", item.ID).Warn("failed to invalidate item cache")
	}
	return nil
}

func (s *itemService) List(ctx context.Context, outletID uuid.UUID, filter *models.ItemSearchFilter) ([]*models.Item, error) {
	return s.store.Items().List(ctx, outletID, filter)
}
