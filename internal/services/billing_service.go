package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dinepos/internal/caching"
	"dinepos/internal/models"
	"dinepos/internal/realtime"
	"dinepos/internal/repositories"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/labstack/gommon/random"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const idempotencyTTL = 24 * time.Hour

type GenerateBillInput struct {
	OrderID       uuid.UUID            `json:"orderId"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	// IdempotencyKey makes a retried request return the first bill instead of a conflict.
	IdempotencyKey string `json:"-"`
}

type BillingService interface {
	GenerateBill(ctx context.Context, outletID, userID uuid.UUID, in *GenerateBillInput) (*models.Bill, error)
	GetBill(ctx context.Context, outletID, orderID uuid.UUID) (*models.Bill, error)
	ReceiptURL(ctx context.Context, outletID, orderID uuid.UUID) (string, error)
}

type billingService struct {
	store     repositories.Store
	tax       TaxPolicy
	cache     caching.CacheService
	receipts  ReceiptService
	publisher realtime.Publisher
	now       func() time.Time
}

func NewBillingService(store repositories.Store, tax TaxPolicy, cache caching.CacheService, receipts ReceiptService, publisher realtime.Publisher) BillingService {
	return &billingService{
		store:     store,
		tax:       tax,
		cache:     cache,
		receipts:  receipts,
		publisher: publisher,
		now:       time.Now,
	}
}

// BillNumber formats as B-<yyyymmdd>-<6 random alphanumerics>.
func BillNumber(at time.Time) string {
	return fmt.Sprintf("B-%s-%s", at.Format("20060102"), random.String(6, random.Uppercase+random.Numeric))
}

func InventoryReason(orderID uuid.UUID) string {
	return fmt.Sprintf("Order #%s billed", orderID)
}

func (s *billingService) GenerateBill(ctx context.Context, outletID, userID uuid.UUID, in *GenerateBillInput) (*models.Bill, error) {
	verr := &ValidationError{}
	if in.OrderID == uuid.Nil {
		verr.Add("orderId", "orderId is required")
	}
	if !in.PaymentMethod.Valid() {
		verr.Add("paymentMethod", "paymentMethod must be CASH, UPI or CARD")
	}
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if bill, err := s.replay(ctx, outletID, key, in.OrderID); bill != nil || err != nil {
			return bill, err
		}
	}

	log := logrus.WithFields(logrus.Fields{"outlet_id": outletID, "order_id": in.OrderID})

	var (
		bill     *models.Bill
		order    *models.Order
		adjusted []*models.Inventory
	)
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		var err error
		order, err = tx.Orders().GetForUpdate(ctx, outletID, in.OrderID)
		if err != nil {
			return notFoundAs(err, "order")
		}
		if order.Status.Terminal() {
			return &ConflictError{Message: fmt.Sprintf("order is already %s", strings.ToLower(string(order.Status)))}
		}

		lines, err := tx.OrderItems().ListByOrderID(ctx, order.ID)
		if err != nil {
			return err
		}
		settings, err := readSettings(ctx, tx, outletID)
		if err != nil {
			return err
		}

		billedAt := s.now().UTC()
		number := BillNumber(billedAt)
		method := in.PaymentMethod
		order.TaxRate = s.tax.RateFor(order, settings)
		order.Subtotal, order.Tax, order.Total = Totals(lines, order.TaxRate)
		cgst, sgst := SplitTax(order.Tax, settings)
		order.PaymentMethod = &method
		order.BillNumber = &number
		order.BilledAt = &billedAt
		order.CGST, order.SGST = &cgst, &sgst

		applied, err := tx.Orders().Complete(ctx, order)
		if err != nil {
			return fmt.Errorf("failed to complete order: %w", err)
		}
		if !applied {
			return &ConflictError{Message: "order is already completed"}
		}
		order.Status = models.OrderStatusCompleted
		order.Items = lines

		if order.OrderType == models.OrderTypeDineIn && order.TableID != nil {
			if err := tx.Tables().UpdateStatus(ctx, outletID, *order.TableID, models.TableStatusEmpty); err != nil {
				return fmt.Errorf("failed to release table: %w", err)
			}
		}

		reason := InventoryReason(order.ID)
		for _, line := range lines {
			delta := decimal.NewFromInt(int64(line.Quantity)).Neg()
			inventory, err := applyStockChange(ctx, tx, outletID, line.ItemID, delta, reason, userID)
			if errors.Is(err, repositories.ErrNotFound) {
				log.WithField("item_id", line.ItemID).Debug("item has no inventory record, skipping deduction")
				continue
			}
			if err != nil {
				return err
			}
			adjusted = append(adjusted, inventory)
		}

		bill = buildBill(order, settings)
		return nil
	})
	if err != nil {
		var conflict *ConflictError
		if key != "" && errors.As(err, &conflict) {
			if replayed, _ := s.replay(ctx, outletID, key, in.OrderID); replayed != nil {
				return replayed, nil
			}
		}
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"bill_number":    bill.BillNumber,
		"total":          bill.Total.String(),
		"payment_method": bill.PaymentMethod,
	}).Info("bill generated")

	if errs := s.afterCommit(ctx, order, bill, adjusted, key); errs != nil {
		log.WithError(errs).Warn("post-billing side effects failed")
	}
	return bill, nil
}

// replay returns the bill cached under an idempotency key, or nil if there is none.
func (s *billingService) replay(ctx context.Context, outletID uuid.UUID, key string, orderID uuid.UUID) (*models.Bill, error) {
	cached, err := s.cache.GetIdempotentBill(ctx, outletID, key)
	if err != nil {
		logrus.WithError(err).Warn("idempotency lookup failed")
		return nil, nil
	}
	if cached == nil {
		return nil, nil
	}
	if cached.OrderID != orderID {
		return nil, NewValidationError("Idempotency-Key", "key was already used for a different order")
	}
	return cached, nil
}

func (s *billingService) afterCommit(ctx context.Context, order *models.Order, bill *models.Bill, adjusted []*models.Inventory, key string) error {
	var result *multierror.Error

	events := []realtime.Event{{
		Table: realtime.TableOrders, Type: realtime.EventUpdate,
		OutletID: order.OutletID, RecordID: order.ID, Payload: order,
	}}
	if order.OrderType == models.OrderTypeDineIn && order.TableID != nil {
		events = append(events, realtime.Event{
			Table: realtime.TableTables, Type: realtime.EventUpdate,
			OutletID: order.OutletID, RecordID: *order.TableID,
			Payload: map[string]models.TableStatus{"status": models.TableStatusEmpty},
		})
	}
	for _, inv := range adjusted {
		events = append(events, realtime.Event{
			Table: realtime.TableInventory, Type: realtime.EventUpdate,
			OutletID: order.OutletID, RecordID: inv.ItemID, Payload: inv,
		})
	}
	for _, event := range events {
		if err := s.publisher.Publish(ctx, event); err != nil {
			result = multierror.Append(result, fmt.Errorf("publish %s: %w", event.Table, err))
		}
	}

	if err := s.receipts.Archive(ctx, bill); err != nil {
		result = multierror.Append(result, err)
	}
	if err := s.cache.InvalidateAnalytics(ctx, order.OutletID); err != nil {
		result = multierror.Append(result, fmt.Errorf("invalidate analytics: %w", err))
	}
	if key != "" {
		if err := s.cache.SetIdempotentBill(ctx, order.OutletID, key, bill, idempotencyTTL); err != nil {
			result = multierror.Append(result, fmt.Errorf("store idempotency key: %w", err))
		}
	}
	return result.ErrorOrNil()
}

func (s *billingService) GetBill(ctx context.Context, outletID, orderID uuid.UUID) (*models.Bill, error) {
	order, err := s.store.Orders().GetByID(ctx, outletID, orderID)
	if err != nil {
		return nil, notFoundAs(err, "order")
	}
	if order.Status != models.OrderStatusCompleted {
		return nil, &NotFoundError{Resource: "bill"}
	}
	order.Items, err = s.store.OrderItems().ListByOrderID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	var settings *models.OutletSettings
	if order.CGST == nil || order.SGST == nil {
		// billed before the split was stored
		settings, err = readSettings(ctx, s.store, outletID)
		if err != nil {
			return nil, err
		}
	}
	return buildBill(order, settings), nil
}

func (s *billingService) ReceiptURL(ctx context.Context, outletID, orderID uuid.UUID) (string, error) {
	bill, err := s.GetBill(ctx, outletID, orderID)
	if err != nil {
		return "", err
	}
	return s.receipts.URL(ctx, bill)
}

// buildBill uses the split stored on the order, falling back to settings when it is absent.
func buildBill(order *models.Order, settings *models.OutletSettings) *models.Bill {
	var cgst, sgst decimal.Decimal
	if order.CGST != nil && order.SGST != nil {
		cgst, sgst = *order.CGST, *order.SGST
	} else {
		cgst, sgst = SplitTax(order.Tax, settings)
	}
	bill := &models.Bill{
		OrderID:   order.ID,
		OutletID:  order.OutletID,
		OrderType: order.OrderType,
		TableID:   order.TableID,
		Subtotal:  order.Subtotal,
		TaxRate:   order.TaxRate,
		CGST:      cgst,
		SGST:      sgst,
		Tax:       order.Tax,
		Total:     order.Total,
		Items:     order.Items,
	}
	if order.BillNumber != nil {
		bill.BillNumber = *order.BillNumber
	}
	if order.PaymentMethod != nil {
		bill.PaymentMethod = *order.PaymentMethod
	}
	if order.BilledAt != nil {
		bill.BilledAt = *order.BilledAt
	}
	return bill
}
