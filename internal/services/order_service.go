package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dinepos/internal/common"
	"dinepos/internal/models"
	"dinepos/internal/pricing"
	"dinepos/internal/realtime"
	"dinepos/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

const maxNotesLength = 500

// OrderLineInput is one requested line: an item, a portion count and an optional portion size.
type OrderLineInput struct {
	ItemID       uuid.UUID            `json:"itemId"`
	Quantity     int                  `json:"quantity"`
	QuantityType *models.QuantityType `json:"quantityType,omitempty"`
	Notes        *string              `json:"notes,omitempty"`
}

type CreateOrderInput struct {
	TableID   *uuid.UUID       `json:"tableId,omitempty"`
	OrderType models.OrderType `json:"orderType"`
	Lines     []OrderLineInput `json:"lines"`
}

// LineUpdate edits quantity and notes of an existing line. Price is not editable.
type LineUpdate struct {
	ID       uuid.UUID `json:"id"`
	Quantity *int      `json:"quantity,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
}

type ModifyLinesInput struct {
	Additions []OrderLineInput `json:"ordersToAdd"`
	Updates   []LineUpdate     `json:"itemsToUpdate"`
	Removals  []uuid.UUID      `json:"itemsToRemove"`
}

type OrderService interface {
	Create(ctx context.Context, outletID, userID uuid.UUID, in *CreateOrderInput) (*models.Order, error)
	ModifyLines(ctx context.Context, outletID, orderID uuid.UUID, in *ModifyLinesInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, outletID, orderID uuid.UUID, status models.OrderStatus, reason *string) (*models.Order, error)
	Get(ctx context.Context, outletID, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, outletID uuid.UUID, filter *models.OrderSearchFilter) ([]*models.Order, error)
	ActiveForTable(ctx context.Context, outletID, tableID uuid.UUID) (*models.Order, error)
}

type orderService struct {
	store     repositories.Store
	tax       TaxPolicy
	publisher realtime.Publisher
}

func NewOrderService(store repositories.Store, tax TaxPolicy, publisher realtime.Publisher) OrderService {
	return &orderService{
		store:     store,
		tax:       tax,
		publisher: publisher,
	}
}

func (s *orderService) Create(ctx context.Context, outletID, userID uuid.UUID, in *CreateOrderInput) (*models.Order, error) {
	verr := &ValidationError{}
	if !in.OrderType.Valid() {
		verr.Add("orderType", "orderType must be DINE_IN or TAKEAWAY")
	}
	if in.OrderType == models.OrderTypeDineIn && (in.TableID == nil || *in.TableID == uuid.Nil) {
		verr.Add("tableId", "tableId is required for DINE_IN orders")
	}
	if len(in.Lines) == 0 {
		verr.Add("lines", "at least one line is required")
	}
	validateLineInputs(verr, "lines", in.Lines)
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:        uuid.New(),
		OutletID:  outletID,
		UserID:    userID,
		Status:    models.OrderStatusNew,
		OrderType: in.OrderType,
	}
	if in.OrderType == models.OrderTypeDineIn {
		order.TableID = in.TableID
	}

	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		if order.TableID != nil {
			if _, err := tx.Tables().GetForUpdate(ctx, outletID, *order.TableID); err != nil {
				return notFoundAs(err, "table")
			}
			active, err := tx.Orders().ActiveByTable(ctx, outletID, *order.TableID)
			if err == nil {
				return &ConflictError{Message: fmt.Sprintf("table already has open order %s", active.ID), TableBusy: true}
			}
			if !errors.Is(err, repositories.ErrNotFound) {
				return err
			}
		}

		lines, err := s.priceLines(ctx, tx, order, "lines", in.Lines)
		if err != nil {
			return err
		}

		settings, err := readSettings(ctx, tx, outletID)
		if err != nil {
			return err
		}
		order.TaxRate = s.tax.Resolve(settings)
		order.Subtotal, order.Tax, order.Total = Totals(lines, order.TaxRate)

		if err := tx.Orders().Create(ctx, order); err != nil {
			return tableBusyOr(err)
		}
		for _, line := range lines {
			if err := tx.OrderItems().Create(ctx, line); err != nil {
				return fmt.Errorf("failed to create order line: %w", err)
			}
		}
		order.Items = lines

		if order.TableID != nil {
			if err := tx.Tables().UpdateStatus(ctx, outletID, *order.TableID, models.TableStatusOccupied); err != nil {
				return fmt.Errorf("failed to occupy table: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"outlet_id": outletID,
		"order_id":  order.ID,
		"total":     order.Total.String(),
	}).Info("order created")

	s.publish(ctx, realtime.TableOrders, realtime.EventInsert, outletID, order.ID, order)
	if order.TableID != nil {
		s.publish(ctx, realtime.TableTables, realtime.EventUpdate, outletID, *order.TableID,
			map[string]models.TableStatus{"status": models.TableStatusOccupied})
	}
	return order, nil
}

func (s *orderService) ModifyLines(ctx context.Context, outletID, orderID uuid.UUID, in *ModifyLinesInput) (*models.Order, error) {
	verr := &ValidationError{}
	validateLineInputs(verr, "ordersToAdd", in.Additions)
	for i, u := range in.Updates {
		if u.ID == uuid.Nil {
			verr.Add(fmt.Sprintf("itemsToUpdate[%d].id", i), "id is required")
		}
		if u.Quantity != nil && *u.Quantity < 1 {
			verr.Add(fmt.Sprintf("itemsToUpdate[%d].quantity", i), "quantity must be at least 1")
		}
		if err := common.SanitizeHTMLField(u.Notes, "notes"); err != nil || (u.Notes != nil && len(*u.Notes) > maxNotesLength) {
			verr.Add(fmt.Sprintf("itemsToUpdate[%d].notes", i), fmt.Sprintf("notes cannot exceed %d characters", maxNotesLength))
		}
	}
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		var err error
		order, err = tx.Orders().GetForUpdate(ctx, outletID, orderID)
		if err != nil {
			return notFoundAs(err, "order")
		}
		if order.Status.Terminal() {
			return &ConflictError{Message: fmt.Sprintf("cannot modify a %s order", strings.ToLower(string(order.Status)))}
		}

		for _, id := range in.Removals {
			if err := tx.OrderItems().Delete(ctx, order.ID, id); err != nil {
				return notFoundAs(err, "order item")
			}
		}

		for i, u := range in.Updates {
			line, err := tx.OrderItems().GetByID(ctx, order.ID, u.ID)
			if err != nil {
				return notFoundAs(err, "order item")
			}
			if u.Quantity != nil && *u.Quantity > 1 && singlePortion(line.QuantityType) {
				return NewValidationError(fmt.Sprintf("itemsToUpdate[%d].quantity", i), portionQuantityMessage(*line.QuantityType))
			}
			if u.Quantity != nil {
				line.Quantity = *u.Quantity
			}
			if u.Notes != nil {
				line.Notes = u.Notes
			}
			if err := tx.OrderItems().Update(ctx, line); err != nil {
				return notFoundAs(err, "order item")
			}
		}

		if len(in.Additions) > 0 {
			added, err := s.priceLines(ctx, tx, order, "ordersToAdd", in.Additions)
			if err != nil {
				return err
			}
			for _, line := range added {
				if err := tx.OrderItems().Create(ctx, line); err != nil {
					return fmt.Errorf("failed to create order line: %w", err)
				}
			}
		}

		lines, err := tx.OrderItems().ListByOrderID(ctx, order.ID)
		if err != nil {
			return err
		}
		settings, err := readSettings(ctx, tx, outletID)
		if err != nil {
			return err
		}
		order.TaxRate = s.tax.RateFor(order, settings)
		order.Subtotal, order.Tax, order.Total = Totals(lines, order.TaxRate)
		if err := tx.Orders().UpdateTotals(ctx, order); err != nil {
			return fmt.Errorf("failed to update totals: %w", err)
		}
		order.Items = lines
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.TableOrderItems, realtime.EventUpdate, outletID, order.ID, order.Items)
	s.publish(ctx, realtime.TableOrders, realtime.EventUpdate, outletID, order.ID, order)
	return order, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, outletID, orderID uuid.UUID, status models.OrderStatus, reason *string) (*models.Order, error) {
	switch {
	case !status.Valid():
		return nil, NewValidationError("status", "unknown order status")
	case status == models.OrderStatusCompleted:
		return nil, NewValidationError("status", "orders are completed by generating a bill")
	case status == models.OrderStatusCancelled && (reason == nil || strings.TrimSpace(*reason) == ""):
		return nil, NewValidationError("cancellationReason", "cancellation reason is required")
	}

	var order *models.Order
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		var err error
		order, err = tx.Orders().GetForUpdate(ctx, outletID, orderID)
		if err != nil {
			return notFoundAs(err, "order")
		}
		if order.Status.Terminal() {
			return &ConflictError{Message: fmt.Sprintf("order is already %s", strings.ToLower(string(order.Status)))}
		}

		order.Status = status
		if status == models.OrderStatusCancelled {
			trimmed := strings.TrimSpace(*reason)
			order.CancellationReason = &trimmed
		}
		if err := tx.Orders().UpdateStatus(ctx, order); err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		if status == models.OrderStatusCancelled && order.TableID != nil {
			if err := tx.Tables().UpdateStatus(ctx, outletID, *order.TableID, models.TableStatusEmpty); err != nil {
				return fmt.Errorf("failed to release table: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"outlet_id": outletID,
		"order_id":  order.ID,
		"status":    order.Status,
	}).Info("order status updated")

	s.publish(ctx, realtime.TableOrders, realtime.EventUpdate, outletID, order.ID, order)
	if status == models.OrderStatusCancelled && order.TableID != nil {
		s.publish(ctx, realtime.TableTables, realtime.EventUpdate, outletID, *order.TableID,
			map[string]models.TableStatus{"status": models.TableStatusEmpty})
	}
	return order, nil
}

func (s *orderService) Get(ctx context.Context, outletID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.store.Orders().GetByID(ctx, outletID, orderID)
	if err != nil {
		return nil, notFoundAs(err, "order")
	}
	order.Items, err = s.store.OrderItems().ListByOrderID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) List(ctx context.Context, outletID uuid.UUID, filter *models.OrderSearchFilter) ([]*models.Order, error) {
	return s.store.Orders().List(ctx, outletID, filter)
}

func (s *orderService) ActiveForTable(ctx context.Context, outletID, tableID uuid.UUID) (*models.Order, error) {
	order, err := s.store.Orders().ActiveByTable(ctx, outletID, tableID)
	if err != nil {
		return nil, notFoundAs(err, "active order")
	}
	order.Items, err = s.store.OrderItems().ListByOrderID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// priceLines resolves catalog items for the requested lines and freezes each line's unit
// price as of now. Validation details are keyed under field.
func (s *orderService) priceLines(ctx context.Context, tx repositories.Store, order *models.Order, field string, inputs []OrderLineInput) ([]*models.OrderItem, error) {
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.ItemID)
	}
	items, err := tx.Items().GetByIDs(ctx, order.OutletID, ids)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	lines := make([]*models.OrderItem, 0, len(inputs))
	for i, in := range inputs {
		item, ok := items[in.ItemID]
		if !ok {
			return nil, &NotFoundError{Resource: "item " + in.ItemID.String()}
		}
		prefix := fmt.Sprintf("%s[%d]", field, i)
		if !item.IsAvailable {
			verr.Add(prefix+".itemId", fmt.Sprintf("%s is not available", item.Name))
			continue
		}
		if item.NeedsQuantityType() && in.QuantityType == nil {
			verr.Add(prefix+".quantityType", fmt.Sprintf("%s requires a quantity type", item.Name))
			continue
		}
		if in.QuantityType != nil && !item.OffersQuantityType(*in.QuantityType) {
			verr.Add(prefix+".quantityType", fmt.Sprintf("%s is not offered in %s", item.Name, *in.QuantityType))
			continue
		}

		quote := pricing.Price(item, in.Quantity, in.QuantityType)
		if quote.Fallback != pricing.FallbackNone {
			logrus.WithFields(logrus.Fields{
				"outlet_id":     order.OutletID,
				"order_id":      order.ID,
				"item_id":       item.ID,
				"pricing_mode":  item.PricingMode,
				"quantity_type": in.QuantityType,
				"unit_price":    quote.UnitPrice.String(),
			}).Warn("pricing fallback: " + string(quote.Fallback))
		}

		lines = append(lines, &models.OrderItem{
			ID:           uuid.New(),
			OrderID:      order.ID,
			ItemID:       item.ID,
			ItemName:     item.Name,
			Quantity:     in.Quantity,
			QuantityType: in.QuantityType,
			Price:        quote.UnitPrice,
			Notes:        in.Notes,
		})
	}
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *orderService) publish(ctx context.Context, table, eventType string, outletID, recordID uuid.UUID, payload interface{}) {
	event := realtime.Event{Table: table, Type: eventType, OutletID: outletID, RecordID: recordID, Payload: payload}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"table": table, "record_id": recordID}).Warn("failed to publish realtime event")
	}
}

func validateLineInputs(verr *ValidationError, field string, lines []OrderLineInput) {
	for i := range lines {
		line := &lines[i]
		prefix := fmt.Sprintf("%s[%d]", field, i)
		if line.ItemID == uuid.Nil {
			verr.Add(prefix+".itemId", "itemId is required")
		}
		if line.Quantity < 1 {
			verr.Add(prefix+".quantity", "quantity must be at least 1")
		}
		if line.QuantityType != nil && !line.QuantityType.Valid() {
			verr.Add(prefix+".quantityType", "unknown quantity type")
		} else if line.Quantity > 1 && singlePortion(line.QuantityType) {
			verr.Add(prefix+".quantity", portionQuantityMessage(*line.QuantityType))
		}
		if err := common.SanitizeHTMLField(line.Notes, "notes"); err != nil || (line.Notes != nil && len(*line.Notes) > maxNotesLength) {
			verr.Add(prefix+".notes", fmt.Sprintf("notes cannot exceed %d characters", maxNotesLength))
		}
	}
}

// singlePortion reports whether q is a sized portion. A sized portion is always ordered
// one per line since the type already encodes the amount.
func singlePortion(q *models.QuantityType) bool {
	return q != nil && *q != models.QuantityCustom
}

func portionQuantityMessage(q models.QuantityType) string {
	return fmt.Sprintf("quantity must be 1 for %s portions", q)
}

// readSettings returns nil settings when the outlet has none.
func readSettings(ctx context.Context, tx repositories.Store, outletID uuid.UUID) (*models.OutletSettings, error) {
	settings, err := tx.Settings().Get(ctx, outletID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	return settings, err
}

// tableBusyOr maps the one-open-order-per-table index violation to a conflict.
func tableBusyOr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "orders_one_open_per_table" {
		return &ConflictError{Message: "table already has an open order", TableBusy: true}
	}
	return fmt.Errorf("failed to create order: %w", err)
}
