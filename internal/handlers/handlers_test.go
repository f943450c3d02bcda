package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dinepos/internal/common"
	"dinepos/internal/models"
	"dinepos/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, outletID, userID uuid.UUID, in *services.CreateOrderInput) (*models.Order, error) {
	args := m.Called(ctx, outletID, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) ModifyLines(ctx context.Context, outletID, orderID uuid.UUID, in *services.ModifyLinesInput) (*models.Order, error) {
	args := m.Called(ctx, outletID, orderID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, outletID, orderID uuid.UUID, status models.OrderStatus, reason *string) (*models.Order, error) {
	args := m.Called(ctx, outletID, orderID, status, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, outletID, orderID uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, outletID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, outletID uuid.UUID, filter *models.OrderSearchFilter) ([]*models.Order, error) {
	args := m.Called(ctx, outletID, filter)
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderService) ActiveForTable(ctx context.Context, outletID, tableID uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, outletID, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

type MockBillingService struct {
	mock.Mock
}

func (m *MockBillingService) GenerateBill(ctx context.Context, outletID, userID uuid.UUID, in *services.GenerateBillInput) (*models.Bill, error) {
	args := m.Called(ctx, outletID, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bill), args.Error(1)
}

func (m *MockBillingService) GetBill(ctx context.Context, outletID, orderID uuid.UUID) (*models.Bill, error) {
	args := m.Called(ctx, outletID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bill), args.Error(1)
}

func (m *MockBillingService) ReceiptURL(ctx context.Context, outletID, orderID uuid.UUID) (string, error) {
	args := m.Called(ctx, outletID, orderID)
	return args.String(0), args.Error(1)
}

type fakeSummarizer struct {
	from, to time.Time
}

func (f *fakeSummarizer) Today() (time.Time, time.Time) {
	start := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

func (f *fakeSummarizer) Summary(_ context.Context, outletID uuid.UUID, from, to time.Time) (*models.SalesSummary, error) {
	f.from, f.to = from, to
	return &models.SalesSummary{OutletID: outletID, From: from, To: to}, nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

var (
	testOutlet = uuid.New()
	testUser   = uuid.New()
)

// newRequest builds an authenticated request context the way the auth middleware would.
func newRequest(method, target, body string) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = req.WithContext(common.WithIdentity(req.Context(), testUser, testOutlet, models.RoleCashier))
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) common.ErrorResponse {
	t.Helper()
	var resp common.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreateOrder_Created(t *testing.T) {
	svc := &MockOrderService{}
	h := NewOrderHandlers(svc)
	itemID := uuid.New()
	order := &models.Order{ID: uuid.New(), Status: models.OrderStatusNew, OrderType: models.OrderTypeTakeaway}

	svc.On("Create", mock.Anything, testOutlet, testUser, mock.MatchedBy(func(in *services.CreateOrderInput) bool {
		return in.OrderType == models.OrderTypeTakeaway && len(in.Lines) == 1 && in.Lines[0].ItemID == itemID && in.Lines[0].Quantity == 2
	})).Return(order, nil)

	body := `{"orderType":"TAKEAWAY","lines":[{"itemId":"` + itemID.String() + `","quantity":2}]}`
	rec, c := newRequest(http.MethodPost, "/v1/orders", body)

	require.NoError(t, h.CreateOrder(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), order.ID.String())
	svc.AssertExpectations(t)
}

func TestCreateOrder_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{"validation", services.NewValidationError("lines", "at least one line is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"table busy", &services.ConflictError{Message: "table already has an open order", TableBusy: true}, http.StatusConflict, "CONFLICT"},
		{"state conflict", &services.ConflictError{Message: "order is closed"}, http.StatusBadRequest, "CLIENT_ERROR"},
		{"not found", &services.NotFoundError{Resource: "table"}, http.StatusNotFound, "NOT_FOUND"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "SERVER_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockOrderService{}
			h := NewOrderHandlers(svc)
			svc.On("Create", mock.Anything, testOutlet, testUser, mock.Anything).Return(nil, tt.err)

			rec, c := newRequest(http.MethodPost, "/v1/orders", `{"orderType":"DINE_IN"}`)

			require.NoError(t, h.CreateOrder(c))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantKind, decodeError(t, rec).Error.Code)
		})
	}
}

func TestCreateOrder_ValidationDetails(t *testing.T) {
	svc := &MockOrderService{}
	h := NewOrderHandlers(svc)
	verr := &services.ValidationError{}
	verr.Add("orderType", "order type must be DINE_IN or TAKEAWAY")
	verr.Add("lines", "at least one line is required")
	svc.On("Create", mock.Anything, testOutlet, testUser, mock.Anything).Return(nil, verr)

	rec, c := newRequest(http.MethodPost, "/v1/orders", `{}`)

	require.NoError(t, h.CreateOrder(c))
	resp := decodeError(t, rec)
	assert.Len(t, resp.Error.Details, 2)
	assert.Contains(t, resp.Error.Details, "orderType")
}

func TestCreateOrder_Unauthenticated(t *testing.T) {
	h := NewOrderHandlers(&MockOrderService{})
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/orders", strings.NewReader(`{}`)), rec)

	require.NoError(t, h.CreateOrder(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateOrderStatus_PassesReason(t *testing.T) {
	svc := &MockOrderService{}
	h := NewOrderHandlers(svc)
	orderID := uuid.New()
	svc.On("UpdateStatus", mock.Anything, testOutlet, orderID, models.OrderStatusCancelled, mock.MatchedBy(func(r *string) bool {
		return r != nil && *r == "customer left"
	})).Return(&models.Order{ID: orderID, Status: models.OrderStatusCancelled}, nil)

	rec, c := newRequest(http.MethodPatch, "/v1/orders/"+orderID.String()+"/status", `{"status":"CANCELLED","cancellationReason":"customer left"}`)
	c.SetParamNames("id")
	c.SetParamValues(orderID.String())

	require.NoError(t, h.UpdateOrderStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestModifyOrderItems_BadID(t *testing.T) {
	h := NewOrderHandlers(&MockOrderService{})
	rec, c := newRequest(http.MethodPatch, "/v1/orders/abc/items", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	require.NoError(t, h.ModifyOrderItems(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Error.Code)
}

func TestListOrders_Filters(t *testing.T) {
	svc := &MockOrderService{}
	h := NewOrderHandlers(svc)
	svc.On("List", mock.Anything, testOutlet, mock.MatchedBy(func(f *models.OrderSearchFilter) bool {
		return f.Status != nil && *f.Status == models.OrderStatusServed &&
			f.DateTo != nil && f.DateTo.Equal(time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)) &&
			f.Limit == 10
	})).Return([]*models.Order{}, nil)

	rec, c := newRequest(http.MethodGet, "/v1/orders?status=SERVED&date_to=2026-10-15&limit=10", "")

	require.NoError(t, h.ListOrders(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)

	rec, c = newRequest(http.MethodGet, "/v1/orders?status=EATEN", "")
	require.NoError(t, h.ListOrders(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateBill_UsesIdempotencyHeader(t *testing.T) {
	svc := &MockBillingService{}
	h := NewBillHandlers(svc)
	orderID := uuid.New()
	bill := &models.Bill{OrderID: orderID, BillNumber: "B-20261015-ABC123", Total: decimal.NewFromInt(590)}

	svc.On("GenerateBill", mock.Anything, testOutlet, testUser, mock.MatchedBy(func(in *services.GenerateBillInput) bool {
		return in.OrderID == orderID && in.PaymentMethod == models.PaymentMethodUPI && in.IdempotencyKey == "retry-1"
	})).Return(bill, nil)

	rec, c := newRequest(http.MethodPost, "/v1/bills", `{"orderId":"`+orderID.String()+`","paymentMethod":"UPI"}`)
	c.Request().Header.Set(IdempotencyKeyHeader, " retry-1 ")

	require.NoError(t, h.GenerateBill(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "B-20261015-ABC123")
	svc.AssertExpectations(t)
}

func TestGenerateBill_AlreadyCompleted(t *testing.T) {
	svc := &MockBillingService{}
	h := NewBillHandlers(svc)
	svc.On("GenerateBill", mock.Anything, testOutlet, testUser, mock.Anything).
		Return(nil, &services.ConflictError{Message: "order is already COMPLETED"})

	rec, c := newRequest(http.MethodPost, "/v1/bills", `{"orderId":"`+uuid.New().String()+`","paymentMethod":"CASH"}`)

	require.NoError(t, h.GenerateBill(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CLIENT_ERROR", decodeError(t, rec).Error.Code)
}

func TestGetReceipt_Disabled(t *testing.T) {
	svc := &MockBillingService{}
	h := NewBillHandlers(svc)
	orderID := uuid.New()
	svc.On("ReceiptURL", mock.Anything, testOutlet, orderID).Return("", services.ErrReceiptsDisabled)

	rec, c := newRequest(http.MethodGet, "/v1/bills/"+orderID.String()+"/receipt", "")
	c.SetParamNames("orderId")
	c.SetParamValues(orderID.String())

	require.NoError(t, h.GetReceipt(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsSummary_DateRange(t *testing.T) {
	f := &fakeSummarizer{}
	h := NewAnalyticsHandlers(f)

	rec, c := newRequest(http.MethodGet, "/v1/analytics/summary?from=2026-10-01&to=2026-10-07", "")
	require.NoError(t, h.Summary(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), f.from)
	assert.Equal(t, time.Date(2026, 10, 8, 0, 0, 0, 0, time.UTC), f.to)

	rec, c = newRequest(http.MethodGet, "/v1/analytics/summary?from=2026-10-07&to=2026-10-01", "")
	require.NoError(t, h.Summary(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadinessCheck(t *testing.T) {
	h := NewHealthHandlers(fakePinger{}, fakePinger{}, "test", nil)
	rec, c := newRequest(http.MethodGet, "/health/ready", "")
	require.NoError(t, h.ReadinessCheck(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	h = NewHealthHandlers(fakePinger{}, fakePinger{err: errors.New("refused")}, "test", nil)
	rec, c = newRequest(http.MethodGet, "/health/ready", "")
	require.NoError(t, h.ReadinessCheck(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"unhealthy"`)
}
