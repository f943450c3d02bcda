package services

import (
	"context"
	"errors"
	"testing"

	"dinepos/internal/models"
	"dinepos/internal/realtime"
	"dinepos/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type OrderServiceTestSuite struct {
	suite.Suite
	store     *MockStore
	publisher *RecordingPublisher
	service   OrderService
	ctx       context.Context
	outletID  uuid.UUID
	userID    uuid.UUID
	tableID   uuid.UUID
	dish      *models.Item
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.store = NewMockStore()
	suite.publisher = &RecordingPublisher{}
	suite.service = NewOrderService(suite.store, NewTaxPolicy(TaxRateCurrent, dec("18")), suite.publisher)
	suite.ctx = context.Background()
	suite.outletID = uuid.New()
	suite.userID = uuid.New()
	suite.tableID = uuid.New()
	suite.dish = &models.Item{
		ID:          uuid.New(),
		OutletID:    suite.outletID,
		Name:        "Mutton Biryani",
		PricingMode: models.PricingModeQuantityManual,
		Price:       dec("300"),
		HalfPrice:   decPtr("150"),
		FullPrice:   decPtr("280"),
		IsAvailable: true,
	}
}

func (suite *OrderServiceTestSuite) TearDownTest() {
	suite.store.AssertExpectations(suite.T())
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func (suite *OrderServiceTestSuite) gst(rate string) *models.OutletSettings {
	return &models.OutletSettings{OutletID: suite.outletID, GSTEnabled: true, GSTPercentage: decPtr(rate)}
}

func (suite *OrderServiceTestSuite) expectFreeTable() {
	suite.store.tables.On("GetForUpdate", mock.Anything, suite.outletID, suite.tableID).
		Return(&models.Table{ID: suite.tableID, OutletID: suite.outletID, Status: models.TableStatusEmpty}, nil).Once()
	suite.store.orders.On("ActiveByTable", mock.Anything, suite.outletID, suite.tableID).
		Return(nil, repositories.ErrNotFound).Once()
}

func (suite *OrderServiceTestSuite) TestCreate_DineInManualHalfPortions() {
	half := models.QuantityHalf
	in := &CreateOrderInput{
		TableID:   &suite.tableID,
		OrderType: models.OrderTypeDineIn,
		Lines: []OrderLineInput{
			{ItemID: suite.dish.ID, Quantity: 1, QuantityType: &half},
			{ItemID: suite.dish.ID, Quantity: 1, QuantityType: &half},
		},
	}

	suite.expectFreeTable()
	suite.store.items.On("GetByIDs", mock.Anything, suite.outletID, mock.Anything).
		Return(map[uuid.UUID]*models.Item{suite.dish.ID: suite.dish}, nil).Once()
	suite.store.settings.On("Get", mock.Anything, suite.outletID).Return(suite.gst("18"), nil).Once()
	suite.store.orders.On("Create", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()
	suite.store.orderItems.On("Create", mock.Anything, mock.MatchedBy(func(line *models.OrderItem) bool {
		return line.Price.Equal(dec("150")) && line.ItemName == "Mutton Biryani"
	})).Return(nil).Twice()
	suite.store.tables.On("UpdateStatus", mock.Anything, suite.outletID, suite.tableID, models.TableStatusOccupied).Return(nil).Once()

	order, err := suite.service.Create(suite.ctx, suite.outletID, suite.userID, in)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), models.OrderStatusNew, order.Status)
	assert.True(suite.T(), order.Subtotal.Equal(dec("300")))
	assert.Equal(suite.T(), "54.00", order.Tax.StringFixed(2))
	assert.Equal(suite.T(), "354.00", order.Total.StringFixed(2))
	assert.True(suite.T(), order.Total.Equal(order.Subtotal.Add(order.Tax)))
	assert.Len(suite.T(), order.Items, 2)
	assert.Equal(suite.T(), 1, suite.store.txCount)
	assert.Equal(suite.T(), []string{realtime.TableOrders, realtime.TableTables}, suite.publisher.Tables())
}

func (suite *OrderServiceTestSuite) TestCreate_TakeawayWithGSTDisabled() {
	burger := &models.Item{ID: uuid.New(), OutletID: suite.outletID, Name: "Burger", PricingMode: models.PricingModeFixed, Price: dec("250"), IsAvailable: true}
	in := &CreateOrderInput{
		OrderType: models.OrderTypeTakeaway,
		Lines:     []OrderLineInput{{ItemID: burger.ID, Quantity: 4}},
	}

	suite.store.items.On("GetByIDs", mock.Anything, suite.outletID, mock.Anything).
		Return(map[uuid.UUID]*models.Item{burger.ID: burger}, nil).Once()
	suite.store.settings.On("Get", mock.Anything, suite.outletID).
		Return(&models.OutletSettings{OutletID: suite.outletID, GSTEnabled: false, GSTPercentage: decPtr("18")}, nil).Once()
	suite.store.orders.On("Create", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()
	suite.store.orderItems.On("Create", mock.Anything, mock.AnythingOfType("*models.OrderItem")).Return(nil).Once()

	order, err := suite.service.Create(suite.ctx, suite.outletID, suite.userID, in)
	require.NoError(suite.T(), err)

	assert.Nil(suite.T(), order.TableID)
	assert.True(suite.T(), order.Subtotal.Equal(dec("1000")))
	assert.True(suite.T(), order.Tax.IsZero())
	assert.True(suite.T(), order.Total.Equal(dec("1000")))
}

func (suite *OrderServiceTestSuite) TestCreate_MissingSettingsDefaultsTo18() {
	burger := &models.Item{ID: uuid.New(), OutletID: suite.outletID, Name: "Burger", Price: dec("100"), PricingMode: models.PricingModeFixed, IsAvailable: true}
	in := &CreateOrderInput{OrderType: models.OrderTypeTakeaway, Lines: []OrderLineInput{{ItemID: burger.ID, Quantity: 1}}}

	suite.store.items.On("GetByIDs", mock.Anything, suite.outletID, mock.Anything).
		Return(map[uuid.UUID]*models.Item{burger.ID: burger}, nil).Once()
	suite.store.settings.On("Get", mock.Anything, suite.outletID).Return(nil, repositories.ErrNotFound).Once()
	suite.store.orders.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	suite.store.orderItems.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	order, err := suite.service.Create(suite.ctx, suite.outletID, suite.userID, in)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), order.Tax.Equal(dec("18")))
	assert.True(suite.T(), order.TaxRate.Equal(dec("18")))
}

func (suite *OrderServiceTestSuite) TestCreate_QuantityAutoLinesRoundToPaise() {
	quarter := models.QuantityQuarter
	dal := &models.Item{ID: uuid.New(), OutletID: suite.outletID, Name: "Dal Tadka", PricingMode: models.PricingModeQuantityAuto, BasePrice: decPtr("10.10"), IsAvailable: true}
	in := &CreateOrderInput{
		OrderType: models.OrderTypeTakeaway,
		Lines: []OrderLineInput{
			{ItemID: dal.ID, Quantity: 1, QuantityType: &quarter},
			{ItemID: dal.ID, Quantity: 1, QuantityType: &quarter},
		},
	}

	suite.store.items.On("GetByIDs", mock.Anything, suite.outletID, mock.Anything).
		Return(map[uuid.UUID]*models.Item{dal.ID: dal}, nil).Once()
	suite.store.settings.On("Get", mock.Anything, suite.outletID).Return(suite.gst("18"), nil).Once()
	suite.store.orders.On("Create", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()
	suite.store.orderItems.On("Create", mock.Anything, mock.MatchedBy(func(line *models.OrderItem) bool {
		return line.Price.Equal(dec("2.53"))
	})).Return(nil).Twice()

	order, err := suite.service.Create(suite.ctx, suite.outletID, suite.userID, in)
	require.NoError(suite.T(), err)

	stored := decimal.Zero
	for _, line := range order.Items {
		assert.Equal(suite.T(), line.Price.StringFixed(2), line.Price.String())
		stored = stored.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	assert.True(suite.T(), order.Subtotal.Equal(stored), "subtotal %s, lines %s", order.Subtotal, stored)
	assert.Equal(suite.T(), "5.06", order.Subtotal.StringFixed(2))
	assert.Equal(suite.T(), "0.91", order.Tax.StringFixed(2))
	assert.Equal(suite.T(), "5.97", order.Total.StringFixed(2))
}

func (suite *OrderServiceTestSuite) TestCreate_SizedPortionIsOnePerLine() {
	half := models.QuantityHalf
	custom := models.QuantityCustom
	in := &CreateOrderInput{
		OrderType: models.OrderTypeTakeaway,
		Lines: []OrderLineInput{
			{ItemID: suite.dish.ID, Quantity: 3, QuantityType: &half},
			{ItemID: suite.dish.ID, Quantity: 3, QuantityType: &custom},
		},
	}

	_, err := suite.service.Create(suite.ctx, suite.outletID, suite.userID, in)

	var verr *ValidationError
	require.True(suite.T(), errors.As(err, &verr))
	assert.Equal(suite.T(), "quantity must be 1 for HALF portions", verr.Details["lines[0].quantity"])
	assert.NotContains(suite.T(), verr.Details, "lines[1].quantity")
	assert.Equal(suite.T(), 0, suite.store.txCount)
}

func (suite *OrderServiceTestSuite) TestCreate_DineInRequiresTable() {
	in := &CreateOrderInput{
		OrderType: models.OrderTypeDineIn,
		Lines:     []OrderLineInput{{ItemID: suite.dish.ID, Quantity: 1}},
	}

	_, err := suite.service.Create(suite.ctx, suite.outletID, suite.userID, in)

	var verr *ValidationError
	require.True(suite.T(), errors.As(err, &verr))
	assert.Contains(suite.T(), verr.Details, "tableId")
	assert.Equal(suite.T(), 0, suite.store.txCount)
}

func (suite *OrderServiceTestSuite) TestCreate_EmptyLines() {
	in := &CreateOrderInput{OrderType: models.OrderTypeTakeaway}

	_, err := suite.service.Create(suite.ctx, suite.outletID, suite.userID, in)

	var verr *ValidationError
	require.True(suite.T(), errors.As(err, &verr))
	assert.Contains(suite.T(), verr.Details, "lines")
}

func (suite *OrderServiceTestSuite) TestCreate_QuantityTypeRequiredForPortionedItem() {
	in := &CreateOrderInput{
		OrderType: models.OrderTypeTakeaway,
		Lines:     []OrderLineInput{{ItemID: suite.dish.ID, Quantity: 1}},
	}
	suite.store.items.On("GetByIDs", mock.Anything, suite.outletID, mock.Anything).
		Return(map[uuid.UUID]*models.Item{suite.dish.ID: suite.dish}, nil).Once()

	_, err := suite.service.Create(suite.ctx, suite.outletID, suite.userID, in)

	var verr *ValidationError
	require.True(suite.T(), errors.As(err, &verr))
	assert.Contains(suite.T(), verr.Details, "lines[0].quantityType")
}

func (suite *OrderServiceTestSuite) TestCreate_UnknownItem() {
	in := &CreateOrderInput{
		OrderType: models.OrderTypeTakeaway,
		Lines:     []OrderLineInput{{ItemID: uuid.New(), Quantity: 1}},
	}
	suite.store.items.On("GetByIDs", mock.Anything, suite.outletID, mock.Anything).
		Return(map[uuid.UUID]*models.Item{}, nil).Once()

	_, err := suite.service.Create(suite.ctx, suite.outletID, suite.userID, in)
	assert.True(suite.T(), errors.Is(err, repositories.ErrNotFound))
}

func (suite *OrderServiceTestSuite) TestCreate_TableBusy() {
	in := &CreateOrderInput{
		TableID:   &suite.tableID,
		OrderType: models.OrderTypeDineIn,
		Lines:     []OrderLineInput{{ItemID: suite.dish.ID, Quantity: 1}},
	}
	suite.store.tables.On("GetForUpdate", mock.Anything, suite.outletID, suite.tableID).
		Return(&models.Table{ID: suite.tableID, Status: models.TableStatusOccupied}, nil).Once()
	suite.store.orders.On("ActiveByTable", mock.Anything, suite.outletID, suite.tableID).
		Return(&models.Order{ID: uuid.New(), Status: models.OrderStatusPreparing}, nil).Once()

	_, err := suite.service.Create(suite.ctx, suite.outletID, suite.userID, in)

	var conflict *ConflictError
	require.True(suite.T(), errors.As(err, &conflict))
	assert.True(suite.T(), conflict.TableBusy)
	assert.Empty(suite.T(), suite.publisher.Events)
}

func (suite *OrderServiceTestSuite) TestModifyLines_TerminalOrderRejected() {
	for _, status := range []models.OrderStatus{models.OrderStatusCompleted, models.OrderStatusCancelled} {
		orderID := uuid.New()
		suite.store.orders.On("GetForUpdate", mock.Anything, suite.outletID, orderID).
			Return(&models.Order{ID: orderID, OutletID: suite.outletID, Status: status}, nil).Once()

		_, err := suite.service.ModifyLines(suite.ctx, suite.outletID, orderID, &ModifyLinesInput{Removals: []uuid.UUID{uuid.New()}})

		var conflict *ConflictError
		assert.True(suite.T(), errors.As(err, &conflict), "status %s", status)
	}
}

func (suite *OrderServiceTestSuite) TestModifyLines_FrozenPriceSurvivesCatalogChange() {
	orderID := uuid.New()
	existing := &models.OrderItem{ID: uuid.New(), OrderID: orderID, ItemID: uuid.New(), ItemName: "Paneer Tikka", Quantity: 1, Price: dec("100")}
	removed := uuid.New()
	// the catalog now charges 200 for the same dish; the existing line keeps 100
	cola := &models.Item{ID: uuid.New(), OutletID: suite.outletID, Name: "Cola", PricingMode: models.PricingModeFixed, Price: dec("50"), IsAvailable: true}

	order := &models.Order{ID: orderID, OutletID: suite.outletID, Status: models.OrderStatusPreparing, OrderType: models.OrderTypeTakeaway}
	suite.store.orders.On("GetForUpdate", mock.Anything, suite.outletID, orderID).Return(order, nil).Once()
	suite.store.orderItems.On("Delete", mock.Anything, orderID, removed).Return(nil).Once()
	suite.store.orderItems.On("GetByID", mock.Anything, orderID, existing.ID).Return(existing, nil).Once()
	suite.store.orderItems.On("Update", mock.Anything, mock.MatchedBy(func(line *models.OrderItem) bool {
		return line.Quantity == 3 && line.Price.Equal(dec("100"))
	})).Return(nil).Once()
	suite.store.items.On("GetByIDs", mock.Anything, suite.outletID, []uuid.UUID{cola.ID}).
		Return(map[uuid.UUID]*models.Item{cola.ID: cola}, nil).Once()
	suite.store.orderItems.On("Create", mock.Anything, mock.MatchedBy(func(line *models.OrderItem) bool {
		return line.ItemID == cola.ID && line.Price.Equal(dec("50"))
	})).Return(nil).Once()
	colaLine := &models.OrderItem{ID: uuid.New(), OrderID: orderID, ItemID: cola.ID, Quantity: 2, Price: dec("50")}
	suite.store.orderItems.On("ListByOrderID", mock.Anything, orderID).
		Return([]*models.OrderItem{existing, colaLine}, nil).Once()
	suite.store.settings.On("Get", mock.Anything, suite.outletID).Return(suite.gst("5"), nil).Once()
	suite.store.orders.On("UpdateTotals", mock.Anything, order).Return(nil).Once()

	qty := 3
	result, err := suite.service.ModifyLines(suite.ctx, suite.outletID, orderID, &ModifyLinesInput{
		Removals:  []uuid.UUID{removed},
		Updates:   []LineUpdate{{ID: existing.ID, Quantity: &qty}},
		Additions: []OrderLineInput{{ItemID: cola.ID, Quantity: 2}},
	})
	require.NoError(suite.T(), err)

	// 3 x 100 + 2 x 50
	assert.True(suite.T(), result.Subtotal.Equal(dec("400")))
	assert.True(suite.T(), result.Tax.Equal(dec("20")))
	assert.True(suite.T(), result.Total.Equal(dec("420")))
}

func (suite *OrderServiceTestSuite) TestModifyLines_SizedPortionQuantityRejected() {
	orderID := uuid.New()
	half := models.QuantityHalf
	line := &models.OrderItem{ID: uuid.New(), OrderID: orderID, ItemID: suite.dish.ID, Quantity: 1, QuantityType: &half, Price: dec("150")}
	suite.store.orders.On("GetForUpdate", mock.Anything, suite.outletID, orderID).
		Return(&models.Order{ID: orderID, OutletID: suite.outletID, Status: models.OrderStatusNew}, nil).Once()
	suite.store.orderItems.On("GetByID", mock.Anything, orderID, line.ID).Return(line, nil).Once()

	qty := 2
	_, err := suite.service.ModifyLines(suite.ctx, suite.outletID, orderID, &ModifyLinesInput{
		Updates: []LineUpdate{{ID: line.ID, Quantity: &qty}},
	})

	var verr *ValidationError
	require.True(suite.T(), errors.As(err, &verr))
	assert.Contains(suite.T(), verr.Details, "itemsToUpdate[0].quantity")
	assert.Equal(suite.T(), 1, line.Quantity)
}

func (suite *OrderServiceTestSuite) TestModifyLines_AdditionErrorsKeyedByRequestField() {
	orderID := uuid.New()
	soldOut := &models.Item{ID: uuid.New(), OutletID: suite.outletID, Name: "Kulfi", PricingMode: models.PricingModeFixed, Price: dec("60")}
	suite.store.orders.On("GetForUpdate", mock.Anything, suite.outletID, orderID).
		Return(&models.Order{ID: orderID, OutletID: suite.outletID, Status: models.OrderStatusServed}, nil).Once()
	suite.store.items.On("GetByIDs", mock.Anything, suite.outletID, []uuid.UUID{soldOut.ID}).
		Return(map[uuid.UUID]*models.Item{soldOut.ID: soldOut}, nil).Once()

	_, err := suite.service.ModifyLines(suite.ctx, suite.outletID, orderID, &ModifyLinesInput{
		Additions: []OrderLineInput{{ItemID: soldOut.ID, Quantity: 1}},
	})

	var verr *ValidationError
	require.True(suite.T(), errors.As(err, &verr))
	assert.Contains(suite.T(), verr.Details, "ordersToAdd[0].itemId")
	assert.NotContains(suite.T(), verr.Details, "lines[0].itemId")
}

func (suite *OrderServiceTestSuite) TestModifyLines_UnknownLine() {
	orderID := uuid.New()
	lineID := uuid.New()
	suite.store.orders.On("GetForUpdate", mock.Anything, suite.outletID, orderID).
		Return(&models.Order{ID: orderID, OutletID: suite.outletID, Status: models.OrderStatusNew}, nil).Once()
	suite.store.orderItems.On("Delete", mock.Anything, orderID, lineID).Return(repositories.ErrNotFound).Once()

	_, err := suite.service.ModifyLines(suite.ctx, suite.outletID, orderID, &ModifyLinesInput{Removals: []uuid.UUID{lineID}})

	var nf *NotFoundError
	require.True(suite.T(), errors.As(err, &nf))
	assert.Equal(suite.T(), "order item", nf.Resource)
}

func (suite *OrderServiceTestSuite) TestUpdateStatus_CancelRequiresReason() {
	for _, reason := range []*string{nil, strPtr("   ")} {
		_, err := suite.service.UpdateStatus(suite.ctx, suite.outletID, uuid.New(), models.OrderStatusCancelled, reason)

		var verr *ValidationError
		require.True(suite.T(), errors.As(err, &verr))
		assert.Contains(suite.T(), verr.Details, "cancellationReason")
	}
}

func (suite *OrderServiceTestSuite) TestUpdateStatus_CompletedOnlyThroughBilling() {
	_, err := suite.service.UpdateStatus(suite.ctx, suite.outletID, uuid.New(), models.OrderStatusCompleted, nil)

	var verr *ValidationError
	assert.True(suite.T(), errors.As(err, &verr))
}

func (suite *OrderServiceTestSuite) TestUpdateStatus_CancelReleasesTable() {
	orderID := uuid.New()
	order := &models.Order{ID: orderID, OutletID: suite.outletID, TableID: &suite.tableID, OrderType: models.OrderTypeDineIn, Status: models.OrderStatusPreparing}

	suite.store.orders.On("GetForUpdate", mock.Anything, suite.outletID, orderID).Return(order, nil).Once()
	suite.store.orders.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(o *models.Order) bool {
		return o.Status == models.OrderStatusCancelled && *o.CancellationReason == "customer left"
	})).Return(nil).Once()
	suite.store.tables.On("UpdateStatus", mock.Anything, suite.outletID, suite.tableID, models.TableStatusEmpty).Return(nil).Once()

	result, err := suite.service.UpdateStatus(suite.ctx, suite.outletID, orderID, models.OrderStatusCancelled, strPtr(" customer left "))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OrderStatusCancelled, result.Status)
}

func (suite *OrderServiceTestSuite) TestUpdateStatus_ForwardSkipAllowed() {
	orderID := uuid.New()
	suite.store.orders.On("GetForUpdate", mock.Anything, suite.outletID, orderID).
		Return(&models.Order{ID: orderID, OutletID: suite.outletID, Status: models.OrderStatusNew}, nil).Once()
	suite.store.orders.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := suite.service.UpdateStatus(suite.ctx, suite.outletID, orderID, models.OrderStatusServed, nil)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OrderStatusServed, result.Status)
	assert.Nil(suite.T(), result.CancellationReason)
}

func (suite *OrderServiceTestSuite) TestUpdateStatus_TerminalRejected() {
	orderID := uuid.New()
	suite.store.orders.On("GetForUpdate", mock.Anything, suite.outletID, orderID).
		Return(&models.Order{ID: orderID, Status: models.OrderStatusCompleted}, nil).Once()

	_, err := suite.service.UpdateStatus(suite.ctx, suite.outletID, orderID, models.OrderStatusReady, nil)

	var conflict *ConflictError
	assert.True(suite.T(), errors.As(err, &conflict))
}
