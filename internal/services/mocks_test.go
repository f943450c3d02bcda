package services

import (
	"context"
	"io"
	"time"

	"dinepos/internal/models"
	"dinepos/internal/realtime"
	"dinepos/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStore runs WithTx callbacks against itself.
type MockStore struct {
	mock.Mock
	orders          *MockOrderRepo
	orderItems      *MockOrderItemRepo
	items           *MockItemRepo
	tables          *MockTableRepo
	settings        *MockSettingsRepo
	inventory       *MockInventoryRepo
	inventoryLogs   *MockInventoryLogRepo
	rolePermissions *MockRolePermissionRepo
	txCount         int
}

func NewMockStore() *MockStore {
	return &MockStore{
		orders:          &MockOrderRepo{},
		orderItems:      &MockOrderItemRepo{},
		items:           &MockItemRepo{},
		tables:          &MockTableRepo{},
		settings:        &MockSettingsRepo{},
		inventory:       &MockInventoryRepo{},
		inventoryLogs:   &MockInventoryLogRepo{},
		rolePermissions: &MockRolePermissionRepo{},
	}
}

func (s *MockStore) Items() repositories.ItemRepository                     { return s.items }
func (s *MockStore) Orders() repositories.OrderRepository                   { return s.orders }
func (s *MockStore) OrderItems() repositories.OrderItemRepository           { return s.orderItems }
func (s *MockStore) Tables() repositories.TableRepository                   { return s.tables }
func (s *MockStore) Settings() repositories.OutletSettingsRepository        { return s.settings }
func (s *MockStore) Inventory() repositories.InventoryRepository            { return s.inventory }
func (s *MockStore) InventoryLogs() repositories.InventoryLogRepository     { return s.inventoryLogs }
func (s *MockStore) RolePermissions() repositories.RolePermissionRepository { return s.rolePermissions }
func (s *MockStore) Analytics() repositories.AnalyticsRepository            { return nil }

func (s *MockStore) WithTx(ctx context.Context, fn func(repositories.Store) error) error {
	s.txCount++
	return fn(s)
}

func (s *MockStore) AssertExpectations(t mock.TestingT) {
	s.orders.AssertExpectations(t)
	s.orderItems.AssertExpectations(t)
	s.items.AssertExpectations(t)
	s.tables.AssertExpectations(t)
	s.settings.AssertExpectations(t)
	s.inventory.AssertExpectations(t)
	s.inventoryLogs.AssertExpectations(t)
	s.rolePermissions.AssertExpectations(t)
}

type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Create(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepo) GetByID(ctx context.Context, outletID, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, outletID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepo) GetForUpdate(ctx context.Context, outletID, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, outletID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepo) UpdateTotals(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepo) UpdateStatus(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepo) Complete(ctx context.Context, order *models.Order) (bool, error) {
	args := m.Called(ctx, order)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepo) List(ctx context.Context, outletID uuid.UUID, filter *models.OrderSearchFilter) ([]*models.Order, error) {
	args := m.Called(ctx, outletID, filter)
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepo) ActiveByTable(ctx context.Context, outletID, tableID uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, outletID, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

type MockOrderItemRepo struct {
	mock.Mock
}

func (m *MockOrderItemRepo) Create(ctx context.Context, orderItem *models.OrderItem) error {
	args := m.Called(ctx, orderItem)
	return args.Error(0)
}

func (m *MockOrderItemRepo) GetByID(ctx context.Context, orderID, id uuid.UUID) (*models.OrderItem, error) {
	args := m.Called(ctx, orderID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderItem), args.Error(1)
}

func (m *MockOrderItemRepo) Update(ctx context.Context, orderItem *models.OrderItem) error {
	args := m.Called(ctx, orderItem)
	return args.Error(0)
}

func (m *MockOrderItemRepo) Delete(ctx context.Context, orderID, id uuid.UUID) error {
	args := m.Called(ctx, orderID, id)
	return args.Error(0)
}

func (m *MockOrderItemRepo) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]*models.OrderItem, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]*models.OrderItem), args.Error(1)
}

type MockItemRepo struct {
	mock.Mock
}

func (m *MockItemRepo) Create(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepo) GetByID(ctx context.Context, outletID, id uuid.UUID) (*models.Item, error) {
	args := m.Called(ctx, outletID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemRepo) GetByIDs(ctx context.Context, outletID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*models.Item, error) {
	args := m.Called(ctx, outletID, ids)
	return args.Get(0).(map[uuid.UUID]*models.Item), args.Error(1)
}

func (m *MockItemRepo) Update(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepo) List(ctx context.Context, outletID uuid.UUID, filter *models.ItemSearchFilter) ([]*models.Item, error) {
	args := m.Called(ctx, outletID, filter)
	return args.Get(0).([]*models.Item), args.Error(1)
}

type MockTableRepo struct {
	mock.Mock
}

func (m *MockTableRepo) GetByID(ctx context.Context, outletID, id uuid.UUID) (*models.Table, error) {
	args := m.Called(ctx, outletID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Table), args.Error(1)
}

func (m *MockTableRepo) GetForUpdate(ctx context.Context, outletID, id uuid.UUID) (*models.Table, error) {
	args := m.Called(ctx, outletID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Table), args.Error(1)
}

func (m *MockTableRepo) UpdateStatus(ctx context.Context, outletID, id uuid.UUID, status models.TableStatus) error {
	args := m.Called(ctx, outletID, id, status)
	return args.Error(0)
}

func (m *MockTableRepo) List(ctx context.Context, outletID uuid.UUID) ([]*models.Table, error) {
	args := m.Called(ctx, outletID)
	return args.Get(0).([]*models.Table), args.Error(1)
}

type MockSettingsRepo struct {
	mock.Mock
}

func (m *MockSettingsRepo) Get(ctx context.Context, outletID uuid.UUID) (*models.OutletSettings, error) {
	args := m.Called(ctx, outletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OutletSettings), args.Error(1)
}

func (m *MockSettingsRepo) Upsert(ctx context.Context, settings *models.OutletSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

type MockInventoryRepo struct {
	mock.Mock
}

func (m *MockInventoryRepo) Create(ctx context.Context, inventory *models.Inventory) error {
	args := m.Called(ctx, inventory)
	return args.Error(0)
}

func (m *MockInventoryRepo) GetByItem(ctx context.Context, outletID, itemID uuid.UUID) (*models.Inventory, error) {
	args := m.Called(ctx, outletID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inventory), args.Error(1)
}

func (m *MockInventoryRepo) GetByItemForUpdate(ctx context.Context, outletID, itemID uuid.UUID) (*models.Inventory, error) {
	args := m.Called(ctx, outletID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inventory), args.Error(1)
}

func (m *MockInventoryRepo) Update(ctx context.Context, inventory *models.Inventory) error {
	args := m.Called(ctx, inventory)
	return args.Error(0)
}

func (m *MockInventoryRepo) List(ctx context.Context, outletID uuid.UUID, filter *models.InventorySearchFilter) ([]*models.Inventory, error) {
	args := m.Called(ctx, outletID, filter)
	return args.Get(0).([]*models.Inventory), args.Error(1)
}

func (m *MockInventoryRepo) ListOutletIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockInventoryLogRepo struct {
	mock.Mock
}

func (m *MockInventoryLogRepo) Create(ctx context.Context, entry *models.InventoryLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockInventoryLogRepo) ListByItem(ctx context.Context, outletID, itemID uuid.UUID, limit, offset int) ([]*models.InventoryLog, error) {
	args := m.Called(ctx, outletID, itemID, limit, offset)
	return args.Get(0).([]*models.InventoryLog), args.Error(1)
}

type MockRolePermissionRepo struct {
	mock.Mock
}

func (m *MockRolePermissionRepo) ListByRole(ctx context.Context, outletID uuid.UUID, role models.Role) ([]*models.RolePermission, error) {
	args := m.Called(ctx, outletID, role)
	return args.Get(0).([]*models.RolePermission), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetItem(ctx context.Context, outletID, itemID uuid.UUID) (*models.Item, error) {
	args := m.Called(ctx, outletID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockCacheService) SetItem(ctx context.Context, item *models.Item, ttl time.Duration) error {
	return m.Called(ctx, item, ttl).Error(0)
}

func (m *MockCacheService) DeleteItem(ctx context.Context, outletID, itemID uuid.UUID) error {
	return m.Called(ctx, outletID, itemID).Error(0)
}

func (m *MockCacheService) GetSettings(ctx context.Context, outletID uuid.UUID) (*models.OutletSettings, error) {
	args := m.Called(ctx, outletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OutletSettings), args.Error(1)
}

func (m *MockCacheService) SetSettings(ctx context.Context, settings *models.OutletSettings, ttl time.Duration) error {
	return m.Called(ctx, settings, ttl).Error(0)
}

func (m *MockCacheService) DeleteSettings(ctx context.Context, outletID uuid.UUID) error {
	return m.Called(ctx, outletID).Error(0)
}

func (m *MockCacheService) GetPermissions(ctx context.Context, outletID uuid.UUID, role models.Role) ([]string, error) {
	args := m.Called(ctx, outletID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCacheService) SetPermissions(ctx context.Context, outletID uuid.UUID, role models.Role, perms []string, ttl time.Duration) error {
	return m.Called(ctx, outletID, role, perms, ttl).Error(0)
}

func (m *MockCacheService) GetSalesSummary(ctx context.Context, outletID uuid.UUID, period string) (*models.SalesSummary, error) {
	args := m.Called(ctx, outletID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SalesSummary), args.Error(1)
}

func (m *MockCacheService) SetSalesSummary(ctx context.Context, outletID uuid.UUID, period string, summary *models.SalesSummary, ttl time.Duration) error {
	return m.Called(ctx, outletID, period, summary, ttl).Error(0)
}

func (m *MockCacheService) InvalidateAnalytics(ctx context.Context, outletID uuid.UUID) error {
	return m.Called(ctx, outletID).Error(0)
}

func (m *MockCacheService) GetIdempotentBill(ctx context.Context, outletID uuid.UUID, key string) (*models.Bill, error) {
	args := m.Called(ctx, outletID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bill), args.Error(1)
}

func (m *MockCacheService) SetIdempotentBill(ctx context.Context, outletID uuid.UUID, key string, bill *models.Bill, ttl time.Duration) error {
	return m.Called(ctx, outletID, key, bill, ttl).Error(0)
}

func (m *MockCacheService) InvalidateOutletCache(ctx context.Context, outletID uuid.UUID) error {
	return m.Called(ctx, outletID).Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// RecordingPublisher keeps every published event.
type RecordingPublisher struct {
	Events []realtime.Event
	Err    error
}

func (p *RecordingPublisher) Publish(_ context.Context, event realtime.Event) error {
	p.Events = append(p.Events, event)
	return p.Err
}

func (p *RecordingPublisher) Close() error { return nil }

func (p *RecordingPublisher) Tables() []string {
	tables := make([]string, 0, len(p.Events))
	for _, e := range p.Events {
		tables = append(tables, e.Table)
	}
	return tables
}

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) UploadObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	return m.Called(ctx, bucketName, objectName, reader, objectSize, contentType).Error(0)
}

func (m *MockObjectStore) ObjectExists(ctx context.Context, bucketName, objectName string) (bool, error) {
	args := m.Called(ctx, bucketName, objectName)
	return args.Bool(0), args.Error(1)
}

func (m *MockObjectStore) GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucketName, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) EnsureBucketExists(ctx context.Context, bucketName string) error {
	return m.Called(ctx, bucketName).Error(0)
}

func strPtr(s string) *string {
	return &s
}
