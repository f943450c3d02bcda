package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store groups the repositories that share one connection or transaction.
type Store interface {
	Items() ItemRepository
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Tables() TableRepository
	Settings() OutletSettingsRepository
	Inventory() InventoryRepository
	InventoryLogs() InventoryLogRepository
	RolePermissions() RolePermissionRepository
	Analytics() AnalyticsRepository

	// WithTx runs fn against a Store bound to a single transaction. The transaction
	// commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(Store) error) error
}

type pgStore struct {
	db DBTX
}

func NewStore(db DBTX) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Items() ItemRepository                     { return NewItemRepo(s.db) }
func (s *pgStore) Orders() OrderRepository                   { return NewOrderRepo(s.db) }
func (s *pgStore) OrderItems() OrderItemRepository           { return NewOrderItemRepo(s.db) }
func (s *pgStore) Tables() TableRepository                   { return NewTableRepo(s.db) }
func (s *pgStore) Settings() OutletSettingsRepository        { return NewOutletSettingsRepo(s.db) }
func (s *pgStore) Inventory() InventoryRepository            { return NewInventoryRepo(s.db) }
func (s *pgStore) InventoryLogs() InventoryLogRepository     { return NewInventoryLogRepo(s.db) }
func (s *pgStore) RolePermissions() RolePermissionRepository { return NewRolePermissionRepo(s.db) }
func (s *pgStore) Analytics() AnalyticsRepository            { return NewAnalyticsRepo(s.db) }

func (s *pgStore) WithTx(ctx context.Context, fn func(Store) error) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return fn(&pgStore{db: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
