package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleOwner   Role = "OWNER"
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleCashier Role = "CASHIER"
	RoleWaiter  Role = "WAITER"
	RoleKitchen Role = "KITCHEN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleManager, RoleCashier, RoleWaiter, RoleKitchen:
		return true
	}
	return false
}

// CanSwitchOutlet reports whether the role may act on outlets other than its own.
func (r Role) CanSwitchOutlet() bool {
	return r == RoleOwner || r == RoleAdmin
}

const (
	PermOrdersCreate    = "orders:create"
	PermOrdersUpdate    = "orders:update"
	PermOrdersStatus    = "orders:status"
	PermBillsCreate     = "bills:create"
	PermBillsView       = "bills:view"
	PermInventoryView   = "inventory:view"
	PermInventoryAdjust = "inventory:adjust"
	PermItemsManage     = "items:manage"
	PermSettingsManage  = "settings:manage"
	PermAnalyticsView   = "analytics:view"
	PermTablesView      = "tables:view"
)

// RolePermission is a per-outlet override of the default permission matrix.
type RolePermission struct {
	ID         uuid.UUID `json:"id" db:"id"`
	OutletID   uuid.UUID `json:"outlet_id" db:"outlet_id"`
	Role       Role      `json:"role" db:"role"`
	Permission string    `json:"permission" db:"permission"`
	Allowed    bool      `json:"allowed" db:"allowed"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
