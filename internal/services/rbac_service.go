package services

import (
	"context"
	"sort"
	"time"

	"dinepos/internal/caching"
	"dinepos/internal/models"
	"dinepos/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const permissionCacheTTL = 10 * time.Minute

var allPermissions = []string{
	models.PermOrdersCreate, models.PermOrdersUpdate, models.PermOrdersStatus,
	models.PermBillsCreate, models.PermBillsView,
	models.PermInventoryView, models.PermInventoryAdjust,
	models.PermItemsManage, models.PermSettingsManage,
	models.PermAnalyticsView, models.PermTablesView,
}

// DefaultPermissions is the built-in role matrix. Outlets override single entries
// through role_permissions.
var DefaultPermissions = map[models.Role][]string{
	models.RoleOwner: allPermissions,
	models.RoleAdmin: allPermissions,
	models.RoleManager: {
		models.PermOrdersCreate, models.PermOrdersUpdate, models.PermOrdersStatus,
		models.PermBillsCreate, models.PermBillsView,
		models.PermInventoryView, models.PermInventoryAdjust,
		models.PermItemsManage, models.PermAnalyticsView, models.PermTablesView,
	},
	models.RoleCashier: {
		models.PermOrdersCreate, models.PermOrdersUpdate, models.PermOrdersStatus,
		models.PermBillsCreate, models.PermBillsView,
		models.PermInventoryView, models.PermTablesView,
	},
	models.RoleWaiter: {
		models.PermOrdersCreate, models.PermOrdersUpdate, models.PermOrdersStatus,
		models.PermTablesView,
	},
	models.RoleKitchen: {
		models.PermOrdersStatus, models.PermInventoryView,
	},
}

type RBACService interface {
	HasPermission(ctx context.Context, outletID uuid.UUID, role models.Role, permission string) (bool, error)
	Permissions(ctx context.Context, outletID uuid.UUID, role models.Role) ([]string, error)
}

type rbacService struct {
	rolePermissionRepo repositories.RolePermissionRepository
	cache              caching.CacheService
}

func NewRBACService(rolePermissionRepo repositories.RolePermissionRepository, cache caching.CacheService) RBACService {
	return &rbacService{
		rolePermissionRepo: rolePermissionRepo,
		cache:              cache,
	}
}

func (s *rbacService) HasPermission(ctx context.Context, outletID uuid.UUID, role models.Role, permission string) (bool, error) {
	perms, err := s.Permissions(ctx, outletID, role)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}

func (s *rbacService) Permissions(ctx context.Context, outletID uuid.UUID, role models.Role) ([]string, error) {
	if cached, err := s.cache.GetPermissions(ctx, outletID, role); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		logrus.WithError(err).WithField("role", role).Warn("permission cache read failed")
	}

	granted := make(map[string]bool)
	for _, p := range DefaultPermissions[role] {
		granted[p] = true
	}

	overrides, err := s.rolePermissionRepo.ListByRole(ctx, outletID, role)
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		granted[o.Permission] = o.Allowed
	}

	perms := make([]string, 0, len(granted))
	for p, ok := range granted {
		if ok {
			perms = append(perms, p)
		}
	}
	sort.Strings(perms)

	if err := s.cache.SetPermissions(ctx, outletID, role, perms, permissionCacheTTL); err != nil {
		logrus.WithError(err).WithField("role", role).Warn("permission cache write failed")
	}
	return perms, nil
}
