package repositories

import (
	"context"

	"dinepos/internal/models"

	"github.com/google/uuid"
)

type RolePermissionRepository interface {
	ListByRole(ctx context.Context, outletID uuid.UUID, role models.Role) ([]*models.RolePermission, error)
}

type rolePermissionRepo struct {
	db DBTX
}

func NewRolePermissionRepo(db DBTX) RolePermissionRepository {
	return &rolePermissionRepo{db: db}
}

func (r *rolePermissionRepo) ListByRole(ctx context.Context, outletID uuid.UUID, role models.Role) ([]*models.RolePermission, error) {
	query := `
		SELECT id, outlet_id, role, permission, allowed, created_at
		FROM role_permissions
		WHERE outlet_id = $1 AND role = $2
	`
	rows, err := r.db.Query(ctx, query, outletID, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []*models.RolePermission
	for rows.Next() {
		rp := &models.RolePermission{}
		if err := rows.Scan(&rp.ID, &rp.OutletID, &rp.Role, &rp.Permission, &rp.Allowed, &rp.CreatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, rp)
	}
	return perms, rows.Err()
}
