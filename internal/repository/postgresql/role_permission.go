package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/rbac"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type rolePermissionRepositoryImpl struct {
	db *database.DB
}

func NewRolePermissionRepository(db *database.DB) rbac.RolePermissionRepository {
	return &rolePermissionRepositoryImpl{db: db}
}

// ListByOrganization implements rbac.RolePermissionRepository.
func (r *rolePermissionRepositoryImpl) ListByOrganization(ctx context.Context, organizationID string) ([]rbac.RolePermission, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT organization_id, role, permission
		FROM role_permissions
		WHERE organization_id = $1
		ORDER BY role, permission
	`

	rows, err := q.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}
	defer rows.Close()

	grants := make([]rbac.RolePermission, 0)
	for rows.Next() {
		var g rbac.RolePermission
		if err := rows.Scan(&g.OrganizationID, &g.Role, &g.Permission); err != nil {
			return nil, fmt.Errorf("scan role permission: %w", err)
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// ReplaceForRole implements rbac.RolePermissionRepository. Callers run it
// inside a transaction so readers never see the role without grants.
func (r *rolePermissionRepositoryImpl) ReplaceForRole(ctx context.Context, organizationID string, role rbac.Role, permissions []rbac.Permission) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM role_permissions WHERE organization_id = $1 AND role = $2`, organizationID, role); err != nil {
		return fmt.Errorf("clear role permissions: %w", err)
	}

	if len(permissions) == 0 {
		return nil
	}

	values := make([]string, 0, len(permissions))
	for _, p := range permissions {
		values = append(values, string(p))
	}

	query := `
		INSERT INTO role_permissions (organization_id, role, permission, created_at)
		SELECT $1::uuid, $2::text, unnest($3::text[]), NOW()
	`
	if _, err := q.Exec(ctx, query, organizationID, role, values); err != nil {
		return fmt.Errorf("insert role permissions: %w", err)
	}
	return nil
}

// InsertMissing implements rbac.RolePermissionRepository.
func (r *rolePermissionRepositoryImpl) InsertMissing(ctx context.Context, grants []rbac.RolePermission) (int, error) {
	if len(grants) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO role_permissions (organization_id, role, permission, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (organization_id, role, permission) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, g := range grants {
		batch.Queue(query, g.OrganizationID, g.Role, g.Permission)
	}
	return execCountingBatch(ctx, q, batch)
}
