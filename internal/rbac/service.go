package rbac

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/backoffice/internal/platform/db"
)

// PermissionSource resolves the permissions granted to a user.
type PermissionSource interface {
	EffectivePermissions(ctx context.Context, userID int64) ([]string, error)
}

// Service reads role assignments from PostgreSQL.
type Service struct {
	db db.DBTX
}

// NewService constructs a Service backed by the provided pool.
func NewService(handle db.DBTX) *Service {
	return &Service{db: handle}
}

// EffectivePermissions returns deduplicated permission names for a user.
func (s *Service) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT p.name
		FROM user_roles ur
		JOIN role_permissions rp ON rp.role_id = ur.role_id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE ur.user_id = $1
		ORDER BY p.name`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
