package rbac

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	ListRoles(ctx context.Context) ([]*Role, error)
	GetRoleByName(ctx context.Context, name string) (*Role, error)
	RolesForUser(ctx context.Context, userID uuid.UUID) ([]*Role, error)
	UserHasRole(ctx context.Context, userID uuid.UUID, roleName string) (bool, error)
	UserHasPermission(ctx context.Context, userID uuid.UUID, permissionName string) (bool, error)
	AssignRole(ctx context.Context, userID uuid.UUID, roleID int, assignedBy *uuid.UUID) error
	RemoveRole(ctx context.Context, userID uuid.UUID, roleID int) error
	PermissionsForRole(ctx context.Context, roleID int) ([]*Permission, error)
}
