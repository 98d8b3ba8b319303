package rbac

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	roles      Repository
	adminEmail string
}

// NewService creates the RBAC service. adminEmail is the account that is
// always treated as an administrator regardless of the role tables.
func NewService(roles Repository, adminEmail string) *Service {
	return &Service{roles: roles, adminEmail: strings.ToLower(strings.TrimSpace(adminEmail))}
}

// IsAdmin reports whether the given identity is an administrator. The
// configured admin email is checked first, before any role lookup, so the
// bypass works even with an empty role table.
func (s *Service) IsAdmin(ctx context.Context, userID uuid.UUID, email string) (bool, error) {
	if s.adminEmail != "" && strings.ToLower(strings.TrimSpace(email)) == s.adminEmail {
		return true, nil
	}
	return s.roles.UserHasRole(ctx, userID, RoleAdministrator)
}

// RoleNamesForUser returns the user's role names, with the administrator
// role injected for the configured admin email.
func (s *Service) RoleNamesForUser(ctx context.Context, userID uuid.UUID, email string) ([]string, error) {
	roles, err := s.roles.RolesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("roles for user: %w", err)
	}

	names := make([]string, 0, len(roles)+1)
	isAdmin := false
	for _, r := range roles {
		names = append(names, r.Name)
		if r.Name == RoleAdministrator {
			isAdmin = true
		}
	}
	if !isAdmin && s.adminEmail != "" && strings.ToLower(strings.TrimSpace(email)) == s.adminEmail {
		names = append(names, RoleAdministrator)
	}
	return names, nil
}

func (s *Service) HasRole(ctx context.Context, userID uuid.UUID, email, roleName string) (bool, error) {
	if roleName == RoleAdministrator {
		return s.IsAdmin(ctx, userID, email)
	}
	return s.roles.UserHasRole(ctx, userID, roleName)
}

// HasPermission checks a named permission. Administrators hold every
// permission implicitly.
func (s *Service) HasPermission(ctx context.Context, userID uuid.UUID, email, permissionName string) (bool, error) {
	admin, err := s.IsAdmin(ctx, userID, email)
	if err != nil {
		return false, err
	}
	if admin {
		return true, nil
	}
	return s.roles.UserHasPermission(ctx, userID, permissionName)
}

func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	return s.roles.ListRoles(ctx)
}

func (s *Service) PermissionsForRole(ctx context.Context, roleID int) ([]*Permission, error) {
	return s.roles.PermissionsForRole(ctx, roleID)
}

// AssignRoleByName grants a role to a user. Idempotent.
func (s *Service) AssignRoleByName(ctx context.Context, userID uuid.UUID, roleName string, assignedBy *uuid.UUID) error {
	role, err := s.roles.GetRoleByName(ctx, roleName)
	if err != nil {
		return fmt.Errorf("rol desconocido: %s", roleName)
	}
	return s.roles.AssignRole(ctx, userID, role.ID, assignedBy)
}

// RemoveRoleByName revokes a role from a user.
func (s *Service) RemoveRoleByName(ctx context.Context, userID uuid.UUID, roleName string) error {
	role, err := s.roles.GetRoleByName(ctx, roleName)
	if err != nil {
		return fmt.Errorf("rol desconocido: %s", roleName)
	}
	return s.roles.RemoveRole(ctx, userID, role.ID)
}
