package rbac

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medicareperu/clinic-api/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const roleCols = `id, nombre, nombre_visible, descripcion`

func scanRole(row pgx.Row) (*Role, error) {
	var role Role
	err := row.Scan(&role.ID, &role.Name, &role.DisplayName, &role.Description)
	return &role, err
}

func (r *repoPG) ListRoles(ctx context.Context) ([]*Role, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+roleCols+` FROM roles ORDER BY nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRoles(rows)
}

func (r *repoPG) GetRoleByName(ctx context.Context, name string) (*Role, error) {
	return scanRole(r.conn(ctx).QueryRow(ctx,
		`SELECT `+roleCols+` FROM roles WHERE nombre = $1`, name))
}

func (r *repoPG) RolesForUser(ctx context.Context, userID uuid.UUID) ([]*Role, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT r.id, r.nombre, r.nombre_visible, r.descripcion
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.nombre`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRoles(rows)
}

func (r *repoPG) UserHasRole(ctx context.Context, userID uuid.UUID, roleName string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_roles ur
			JOIN roles r ON r.id = ur.role_id
			WHERE ur.user_id = $1 AND r.nombre = $2
		)`, userID, roleName).Scan(&exists)
	return exists, err
}

func (r *repoPG) UserHasPermission(ctx context.Context, userID uuid.UUID, permissionName string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_roles ur
			JOIN role_permissions rp ON rp.role_id = ur.role_id
			JOIN permissions p ON p.id = rp.permission_id
			WHERE ur.user_id = $1 AND p.nombre = $2
		)`, userID, permissionName).Scan(&exists)
	return exists, err
}

func (r *repoPG) AssignRole(ctx context.Context, userID uuid.UUID, roleID int, assignedBy *uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id, assigned_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, role_id) DO NOTHING`,
		userID, roleID, assignedBy)
	return err
}

func (r *repoPG) RemoveRole(ctx context.Context, userID uuid.UUID, roleID int) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	return err
}

func (r *repoPG) PermissionsForRole(ctx context.Context, roleID int) ([]*Permission, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT p.id, p.nombre, p.recurso, p.accion
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.nombre`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Resource, &p.Action); err != nil {
			return nil, err
		}
		items = append(items, &p)
	}
	return items, rows.Err()
}

func collectRoles(rows pgx.Rows) ([]*Role, error) {
	var items []*Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, role)
	}
	return items, rows.Err()
}
