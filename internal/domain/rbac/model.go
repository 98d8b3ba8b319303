package rbac

import (
	"time"

	"github.com/google/uuid"
)

// Role names used by the clinic.
const (
	RoleAdministrator = "administrador"
	RoleDoctor        = "medico"
	RolePatient       = "paciente"
	RoleReceptionist  = "recepcionista"
)

type Role struct {
	ID          int     `db:"id" json:"id"`
	Name        string  `db:"nombre" json:"name"`
	DisplayName string  `db:"nombre_visible" json:"display_name"`
	Description *string `db:"descripcion" json:"description,omitempty"`
}

type Permission struct {
	ID       int    `db:"id" json:"id"`
	Name     string `db:"nombre" json:"name"`
	Resource string `db:"recurso" json:"resource"`
	Action   string `db:"accion" json:"action"`
}

type UserRole struct {
	UserID     uuid.UUID  `db:"user_id" json:"user_id"`
	RoleID     int        `db:"role_id" json:"role_id"`
	AssignedAt time.Time  `db:"assigned_at" json:"assigned_at"`
	AssignedBy *uuid.UUID `db:"assigned_by" json:"assigned_by,omitempty"`
}
