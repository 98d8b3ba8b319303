package practitioner

import (
	"time"

	"github.com/google/uuid"
)

// Practitioner maps to the medicos table.
type Practitioner struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	FullName        string     `db:"nombre_completo" json:"full_name"`
	Specialty       string     `db:"especialidad" json:"specialty"`
	ConsultationFee float64    `db:"precio_consulta" json:"consultation_fee"`
	Active          bool       `db:"activo" json:"active"`
	UserID          *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}
