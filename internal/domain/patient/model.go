package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the pacientes table. The ID is the account ID of the
// authenticated user; a row is created lazily the first time the account
// performs a patient-scoped operation.
type Patient struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	FullName    string     `db:"nombre_completo" json:"full_name"`
	Phone       *string    `db:"telefono" json:"phone,omitempty"`
	DateOfBirth *time.Time `db:"fecha_nacimiento" json:"date_of_birth,omitempty"`
	Gender      *string    `db:"genero" json:"gender,omitempty"`
	Address     *string    `db:"direccion" json:"address,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}
