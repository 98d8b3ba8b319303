package exam

import (
	"time"

	"github.com/google/uuid"
)

// Exam statuses, persisted verbatim.
const (
	StatusPending    = "Pendiente"
	StatusInProgress = "En Proceso"
	StatusCompleted  = "Completado"
	StatusCancelled  = "Cancelado"
)

// Exam maps to the examenes table.
type Exam struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"paciente_id" json:"patient_id"`
	PractitionerID *uuid.UUID `db:"medico_id" json:"practitioner_id,omitempty"`
	Type           string     `db:"tipo_examen" json:"type"`
	Status         string     `db:"estado" json:"status"`
	ResultNotes    *string    `db:"resultado" json:"result_notes,omitempty"`
	RequestedAt    time.Time  `db:"created_at" json:"requested_at"`
}
