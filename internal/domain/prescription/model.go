package prescription

import (
	"time"

	"github.com/google/uuid"
)

// Prescription statuses, persisted verbatim.
const (
	StatusActive    = "Activa"
	StatusCompleted = "Completada"
	StatusCancelled = "Cancelada"
)

// Prescription maps to the recetas table.
type Prescription struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PatientID      uuid.UUID `db:"paciente_id" json:"patient_id"`
	PractitionerID uuid.UUID `db:"medico_id" json:"practitioner_id"`
	Medication     string    `db:"medicamento" json:"medication"`
	Dosage         string    `db:"dosis" json:"dosage"`
	Frequency      *string   `db:"frecuencia" json:"frequency,omitempty"`
	Duration       *string   `db:"duracion" json:"duration,omitempty"`
	Instructions   *string   `db:"indicaciones" json:"instructions,omitempty"`
	Status         string    `db:"estado" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// WithPractitioner embeds the prescriber's display fields for list views.
type WithPractitioner struct {
	Prescription
	PractitionerName string `json:"practitioner_name"`
}
