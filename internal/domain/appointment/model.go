package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses, persisted verbatim.
const (
	StatusScheduled      = "Programada"
	StatusPendingPayment = "Pendiente Pago"
	StatusConfirmed      = "Confirmada"
	StatusCancelled      = "Cancelada"
	StatusCompleted      = "Completada"
)

// TimeSlots are the fixed bookable consultation hours.
var TimeSlots = []string{
	"08:00", "09:00", "10:00", "11:00", "12:00",
	"14:00", "15:00", "16:00", "17:00", "18:00",
}

// Appointment maps to the citas table.
type Appointment struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PatientID      uuid.UUID `db:"paciente_id" json:"patient_id"`
	PractitionerID uuid.UUID `db:"medico_id" json:"practitioner_id"`
	Date           time.Time `db:"fecha_cita" json:"date"`
	Time           string    `db:"hora_cita" json:"time"`
	Status         string    `db:"estado" json:"status"`
	Reason         string    `db:"motivo" json:"reason"`
	Notes          *string   `db:"notas" json:"notes,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// WithPractitioner is an appointment joined with its practitioner's
// display fields for list views.
type WithPractitioner struct {
	Appointment
	PractitionerName      string `json:"practitioner_name"`
	PractitionerSpecialty string `json:"practitioner_specialty"`
}

// StatusCounts groups appointment totals for the dashboard.
type StatusCounts struct {
	Scheduled int `json:"scheduled"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Cancelled int `json:"cancelled"`
	Completed int `json:"completed"`
}
