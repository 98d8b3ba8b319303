package payment

import (
	"time"

	"github.com/google/uuid"
)

// Payment statuses, persisted verbatim.
const (
	StatusPending   = "Pendiente"
	StatusCompleted = "Completado"
	StatusFailed    = "Fallido"
	StatusRefunded  = "Reembolsado"
)

// Payment methods accepted by the clinic.
const (
	MethodCash     = "Efectivo"
	MethodCard     = "Tarjeta"
	MethodTransfer = "Transferencia"
	MethodYape     = "Yape"
	MethodPlin     = "Plin"
	MethodCulqi    = "Culqi"
)

// DefaultCurrency is the currency assumed when none is provided.
const DefaultCurrency = "PEN"

// Payment maps to the pagos table. AppointmentID is null until the payment
// is linked to the appointment it funds; the link is immutable afterwards.
type Payment struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"paciente_id" json:"patient_id"`
	AppointmentID  *uuid.UUID `db:"cita_id" json:"appointment_id,omitempty"`
	Amount         float64    `db:"monto" json:"amount"`
	Currency       string     `db:"moneda" json:"currency"`
	Method         string     `db:"metodo_pago" json:"method"`
	Status         string     `db:"estado" json:"status"`
	TransactionRef *string    `db:"transaccion_id" json:"transaction_reference,omitempty"`
	VoucherDataURL *string    `db:"voucher_data_url" json:"voucher_data_url,omitempty"`
	PaidAt         *time.Time `db:"fecha_pago" json:"paid_at,omitempty"`
	Notes          *string    `db:"notas" json:"notes,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// AdminView is a payment joined with patient and appointment details for the
// review panel.
type AdminView struct {
	Payment
	PatientName       string     `json:"patient_name"`
	PatientPhone      *string    `json:"patient_phone,omitempty"`
	AppointmentDate   *time.Time `json:"appointment_date,omitempty"`
	AppointmentTime   *string    `json:"appointment_time,omitempty"`
	AppointmentStatus *string    `json:"appointment_status,omitempty"`
	PractitionerName  *string    `json:"practitioner_name,omitempty"`
}
