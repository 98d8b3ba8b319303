package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for booking dates.
const DateLayout = "2006-01-02"

// PaymentRequest is the shared contract of the two capture sub-flows. Yape
// sends an operation number; card sends a transaction id plus card details.
type PaymentRequest struct {
	PractitionerID uuid.UUID `json:"practitioner_id"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Phone          string    `json:"phone"`
	Reason         string    `json:"reason"`

	Method          string     `json:"method"`
	OperationNumber string     `json:"operation_number,omitempty"`
	TransactionID   string     `json:"transaction_id,omitempty"`
	CardType        string     `json:"card_type,omitempty"`
	Currency        string     `json:"currency,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	VoucherDataURL  string     `json:"voucher_data_url,omitempty"`
}

// PaymentResult is returned on a fully linked booking payment.
type PaymentResult struct {
	PaymentID     uuid.UUID `json:"payment_id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	MethodLabel   string    `json:"method_label"`
	Amount        float64   `json:"amount"`
}

// ConfirmRequest finalizes a booking for an already registered payment.
type ConfirmRequest struct {
	PaymentID      *uuid.UUID `json:"payment_id"`
	PractitionerID uuid.UUID  `json:"practitioner_id"`
	Date           string     `json:"date"`
	Time           string     `json:"time"`
	Phone          string     `json:"phone"`
	Reason         string     `json:"reason"`
}

// ConfirmResult reports the appointment the payment ended up funding.
type ConfirmResult struct {
	PaymentID     uuid.UUID `json:"payment_id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	AlreadyLinked bool      `json:"already_linked"`
}

// StepError reports a partial failure in the capture sequence. Prior steps
// are not undone; the error names the artifacts that exist so the state
// stays inspectable.
type StepError struct {
	Step          string     `json:"step"`
	PaymentID     *uuid.UUID `json:"payment_id,omitempty"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
	Err           error      `json:"-"`
	Message       string     `json:"message"`
}

func (e *StepError) Error() string { return e.Message }

func (e *StepError) Unwrap() error { return e.Err }

func newStepError(step string, paymentID, appointmentID *uuid.UUID, err error) *StepError {
	msg := fmt.Sprintf("falló el paso %q: %v", step, err)
	switch {
	case paymentID != nil && appointmentID != nil:
		msg = fmt.Sprintf("el pago %s y la cita %s fueron creados pero no se pudieron vincular: %v",
			paymentID, appointmentID, err)
	case paymentID != nil:
		msg = fmt.Sprintf("el pago %s fue registrado pero la cita no se pudo crear: %v", paymentID, err)
	}
	return &StepError{Step: step, PaymentID: paymentID, AppointmentID: appointmentID, Err: err, Message: msg}
}
