package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medicareperu/clinic-api/internal/domain/appointment"
	"github.com/medicareperu/clinic-api/internal/domain/payment"
	"github.com/medicareperu/clinic-api/internal/domain/practitioner"
)

// PatientEnsurer provisions the patient row before any booking write.
type PatientEnsurer interface {
	EnsureExists(ctx context.Context, accountID uuid.UUID, fullName, email string, phone *string) error
}

// PractitionerDirectory resolves practitioners and their canonical fees.
type PractitionerDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*practitioner.Practitioner, error)
	Fee(ctx context.Context, id uuid.UUID) (float64, error)
}

// PaymentRegistrar is the payment surface the booking flow drives.
type PaymentRegistrar interface {
	Create(ctx context.Context, p *payment.Payment) error
	Get(ctx context.Context, id uuid.UUID) (*payment.Payment, error)
	Attach(ctx context.Context, paymentID, patientID, appointmentID uuid.UUID) error
}

// AppointmentBooker is the appointment surface the booking flow drives.
type AppointmentBooker interface {
	Create(ctx context.Context, a *appointment.Appointment) error
}

type Service struct {
	patients      PatientEnsurer
	practitioners PractitionerDirectory
	payments      PaymentRegistrar
	appointments  AppointmentBooker
}

func NewService(patients PatientEnsurer, practitioners PractitionerDirectory,
	payments PaymentRegistrar, appointments AppointmentBooker) *Service {
	return &Service{
		patients:      patients,
		practitioners: practitioners,
		payments:      payments,
		appointments:  appointments,
	}
}

// ValidateForm checks the booking fields and returns one message per missing
// or invalid field. An empty map means the form is complete.
func ValidateForm(practitionerID uuid.UUID, date, slot, phone, reason string) map[string]string {
	errs := make(map[string]string)

	if practitionerID == uuid.Nil {
		errs["practitioner_id"] = "debe seleccionar un médico"
	}
	if strings.TrimSpace(date) == "" {
		errs["date"] = "debe seleccionar una fecha"
	} else if _, err := time.Parse(DateLayout, date); err != nil {
		errs["date"] = "la fecha no es válida"
	} else if date < time.Now().Format(DateLayout) {
		// Calendar dates compare lexically; formatting "today" in local time
		// keeps the rule correct around midnight for non-UTC deployments.
		errs["date"] = "la fecha de la cita debe ser hoy o posterior"
	}
	if strings.TrimSpace(slot) == "" {
		errs["time"] = "debe seleccionar un horario"
	} else if !appointment.ValidSlot(slot) {
		errs["time"] = "debe seleccionar un horario válido"
	}
	if strings.TrimSpace(phone) == "" {
		errs["phone"] = "debe indicar un teléfono de contacto"
	}
	if strings.TrimSpace(reason) == "" {
		errs["reason"] = "debe indicar el motivo de la consulta"
	}
	return errs
}

func methodLabel(method string) string {
	switch method {
	case payment.MethodYape:
		return "Yape"
	case payment.MethodCard:
		return "Tarjeta de crédito/débito"
	default:
		return method
	}
}

func (r *PaymentRequest) reference() (string, error) {
	switch r.Method {
	case payment.MethodYape:
		if strings.TrimSpace(r.OperationNumber) == "" {
			return "", fmt.Errorf("debe ingresar el número de operación de Yape")
		}
		return strings.TrimSpace(r.OperationNumber), nil
	case payment.MethodCard:
		if strings.TrimSpace(r.TransactionID) == "" {
			return "", fmt.Errorf("debe ingresar el identificador de la transacción")
		}
		return strings.TrimSpace(r.TransactionID), nil
	default:
		return "", fmt.Errorf("método de pago inválido: %s", r.Method)
	}
}

// RegisterPayment runs the capture sequence: patient upsert, payment in
// Pendiente with the practitioner's canonical fee, practitioner re-resolve,
// appointment in Pendiente Pago, payment link. Steps are not rolled back on
// failure; the returned StepError names which artifacts exist.
func (s *Service) RegisterPayment(ctx context.Context, patientID uuid.UUID, patientName, patientEmail string, req *PaymentRequest) (*PaymentResult, error) {
	if fieldErrs := ValidateForm(req.PractitionerID, req.Date, req.Time, req.Phone, req.Reason); len(fieldErrs) > 0 {
		for _, msg := range fieldErrs {
			return nil, fmt.Errorf("%s", msg)
		}
	}
	ref, err := req.reference()
	if err != nil {
		return nil, err
	}

	// The amount never comes from the client. Unknown or inactive
	// practitioner aborts before any write.
	fee, err := s.practitioners.Fee(ctx, req.PractitionerID)
	if err != nil {
		return nil, practitioner.ErrNotFound
	}

	phone := strings.TrimSpace(req.Phone)
	if err := s.patients.EnsureExists(ctx, patientID, patientName, patientEmail, &phone); err != nil {
		return nil, newStepError("registrar paciente", nil, nil, err)
	}

	pay := &payment.Payment{
		PatientID:      patientID,
		Amount:         fee,
		Currency:       req.Currency,
		Method:         req.Method,
		Status:         payment.StatusPending,
		TransactionRef: &ref,
		PaidAt:         req.PaidAt,
	}
	if req.CardType != "" {
		notes := "Tarjeta: " + req.CardType
		pay.Notes = &notes
	}
	if req.VoucherDataURL != "" {
		pay.VoucherDataURL = &req.VoucherDataURL
	}
	if err := s.payments.Create(ctx, pay); err != nil {
		return nil, newStepError("registrar pago", nil, nil, err)
	}

	doc, err := s.practitioners.Get(ctx, req.PractitionerID)
	if err != nil {
		return nil, newStepError("resolver médico", &pay.ID, nil, err)
	}

	date, _ := time.Parse(DateLayout, req.Date)
	notes := "Teléfono: " + phone
	appt := &appointment.Appointment{
		PatientID:      patientID,
		PractitionerID: doc.ID,
		Date:           date,
		Time:           req.Time,
		Status:         appointment.StatusPendingPayment,
		Reason:         strings.TrimSpace(req.Reason),
		Notes:          &notes,
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		return nil, newStepError("crear cita", &pay.ID, nil, err)
	}

	if err := s.payments.Attach(ctx, pay.ID, patientID, appt.ID); err != nil {
		return nil, newStepError("vincular pago", &pay.ID, &appt.ID, err)
	}

	return &PaymentResult{
		PaymentID:     pay.ID,
		AppointmentID: appt.ID,
		MethodLabel:   methodLabel(req.Method),
		Amount:        fee,
	}, nil
}

// Confirm finalizes a booking. It requires a registered payment; when that
// payment already funds an appointment the call is a no-op success.
func (s *Service) Confirm(ctx context.Context, patientID uuid.UUID, req *ConfirmRequest) (*ConfirmResult, error) {
	if req.PaymentID == nil || *req.PaymentID == uuid.Nil {
		return nil, fmt.Errorf("no se puede confirmar la reserva sin un pago registrado")
	}

	pay, err := s.payments.Get(ctx, *req.PaymentID)
	if err != nil || pay.PatientID != patientID {
		return nil, payment.ErrNotFound
	}
	if pay.AppointmentID != nil {
		return &ConfirmResult{PaymentID: pay.ID, AppointmentID: *pay.AppointmentID, AlreadyLinked: true}, nil
	}

	if fieldErrs := ValidateForm(req.PractitionerID, req.Date, req.Time, req.Phone, req.Reason); len(fieldErrs) > 0 {
		for _, msg := range fieldErrs {
			return nil, fmt.Errorf("%s", msg)
		}
	}

	date, _ := time.Parse(DateLayout, req.Date)
	phone := strings.TrimSpace(req.Phone)
	notes := "Teléfono: " + phone
	appt := &appointment.Appointment{
		PatientID:      patientID,
		PractitionerID: req.PractitionerID,
		Date:           date,
		Time:           req.Time,
		Status:         appointment.StatusPendingPayment,
		Reason:         strings.TrimSpace(req.Reason),
		Notes:          &notes,
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		return nil, newStepError("crear cita", &pay.ID, nil, err)
	}
	if err := s.payments.Attach(ctx, pay.ID, patientID, appt.ID); err != nil {
		return nil, newStepError("vincular pago", &pay.ID, &appt.ID, err)
	}

	return &ConfirmResult{PaymentID: pay.ID, AppointmentID: appt.ID}, nil
}
