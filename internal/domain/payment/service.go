package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medicareperu/clinic-api/internal/domain/appointment"
)

var (
	ErrNotFound      = fmt.Errorf("pago no encontrado")
	ErrAlreadyLinked = fmt.Errorf("no se pudo asociar el pago: ya está vinculado a una cita")
)

var validStatuses = map[string]bool{
	StatusPending: true, StatusCompleted: true, StatusFailed: true, StatusRefunded: true,
}

var validMethods = map[string]bool{
	MethodCash: true, MethodCard: true, MethodTransfer: true,
	MethodYape: true, MethodPlin: true, MethodCulqi: true,
}

// AppointmentTransitioner is the slice of the appointment service the review
// cascade needs.
type AppointmentTransitioner interface {
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}

type Service struct {
	payments        Repository
	appointments    AppointmentTransitioner
	maxVoucherBytes int
}

func NewService(payments Repository, appointments AppointmentTransitioner, maxVoucherBytes int) *Service {
	return &Service{payments: payments, appointments: appointments, maxVoucherBytes: maxVoucherBytes}
}

// Create registers a payment. New payments start Pendiente and unlinked; the
// voucher, when present, must be a valid image data URI.
func (s *Service) Create(ctx context.Context, p *Payment) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if p.Amount <= 0 {
		return fmt.Errorf("el monto debe ser mayor a cero")
	}
	if !validMethods[p.Method] {
		return fmt.Errorf("método de pago inválido: %s", p.Method)
	}
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	if p.Status == "" {
		p.Status = StatusPending
	}
	if !validStatuses[p.Status] {
		return fmt.Errorf("estado de pago inválido: %s", p.Status)
	}
	if p.VoucherDataURL != nil {
		validated, err := ParseVoucherDataURL(*p.VoucherDataURL, s.maxVoucherBytes)
		if err != nil {
			return err
		}
		p.VoucherDataURL = &validated
	}
	return s.payments.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Payment, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// Attach links a payment to an appointment. The update is patient-scoped and
// refuses to relink a payment that already funds an appointment.
func (s *Service) Attach(ctx context.Context, paymentID, patientID, appointmentID uuid.UUID) error {
	ok, err := s.payments.AttachToAppointment(ctx, paymentID, patientID, appointmentID)
	if err != nil {
		return fmt.Errorf("no se pudo asociar el pago: %w", err)
	}
	if ok {
		return nil
	}

	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return ErrNotFound
	}
	if p.AppointmentID != nil {
		return ErrAlreadyLinked
	}
	return ErrNotFound
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Payment, int, error) {
	return s.payments.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListRecentByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*Payment, error) {
	return s.payments.ListRecentByPatient(ctx, patientID, limit)
}

func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]*AdminView, int, error) {
	return s.payments.ListAll(ctx, limit, offset)
}

// CascadeStatus maps a payment status to the appointment status it drives.
func CascadeStatus(paymentStatus string) string {
	switch paymentStatus {
	case StatusCompleted:
		return appointment.StatusConfirmed
	case StatusFailed:
		return appointment.StatusCancelled
	default:
		return appointment.StatusScheduled
	}
}

// Review updates a payment's status from the admin panel and cascades the
// linked appointment. The two updates are deliberately separate statements:
// when the appointment update fails the payment change stands and the error
// says so, mirroring the manual review workflow.
func (s *Service) Review(ctx context.Context, id uuid.UUID, status string) (*Payment, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("estado de pago inválido: %s", status)
	}

	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	if err := s.payments.SetStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("actualizar pago: %w", err)
	}
	p.Status = status

	if p.AppointmentID != nil {
		apptStatus := CascadeStatus(status)
		if err := s.appointments.SetStatus(ctx, *p.AppointmentID, apptStatus); err != nil {
			return p, fmt.Errorf("el pago se actualizó pero no se pudo actualizar la cita: %w", err)
		}
	}

	return p, nil
}
