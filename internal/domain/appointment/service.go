package appointment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = fmt.Errorf("cita no encontrada")

var validStatuses = map[string]bool{
	StatusScheduled: true, StatusPendingPayment: true, StatusConfirmed: true,
	StatusCancelled: true, StatusCompleted: true,
}

type Service struct {
	appointments Repository
}

func NewService(appointments Repository) *Service {
	return &Service{appointments: appointments}
}

// NormalizeTime converts a slot time to the stored "HH:MM:SS" form. A bare
// "HH:MM" gains a ":00" seconds part; anything longer is truncated.
func NormalizeTime(hora string) string {
	hora = strings.TrimSpace(hora)
	if len(hora) == 5 {
		return hora + ":00"
	}
	if len(hora) > 8 {
		return hora[:8]
	}
	return hora
}

// ValidSlot reports whether the given time matches one of the fixed
// consultation slots. Accepts "HH:MM" or "HH:MM:SS".
func ValidSlot(hora string) bool {
	hora = strings.TrimSpace(hora)
	if len(hora) >= 5 {
		hora = hora[:5]
	}
	for _, slot := range TimeSlots {
		if slot == hora {
			return true
		}
	}
	return false
}

// Create validates and persists a new appointment. The date must be today or
// later and the time one of the fixed slots.
func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.PractitionerID == uuid.Nil {
		return fmt.Errorf("debe seleccionar un médico")
	}
	if a.Date.IsZero() {
		return fmt.Errorf("debe seleccionar una fecha")
	}
	// Compare calendar dates, not instants: the parsed date sits at UTC
	// midnight while "today" is the server's local day.
	if a.Date.Format("2006-01-02") < time.Now().Format("2006-01-02") {
		return fmt.Errorf("la fecha de la cita debe ser hoy o posterior")
	}
	if !ValidSlot(a.Time) {
		return fmt.Errorf("debe seleccionar un horario válido")
	}
	if strings.TrimSpace(a.Reason) == "" {
		return fmt.Errorf("debe indicar el motivo de la consulta")
	}
	a.Time = NormalizeTime(a.Time)
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if !validStatuses[a.Status] {
		return fmt.Errorf("estado de cita inválido: %s", a.Status)
	}
	return s.appointments.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*WithPractitioner, int, error) {
	return s.appointments.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListUpcoming(ctx context.Context, patientID uuid.UUID, limit int) ([]*WithPractitioner, error) {
	return s.appointments.ListUpcoming(ctx, patientID, limit)
}

func (s *Service) ListByStatus(ctx context.Context, patientID uuid.UUID, status string, limit int) ([]*WithPractitioner, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("estado de cita inválido: %s", status)
	}
	return s.appointments.ListByStatus(ctx, patientID, status, limit)
}

func (s *Service) CountsByStatus(ctx context.Context, patientID uuid.UUID) (*StatusCounts, error) {
	return s.appointments.CountsByStatus(ctx, patientID)
}

// SetStatus transitions an appointment without ownership checks; it is used
// by the payment review cascade.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !validStatuses[status] {
		return fmt.Errorf("estado de cita inválido: %s", status)
	}
	return s.appointments.SetStatus(ctx, id, status)
}

// Cancel cancels an appointment owned by the given patient. Cancelled and
// completed appointments cannot be cancelled again.
func (s *Service) Cancel(ctx context.Context, id, patientID uuid.UUID) error {
	ok, err := s.appointments.CancelOwned(ctx, id, patientID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Delete removes an appointment owned by the given patient.
func (s *Service) Delete(ctx context.Context, id, patientID uuid.UUID) error {
	ok, err := s.appointments.DeleteOwned(ctx, id, patientID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
