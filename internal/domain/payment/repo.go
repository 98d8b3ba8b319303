package payment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	// AttachToAppointment links an unlinked payment owned by the patient to
	// the appointment. Returns false when no row matched (wrong owner,
	// unknown payment, or already linked).
	AttachToAppointment(ctx context.Context, paymentID, patientID, appointmentID uuid.UUID) (bool, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Payment, int, error)
	ListRecentByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*Payment, error)
	ListAll(ctx context.Context, limit, offset int) ([]*AdminView, int, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}
