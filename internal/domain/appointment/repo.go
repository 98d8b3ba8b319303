package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*WithPractitioner, int, error)
	ListUpcoming(ctx context.Context, patientID uuid.UUID, limit int) ([]*WithPractitioner, error)
	ListByStatus(ctx context.Context, patientID uuid.UUID, status string, limit int) ([]*WithPractitioner, error)
	CountsByStatus(ctx context.Context, patientID uuid.UUID) (*StatusCounts, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	CancelOwned(ctx context.Context, id, patientID uuid.UUID) (bool, error)
	DeleteOwned(ctx context.Context, id, patientID uuid.UUID) (bool, error)
}
