package prescription

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, onlyActive bool, limit, offset int) ([]*WithPractitioner, int, error)
	CountActiveByPatient(ctx context.Context, patientID uuid.UUID) (int, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}
