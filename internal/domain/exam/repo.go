package exam

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, e *Exam) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Exam, int, error)
	// CountOpenByPatient counts exams still pending or in progress.
	CountOpenByPatient(ctx context.Context, patientID uuid.UUID) (int, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string, resultNotes *string) error
}
