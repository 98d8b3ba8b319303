package exam

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var validStatuses = map[string]bool{
	StatusPending: true, StatusInProgress: true, StatusCompleted: true, StatusCancelled: true,
}

type Service struct {
	exams Repository
}

func NewService(exams Repository) *Service {
	return &Service{exams: exams}
}

func (s *Service) Create(ctx context.Context, e *Exam) error {
	if e.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if strings.TrimSpace(e.Type) == "" {
		return fmt.Errorf("el tipo de examen es obligatorio")
	}
	if e.Status == "" {
		e.Status = StatusPending
	}
	if !validStatuses[e.Status] {
		return fmt.Errorf("estado de examen inválido: %s", e.Status)
	}
	return s.exams.Create(ctx, e)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Exam, int, error) {
	return s.exams.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) CountOpen(ctx context.Context, patientID uuid.UUID) (int, error) {
	return s.exams.CountOpenByPatient(ctx, patientID)
}

func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string, resultNotes *string) error {
	if !validStatuses[status] {
		return fmt.Errorf("estado de examen inválido: %s", status)
	}
	return s.exams.SetStatus(ctx, id, status, resultNotes)
}
