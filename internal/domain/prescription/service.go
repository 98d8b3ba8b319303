package prescription

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var validStatuses = map[string]bool{
	StatusActive: true, StatusCompleted: true, StatusCancelled: true,
}

type Service struct {
	prescriptions Repository
}

func NewService(prescriptions Repository) *Service {
	return &Service{prescriptions: prescriptions}
}

func (s *Service) Create(ctx context.Context, p *Prescription) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if p.PractitionerID == uuid.Nil {
		return fmt.Errorf("practitioner_id is required")
	}
	if strings.TrimSpace(p.Medication) == "" {
		return fmt.Errorf("el medicamento es obligatorio")
	}
	if strings.TrimSpace(p.Dosage) == "" {
		return fmt.Errorf("la dosis es obligatoria")
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if !validStatuses[p.Status] {
		return fmt.Errorf("estado de receta inválido: %s", p.Status)
	}
	return s.prescriptions.Create(ctx, p)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, onlyActive bool, limit, offset int) ([]*WithPractitioner, int, error) {
	return s.prescriptions.ListByPatient(ctx, patientID, onlyActive, limit, offset)
}

func (s *Service) CountActive(ctx context.Context, patientID uuid.UUID) (int, error) {
	return s.prescriptions.CountActiveByPatient(ctx, patientID)
}

func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !validStatuses[status] {
		return fmt.Errorf("estado de receta inválido: %s", status)
	}
	return s.prescriptions.SetStatus(ctx, id, status)
}
