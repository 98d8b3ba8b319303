package practitioner

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a practitioner does not exist or is inactive.
var ErrNotFound = fmt.Errorf("médico no encontrado")

// Specialties offered by the clinic.
var Specialties = []string{
	"Consulta General",
	"Cardiología",
	"Traumatología",
	"Pediatría",
	"Neurología",
	"Análisis Clínicos",
	"Radiología",
	"Vacunación",
}

type Service struct {
	practitioners Repository
}

func NewService(practitioners Repository) *Service {
	return &Service{practitioners: practitioners}
}

func (s *Service) ListActive(ctx context.Context, specialty string) ([]*Practitioner, error) {
	return s.practitioners.ListActive(ctx, specialty)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Practitioner, error) {
	p, err := s.practitioners.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// Fee returns the authoritative consultation fee for an active practitioner.
// There is no zero-fee fallback: an unknown or inactive practitioner is an
// error so that a payment can never be created with an invented amount.
func (s *Service) Fee(ctx context.Context, id uuid.UUID) (float64, error) {
	p, err := s.practitioners.GetByID(ctx, id)
	if err != nil {
		return 0, ErrNotFound
	}
	if !p.Active {
		return 0, ErrNotFound
	}
	return p.ConsultationFee, nil
}

func (s *Service) Create(ctx context.Context, p *Practitioner) error {
	if strings.TrimSpace(p.FullName) == "" {
		return fmt.Errorf("el nombre completo es obligatorio")
	}
	if strings.TrimSpace(p.Specialty) == "" {
		return fmt.Errorf("la especialidad es obligatoria")
	}
	if p.ConsultationFee <= 0 {
		return fmt.Errorf("el precio de consulta debe ser mayor a cero")
	}
	p.Active = true
	return s.practitioners.Create(ctx, p)
}

func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if id == uuid.Nil {
		return fmt.Errorf("practitioner id is required")
	}
	return s.practitioners.SetActive(ctx, id, active)
}
