package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

// DeriveName picks a display name for a patient record: the profile name if
// present, otherwise the local part of the email, otherwise "Paciente".
func DeriveName(fullName, email string) string {
	if name := strings.TrimSpace(fullName); name != "" {
		return name
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return "Paciente"
}

// EnsureExists upserts the patient row for the given account. The operation
// is idempotent: repeating it never duplicates rows, and the email-derived
// fallback name is used only when the row is first created, so a stored name
// survives later calls that carry no profile name.
func (s *Service) EnsureExists(ctx context.Context, accountID uuid.UUID, fullName, email string, phone *string) error {
	if accountID == uuid.Nil {
		return fmt.Errorf("account id is required")
	}
	p := &Patient{
		ID:       accountID,
		FullName: strings.TrimSpace(fullName),
		Phone:    phone,
	}
	if err := s.patients.Upsert(ctx, p, DeriveName(fullName, email)); err != nil {
		return fmt.Errorf("upsert patient: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

var validGenders = map[string]bool{
	"Masculino": true, "Femenino": true, "Otro": true,
}

// UpdateProfile updates the patient's own profile fields.
func (s *Service) UpdateProfile(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("patient id is required")
	}
	if strings.TrimSpace(p.FullName) == "" {
		return fmt.Errorf("el nombre completo es obligatorio")
	}
	if p.Gender != nil && !validGenders[*p.Gender] {
		return fmt.Errorf("género inválido: %s", *p.Gender)
	}
	return s.patients.UpdateProfile(ctx, p)
}
