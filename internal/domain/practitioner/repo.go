package practitioner

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	ListActive(ctx context.Context, specialty string) ([]*Practitioner, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Practitioner, error)
	Create(ctx context.Context, p *Practitioner) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}
