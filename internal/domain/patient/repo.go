package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Upsert(ctx context.Context, p *Patient, insertName string) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	UpdateProfile(ctx context.Context, p *Patient) error
}
