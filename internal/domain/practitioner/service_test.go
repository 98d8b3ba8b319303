package practitioner

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	practitioners map[uuid.UUID]*Practitioner
}

func newMockRepo() *mockRepo {
	return &mockRepo{practitioners: make(map[uuid.UUID]*Practitioner)}
}

func (m *mockRepo) ListActive(ctx context.Context, specialty string) ([]*Practitioner, error) {
	var items []*Practitioner
	for _, p := range m.practitioners {
		if !p.Active {
			continue
		}
		if specialty != "" && p.Specialty != specialty {
			continue
		}
		items = append(items, p)
	}
	return items, nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Practitioner, error) {
	p, ok := m.practitioners[id]
	if !ok {
		return nil, fmt.Errorf("no rows")
	}
	return p, nil
}

func (m *mockRepo) Create(ctx context.Context, p *Practitioner) error {
	p.ID = uuid.New()
	m.practitioners[p.ID] = p
	return nil
}

func (m *mockRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if p, ok := m.practitioners[id]; ok {
		p.Active = active
	}
	return nil
}

func seed(repo *mockRepo, name, specialty string, fee float64, active bool) *Practitioner {
	p := &Practitioner{ID: uuid.New(), FullName: name, Specialty: specialty, ConsultationFee: fee, Active: active}
	repo.practitioners[p.ID] = p
	return p
}

func TestFee_ReturnsAuthoritativeFee(t *testing.T) {
	repo := newMockRepo()
	p := seed(repo, "Dr. García", "Cardiología", 150, true)
	svc := NewService(repo)

	fee, err := svc.Fee(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Fee() error: %v", err)
	}
	if fee != 150 {
		t.Errorf("expected fee 150, got %v", fee)
	}
}

func TestFee_UnknownPractitioner(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Fee(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected error for unknown practitioner, never a zero fallback")
	}
}

func TestFee_InactivePractitioner(t *testing.T) {
	repo := newMockRepo()
	p := seed(repo, "Dr. García", "Cardiología", 150, false)
	svc := NewService(repo)

	if _, err := svc.Fee(context.Background(), p.ID); err == nil {
		t.Fatal("expected error for inactive practitioner")
	}
}

func TestListActive_FiltersBySpecialty(t *testing.T) {
	repo := newMockRepo()
	seed(repo, "Dr. García", "Cardiología", 150, true)
	seed(repo, "Dra. Rivas", "Pediatría", 100, true)
	seed(repo, "Dr. Soto", "Cardiología", 120, false)
	svc := NewService(repo)

	items, err := svc.ListActive(context.Background(), "Cardiología")
	if err != nil {
		t.Fatalf("ListActive() error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 active cardiologist, got %d", len(items))
	}
	if items[0].FullName != "Dr. García" {
		t.Errorf("unexpected practitioner: %s", items[0].FullName)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo())

	cases := []*Practitioner{
		{FullName: "", Specialty: "Pediatría", ConsultationFee: 100},
		{FullName: "Dr. X", Specialty: "", ConsultationFee: 100},
		{FullName: "Dr. X", Specialty: "Pediatría", ConsultationFee: 0},
	}
	for i, p := range cases {
		if err := svc.Create(context.Background(), p); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}
