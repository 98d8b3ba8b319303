package exam

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	exams map[uuid.UUID]*Exam
}

func newMockRepo() *mockRepo {
	return &mockRepo{exams: make(map[uuid.UUID]*Exam)}
}

func (m *mockRepo) Create(ctx context.Context, e *Exam) error {
	e.ID = uuid.New()
	cp := *e
	m.exams[e.ID] = &cp
	return nil
}

func (m *mockRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Exam, int, error) {
	var items []*Exam
	for _, e := range m.exams {
		if e.PatientID == patientID {
			items = append(items, e)
		}
	}
	return items, len(items), nil
}

func (m *mockRepo) CountOpenByPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	n := 0
	for _, e := range m.exams {
		if e.PatientID == patientID && (e.Status == StatusPending || e.Status == StatusInProgress) {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) SetStatus(ctx context.Context, id uuid.UUID, status string, resultNotes *string) error {
	if e, ok := m.exams[id]; ok {
		e.Status = status
		if resultNotes != nil {
			e.ResultNotes = resultNotes
		}
	}
	return nil
}

func TestCreate_DefaultsToPending(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	e := &Exam{PatientID: uuid.New(), Type: "Hemograma completo"}

	if err := svc.Create(context.Background(), e); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if e.Status != StatusPending {
		t.Errorf("expected default status %s, got %s", StatusPending, e.Status)
	}
}

func TestCreate_RequiresType(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Create(context.Background(), &Exam{PatientID: uuid.New(), Type: " "}); err == nil {
		t.Fatal("expected error for missing exam type")
	}
}

func TestCountOpen_PendingAndInProgress(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	patientID := uuid.New()

	for _, status := range []string{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled} {
		e := &Exam{PatientID: patientID, Type: "Radiografía", Status: status}
		if err := svc.Create(context.Background(), e); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	n, err := svc.CountOpen(context.Background(), patientID)
	if err != nil {
		t.Fatalf("CountOpen() error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 open exams, got %d", n)
	}
}
