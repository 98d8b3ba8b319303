package payment

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/medicareperu/clinic-api/internal/domain/appointment"
)

type mockRepo struct {
	payments map[uuid.UUID]*Payment
}

func newMockRepo() *mockRepo {
	return &mockRepo{payments: make(map[uuid.UUID]*Payment)}
}

func (m *mockRepo) Create(ctx context.Context, p *Payment) error {
	p.ID = uuid.New()
	cp := *p
	m.payments[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, fmt.Errorf("no rows")
	}
	return p, nil
}

func (m *mockRepo) AttachToAppointment(ctx context.Context, paymentID, patientID, appointmentID uuid.UUID) (bool, error) {
	p, ok := m.payments[paymentID]
	if !ok || p.PatientID != patientID || p.AppointmentID != nil {
		return false, nil
	}
	p.AppointmentID = &appointmentID
	return true, nil
}

func (m *mockRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Payment, int, error) {
	var items []*Payment
	for _, p := range m.payments {
		if p.PatientID == patientID {
			items = append(items, p)
		}
	}
	return items, len(items), nil
}

func (m *mockRepo) ListRecentByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*Payment, error) {
	items, _, err := m.ListByPatient(ctx, patientID, limit, 0)
	return items, err
}

func (m *mockRepo) ListAll(ctx context.Context, limit, offset int) ([]*AdminView, int, error) {
	var items []*AdminView
	for _, p := range m.payments {
		items = append(items, &AdminView{Payment: *p})
	}
	return items, len(items), nil
}

func (m *mockRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	p, ok := m.payments[id]
	if !ok {
		return fmt.Errorf("no rows")
	}
	p.Status = status
	return nil
}

type mockTransitioner struct {
	statuses map[uuid.UUID]string
	fail     bool
}

func newMockTransitioner() *mockTransitioner {
	return &mockTransitioner{statuses: make(map[uuid.UUID]string)}
}

func (m *mockTransitioner) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	if m.fail {
		return fmt.Errorf("forced failure")
	}
	m.statuses[id] = status
	return nil
}

const maxVoucher = 1 << 20

func validPayment() *Payment {
	return &Payment{
		PatientID: uuid.New(),
		Amount:    150,
		Method:    MethodYape,
	}
}

func TestCreate_Defaults(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, newMockTransitioner(), maxVoucher)
	p := validPayment()

	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if p.Status != StatusPending {
		t.Errorf("expected default status %s, got %s", StatusPending, p.Status)
	}
	if p.Currency != DefaultCurrency {
		t.Errorf("expected default currency %s, got %s", DefaultCurrency, p.Currency)
	}
	if p.AppointmentID != nil {
		t.Error("expected new payment to be unlinked")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo(), newMockTransitioner(), maxVoucher)

	cases := []func(*Payment){
		func(p *Payment) { p.PatientID = uuid.Nil },
		func(p *Payment) { p.Amount = 0 },
		func(p *Payment) { p.Amount = -10 },
		func(p *Payment) { p.Method = "Bitcoin" },
		func(p *Payment) { p.Status = "Desconocido" },
	}
	for i, mutate := range cases {
		p := validPayment()
		mutate(p)
		if err := svc.Create(context.Background(), p); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestCreate_RejectsBadVoucher(t *testing.T) {
	svc := NewService(newMockRepo(), newMockTransitioner(), maxVoucher)
	p := validPayment()
	bad := "data:text/plain;base64,aGVsbG8="
	p.VoucherDataURL = &bad

	if err := svc.Create(context.Background(), p); err == nil {
		t.Fatal("expected error for non-image voucher")
	}
}

func TestAttach_LinksOnce(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, newMockTransitioner(), maxVoucher)
	p := validPayment()
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	apptID := uuid.New()
	if err := svc.Attach(context.Background(), p.ID, p.PatientID, apptID); err != nil {
		t.Fatalf("Attach() error: %v", err)
	}

	stored, _ := repo.GetByID(context.Background(), p.ID)
	if stored.AppointmentID == nil || *stored.AppointmentID != apptID {
		t.Fatal("expected payment linked to appointment")
	}

	// The link is immutable.
	if err := svc.Attach(context.Background(), p.ID, p.PatientID, uuid.New()); err != ErrAlreadyLinked {
		t.Fatalf("expected ErrAlreadyLinked, got %v", err)
	}
	if *stored.AppointmentID != apptID {
		t.Error("expected original link preserved")
	}
}

func TestAttach_PatientScoped(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, newMockTransitioner(), maxVoucher)
	p := validPayment()
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	err := svc.Attach(context.Background(), p.ID, uuid.New(), uuid.New())
	if err == nil {
		t.Fatal("expected error for foreign patient")
	}
	stored, _ := repo.GetByID(context.Background(), p.ID)
	if stored.AppointmentID != nil {
		t.Error("expected payment to remain unlinked")
	}
}

func TestCascadeStatus(t *testing.T) {
	cases := []struct{ in, want string }{
		{StatusCompleted, appointment.StatusConfirmed},
		{StatusFailed, appointment.StatusCancelled},
		{StatusPending, appointment.StatusScheduled},
		{StatusRefunded, appointment.StatusScheduled},
	}
	for _, tc := range cases {
		if got := CascadeStatus(tc.in); got != tc.want {
			t.Errorf("CascadeStatus(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestReview_CascadesToAppointment(t *testing.T) {
	repo := newMockRepo()
	trans := newMockTransitioner()
	svc := NewService(repo, trans, maxVoucher)

	p := validPayment()
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	apptID := uuid.New()
	if err := svc.Attach(context.Background(), p.ID, p.PatientID, apptID); err != nil {
		t.Fatalf("Attach() error: %v", err)
	}

	updated, err := svc.Review(context.Background(), p.ID, StatusCompleted)
	if err != nil {
		t.Fatalf("Review() error: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Errorf("expected status %s, got %s", StatusCompleted, updated.Status)
	}
	if trans.statuses[apptID] != appointment.StatusConfirmed {
		t.Errorf("expected appointment confirmed, got %s", trans.statuses[apptID])
	}
}

func TestReview_UnlinkedSkipsCascade(t *testing.T) {
	repo := newMockRepo()
	trans := newMockTransitioner()
	svc := NewService(repo, trans, maxVoucher)

	p := validPayment()
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if _, err := svc.Review(context.Background(), p.ID, StatusFailed); err != nil {
		t.Fatalf("Review() error: %v", err)
	}
	if len(trans.statuses) != 0 {
		t.Error("expected no appointment transitions for unlinked payment")
	}
}

func TestReview_CascadeFailureSurfaced(t *testing.T) {
	repo := newMockRepo()
	trans := newMockTransitioner()
	trans.fail = true
	svc := NewService(repo, trans, maxVoucher)

	p := validPayment()
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := svc.Attach(context.Background(), p.ID, p.PatientID, uuid.New()); err != nil {
		t.Fatalf("Attach() error: %v", err)
	}

	updated, err := svc.Review(context.Background(), p.ID, StatusCompleted)
	if err == nil {
		t.Fatal("expected error when cascade fails")
	}
	// The payment update stands even though the cascade failed.
	if updated == nil || updated.Status != StatusCompleted {
		t.Error("expected payment status updated despite cascade failure")
	}
	stored, _ := repo.GetByID(context.Background(), p.ID)
	if stored.Status != StatusCompleted {
		t.Error("expected stored payment status updated")
	}
}
