package dashboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medicareperu/clinic-api/internal/domain/appointment"
	"github.com/medicareperu/clinic-api/internal/domain/payment"
)

type mockAppointments struct {
	upcoming  []*appointment.WithPractitioner
	confirmed []*appointment.WithPractitioner
	counts    *appointment.StatusCounts
	failAll   bool
}

func (m *mockAppointments) ListUpcoming(ctx context.Context, patientID uuid.UUID, limit int) ([]*appointment.WithPractitioner, error) {
	if m.failAll {
		return nil, fmt.Errorf("db down")
	}
	return m.upcoming, nil
}

func (m *mockAppointments) ListByStatus(ctx context.Context, patientID uuid.UUID, status string, limit int) ([]*appointment.WithPractitioner, error) {
	if m.failAll {
		return nil, fmt.Errorf("db down")
	}
	return m.confirmed, nil
}

func (m *mockAppointments) CountsByStatus(ctx context.Context, patientID uuid.UUID) (*appointment.StatusCounts, error) {
	if m.failAll {
		return nil, fmt.Errorf("db down")
	}
	return m.counts, nil
}

type mockPayments struct {
	recent []*payment.Payment
	fail   bool
}

func (m *mockPayments) ListRecentByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*payment.Payment, error) {
	if m.fail {
		return nil, fmt.Errorf("db down")
	}
	return m.recent, nil
}

type mockClock struct {
	createdAt time.Time
	fail      bool
}

func (m *mockClock) CreatedAt(ctx context.Context, id uuid.UUID) (time.Time, error) {
	if m.fail {
		return time.Time{}, fmt.Errorf("db down")
	}
	return m.createdAt, nil
}

func countOf(n int, fail bool) Counter {
	return CounterFunc(func(ctx context.Context, patientID uuid.UUID) (int, error) {
		if fail {
			return 0, fmt.Errorf("db down")
		}
		return n, nil
	})
}

func at(daysAgo int) time.Time {
	return time.Now().AddDate(0, 0, -daysAgo)
}

func appt(status, doctor string, created time.Time) *appointment.WithPractitioner {
	return &appointment.WithPractitioner{
		Appointment:      appointment.Appointment{ID: uuid.New(), Status: status, CreatedAt: created},
		PractitionerName: doctor,
	}
}

func pay(status string, amount float64, created time.Time) *payment.Payment {
	return &payment.Payment{
		ID: uuid.New(), Amount: amount, Currency: "PEN",
		Method: payment.MethodYape, Status: status, CreatedAt: created,
	}
}

func TestSummarize(t *testing.T) {
	appts := &mockAppointments{
		upcoming: []*appointment.WithPractitioner{
			appt(appointment.StatusPendingPayment, "Dra. Rojas", at(1)),
		},
		confirmed: []*appointment.WithPractitioner{
			appt(appointment.StatusConfirmed, "Dr. Soto", at(5)),
		},
		counts: &appointment.StatusCounts{Confirmed: 1, Pending: 1},
	}
	pays := &mockPayments{recent: []*payment.Payment{pay(payment.StatusPending, 100, at(2))}}
	clock := &mockClock{createdAt: at(30)}

	svc := NewService(appts, pays, countOf(2, false), countOf(1, false), clock, zerolog.Nop())
	sum, err := svc.Summarize(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if len(sum.Appointments) != 1 || len(sum.ConfirmedAppointments) != 1 || len(sum.RecentPayments) != 1 {
		t.Error("expected all sections populated")
	}
	if sum.ActivePrescriptions != 2 || sum.PendingExams != 1 {
		t.Errorf("unexpected counters: %d prescriptions, %d exams", sum.ActivePrescriptions, sum.PendingExams)
	}
	if sum.StatusCounts.Confirmed != 1 {
		t.Error("expected status counts propagated")
	}

	// Feed: appointment (1d), payment (2d), sentinel (30d) — newest first.
	if len(sum.RecentActivity) != 3 {
		t.Fatalf("expected 3 activity events, got %d", len(sum.RecentActivity))
	}
	last := sum.RecentActivity[len(sum.RecentActivity)-1]
	if last.Title != "Cuenta creada" {
		t.Errorf("expected account-creation sentinel last, got %q", last.Title)
	}
	for i := 0; i < len(sum.RecentActivity)-1; i++ {
		if sum.RecentActivity[i].Timestamp.Before(sum.RecentActivity[i+1].Timestamp) {
			t.Error("expected feed sorted newest first")
		}
	}
}

func TestSummarizeDegradesFailedSections(t *testing.T) {
	appts := &mockAppointments{failAll: true}
	pays := &mockPayments{fail: true}
	clock := &mockClock{fail: true}

	svc := NewService(appts, pays, countOf(0, true), countOf(0, true), clock, zerolog.Nop())
	sum, err := svc.Summarize(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("expected degraded response, got error: %v", err)
	}
	if len(sum.Appointments) != 0 || len(sum.RecentPayments) != 0 {
		t.Error("expected empty sections on failure")
	}
	if sum.ActivePrescriptions != 0 || sum.PendingExams != 0 {
		t.Error("expected zero counters on failure")
	}
	if sum.StatusCounts == nil {
		t.Error("expected zero-value status counts, not nil")
	}
	if len(sum.RecentActivity) != 0 {
		t.Errorf("expected empty feed when everything failed, got %d", len(sum.RecentActivity))
	}
}

func TestSummarizeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(&mockAppointments{}, &mockPayments{}, countOf(0, false), countOf(0, false),
		&mockClock{}, zerolog.Nop())
	if _, err := svc.Summarize(ctx, uuid.New()); err == nil {
		t.Error("expected error for cancelled request context")
	}
}

func TestIconForStatus(t *testing.T) {
	cases := map[string]string{
		"Pendiente":      IconHourglass,
		"Pendiente Pago": IconHourglass,
		"Completado":     IconCheck,
		"Completada":     IconCheck,
		"Fallido":        IconCross,
		"Cancelada":      IconCross,
		"Programada":     IconNeutral,
		"Confirmada":     IconNeutral,
	}
	for status, want := range cases {
		if got := IconForStatus(status); got != want {
			t.Errorf("IconForStatus(%q) = %q, want %q", status, got, want)
		}
	}
}

func TestActivityFeedCapped(t *testing.T) {
	var recent []*payment.Payment
	for i := 0; i < 10; i++ {
		recent = append(recent, pay(payment.StatusCompleted, 50, at(i)))
	}
	appts := &mockAppointments{counts: &appointment.StatusCounts{}}
	svc := NewService(appts, &mockPayments{recent: recent}, countOf(0, false), countOf(0, false),
		&mockClock{createdAt: at(100)}, zerolog.Nop())

	sum, err := svc.Summarize(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	// 6 events plus the sentinel.
	if len(sum.RecentActivity) != 7 {
		t.Fatalf("expected capped feed of 7, got %d", len(sum.RecentActivity))
	}
	if sum.RecentActivity[6].Title != "Cuenta creada" {
		t.Error("expected sentinel appended after the cap")
	}
}
