package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/medicareperu/clinic-api/internal/domain/appointment"
	"github.com/medicareperu/clinic-api/internal/domain/payment"
)

const (
	recentLimit   = 10
	activityLimit = 6
)

// AppointmentReader is the appointment surface the aggregator reads.
type AppointmentReader interface {
	ListUpcoming(ctx context.Context, patientID uuid.UUID, limit int) ([]*appointment.WithPractitioner, error)
	ListByStatus(ctx context.Context, patientID uuid.UUID, status string, limit int) ([]*appointment.WithPractitioner, error)
	CountsByStatus(ctx context.Context, patientID uuid.UUID) (*appointment.StatusCounts, error)
}

// PaymentReader is the payment surface the aggregator reads.
type PaymentReader interface {
	ListRecentByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*payment.Payment, error)
}

// Counter is a patient-scoped count query.
type Counter interface {
	CountForPatient(ctx context.Context, patientID uuid.UUID) (int, error)
}

// CounterFunc adapts a function to the Counter interface.
type CounterFunc func(ctx context.Context, patientID uuid.UUID) (int, error)

func (f CounterFunc) CountForPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	return f(ctx, patientID)
}

// AccountClock reports when the account was created, for the feed sentinel.
type AccountClock interface {
	CreatedAt(ctx context.Context, id uuid.UUID) (time.Time, error)
}

type Service struct {
	appointments  AppointmentReader
	payments      PaymentReader
	prescriptions Counter
	exams         Counter
	accounts      AccountClock
	log           zerolog.Logger
}

func NewService(appointments AppointmentReader, payments PaymentReader,
	prescriptions, exams Counter, accounts AccountClock, log zerolog.Logger) *Service {
	return &Service{
		appointments:  appointments,
		payments:      payments,
		prescriptions: prescriptions,
		exams:         exams,
		accounts:      accounts,
		log:           log,
	}
}

// Summarize fans out the six dashboard reads concurrently, bound to the
// request context. A failing read logs and degrades its section to an
// empty/zero value; it never fails the others or the response.
func (s *Service) Summarize(ctx context.Context, patientID uuid.UUID) (*Summary, error) {
	sum := &Summary{
		Appointments:          []*appointment.WithPractitioner{},
		ConfirmedAppointments: []*appointment.WithPractitioner{},
		RecentPayments:        []*payment.Payment{},
		StatusCounts:          &appointment.StatusCounts{},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, err := s.appointments.ListUpcoming(gctx, patientID, recentLimit)
		if err != nil {
			s.log.Warn().Err(err).Str("section", "appointments").Msg("dashboard query degraded")
			return nil
		}
		if items != nil {
			sum.Appointments = items
		}
		return nil
	})
	g.Go(func() error {
		items, err := s.appointments.ListByStatus(gctx, patientID, appointment.StatusConfirmed, recentLimit)
		if err != nil {
			s.log.Warn().Err(err).Str("section", "confirmed_appointments").Msg("dashboard query degraded")
			return nil
		}
		if items != nil {
			sum.ConfirmedAppointments = items
		}
		return nil
	})
	g.Go(func() error {
		items, err := s.payments.ListRecentByPatient(gctx, patientID, recentLimit)
		if err != nil {
			s.log.Warn().Err(err).Str("section", "recent_payments").Msg("dashboard query degraded")
			return nil
		}
		if items != nil {
			sum.RecentPayments = items
		}
		return nil
	})
	g.Go(func() error {
		counts, err := s.appointments.CountsByStatus(gctx, patientID)
		if err != nil {
			s.log.Warn().Err(err).Str("section", "status_counts").Msg("dashboard query degraded")
			return nil
		}
		sum.StatusCounts = counts
		return nil
	})
	g.Go(func() error {
		n, err := s.prescriptions.CountForPatient(gctx, patientID)
		if err != nil {
			s.log.Warn().Err(err).Str("section", "active_prescriptions").Msg("dashboard query degraded")
			return nil
		}
		sum.ActivePrescriptions = n
		return nil
	})
	g.Go(func() error {
		n, err := s.exams.CountForPatient(gctx, patientID)
		if err != nil {
			s.log.Warn().Err(err).Str("section", "pending_exams").Msg("dashboard query degraded")
			return nil
		}
		sum.PendingExams = n
		return nil
	})

	// Goroutines swallow their own errors; Wait only observes context
	// cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum.RecentActivity = s.buildActivity(ctx, patientID, sum)
	return sum, nil
}

// IconForStatus classifies a status string into a feed icon by substring.
func IconForStatus(status string) string {
	st := strings.ToLower(status)
	switch {
	case strings.Contains(st, "pendiente"):
		return IconHourglass
	case strings.Contains(st, "complet"):
		return IconCheck
	case strings.Contains(st, "fall"), strings.Contains(st, "cancel"):
		return IconCross
	default:
		return IconNeutral
	}
}

func paymentTimestamp(p *payment.Payment) time.Time {
	if p.PaidAt != nil {
		return *p.PaidAt
	}
	return p.CreatedAt
}

// buildActivity merges payment and appointment events into one feed, newest
// first, capped at six, with the account-creation sentinel as the oldest
// entry.
func (s *Service) buildActivity(ctx context.Context, patientID uuid.UUID, sum *Summary) []ActivityEvent {
	events := make([]ActivityEvent, 0, len(sum.RecentPayments)+len(sum.Appointments))

	for _, p := range sum.RecentPayments {
		events = append(events, ActivityEvent{
			Icon:      IconForStatus(p.Status),
			Title:     fmt.Sprintf("Pago %s de %.2f %s", p.Method, p.Amount, p.Currency),
			Status:    p.Status,
			Timestamp: paymentTimestamp(p),
		})
	}
	for _, a := range sum.Appointments {
		events = append(events, ActivityEvent{
			Icon:      IconForStatus(a.Status),
			Title:     "Cita con " + a.PractitionerName,
			Status:    a.Status,
			Timestamp: a.CreatedAt,
		})
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	if len(events) > activityLimit {
		events = events[:activityLimit]
	}

	if createdAt, err := s.accounts.CreatedAt(ctx, patientID); err == nil {
		events = append(events, ActivityEvent{
			Icon:      IconNeutral,
			Title:     "Cuenta creada",
			Status:    "Registrado",
			Timestamp: createdAt,
		})
	} else {
		s.log.Warn().Err(err).Str("section", "account_created").Msg("dashboard query degraded")
	}
	return events
}
