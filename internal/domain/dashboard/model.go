package dashboard

import (
	"time"

	"github.com/medicareperu/clinic-api/internal/domain/appointment"
	"github.com/medicareperu/clinic-api/internal/domain/payment"
)

// Activity icons, matched by the web client.
const (
	IconHourglass = "hourglass"
	IconCheck     = "check"
	IconCross     = "cross"
	IconNeutral   = "neutral"
)

// ActivityEvent is one row of the recent-activity feed.
type ActivityEvent struct {
	Icon      string    `json:"icon"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary is the aggregated dashboard payload. Sections that failed to load
// come back empty or zero rather than failing the whole response.
type Summary struct {
	Appointments          []*appointment.WithPractitioner `json:"appointments"`
	ConfirmedAppointments []*appointment.WithPractitioner `json:"confirmed_appointments"`
	RecentPayments        []*payment.Payment              `json:"recent_payments"`
	StatusCounts          *appointment.StatusCounts       `json:"status_counts"`
	ActivePrescriptions   int                             `json:"active_prescriptions"`
	PendingExams          int                             `json:"pending_exams"`
	RecentActivity        []ActivityEvent                 `json:"recent_activity"`
}
