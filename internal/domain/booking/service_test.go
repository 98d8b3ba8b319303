package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medicareperu/clinic-api/internal/domain/appointment"
	"github.com/medicareperu/clinic-api/internal/domain/payment"
	"github.com/medicareperu/clinic-api/internal/domain/practitioner"
)

type mockPatients struct {
	ensured  int
	fullName string
	email    string
	fail     bool
}

func (m *mockPatients) EnsureExists(ctx context.Context, accountID uuid.UUID, fullName, email string, phone *string) error {
	if m.fail {
		return fmt.Errorf("db down")
	}
	m.ensured++
	m.fullName = fullName
	m.email = email
	return nil
}

type mockPractitioners struct {
	byID map[uuid.UUID]*practitioner.Practitioner
}

func (m *mockPractitioners) Get(ctx context.Context, id uuid.UUID) (*practitioner.Practitioner, error) {
	p, ok := m.byID[id]
	if !ok || !p.Active {
		return nil, practitioner.ErrNotFound
	}
	return p, nil
}

func (m *mockPractitioners) Fee(ctx context.Context, id uuid.UUID) (float64, error) {
	p, err := m.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return p.ConsultationFee, nil
}

type mockPayments struct {
	byID       map[uuid.UUID]*payment.Payment
	failCreate bool
	failAttach bool
}

func (m *mockPayments) Create(ctx context.Context, p *payment.Payment) error {
	if m.failCreate {
		return fmt.Errorf("insert failed")
	}
	p.ID = uuid.New()
	m.byID[p.ID] = p
	return nil
}

func (m *mockPayments) Get(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, payment.ErrNotFound
	}
	return p, nil
}

func (m *mockPayments) Attach(ctx context.Context, paymentID, patientID, appointmentID uuid.UUID) error {
	if m.failAttach {
		return fmt.Errorf("update failed")
	}
	p, ok := m.byID[paymentID]
	if !ok || p.PatientID != patientID {
		return payment.ErrNotFound
	}
	if p.AppointmentID != nil {
		return payment.ErrAlreadyLinked
	}
	p.AppointmentID = &appointmentID
	return nil
}

type mockAppointments struct {
	created []*appointment.Appointment
	fail    bool
}

func (m *mockAppointments) Create(ctx context.Context, a *appointment.Appointment) error {
	if m.fail {
		return fmt.Errorf("insert failed")
	}
	a.ID = uuid.New()
	m.created = append(m.created, a)
	return nil
}

func newTestService() (*Service, *mockPatients, *mockPractitioners, *mockPayments, *mockAppointments, uuid.UUID) {
	docID := uuid.New()
	patients := &mockPatients{}
	practitioners := &mockPractitioners{byID: map[uuid.UUID]*practitioner.Practitioner{
		docID: {ID: docID, FullName: "Dra. Rojas", Specialty: "Cardiología", ConsultationFee: 100, Active: true},
	}}
	payments := &mockPayments{byID: make(map[uuid.UUID]*payment.Payment)}
	appointments := &mockAppointments{}
	svc := NewService(patients, practitioners, payments, appointments)
	return svc, patients, practitioners, payments, appointments, docID
}

func validRequest(docID uuid.UUID) *PaymentRequest {
	return &PaymentRequest{
		PractitionerID:  docID,
		Date:            time.Now().AddDate(0, 0, 7).Format(DateLayout),
		Time:            "10:00",
		Phone:           "987654321",
		Reason:          "Dolor de cabeza",
		Method:          payment.MethodYape,
		OperationNumber: "OP123456",
	}
}

func TestValidateForm(t *testing.T) {
	errs := ValidateForm(uuid.Nil, "", "", "", "")
	for _, field := range []string{"practitioner_id", "date", "time", "phone", "reason"} {
		if errs[field] == "" {
			t.Errorf("expected a message for %s", field)
		}
	}

	yesterday := time.Now().AddDate(0, 0, -1).Format(DateLayout)
	errs = ValidateForm(uuid.New(), yesterday, "10:00", "987654321", "control")
	if errs["date"] == "" {
		t.Error("expected past date to be rejected")
	}

	tomorrow := time.Now().AddDate(0, 0, 1).Format(DateLayout)
	errs = ValidateForm(uuid.New(), tomorrow, "13:00", "987654321", "control")
	if errs["time"] == "" {
		t.Error("expected off-slot time to be rejected")
	}

	errs = ValidateForm(uuid.New(), tomorrow, "10:00", "987654321", "control")
	if len(errs) != 0 {
		t.Errorf("expected complete form to pass, got %v", errs)
	}
}

func TestValidateForm_AcceptsTodayInLocalTime(t *testing.T) {
	// The server's local calendar day is always bookable, regardless of the
	// timezone offset to UTC.
	today := time.Now().Format(DateLayout)
	errs := ValidateForm(uuid.New(), today, "10:00", "987654321", "control")
	if errs["date"] != "" {
		t.Errorf("expected today's date to be accepted, got %q", errs["date"])
	}
}

func TestRegisterPayment(t *testing.T) {
	svc, patients, _, payments, appointments, docID := newTestService()
	patientID := uuid.New()

	res, err := svc.RegisterPayment(context.Background(), patientID, "Jane", "jane@example.com", validRequest(docID))
	if err != nil {
		t.Fatalf("RegisterPayment: %v", err)
	}
	if patients.ensured != 1 {
		t.Error("expected patient upsert")
	}
	if res.Amount != 100 {
		t.Errorf("expected canonical fee 100, got %v", res.Amount)
	}
	if res.MethodLabel != "Yape" {
		t.Errorf("unexpected method label %q", res.MethodLabel)
	}

	pay := payments.byID[res.PaymentID]
	if pay == nil {
		t.Fatal("payment not stored")
	}
	if pay.Status != payment.StatusPending {
		t.Errorf("expected Pendiente payment, got %q", pay.Status)
	}
	if pay.Amount != 100 {
		t.Errorf("expected payment amount from practitioner record, got %v", pay.Amount)
	}
	if pay.AppointmentID == nil || *pay.AppointmentID != res.AppointmentID {
		t.Error("expected payment linked to the created appointment")
	}

	if len(appointments.created) != 1 {
		t.Fatalf("expected one appointment, got %d", len(appointments.created))
	}
	appt := appointments.created[0]
	if appt.Status != appointment.StatusPendingPayment {
		t.Errorf("expected Pendiente Pago appointment, got %q", appt.Status)
	}
	if appt.Notes == nil || *appt.Notes != "Teléfono: 987654321" {
		t.Errorf("expected phone carried in notes, got %v", appt.Notes)
	}
}

func TestRegisterPaymentUnknownPractitioner(t *testing.T) {
	svc, patients, _, payments, _, _ := newTestService()

	req := validRequest(uuid.New())
	_, err := svc.RegisterPayment(context.Background(), uuid.New(), "", "jane@example.com", req)
	if !errors.Is(err, practitioner.ErrNotFound) {
		t.Errorf("expected practitioner not-found, got %v", err)
	}
	if patients.ensured != 0 || len(payments.byID) != 0 {
		t.Error("expected no writes before fee resolution")
	}
}

func TestRegisterPaymentMissingReference(t *testing.T) {
	svc, _, _, _, _, docID := newTestService()

	req := validRequest(docID)
	req.OperationNumber = ""
	if _, err := svc.RegisterPayment(context.Background(), uuid.New(), "", "j@e.com", req); err == nil {
		t.Error("expected error for missing Yape operation number")
	}

	req = validRequest(docID)
	req.Method = payment.MethodCard
	if _, err := svc.RegisterPayment(context.Background(), uuid.New(), "", "j@e.com", req); err == nil {
		t.Error("expected error for missing card transaction id")
	}
}

func TestRegisterPaymentPartialFailureSurfacesArtifacts(t *testing.T) {
	svc, _, _, payments, appointments, docID := newTestService()
	appointments.fail = true

	_, err := svc.RegisterPayment(context.Background(), uuid.New(), "", "j@e.com", validRequest(docID))
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepError, got %v", err)
	}
	if stepErr.PaymentID == nil {
		t.Error("expected the created payment id in the error")
	}
	if stepErr.AppointmentID != nil {
		t.Error("expected no appointment id when creation failed")
	}
	if payments.byID[*stepErr.PaymentID] == nil {
		t.Error("expected the payment to survive the failure")
	}
}

func TestRegisterPaymentLinkFailure(t *testing.T) {
	svc, _, _, _, _, docID := newTestService()
	svc.payments.(*mockPayments).failAttach = true

	_, err := svc.RegisterPayment(context.Background(), uuid.New(), "", "j@e.com", validRequest(docID))
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepError, got %v", err)
	}
	if stepErr.PaymentID == nil || stepErr.AppointmentID == nil {
		t.Error("expected both artifact ids when only the link failed")
	}
}

func TestConfirmRequiresPayment(t *testing.T) {
	svc, _, _, _, appointments, _ := newTestService()

	_, err := svc.Confirm(context.Background(), uuid.New(), &ConfirmRequest{})
	if err == nil {
		t.Fatal("expected rejection without a payment id")
	}
	if len(appointments.created) != 0 {
		t.Error("expected no writes for a paymentless confirm")
	}
}

func TestConfirmAlreadyLinkedIsNoOp(t *testing.T) {
	svc, _, _, payments, appointments, docID := newTestService()
	patientID := uuid.New()

	res, err := svc.RegisterPayment(context.Background(), patientID, "", "j@e.com", validRequest(docID))
	if err != nil {
		t.Fatalf("RegisterPayment: %v", err)
	}

	conf, err := svc.Confirm(context.Background(), patientID, &ConfirmRequest{PaymentID: &res.PaymentID})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if !conf.AlreadyLinked {
		t.Error("expected already-linked no-op")
	}
	if conf.AppointmentID != res.AppointmentID {
		t.Error("expected the existing appointment id")
	}
	if len(appointments.created) != 1 {
		t.Errorf("expected no duplicate appointment, got %d", len(appointments.created))
	}
	_ = payments
}

func TestConfirmCreatesAndLinks(t *testing.T) {
	svc, _, _, payments, appointments, docID := newTestService()
	patientID := uuid.New()

	pay := &payment.Payment{PatientID: patientID, Amount: 100, Method: payment.MethodYape, Status: payment.StatusPending}
	if err := payments.Create(context.Background(), pay); err != nil {
		t.Fatalf("create payment: %v", err)
	}

	req := &ConfirmRequest{
		PaymentID:      &pay.ID,
		PractitionerID: docID,
		Date:           time.Now().AddDate(0, 0, 3).Format(DateLayout),
		Time:           "09:00",
		Phone:          "912345678",
		Reason:         "Chequeo",
	}
	res, err := svc.Confirm(context.Background(), patientID, req)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if res.AlreadyLinked {
		t.Error("expected a fresh link")
	}
	if len(appointments.created) != 1 {
		t.Fatalf("expected one appointment, got %d", len(appointments.created))
	}
	if pay.AppointmentID == nil || *pay.AppointmentID != res.AppointmentID {
		t.Error("expected payment linked after confirm")
	}
}

func TestConfirmOtherPatientsPayment(t *testing.T) {
	svc, _, _, payments, _, _ := newTestService()

	pay := &payment.Payment{PatientID: uuid.New(), Amount: 100, Method: payment.MethodYape, Status: payment.StatusPending}
	if err := payments.Create(context.Background(), pay); err != nil {
		t.Fatalf("create payment: %v", err)
	}

	_, err := svc.Confirm(context.Background(), uuid.New(), &ConfirmRequest{PaymentID: &pay.ID})
	if !errors.Is(err, payment.ErrNotFound) {
		t.Errorf("expected not-found for another patient's payment, got %v", err)
	}
}
