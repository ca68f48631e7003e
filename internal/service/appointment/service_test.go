package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guhospital/hospital-api/internal/model"
	"github.com/guhospital/hospital-api/internal/repository"
	apperror "github.com/guhospital/hospital-api/pkg/errors"
	"github.com/guhospital/hospital-api/pkg/metrics"
)

// Prometheus collectors register globally, so the package shares one set.
var testMetrics = metrics.NewMetrics("test", "appointment")

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
	billings     map[uuid.UUID]*model.Billing
	booked       []string
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		appointments: make(map[uuid.UUID]*model.Appointment),
		billings:     make(map[uuid.UUID]*model.Billing),
	}
}

func (f *fakeAppointmentRepo) CreateWithBilling(_ context.Context, appointment *model.Appointment, billing *model.Billing) error {
	billing.ID = uuid.New()
	appointment.ID = uuid.New()
	appointment.BillingID = &billing.ID
	appointment.Status = model.AppointmentStatusScheduled
	f.appointments[appointment.ID] = appointment
	f.billings[billing.ID] = billing
	f.booked = append(f.booked, appointment.Time)
	return nil
}

func (f *fakeAppointmentRepo) CancelWithBilling(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	appointment, ok := f.appointments[id]
	if !ok || appointment.BillingID == nil || appointment.Status == model.AppointmentStatusCancelled {
		return nil, repository.ErrNotFound
	}
	delete(f.billings, *appointment.BillingID)
	appointment.Status = model.AppointmentStatusCancelled
	return appointment, nil
}

func (f *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	appointment, ok := f.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return appointment, nil
}

func (f *fakeAppointmentRepo) Reschedule(_ context.Context, id uuid.UUID, date time.Time, slot string) error {
	appointment, ok := f.appointments[id]
	if !ok || appointment.Status != model.AppointmentStatusScheduled {
		return repository.ErrNotFound
	}
	appointment.Date = date
	appointment.Time = slot
	return nil
}

func (f *fakeAppointmentRepo) List(context.Context, *model.AppointmentFilters) ([]*model.AppointmentDetail, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) ListForDoctor(context.Context, uuid.UUID, *model.AppointmentFilters) ([]*model.AppointmentDetail, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) ListUpcomingForPatient(context.Context, uuid.UUID) ([]*model.AppointmentDetail, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) ListPastForPatient(context.Context, uuid.UUID) ([]*model.AppointmentDetail, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) BookedSlots(context.Context, uuid.UUID, time.Time) ([]string, error) {
	return f.booked, nil
}

type fakeDoctorRepo struct {
	doctors map[uuid.UUID]*model.DoctorRecord
}

func (f *fakeDoctorRepo) Get(_ context.Context, userID uuid.UUID) (*model.DoctorRecord, error) {
	doctor, ok := f.doctors[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return doctor, nil
}

func (f *fakeDoctorRepo) GetProfile(context.Context, uuid.UUID) (*model.DoctorProfile, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeDoctorRepo) ListSpecialties(context.Context) ([]string, error) { return nil, nil }

func (f *fakeDoctorRepo) ListAvailability(context.Context, string) ([]model.Availability, error) {
	return nil, nil
}

func (f *fakeDoctorRepo) ListBySpecialtySlot(context.Context, string, string, string) ([]*model.DoctorRecord, error) {
	return nil, nil
}

func (f *fakeDoctorRepo) ListByDepartment(context.Context, uuid.UUID) ([]*model.DoctorRecord, error) {
	return nil, nil
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.PatientRecord
}

func (f *fakePatientRepo) Get(_ context.Context, userID uuid.UUID) (*model.PatientRecord, error) {
	patient, ok := f.patients[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return patient, nil
}

func (f *fakePatientRepo) CreateWithInsurance(context.Context, *model.User, *model.Patient, *model.Insurance) error {
	return nil
}

func (f *fakePatientRepo) GetByNationalID(context.Context, string) (*model.PatientRecord, error) {
	return nil, repository.ErrNotFound
}

func (f *fakePatientRepo) List(context.Context) ([]*model.PatientRecord, error) { return nil, nil }

func (f *fakePatientRepo) UpdateStatus(context.Context, uuid.UUID, model.PatientStatus) error {
	return nil
}

func (f *fakePatientRepo) UpdateDiagnosis(context.Context, uuid.UUID, string) error { return nil }

func (f *fakePatientRepo) ReplaceAllergies(context.Context, uuid.UUID, []model.Allergy) error {
	return nil
}

func (f *fakePatientRepo) ListAllergies(context.Context, uuid.UUID) ([]*model.Allergy, error) {
	return nil, nil
}

func (f *fakePatientRepo) GetInsurance(context.Context, uuid.UUID) (*model.Insurance, error) {
	return nil, repository.ErrNotFound
}

func (f *fakePatientRepo) UpdateInsurance(context.Context, *model.Insurance) error { return nil }

type fakeBillingRepo struct{}

func (f *fakeBillingRepo) Get(context.Context, uuid.UUID) (*model.BillingDetail, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeBillingRepo) List(context.Context, *model.BillingFilters) ([]*model.BillingDetail, error) {
	return nil, nil
}

func (f *fakeBillingRepo) ListPending(context.Context) ([]*model.Billing, error) { return nil, nil }

func (f *fakeBillingRepo) ListByPatient(context.Context, uuid.UUID, model.PaymentStatus) ([]*model.Billing, error) {
	return nil, nil
}

func (f *fakeBillingRepo) MarkPaid(context.Context, uuid.UUID, model.PaymentMethod) error {
	return nil
}

func (f *fakeBillingRepo) GetInsurance(context.Context, uuid.UUID) (*model.Insurance, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeBillingRepo) ListLines(context.Context, uuid.UUID) ([]model.BillingLine, error) {
	return nil, nil
}

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
}

func (f *fakeOutboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepo) GetPendingEvents(context.Context, int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) UpdateStatus(context.Context, uuid.UUID, model.OutboxStatus, *string) error {
	return nil
}

func (f *fakeOutboxRepo) DeleteProcessedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type fakeRenderer struct {
	removed []uuid.UUID
}

func (f *fakeRenderer) Render(*model.BillingSummary) (string, error) { return "invoice.pdf", nil }

func (f *fakeRenderer) Remove(billingID uuid.UUID) error {
	f.removed = append(f.removed, billingID)
	return nil
}

func (f *fakeRenderer) Path(uuid.UUID) string { return "invoice.pdf" }

type testEnv struct {
	svc       *Service
	repo      *fakeAppointmentRepo
	outbox    *fakeOutboxRepo
	renderer  *fakeRenderer
	doctorID  uuid.UUID
	patientID uuid.UUID
	roomID    uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	doctorID := uuid.New()
	patientID := uuid.New()
	roomID := uuid.New()

	doctorRepo := &fakeDoctorRepo{doctors: map[uuid.UUID]*model.DoctorRecord{
		doctorID: {
			Doctor: model.Doctor{
				UserID:    doctorID,
				Specialty: "cardiology",
				Fee:       500,
				RoomID:    &roomID,
				Availability: model.Availability{
					{Day: "Monday", AvailableHours: []string{"09:00", "10:00", "11:00"}},
				},
			},
		},
	}}
	patientRepo := &fakePatientRepo{patients: map[uuid.UUID]*model.PatientRecord{
		patientID: {},
	}}
	repo := newFakeAppointmentRepo()
	outbox := &fakeOutboxRepo{}
	renderer := &fakeRenderer{}

	svc := NewService(repo, doctorRepo, patientRepo, &fakeBillingRepo{}, outbox, renderer, testMetrics, zerolog.Nop())
	svc.now = func() time.Time {
		return time.Date(2025, 6, 1, 8, 0, 0, 0, time.Local)
	}

	return &testEnv{
		svc:       svc,
		repo:      repo,
		outbox:    outbox,
		renderer:  renderer,
		doctorID:  doctorID,
		patientID: patientID,
		roomID:    roomID,
	}
}

func (e *testEnv) book(t *testing.T, date, slot string) *model.BookingResult {
	t.Helper()
	result, err := e.svc.Book(context.Background(), &model.BookAppointmentRequest{
		PatientID: e.patientID,
		DoctorID:  e.doctorID,
		Date:      date,
		Time:      slot,
	})
	require.NoError(t, err)
	return result
}

func TestBookLinksBillingAndAppointment(t *testing.T) {
	env := newTestEnv(t)

	result := env.book(t, "2025-06-02", "09:00")
	assert.NotEqual(t, uuid.Nil, result.AppointmentID)
	assert.NotEqual(t, uuid.Nil, result.BillingID)

	appointment := env.repo.appointments[result.AppointmentID]
	require.NotNil(t, appointment)
	require.NotNil(t, appointment.BillingID)
	assert.Equal(t, result.BillingID, *appointment.BillingID)

	billing := env.repo.billings[result.BillingID]
	require.NotNil(t, billing)
	assert.Equal(t, 500.0, billing.Amount)
	assert.Equal(t, model.PaymentStatusUnpaid, billing.PaymentStatus)

	// Falls back to the doctor's room when none is requested.
	require.NotNil(t, appointment.RoomID)
	assert.Equal(t, env.roomID, *appointment.RoomID)

	require.NotEmpty(t, env.outbox.events)
	assert.Equal(t, "appointment.booked", env.outbox.events[0].EventType)
}

func TestBookRejectsPastSlot(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Book(context.Background(), &model.BookAppointmentRequest{
		PatientID: env.patientID,
		DoctorID:  env.doctorID,
		Date:      "2025-05-31",
		Time:      "09:00",
	})
	require.Error(t, err)

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.StatusCode())
	assert.Empty(t, env.repo.appointments)
}

func TestBookRejectsTakenSlot(t *testing.T) {
	env := newTestEnv(t)

	env.book(t, "2025-06-02", "09:00")

	_, err := env.svc.Book(context.Background(), &model.BookAppointmentRequest{
		PatientID: env.patientID,
		DoctorID:  env.doctorID,
		Date:      "2025-06-02",
		Time:      "09:00",
	})
	require.Error(t, err)

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.StatusCode())
}

func TestBookUnknownDoctor(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Book(context.Background(), &model.BookAppointmentRequest{
		PatientID: env.patientID,
		DoctorID:  uuid.New(),
		Date:      "2025-06-02",
		Time:      "09:00",
	})
	require.Error(t, err)

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.StatusCode())
}

func TestCancelRemovesBillingAndInvoice(t *testing.T) {
	env := newTestEnv(t)

	result := env.book(t, "2025-06-02", "09:00")

	err := env.svc.Cancel(context.Background(), result.AppointmentID)
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusCancelled, env.repo.appointments[result.AppointmentID].Status)
	assert.NotContains(t, env.repo.billings, result.BillingID)
	assert.Contains(t, env.renderer.removed, result.BillingID)

	// A second cancel has no billing row left to remove.
	err = env.svc.Cancel(context.Background(), result.AppointmentID)
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.StatusCode())
}

func TestRescheduleRejectsPastAndTakenSlots(t *testing.T) {
	env := newTestEnv(t)

	result := env.book(t, "2025-06-02", "09:00")
	env.book(t, "2025-06-02", "10:00")

	err := env.svc.Reschedule(context.Background(), result.AppointmentID, &model.RescheduleRequest{
		Date: "2025-05-31", Time: "09:00",
	})
	require.Error(t, err)
	appErr, _ := apperror.As(err)
	assert.Equal(t, 400, appErr.StatusCode())

	err = env.svc.Reschedule(context.Background(), result.AppointmentID, &model.RescheduleRequest{
		Date: "2025-06-02", Time: "10:00",
	})
	require.Error(t, err)
	appErr, _ = apperror.As(err)
	assert.Equal(t, 409, appErr.StatusCode())

	err = env.svc.Reschedule(context.Background(), result.AppointmentID, &model.RescheduleRequest{
		Date: "2025-06-09", Time: "11:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "11:00", env.repo.appointments[result.AppointmentID].Time)
}

func TestAvailableSlotsExcludesBooked(t *testing.T) {
	env := newTestEnv(t)

	// 2025-06-02 is a Monday.
	env.book(t, "2025-06-02", "09:00")

	slots, err := env.svc.AvailableSlots(context.Background(), env.doctorID, "2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "11:00"}, slots)

	// No advertised hours on a day off.
	slots, err = env.svc.AvailableSlots(context.Background(), env.doctorID, "2025-06-03")
	require.NoError(t, err)
	assert.Empty(t, slots)
}
