package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/guhospital/hospital-api/internal/invoice"
	"github.com/guhospital/hospital-api/internal/model"
	"github.com/guhospital/hospital-api/internal/repository"
	apperror "github.com/guhospital/hospital-api/pkg/errors"
	"github.com/guhospital/hospital-api/pkg/metrics"
)

const invoiceTimeout = 30 * time.Second

type Service struct {
	repo        repository.AppointmentRepository
	doctorRepo  repository.DoctorRepository
	patientRepo repository.PatientRepository
	billingRepo repository.BillingRepository
	outboxRepo  repository.OutboxRepository
	renderer    invoice.Renderer
	metrics     *metrics.Metrics
	logger      zerolog.Logger

	now func() time.Time
}

func NewService(repo repository.AppointmentRepository, doctorRepo repository.DoctorRepository, patientRepo repository.PatientRepository, billingRepo repository.BillingRepository, outboxRepo repository.OutboxRepository, renderer invoice.Renderer, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		doctorRepo:  doctorRepo,
		patientRepo: patientRepo,
		billingRepo: billingRepo,
		outboxRepo:  outboxRepo,
		renderer:    renderer,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

// Book creates an appointment and its billing row together. The billing
// starts unpaid with the doctor's consultation fee, discounted later at
// payment time if insurance applies. Past slots are rejected before anything
// is written.
func (s *Service) Book(ctx context.Context, req *model.BookAppointmentRequest) (*model.BookingResult, error) {
	date, slot, err := parseSlot(req.Date, req.Time)
	if err != nil {
		return nil, apperror.BadRequest(err.Error(), err)
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), slot.Hour(), slot.Minute(), 0, 0, time.Local)
	if start.Before(s.now()) {
		return nil, apperror.BadRequest("cannot book an appointment in the past", nil)
	}

	doctor, err := s.doctorRepo.Get(ctx, req.DoctorID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.NotFound("doctor", err)
		}
		return nil, apperror.Internal(err)
	}

	patient, err := s.patientRepo.Get(ctx, req.PatientID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.NotFound("patient", err)
		}
		return nil, apperror.Internal(err)
	}

	booked, err := s.repo.BookedSlots(ctx, req.DoctorID, date)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	for _, b := range booked {
		if b == req.Time {
			return nil, apperror.Conflict("slot is already booked", nil)
		}
	}

	roomID := req.RoomID
	if roomID == nil {
		roomID = doctor.RoomID
	}

	appointment := &model.Appointment{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		RoomID:    roomID,
		Date:      date,
		Time:      req.Time,
		Notes:     req.Notes,
	}

	billing := &model.Billing{
		PatientID:     req.PatientID,
		Amount:        doctor.Fee,
		PaymentStatus: model.PaymentStatusUnpaid,
		PaymentMethod: model.PaymentMethodCash,
		InvoiceDate:   s.now(),
		InsuranceID:   patient.InsuranceID,
	}

	if err := s.repo.CreateWithBilling(ctx, appointment, billing); err != nil {
		return nil, apperror.Internal(err)
	}

	s.metrics.AppointmentsBooked.Inc()
	s.publishEvent(ctx, "appointment.booked", map[string]interface{}{
		"appointment_id": appointment.ID,
		"billing_id":     billing.ID,
		"patient_id":     appointment.PatientID,
		"doctor_id":      appointment.DoctorID,
		"date":           req.Date,
		"time":           req.Time,
	})

	// Invoice rendering happens off the request path.
	go s.generateInvoice(billing.ID)

	return &model.BookingResult{
		AppointmentID: appointment.ID,
		BillingID:     billing.ID,
	}, nil
}

// Cancel flips the appointment to cancelled, removes its billing row and
// deletes the invoice file. Cancelling twice fails because the billing row is
// already gone.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	appointment, err := s.repo.CancelWithBilling(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return apperror.NotFound("appointment billing", err)
		}
		return apperror.Internal(err)
	}

	if appointment.BillingID != nil {
		if err := s.renderer.Remove(*appointment.BillingID); err != nil {
			s.logger.Warn().Err(err).Str("billing_id", appointment.BillingID.String()).Msg("failed to delete invoice file")
		}
	}

	s.metrics.AppointmentsCancelled.Inc()
	s.publishEvent(ctx, "appointment.cancelled", map[string]interface{}{
		"appointment_id": appointment.ID,
		"patient_id":     appointment.PatientID,
		"doctor_id":      appointment.DoctorID,
	})

	return nil
}

// Reschedule moves a scheduled appointment to a new future slot.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, req *model.RescheduleRequest) error {
	date, slot, err := parseSlot(req.Date, req.Time)
	if err != nil {
		return apperror.BadRequest(err.Error(), err)
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), slot.Hour(), slot.Minute(), 0, 0, time.Local)
	if start.Before(s.now()) {
		return apperror.BadRequest("cannot reschedule into the past", nil)
	}

	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return apperror.NotFound("appointment", err)
		}
		return apperror.Internal(err)
	}

	booked, err := s.repo.BookedSlots(ctx, appointment.DoctorID, date)
	if err != nil {
		return apperror.Internal(err)
	}
	for _, b := range booked {
		if b == req.Time {
			return apperror.Conflict("slot is already booked", nil)
		}
	}

	if err := s.repo.Reschedule(ctx, id, date, req.Time); err != nil {
		if err == repository.ErrNotFound {
			return apperror.NotFound("appointment", err)
		}
		return apperror.Internal(err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.NotFound("appointment", err)
		}
		return nil, apperror.Internal(err)
	}
	return appointment, nil
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.AppointmentDetail, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return appointments, nil
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID, filters *model.AppointmentFilters) ([]*model.AppointmentDetail, error) {
	appointments, err := s.repo.ListForDoctor(ctx, doctorID, filters)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return appointments, nil
}

func (s *Service) ListUpcomingForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error) {
	appointments, err := s.repo.ListUpcomingForPatient(ctx, patientID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return appointments, nil
}

func (s *Service) ListPastForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error) {
	appointments, err := s.repo.ListPastForPatient(ctx, patientID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return appointments, nil
}

// AvailableSlots returns the doctor's advertised hours for the date with
// already-booked slots removed.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, dateStr string) ([]string, error) {
	date, err := time.Parse(model.DateLayout, dateStr)
	if err != nil {
		return nil, apperror.BadRequest("invalid date", err)
	}

	doctor, err := s.doctorRepo.Get(ctx, doctorID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.NotFound("doctor", err)
		}
		return nil, apperror.Internal(err)
	}

	day := date.Weekday().String()
	var hours []string
	for _, d := range doctor.Availability {
		if d.Day == day {
			hours = d.AvailableHours
			break
		}
	}
	if len(hours) == 0 {
		return []string{}, nil
	}

	booked, err := s.repo.BookedSlots(ctx, doctorID, date)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	taken := make(map[string]bool, len(booked))
	for _, b := range booked {
		taken[b] = true
	}

	free := make([]string, 0, len(hours))
	for _, h := range hours {
		if !taken[h] {
			free = append(free, h)
		}
	}
	return free, nil
}

func (s *Service) generateInvoice(billingID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), invoiceTimeout)
	defer cancel()

	detail, err := s.billingRepo.Get(ctx, billingID)
	if err != nil {
		s.metrics.InvoiceFailures.Inc()
		s.logger.Error().Err(err).Str("billing_id", billingID.String()).Msg("failed to load billing for invoice")
		return
	}

	lines, err := s.billingRepo.ListLines(ctx, billingID)
	if err != nil {
		s.metrics.InvoiceFailures.Inc()
		s.logger.Error().Err(err).Str("billing_id", billingID.String()).Msg("failed to load billing lines")
		return
	}

	summary := &model.BillingSummary{
		Billing: detail,
		Lines:   lines,
		Total:   detail.Amount,
	}
	if _, err := s.renderer.Render(summary); err != nil {
		s.metrics.InvoiceFailures.Inc()
		s.logger.Error().Err(err).Str("billing_id", billingID.String()).Msg("failed to render invoice")
		return
	}
	s.metrics.InvoicesGenerated.Inc()
}

func (s *Service) publishEvent(ctx context.Context, eventType string, payload map[string]interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	event := &model.OutboxEvent{EventType: eventType, Payload: data}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to write outbox event")
	}
}

func parseSlot(dateStr, timeStr string) (time.Time, time.Time, error) {
	date, err := time.Parse(model.DateLayout, dateStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q", dateStr)
	}
	slot, err := time.Parse(model.TimeLayout, timeStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid time %q", timeStr)
	}
	return date, slot, nil
}
