package prescription

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/guhospital/hospital-api/internal/model"
	"github.com/guhospital/hospital-api/internal/repository"
	apperror "github.com/guhospital/hospital-api/pkg/errors"
)

type Service struct {
	repo         repository.PrescriptionRepository
	pharmacyRepo repository.PharmacyRepository
	outboxRepo   repository.OutboxRepository
	logger       zerolog.Logger
}

func NewService(repo repository.PrescriptionRepository, pharmacyRepo repository.PharmacyRepository, outboxRepo repository.OutboxRepository, logger zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		pharmacyRepo: pharmacyRepo,
		outboxRepo:   outboxRepo,
		logger:       logger,
	}
}

// Create writes a prescription after checking the medication exists in the
// pharmacy and has stock.
func (s *Service) Create(ctx context.Context, doctorID uuid.UUID, req *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	medication, err := s.pharmacyRepo.GetByName(ctx, req.MedicationName)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.BadRequest(fmt.Sprintf("medication %q is not stocked", req.MedicationName), err)
		}
		return nil, apperror.Internal(err)
	}
	if medication.StockLevel <= 0 {
		return nil, apperror.Conflict(fmt.Sprintf("medication %q is out of stock", req.MedicationName), nil)
	}

	start, err := time.Parse(model.DateLayout, req.StartDate)
	if err != nil {
		return nil, apperror.BadRequest("invalid start date", err)
	}

	var end *time.Time
	if req.EndDate != "" {
		parsed, err := time.Parse(model.DateLayout, req.EndDate)
		if err != nil {
			return nil, apperror.BadRequest("invalid end date", err)
		}
		if parsed.Before(start) {
			return nil, apperror.BadRequest("end date precedes start date", nil)
		}
		end = &parsed
	}

	prescription := &model.Prescription{
		PatientID:      req.PatientID,
		DoctorID:       doctorID,
		MedicationName: req.MedicationName,
		Dosage:         req.Dosage,
		Frequency:      req.Frequency,
		DatePrescribed: time.Now(),
		StartDate:      start,
		EndDate:        end,
		Status:         model.PrescriptionStatusPending,
		RefillTimes:    req.RefillTimes,
	}

	if err := s.repo.Create(ctx, prescription); err != nil {
		return nil, apperror.Internal(err)
	}

	s.publishEvent(ctx, "prescription.created", map[string]interface{}{
		"prescription_id": prescription.ID,
		"patient_id":      prescription.PatientID,
		"doctor_id":       prescription.DoctorID,
		"medication":      prescription.MedicationName,
	})

	return prescription, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	prescription, err := s.repo.Get(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.NotFound("prescription", err)
		}
		return nil, apperror.Internal(err)
	}
	return prescription, nil
}

func (s *Service) List(ctx context.Context, filters *model.PrescriptionFilters) ([]*model.Prescription, error) {
	prescriptions, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return prescriptions, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePrescriptionRequest) error {
	if err := s.repo.Update(ctx, id, req); err != nil {
		if err == repository.ErrNotFound {
			return apperror.NotFound("prescription", err)
		}
		return apperror.Internal(err)
	}
	return nil
}

// Confirm marks a prescription dispensed by the pharmacy.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Confirm(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return apperror.NotFound("prescription", err)
		}
		return apperror.Internal(err)
	}
	return nil
}

func (s *Service) ListRefillGroups(ctx context.Context) ([]*model.RefillGroup, error) {
	groups, err := s.repo.ListRefillGroups(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return groups, nil
}

// RefillBatch prices the selected prescriptions from pharmacy stock, creates
// one billing row for the batch and decrements each refill counter.
func (s *Service) RefillBatch(ctx context.Context, req *model.RefillBatchRequest) (*model.RefillBatchResult, error) {
	result, err := s.repo.CreateRefillBilling(ctx, req.Items)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.NotFound("prescription", err)
		}
		return nil, apperror.BadRequest(err.Error(), err)
	}

	s.publishEvent(ctx, "prescription.refilled", map[string]interface{}{
		"billing_id": result.BillingID,
		"total":      result.Total,
		"items":      len(req.Items),
	})

	return result, nil
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
