package order

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/guhospital/hospital-api/internal/model"
	"github.com/guhospital/hospital-api/internal/repository"
	apperror "github.com/guhospital/hospital-api/pkg/errors"
)

type Service struct {
	repo        repository.OrderRepository
	patientRepo repository.PatientRepository
	outboxRepo  repository.OutboxRepository
	logger      zerolog.Logger
}

func NewService(repo repository.OrderRepository, patientRepo repository.PatientRepository, outboxRepo repository.OutboxRepository, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		outboxRepo:  outboxRepo,
		logger:      logger,
	}
}

// Place orders a catalog item for a patient and bills its cost in the same
// transaction as the order row.
func (s *Service) Place(ctx context.Context, kind model.OrderKind, doctorID uuid.UUID, req *model.CreateOrderRequest) (*model.OrderResult, error) {
	item, err := s.repo.GetCatalogItem(ctx, req.CatalogItemID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.NotFound("catalog item", err)
		}
		return nil, apperror.Internal(err)
	}
	if item.Kind != kind {
		return nil, apperror.BadRequest("catalog item does not match order type", nil)
	}

	patient, err := s.patientRepo.Get(ctx, req.PatientID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.NotFound("patient", err)
		}
		return nil, apperror.Internal(err)
	}

	order := &model.Order{
		Kind:          kind,
		PatientID:     req.PatientID,
		DoctorID:      doctorID,
		CatalogItemID: item.ID,
	}
	billing := &model.Billing{
		PatientID:     req.PatientID,
		Amount:        item.Cost,
		PaymentStatus: model.PaymentStatusUnpaid,
		PaymentMethod: model.PaymentMethodCash,
		InvoiceDate:   time.Now(),
		InsuranceID:   patient.InsuranceID,
	}

	if err := s.repo.CreateWithBilling(ctx, order, billing); err != nil {
		return nil, apperror.Internal(err)
	}

	s.publishEvent(ctx, "order.placed", map[string]interface{}{
		"order_id":   order.ID,
		"billing_id": billing.ID,
		"kind":       kind,
		"patient_id": order.PatientID,
		"item":       item.Name,
	})

	return &model.OrderResult{OrderID: order.ID, BillingID: billing.ID}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error) {
	detail, err := s.repo.Get(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.NotFound("order", err)
		}
		return nil, apperror.Internal(err)
	}
	return detail, nil
}

func (s *Service) ListPending(ctx context.Context, kind model.OrderKind) ([]*model.OrderDetail, error) {
	orders, err := s.repo.ListByStatus(ctx, kind, model.OrderStatusPending)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return orders, nil
}

func (s *Service) ListCompleted(ctx context.Context, kind model.OrderKind) ([]*model.OrderDetail, error) {
	orders, err := s.repo.ListByStatus(ctx, kind, model.OrderStatusCompleted)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return orders, nil
}

// Complete records results on a pending order. Completing twice is a
// conflict.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, req *model.CompleteOrderRequest) error {
	if err := s.repo.Complete(ctx, id, req.Results); err != nil {
		if err == repository.ErrNotFound {
			return apperror.Conflict("order is not pending", err)
		}
		return apperror.Internal(err)
	}

	s.publishEvent(ctx, "order.completed", map[string]interface{}{
		"order_id": id,
	})
	return nil
}

func (s *Service) SuggestCatalog(ctx context.Context, kind model.OrderKind, prefix string) ([]*model.CatalogSuggestion, error) {
	if prefix == "" {
		return []*model.CatalogSuggestion{}, nil
	}
	suggestions, err := s.repo.SuggestCatalog(ctx, kind, prefix)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return suggestions, nil
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
