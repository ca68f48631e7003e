package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/guhospital/hospital-api/internal/invoice"
	"github.com/guhospital/hospital-api/internal/model"
	"github.com/guhospital/hospital-api/internal/repository"
	apperror "github.com/guhospital/hospital-api/pkg/errors"
	"github.com/guhospital/hospital-api/pkg/metrics"
)

type Service struct {
	repo       repository.BillingRepository
	outboxRepo repository.OutboxRepository
	renderer   invoice.Renderer
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

func NewService(repo repository.BillingRepository, outboxRepo repository.OutboxRepository, renderer invoice.Renderer, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		outboxRepo: outboxRepo,
		renderer:   renderer,
		metrics:    m,
		logger:     logger,
	}
}

// ComputeCoverage splits an amount by an insurance percentage. A 20 percent
// policy on 1000 covers 200 and leaves 800 to pay.
func ComputeCoverage(amount, percentage float64) model.Coverage {
	covered := math.Round(amount*percentage) / 100
	return model.Coverage{
		CoveredAmount:   covered,
		RemainingAmount: amount - covered,
	}
}

// Summary loads a billing row with its service lines and, when the policy is
// usable, the insurance split.
func (s *Service) Summary(ctx context.Context, id uuid.UUID) (*model.BillingSummary, error) {
	detail, err := s.repo.Get(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.NotFound("billing", err)
		}
		return nil, apperror.Internal(err)
	}

	lines, err := s.repo.ListLines(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	summary := &model.BillingSummary{
		Billing: detail,
		Lines:   lines,
		Total:   detail.Amount,
	}

	if detail.InsuranceID != nil {
		insurance, err := s.repo.GetInsurance(ctx, *detail.InsuranceID)
		if err == nil && !insurance.Expired(time.Now()) {
			coverage := ComputeCoverage(detail.Amount, insurance.CoverageDetails.Percentage)
			summary.Coverage = &coverage
		}
	}

	return summary, nil
}

func (s *Service) List(ctx context.Context, filters *model.BillingFilters) ([]*model.BillingDetail, error) {
	billings, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return billings, nil
}

func (s *Service) ListPending(ctx context.Context) ([]*model.Billing, error) {
	billings, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return billings, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, status model.PaymentStatus) ([]*model.Billing, error) {
	billings, err := s.repo.ListByPatient(ctx, patientID, status)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return billings, nil
}

// ProcessPayment settles an unpaid billing. Paying by insurance requires a
// valid policy on the billing; the patient then owes only the uncovered
// remainder, which the regenerated invoice shows.
func (s *Service) ProcessPayment(ctx context.Context, id uuid.UUID, req *model.ProcessPaymentRequest) (*model.BillingSummary, error) {
	detail, err := s.repo.Get(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.NotFound("billing", err)
		}
		return nil, apperror.Internal(err)
	}

	if detail.PatientID != req.PatientID {
		return nil, apperror.Forbidden("billing belongs to another patient")
	}
	if detail.PaymentStatus == model.PaymentStatusPaid {
		return nil, apperror.Conflict("billing is already paid", nil)
	}

	if req.PaymentMethod == model.PaymentMethodInsurance {
		if detail.InsuranceID == nil {
			return nil, apperror.BadRequest("no insurance on file for this billing", nil)
		}
		insurance, err := s.repo.GetInsurance(ctx, *detail.InsuranceID)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if insurance.Expired(time.Now()) {
			return nil, apperror.BadRequest("insurance policy has expired", nil)
		}
	}

	if err := s.repo.MarkPaid(ctx, id, req.PaymentMethod); err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.Conflict("billing is already paid", err)
		}
		return nil, apperror.Internal(err)
	}

	summary, err := s.Summary(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.renderer.Render(summary); err != nil {
		s.metrics.InvoiceFailures.Inc()
		s.logger.Error().Err(err).Str("billing_id", id.String()).Msg("failed to regenerate invoice")
	} else {
		s.metrics.InvoicesGenerated.Inc()
	}

	s.publishEvent(ctx, "billing.paid", map[string]interface{}{
		"billing_id":     id,
		"patient_id":     detail.PatientID,
		"payment_method": req.PaymentMethod,
		"amount":         detail.Amount,
	})

	return summary, nil
}

func (s *Service) InvoicePath(ctx context.Context, id uuid.UUID) (string, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return "", apperror.NotFound("billing", err)
		}
		return "", apperror.Internal(err)
	}
	return s.renderer.Path(id), nil
}

// ExportXLSX writes the filtered billing list as a spreadsheet for the
// reception desk's reporting.
func (s *Service) ExportXLSX(ctx context.Context, filters *model.BillingFilters) ([]byte, error) {
	billings, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	headers := map[string]string{
		"A1": "Invoice Date",
		"B1": "Patient",
		"C1": "Amount",
		"D1": "Status",
		"E1": "Method",
		"F1": "Payment Date",
	}
	file := excelize.NewFile()
	sheet := "Billings"
	file.NewSheet(sheet)
	file.DeleteSheet("Sheet1")
	for k, v := range headers {
		file.SetCellValue(sheet, k, v)
	}

	for i, b := range billings {
		row := i + 2
		file.SetCellValue(sheet, fmt.Sprintf("A%v", row), b.InvoiceDate.Format(model.DateLayout))
		file.SetCellValue(sheet, fmt.Sprintf("B%v", row), b.PatientFirstName+" "+b.PatientLastName)
		file.SetCellValue(sheet, fmt.Sprintf("C%v", row), b.Amount)
		file.SetCellValue(sheet, fmt.Sprintf("D%v", row), string(b.PaymentStatus))
		file.SetCellValue(sheet, fmt.Sprintf("E%v", row), string(b.PaymentMethod))
		if b.PaymentDate != nil {
			file.SetCellValue(sheet, fmt.Sprintf("F%v", row), b.PaymentDate.Format(model.DateLayout))
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, apperror.Internal(err)
	}
	return buf.Bytes(), nil
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
