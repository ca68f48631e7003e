package pharmacy

import (
	"context"

	"github.com/guhospital/hospital-api/internal/model"
	"github.com/guhospital/hospital-api/internal/repository"
	apperror "github.com/guhospital/hospital-api/pkg/errors"
)

// Medications within this window show up on the expiration report.
const ExpirationWindowDays = 30

type Service struct {
	repo repository.PharmacyRepository
}

func NewService(repo repository.PharmacyRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListMedications(ctx context.Context, namePrefix string) ([]*model.Medication, error) {
	medications, err := s.repo.ListMedications(ctx, namePrefix)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return medications, nil
}

func (s *Service) StockLevels(ctx context.Context) ([]*model.StockLevel, error) {
	levels, err := s.repo.StockLevels(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return levels, nil
}

func (s *Service) LowStock(ctx context.Context) ([]*model.LowStockItem, error) {
	items, err := s.repo.LowStock(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return items, nil
}

func (s *Service) ExpirationAlerts(ctx context.Context) ([]*model.ExpirationAlert, error) {
	alerts, err := s.repo.ExpiringWithin(ctx, ExpirationWindowDays)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return alerts, nil
}

func (s *Service) Suggest(ctx context.Context, prefix string) ([]*model.MedicationSuggestion, error) {
	if prefix == "" {
		return []*model.MedicationSuggestion{}, nil
	}
	suggestions, err := s.repo.Suggest(ctx, prefix)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return suggestions, nil
}
