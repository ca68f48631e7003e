package room

import (
	"context"

	"github.com/guhospital/hospital-api/internal/model"
	"github.com/guhospital/hospital-api/internal/repository"
	apperror "github.com/guhospital/hospital-api/pkg/errors"
)

type Service struct {
	repo repository.RoomRepository
}

func NewService(repo repository.RoomRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListAvailable(ctx context.Context) ([]*model.Room, error) {
	rooms, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return rooms, nil
}

func (s *Service) ListDepartments(ctx context.Context) ([]*model.Department, error) {
	departments, err := s.repo.ListDepartments(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return departments, nil
}
