package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/guhospital/hospital-api/internal/model"
	"github.com/guhospital/hospital-api/internal/repository"
	apperror "github.com/guhospital/hospital-api/pkg/errors"
)

// Directory lookups change rarely, so specialty and profile reads are cached
// for a few minutes.
const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute

	specialtiesKey = "specialties"
)

type Service struct {
	repo  repository.DoctorRepository
	cache *gocache.Cache
}

func NewService(repo repository.DoctorRepository) *Service {
	return &Service{
		repo:  repo,
		cache: gocache.New(cacheTTL, cacheCleanup),
	}
}

func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*model.DoctorRecord, error) {
	record, err := s.repo.Get(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.NotFound("doctor", err)
		}
		return nil, apperror.Internal(err)
	}
	return record, nil
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*model.DoctorProfile, error) {
	key := "profile:" + userID.String()
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*model.DoctorProfile), nil
	}

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.NotFound("doctor", err)
		}
		return nil, apperror.Internal(err)
	}

	s.cache.Set(key, profile, gocache.DefaultExpiration)
	return profile, nil
}

func (s *Service) ListSpecialties(ctx context.Context) ([]string, error) {
	if cached, ok := s.cache.Get(specialtiesKey); ok {
		return cached.([]string), nil
	}

	specialties, err := s.repo.ListSpecialties(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	s.cache.Set(specialtiesKey, specialties, gocache.DefaultExpiration)
	return specialties, nil
}

// AvailableDays returns the union of weekdays doctors of a specialty work.
func (s *Service) AvailableDays(ctx context.Context, specialty string) ([]string, error) {
	availabilities, err := s.repo.ListAvailability(ctx, specialty)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	seen := map[string]bool{}
	var days []string
	for _, availability := range availabilities {
		for _, d := range availability {
			if !seen[d.Day] {
				seen[d.Day] = true
				days = append(days, d.Day)
			}
		}
	}
	return days, nil
}

// AvailableHours returns the union of hours doctors of a specialty offer on
// a weekday.
func (s *Service) AvailableHours(ctx context.Context, specialty, day string) ([]string, error) {
	availabilities, err := s.repo.ListAvailability(ctx, specialty)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	seen := map[string]bool{}
	var hours []string
	for _, availability := range availabilities {
		for _, d := range availability {
			if d.Day != day {
				continue
			}
			for _, h := range d.AvailableHours {
				if !seen[h] {
					seen[h] = true
					hours = append(hours, h)
				}
			}
		}
	}
	return hours, nil
}

// FindBySlot returns doctors of a specialty free at the given weekday and
// hour, for the reception desk's booking flow.
func (s *Service) FindBySlot(ctx context.Context, specialty, day, hour string) ([]*model.DoctorRecord, error) {
	if specialty == "" || day == "" || hour == "" {
		return nil, apperror.BadRequest("specialty, day and hour are required", nil)
	}

	key := fmt.Sprintf("slot:%s:%s:%s", specialty, day, hour)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.DoctorRecord), nil
	}

	records, err := s.repo.ListBySpecialtySlot(ctx, specialty, day, hour)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	s.cache.Set(key, records, gocache.DefaultExpiration)
	return records, nil
}

func (s *Service) ListByDepartment(ctx context.Context, departmentID uuid.UUID) ([]*model.DoctorRecord, error) {
	records, err := s.repo.ListByDepartment(ctx, departmentID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return records, nil
}
