package announcement

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/guhospital/hospital-api/internal/email"
	"github.com/guhospital/hospital-api/internal/model"
	"github.com/guhospital/hospital-api/internal/repository"
	apperror "github.com/guhospital/hospital-api/pkg/errors"
)

type Service struct {
	repo       repository.AnnouncementRepository
	userRepo   repository.UserRepository
	outboxRepo repository.OutboxRepository
	emailSvc   email.Service
	logger     zerolog.Logger
}

func NewService(repo repository.AnnouncementRepository, userRepo repository.UserRepository, outboxRepo repository.OutboxRepository, emailSvc email.Service, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		emailSvc:   emailSvc,
		logger:     logger,
	}
}

// Create posts an announcement to everyone, one role, or one user looked up
// by email.
func (s *Service) Create(ctx context.Context, createdBy uuid.UUID, req *model.CreateAnnouncementRequest) (*model.Announcement, error) {
	announcement := &model.Announcement{
		Title:      req.Title,
		Content:    req.Content,
		TargetRole: req.TargetRole,
		Priority:   req.Priority,
		CreatedBy:  createdBy,
	}

	var targetEmail string
	if req.TargetUserEmail != "" {
		user, err := s.userRepo.GetByEmail(ctx, req.TargetUserEmail)
		if err != nil {
			if err == repository.ErrNotFound {
				return nil, apperror.NotFound("target user", err)
			}
			return nil, apperror.Internal(err)
		}
		announcement.TargetUser = &user.ID
		targetEmail = user.Email
	}

	if req.StartDate != nil {
		start, err := time.Parse(model.DateLayout, *req.StartDate)
		if err != nil {
			return nil, apperror.BadRequest("invalid start date", err)
		}
		announcement.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := time.Parse(model.DateLayout, *req.EndDate)
		if err != nil {
			return nil, apperror.BadRequest("invalid end date", err)
		}
		if announcement.StartDate != nil && end.Before(*announcement.StartDate) {
			return nil, apperror.BadRequest("end date precedes start date", nil)
		}
		announcement.EndDate = &end
	}

	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, apperror.Internal(err)
	}

	if targetEmail != "" {
		if err := s.emailSvc.SendAnnouncement(ctx, targetEmail, announcement.Title, announcement.Content); err != nil {
			s.logger.Warn().Err(err).Str("email", targetEmail).Msg("failed to send announcement email")
		}
	}

	s.publishEvent(ctx, "announcement.created", map[string]interface{}{
		"announcement_id": announcement.ID,
		"title":           announcement.Title,
		"priority":        announcement.Priority,
	})

	return announcement, nil
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.AnnouncementDetail, error) {
	announcements, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return announcements, nil
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
