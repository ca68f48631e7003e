package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/guhospital/hospital-api/internal/email"
	"github.com/guhospital/hospital-api/internal/model"
	"github.com/guhospital/hospital-api/internal/repository"
	"github.com/guhospital/hospital-api/pkg/auth"
	apperror "github.com/guhospital/hospital-api/pkg/errors"
	"github.com/guhospital/hospital-api/pkg/security"
)

const resetTokenTTL = time.Hour

type Service struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	hasher    security.PasswordHasher
	jwtSvc    auth.JWTService
	emailSvc  email.Service
	logger    zerolog.Logger
}

func NewService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository, hasher security.PasswordHasher, jwtSvc auth.JWTService, emailSvc email.Service, logger zerolog.Logger) *Service {
	return &Service{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		hasher:    hasher,
		jwtSvc:    jwtSvc,
		emailSvc:  emailSvc,
		logger:    logger,
	}
}

// Login authenticates a user by national id and password.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	if !model.ValidNationalID(req.NationalID) {
		return nil, apperror.BadRequest("invalid national id", nil)
	}

	user, err := s.userRepo.GetByNationalID(ctx, req.NationalID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.Unauthorized(fmt.Errorf("unknown national id"))
		}
		return nil, apperror.Internal(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperror.Unauthorized(fmt.Errorf("wrong password"))
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		// Login still succeeds, the timestamp is informational.
		s.logger.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to record last login")
	}

	return resp, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.Unauthorized(err)
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.Unauthorized(fmt.Errorf("user no longer exists"))
		}
		return nil, apperror.Internal(err)
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return resp, nil
}

// ChangePassword replaces the caller's password after verifying the old one
// and clears the forced-change flag set on first-time accounts.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req *model.UpdatePasswordRequest) error {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return apperror.NotFound("user", err)
		}
		return apperror.Internal(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.OldPassword); err != nil {
		return apperror.Unauthorized(fmt.Errorf("wrong password"))
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperror.BadRequest("password does not meet requirements", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hash, false); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// ForgotPassword issues a reset token and emails it. The response is the same
// whether or not the email exists, to avoid leaking account presence.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil
		}
		return apperror.Internal(err)
	}

	token, err := security.GenerateRandomPassword(32)
	if err != nil {
		return apperror.Internal(err)
	}

	rt := &model.ResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.tokenRepo.CreateResetToken(ctx, rt); err != nil {
		return apperror.Internal(err)
	}

	if err := s.emailSvc.SendPasswordReset(ctx, user.Email, token); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	rt, err := s.tokenRepo.GetResetToken(ctx, token)
	if err != nil {
		if err == repository.ErrNotFound {
			return apperror.BadRequest("invalid or expired reset token", nil)
		}
		return apperror.Internal(err)
	}

	if time.Now().After(rt.ExpiresAt) {
		_ = s.tokenRepo.DeleteResetToken(ctx, rt.ID)
		return apperror.BadRequest("invalid or expired reset token", nil)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperror.BadRequest("password does not meet requirements", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, rt.UserID, hash, false); err != nil {
		return apperror.Internal(err)
	}

	_ = s.tokenRepo.DeleteResetToken(ctx, rt.ID)
	return nil
}

func (s *Service) issueTokens(user *model.User) (*model.TokenResponse, error) {
	access, err := s.jwtSvc.GenerateAccessToken(user.ID, user.NationalID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwtSvc.GenerateRefreshToken(user.ID, user.NationalID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &model.TokenResponse{
		AccessToken:        access,
		RefreshToken:       refresh,
		Role:               user.Role,
		MustChangePassword: user.MustChangePassword,
	}, nil
}
