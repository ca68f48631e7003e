package patient

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/guhospital/hospital-api/internal/email"
	"github.com/guhospital/hospital-api/internal/model"
	"github.com/guhospital/hospital-api/internal/repository"
	"github.com/guhospital/hospital-api/internal/storage"
	apperror "github.com/guhospital/hospital-api/pkg/errors"
	"github.com/guhospital/hospital-api/pkg/security"
)

const tempPasswordLength = 12

type Service struct {
	repo       repository.PatientRepository
	userRepo   repository.UserRepository
	outboxRepo repository.OutboxRepository
	hasher     security.PasswordHasher
	emailSvc   email.Service
	store      storage.Store
	logger     zerolog.Logger
}

func NewService(repo repository.PatientRepository, userRepo repository.UserRepository, outboxRepo repository.OutboxRepository, hasher security.PasswordHasher, emailSvc email.Service, store storage.Store, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		hasher:     hasher,
		emailSvc:   emailSvc,
		store:      store,
		logger:     logger,
	}
}

// Register creates a patient account at the reception desk. A temporary
// password is generated and emailed; the patient must change it on first
// login. Duplicate national ids are reported as a conflict.
func (s *Service) Register(ctx context.Context, req *model.RegisterPatientRequest) (*model.User, error) {
	if !model.ValidNationalID(req.NationalID) {
		return nil, apperror.BadRequest("invalid national id", nil)
	}
	if _, err := model.DOBFromNationalID(req.NationalID); err != nil {
		return nil, apperror.BadRequest("invalid national id", err)
	}

	tempPassword, err := security.GenerateRandomPassword(tempPasswordLength)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	hash, err := s.hasher.Hash(tempPassword)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &model.User{
		NationalID:         req.NationalID,
		FirstName:          req.FirstName,
		MiddleName:         req.MiddleName,
		LastName:           req.LastName,
		Email:              req.Email,
		Phone:              req.Phone,
		Address:            req.Address,
		Gender:             req.Gender,
		Role:               model.RolePatient,
		PasswordHash:       hash,
		MustChangePassword: true,
	}

	patient := &model.Patient{Status: model.PatientStatusActive}
	insurance := buildInsurance(req)

	if err := s.repo.CreateWithInsurance(ctx, user, patient, insurance); err != nil {
		if err == repository.ErrDuplicate {
			return nil, apperror.Conflict("a patient with this national id already exists", err)
		}
		return nil, apperror.Internal(err)
	}

	if err := s.emailSvc.SendWelcome(ctx, user.Email, user.FullName(), tempPassword); err != nil {
		s.logger.Error().Err(err).Str("email", user.Email).Msg("failed to send welcome email")
	}

	s.publishEvent(ctx, "patient.registered", map[string]interface{}{
		"patient_id":  user.ID,
		"national_id": user.NationalID,
	})

	return user, nil
}

func buildInsurance(req *model.RegisterPatientRequest) *model.Insurance {
	if req.InsuranceProvider == "" || req.CoveragePercentage <= 0 || req.InsuranceExpiry == "" {
		return nil
	}
	expiry, err := time.Parse(model.DateLayout, req.InsuranceExpiry)
	if err != nil {
		return nil
	}
	return &model.Insurance{
		Provider: req.InsuranceProvider,
		CoverageDetails: model.CoverageDetails{
			Percentage: req.CoveragePercentage,
		},
		ExpiryDate: expiry,
	}
}

func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*model.PatientRecord, error) {
	record, err := s.repo.Get(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.NotFound("patient", err)
		}
		return nil, apperror.Internal(err)
	}
	return record, nil
}

func (s *Service) GetByNationalID(ctx context.Context, nationalID string) (*model.PatientRecord, error) {
	if !model.ValidNationalID(nationalID) {
		return nil, apperror.BadRequest("invalid national id", nil)
	}
	record, err := s.repo.GetByNationalID(ctx, nationalID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.NotFound("patient", err)
		}
		return nil, apperror.Internal(err)
	}
	return record, nil
}

func (s *Service) List(ctx context.Context) ([]*model.PatientRecord, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return records, nil
}

// Profile assembles the patient's portal view: identity, age derived from
// the national id and the insurance policy when enrolled.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error) {
	record, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	dob, err := model.DOBFromNationalID(record.NationalID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	profile := &model.UserProfile{
		User: &record.User,
		Age:  model.AgeFromDOB(dob, time.Now()),
		DOB:  dob,
	}

	if record.InsuranceID != nil {
		insurance, err := s.repo.GetInsurance(ctx, userID)
		if err != nil && err != repository.ErrNotFound {
			return nil, apperror.Internal(err)
		}
		profile.Insurance = insurance
	}

	return profile, nil
}

func (s *Service) UpdateStatus(ctx context.Context, userID uuid.UUID, status model.PatientStatus) error {
	if err := s.repo.UpdateStatus(ctx, userID, status); err != nil {
		if err == repository.ErrNotFound {
			return apperror.NotFound("patient", err)
		}
		return apperror.Internal(err)
	}
	return nil
}

func (s *Service) UpdateDiagnosis(ctx context.Context, userID uuid.UUID, diagnosis string) error {
	if err := s.repo.UpdateDiagnosis(ctx, userID, diagnosis); err != nil {
		if err == repository.ErrNotFound {
			return apperror.NotFound("patient", err)
		}
		return apperror.Internal(err)
	}
	return nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.NotFound("user", err)
		}
		return nil, apperror.Internal(err)
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.Gender != nil {
		user.Gender = *req.Gender
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if err == repository.ErrDuplicate {
			return nil, apperror.Conflict("email already in use", err)
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

// UploadPhoto stores the profile photo and records its path on the user row.
func (s *Service) UploadPhoto(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (string, error) {
	path, err := s.store.Save(userID, file)
	if err != nil {
		return "", apperror.BadRequest("could not store file", err)
	}

	if err := s.userRepo.UpdateProfilePhoto(ctx, userID, path); err != nil {
		_ = s.store.Remove(path)
		if err == repository.ErrNotFound {
			return "", apperror.NotFound("user", err)
		}
		return "", apperror.Internal(err)
	}
	return path, nil
}

func (s *Service) ReplaceAllergies(ctx context.Context, userID uuid.UUID, req *model.ReplaceAllergiesRequest) error {
	allergies := make([]model.Allergy, 0, len(req.Allergies))
	for _, a := range req.Allergies {
		allergies = append(allergies, model.Allergy{Name: a.Name, Reaction: a.Reaction})
	}

	if err := s.repo.ReplaceAllergies(ctx, userID, allergies); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *Service) ListAllergies(ctx context.Context, userID uuid.UUID) ([]*model.Allergy, error) {
	allergies, err := s.repo.ListAllergies(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return allergies, nil
}

// UpdateInsurance replaces the policy details on the patient's existing
// insurance row. Patients without an enrolled policy get a not found.
func (s *Service) UpdateInsurance(ctx context.Context, userID uuid.UUID, req *model.UpdateInsuranceRequest) (*model.Insurance, error) {
	expiry, err := time.Parse(model.DateLayout, req.ExpiryDate)
	if err != nil {
		return nil, apperror.BadRequest("invalid expiry date", err)
	}

	insurance, err := s.repo.GetInsurance(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.NotFound("insurance", err)
		}
		return nil, apperror.Internal(err)
	}

	insurance.Provider = req.Provider
	insurance.PolicyNumber = req.PolicyNumber
	insurance.CoverageDetails.Percentage = req.CoveragePercentage
	insurance.ExpiryDate = expiry

	if err := s.repo.UpdateInsurance(ctx, insurance); err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.NotFound("insurance", err)
		}
		return nil, apperror.Internal(err)
	}
	return insurance, nil
}

// UploadInsuranceDocument stores the policy document image and records its
// path on the insurance row's coverage details.
func (s *Service) UploadInsuranceDocument(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*model.Insurance, error) {
	insurance, err := s.repo.GetInsurance(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperror.NotFound("insurance", err)
		}
		return nil, apperror.Internal(err)
	}

	path, err := s.store.Save(userID, file)
	if err != nil {
		return nil, apperror.BadRequest("could not store file", err)
	}

	previous := insurance.CoverageDetails.Image
	insurance.CoverageDetails.Image = path
	if err := s.repo.UpdateInsurance(ctx, insurance); err != nil {
		_ = s.store.Remove(path)
		if err == repository.ErrNotFound {
			return nil, apperror.NotFound("insurance", err)
		}
		return nil, apperror.Internal(err)
	}

	if previous != "" && previous != path {
		_ = s.store.Remove(previous)
	}
	return insurance, nil
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
