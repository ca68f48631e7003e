package patient

import (
	"context"
	"mime/multipart"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guhospital/hospital-api/internal/model"
	"github.com/guhospital/hospital-api/internal/repository"
	apperror "github.com/guhospital/hospital-api/pkg/errors"
)

type fakePatientRepo struct {
	insurances map[uuid.UUID]*model.Insurance
}

func (f *fakePatientRepo) CreateWithInsurance(context.Context, *model.User, *model.Patient, *model.Insurance) error {
	return nil
}

func (f *fakePatientRepo) Get(context.Context, uuid.UUID) (*model.PatientRecord, error) {
	return nil, repository.ErrNotFound
}

func (f *fakePatientRepo) GetByNationalID(context.Context, string) (*model.PatientRecord, error) {
	return nil, repository.ErrNotFound
}

func (f *fakePatientRepo) List(context.Context) ([]*model.PatientRecord, error) { return nil, nil }

func (f *fakePatientRepo) UpdateStatus(context.Context, uuid.UUID, model.PatientStatus) error {
	return nil
}

func (f *fakePatientRepo) UpdateDiagnosis(context.Context, uuid.UUID, string) error { return nil }

func (f *fakePatientRepo) ReplaceAllergies(context.Context, uuid.UUID, []model.Allergy) error {
	return nil
}

func (f *fakePatientRepo) ListAllergies(context.Context, uuid.UUID) ([]*model.Allergy, error) {
	return nil, nil
}

func (f *fakePatientRepo) GetInsurance(_ context.Context, userID uuid.UUID) (*model.Insurance, error) {
	insurance, ok := f.insurances[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return insurance, nil
}

func (f *fakePatientRepo) UpdateInsurance(_ context.Context, insurance *model.Insurance) error {
	for userID, existing := range f.insurances {
		if existing.ID == insurance.ID {
			f.insurances[userID] = insurance
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeStore struct {
	saved   []string
	removed []string
}

func (f *fakeStore) Save(userID uuid.UUID, _ *multipart.FileHeader) (string, error) {
	path := "uploads/" + userID.String() + "_doc.jpg"
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeStore) Remove(path string) error {
	f.removed = append(f.removed, path)
	return nil
}

func newInsuranceEnv(userID uuid.UUID) (*Service, *fakePatientRepo, *fakeStore) {
	insurance := &model.Insurance{
		Provider:        "MedCare",
		PolicyNumber:    "P-100",
		CoverageDetails: model.CoverageDetails{Percentage: 20},
		ExpiryDate:      time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	insurance.ID = uuid.New()

	repo := &fakePatientRepo{insurances: map[uuid.UUID]*model.Insurance{userID: insurance}}
	store := &fakeStore{}
	svc := &Service{repo: repo, store: store, logger: zerolog.Nop()}
	return svc, repo, store
}

func TestUploadInsuranceDocument(t *testing.T) {
	userID := uuid.New()
	svc, repo, store := newInsuranceEnv(userID)

	insurance, err := svc.UploadInsuranceDocument(context.Background(), userID, nil)
	require.NoError(t, err)

	require.Len(t, store.saved, 1)
	assert.Equal(t, store.saved[0], insurance.CoverageDetails.Image)
	assert.Equal(t, store.saved[0], repo.insurances[userID].CoverageDetails.Image)
	assert.Empty(t, store.removed)
}

func TestUploadInsuranceDocumentReplacesPrevious(t *testing.T) {
	userID := uuid.New()
	svc, repo, store := newInsuranceEnv(userID)
	repo.insurances[userID].CoverageDetails.Image = "uploads/old_doc.jpg"

	insurance, err := svc.UploadInsuranceDocument(context.Background(), userID, nil)
	require.NoError(t, err)

	assert.Equal(t, store.saved[0], insurance.CoverageDetails.Image)
	assert.Contains(t, store.removed, "uploads/old_doc.jpg")
}

func TestUploadInsuranceDocumentWithoutPolicy(t *testing.T) {
	svc, _, store := newInsuranceEnv(uuid.New())

	_, err := svc.UploadInsuranceDocument(context.Background(), uuid.New(), nil)
	require.Error(t, err)

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.StatusCode())
	// Nothing is written for patients without an enrolled policy.
	assert.Empty(t, store.saved)
}

func TestUpdateInsurance(t *testing.T) {
	userID := uuid.New()
	svc, repo, _ := newInsuranceEnv(userID)

	insurance, err := svc.UpdateInsurance(context.Background(), userID, &model.UpdateInsuranceRequest{
		Provider:           "NewCare",
		PolicyNumber:       "P-200",
		CoveragePercentage: 50,
		ExpiryDate:         "2031-06-30",
	})
	require.NoError(t, err)

	assert.Equal(t, "NewCare", insurance.Provider)
	assert.Equal(t, 50.0, insurance.CoverageDetails.Percentage)
	assert.Equal(t, time.Date(2031, 6, 30, 0, 0, 0, 0, time.UTC), insurance.ExpiryDate)
	assert.Equal(t, "NewCare", repo.insurances[userID].Provider)

	_, err = svc.UpdateInsurance(context.Background(), userID, &model.UpdateInsuranceRequest{
		Provider:           "NewCare",
		CoveragePercentage: 50,
		ExpiryDate:         "not-a-date",
	})
	require.Error(t, err)
	appErr, _ := apperror.As(err)
	assert.Equal(t, 400, appErr.StatusCode())
}
