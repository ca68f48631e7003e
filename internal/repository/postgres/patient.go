package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/guhospital/hospital-api/internal/model"
	"github.com/guhospital/hospital-api/internal/repository"
)

// CreateWithInsurance registers a patient atomically: the optional insurance
// row, the user row and the patient extension land in one transaction.
func (r *patientRepository) CreateWithInsurance(ctx context.Context, user *model.User, patient *model.Patient, insurance *model.Insurance) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		now := time.Now()

		if insurance != nil {
			insurance.ID = uuid.New()
			insurance.CreatedAt = now
			insurance.UpdatedAt = now

			insQuery := `
				INSERT INTO insurances (
					id, provider, policy_number, coverage_details, expiry_date,
					created_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7)
			`
			if _, err := tx.ExecContext(ctx, insQuery,
				insurance.ID,
				insurance.Provider,
				insurance.PolicyNumber,
				insurance.CoverageDetails,
				insurance.ExpiryDate,
				insurance.CreatedAt,
				insurance.UpdatedAt,
			); err != nil {
				return fmt.Errorf("failed to create insurance: %w", err)
			}
			patient.InsuranceID = &insurance.ID
		}

		user.ID = uuid.New()
		user.CreatedAt = now
		user.UpdatedAt = now
		user.Role = model.RolePatient

		userQuery := `
			INSERT INTO users (
				id, national_id, first_name, middle_name, last_name,
				email, phone, address, gender, role, password_hash,
				must_change_password, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`
		if _, err := tx.ExecContext(ctx, userQuery,
			user.ID,
			user.NationalID,
			user.FirstName,
			user.MiddleName,
			user.LastName,
			user.Email,
			user.Phone,
			user.Address,
			user.Gender,
			user.Role,
			user.PasswordHash,
			user.MustChangePassword,
			user.CreatedAt,
			user.UpdatedAt,
		); err != nil {
			return err
		}

		patient.UserID = user.ID
		if patient.Status == "" {
			patient.Status = model.PatientStatusActive
		}

		patientQuery := `
			INSERT INTO patients (user_id, insurance_id, status, diagnosis)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.ExecContext(ctx, patientQuery,
			patient.UserID,
			patient.InsuranceID,
			patient.Status,
			patient.Diagnosis,
		); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		if terr := translateErr(err); terr == repository.ErrDuplicate {
			return terr
		}
		return fmt.Errorf("failed to register patient: %w", err)
	}
	return nil
}

const patientColumns = `
	u.id, u.national_id, u.first_name, u.middle_name, u.last_name,
	u.email, u.phone, u.address, u.gender, u.role, u.password_hash,
	u.profile_photo, u.must_change_password, u.last_login_at,
	u.created_at, u.updated_at,
	p.insurance_id, p.status AS patient_status, p.diagnosis
`

func (r *patientRepository) Get(ctx context.Context, userID uuid.UUID) (*model.PatientRecord, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patients p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
	`
	var record model.PatientRecord
	err := r.db.GetContext(ctx, &record, query, userID)
	if err != nil {
		return nil, translateErr(err)
	}
	return &record, nil
}

func (r *patientRepository) GetByNationalID(ctx context.Context, nationalID string) (*model.PatientRecord, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patients p
		JOIN users u ON u.id = p.user_id
		WHERE u.national_id = $1
	`
	var record model.PatientRecord
	err := r.db.GetContext(ctx, &record, query, nationalID)
	if err != nil {
		return nil, translateErr(err)
	}
	return &record, nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.PatientRecord, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patients p
		JOIN users u ON u.id = p.user_id
		ORDER BY u.last_name, u.first_name
	`
	var records []*model.PatientRecord
	err := r.db.SelectContext(ctx, &records, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return records, nil
}

func (r *patientRepository) UpdateStatus(ctx context.Context, userID uuid.UUID, status model.PatientStatus) error {
	query := `UPDATE patients SET status = $1 WHERE user_id = $2`

	result, err := r.db.ExecContext(ctx, query, status, userID)
	if err != nil {
		return fmt.Errorf("failed to update patient status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *patientRepository) UpdateDiagnosis(ctx context.Context, userID uuid.UUID, diagnosis string) error {
	query := `UPDATE patients SET diagnosis = $1 WHERE user_id = $2`

	result, err := r.db.ExecContext(ctx, query, diagnosis, userID)
	if err != nil {
		return fmt.Errorf("failed to update diagnosis: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ReplaceAllergies swaps the full allergy list in one transaction so a
// concurrent reader never sees a half-written list.
func (r *patientRepository) ReplaceAllergies(ctx context.Context, userID uuid.UUID, allergies []model.Allergy) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM allergies WHERE patient_id = $1`, userID); err != nil {
			return fmt.Errorf("failed to clear allergies: %w", err)
		}

		query := `
			INSERT INTO allergies (id, patient_id, name, reaction)
			VALUES ($1, $2, $3, $4)
		`
		for i := range allergies {
			allergies[i].ID = uuid.New()
			allergies[i].PatientID = userID
			if _, err := tx.ExecContext(ctx, query,
				allergies[i].ID,
				allergies[i].PatientID,
				allergies[i].Name,
				allergies[i].Reaction,
			); err != nil {
				return fmt.Errorf("failed to insert allergy: %w", err)
			}
		}
		return nil
	})
}

func (r *patientRepository) ListAllergies(ctx context.Context, userID uuid.UUID) ([]*model.Allergy, error) {
	query := `
		SELECT id, patient_id, name, reaction
		FROM allergies
		WHERE patient_id = $1
		ORDER BY name
	`
	var allergies []*model.Allergy
	err := r.db.SelectContext(ctx, &allergies, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list allergies: %w", err)
	}
	return allergies, nil
}

func (r *patientRepository) GetInsurance(ctx context.Context, userID uuid.UUID) (*model.Insurance, error) {
	query := `
		SELECT i.id, i.provider, i.policy_number, i.coverage_details,
			   i.expiry_date, i.created_at, i.updated_at
		FROM insurances i
		JOIN patients p ON p.insurance_id = i.id
		WHERE p.user_id = $1
	`
	var insurance model.Insurance
	err := r.db.GetContext(ctx, &insurance, query, userID)
	if err != nil {
		return nil, translateErr(err)
	}
	return &insurance, nil
}

func (r *patientRepository) UpdateInsurance(ctx context.Context, insurance *model.Insurance) error {
	query := `
		UPDATE insurances
		SET provider = $1, policy_number = $2, coverage_details = $3,
			expiry_date = $4, updated_at = $5
		WHERE id = $6
	`
	insurance.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		insurance.Provider,
		insurance.PolicyNumber,
		insurance.CoverageDetails,
		insurance.ExpiryDate,
		insurance.UpdatedAt,
		insurance.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update insurance: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}
