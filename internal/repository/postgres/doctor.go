package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/guhospital/hospital-api/internal/model"
)

const doctorRecordColumns = `
	d.user_id, d.specialty, d.availability, d.fee, d.department_id,
	d.room_id, d.profile_details,
	u.first_name, u.last_name, u.email, u.phone
`

func (r *doctorRepository) Get(ctx context.Context, userID uuid.UUID) (*model.DoctorRecord, error) {
	query := `
		SELECT ` + doctorRecordColumns + `
		FROM doctors d
		JOIN users u ON u.id = d.user_id
		WHERE d.user_id = $1
	`
	var record model.DoctorRecord
	err := r.db.GetContext(ctx, &record, query, userID)
	if err != nil {
		return nil, translateErr(err)
	}
	return &record, nil
}

func (r *doctorRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*model.DoctorProfile, error) {
	query := `
		SELECT u.first_name, u.last_name, u.national_id, u.gender,
			   d.specialty, COALESCE(dep.name, '') AS department,
			   d.profile_details
		FROM doctors d
		JOIN users u ON u.id = d.user_id
		LEFT JOIN departments dep ON dep.id = d.department_id
		WHERE d.user_id = $1
	`
	row := r.db.QueryRowxContext(ctx, query, userID)

	var profile model.DoctorProfile
	err := row.Scan(
		&profile.FirstName,
		&profile.LastName,
		&profile.NationalID,
		&profile.Gender,
		&profile.Specialty,
		&profile.Department,
		&profile.ProfileDetails,
	)
	if err != nil {
		return nil, translateErr(err)
	}
	return &profile, nil
}

func (r *doctorRepository) ListSpecialties(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT specialty FROM doctors ORDER BY specialty`

	var specialties []string
	err := r.db.SelectContext(ctx, &specialties, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list specialties: %w", err)
	}
	return specialties, nil
}

func (r *doctorRepository) ListAvailability(ctx context.Context, specialty string) ([]model.Availability, error) {
	query := `SELECT availability FROM doctors WHERE specialty = $1`

	var availabilities []model.Availability
	err := r.db.SelectContext(ctx, &availabilities, query, specialty)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability: %w", err)
	}
	return availabilities, nil
}

func (r *doctorRepository) ListBySpecialtySlot(ctx context.Context, specialty, day, hour string) ([]*model.DoctorRecord, error) {
	query := `
		SELECT ` + doctorRecordColumns + `
		FROM doctors d
		JOIN users u ON u.id = d.user_id
		WHERE d.specialty = $1
		AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(d.availability) e
			WHERE e->>'day' = $2
			AND e->'available_hours' @> to_jsonb($3::text)
		)
		ORDER BY u.last_name, u.first_name
	`
	var records []*model.DoctorRecord
	err := r.db.SelectContext(ctx, &records, query, specialty, day, hour)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors by slot: %w", err)
	}
	return records, nil
}

func (r *doctorRepository) ListByDepartment(ctx context.Context, departmentID uuid.UUID) ([]*model.DoctorRecord, error) {
	query := `
		SELECT ` + doctorRecordColumns + `
		FROM doctors d
		JOIN users u ON u.id = d.user_id
		WHERE d.department_id = $1
		ORDER BY u.last_name, u.first_name
	`
	var records []*model.DoctorRecord
	err := r.db.SelectContext(ctx, &records, query, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors by department: %w", err)
	}
	return records, nil
}
