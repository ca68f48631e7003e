package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/guhospital/hospital-api/internal/model"
	"github.com/guhospital/hospital-api/internal/repository"
)

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, national_id, first_name, middle_name, last_name,
			email, phone, address, gender, role, password_hash,
			must_change_password, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
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
	)
	if err != nil {
		if terr := translateErr(err); terr == repository.ErrDuplicate {
			return terr
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

const userColumns = `
	id, national_id, first_name, middle_name, last_name,
	email, phone, address, gender, role, password_hash,
	profile_photo, must_change_password, last_login_at,
	created_at, updated_at
`

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user model.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (r *userRepository) GetByNationalID(ctx context.Context, nationalID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE national_id = $1`

	var user model.User
	err := r.db.GetContext(ctx, &user, query, nationalID)
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var user model.User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, email = $3, phone = $4,
			address = $5, gender = $6, updated_at = $7
		WHERE id = $8
	`
	user.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Phone,
		user.Address,
		user.Gender,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if terr := translateErr(err); terr == repository.ErrDuplicate {
			return terr
		}
		return fmt.Errorf("failed to update user: %w", err)
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

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, mustChange bool) error {
	query := `
		UPDATE users
		SET password_hash = $1, must_change_password = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query, passwordHash, mustChange, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
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

func (r *userRepository) UpdateProfilePhoto(ctx context.Context, id uuid.UUID, path string) error {
	query := `
		UPDATE users
		SET profile_photo = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, path, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update profile photo: %w", err)
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

func (r *userRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE users SET last_login_at = $1 WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
