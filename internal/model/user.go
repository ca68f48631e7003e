package model

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePatient      Role = "patient"
	RoleDoctor       Role = "doctor"
	RoleReceptionist Role = "receptionist"
	RolePharmacist   Role = "pharmacist"
)

// nationalIDPattern: century digit ('2' for 19xx, '3' for 20xx) followed by
// yymmdd and a 7-digit serial.
var nationalIDPattern = regexp.MustCompile(`^[23]\d{13}$`)

type User struct {
	Base
	NationalID         string     `db:"national_id" json:"national_id"`
	FirstName          string     `db:"first_name" json:"first_name"`
	MiddleName         string     `db:"middle_name" json:"middle_name,omitempty"`
	LastName           string     `db:"last_name" json:"last_name"`
	Email              string     `db:"email" json:"email"`
	Phone              string     `db:"phone" json:"phone"`
	Address            string     `db:"address" json:"address,omitempty"`
	Gender             string     `db:"gender" json:"gender,omitempty"`
	Role               Role       `db:"role" json:"role"`
	PasswordHash       string     `db:"password_hash" json:"-"`
	ProfilePhoto       *string    `db:"profile_photo" json:"profile_photo,omitempty"`
	MustChangePassword bool       `db:"must_change_password" json:"must_change_password"`
	LastLoginAt        *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
}

func (u *User) FullName() string {
	if u.MiddleName != "" {
		return u.FirstName + " " + u.MiddleName + " " + u.LastName
	}
	return u.FirstName + " " + u.LastName
}

// ValidNationalID reports whether id has the expected shape.
func ValidNationalID(id string) bool {
	return nationalIDPattern.MatchString(id)
}

// DOBFromNationalID decodes the birth date embedded in a national id.
// The first digit selects the century: '2' means 19xx, '3' means 20xx.
func DOBFromNationalID(id string) (time.Time, error) {
	if !ValidNationalID(id) {
		return time.Time{}, fmt.Errorf("invalid national id %q", id)
	}

	var century string
	switch id[0] {
	case '2':
		century = "19"
	case '3':
		century = "20"
	}

	dob, err := time.Parse("20060102", century+id[1:7])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid birth date in national id %q: %w", id, err)
	}
	return dob, nil
}

// AgeFromDOB computes full years elapsed between dob and now.
func AgeFromDOB(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	Gender    *string `json:"gender"`
}

type UpdatePasswordRequest struct {
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

type UserProfile struct {
	User      *User      `json:"user"`
	Age       int        `json:"age"`
	DOB       time.Time  `json:"date_of_birth"`
	Insurance *Insurance `json:"insurance,omitempty"`
}

type ResetToken struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Token     string    `db:"token" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
