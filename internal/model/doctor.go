package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// DayAvailability is one entry of a doctor's weekly availability document.
type DayAvailability struct {
	Day            string   `json:"day"`
	AvailableHours []string `json:"available_hours"`
}

type Availability []DayAvailability

func (a Availability) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *Availability) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	case nil:
		*a = nil
		return nil
	default:
		return fmt.Errorf("unsupported availability type %T", src)
	}
}

// ProfileDetails is the free-form CV document on a doctor row.
type ProfileDetails struct {
	Degree      string   `json:"degree,omitempty"`
	University  string   `json:"university,omitempty"`
	Experiences []string `json:"experiences,omitempty"`
}

func (p ProfileDetails) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *ProfileDetails) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = ProfileDetails{}
		return nil
	default:
		return fmt.Errorf("unsupported profile details type %T", src)
	}
}

type Doctor struct {
	UserID         uuid.UUID      `db:"user_id" json:"user_id"`
	Specialty      string         `db:"specialty" json:"specialty"`
	Availability   Availability   `db:"availability" json:"availability"`
	Fee            float64        `db:"fee" json:"fee"`
	DepartmentID   *uuid.UUID     `db:"department_id" json:"department_id,omitempty"`
	RoomID         *uuid.UUID     `db:"room_id" json:"room_id,omitempty"`
	ProfileDetails ProfileDetails `db:"profile_details" json:"profile_details"`
}

// DoctorRecord joins the user identity with the doctor extension.
type DoctorRecord struct {
	Doctor
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
	Phone     string `db:"phone" json:"phone"`
}

// DoctorProfile is the public profile view.
type DoctorProfile struct {
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	NationalID     string         `json:"national_id"`
	Gender         string         `json:"gender"`
	Specialty      string         `json:"specialty"`
	Department     string         `json:"department,omitempty"`
	ProfileDetails ProfileDetails `json:"profile_details"`
}
