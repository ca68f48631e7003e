package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// TimeLayout is the clock format used for appointment slots.
const TimeLayout = "15:04"

// DateLayout is the calendar format used on the wire and in queries.
const DateLayout = "2006-01-02"

type Appointment struct {
	Base
	PatientID uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	RoomID    *uuid.UUID        `db:"room_id" json:"room_id,omitempty"`
	BillingID *uuid.UUID        `db:"billing_id" json:"billing_id,omitempty"`
	Date      time.Time         `db:"date" json:"date"`
	Time      string            `db:"time" json:"time"`
	Status    AppointmentStatus `db:"status" json:"status"`
	Notes     string            `db:"notes" json:"notes,omitempty"`
}

// Slot returns the full start instant of the appointment.
func (a *Appointment) Slot() (time.Time, error) {
	t, err := time.Parse(TimeLayout, a.Time)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(a.Date.Year(), a.Date.Month(), a.Date.Day(),
		t.Hour(), t.Minute(), 0, 0, a.Date.Location()), nil
}

// AppointmentDetail joins room and participant info for list views.
type AppointmentDetail struct {
	Appointment
	PatientFirstName string `db:"patient_first_name" json:"patient_first_name"`
	PatientLastName  string `db:"patient_last_name" json:"patient_last_name"`
	DoctorFirstName  string `db:"doctor_first_name" json:"doctor_first_name"`
	DoctorLastName   string `db:"doctor_last_name" json:"doctor_last_name"`
	FloorNumber      *int   `db:"floor_number" json:"floor_number,omitempty"`
	RoomDescription  *string `db:"room_description" json:"room_description,omitempty"`
}

type BookAppointmentRequest struct {
	PatientID uuid.UUID  `json:"patient_id" binding:"required"`
	DoctorID  uuid.UUID  `json:"doctor_id" binding:"required"`
	RoomID    *uuid.UUID `json:"room_id"`
	Date      string     `json:"date" binding:"required"`
	Time      string     `json:"time" binding:"required"`
	Notes     string     `json:"notes" binding:"max=1000"`
}

type RescheduleRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

// BookingResult carries the identifiers created by the booking workflow.
type BookingResult struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	BillingID     uuid.UUID `json:"billing_id"`
}

// AppointmentFilters are combined conjunctively; zero values are skipped.
type AppointmentFilters struct {
	Date        *time.Time
	Time        string
	DoctorID    *uuid.UUID
	PatientID   *uuid.UUID
	RoomID      *uuid.UUID
	Status      AppointmentStatus
	PatientName string
}
