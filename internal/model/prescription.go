package model

import (
	"time"

	"github.com/google/uuid"
)

type PrescriptionStatus string

const (
	PrescriptionStatusPending   PrescriptionStatus = "pending"
	PrescriptionStatusActive    PrescriptionStatus = "active"
	PrescriptionStatusConfirmed PrescriptionStatus = "confirmed"
)

type Prescription struct {
	Base
	PatientID      uuid.UUID          `db:"patient_id" json:"patient_id"`
	DoctorID       uuid.UUID          `db:"doctor_id" json:"doctor_id"`
	BillingID      *uuid.UUID         `db:"billing_id" json:"billing_id,omitempty"`
	MedicationName string             `db:"medication_name" json:"medication_name"`
	Dosage         string             `db:"dosage" json:"dosage"`
	Frequency      string             `db:"frequency" json:"frequency"`
	DatePrescribed time.Time          `db:"date_prescribed" json:"date_prescribed"`
	StartDate      time.Time          `db:"start_date" json:"start_date"`
	EndDate        *time.Time         `db:"end_date" json:"end_date,omitempty"`
	Status         PrescriptionStatus `db:"status" json:"status"`
	RefillTimes    int                `db:"refill_times" json:"refill_times"`
	UpcomingRefill *time.Time         `db:"upcoming_refill" json:"upcoming_refill,omitempty"`
}

type CreatePrescriptionRequest struct {
	PatientID      uuid.UUID `json:"patient_id" binding:"required"`
	MedicationName string    `json:"medication_name" binding:"required"`
	Dosage         string    `json:"dosage" binding:"required"`
	Frequency      string    `json:"frequency" binding:"required"`
	StartDate      string    `json:"start_date" binding:"required"`
	EndDate        string    `json:"end_date"`
	RefillTimes    int       `json:"refill_times" binding:"gte=0"`
}

type UpdatePrescriptionRequest struct {
	Status         *PrescriptionStatus `json:"status" binding:"omitempty,oneof=pending active confirmed"`
	RefillTimes    *int                `json:"refill_times" binding:"omitempty,gte=0"`
	UpcomingRefill *string             `json:"upcoming_refill"`
}

type PrescriptionFilters struct {
	PatientID      *uuid.UUID
	DoctorID       *uuid.UUID
	Status         PrescriptionStatus
	UpcomingRefill *time.Time
}

// RefillGroup is one patient/doctor/day bundle of refillable prescriptions.
type RefillGroup struct {
	PatientID        uuid.UUID      `json:"patient_id"`
	DoctorID         uuid.UUID      `json:"doctor_id"`
	DatePrescribed   time.Time      `json:"date_prescribed"`
	PatientFirstName string         `json:"patient_first_name"`
	PatientLastName  string         `json:"patient_last_name"`
	Prescriptions    []Prescription `json:"prescriptions"`
}

// RefillItem selects one prescription for a refill billing batch.
type RefillItem struct {
	PrescriptionID uuid.UUID `json:"prescription_id" binding:"required"`
	StartDate      *string   `json:"start_date"`
}

type RefillBatchRequest struct {
	Items []RefillItem `json:"items" binding:"required,min=1"`
}

type RefillBatchResult struct {
	BillingID uuid.UUID `json:"billing_id"`
	Total     float64   `json:"total"`
}
