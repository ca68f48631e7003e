package model

import (
	"github.com/google/uuid"
)

type PatientStatus string

const (
	PatientStatusActive    PatientStatus = "active"
	PatientStatusAdmitted  PatientStatus = "admitted"
	PatientStatusDischarged PatientStatus = "discharged"
)

// Patient extends a user row with clinical state.
type Patient struct {
	UserID      uuid.UUID     `db:"user_id" json:"user_id"`
	InsuranceID *uuid.UUID    `db:"insurance_id" json:"insurance_id,omitempty"`
	Status      PatientStatus `db:"status" json:"status"`
	Diagnosis   *string       `db:"diagnosis" json:"diagnosis,omitempty"`
}

// PatientRecord is a user row joined with its patient extension.
type PatientRecord struct {
	User
	InsuranceID *uuid.UUID    `db:"insurance_id" json:"insurance_id,omitempty"`
	Status      PatientStatus `db:"patient_status" json:"patient_status"`
	Diagnosis   *string       `db:"diagnosis" json:"diagnosis,omitempty"`
}

type RegisterPatientRequest struct {
	NationalID string `json:"national_id" binding:"required,national_id" form:"national_id"`
	FirstName  string `json:"first_name" binding:"required" form:"first_name"`
	MiddleName string `json:"middle_name" form:"middle_name"`
	LastName   string `json:"last_name" binding:"required" form:"last_name"`
	Email      string `json:"email" binding:"required,email" form:"email"`
	Phone      string `json:"phone" binding:"required" form:"phone"`
	Address    string `json:"address" form:"address"`
	Gender     string `json:"gender" binding:"omitempty,oneof=male female other" form:"gender"`

	// Optional insurance enrollment, only applied when all three are present.
	InsuranceProvider  string  `json:"insurance_provider" form:"insurance_provider"`
	CoveragePercentage float64 `json:"coverage_percentage" form:"coverage_percentage"`
	InsuranceExpiry    string  `json:"insurance_expiry" form:"insurance_expiry"`
}

type UpdateInsuranceRequest struct {
	Provider           string  `json:"provider" binding:"required"`
	PolicyNumber       string  `json:"policy_number"`
	CoveragePercentage float64 `json:"coverage_percentage" binding:"required,gt=0,lte=100"`
	ExpiryDate         string  `json:"expiry_date" binding:"required"`
}

type Allergy struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Name      string    `db:"name" json:"name"`
	Reaction  string    `db:"reaction" json:"reaction,omitempty"`
}

type ReplaceAllergiesRequest struct {
	Allergies []struct {
		Name     string `json:"name" binding:"required"`
		Reaction string `json:"reaction"`
	} `json:"allergies" binding:"required"`
}
