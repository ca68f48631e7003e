package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

type PaymentMethod string

const (
	PaymentMethodCash      PaymentMethod = "cash"
	PaymentMethodCard      PaymentMethod = "card"
	PaymentMethodInsurance PaymentMethod = "insurance"
)

type Billing struct {
	Base
	PatientID     uuid.UUID     `db:"patient_id" json:"patient_id"`
	Amount        float64       `db:"amount" json:"amount"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"payment_method"`
	InvoiceDate   time.Time     `db:"invoice_date" json:"invoice_date"`
	PaymentDate   *time.Time    `db:"payment_date" json:"payment_date,omitempty"`
	InsuranceID   *uuid.UUID    `db:"insurance_id" json:"insurance_id,omitempty"`
}

// BillingDetail joins patient identity, and the appointment when the billing
// was opened for one, for list views and invoices.
type BillingDetail struct {
	Billing
	PatientFirstName   string     `db:"patient_first_name" json:"patient_first_name"`
	PatientLastName    string     `db:"patient_last_name" json:"patient_last_name"`
	PatientNationalID  string     `db:"patient_national_id" json:"patient_national_id"`
	PatientPhone       string     `db:"patient_phone" json:"patient_phone"`
	PatientEmail       string     `db:"patient_email" json:"patient_email"`
	CoveragePercentage *float64   `db:"coverage_percentage" json:"coverage_percentage,omitempty"`
	AppointmentDate    *time.Time `db:"appointment_date" json:"appointment_date,omitempty"`
	AppointmentTime    *string    `db:"appointment_time" json:"appointment_time,omitempty"`
	DoctorFirstName    *string    `db:"doctor_first_name" json:"doctor_first_name,omitempty"`
	DoctorLastName     *string    `db:"doctor_last_name" json:"doctor_last_name,omitempty"`
}

type BillingFilters struct {
	Date        *time.Time
	PatientID   *uuid.UUID
	PatientName string
	Status      PaymentStatus
}

type ProcessPaymentRequest struct {
	PaymentMethod PaymentMethod `json:"payment_method" binding:"required,oneof=cash card insurance"`
	PatientID     uuid.UUID     `json:"patient_id" binding:"required"`
}

// Coverage is the outcome of applying an insurance percentage to an amount.
type Coverage struct {
	CoveredAmount   float64 `json:"covered_amount"`
	RemainingAmount float64 `json:"remaining_amount"`
}

// CoverageDetails is the JSON document stored on an insurance row.
type CoverageDetails struct {
	Percentage float64 `json:"percentage"`
	Image      string  `json:"image,omitempty"`
}

func (c CoverageDetails) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *CoverageDetails) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	case nil:
		*c = CoverageDetails{}
		return nil
	default:
		return fmt.Errorf("unsupported coverage details type %T", src)
	}
}

type Insurance struct {
	Base
	Provider        string          `db:"provider" json:"provider"`
	PolicyNumber    string          `db:"policy_number" json:"policy_number"`
	CoverageDetails CoverageDetails `db:"coverage_details" json:"coverage_details"`
	ExpiryDate      time.Time       `db:"expiry_date" json:"expiry_date"`
}

// Expired reports whether the policy lapsed before now.
func (i *Insurance) Expired(now time.Time) bool {
	return i.ExpiryDate.Before(now)
}

// BillingLine is one priced row on an invoice or billing summary.
type BillingLine struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// BillingSummary aggregates every service charged against one billing row.
type BillingSummary struct {
	Billing  *BillingDetail `json:"billing"`
	Lines    []BillingLine  `json:"lines"`
	Coverage *Coverage      `json:"coverage,omitempty"`
	Total    float64        `json:"total"`
}
