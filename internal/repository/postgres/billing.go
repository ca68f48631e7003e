package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/guhospital/hospital-api/internal/model"
	"github.com/guhospital/hospital-api/internal/repository"
)

const billingDetailColumns = `
	b.id, b.patient_id, b.amount, b.payment_status, b.payment_method,
	b.invoice_date, b.payment_date, b.insurance_id, b.created_at, b.updated_at,
	u.first_name AS patient_first_name, u.last_name AS patient_last_name,
	u.national_id AS patient_national_id, u.phone AS patient_phone,
	u.email AS patient_email,
	(i.coverage_details->>'percentage')::float AS coverage_percentage,
	a.date AS appointment_date, a.time AS appointment_time,
	du.first_name AS doctor_first_name, du.last_name AS doctor_last_name
`

const billingDetailFrom = `
	FROM billings b
	JOIN users u ON u.id = b.patient_id
	LEFT JOIN insurances i ON i.id = b.insurance_id
	LEFT JOIN appointments a ON a.billing_id = b.id
	LEFT JOIN users du ON du.id = a.doctor_id
`

func (r *billingRepository) Get(ctx context.Context, id uuid.UUID) (*model.BillingDetail, error) {
	query := `SELECT ` + billingDetailColumns + billingDetailFrom + ` WHERE b.id = $1`

	var detail model.BillingDetail
	err := r.db.GetContext(ctx, &detail, query, id)
	if err != nil {
		return nil, translateErr(err)
	}
	return &detail, nil
}

func (r *billingRepository) List(ctx context.Context, filters *model.BillingFilters) ([]*model.BillingDetail, error) {
	query := `SELECT ` + billingDetailColumns + billingDetailFrom + ` WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.Date != nil {
			query += fmt.Sprintf(" AND b.invoice_date::date = $%d", argCount)
			args = append(args, *filters.Date)
			argCount++
		}
		if filters.PatientID != nil {
			query += fmt.Sprintf(" AND b.patient_id = $%d", argCount)
			args = append(args, *filters.PatientID)
			argCount++
		}
		if filters.PatientName != "" {
			query += fmt.Sprintf(" AND (u.first_name ILIKE $%d OR u.last_name ILIKE $%d)", argCount, argCount)
			args = append(args, filters.PatientName+"%")
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND b.payment_status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
	}

	query += " ORDER BY b.invoice_date DESC"

	var billings []*model.BillingDetail
	err := r.db.SelectContext(ctx, &billings, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list billings: %w", err)
	}
	return billings, nil
}

func (r *billingRepository) ListPending(ctx context.Context) ([]*model.Billing, error) {
	query := `
		SELECT id, patient_id, amount, payment_status, payment_method,
			   invoice_date, payment_date, insurance_id, created_at, updated_at
		FROM billings
		WHERE payment_status = $1
		ORDER BY invoice_date ASC
	`
	var billings []*model.Billing
	err := r.db.SelectContext(ctx, &billings, query, model.PaymentStatusUnpaid)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending billings: %w", err)
	}
	return billings, nil
}

func (r *billingRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, status model.PaymentStatus) ([]*model.Billing, error) {
	query := `
		SELECT id, patient_id, amount, payment_status, payment_method,
			   invoice_date, payment_date, insurance_id, created_at, updated_at
		FROM billings
		WHERE patient_id = $1
	`
	args := []interface{}{patientID}
	argCount := 2

	if status != "" {
		query += fmt.Sprintf(" AND payment_status = $%d", argCount)
		args = append(args, status)
		argCount++
	}

	query += " ORDER BY invoice_date DESC"

	var billings []*model.Billing
	err := r.db.SelectContext(ctx, &billings, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient billings: %w", err)
	}
	return billings, nil
}

func (r *billingRepository) MarkPaid(ctx context.Context, id uuid.UUID, method model.PaymentMethod) error {
	query := `
		UPDATE billings
		SET payment_status = $1, payment_method = $2, payment_date = $3, updated_at = $3
		WHERE id = $4 AND payment_status = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		model.PaymentStatusPaid, method, time.Now(), id, model.PaymentStatusUnpaid,
	)
	if err != nil {
		return fmt.Errorf("failed to mark billing paid: %w", err)
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

func (r *billingRepository) GetInsurance(ctx context.Context, insuranceID uuid.UUID) (*model.Insurance, error) {
	query := `
		SELECT id, provider, policy_number, coverage_details, expiry_date,
			   created_at, updated_at
		FROM insurances
		WHERE id = $1
	`
	var insurance model.Insurance
	err := r.db.GetContext(ctx, &insurance, query, insuranceID)
	if err != nil {
		return nil, translateErr(err)
	}
	return &insurance, nil
}

// ListLines collects every service charged against a billing row: the
// appointment consultation, prescribed medications and lab or radiology work.
func (r *billingRepository) ListLines(ctx context.Context, billingID uuid.UUID) ([]model.BillingLine, error) {
	query := `
		SELECT 'Consultation with Dr. ' || du.first_name || ' ' || du.last_name AS description,
			   d.fee AS amount
		FROM appointments a
		JOIN doctors d ON d.user_id = a.doctor_id
		JOIN users du ON du.id = a.doctor_id
		WHERE a.billing_id = $1

		UNION ALL

		SELECT 'Medication: ' || p.medication_name AS description,
			   COALESCE(m.unit_price, 0) AS amount
		FROM prescriptions p
		LEFT JOIN medications m ON m.name = p.medication_name
		WHERE p.billing_id = $1

		UNION ALL

		SELECT initcap(o.kind::text) || ': ' || c.name AS description,
			   c.cost AS amount
		FROM orders o
		JOIN catalog_items c ON c.id = o.catalog_item_id
		WHERE o.billing_id = $1
	`
	var lines []model.BillingLine
	err := r.db.SelectContext(ctx, &lines, query, billingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list billing lines: %w", err)
	}
	return lines, nil
}
