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

func (r *prescriptionRepository) Create(ctx context.Context, prescription *model.Prescription) error {
	query := `
		INSERT INTO prescriptions (
			id, patient_id, doctor_id, medication_name, dosage, frequency,
			date_prescribed, start_date, end_date, status, refill_times,
			upcoming_refill, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	prescription.ID = uuid.New()
	prescription.CreatedAt = time.Now()
	prescription.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		prescription.ID,
		prescription.PatientID,
		prescription.DoctorID,
		prescription.MedicationName,
		prescription.Dosage,
		prescription.Frequency,
		prescription.DatePrescribed,
		prescription.StartDate,
		prescription.EndDate,
		prescription.Status,
		prescription.RefillTimes,
		prescription.UpcomingRefill,
		prescription.CreatedAt,
		prescription.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create prescription: %w", err)
	}
	return nil
}

const prescriptionColumns = `
	id, patient_id, doctor_id, billing_id, medication_name, dosage,
	frequency, date_prescribed, start_date, end_date, status,
	refill_times, upcoming_refill, created_at, updated_at
`

func (r *prescriptionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	query := `SELECT ` + prescriptionColumns + ` FROM prescriptions WHERE id = $1`

	var prescription model.Prescription
	err := r.db.GetContext(ctx, &prescription, query, id)
	if err != nil {
		return nil, translateErr(err)
	}
	return &prescription, nil
}

func (r *prescriptionRepository) List(ctx context.Context, filters *model.PrescriptionFilters) ([]*model.Prescription, error) {
	query := `SELECT ` + prescriptionColumns + ` FROM prescriptions WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.PatientID != nil {
			query += fmt.Sprintf(" AND patient_id = $%d", argCount)
			args = append(args, *filters.PatientID)
			argCount++
		}
		if filters.DoctorID != nil {
			query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
			args = append(args, *filters.DoctorID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if filters.UpcomingRefill != nil {
			query += fmt.Sprintf(" AND upcoming_refill::date = $%d", argCount)
			args = append(args, *filters.UpcomingRefill)
			argCount++
		}
	}

	query += " ORDER BY date_prescribed DESC"

	var prescriptions []*model.Prescription
	err := r.db.SelectContext(ctx, &prescriptions, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}

func (r *prescriptionRepository) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePrescriptionRequest) error {
	query := `UPDATE prescriptions SET updated_at = $1`
	args := []interface{}{time.Now()}
	argCount := 2

	if req.Status != nil {
		query += fmt.Sprintf(", status = $%d", argCount)
		args = append(args, *req.Status)
		argCount++
	}
	if req.RefillTimes != nil {
		query += fmt.Sprintf(", refill_times = $%d", argCount)
		args = append(args, *req.RefillTimes)
		argCount++
	}
	if req.UpcomingRefill != nil {
		refill, err := time.Parse(model.DateLayout, *req.UpcomingRefill)
		if err != nil {
			return fmt.Errorf("invalid upcoming refill date: %w", err)
		}
		query += fmt.Sprintf(", upcoming_refill = $%d", argCount)
		args = append(args, refill)
		argCount++
	}

	query += fmt.Sprintf(" WHERE id = $%d", argCount)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update prescription: %w", err)
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

func (r *prescriptionRepository) Confirm(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE prescriptions
		SET status = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, model.PrescriptionStatusConfirmed, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to confirm prescription: %w", err)
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

// ListRefillGroups returns refillable prescriptions bundled per patient,
// doctor and prescription day, which is how the pharmacy works a refill queue.
func (r *prescriptionRepository) ListRefillGroups(ctx context.Context) ([]*model.RefillGroup, error) {
	query := `
		SELECT p.id, p.patient_id, p.doctor_id, p.billing_id, p.medication_name,
			   p.dosage, p.frequency, p.date_prescribed, p.start_date, p.end_date,
			   p.status, p.refill_times, p.upcoming_refill, p.created_at, p.updated_at,
			   u.first_name AS patient_first_name, u.last_name AS patient_last_name
		FROM prescriptions p
		JOIN users u ON u.id = p.patient_id
		WHERE p.refill_times > 0
		AND p.status = $1
		ORDER BY p.patient_id, p.doctor_id, p.date_prescribed, p.medication_name
	`

	type refillRow struct {
		model.Prescription
		PatientFirstName string `db:"patient_first_name"`
		PatientLastName  string `db:"patient_last_name"`
	}

	var rows []refillRow
	if err := r.db.SelectContext(ctx, &rows, query, model.PrescriptionStatusActive); err != nil {
		return nil, fmt.Errorf("failed to list refill groups: %w", err)
	}

	var groups []*model.RefillGroup
	var current *model.RefillGroup
	for _, row := range rows {
		day := row.DatePrescribed.Truncate(24 * time.Hour)
		if current == nil ||
			current.PatientID != row.PatientID ||
			current.DoctorID != row.DoctorID ||
			!current.DatePrescribed.Equal(day) {
			current = &model.RefillGroup{
				PatientID:        row.PatientID,
				DoctorID:         row.DoctorID,
				DatePrescribed:   day,
				PatientFirstName: row.PatientFirstName,
				PatientLastName:  row.PatientLastName,
			}
			groups = append(groups, current)
		}
		current.Prescriptions = append(current.Prescriptions, row.Prescription)
	}
	return groups, nil
}

// CreateRefillBilling prices a batch of refills against the pharmacy stock,
// writes one billing row for the batch and links every prescription to it
// while decrementing its refill counter. The whole batch is one transaction.
func (r *prescriptionRepository) CreateRefillBilling(ctx context.Context, items []model.RefillItem) (*model.RefillBatchResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("refill batch cannot be empty")
	}

	var result model.RefillBatchResult

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		now := time.Now()
		var patientID uuid.UUID
		var total float64

		type pricedItem struct {
			prescriptionID uuid.UUID
			startDate      *time.Time
		}
		priced := make([]pricedItem, 0, len(items))

		for _, item := range items {
			var p model.Prescription
			getQuery := `
				SELECT ` + prescriptionColumns + `
				FROM prescriptions
				WHERE id = $1
				FOR UPDATE
			`
			if err := tx.GetContext(ctx, &p, getQuery, item.PrescriptionID); err != nil {
				return translateErr(err)
			}
			if p.RefillTimes <= 0 {
				return fmt.Errorf("prescription %s has no refills left", p.ID)
			}
			if patientID == uuid.Nil {
				patientID = p.PatientID
			} else if patientID != p.PatientID {
				return fmt.Errorf("refill batch spans multiple patients")
			}

			var unitPrice float64
			priceQuery := `SELECT unit_price FROM medications WHERE name = $1`
			if err := tx.GetContext(ctx, &unitPrice, priceQuery, p.MedicationName); err != nil {
				return fmt.Errorf("failed to price medication %q: %w", p.MedicationName, translateErr(err))
			}
			total += unitPrice

			var start *time.Time
			if item.StartDate != nil {
				parsed, err := time.Parse(model.DateLayout, *item.StartDate)
				if err != nil {
					return fmt.Errorf("invalid refill start date: %w", err)
				}
				start = &parsed
			}
			priced = append(priced, pricedItem{prescriptionID: p.ID, startDate: start})
		}

		billingID := uuid.New()
		billingQuery := `
			INSERT INTO billings (
				id, patient_id, amount, payment_status, payment_method,
				invoice_date, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		if _, err := tx.ExecContext(ctx, billingQuery,
			billingID, patientID, total,
			model.PaymentStatusUnpaid, model.PaymentMethodCash,
			now, now, now,
		); err != nil {
			return fmt.Errorf("failed to create refill billing: %w", err)
		}

		updateQuery := `
			UPDATE prescriptions
			SET billing_id = $1,
				refill_times = refill_times - 1,
				upcoming_refill = COALESCE($2, upcoming_refill),
				updated_at = $3
			WHERE id = $4
		`
		for _, item := range priced {
			if _, err := tx.ExecContext(ctx, updateQuery,
				billingID, item.startDate, now, item.prescriptionID,
			); err != nil {
				return fmt.Errorf("failed to link prescription to billing: %w", err)
			}
		}

		result.BillingID = billingID
		result.Total = total
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DecrementDueRefills clears refill reminders whose date has passed. Run
// daily by the background worker.
func (r *prescriptionRepository) DecrementDueRefills(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE prescriptions
		SET refill_times = refill_times - 1,
			upcoming_refill = NULL,
			updated_at = $1
		WHERE upcoming_refill <= $1
		AND refill_times > 0
	`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to decrement due refills: %w", err)
	}
	return result.RowsAffected()
}
