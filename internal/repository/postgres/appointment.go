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

// CreateWithBilling books an appointment and its billing row in one
// transaction. Either both rows exist afterwards or neither does.
func (r *appointmentRepository) CreateWithBilling(ctx context.Context, appointment *model.Appointment, billing *model.Billing) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		now := time.Now()

		billing.ID = uuid.New()
		billing.CreatedAt = now
		billing.UpdatedAt = now

		billingQuery := `
			INSERT INTO billings (
				id, patient_id, amount, payment_status, payment_method,
				invoice_date, insurance_id, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		if _, err := tx.ExecContext(ctx, billingQuery,
			billing.ID,
			billing.PatientID,
			billing.Amount,
			billing.PaymentStatus,
			billing.PaymentMethod,
			billing.InvoiceDate,
			billing.InsuranceID,
			billing.CreatedAt,
			billing.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create billing: %w", err)
		}

		appointment.ID = uuid.New()
		appointment.BillingID = &billing.ID
		appointment.Status = model.AppointmentStatusScheduled
		appointment.CreatedAt = now
		appointment.UpdatedAt = now

		appointmentQuery := `
			INSERT INTO appointments (
				id, patient_id, doctor_id, room_id, billing_id,
				date, time, status, notes, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`
		if _, err := tx.ExecContext(ctx, appointmentQuery,
			appointment.ID,
			appointment.PatientID,
			appointment.DoctorID,
			appointment.RoomID,
			appointment.BillingID,
			appointment.Date,
			appointment.Time,
			appointment.Status,
			appointment.Notes,
			appointment.CreatedAt,
			appointment.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}

		return nil
	})
}

// CancelWithBilling flips the appointment to cancelled and deletes the unpaid
// billing row it references, all in one transaction. A second cancellation
// finds no billing row and fails with ErrNotFound. The returned appointment
// still carries the old billing id so callers can clean up invoices.
func (r *appointmentRepository) CancelWithBilling(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var appointment model.Appointment

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		getQuery := `
			SELECT id, patient_id, doctor_id, room_id, billing_id,
				   date, time, status, notes, created_at, updated_at
			FROM appointments
			WHERE id = $1
			FOR UPDATE
		`
		if err := tx.GetContext(ctx, &appointment, getQuery, id); err != nil {
			return translateErr(err)
		}

		if appointment.Status == model.AppointmentStatusCancelled || appointment.BillingID == nil {
			return repository.ErrNotFound
		}

		updateQuery := `
			UPDATE appointments
			SET status = $1, billing_id = NULL, updated_at = $2
			WHERE id = $3
		`
		if _, err := tx.ExecContext(ctx, updateQuery,
			model.AppointmentStatusCancelled, time.Now(), id,
		); err != nil {
			return fmt.Errorf("failed to cancel appointment: %w", err)
		}

		deleteQuery := `DELETE FROM billings WHERE id = $1`
		result, err := tx.ExecContext(ctx, deleteQuery, *appointment.BillingID)
		if err != nil {
			return fmt.Errorf("failed to delete billing: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return repository.ErrNotFound
		}

		appointment.Status = model.AppointmentStatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, patient_id, doctor_id, room_id, billing_id,
			   date, time, status, notes, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if err != nil {
		return nil, translateErr(err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Reschedule(ctx context.Context, id uuid.UUID, date time.Time, slot string) error {
	query := `
		UPDATE appointments
		SET date = $1, time = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`
	result, err := r.db.ExecContext(ctx, query, date, slot, time.Now(), id, model.AppointmentStatusScheduled)
	if err != nil {
		return fmt.Errorf("failed to reschedule appointment: %w", err)
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

const appointmentDetailColumns = `
	a.id, a.patient_id, a.doctor_id, a.room_id, a.billing_id,
	a.date, a.time, a.status, a.notes, a.created_at, a.updated_at,
	pu.first_name AS patient_first_name, pu.last_name AS patient_last_name,
	du.first_name AS doctor_first_name, du.last_name AS doctor_last_name,
	r.floor_number, r.description AS room_description
`

const appointmentDetailFrom = `
	FROM appointments a
	JOIN users pu ON pu.id = a.patient_id
	JOIN users du ON du.id = a.doctor_id
	LEFT JOIN rooms r ON r.id = a.room_id
`

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.AppointmentDetail, error) {
	query := `SELECT ` + appointmentDetailColumns + appointmentDetailFrom + ` WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.Date != nil {
			query += fmt.Sprintf(" AND a.date = $%d", argCount)
			args = append(args, *filters.Date)
			argCount++
		}
		if filters.Time != "" {
			query += fmt.Sprintf(" AND a.time = $%d", argCount)
			args = append(args, filters.Time)
			argCount++
		}
		if filters.DoctorID != nil {
			query += fmt.Sprintf(" AND a.doctor_id = $%d", argCount)
			args = append(args, *filters.DoctorID)
			argCount++
		}
		if filters.PatientID != nil {
			query += fmt.Sprintf(" AND a.patient_id = $%d", argCount)
			args = append(args, *filters.PatientID)
			argCount++
		}
		if filters.RoomID != nil {
			query += fmt.Sprintf(" AND a.room_id = $%d", argCount)
			args = append(args, *filters.RoomID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND a.status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if filters.PatientName != "" {
			query += fmt.Sprintf(" AND (pu.first_name ILIKE $%d OR pu.last_name ILIKE $%d)", argCount, argCount)
			args = append(args, filters.PatientName+"%")
			argCount++
		}
	}

	query += " ORDER BY a.date ASC, a.time ASC"

	var appointments []*model.AppointmentDetail
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID, filters *model.AppointmentFilters) ([]*model.AppointmentDetail, error) {
	scoped := model.AppointmentFilters{}
	if filters != nil {
		scoped = *filters
	}
	scoped.DoctorID = &doctorID
	return r.List(ctx, &scoped)
}

func (r *appointmentRepository) ListUpcomingForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error) {
	query := `
		SELECT ` + appointmentDetailColumns + appointmentDetailFrom + `
		WHERE a.patient_id = $1
		AND a.status = $2
		AND (a.date + a.time::time) >= NOW()
		ORDER BY a.date ASC, a.time ASC
	`
	var appointments []*model.AppointmentDetail
	err := r.db.SelectContext(ctx, &appointments, query, patientID, model.AppointmentStatusScheduled)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListPastForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error) {
	query := `
		SELECT ` + appointmentDetailColumns + appointmentDetailFrom + `
		WHERE a.patient_id = $1
		AND (a.date + a.time::time) < NOW()
		ORDER BY a.date DESC, a.time DESC
	`
	var appointments []*model.AppointmentDetail
	err := r.db.SelectContext(ctx, &appointments, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list past appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) BookedSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error) {
	query := `
		SELECT time
		FROM appointments
		WHERE doctor_id = $1
		AND date = $2
		AND status = $3
		ORDER BY time ASC
	`
	var slots []string
	err := r.db.SelectContext(ctx, &slots, query, doctorID, date, model.AppointmentStatusScheduled)
	if err != nil {
		return nil, fmt.Errorf("failed to list booked slots: %w", err)
	}
	return slots, nil
}
