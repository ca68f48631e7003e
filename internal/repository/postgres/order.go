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

func (r *orderRepository) GetCatalogItem(ctx context.Context, id uuid.UUID) (*model.CatalogItem, error) {
	query := `
		SELECT id, kind, name, description, cost, room_id, created_at, updated_at
		FROM catalog_items
		WHERE id = $1
	`
	var item model.CatalogItem
	err := r.db.GetContext(ctx, &item, query, id)
	if err != nil {
		return nil, translateErr(err)
	}
	return &item, nil
}

func (r *orderRepository) SuggestCatalog(ctx context.Context, kind model.OrderKind, prefix string) ([]*model.CatalogSuggestion, error) {
	query := `
		SELECT id, name, description
		FROM catalog_items
		WHERE kind = $1
		AND name ILIKE $2
		ORDER BY name
		LIMIT 10
	`
	var suggestions []*model.CatalogSuggestion
	err := r.db.SelectContext(ctx, &suggestions, query, kind, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to suggest catalog items: %w", err)
	}
	return suggestions, nil
}

// CreateWithBilling places the order and its billing row in one transaction,
// same shape as appointment booking.
func (r *orderRepository) CreateWithBilling(ctx context.Context, order *model.Order, billing *model.Billing) error {
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

		order.ID = uuid.New()
		order.BillingID = &billing.ID
		order.Status = model.OrderStatusPending
		order.CreatedAt = now
		order.UpdatedAt = now

		orderQuery := `
			INSERT INTO orders (
				id, kind, patient_id, doctor_id, catalog_item_id,
				billing_id, status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		if _, err := tx.ExecContext(ctx, orderQuery,
			order.ID,
			order.Kind,
			order.PatientID,
			order.DoctorID,
			order.CatalogItemID,
			order.BillingID,
			order.Status,
			order.CreatedAt,
			order.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		return nil
	})
}

const orderDetailColumns = `
	o.id, o.kind, o.patient_id, o.doctor_id, o.catalog_item_id,
	o.billing_id, o.status, o.results, o.created_at, o.updated_at,
	c.name AS item_name, c.cost AS item_cost
`

func (r *orderRepository) Get(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error) {
	query := `
		SELECT ` + orderDetailColumns + `
		FROM orders o
		JOIN catalog_items c ON c.id = o.catalog_item_id
		WHERE o.id = $1
	`
	var detail model.OrderDetail
	err := r.db.GetContext(ctx, &detail, query, id)
	if err != nil {
		return nil, translateErr(err)
	}
	return &detail, nil
}

func (r *orderRepository) ListByStatus(ctx context.Context, kind model.OrderKind, status model.OrderStatus) ([]*model.OrderDetail, error) {
	query := `
		SELECT ` + orderDetailColumns + `
		FROM orders o
		JOIN catalog_items c ON c.id = o.catalog_item_id
		WHERE o.kind = $1
		AND o.status = $2
		ORDER BY o.created_at DESC
	`
	var details []*model.OrderDetail
	err := r.db.SelectContext(ctx, &details, query, kind, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return details, nil
}

func (r *orderRepository) Complete(ctx context.Context, id uuid.UUID, results string) error {
	query := `
		UPDATE orders
		SET status = $1, results = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		model.OrderStatusCompleted, results, time.Now(), id, model.OrderStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to complete order: %w", err)
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
