package postgres

import (
	"context"
	"fmt"

	"github.com/guhospital/hospital-api/internal/model"
)

const medicationColumns = `
	id, name, stock_level, reorder_level, expiration_date, unit_price,
	created_at, updated_at
`

func (r *pharmacyRepository) ListMedications(ctx context.Context, namePrefix string) ([]*model.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications`
	args := []interface{}{}

	if namePrefix != "" {
		query += ` WHERE name ILIKE $1`
		args = append(args, namePrefix+"%")
	}

	query += ` ORDER BY name`

	var medications []*model.Medication
	err := r.db.SelectContext(ctx, &medications, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return medications, nil
}

func (r *pharmacyRepository) GetByName(ctx context.Context, name string) (*model.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications WHERE name = $1`

	var medication model.Medication
	err := r.db.GetContext(ctx, &medication, query, name)
	if err != nil {
		return nil, translateErr(err)
	}
	return &medication, nil
}

func (r *pharmacyRepository) StockLevels(ctx context.Context) ([]*model.StockLevel, error) {
	query := `SELECT id, name, stock_level FROM medications ORDER BY name`

	var levels []*model.StockLevel
	err := r.db.SelectContext(ctx, &levels, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock levels: %w", err)
	}
	return levels, nil
}

func (r *pharmacyRepository) LowStock(ctx context.Context) ([]*model.LowStockItem, error) {
	query := `
		SELECT id, name, stock_level, reorder_level
		FROM medications
		WHERE stock_level <= reorder_level
		ORDER BY stock_level ASC
	`
	var items []*model.LowStockItem
	err := r.db.SelectContext(ctx, &items, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock: %w", err)
	}
	return items, nil
}

func (r *pharmacyRepository) ExpiringWithin(ctx context.Context, days int) ([]*model.ExpirationAlert, error) {
	query := `
		SELECT id, name, stock_level, expiration_date
		FROM medications
		WHERE expiration_date <= NOW() + ($1 || ' days')::interval
		ORDER BY expiration_date ASC
	`
	var alerts []*model.ExpirationAlert
	err := r.db.SelectContext(ctx, &alerts, query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring medications: %w", err)
	}
	return alerts, nil
}

func (r *pharmacyRepository) Suggest(ctx context.Context, prefix string) ([]*model.MedicationSuggestion, error) {
	query := `
		SELECT id, name, stock_level
		FROM medications
		WHERE name ILIKE $1
		ORDER BY name
		LIMIT 10
	`
	var suggestions []*model.MedicationSuggestion
	err := r.db.SelectContext(ctx, &suggestions, query, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to suggest medications: %w", err)
	}
	return suggestions, nil
}
