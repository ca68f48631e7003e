package postgres

import (
	"context"
	"fmt"

	"github.com/guhospital/hospital-api/internal/model"
)

// ListAvailable returns rooms with no claim on them: no scheduled
// appointment, no lab or radiology catalog assignment, no doctor's office.
func (r *roomRepository) ListAvailable(ctx context.Context) ([]*model.Room, error) {
	query := `
		SELECT r.id, r.department_id, r.floor_number, r.description,
			   r.created_at, r.updated_at
		FROM rooms r
		WHERE NOT EXISTS (
			SELECT 1 FROM appointments a
			WHERE a.room_id = r.id AND a.status = 'scheduled'
		)
		AND NOT EXISTS (
			SELECT 1 FROM catalog_items c WHERE c.room_id = r.id
		)
		AND NOT EXISTS (
			SELECT 1 FROM doctors d WHERE d.room_id = r.id
		)
		ORDER BY r.floor_number, r.description
	`
	var rooms []*model.Room
	err := r.db.SelectContext(ctx, &rooms, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list available rooms: %w", err)
	}
	return rooms, nil
}

func (r *roomRepository) ListDepartments(ctx context.Context) ([]*model.Department, error) {
	query := `
		SELECT id, name, head, created_at, updated_at
		FROM departments
		ORDER BY name
	`
	var departments []*model.Department
	err := r.db.SelectContext(ctx, &departments, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return departments, nil
}
