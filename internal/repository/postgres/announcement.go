package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/guhospital/hospital-api/internal/model"
)

func (r *announcementRepository) Create(ctx context.Context, announcement *model.Announcement) error {
	query := `
		INSERT INTO announcements (
			id, title, content, target_role, target_user, priority,
			created_by, start_date, end_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	announcement.ID = uuid.New()
	announcement.CreatedAt = time.Now()
	announcement.UpdatedAt = time.Now()
	if announcement.Priority == "" {
		announcement.Priority = model.PriorityNormal
	}

	_, err := r.db.ExecContext(ctx, query,
		announcement.ID,
		announcement.Title,
		announcement.Content,
		announcement.TargetRole,
		announcement.TargetUser,
		announcement.Priority,
		announcement.CreatedBy,
		announcement.StartDate,
		announcement.EndDate,
		announcement.CreatedAt,
		announcement.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create announcement: %w", err)
	}
	return nil
}

// ListForUser returns announcements visible to one user: broadcasts, the
// user's role feed and direct messages, restricted to the active window.
func (r *announcementRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.AnnouncementDetail, error) {
	query := `
		SELECT a.id, a.title, a.content, a.target_role, a.target_user,
			   a.priority, a.created_by, a.start_date, a.end_date,
			   a.created_at, a.updated_at,
			   cu.first_name || ' ' || cu.last_name AS created_by_name
		FROM announcements a
		JOIN users cu ON cu.id = a.created_by
		JOIN users u ON u.id = $1
		WHERE (
			(a.target_role IS NULL AND a.target_user IS NULL)
			OR a.target_role = u.role
			OR a.target_user = u.id
		)
		AND (a.start_date IS NULL OR a.start_date <= NOW())
		AND (a.end_date IS NULL OR a.end_date >= NOW())
		ORDER BY a.created_at DESC
	`
	var announcements []*model.AnnouncementDetail
	err := r.db.SelectContext(ctx, &announcements, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	return announcements, nil
}

func (r *announcementRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM announcements WHERE end_date IS NOT NULL AND end_date < $1`

	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired announcements: %w", err)
	}
	return result.RowsAffected()
}
