package model

import (
	"time"

	"github.com/google/uuid"
)

type AnnouncementPriority string

const (
	PriorityLow    AnnouncementPriority = "low"
	PriorityNormal AnnouncementPriority = "normal"
	PriorityHigh   AnnouncementPriority = "high"
)

type Announcement struct {
	Base
	Title      string               `db:"title" json:"title"`
	Content    string               `db:"content" json:"content"`
	TargetRole *Role                `db:"target_role" json:"target_role,omitempty"`
	TargetUser *uuid.UUID           `db:"target_user" json:"target_user,omitempty"`
	Priority   AnnouncementPriority `db:"priority" json:"priority"`
	CreatedBy  uuid.UUID            `db:"created_by" json:"created_by"`
	StartDate  *time.Time           `db:"start_date" json:"start_date,omitempty"`
	EndDate    *time.Time           `db:"end_date" json:"end_date,omitempty"`
}

// AnnouncementDetail joins the author name for notification feeds.
type AnnouncementDetail struct {
	Announcement
	CreatedByName string `db:"created_by_name" json:"created_by_name"`
}

type CreateAnnouncementRequest struct {
	Title           string               `json:"title" binding:"required"`
	Content         string               `json:"content" binding:"required"`
	TargetRole      *Role                `json:"target_role" binding:"omitempty,oneof=patient doctor receptionist pharmacist"`
	TargetUserEmail string               `json:"target_user_email" binding:"omitempty,email"`
	Priority        AnnouncementPriority `json:"priority" binding:"omitempty,oneof=low normal high"`
	StartDate       *string              `json:"start_date"`
	EndDate         *string              `json:"end_date"`
}

// NotificationEvent is the payload published for in-app delivery.
type NotificationEvent struct {
	ID             uuid.UUID `json:"id"`
	AnnouncementID uuid.UUID `json:"announcement_id"`
	UserID         uuid.UUID `json:"user_id"`
	Type           string    `json:"type"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
