package model

import (
	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
)

type OrderKind string

const (
	OrderKindLab       OrderKind = "lab"
	OrderKindRadiology OrderKind = "radiology"
)

// CatalogItem is one orderable lab test or radiology scan.
type CatalogItem struct {
	Base
	Kind        OrderKind  `db:"kind" json:"kind"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description,omitempty"`
	Cost        float64    `db:"cost" json:"cost"`
	RoomID      *uuid.UUID `db:"room_id" json:"room_id,omitempty"`
}

// Order is a lab or radiology order placed for a patient.
type Order struct {
	Base
	Kind          OrderKind   `db:"kind" json:"kind"`
	PatientID     uuid.UUID   `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID   `db:"doctor_id" json:"doctor_id"`
	CatalogItemID uuid.UUID   `db:"catalog_item_id" json:"catalog_item_id"`
	BillingID     *uuid.UUID  `db:"billing_id" json:"billing_id,omitempty"`
	Status        OrderStatus `db:"status" json:"status"`
	Results       *string     `db:"results" json:"results,omitempty"`
}

// OrderDetail joins the catalog item name for report views.
type OrderDetail struct {
	Order
	ItemName string `db:"item_name" json:"item_name"`
	ItemCost float64 `db:"item_cost" json:"item_cost"`
}

type CreateOrderRequest struct {
	PatientID     uuid.UUID `json:"patient_id" binding:"required"`
	CatalogItemID uuid.UUID `json:"catalog_item_id" binding:"required"`
}

type CompleteOrderRequest struct {
	Results string `json:"results" binding:"required"`
}

// OrderResult carries the identifiers created when an order is placed.
type OrderResult struct {
	OrderID   uuid.UUID `json:"order_id"`
	BillingID uuid.UUID `json:"billing_id"`
}

type CatalogSuggestion struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
}
