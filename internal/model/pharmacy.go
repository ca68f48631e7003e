package model

import (
	"time"

	"github.com/google/uuid"
)

type MedicationStatus string

const (
	MedicationStatusAvailable  MedicationStatus = "Available"
	MedicationStatusOutOfStock MedicationStatus = "Out of Stock"
)

type Medication struct {
	Base
	Name           string    `db:"name" json:"name"`
	StockLevel     int       `db:"stock_level" json:"stock_level"`
	ReorderLevel   int       `db:"reorder_level" json:"reorder_level"`
	ExpirationDate time.Time `db:"expiration_date" json:"expiration_date"`
	UnitPrice      float64   `db:"unit_price" json:"unit_price"`
}

// StockStatus derives availability from the stock level.
func (m *Medication) StockStatus() MedicationStatus {
	if m.StockLevel > 0 {
		return MedicationStatusAvailable
	}
	return MedicationStatusOutOfStock
}

type StockLevel struct {
	MedicationID uuid.UUID `db:"id" json:"medication_id"`
	Name         string    `db:"name" json:"name"`
	StockLevel   int       `db:"stock_level" json:"stock_level"`
}

type LowStockItem struct {
	MedicationID uuid.UUID `db:"id" json:"medication_id"`
	Name         string    `db:"name" json:"name"`
	StockLevel   int       `db:"stock_level" json:"stock_level"`
	ReorderLevel int       `db:"reorder_level" json:"reorder_level"`
}

type ExpirationAlert struct {
	MedicationID   uuid.UUID `db:"id" json:"medication_id"`
	Name           string    `db:"name" json:"name"`
	StockLevel     int       `db:"stock_level" json:"stock_level"`
	ExpirationDate time.Time `db:"expiration_date" json:"expiration_date"`
}

type MedicationSuggestion struct {
	MedicationID uuid.UUID `db:"id" json:"medication_id"`
	Name         string    `db:"name" json:"name"`
	StockLevel   int       `db:"stock_level" json:"stock_level"`
}
