package model

import (
	"github.com/google/uuid"
)

type Room struct {
	Base
	DepartmentID *uuid.UUID `db:"department_id" json:"department_id,omitempty"`
	FloorNumber  int        `db:"floor_number" json:"floor_number"`
	Description  string     `db:"description" json:"description,omitempty"`
}

type Department struct {
	Base
	Name string     `db:"name" json:"name"`
	Head *uuid.UUID `db:"head" json:"head,omitempty"`
}
