package models

import (
	"time"

	"github.com/google/uuid"
)

type TableStatus string

const (
	TableStatusEmpty    TableStatus = "EMPTY"
	TableStatusOccupied TableStatus = "OCCUPIED"
	TableStatusBilled   TableStatus = "BILLED"
)

type Table struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	OutletID  uuid.UUID   `json:"outlet_id" db:"outlet_id"`
	Name      string      `json:"name" db:"name"`
	Status    TableStatus `json:"status" db:"status"`
	Capacity  int         `json:"capacity" db:"capacity"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// DisplayStatus folds BILLED into EMPTY for floor views. The stored status is left as is.
func (t *Table) DisplayStatus() TableStatus {
	if t.Status == TableStatusBilled {
		return TableStatusEmpty
	}
	return t.Status
}

// TableView carries both the stored status and the status shown on the floor plan.
type TableView struct {
	*Table
	DisplayStatus TableStatus `json:"display_status"`
	ActiveOrderID *uuid.UUID  `json:"active_order_id,omitempty"`
}
