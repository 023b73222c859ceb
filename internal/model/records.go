package model

import "time"

// Purchase adds equipment to a base. Immutable once created.
type Purchase struct {
	ID              int64     `json:"id"`
	BaseID          int64     `json:"base_id"`
	EquipmentTypeID int64     `json:"equipment_type_id"`
	Quantity        int       `json:"quantity"`
	PurchaseDate    Date      `json:"purchase_date"`
	Notes           string    `json:"notes,omitempty"`
	CreatedBy       int64     `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`

	// Joined fields (not always populated).
	BaseName      string `json:"base_name,omitempty"`
	EquipmentName string `json:"equipment_name,omitempty"`
}

// Transfer statuses.
const (
	TransferPending   = "pending"
	TransferApproved  = "approved"
	TransferCompleted = "completed"
	TransferRejected  = "rejected"
)

// Transfer moves equipment between bases. Only the workflow mutates it.
type Transfer struct {
	ID              int64     `json:"id"`
	FromBaseID      int64     `json:"from_base_id"`
	ToBaseID        int64     `json:"to_base_id"`
	EquipmentTypeID int64     `json:"equipment_type_id"`
	Quantity        int       `json:"quantity"`
	TransferDate    Date      `json:"transfer_date"`
	Status          string    `json:"status"`
	InitiatedBy     int64     `json:"initiated_by"`
	StatusChangedBy *int64    `json:"status_changed_by,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	FromBaseName  string `json:"from_base_name,omitempty"`
	ToBaseName    string `json:"to_base_name,omitempty"`
	EquipmentName string `json:"equipment_name,omitempty"`
}

// Assignment hands equipment from a base to a named person. Immutable once created.
type Assignment struct {
	ID              int64     `json:"id"`
	BaseID          int64     `json:"base_id"`
	EquipmentTypeID int64     `json:"equipment_type_id"`
	Quantity        int       `json:"quantity"`
	AssignmentDate  Date      `json:"assignment_date"`
	PersonnelName   string    `json:"personnel_name"`
	PersonnelRank   string    `json:"personnel_rank,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedBy       int64     `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`

	// Joined fields (not always populated).
	BaseName      string `json:"base_name,omitempty"`
	EquipmentName string `json:"equipment_name,omitempty"`
}

// Expenditure consumes equipment at a base. Immutable once created.
type Expenditure struct {
	ID              int64     `json:"id"`
	BaseID          int64     `json:"base_id"`
	EquipmentTypeID int64     `json:"equipment_type_id"`
	Quantity        int       `json:"quantity"`
	ExpenditureDate Date      `json:"expenditure_date"`
	Reason          string    `json:"reason"`
	CreatedBy       int64     `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`

	// Joined fields (not always populated).
	BaseName      string `json:"base_name,omitempty"`
	EquipmentName string `json:"equipment_name,omitempty"`
}

// Record kinds, used for authorization and list queries.
const (
	KindPurchase    = "purchase"
	KindTransfer    = "transfer"
	KindAssignment  = "assignment"
	KindExpenditure = "expenditure"
)
