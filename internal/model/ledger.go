package model

// MovementKind is the effect a ledger line has on its bucket.
type MovementKind string

const (
	MovementPurchase    MovementKind = "purchase"
	MovementTransferIn  MovementKind = "transfer_in"
	MovementTransferOut MovementKind = "transfer_out"
	MovementAssignment  MovementKind = "assignment"
	MovementExpenditure MovementKind = "expenditure"
)

// Movement is one ledger line derived from a record. A completed transfer
// produces two lines, one per base.
type Movement struct {
	BaseID          int64
	EquipmentTypeID int64
	Kind            MovementKind
	Quantity        int
	Date            Date
	SourceID        int64
}

// Delta is the signed effect of the movement on its bucket's balance.
func (m Movement) Delta() int {
	switch m.Kind {
	case MovementPurchase, MovementTransferIn:
		return m.Quantity
	case MovementTransferOut, MovementAssignment, MovementExpenditure:
		return -m.Quantity
	}
	return 0
}

// Filter narrows queries. Zero values mean "no restriction". Dates are inclusive.
type Filter struct {
	BaseID          int64
	EquipmentTypeID int64
	StartDate       Date
	EndDate         Date
	Status          string // transfers only
}

// BalanceBucket is the derived balance of one (base, equipment type) pair over
// a window. It is never persisted.
type BalanceBucket struct {
	BaseID          int64  `json:"base_id"`
	EquipmentTypeID int64  `json:"equipment_type_id"`
	BaseName        string `json:"base_name,omitempty"`
	EquipmentName   string `json:"equipment_name,omitempty"`
	Category        string `json:"category,omitempty"`
	OpeningBalance  int    `json:"opening_balance"`
	Purchases       int    `json:"purchases"`
	TransfersIn     int    `json:"transfers_in"`
	TransfersOut    int    `json:"transfers_out"`
	NetMovement     int    `json:"net_movement"`
	Assigned        int    `json:"assigned"`
	Expended        int    `json:"expended"`
	ClosingBalance  int    `json:"closing_balance"`
}

// Metrics is the balance table plus its column totals.
type Metrics struct {
	Buckets []BalanceBucket `json:"buckets"`
	Totals  BalanceBucket   `json:"totals"`
}
