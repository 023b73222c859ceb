// Package validate holds the checks every mutation passes before it is
// appended: field rules, catalog references and inventory sufficiency.
package validate

import (
	"context"
	"strings"

	"github.com/erazemk/arsenal/internal/apperr"
	"github.com/erazemk/arsenal/internal/ledger"
	"github.com/erazemk/arsenal/internal/model"
)

// Catalog is the read-only reference data the validators resolve IDs against.
type Catalog interface {
	ListBases(ctx context.Context) ([]model.Base, error)
	ListEquipmentTypes(ctx context.Context) ([]model.EquipmentType, error)
}

const (
	// MaxQuantity bounds a single movement.
	MaxQuantity = 1_000_000_000
	// MaxBalance bounds any bucket's end-of-day balance. Together with
	// MaxQuantity it keeps every sum far from integer overflow.
	MaxBalance = 1_000_000_000_000
)

// Quantity rejects quantities outside 1..MaxQuantity.
func Quantity(q int) error {
	if q <= 0 {
		return apperr.Validation("quantity must be a positive integer, got %d", q)
	}
	if q > MaxQuantity {
		return apperr.Validation("quantity must be at most %d, got %d", MaxQuantity, q)
	}
	return nil
}

// Date rejects a missing date.
func Date(field string, d model.Date) error {
	if d.IsZero() {
		return apperr.Validation("%s is required", field)
	}
	return nil
}

// Text rejects a blank required field.
func Text(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return apperr.Validation("%s is required", field)
	}
	return nil
}

// DistinctBases rejects a transfer whose endpoints are the same base.
func DistinctBases(from, to int64) error {
	if from == to {
		return apperr.Validation("source and destination base must differ")
	}
	return nil
}

func first(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Purchase checks a purchase's fields.
func Purchase(p *model.Purchase) error {
	return first(
		Quantity(p.Quantity),
		Date("purchase_date", p.PurchaseDate),
	)
}

// Transfer checks a transfer's fields.
func Transfer(t *model.Transfer) error {
	return first(
		Quantity(t.Quantity),
		Date("transfer_date", t.TransferDate),
		DistinctBases(t.FromBaseID, t.ToBaseID),
	)
}

// Assignment checks an assignment's fields.
func Assignment(a *model.Assignment) error {
	return first(
		Quantity(a.Quantity),
		Date("assignment_date", a.AssignmentDate),
		Text("personnel_name", a.PersonnelName),
	)
}

// Expenditure checks an expenditure's fields.
func Expenditure(x *model.Expenditure) error {
	return first(
		Quantity(x.Quantity),
		Date("expenditure_date", x.ExpenditureDate),
		Text("reason", x.Reason),
	)
}

// References resolves every base and the equipment type against the catalog.
func References(ctx context.Context, c Catalog, equipmentTypeID int64, baseIDs ...int64) error {
	bases, err := c.ListBases(ctx)
	if err != nil {
		return apperr.Wrap("loading bases", err)
	}
	known := make(map[int64]bool, len(bases))
	for _, b := range bases {
		known[b.ID] = true
	}
	for _, id := range baseIDs {
		if !known[id] {
			return apperr.NotFound("base %d not found", id)
		}
	}

	types, err := c.ListEquipmentTypes(ctx)
	if err != nil {
		return apperr.Wrap("loading equipment types", err)
	}
	for _, et := range types {
		if et.ID == equipmentTypeID {
			return nil
		}
	}
	return apperr.NotFound("equipment type %d not found", equipmentTypeID)
}

// Capacity checks that appending candidate, an increasing movement, keeps
// its bucket's end-of-day balance within MaxBalance on the candidate's date and
// every day after it. history must hold the bucket's full ledger.
func Capacity(history []model.Movement, candidate model.Movement) error {
	if candidate.Delta() <= 0 {
		return nil
	}
	peak := ledger.HighestBalanceFrom(history, ledger.KeyOf(candidate), candidate.Date)
	if peak > MaxBalance-candidate.Delta() {
		return apperr.Validation(
			"base %d would hold more than %d of equipment type %d: %d held from %s, %d added",
			candidate.BaseID, MaxBalance, candidate.EquipmentTypeID, peak, candidate.Date, candidate.Quantity)
	}
	return nil
}

// Sufficient checks that appending candidate, a decreasing movement, keeps
// its bucket's end-of-day balance non-negative on the candidate's date and
// every day after it. history must hold the bucket's full ledger.
func Sufficient(history []model.Movement, candidate model.Movement) error {
	if candidate.Delta() >= 0 {
		return nil
	}
	available := ledger.LowestBalanceFrom(history, ledger.KeyOf(candidate), candidate.Date)
	if available+candidate.Delta() < 0 {
		if available < 0 {
			available = 0
		}
		return apperr.Insufficient(
			"insufficient inventory at base %d for equipment type %d: %d available from %s, %d requested",
			candidate.BaseID, candidate.EquipmentTypeID, available, candidate.Date, candidate.Quantity)
	}
	return nil
}
