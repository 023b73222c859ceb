// Package ledger turns movement history into balances. Everything here is a
// pure function of its inputs: nothing is cached and nothing is mutated.
package ledger

import (
	"sort"

	"github.com/erazemk/arsenal/internal/model"
)

// Key identifies a bucket.
type Key struct {
	BaseID          int64
	EquipmentTypeID int64
}

// KeyOf returns the bucket a movement belongs to.
func KeyOf(m model.Movement) Key {
	return Key{BaseID: m.BaseID, EquipmentTypeID: m.EquipmentTypeID}
}

// Less orders keys by base, then equipment type.
func (k Key) Less(o Key) bool {
	if k.BaseID != o.BaseID {
		return k.BaseID < o.BaseID
	}
	return k.EquipmentTypeID < o.EquipmentTypeID
}

// TransferLegs returns the ledger lines of a transfer. Only completed
// transfers have any.
func TransferLegs(t model.Transfer) []model.Movement {
	if t.Status != model.TransferCompleted {
		return nil
	}
	return []model.Movement{
		{BaseID: t.FromBaseID, EquipmentTypeID: t.EquipmentTypeID, Kind: model.MovementTransferOut,
			Quantity: t.Quantity, Date: t.TransferDate, SourceID: t.ID},
		{BaseID: t.ToBaseID, EquipmentTypeID: t.EquipmentTypeID, Kind: model.MovementTransferIn,
			Quantity: t.Quantity, Date: t.TransferDate, SourceID: t.ID},
	}
}

func matches(m model.Movement, f model.Filter) bool {
	if f.BaseID > 0 && m.BaseID != f.BaseID {
		return false
	}
	if f.EquipmentTypeID > 0 && m.EquipmentTypeID != f.EquipmentTypeID {
		return false
	}
	return true
}

// Aggregate computes one bucket per (base, equipment type) matching f.
//
// Movements before f.StartDate fold into the opening balance; movements after
// f.EndDate are ignored. A bucket is reported when it has movement inside the
// window or a non-zero opening balance. Buckets are ordered by key.
func Aggregate(movements []model.Movement, f model.Filter) []model.BalanceBucket {
	buckets := make(map[Key]*model.BalanceBucket)
	active := make(map[Key]bool)

	get := func(k Key) *model.BalanceBucket {
		b, ok := buckets[k]
		if !ok {
			b = &model.BalanceBucket{BaseID: k.BaseID, EquipmentTypeID: k.EquipmentTypeID}
			buckets[k] = b
		}
		return b
	}

	for _, m := range movements {
		if !matches(m, f) {
			continue
		}
		if !f.EndDate.IsZero() && m.Date.After(f.EndDate) {
			continue
		}
		k := KeyOf(m)
		b := get(k)

		if !f.StartDate.IsZero() && m.Date.Before(f.StartDate) {
			b.OpeningBalance += m.Delta()
			continue
		}

		active[k] = true
		switch m.Kind {
		case model.MovementPurchase:
			b.Purchases += m.Quantity
		case model.MovementTransferIn:
			b.TransfersIn += m.Quantity
		case model.MovementTransferOut:
			b.TransfersOut += m.Quantity
		case model.MovementAssignment:
			b.Assigned += m.Quantity
		case model.MovementExpenditure:
			b.Expended += m.Quantity
		}
	}

	keys := make([]Key, 0, len(buckets))
	for k, b := range buckets {
		if active[k] || b.OpeningBalance != 0 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	out := make([]model.BalanceBucket, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		settle(b)
		out = append(out, *b)
	}
	return out
}

// settle fills in the derived columns.
func settle(b *model.BalanceBucket) {
	b.NetMovement = b.Purchases + b.TransfersIn - b.TransfersOut
	b.ClosingBalance = b.OpeningBalance + b.NetMovement - b.Assigned - b.Expended
}

// Totals sums every column independently across buckets. The summed opening
// and closing balances are only meaningful when all buckets share the same
// reference point; the row is kept for display parity with the balance table.
func Totals(buckets []model.BalanceBucket) model.BalanceBucket {
	var t model.BalanceBucket
	for _, b := range buckets {
		t.OpeningBalance += b.OpeningBalance
		t.Purchases += b.Purchases
		t.TransfersIn += b.TransfersIn
		t.TransfersOut += b.TransfersOut
		t.NetMovement += b.NetMovement
		t.Assigned += b.Assigned
		t.Expended += b.Expended
		t.ClosingBalance += b.ClosingBalance
	}
	return t
}

// endOfDayFrom returns bucket k's end-of-day balances for from and every
// later day with movement, in date order.
func endOfDayFrom(history []model.Movement, k Key, from model.Date) []int {
	opening := 0
	daily := make(map[model.Date]int)
	for _, m := range history {
		if KeyOf(m) != k {
			continue
		}
		if m.Date.Before(from) {
			opening += m.Delta()
			continue
		}
		daily[m.Date] += m.Delta()
	}

	// The first day checked is from itself, even without movement on it.
	daily[from] += 0

	days := make([]model.Date, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	balances := make([]int, len(days))
	running := opening
	for i, d := range days {
		running += daily[d]
		balances[i] = running
	}
	return balances
}

// LowestBalanceFrom returns the smallest end-of-day balance of bucket k on any
// day on or after from. A movement dated in the past changes every later
// closing balance, so this is the figure that must stay non-negative.
func LowestBalanceFrom(history []model.Movement, k Key, from model.Date) int {
	balances := endOfDayFrom(history, k, from)
	lowest := balances[0]
	for _, b := range balances[1:] {
		lowest = min(lowest, b)
	}
	return lowest
}

// HighestBalanceFrom returns the largest end-of-day balance of bucket k on
// any day on or after from.
func HighestBalanceFrom(history []model.Movement, k Key, from model.Date) int {
	balances := endOfDayFrom(history, k, from)
	highest := balances[0]
	for _, b := range balances[1:] {
		highest = max(highest, b)
	}
	return highest
}
