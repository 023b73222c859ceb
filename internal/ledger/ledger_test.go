package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/arsenal/internal/model"
)

const (
	baseA = int64(1)
	baseB = int64(2)
	rifle = int64(10)
	radio = int64(11)
)

func day(d int) model.Date { return model.NewDate(2024, 3, d) }

func mv(base, eq int64, kind model.MovementKind, qty, d int) model.Movement {
	return model.Movement{BaseID: base, EquipmentTypeID: eq, Kind: kind, Quantity: qty, Date: day(d)}
}

func history() []model.Movement {
	h := []model.Movement{
		mv(baseA, rifle, model.MovementPurchase, 10, 1),
		mv(baseA, rifle, model.MovementPurchase, 5, 3),
		mv(baseA, rifle, model.MovementExpenditure, 4, 6),
		mv(baseA, radio, model.MovementPurchase, 2, 2),
		mv(baseA, radio, model.MovementAssignment, 1, 4),
	}
	h = append(h, TransferLegs(model.Transfer{
		ID: 1, FromBaseID: baseA, ToBaseID: baseB, EquipmentTypeID: rifle,
		Quantity: 3, TransferDate: day(5), Status: model.TransferCompleted,
	})...)
	return h
}

// balance is the running total of a bucket over its full history.
func balance(history []model.Movement, k Key) int {
	total := 0
	for _, m := range history {
		if KeyOf(m) == k {
			total += m.Delta()
		}
	}
	return total
}

func find(t *testing.T, buckets []model.BalanceBucket, base, eq int64) model.BalanceBucket {
	t.Helper()
	for _, b := range buckets {
		if b.BaseID == base && b.EquipmentTypeID == eq {
			return b
		}
	}
	t.Fatalf("bucket (%d, %d) not found in %+v", base, eq, buckets)
	return model.BalanceBucket{}
}

func TestAggregateFullHistory(t *testing.T) {
	buckets := Aggregate(history(), model.Filter{})
	require.Len(t, buckets, 3)

	a := find(t, buckets, baseA, rifle)
	assert.Equal(t, 0, a.OpeningBalance)
	assert.Equal(t, 15, a.Purchases)
	assert.Equal(t, 3, a.TransfersOut)
	assert.Equal(t, 12, a.NetMovement)
	assert.Equal(t, 4, a.Expended)
	assert.Equal(t, 8, a.ClosingBalance)

	b := find(t, buckets, baseB, rifle)
	assert.Equal(t, 3, b.TransfersIn)
	assert.Equal(t, 3, b.ClosingBalance)

	// Ordered by base, then equipment type.
	assert.Equal(t, Key{baseA, rifle}, Key{buckets[0].BaseID, buckets[0].EquipmentTypeID})
	assert.Equal(t, Key{baseA, radio}, Key{buckets[1].BaseID, buckets[1].EquipmentTypeID})
	assert.Equal(t, Key{baseB, rifle}, Key{buckets[2].BaseID, buckets[2].EquipmentTypeID})
}

func TestAggregateClosingIdentity(t *testing.T) {
	for _, f := range []model.Filter{
		{},
		{StartDate: day(3)},
		{StartDate: day(4), EndDate: day(5)},
		{EndDate: day(2)},
		{BaseID: baseA},
	} {
		for _, b := range Aggregate(history(), f) {
			want := b.OpeningBalance + b.Purchases + b.TransfersIn - b.TransfersOut - b.Assigned - b.Expended
			assert.Equal(t, want, b.ClosingBalance, "filter %+v bucket %+v", f, b)
		}
	}
}

func TestAggregateContinuity(t *testing.T) {
	h := history()
	for split := 1; split <= 7; split++ {
		before := Aggregate(h, model.Filter{EndDate: day(split)})
		after := Aggregate(h, model.Filter{StartDate: day(split + 1)})

		closing := make(map[Key]int)
		for _, b := range before {
			closing[Key{b.BaseID, b.EquipmentTypeID}] = b.ClosingBalance
		}
		opening := make(map[Key]int)
		for _, b := range after {
			opening[Key{b.BaseID, b.EquipmentTypeID}] = b.OpeningBalance
		}
		for k, c := range closing {
			assert.Equal(t, c, opening[k], "split after day %d, bucket %+v", split, k)
		}
		for k, o := range opening {
			assert.Equal(t, o, closing[k], "split after day %d, bucket %+v", split, k)
		}
	}
}

func TestAggregateWindow(t *testing.T) {
	buckets := Aggregate(history(), model.Filter{StartDate: day(4), EndDate: day(5), EquipmentTypeID: rifle})
	require.Len(t, buckets, 2)

	a := find(t, buckets, baseA, rifle)
	assert.Equal(t, 15, a.OpeningBalance)
	assert.Equal(t, 0, a.Purchases)
	assert.Equal(t, 3, a.TransfersOut)
	assert.Equal(t, 0, a.Expended, "expenditure on day 6 is after the window")
	assert.Equal(t, 12, a.ClosingBalance)
}

func TestAggregateReportsIdleBucketWithOpeningBalance(t *testing.T) {
	buckets := Aggregate(history(), model.Filter{StartDate: day(20)})
	a := find(t, buckets, baseA, rifle)
	assert.Equal(t, 8, a.OpeningBalance)
	assert.Equal(t, 8, a.ClosingBalance)
}

func TestAggregateOmitsEmptyBuckets(t *testing.T) {
	h := []model.Movement{
		mv(baseA, rifle, model.MovementPurchase, 2, 1),
		mv(baseA, rifle, model.MovementExpenditure, 2, 1),
	}
	assert.Empty(t, Aggregate(h, model.Filter{StartDate: day(2)}))
	assert.Len(t, Aggregate(h, model.Filter{}), 1)
}

func TestNonCompletedTransfersHaveNoLegs(t *testing.T) {
	for _, status := range []string{model.TransferPending, model.TransferApproved, model.TransferRejected} {
		legs := TransferLegs(model.Transfer{FromBaseID: baseA, ToBaseID: baseB, Quantity: 3, Status: status})
		assert.Empty(t, legs, status)
	}
}

func TestAggregateIsRepeatable(t *testing.T) {
	h := history()
	snapshot := append([]model.Movement(nil), h...)

	first := Aggregate(h, model.Filter{StartDate: day(3)})
	second := Aggregate(h, model.Filter{StartDate: day(3)})

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, h, "aggregation must not mutate its input")
}

func TestTotals(t *testing.T) {
	buckets := Aggregate(history(), model.Filter{})
	totals := Totals(buckets)

	assert.Equal(t, 17, totals.Purchases)
	assert.Equal(t, 3, totals.TransfersIn)
	assert.Equal(t, 3, totals.TransfersOut)
	assert.Equal(t, 17, totals.NetMovement)
	assert.Equal(t, 1, totals.Assigned)
	assert.Equal(t, 4, totals.Expended)
	assert.Equal(t, 12, totals.ClosingBalance)
	assert.Equal(t, model.BalanceBucket{}, Totals(nil))
}

func TestBalance(t *testing.T) {
	assert.Equal(t, 8, balance(history(), Key{baseA, rifle}))
	assert.Equal(t, 3, balance(history(), Key{baseB, rifle}))
	assert.Equal(t, 0, balance(history(), Key{baseB, radio}))
}

func TestLowestBalanceFrom(t *testing.T) {
	h := history()
	k := Key{baseA, rifle}

	// Running end-of-day totals: d1 10, d3 15, d5 12, d6 8.
	assert.Equal(t, 8, LowestBalanceFrom(h, k, day(1)))
	assert.Equal(t, 8, LowestBalanceFrom(h, k, day(6)))
	assert.Equal(t, 8, LowestBalanceFrom(h, k, day(30)))

	// A backdated expenditure dips below zero on day 2 even though the
	// bucket ends positive.
	dip := []model.Movement{
		mv(baseB, rifle, model.MovementPurchase, 5, 1),
		mv(baseB, rifle, model.MovementExpenditure, 6, 2),
		mv(baseB, rifle, model.MovementPurchase, 10, 3),
	}
	assert.Equal(t, 9, balance(dip, Key{baseB, rifle}))
	assert.Equal(t, -1, LowestBalanceFrom(dip, Key{baseB, rifle}, day(2)))
	assert.Equal(t, 9, LowestBalanceFrom(dip, Key{baseB, rifle}, day(3)))

	// Same-day purchase offsets a same-day expenditure.
	sameDay := []model.Movement{
		mv(baseB, radio, model.MovementExpenditure, 3, 4),
		mv(baseB, radio, model.MovementPurchase, 3, 4),
	}
	assert.Equal(t, 0, LowestBalanceFrom(sameDay, Key{baseB, radio}, day(4)))
}

func TestHighestBalanceFrom(t *testing.T) {
	h := history()
	k := Key{baseA, rifle}

	// Running end-of-day totals: d1 10, d3 15, d5 12, d6 8.
	assert.Equal(t, 15, HighestBalanceFrom(h, k, day(1)))
	assert.Equal(t, 15, HighestBalanceFrom(h, k, day(3)))
	assert.Equal(t, 12, HighestBalanceFrom(h, k, day(4)))
	assert.Equal(t, 8, HighestBalanceFrom(h, k, day(6)))
	assert.Equal(t, 0, HighestBalanceFrom(h, Key{baseB, radio}, day(1)))
}
