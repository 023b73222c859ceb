package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/erazemk/arsenal/internal/db"
	"github.com/erazemk/arsenal/internal/model"
)

type fixture struct {
	db    *sql.DB
	user  *model.User
	north *model.Base
	south *model.Base
	rifle *model.EquipmentType
	radio *model.EquipmentType
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	f := &fixture{db: database, ctx: ctx}
	var err error
	if f.user, err = CreateUser(ctx, database, "admin", "hash", model.RoleAdmin, nil); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if f.north, err = CreateBase(ctx, database, "North"); err != nil {
		t.Fatalf("CreateBase: %v", err)
	}
	if f.south, err = CreateBase(ctx, database, "South"); err != nil {
		t.Fatalf("CreateBase: %v", err)
	}
	if f.rifle, err = CreateEquipmentType(ctx, database, "Rifle", "weapons"); err != nil {
		t.Fatalf("CreateEquipmentType: %v", err)
	}
	if f.radio, err = CreateEquipmentType(ctx, database, "Radio", "comms"); err != nil {
		t.Fatalf("CreateEquipmentType: %v", err)
	}
	return f
}

func (f *fixture) purchase(t *testing.T, base *model.Base, et *model.EquipmentType, qty int, d model.Date) *model.Purchase {
	t.Helper()
	p, err := CreatePurchase(f.ctx, f.db, &model.Purchase{
		BaseID: base.ID, EquipmentTypeID: et.ID, Quantity: qty, PurchaseDate: d, CreatedBy: f.user.ID,
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	return p
}

func (f *fixture) transfer(t *testing.T, from, to *model.Base, qty int, d model.Date) *model.Transfer {
	t.Helper()
	tr, err := CreateTransfer(f.ctx, f.db, &model.Transfer{
		FromBaseID: from.ID, ToBaseID: to.ID, EquipmentTypeID: f.rifle.ID,
		Quantity: qty, TransferDate: d, InitiatedBy: f.user.ID,
	})
	if err != nil {
		t.Fatalf("CreateTransfer: %v", err)
	}
	return tr
}

func date(d int) model.Date { return model.NewDate(2024, 3, d) }

func TestCatalog(t *testing.T) {
	f := newFixture(t)

	bases, err := Catalog{DB: f.db}.ListBases(f.ctx)
	if err != nil {
		t.Fatalf("ListBases: %v", err)
	}
	if len(bases) != 2 || bases[0].Name != "North" || bases[1].Name != "South" {
		t.Errorf("unexpected bases: %+v", bases)
	}

	types, err := Catalog{DB: f.db}.ListEquipmentTypes(f.ctx)
	if err != nil {
		t.Fatalf("ListEquipmentTypes: %v", err)
	}
	if len(types) != 2 || types[0].Name != "Radio" {
		t.Errorf("expected types ordered by category, got %+v", types)
	}

	if _, err := CreateBase(f.ctx, f.db, "North"); err == nil {
		t.Error("expected duplicate base name to fail")
	}

	missing, err := GetBase(f.ctx, f.db, 999)
	if err != nil || missing != nil {
		t.Errorf("expected (nil, nil) for missing base, got %v, %v", missing, err)
	}
}

func TestEquipmentTypeImage(t *testing.T) {
	f := newFixture(t)

	ok, err := SetEquipmentTypeImage(f.ctx, f.db, f.rifle.ID, []byte{1, 2, 3}, "image/png")
	if err != nil || !ok {
		t.Fatalf("SetEquipmentTypeImage: %v, %v", ok, err)
	}

	img, mime, err := GetEquipmentTypeImage(f.ctx, f.db, f.rifle.ID)
	if err != nil {
		t.Fatalf("GetEquipmentTypeImage: %v", err)
	}
	if len(img) != 3 || mime != "image/png" {
		t.Errorf("unexpected image %v %q", img, mime)
	}

	et, _ := GetEquipmentType(f.ctx, f.db, f.rifle.ID)
	if et.ImageMime != "image/png" {
		t.Errorf("expected image_mime to be set, got %q", et.ImageMime)
	}

	ok, err = SetEquipmentTypeImage(f.ctx, f.db, 999, []byte{1}, "image/png")
	if err != nil || ok {
		t.Errorf("expected false for missing equipment type, got %v, %v", ok, err)
	}
}

func TestPurchaseRoundTrip(t *testing.T) {
	f := newFixture(t)

	p, err := CreatePurchase(f.ctx, f.db, &model.Purchase{
		BaseID: f.north.ID, EquipmentTypeID: f.rifle.ID, Quantity: 10,
		PurchaseDate: date(1), Notes: "initial stock", CreatedBy: f.user.ID,
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	if p.BaseName != "North" || p.EquipmentName != "Rifle" {
		t.Errorf("expected joined names, got %q %q", p.BaseName, p.EquipmentName)
	}
	if !p.PurchaseDate.Equal(date(1)) {
		t.Errorf("expected date %s, got %s", date(1), p.PurchaseDate)
	}
	if p.Notes != "initial stock" {
		t.Errorf("expected notes, got %q", p.Notes)
	}
}

func TestSchemaRejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture(t)

	_, err := CreatePurchase(f.ctx, f.db, &model.Purchase{
		BaseID: f.north.ID, EquipmentTypeID: f.rifle.ID, Quantity: 0,
		PurchaseDate: date(1), CreatedBy: f.user.ID,
	})
	if err == nil {
		t.Fatal("expected check constraint failure")
	}
}

func TestListPurchasesFilter(t *testing.T) {
	f := newFixture(t)
	f.purchase(t, f.north, f.rifle, 10, date(1))
	f.purchase(t, f.north, f.radio, 2, date(2))
	f.purchase(t, f.south, f.rifle, 4, date(3))

	tests := []struct {
		name   string
		filter model.Filter
		want   int
	}{
		{"all", model.Filter{}, 3},
		{"base", model.Filter{BaseID: f.north.ID}, 2},
		{"equipment", model.Filter{EquipmentTypeID: f.rifle.ID}, 2},
		{"start", model.Filter{StartDate: date(2)}, 2},
		{"end", model.Filter{EndDate: date(2)}, 2},
		{"window", model.Filter{StartDate: date(2), EndDate: date(2)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ListPurchases(f.ctx, f.db, tt.filter)
			if err != nil {
				t.Fatalf("ListPurchases: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d purchases, got %d", tt.want, len(got))
			}
		})
	}

	all, _ := ListPurchases(f.ctx, f.db, model.Filter{})
	if !all[0].PurchaseDate.Equal(date(3)) {
		t.Errorf("expected newest first, got %s", all[0].PurchaseDate)
	}
}

func TestAssignmentsAndExpenditures(t *testing.T) {
	f := newFixture(t)

	a, err := CreateAssignment(f.ctx, f.db, &model.Assignment{
		BaseID: f.north.ID, EquipmentTypeID: f.rifle.ID, Quantity: 1, AssignmentDate: date(2),
		PersonnelName: "J. Doe", PersonnelRank: "Sgt", CreatedBy: f.user.ID,
	})
	if err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}
	if a.PersonnelRank != "Sgt" || a.BaseName != "North" {
		t.Errorf("unexpected assignment %+v", a)
	}

	x, err := CreateExpenditure(f.ctx, f.db, &model.Expenditure{
		BaseID: f.south.ID, EquipmentTypeID: f.radio.ID, Quantity: 2, ExpenditureDate: date(3),
		Reason: "training", CreatedBy: f.user.ID,
	})
	if err != nil {
		t.Fatalf("CreateExpenditure: %v", err)
	}
	if x.Reason != "training" || x.EquipmentName != "Radio" {
		t.Errorf("unexpected expenditure %+v", x)
	}

	as, _ := ListAssignments(f.ctx, f.db, model.Filter{BaseID: f.south.ID})
	if len(as) != 0 {
		t.Errorf("expected no assignments at South, got %d", len(as))
	}
	xs, _ := ListExpenditures(f.ctx, f.db, model.Filter{BaseID: f.south.ID})
	if len(xs) != 1 {
		t.Errorf("expected 1 expenditure at South, got %d", len(xs))
	}
}

func TestTransferStatusGuard(t *testing.T) {
	f := newFixture(t)
	tr := f.transfer(t, f.north, f.south, 3, date(5))

	if tr.Status != model.TransferPending {
		t.Fatalf("expected pending, got %q", tr.Status)
	}
	if tr.FromBaseName != "North" || tr.ToBaseName != "South" {
		t.Errorf("expected joined base names, got %q %q", tr.FromBaseName, tr.ToBaseName)
	}

	ok, err := UpdateTransferStatus(f.ctx, f.db, tr.ID, model.TransferPending, model.TransferApproved, f.user.ID)
	if err != nil || !ok {
		t.Fatalf("approve: %v, %v", ok, err)
	}

	// Replaying the same transition no longer matches the guard.
	ok, err = UpdateTransferStatus(f.ctx, f.db, tr.ID, model.TransferPending, model.TransferApproved, f.user.ID)
	if err != nil || ok {
		t.Fatalf("replayed approve: %v, %v", ok, err)
	}

	got, _ := GetTransfer(f.ctx, f.db, tr.ID)
	if got.Status != model.TransferApproved {
		t.Errorf("expected approved, got %q", got.Status)
	}
	if got.StatusChangedBy == nil || *got.StatusChangedBy != f.user.ID {
		t.Errorf("expected status_changed_by %d, got %v", f.user.ID, got.StatusChangedBy)
	}
}

func TestListTransfersFilter(t *testing.T) {
	f := newFixture(t)
	f.transfer(t, f.north, f.south, 3, date(5))
	done := f.transfer(t, f.south, f.north, 1, date(6))
	UpdateTransferStatus(f.ctx, f.db, done.ID, model.TransferPending, model.TransferApproved, f.user.ID)

	both, _ := ListTransfers(f.ctx, f.db, model.Filter{BaseID: f.north.ID})
	if len(both) != 2 {
		t.Errorf("expected base filter to match either endpoint, got %d", len(both))
	}

	approved, _ := ListTransfers(f.ctx, f.db, model.Filter{Status: model.TransferApproved})
	if len(approved) != 1 || approved[0].ID != done.ID {
		t.Errorf("expected only the approved transfer, got %+v", approved)
	}
}

func TestListMovements(t *testing.T) {
	f := newFixture(t)
	f.purchase(t, f.north, f.rifle, 10, date(1))
	pending := f.transfer(t, f.north, f.south, 2, date(4))
	done := f.transfer(t, f.north, f.south, 3, date(5))
	UpdateTransferStatus(f.ctx, f.db, done.ID, model.TransferPending, model.TransferApproved, f.user.ID)
	UpdateTransferStatus(f.ctx, f.db, done.ID, model.TransferApproved, model.TransferCompleted, f.user.ID)
	CreateExpenditure(f.ctx, f.db, &model.Expenditure{
		BaseID: f.north.ID, EquipmentTypeID: f.rifle.ID, Quantity: 4,
		ExpenditureDate: date(6), Reason: "training", CreatedBy: f.user.ID,
	})

	movements, err := ListMovements(f.ctx, f.db, model.Filter{})
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if len(movements) != 4 {
		t.Fatalf("expected 4 movements, got %d: %+v", len(movements), movements)
	}
	for _, m := range movements {
		if m.SourceID == pending.ID && (m.Kind == model.MovementTransferIn || m.Kind == model.MovementTransferOut) {
			t.Errorf("pending transfer produced a movement: %+v", m)
		}
	}

	balance := map[int64]int{}
	for _, m := range movements {
		balance[m.BaseID] += m.Delta()
	}
	if balance[f.north.ID] != 3 || balance[f.south.ID] != 3 {
		t.Errorf("expected North 3 and South 3, got %v", balance)
	}

	south, _ := ListMovements(f.ctx, f.db, model.Filter{BaseID: f.south.ID})
	if len(south) != 1 || south[0].Kind != model.MovementTransferIn {
		t.Errorf("expected one transfer_in at South, got %+v", south)
	}

	early, _ := ListMovements(f.ctx, f.db, model.Filter{EndDate: date(5)})
	if len(early) != 3 {
		t.Errorf("expected end date to drop the expenditure, got %d", len(early))
	}
}

func TestIdempotencyKeys(t *testing.T) {
	f := newFixture(t)
	exp := time.Now().Add(time.Hour)

	ok, err := ReserveIdempotencyKey(f.ctx, f.db, "1:abc", exp)
	if err != nil || !ok {
		t.Fatalf("first reserve: %v, %v", ok, err)
	}
	ok, _ = ReserveIdempotencyKey(f.ctx, f.db, "1:abc", exp)
	if ok {
		t.Error("expected second reserve to fail")
	}

	if err := ReleaseIdempotencyKey(f.ctx, f.db, "1:abc"); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, _ = ReserveIdempotencyKey(f.ctx, f.db, "1:abc", exp)
	if !ok {
		t.Error("expected reserve after release to succeed")
	}

	ReserveIdempotencyKey(f.ctx, f.db, "1:old", time.Now().Add(-time.Minute))
	ok, _ = ReserveIdempotencyKey(f.ctx, f.db, "1:old", exp)
	if !ok {
		t.Error("expected expired reservation to be replaced")
	}

	// Expired keys are pruned even when nobody reserves them again.
	ReserveIdempotencyKey(f.ctx, f.db, "2:stale", time.Now().Add(-time.Minute))
	ReserveIdempotencyKey(f.ctx, f.db, "3:fresh", exp)

	var stale int
	if err := f.db.QueryRowContext(f.ctx,
		`SELECT COUNT(*) FROM idempotency_keys WHERE key = ?`, "2:stale",
	).Scan(&stale); err != nil {
		t.Fatalf("counting keys: %v", err)
	}
	if stale != 0 {
		t.Errorf("expected expired key to be pruned, found %d", stale)
	}
}
