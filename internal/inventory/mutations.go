package inventory

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/erazemk/arsenal/internal/authz"
	"github.com/erazemk/arsenal/internal/ledger"
	"github.com/erazemk/arsenal/internal/model"
	"github.com/erazemk/arsenal/internal/store"
	"github.com/erazemk/arsenal/internal/validate"
)

// PurchaseInput is a request to record a purchase.
type PurchaseInput struct {
	BaseID          int64      `json:"base_id"`
	EquipmentTypeID int64      `json:"equipment_type_id"`
	Quantity        int        `json:"quantity"`
	PurchaseDate    model.Date `json:"purchase_date"`
	Notes           string     `json:"notes"`
}

// TransferInput is a request to start a transfer.
type TransferInput struct {
	FromBaseID      int64      `json:"from_base_id"`
	ToBaseID        int64      `json:"to_base_id"`
	EquipmentTypeID int64      `json:"equipment_type_id"`
	Quantity        int        `json:"quantity"`
	TransferDate    model.Date `json:"transfer_date"`
	Notes           string     `json:"notes"`
}

// AssignmentInput is a request to assign equipment to personnel.
type AssignmentInput struct {
	BaseID          int64      `json:"base_id"`
	EquipmentTypeID int64      `json:"equipment_type_id"`
	Quantity        int        `json:"quantity"`
	AssignmentDate  model.Date `json:"assignment_date"`
	PersonnelName   string     `json:"personnel_name"`
	PersonnelRank   string     `json:"personnel_rank"`
	Notes           string     `json:"notes"`
}

// ExpenditureInput is a request to record consumed equipment.
type ExpenditureInput struct {
	BaseID          int64      `json:"base_id"`
	EquipmentTypeID int64      `json:"equipment_type_id"`
	Quantity        int        `json:"quantity"`
	ExpenditureDate model.Date `json:"expenditure_date"`
	Reason          string     `json:"reason"`
}

// CreatePurchase appends a purchase if the base can hold it.
func (s *Service) CreatePurchase(ctx context.Context, actor model.Actor, in PurchaseInput) (created *model.Purchase, err error) {
	defer s.observe(ctx, "create_purchase", time.Now(), &err)

	p := &model.Purchase{
		BaseID:          in.BaseID,
		EquipmentTypeID: in.EquipmentTypeID,
		Quantity:        in.Quantity,
		PurchaseDate:    in.PurchaseDate,
		Notes:           in.Notes,
		CreatedBy:       actor.UserID,
	}
	if err := authz.RequireCreate(model.KindPurchase, actor); err != nil {
		return nil, err
	}
	if err := authz.CheckBases(actor, p.BaseID); err != nil {
		return nil, err
	}
	if err := validate.Purchase(p); err != nil {
		return nil, err
	}

	m := model.Movement{
		BaseID: p.BaseID, EquipmentTypeID: p.EquipmentTypeID,
		Kind: model.MovementPurchase, Quantity: p.Quantity, Date: p.PurchaseDate,
	}
	err = s.appendChecked(ctx, m, func(tx *sql.Tx) error {
		var err error
		created, err = store.CreatePurchase(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("purchase recorded", "user", actor.Username, "purchase", created.ID,
		"base", created.BaseID, "equipment_type", created.EquipmentTypeID, "quantity", created.Quantity)
	return created, nil
}

// CreateTransfer records a pending transfer. Pending transfers do not touch
// any balance; stock is checked when the transfer is completed.
func (s *Service) CreateTransfer(ctx context.Context, actor model.Actor, in TransferInput) (created *model.Transfer, err error) {
	defer s.observe(ctx, "create_transfer", time.Now(), &err)

	t := &model.Transfer{
		FromBaseID:      in.FromBaseID,
		ToBaseID:        in.ToBaseID,
		EquipmentTypeID: in.EquipmentTypeID,
		Quantity:        in.Quantity,
		TransferDate:    in.TransferDate,
		Notes:           in.Notes,
		InitiatedBy:     actor.UserID,
	}
	if err := authz.RequireCreate(model.KindTransfer, actor); err != nil {
		return nil, err
	}
	if err := authz.CheckBases(actor, t.FromBaseID, t.ToBaseID); err != nil {
		return nil, err
	}
	if err := validate.Transfer(t); err != nil {
		return nil, err
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := validate.References(ctx, catalogOf(tx), t.EquipmentTypeID, t.FromBaseID, t.ToBaseID); err != nil {
			return err
		}
		var err error
		created, err = store.CreateTransfer(ctx, tx, t)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("transfer created", "user", actor.Username, "transfer", created.ID,
		"from", created.FromBaseID, "to", created.ToBaseID, "quantity", created.Quantity)
	return created, nil
}

// CreateAssignment appends an assignment if the base holds enough stock.
func (s *Service) CreateAssignment(ctx context.Context, actor model.Actor, in AssignmentInput) (created *model.Assignment, err error) {
	defer s.observe(ctx, "create_assignment", time.Now(), &err)

	a := &model.Assignment{
		BaseID:          in.BaseID,
		EquipmentTypeID: in.EquipmentTypeID,
		Quantity:        in.Quantity,
		AssignmentDate:  in.AssignmentDate,
		PersonnelName:   in.PersonnelName,
		PersonnelRank:   in.PersonnelRank,
		Notes:           in.Notes,
		CreatedBy:       actor.UserID,
	}
	if err := authz.RequireCreate(model.KindAssignment, actor); err != nil {
		return nil, err
	}
	if err := authz.CheckBases(actor, a.BaseID); err != nil {
		return nil, err
	}
	if err := validate.Assignment(a); err != nil {
		return nil, err
	}

	out := model.Movement{
		BaseID: a.BaseID, EquipmentTypeID: a.EquipmentTypeID,
		Kind: model.MovementAssignment, Quantity: a.Quantity, Date: a.AssignmentDate,
	}
	err = s.appendChecked(ctx, out, func(tx *sql.Tx) error {
		var err error
		created, err = store.CreateAssignment(ctx, tx, a)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("equipment assigned", "user", actor.Username, "assignment", created.ID,
		"base", created.BaseID, "personnel", created.PersonnelName, "quantity", created.Quantity)
	return created, nil
}

// CreateExpenditure appends an expenditure if the base holds enough stock.
func (s *Service) CreateExpenditure(ctx context.Context, actor model.Actor, in ExpenditureInput) (created *model.Expenditure, err error) {
	defer s.observe(ctx, "create_expenditure", time.Now(), &err)

	x := &model.Expenditure{
		BaseID:          in.BaseID,
		EquipmentTypeID: in.EquipmentTypeID,
		Quantity:        in.Quantity,
		ExpenditureDate: in.ExpenditureDate,
		Reason:          in.Reason,
		CreatedBy:       actor.UserID,
	}
	if err := authz.RequireCreate(model.KindExpenditure, actor); err != nil {
		return nil, err
	}
	if err := authz.CheckBases(actor, x.BaseID); err != nil {
		return nil, err
	}
	if err := validate.Expenditure(x); err != nil {
		return nil, err
	}

	out := model.Movement{
		BaseID: x.BaseID, EquipmentTypeID: x.EquipmentTypeID,
		Kind: model.MovementExpenditure, Quantity: x.Quantity, Date: x.ExpenditureDate,
	}
	err = s.appendChecked(ctx, out, func(tx *sql.Tx) error {
		var err error
		created, err = store.CreateExpenditure(ctx, tx, x)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("equipment expended", "user", actor.Username, "expenditure", created.ID,
		"base", created.BaseID, "reason", created.Reason, "quantity", created.Quantity)
	return created, nil
}

// appendChecked locks m's bucket, resolves its references, checks that the
// bucket can absorb m and then runs write, all in one transaction.
func (s *Service) appendChecked(ctx context.Context, m model.Movement, write func(tx *sql.Tx) error) error {
	unlock, err := s.locks.lock(ctx, ledger.KeyOf(m))
	if err != nil {
		return err
	}
	defer unlock()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := validate.References(ctx, catalogOf(tx), m.EquipmentTypeID, m.BaseID); err != nil {
			return err
		}
		if err := checkBucket(ctx, tx, m); err != nil {
			return err
		}
		return write(tx)
	})
}

// checkBucket loads the bucket's full history and validates m against it:
// decreases must not overdraw it and increases must not overfill it.
func checkBucket(ctx context.Context, tx *sql.Tx, m model.Movement) error {
	history, err := store.ListMovements(ctx, tx, model.Filter{
		BaseID:          m.BaseID,
		EquipmentTypeID: m.EquipmentTypeID,
	})
	if err != nil {
		return err
	}
	if err := validate.Sufficient(history, m); err != nil {
		return err
	}
	return validate.Capacity(history, m)
}
