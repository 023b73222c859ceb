package inventory

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/erazemk/arsenal/internal/apperr"
	"github.com/erazemk/arsenal/internal/authz"
	"github.com/erazemk/arsenal/internal/ledger"
	"github.com/erazemk/arsenal/internal/model"
	"github.com/erazemk/arsenal/internal/store"
	"github.com/erazemk/arsenal/internal/workflow"
)

// UpdateTransferStatus moves a transfer to status. Completing a transfer
// checks both legs against their buckets and brings them into the ledger in
// the same commit as the status change.
func (s *Service) UpdateTransferStatus(ctx context.Context, actor model.Actor, id int64, status string) (updated *model.Transfer, err error) {
	defer s.observe(ctx, "update_transfer_status", time.Now(), &err)

	if err := authz.RequireTransition(actor); err != nil {
		return nil, err
	}
	action, err := workflow.ActionFor(status)
	if err != nil {
		return nil, err
	}

	current, err := store.GetTransfer(ctx, s.db, id)
	if err != nil {
		return nil, apperr.Wrap("loading transfer", err)
	}
	if current == nil {
		return nil, apperr.NotFound("transfer %d not found", id)
	}
	if workflow.Terminal(current.Status) {
		return nil, apperr.InvalidTransition("transfer %d is already %s", id, current.Status)
	}

	if action == workflow.Complete {
		unlock, err := s.locks.lock(ctx,
			ledger.Key{BaseID: current.FromBaseID, EquipmentTypeID: current.EquipmentTypeID},
			ledger.Key{BaseID: current.ToBaseID, EquipmentTypeID: current.EquipmentTypeID})
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	var from string
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		t, err := store.GetTransfer(ctx, tx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return apperr.NotFound("transfer %d not found", id)
		}
		from = t.Status

		next, err := workflow.Apply(t.Status, action)
		if err != nil {
			return err
		}

		if action == workflow.Complete {
			done := *t
			done.Status = next
			for _, leg := range ledger.TransferLegs(done) {
				if err := checkBucket(ctx, tx, leg); err != nil {
					return err
				}
			}
		}

		ok, err := store.UpdateTransferStatus(ctx, tx, id, t.Status, next, actor.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.InvalidTransition("transfer %d changed status concurrently", id)
		}

		updated, err = store.GetTransfer(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("transfer status changed", "user", actor.Username, "transfer", id,
		"from", from, "to", updated.Status)
	return updated, nil
}
