package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/arsenal/internal/model"
)

const transferColumns = `t.id, t.from_base_id, t.to_base_id, t.equipment_type_id, t.quantity,
	t.transfer_date, t.status, t.initiated_by, t.status_changed_by, t.notes,
	t.created_at, t.updated_at, fb.name, tb.name, e.name`

const transferFrom = ` FROM transfers t
	JOIN bases fb ON fb.id = t.from_base_id
	JOIN bases tb ON tb.id = t.to_base_id
	JOIN equipment_types e ON e.id = t.equipment_type_id`

func scanTransfer(row interface{ Scan(...any) error }) (*model.Transfer, error) {
	t := &model.Transfer{}
	var changedBy sql.NullInt64
	var notes sql.NullString
	err := row.Scan(&t.ID, &t.FromBaseID, &t.ToBaseID, &t.EquipmentTypeID, &t.Quantity,
		&t.TransferDate, &t.Status, &t.InitiatedBy, &changedBy, &notes,
		&t.CreatedAt, &t.UpdatedAt, &t.FromBaseName, &t.ToBaseName, &t.EquipmentName)
	if err != nil {
		return nil, err
	}
	if changedBy.Valid {
		t.StatusChangedBy = &changedBy.Int64
	}
	t.Notes = notes.String
	return t, nil
}

// CreateTransfer appends a transfer in the pending state.
func CreateTransfer(ctx context.Context, db DBTX, t *model.Transfer) (*model.Transfer, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO transfers (from_base_id, to_base_id, equipment_type_id, quantity,
		     transfer_date, status, initiated_by, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.FromBaseID, t.ToBaseID, t.EquipmentTypeID, t.Quantity,
		t.TransferDate, model.TransferPending, t.InitiatedBy, nullString(t.Notes),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transfer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting transfer id: %w", err)
	}

	return GetTransfer(ctx, db, id)
}

// GetTransfer returns a transfer by ID.
func GetTransfer(ctx context.Context, db DBTX, id int64) (*model.Transfer, error) {
	t, err := scanTransfer(db.QueryRowContext(ctx,
		`SELECT `+transferColumns+transferFrom+` WHERE t.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting transfer: %w", err)
	}
	return t, nil
}

// ListTransfers returns transfers matching f, newest first. A base filter
// matches either endpoint.
func ListTransfers(ctx context.Context, db DBTX, f model.Filter) ([]model.Transfer, error) {
	w := &where{}
	if f.BaseID > 0 {
		w.add("(t.from_base_id = ? OR t.to_base_id = ?)", f.BaseID, f.BaseID)
	}
	if f.EquipmentTypeID > 0 {
		w.add("t.equipment_type_id = ?", f.EquipmentTypeID)
	}
	if !f.StartDate.IsZero() {
		w.add("t.transfer_date >= ?", f.StartDate)
	}
	if !f.EndDate.IsZero() {
		w.add("t.transfer_date <= ?", f.EndDate)
	}
	if f.Status != "" {
		w.add("t.status = ?", f.Status)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+transferColumns+transferFrom+w.String()+
			` ORDER BY t.transfer_date DESC, t.id DESC`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing transfers: %w", err)
	}
	defer rows.Close()

	var transfers []model.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transfer: %w", err)
		}
		transfers = append(transfers, *t)
	}
	return transfers, rows.Err()
}

// UpdateTransferStatus moves a transfer from one status to another. It
// reports false when the transfer is no longer in the expected status.
func UpdateTransferStatus(ctx context.Context, db DBTX, id int64, from, to string, changedBy int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE transfers
		 SET status = ?, status_changed_by = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		to, changedBy, id, from,
	)
	if err != nil {
		return false, fmt.Errorf("updating transfer status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking transfer status update: %w", err)
	}
	return n == 1, nil
}
