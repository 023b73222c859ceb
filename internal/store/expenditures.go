package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/arsenal/internal/model"
)

const expenditureColumns = `x.id, x.base_id, x.equipment_type_id, x.quantity, x.expenditure_date,
	x.reason, x.created_by, x.created_at, b.name, e.name`

const expenditureFrom = ` FROM expenditures x
	JOIN bases b ON b.id = x.base_id
	JOIN equipment_types e ON e.id = x.equipment_type_id`

func scanExpenditure(row interface{ Scan(...any) error }) (*model.Expenditure, error) {
	x := &model.Expenditure{}
	err := row.Scan(&x.ID, &x.BaseID, &x.EquipmentTypeID, &x.Quantity, &x.ExpenditureDate,
		&x.Reason, &x.CreatedBy, &x.CreatedAt, &x.BaseName, &x.EquipmentName)
	if err != nil {
		return nil, err
	}
	return x, nil
}

// CreateExpenditure appends an expenditure record.
func CreateExpenditure(ctx context.Context, db DBTX, x *model.Expenditure) (*model.Expenditure, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO expenditures (base_id, equipment_type_id, quantity, expenditure_date, reason, created_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		x.BaseID, x.EquipmentTypeID, x.Quantity, x.ExpenditureDate, x.Reason, x.CreatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("creating expenditure: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting expenditure id: %w", err)
	}

	return GetExpenditure(ctx, db, id)
}

// GetExpenditure returns an expenditure by ID.
func GetExpenditure(ctx context.Context, db DBTX, id int64) (*model.Expenditure, error) {
	x, err := scanExpenditure(db.QueryRowContext(ctx,
		`SELECT `+expenditureColumns+expenditureFrom+` WHERE x.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting expenditure: %w", err)
	}
	return x, nil
}

// ListExpenditures returns expenditures matching f, newest first.
func ListExpenditures(ctx context.Context, db DBTX, f model.Filter) ([]model.Expenditure, error) {
	w := recordFilter(f, "x", "expenditure_date")
	rows, err := db.QueryContext(ctx,
		`SELECT `+expenditureColumns+expenditureFrom+w.String()+
			` ORDER BY x.expenditure_date DESC, x.id DESC`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing expenditures: %w", err)
	}
	defer rows.Close()

	var expenditures []model.Expenditure
	for rows.Next() {
		x, err := scanExpenditure(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning expenditure: %w", err)
		}
		expenditures = append(expenditures, *x)
	}
	return expenditures, rows.Err()
}
