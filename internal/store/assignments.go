package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/arsenal/internal/model"
)

const assignmentColumns = `a.id, a.base_id, a.equipment_type_id, a.quantity, a.assignment_date,
	a.personnel_name, a.personnel_rank, a.notes, a.created_by, a.created_at, b.name, e.name`

const assignmentFrom = ` FROM assignments a
	JOIN bases b ON b.id = a.base_id
	JOIN equipment_types e ON e.id = a.equipment_type_id`

func scanAssignment(row interface{ Scan(...any) error }) (*model.Assignment, error) {
	a := &model.Assignment{}
	var rank, notes sql.NullString
	err := row.Scan(&a.ID, &a.BaseID, &a.EquipmentTypeID, &a.Quantity, &a.AssignmentDate,
		&a.PersonnelName, &rank, &notes, &a.CreatedBy, &a.CreatedAt, &a.BaseName, &a.EquipmentName)
	if err != nil {
		return nil, err
	}
	a.PersonnelRank = rank.String
	a.Notes = notes.String
	return a, nil
}

// CreateAssignment appends an assignment record.
func CreateAssignment(ctx context.Context, db DBTX, a *model.Assignment) (*model.Assignment, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO assignments (base_id, equipment_type_id, quantity, assignment_date,
		     personnel_name, personnel_rank, notes, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.BaseID, a.EquipmentTypeID, a.Quantity, a.AssignmentDate,
		a.PersonnelName, nullString(a.PersonnelRank), nullString(a.Notes), a.CreatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("creating assignment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting assignment id: %w", err)
	}

	return GetAssignment(ctx, db, id)
}

// GetAssignment returns an assignment by ID.
func GetAssignment(ctx context.Context, db DBTX, id int64) (*model.Assignment, error) {
	a, err := scanAssignment(db.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+assignmentFrom+` WHERE a.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting assignment: %w", err)
	}
	return a, nil
}

// ListAssignments returns assignments matching f, newest first.
func ListAssignments(ctx context.Context, db DBTX, f model.Filter) ([]model.Assignment, error) {
	w := recordFilter(f, "a", "assignment_date")
	rows, err := db.QueryContext(ctx,
		`SELECT `+assignmentColumns+assignmentFrom+w.String()+
			` ORDER BY a.assignment_date DESC, a.id DESC`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}
