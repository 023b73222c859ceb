package store

import (
	"context"
	"fmt"

	"github.com/erazemk/arsenal/internal/model"
)

// movementsQuery flattens every record table into ledger lines. Only
// completed transfers appear, once per leg.
const movementsQuery = `
SELECT base_id, equipment_type_id, kind, quantity, day, source_id FROM (
    SELECT base_id, equipment_type_id, 'purchase' AS kind, quantity,
           purchase_date AS day, id AS source_id
    FROM purchases
    UNION ALL
    SELECT from_base_id, equipment_type_id, 'transfer_out', quantity, transfer_date, id
    FROM transfers WHERE status = 'completed'
    UNION ALL
    SELECT to_base_id, equipment_type_id, 'transfer_in', quantity, transfer_date, id
    FROM transfers WHERE status = 'completed'
    UNION ALL
    SELECT base_id, equipment_type_id, 'assignment', quantity, assignment_date, id
    FROM assignments
    UNION ALL
    SELECT base_id, equipment_type_id, 'expenditure', quantity, expenditure_date, id
    FROM expenditures
)`

// ListMovements returns the ledger lines matching f's base, equipment type and
// end date. The start date is not applied: earlier lines make up the opening
// balance. All tables are read by one statement, so the result is a single
// consistent snapshot.
func ListMovements(ctx context.Context, db DBTX, f model.Filter) ([]model.Movement, error) {
	w := &where{}
	if f.BaseID > 0 {
		w.add("base_id = ?", f.BaseID)
	}
	if f.EquipmentTypeID > 0 {
		w.add("equipment_type_id = ?", f.EquipmentTypeID)
	}
	if !f.EndDate.IsZero() {
		w.add("day <= ?", f.EndDate)
	}

	rows, err := db.QueryContext(ctx,
		movementsQuery+w.String()+` ORDER BY day, kind, source_id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", err)
	}
	defer rows.Close()

	var movements []model.Movement
	for rows.Next() {
		var m model.Movement
		var kind string
		if err := rows.Scan(&m.BaseID, &m.EquipmentTypeID, &kind, &m.Quantity, &m.Date, &m.SourceID); err != nil {
			return nil, fmt.Errorf("scanning movement: %w", err)
		}
		m.Kind = model.MovementKind(kind)
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
