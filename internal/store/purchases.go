package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/arsenal/internal/model"
)

const purchaseColumns = `p.id, p.base_id, p.equipment_type_id, p.quantity, p.purchase_date,
	p.notes, p.created_by, p.created_at, b.name, e.name`

const purchaseFrom = ` FROM purchases p
	JOIN bases b ON b.id = p.base_id
	JOIN equipment_types e ON e.id = p.equipment_type_id`

func scanPurchase(row interface{ Scan(...any) error }) (*model.Purchase, error) {
	p := &model.Purchase{}
	var notes sql.NullString
	err := row.Scan(&p.ID, &p.BaseID, &p.EquipmentTypeID, &p.Quantity, &p.PurchaseDate,
		&notes, &p.CreatedBy, &p.CreatedAt, &p.BaseName, &p.EquipmentName)
	if err != nil {
		return nil, err
	}
	p.Notes = notes.String
	return p, nil
}

// CreatePurchase appends a purchase record.
func CreatePurchase(ctx context.Context, db DBTX, p *model.Purchase) (*model.Purchase, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO purchases (base_id, equipment_type_id, quantity, purchase_date, notes, created_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.BaseID, p.EquipmentTypeID, p.Quantity, p.PurchaseDate, nullString(p.Notes), p.CreatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("creating purchase: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting purchase id: %w", err)
	}

	return GetPurchase(ctx, db, id)
}

// GetPurchase returns a purchase by ID.
func GetPurchase(ctx context.Context, db DBTX, id int64) (*model.Purchase, error) {
	p, err := scanPurchase(db.QueryRowContext(ctx,
		`SELECT `+purchaseColumns+purchaseFrom+` WHERE p.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting purchase: %w", err)
	}
	return p, nil
}

// ListPurchases returns purchases matching f, newest first.
func ListPurchases(ctx context.Context, db DBTX, f model.Filter) ([]model.Purchase, error) {
	w := recordFilter(f, "p", "purchase_date")
	rows, err := db.QueryContext(ctx,
		`SELECT `+purchaseColumns+purchaseFrom+w.String()+
			` ORDER BY p.purchase_date DESC, p.id DESC`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing purchases: %w", err)
	}
	defer rows.Close()

	var purchases []model.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning purchase: %w", err)
		}
		purchases = append(purchases, *p)
	}
	return purchases, rows.Err()
}
