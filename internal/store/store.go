// Package store is the SQLite persistence layer. Functions take a DBTX so the
// same code runs against the pool or inside a caller-owned transaction.
// Lookups return (nil, nil) when the row does not exist.
package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/erazemk/arsenal/internal/model"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

// where accumulates AND-ed conditions.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, args ...any) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// recordFilter builds the conditions shared by the single-base record tables.
func recordFilter(f model.Filter, alias, dateCol string) *where {
	w := &where{}
	if f.BaseID > 0 {
		w.add(alias+".base_id = ?", f.BaseID)
	}
	if f.EquipmentTypeID > 0 {
		w.add(alias+".equipment_type_id = ?", f.EquipmentTypeID)
	}
	if !f.StartDate.IsZero() {
		w.add(alias+"."+dateCol+" >= ?", f.StartDate)
	}
	if !f.EndDate.IsZero() {
		w.add(alias+"."+dateCol+" <= ?", f.EndDate)
	}
	return w
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
