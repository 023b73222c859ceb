package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/arsenal/internal/model"
)

// CreateBase adds a base to the catalog.
func CreateBase(ctx context.Context, db DBTX, name string) (*model.Base, error) {
	result, err := db.ExecContext(ctx, `INSERT INTO bases (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("creating base: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting base id: %w", err)
	}

	return GetBase(ctx, db, id)
}

// GetBase returns a base by ID.
func GetBase(ctx context.Context, db DBTX, id int64) (*model.Base, error) {
	b := &model.Base{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM bases WHERE id = ?`, id,
	).Scan(&b.ID, &b.Name, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting base: %w", err)
	}
	return b, nil
}

// ListBases returns all bases ordered by name.
func ListBases(ctx context.Context, db DBTX) ([]model.Base, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, created_at FROM bases ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing bases: %w", err)
	}
	defer rows.Close()

	var bases []model.Base
	for rows.Next() {
		var b model.Base
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning base: %w", err)
		}
		bases = append(bases, b)
	}
	return bases, rows.Err()
}

// CreateEquipmentType adds an equipment type to the catalog.
func CreateEquipmentType(ctx context.Context, db DBTX, name, category string) (*model.EquipmentType, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO equipment_types (name, category) VALUES (?, ?)`,
		name, category,
	)
	if err != nil {
		return nil, fmt.Errorf("creating equipment type: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting equipment type id: %w", err)
	}

	return GetEquipmentType(ctx, db, id)
}

// GetEquipmentType returns an equipment type by ID.
func GetEquipmentType(ctx context.Context, db DBTX, id int64) (*model.EquipmentType, error) {
	et := &model.EquipmentType{}
	var imageMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, category, image_mime, created_at FROM equipment_types WHERE id = ?`, id,
	).Scan(&et.ID, &et.Name, &et.Category, &imageMime, &et.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting equipment type: %w", err)
	}
	et.ImageMime = imageMime.String
	return et, nil
}

// ListEquipmentTypes returns all equipment types ordered by category and name.
func ListEquipmentTypes(ctx context.Context, db DBTX) ([]model.EquipmentType, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, category, image_mime, created_at
		 FROM equipment_types ORDER BY category, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing equipment types: %w", err)
	}
	defer rows.Close()

	var types []model.EquipmentType
	for rows.Next() {
		var et model.EquipmentType
		var imageMime sql.NullString
		if err := rows.Scan(&et.ID, &et.Name, &et.Category, &imageMime, &et.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning equipment type: %w", err)
		}
		et.ImageMime = imageMime.String
		types = append(types, et)
	}
	return types, rows.Err()
}

// SetEquipmentTypeImage stores a photo for an equipment type.
// It returns false if the equipment type does not exist.
func SetEquipmentTypeImage(ctx context.Context, db DBTX, id int64, image []byte, mime string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE equipment_types SET image = ?, image_mime = ? WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return false, fmt.Errorf("setting equipment type image: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking equipment type image update: %w", err)
	}
	return n > 0, nil
}

// GetEquipmentTypeImage returns an equipment type's photo and MIME type.
func GetEquipmentTypeImage(ctx context.Context, db DBTX, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM equipment_types WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting equipment type image: %w", err)
	}
	return image, mime.String, nil
}

// Catalog exposes the reference data to the core as a read-only collaborator.
type Catalog struct {
	DB DBTX
}

// ListBases implements the catalog contract.
func (c Catalog) ListBases(ctx context.Context) ([]model.Base, error) {
	return ListBases(ctx, c.DB)
}

// ListEquipmentTypes implements the catalog contract.
func (c Catalog) ListEquipmentTypes(ctx context.Context) ([]model.EquipmentType, error) {
	return ListEquipmentTypes(ctx, c.DB)
}
