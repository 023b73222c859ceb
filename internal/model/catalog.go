package model

import "time"

// Base is a site that holds equipment.
type Base struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// EquipmentType is a kind of tracked equipment (quantity-based, not individual tracking).
type EquipmentType struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	ImageMime string    `json:"image_mime,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
