package models

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a user-defined highlight category. Labels are free text and not
// required to be unique. A span's tag_id is a weak reference: deleting a tag
// leaves spans that point at it untouched.
type Tag struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	Label        string    `json:"label"`
	Color        string    `json:"color"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
