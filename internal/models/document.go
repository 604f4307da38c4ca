package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is one annotatable text. Body is the canonical text all span
// offsets point into.
type Document struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
