package model

import "time"

// Code is a single-use secret belonging to one product. A code moves
// from unsold to sold exactly once and is never deleted or reverted.
type Code struct {
	ID           string
	ProductID    string
	Payload      string // unique across the whole pool
	Sold         bool
	SoldToUserID *string    // Pointer to allow for NULL
	SoldAt       *time.Time // Pointer to allow for NULL
	CreatedAt    time.Time
}
