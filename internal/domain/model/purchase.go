package model

import "time"

// Purchase is the audit row written when a buy commits. It is inserted
// in the same transaction as the allocation and the debit, so it exists
// exactly for the purchases that actually happened.
type Purchase struct {
	ID        string // ULID, sorts by creation time
	UserID    string
	ProductID string
	Price     int     // price paid, immune to later catalog edits
	CodeID    *string // nil for plain products
	CreatedAt time.Time
}

// Receipt is the transient result handed back to the buyer. The payload
// is shown once by the bot layer and never stored outside the codes table.
type Receipt struct {
	PurchaseID  string
	ProductName string
	Price       int
	NewBalance  int
	CodePayload string // empty for plain products
}
