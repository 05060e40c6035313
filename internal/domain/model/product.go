package model

import "time"

// ProductKind distinguishes products fulfilled by a secret code from
// plain ones that only debit the balance.
type ProductKind string

const (
	ProductKindCode  ProductKind = "code"
	ProductKindPlain ProductKind = "plain"
)

func (k ProductKind) Valid() bool {
	return k == ProductKindCode || k == ProductKindPlain
}

// Product is a catalog entry. Price/name edits never rewrite completed
// sales; a Purchase row keeps the price that was actually paid.
type Product struct {
	ID        string
	Name      string
	Price     int // credits, never negative
	Kind      ProductKind
	CreatedAt time.Time
}
