package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidInput       = errors.New("invalid provisioning input")
	ErrInvalidExecContext = errors.New("invalid query execution context")

	// Purchase rejections, surfaced verbatim to the buyer.
	ErrProductNotFound   = errors.New("product not found")
	ErrOutOfStock        = errors.New("no unsold code available")
	ErrInsufficientFunds = errors.New("insufficient balance")

	// ErrInternal hides storage details after transient retries are exhausted.
	ErrInternal = errors.New("internal error")

	// ErrRateLimited is returned by the bot layer when a user sends
	// buy requests faster than the configured window allows.
	ErrRateLimited = errors.New("too many requests")
)

// IsPurchaseRejection reports whether err is one of the three terminal,
// user-visible purchase rejections. Rejections are never retried and
// never leave side effects behind.
func IsPurchaseRejection(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOutOfStock) ||
		errors.Is(err, ErrInsufficientFunds)
}
