package trade

import "errors"

// Domain failures surfaced to the user. Handlers map each to a message
// and an HTTP status; anything else becomes a generic 500.
var (
	ErrInvalidShares      = errors.New("shares must be a positive whole number")
	ErrMissingSymbol      = errors.New("missing symbol")
	ErrUnknownSymbol      = errors.New("invalid symbol")
	ErrInsufficientFunds  = errors.New("not enough cash on hand")
	ErrInsufficientShares = errors.New("not enough shares owned")
	ErrQuoteUnavailable   = errors.New("quote service unavailable")
)
