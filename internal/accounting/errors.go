package accounting

import "errors"

var (
	ErrInvalidTrade         = errors.New("invalid trade")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrUnknownStock         = errors.New("unknown stock")
	ErrInvalidRatio         = errors.New("invalid ratio")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	ErrQuoteUnavailable     = errors.New("quote unavailable")
)
