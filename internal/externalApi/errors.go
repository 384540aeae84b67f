package externalApi

import (
	"fmt"

	"github.com/KotFed0t/portfolio_tracker/internal/accounting"
)

// All quote failures wrap accounting.ErrQuoteUnavailable so callers can fall back to a stored price.
var (
	ErrNotFound    = fmt.Errorf("quote not found: %w", accounting.ErrQuoteUnavailable)
	ErrBadResponse = fmt.Errorf("bad quote response: %w", accounting.ErrQuoteUnavailable)
	ErrUnreachable = fmt.Errorf("quote api unreachable: %w", accounting.ErrQuoteUnavailable)
)
