package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("error not found")
	ErrStockNotActive  = errors.New("error stock is not active")
	ErrNothingToExport = errors.New("error nothing to export")
	ErrStorageDisabled = errors.New("error cloud storage is disabled")
)

// BatchError points at the trade that made a whole batch roll back.
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("trade #%d: %s", e.Index+1, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
