package workorder

import "errors"

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("record not found")
	ErrInvalidState = errors.New("invalid work order state")
)
