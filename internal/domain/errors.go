package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrNotConfigured    = errors.New("account not configured: exchange rate required")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrInvalidRate      = errors.New("exchange rate must be greater than zero")
	ErrInvalidPercent   = errors.New("percentage must not be negative")
	ErrInvalidKind      = errors.New("invalid entry kind")
	ErrDuplicateMessage = errors.New("message already processed")
	ErrInvalidRequest   = errors.New("invalid request")
)
