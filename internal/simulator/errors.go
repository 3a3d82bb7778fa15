package simulator

import "errors"

var (
	// ErrInvalidRange reports tickLower >= tickUpper.
	ErrInvalidRange = errors.New("invalid tick range")
	// ErrInvalidAmount reports a non-positive investment.
	ErrInvalidAmount = errors.New("invalid investment amount")
)
