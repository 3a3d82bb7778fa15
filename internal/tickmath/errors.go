package tickmath

import "errors"

var (
	// ErrInvalidArgument reports a mathematically undefined input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOutOfRange reports a tick beyond [MinTick, MaxTick].
	ErrOutOfRange = errors.New("tick out of range")
)
