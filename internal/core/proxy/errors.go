package proxy

import "errors"

var (
	// Construction errors

	ErrNoRepresentations = errors.New("proxy requires at least one representation")
	ErrNilHandle         = errors.New("representation handle is nil")
	ErrInvalidThresholds = errors.New("invalid representation thresholds")
	ErrInvalidPosition   = errors.New("proxy position is not finite")

	// Lifecycle errors

	ErrDestroyed        = errors.New("proxy primitive is destroyed")
	ErrAlreadyDestroyed = errors.New("proxy primitive was already destroyed")
)
