package visualizer

import "errors"

var (
	ErrNilSource        = errors.New("visualizer: change source is nil")
	ErrNilFactory       = errors.New("visualizer: representation factory is nil")
	ErrNilViewer        = errors.New("visualizer: viewer is nil")
	ErrDestroyed        = errors.New("visualizer: destroyed")
	ErrAlreadyDestroyed = errors.New("visualizer: already destroyed")
	ErrNoRepresentation = errors.New("visualizer: no representation could be built")
)
