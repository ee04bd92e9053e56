package analysis

import "errors"

var (
	ErrShortSeries   = errors.New("analysis: series too short")
	ErrNoOscillation = errors.New("analysis: series has no oscillating component")
)
