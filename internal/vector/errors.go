package vector

import "errors"

// ErrZeroLength is returned when a direction is requested for the zero vector.
var ErrZeroLength = errors.New("vector: cannot normalize zero-length vector")
