package physics

import "errors"

// Domain errors for the N-body engine.
var (
	// ErrCoincidentBodies indicates two bodies share a position under the
	// FailCoincident policy.
	ErrCoincidentBodies = errors.New("physics: coincident bodies (zero separation)")

	// ErrNonFinite indicates a NaN or Inf appeared in a body's state.
	ErrNonFinite = errors.New("physics: non-finite body state")

	// ErrUnknownPolicy indicates an unrecognised singularity policy name.
	ErrUnknownPolicy = errors.New("physics: unknown singularity policy")

	// ErrUnknownScheme indicates an unrecognised velocity scheme name.
	ErrUnknownScheme = errors.New("physics: unknown velocity scheme")
)
