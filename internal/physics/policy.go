package physics

import (
	"fmt"
	"strings"
)

// Policy selects how a pair of bodies at zero separation is handled during
// force accumulation.
type Policy int

const (
	// SkipCoincident drops the pair's contribution.
	SkipCoincident Policy = iota
	// Soften adds the softening length squared to every squared separation.
	// Coincident pairs contribute nothing.
	Soften
	// FailCoincident aborts the step with ErrCoincidentBodies.
	FailCoincident
	// Propagate performs the division anyway and lets NaN flow into the state.
	Propagate
)

var policyNames = map[Policy]string{
	SkipCoincident: "skip",
	Soften:         "soften",
	FailCoincident: "fail",
	Propagate:      "propagate",
}

func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

func ParsePolicy(s string) (Policy, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return SkipCoincident, nil
	}
	for p, name := range policyNames {
		if name == key {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// Scheme selects the velocity update rule of the integration pass. The
// position update is the same for every scheme.
type Scheme int

const (
	// CurrentAccel: vel += newAcc*dt.
	CurrentAccel Scheme = iota
	// LaggedAccel: vel += acc*dt, using the acceleration stored last step.
	LaggedAccel
	// Reference: vel = acc*dt. Prior velocity is discarded every tick.
	Reference
)

var schemeNames = map[Scheme]string{
	CurrentAccel: "current",
	LaggedAccel:  "lagged",
	Reference:    "reference",
}

func (s Scheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("scheme(%d)", int(s))
}

func ParseScheme(s string) (Scheme, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return CurrentAccel, nil
	}
	for sc, name := range schemeNames {
		if name == key {
			return sc, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScheme, s)
}
