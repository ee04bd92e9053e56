package physics

import (
	"fmt"
	"io"

	"github.com/san-kum/gravsim/internal/vector"
)

// Body is a point mass. Mass is not validated; zero or negative values give
// non-physical but well-defined results.
type Body struct {
	Name string
	Mass float64
	Pos  vector.Vector3
	Vel  vector.Vector3
	Acc  vector.Vector3
}

// NewBody mirrors the (mass, pos, vel, acc) seeding order of the driver.
func NewBody(mass float64, pos, vel, acc vector.Vector3) Body {
	return Body{Mass: mass, Pos: pos, Vel: vel, Acc: acc}
}

// IsFinite reports whether position, velocity and acceleration are all finite.
func (b Body) IsFinite() bool {
	return b.Pos.IsFinite() && b.Vel.IsFinite() && b.Acc.IsFinite()
}

// Fprint writes the body as "pos: {..}vel: {..}acc: {..}" without a newline.
func (b Body) Fprint(w io.Writer) error {
	_, err := fmt.Fprintf(w, "pos: %svel: %sacc: %s", b.Pos, b.Vel, b.Acc)
	return err
}

// PrintBodies writes one Fprint line per body.
func PrintBodies(w io.Writer, bodies []Body) error {
	for _, b := range bodies {
		if err := b.Fprint(w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
