package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/vector"
)

var (
	ErrBadNumber = errors.New("export: not a number")
	ErrBadVector = errors.New("export: vector must hold three numbers")
)

// Non-finite values are written as the strings "NaN", "+Inf" and "-Inf",
// which JSON numbers cannot express.
func wireFloat(x float64) any {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "+Inf"
	case math.IsInf(x, -1):
		return "-Inf"
	default:
		return x
	}
}

func parseWireFloat(c any) (float64, error) {
	switch x := c.(type) {
	case float64:
		return x, nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil || !(math.IsNaN(f) || math.IsInf(f, 0)) {
			return 0, fmt.Errorf("%w: %q", ErrBadNumber, x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrBadNumber, c)
	}
}

// Scalar is a float64 that survives the wire when non-finite.
type Scalar float64

func (s Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireFloat(float64(s)))
}

func (s *Scalar) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f, err := parseWireFloat(raw)
	if err != nil {
		return err
	}
	*s = Scalar(f)
	return nil
}

// Vec is a vector on the wire, encoded as a three-element array.
type Vec [3]float64

func NewVec(v vector.Vector3) Vec {
	return Vec{v.X, v.Y, v.Z}
}

func (v Vec) MarshalJSON() ([]byte, error) {
	out := make([]any, len(v))
	for i, x := range v {
		out[i] = wireFloat(x)
	}
	return json.Marshal(out)
}

func (v *Vec) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != len(v) {
		return fmt.Errorf("%w: got %d", ErrBadVector, len(raw))
	}
	for i, c := range raw {
		f, err := parseWireFloat(c)
		if err != nil {
			return fmt.Errorf("component %d: %w", i, err)
		}
		v[i] = f
	}
	return nil
}

// BodyData is the wire form of one body.
type BodyData struct {
	Name string `json:"name,omitempty"`
	Mass Scalar `json:"mass"`
	Pos  Vec    `json:"pos"`
	Vel  Vec    `json:"vel"`
	Acc  Vec    `json:"acc"`
}

// FrameData is the wire form of a frame, shared by the JSON printer and the
// websocket stream. Valid is false once any body holds NaN or Inf.
type FrameData struct {
	Type   string     `json:"type"`
	Step   int        `json:"step"`
	Time   float64    `json:"time"`
	Valid  bool       `json:"valid"`
	Bodies []BodyData `json:"bodies"`
}

func NewFrameData(f dynamo.Frame) FrameData {
	data := FrameData{
		Type:   "snapshot",
		Step:   f.Step,
		Time:   f.Time,
		Valid:  f.IsValid(),
		Bodies: make([]BodyData, len(f.Bodies)),
	}
	for i, b := range f.Bodies {
		data.Bodies[i] = BodyData{
			Name: b.Name,
			Mass: Scalar(b.Mass),
			Pos:  NewVec(b.Pos),
			Vel:  NewVec(b.Vel),
			Acc:  NewVec(b.Acc),
		}
	}
	return data
}
