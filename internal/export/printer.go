package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

// Formats lists the names accepted by NewPrinter.
var Formats = []string{"text", "csv", "json"}

// NewPrinter returns an observer writing every frame to w in the named
// format.
func NewPrinter(format string, w io.Writer) (dynamo.Observer, error) {
	switch format {
	case "", "text":
		return NewTextPrinter(w), nil
	case "csv":
		return NewCSVPrinter(w), nil
	case "json":
		return NewJSONPrinter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s (available: %v)", format, Formats)
	}
}

// TextPrinter writes one "pos: {..}vel: {..}acc: {..}" line per body.
type TextPrinter struct {
	w io.Writer
}

func NewTextPrinter(w io.Writer) *TextPrinter {
	return &TextPrinter{w: w}
}

func (p *TextPrinter) OnStep(f dynamo.Frame) error {
	return physics.PrintBodies(p.w, f.Bodies)
}

// CSVPrinter writes one row per body per frame, header first.
type CSVPrinter struct {
	w           *csv.Writer
	wroteHeader bool
}

func NewCSVPrinter(w io.Writer) *CSVPrinter {
	return &CSVPrinter{w: csv.NewWriter(w)}
}

var csvHeader = []string{
	"step", "time", "body", "name", "mass",
	"px", "py", "pz", "vx", "vy", "vz", "ax", "ay", "az",
}

func (p *CSVPrinter) OnStep(f dynamo.Frame) error {
	if !p.wroteHeader {
		if err := p.w.Write(csvHeader); err != nil {
			return err
		}
		p.wroteHeader = true
	}

	for i, b := range f.Bodies {
		row := []string{
			strconv.Itoa(f.Step),
			formatFloat(f.Time),
			strconv.Itoa(i),
			b.Name,
			formatFloat(b.Mass),
		}
		for _, v := range [][]float64{b.Pos.Slice(), b.Vel.Slice(), b.Acc.Slice()} {
			for _, c := range v {
				row = append(row, formatFloat(c))
			}
		}
		if err := p.w.Write(row); err != nil {
			return err
		}
	}

	p.w.Flush()
	return p.w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// JSONPrinter writes one JSON object per frame (JSON lines).
type JSONPrinter struct {
	enc *json.Encoder
}

func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{enc: json.NewEncoder(w)}
}

func (p *JSONPrinter) OnStep(f dynamo.Frame) error {
	return p.enc.Encode(NewFrameData(f))
}
