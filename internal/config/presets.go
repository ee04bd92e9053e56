package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/gravsim/internal/physics"
)

var Presets = map[string]*Config{
	"binary": DefaultConfig(),
	"sun-earth": {
		Name: "sun-earth", G: physics.G, Dt: 3600, Steps: 24 * 365, Policy: "skip", Scheme: "current",
		Bodies: []BodyConfig{
			{Name: "sun", Mass: 1.989e30, Pos: []float64{0, 0, 0}},
			{Name: "earth", Mass: 5.972e24, Pos: []float64{1.496e11, 0, 0}, Vel: []float64{0, 29780, 0}},
		},
	},
	"earth-moon": {
		Name: "earth-moon", G: physics.G, Dt: 60, Steps: 60 * 24 * 28, Policy: "skip", Scheme: "current",
		Bodies: []BodyConfig{
			{Name: "earth", Mass: 5.972e24, Pos: []float64{0, 0, 0}, Vel: []float64{0, -12.57, 0}},
			{Name: "moon", Mass: 7.342e22, Pos: []float64{3.844e8, 0, 0}, Vel: []float64{0, 1022, 0}},
		},
	},
	"figure-eight": {
		Name: "figure-eight", G: 1, Dt: 0.001, Steps: 6326, Policy: "skip", Scheme: "current",
		Bodies: []BodyConfig{
			{Name: "a", Mass: 1, Pos: []float64{0.97000436, -0.24308753, 0}, Vel: []float64{0.466203685, 0.43236573, 0}},
			{Name: "b", Mass: 1, Pos: []float64{-0.97000436, 0.24308753, 0}, Vel: []float64{0.466203685, 0.43236573, 0}},
			{Name: "c", Mass: 1, Pos: []float64{0, 0, 0}, Vel: []float64{-0.93240737, -0.86473146, 0}},
		},
	},
	"coincident": {
		Name: "coincident", G: 1, Dt: 0.01, Steps: 1000, Policy: "soften", Scheme: "current", Softening: 0.05,
		Bodies: []BodyConfig{
			{Name: "a", Mass: 1, Pos: []float64{0, 0, 0}},
			{Name: "b", Mass: 1, Pos: []float64{0, 0, 0}},
			{Name: "c", Mass: 2, Pos: []float64{3, 0, 0}, Vel: []float64{0, 0.5, 0}},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// MustPreset is GetPreset with an error for unknown names.
func MustPreset(name string) (*Config, error) {
	cfg := GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownPreset, name, ListPresets())
	}
	return cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
