package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/vector"
)

const (
	DefaultDt     = 1.0
	DefaultPace   = "1ms"
	DefaultPolicy = "skip"
	DefaultScheme = "current"
)

var (
	ErrUnknownPreset = errors.New("config: unknown preset")
	ErrInvalid       = errors.New("config: invalid scenario")
)

// Config is a YAML scenario: engine constants, run settings and the
// initial bodies.
type Config struct {
	Name          string       `yaml:"name"`
	G             float64      `yaml:"g"`
	Dt            float64      `yaml:"dt"`
	Steps         int          `yaml:"steps"`
	Pace          string       `yaml:"pace"`
	Policy        string       `yaml:"policy"`
	Scheme        string       `yaml:"scheme"`
	Softening     float64      `yaml:"softening,omitempty"`
	ValidateState bool         `yaml:"validate,omitempty"`
	Bodies        []BodyConfig `yaml:"bodies"`
}

type BodyConfig struct {
	Name string    `yaml:"name,omitempty"`
	Mass float64   `yaml:"mass"`
	Pos  []float64 `yaml:"pos,flow"`
	Vel  []float64 `yaml:"vel,flow,omitempty"`
	Acc  []float64 `yaml:"acc,flow,omitempty"`
}

// DefaultConfig is the classic two-body scenario: masses 10 and 20, 100 m
// apart, at rest.
func DefaultConfig() *Config {
	return &Config{
		Name:   "binary",
		G:      physics.G,
		Dt:     DefaultDt,
		Pace:   DefaultPace,
		Policy: DefaultPolicy,
		Scheme: DefaultScheme,
		Bodies: []BodyConfig{
			{Name: "a", Mass: 10, Pos: []float64{0, 0, 0}},
			{Name: "b", Mass: 20, Pos: []float64{100, 0, 0}},
		},
	}
}

// Load reads a scenario file. Fields missing from the file keep their
// DefaultConfig values, except bodies which are replaced wholesale.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Bodies = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML to w.
func Save(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalid, c.Dt)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps must not be negative, got %d", ErrInvalid, c.Steps)
	}
	if _, err := c.PaceDuration(); err != nil {
		return err
	}
	if _, err := physics.ParsePolicy(c.Policy); err != nil {
		return err
	}
	if _, err := physics.ParseScheme(c.Scheme); err != nil {
		return err
	}
	for i, b := range c.Bodies {
		for _, v := range [][]float64{b.Pos, b.Vel, b.Acc} {
			if len(v) > 3 {
				return fmt.Errorf("%w: body %d has a vector with %d components", ErrInvalid, i, len(v))
			}
		}
	}
	return nil
}

func (c *Config) PaceDuration() (time.Duration, error) {
	if c.Pace == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Pace)
	if err != nil {
		return 0, fmt.Errorf("%w: pace: %v", ErrInvalid, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: pace must not be negative", ErrInvalid)
	}
	return d, nil
}

// Build constructs the engine and seeds it with the scenario's bodies.
func (c *Config) Build() (*physics.System, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	policy, _ := physics.ParsePolicy(c.Policy)
	scheme, _ := physics.ParseScheme(c.Scheme)

	opts := []physics.Option{
		physics.WithG(c.G),
		physics.WithPolicy(policy),
		physics.WithScheme(scheme),
		physics.WithSoftening(c.Softening),
	}
	if c.ValidateState {
		opts = append(opts, physics.WithFiniteCheck())
	}

	sys := physics.New(opts...)
	for _, b := range c.Bodies {
		sys.AddBody(physics.Body{
			Name: b.Name,
			Mass: b.Mass,
			Pos:  vector.FromSlice(b.Pos),
			Vel:  vector.FromSlice(b.Vel),
			Acc:  vector.FromSlice(b.Acc),
		})
	}
	return sys, nil
}

// RunConfig returns the driver settings of the scenario.
func (c *Config) RunConfig() (dynamo.Config, error) {
	pace, err := c.PaceDuration()
	if err != nil {
		return dynamo.Config{}, err
	}
	return dynamo.Config{
		Dt:            c.Dt,
		Steps:         c.Steps,
		Pace:          pace,
		ValidateState: c.ValidateState,
	}, nil
}

// Clone returns a deep copy so presets are never mutated by callers.
func (c *Config) Clone() *Config {
	out := *c
	out.Bodies = make([]BodyConfig, len(c.Bodies))
	for i, b := range c.Bodies {
		out.Bodies[i] = BodyConfig{
			Name: b.Name,
			Mass: b.Mass,
			Pos:  append([]float64(nil), b.Pos...),
			Vel:  append([]float64(nil), b.Vel...),
			Acc:  append([]float64(nil), b.Acc...),
		}
	}
	return &out
}
