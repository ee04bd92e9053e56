package dynamo

import (
	"time"

	"github.com/san-kum/gravsim/internal/physics"
)

// Stepper is the engine surface the driver needs. *physics.System
// satisfies it.
type Stepper interface {
	Step(dt float64) error
	Snapshot() []physics.Body
}

// Frame is the state observed after a tick. Bodies is a copy owned by the
// frame's receiver.
type Frame struct {
	Step   int
	Time   float64
	Bodies []physics.Body
}

// IsValid reports whether every body in the frame is finite.
func (f Frame) IsValid() bool {
	for _, b := range f.Bodies {
		if !b.IsFinite() {
			return false
		}
	}
	return true
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(f Frame) error
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(f Frame) error

func (fn ObserverFunc) OnStep(f Frame) error { return fn(f) }

type Config struct {
	// Dt is the time delta handed to every Step call.
	Dt float64
	// Steps bounds the run; 0 runs until the context is done.
	Steps int
	// Pace is the minimum wall-clock interval between ticks; 0 disables pacing.
	Pace time.Duration
	// ValidateState stops the run with ErrUnstable once a frame holds NaN or Inf.
	ValidateState bool
}

// DefaultConfig is the classic driver: one time unit per tick, paced
// at one tick per millisecond, forever.
func DefaultConfig() Config {
	return Config{
		Dt:   1,
		Pace: time.Millisecond,
	}
}

type Result struct {
	StepsTaken int
	Time       float64
	Metrics    map[string]float64
	Final      []physics.Body
}
