package dynamo

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Simulator drives a Stepper at a fixed dt, feeding metrics and observers
// after every tick. All calls into the Stepper happen on the caller's
// goroutine.
type Simulator struct {
	sys       Stepper
	cfg       Config
	metrics   []Metric
	observers []Observer
	step      int
	t         float64
	started   bool
}

func New(sys Stepper, cfg Config) (*Simulator, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return &Simulator{
		sys:       sys,
		cfg:       cfg,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}, nil
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Config() Config { return s.cfg }
func (s *Simulator) Steps() int     { return s.step }
func (s *Simulator) Time() float64  { return s.t }

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Steps < 0 {
		return fmt.Errorf("%w: steps must not be negative, got %d", ErrInvalidConfig, cfg.Steps)
	}
	if cfg.Pace < 0 {
		return fmt.Errorf("%w: pace must not be negative, got %v", ErrInvalidConfig, cfg.Pace)
	}
	return nil
}

// Reset rewinds the clock and metrics. The engine state is left alone.
func (s *Simulator) Reset() {
	s.step = 0
	s.t = 0
	s.started = false
	for _, m := range s.metrics {
		m.Reset()
	}
}

// Tick advances the engine by one dt and notifies metrics and observers.
// Metrics also see the initial frame before the first tick.
func (s *Simulator) Tick() (Frame, error) {
	if !s.started {
		s.started = true
		initial := Frame{Step: 0, Time: 0, Bodies: s.sys.Snapshot()}
		for _, m := range s.metrics {
			m.Observe(initial)
		}
	}

	if err := s.sys.Step(s.cfg.Dt); err != nil {
		return Frame{}, &SimulationError{Step: s.step + 1, Time: s.t, Wrapped: err}
	}
	s.step++
	s.t += s.cfg.Dt

	frame := Frame{Step: s.step, Time: s.t, Bodies: s.sys.Snapshot()}

	if s.cfg.ValidateState && !frame.IsValid() {
		return frame, &SimulationError{Step: s.step, Time: s.t, Wrapped: ErrUnstable}
	}

	for _, m := range s.metrics {
		m.Observe(frame)
	}
	for _, obs := range s.observers {
		if err := obs.OnStep(frame); err != nil {
			return frame, &SimulationError{Step: s.step, Time: s.t, Wrapped: err}
		}
	}

	return frame, nil
}

// Run ticks until cfg.Steps is reached or ctx is done. The returned result
// is valid even when an error is returned.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	s.Reset()

	var limiter *rate.Limiter
	if s.cfg.Pace > 0 {
		limiter = rate.NewLimiter(rate.Every(s.cfg.Pace), 1)
	}

	var runErr error
	for s.cfg.Steps == 0 || s.step < s.cfg.Steps {
		select {
		case <-ctx.Done():
			return s.result(), ctx.Err()
		default:
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return s.result(), err
			}
		}

		if _, err := s.Tick(); err != nil {
			runErr = err
			break
		}
	}

	return s.result(), runErr
}

func (s *Simulator) result() *Result {
	res := &Result{
		StepsTaken: s.step,
		Time:       s.t,
		Metrics:    make(map[string]float64, len(s.metrics)),
		Final:      s.sys.Snapshot(),
	}
	for _, m := range s.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res
}
