package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the breaker state.
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned while the breaker is rejecting calls.
var ErrOpen = errors.New("circuit breaker is open")

// ErrTooManyProbes is returned when the half-open probe budget is spent.
var ErrTooManyProbes = errors.New("too many probes in half-open state")

// Settings configures a Breaker.
type Settings struct {
	FailureThreshold int           // consecutive failures that trip the breaker
	SuccessThreshold int           // consecutive half-open successes that close it
	Cooldown         time.Duration // how long to stay open before probing
	MaxProbes        int           // concurrent requests allowed while half-open
}

// DefaultSettings returns conservative defaults for a flaky local service.
func DefaultSettings() Settings {
	return Settings{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Cooldown:         30 * time.Second,
		MaxProbes:        1,
	}
}

// Breaker guards an external capability against repeated failures. Closed
// passes calls through, Open rejects them until Cooldown elapses, HalfOpen
// lets a bounded number of probes decide whether to close again.
type Breaker struct {
	name     string
	settings Settings
	logger   *zap.Logger
	now      func() time.Time

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	inflight  int
	openedAt  time.Time
}

// New creates a breaker with the given settings.
func New(name string, settings Settings, logger *zap.Logger) *Breaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Breaker{name: name, settings: settings, logger: logger, now: time.Now}
}

// Do runs fn if the breaker allows it, recording the result. The context is
// not used to time fn out; that remains the capability's responsibility.
func (b *Breaker) Do(_ context.Context, fn func() error) error {
	if err := b.before(); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			b.after(false)
			panic(r)
		}
	}()
	err := fn()
	b.after(err == nil)
	return err
}

// State reports the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	return b.state
}

func (b *Breaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()

	switch b.state {
	case StateOpen:
		return ErrOpen
	case StateHalfOpen:
		if b.inflight >= b.settings.MaxProbes {
			return ErrTooManyProbes
		}
	}
	b.inflight++
	return nil
}

func (b *Breaker) after(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	if b.inflight > 0 {
		b.inflight--
	}

	if success {
		b.failures = 0
		if b.state == StateHalfOpen {
			b.successes++
			if b.successes >= b.settings.SuccessThreshold {
				b.transition(StateClosed)
			}
		}
		return
	}

	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.settings.FailureThreshold {
			b.transition(StateOpen)
		}
	case StateHalfOpen:
		b.transition(StateOpen)
	}
}

// refresh moves an expired open breaker to half-open. Callers must hold mu.
func (b *Breaker) refresh() {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.settings.Cooldown {
		b.transition(StateHalfOpen)
	}
}

func (b *Breaker) transition(next State) {
	if b.state == next {
		return
	}
	prev := b.state
	b.state = next
	b.failures = 0
	b.successes = 0
	if next == StateOpen {
		b.openedAt = b.now()
	}
	b.logger.Info("circuit breaker state changed",
		zap.String("name", b.name),
		zap.String("from", prev.String()),
		zap.String("to", next.String()),
	)
}
