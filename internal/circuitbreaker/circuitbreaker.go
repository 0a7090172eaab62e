package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// State represents the current state of the circuit breaker
type State int

const (
	// StateClosed means requests flow normally
	StateClosed State = iota
	// StateOpen means requests are rejected without being attempted
	StateOpen
	// StateHalfOpen means a limited number of trial requests are allowed
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config contains the configuration shared by every breaker of a Set.
type Config struct {
	FailureThreshold int           // consecutive failures before opening
	Timeout          time.Duration // time spent OPEN before probing
	HalfOpenRequests int           // trials allowed while HALF-OPEN

	// Neutral reports errors that say nothing about upstream health, such as
	// a caller giving up. They count as neither failure nor success.
	// Defaults to context cancellation.
	Neutral func(err error) bool

	// OnStateChange is called with the breaker key on every transition.
	// It runs with the breaker lock held and must not call back into the breaker.
	OnStateChange func(key string, from, to State)
}

var (
	// ErrCircuitOpen is returned while the circuit rejects requests
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrHalfOpenLimitReached is returned when every trial slot is taken
	ErrHalfOpenLimitReached = errors.New("circuit breaker half-open request limit reached")
)

func (c Config) withDefaults() Config {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 5
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.HalfOpenRequests <= 0 {
		c.HalfOpenRequests = 1
	}
	if c.Neutral == nil {
		c.Neutral = isCancellation
	}
	return c
}

// Breaker guards calls to one upstream.
type Breaker struct {
	key    string
	config Config
	logger *slog.Logger
	now    func() time.Time

	mu                sync.Mutex
	state             State
	failureCount      int
	halfOpenRequests  int
	halfOpenSuccesses int
	openedAt          time.Time
}

// New creates a standalone breaker identified by key.
func New(key string, cfg Config, logger *slog.Logger) *Breaker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Breaker{
		key:    key,
		config: cfg.withDefaults(),
		logger: logger,
		now:    time.Now,
		state:  StateClosed,
	}
}

// Execute runs fn if the circuit allows it and records the outcome.
func (b *Breaker) Execute(fn func() error) error {
	if err := b.acquire(); err != nil {
		return err
	}

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case err == nil:
		b.onSuccess()
	case b.config.Neutral(err):
		b.release()
	default:
		b.onFailure()
	}
	return err
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// release gives back a half-open trial slot without judging the upstream.
// Must be called with the lock held.
func (b *Breaker) release() {
	if b.state == StateHalfOpen && b.halfOpenRequests > 0 {
		b.halfOpenRequests--
	}
}

func (b *Breaker) acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.config.Timeout {
		b.transitionTo(StateHalfOpen)
	}

	switch b.state {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if b.halfOpenRequests >= b.config.HalfOpenRequests {
			return ErrHalfOpenLimitReached
		}
		b.halfOpenRequests++
	}
	return nil
}

// Must be called with the lock held.
func (b *Breaker) onFailure() {
	switch b.state {
	case StateHalfOpen:
		b.transitionTo(StateOpen)
	case StateClosed:
		b.failureCount++
		if b.failureCount >= b.config.FailureThreshold {
			b.transitionTo(StateOpen)
		}
	}
}

// Must be called with the lock held.
func (b *Breaker) onSuccess() {
	switch b.state {
	case StateHalfOpen:
		b.halfOpenSuccesses++
		if b.halfOpenSuccesses >= b.config.HalfOpenRequests {
			b.transitionTo(StateClosed)
		}
	case StateClosed:
		b.failureCount = 0
	}
}

// State returns the current state of the breaker.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset closes the breaker.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transitionTo(StateClosed)
}

// Must be called with the lock held.
func (b *Breaker) transitionTo(newState State) {
	if b.state == newState {
		return
	}

	oldState := b.state
	b.state = newState

	b.logger.Warn("circuit breaker state changed",
		"key", b.key,
		"from", oldState.String(),
		"to", newState.String(),
	)
	if b.config.OnStateChange != nil {
		b.config.OnStateChange(b.key, oldState, newState)
	}

	b.halfOpenRequests = 0
	b.halfOpenSuccesses = 0

	switch newState {
	case StateClosed:
		b.failureCount = 0
		b.openedAt = time.Time{}
	case StateOpen:
		b.openedAt = b.now()
	}
}

// Set hands out one breaker per key, created on first use.
type Set struct {
	config Config
	logger *slog.Logger

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewSet creates an empty breaker set.
func NewSet(cfg Config, logger *slog.Logger) *Set {
	return &Set{
		config:   cfg,
		logger:   logger,
		breakers: make(map[string]*Breaker),
	}
}

// Get returns the breaker for key.
func (s *Set) Get(key string) *Breaker {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.breakers[key]
	if !ok {
		b = New(key, s.config, s.logger)
		s.breakers[key] = b
	}
	return b
}
