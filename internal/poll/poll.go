// Package poll implements the bounded retry policy used when waiting
// for an order to materialize after checkout. The state machine is
// pure; Run drives it against a probe function on a fixed interval.
package poll

import (
	"context"
	"errors"
	"time"
)

// State is the lifecycle state of a poll.
type State int

const (
	// StatePolling means attempts remain and no outcome yet.
	StatePolling State = iota
	// StateFound means the probe located the resource.
	StateFound
	// StateExhausted means every attempt returned pending.
	StateExhausted
	// StateFatal means a probe failed in a way retrying cannot fix.
	StateFatal
)

func (s State) String() string {
	switch s {
	case StatePolling:
		return "polling"
	case StateFound:
		return "found"
	case StateExhausted:
		return "exhausted"
	case StateFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Outcome is the result of a single probe.
type Outcome int

const (
	// OutcomePending consumes an attempt and keeps polling.
	OutcomePending Outcome = iota
	// OutcomeFound terminates the poll successfully.
	OutcomeFound
	// OutcomeFatal terminates the poll with failure.
	OutcomeFatal
)

// ErrExhausted is returned by Run when every attempt came back pending.
var ErrExhausted = errors.New("poll: attempts exhausted")

// Policy bounds a poll.
type Policy struct {
	// Interval between attempts.
	Interval time.Duration
	// MaxAttempts before the poll is exhausted. Must be >= 1.
	MaxAttempts int
}

// DefaultPolicy matches the post-checkout confirmation page: ten
// probes, one second apart.
var DefaultPolicy = Policy{
	Interval:    time.Second,
	MaxAttempts: 10,
}

// Machine tracks poll progress. The zero value is not usable; create
// one with New.
type Machine struct {
	policy  Policy
	attempt int
	state   State
}

// New creates a machine in StatePolling.
func New(policy Policy) *Machine {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Machine{policy: policy, state: StatePolling}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Attempt returns the number of attempts observed so far.
func (m *Machine) Attempt() int {
	return m.attempt
}

// Observe feeds one probe outcome into the machine and returns the
// resulting state. Observing after a terminal state is a no-op.
func (m *Machine) Observe(outcome Outcome) State {
	if m.state != StatePolling {
		return m.state
	}

	m.attempt++
	switch outcome {
	case OutcomeFound:
		m.state = StateFound
	case OutcomeFatal:
		m.state = StateFatal
	case OutcomePending:
		if m.attempt >= m.policy.MaxAttempts {
			m.state = StateExhausted
		}
	}
	return m.state
}

// Done reports whether the machine reached a terminal state.
func (m *Machine) Done() bool {
	return m.state != StatePolling
}

// Probe checks once for the awaited resource. A nil error with
// OutcomePending means keep going; the error is only consulted for
// OutcomeFatal, where it becomes Run's return value.
type Probe func(ctx context.Context) (Outcome, error)

// Run drives a machine against the probe until a terminal state, the
// context is cancelled, or attempts run out. It returns nil on
// StateFound, ErrExhausted on StateExhausted, and the probe's error on
// StateFatal.
func Run(ctx context.Context, policy Policy, probe Probe) error {
	m := New(policy)
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		outcome, err := probe(ctx)
		switch m.Observe(outcome) {
		case StateFound:
			return nil
		case StateExhausted:
			return ErrExhausted
		case StateFatal:
			if err == nil {
				err = errors.New("poll: probe failed")
			}
			return err
		}

		timer.Reset(policy.Interval)
	}
}
