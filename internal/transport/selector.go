package transport

import "testing"

// Environment reports where the client is running so the selector can pick
// a strategy without branching on ambient globals inline.
type Environment interface {
	// InTest reports whether the process is an automated test run.
	InTest() bool
	// SupportsRelay reports whether script-relay execution is available.
	SupportsRelay() bool
}

// ProcessEnvironment detects the hosting Go process. Plain Go processes have
// no script host, so relay is only reachable through the override.
type ProcessEnvironment struct{}

// InTest reports whether the binary was built by the test harness.
func (ProcessEnvironment) InTest() bool { return testing.Testing() }

// SupportsRelay always reports false for a plain process.
func (ProcessEnvironment) SupportsRelay() bool { return false }

// Selector chooses between the direct and relay strategies.
type Selector struct {
	env        Environment
	forceRelay bool
	direct     Strategy
	relay      Strategy
}

// NewSelector wires the two strategies behind an environment detector.
func NewSelector(env Environment, direct, relay Strategy, forceRelay bool) *Selector {
	if env == nil {
		env = ProcessEnvironment{}
	}
	return &Selector{
		env:        env,
		forceRelay: forceRelay,
		direct:     direct,
		relay:      relay,
	}
}

// Select returns the strategy for the current environment: the override
// forces relay; tests always use direct; otherwise relay is used only where
// the environment supports it.
func (s *Selector) Select() Strategy {
	if s.forceRelay {
		return s.relay
	}
	if s.env.InTest() {
		return s.direct
	}
	if s.env.SupportsRelay() {
		return s.relay
	}
	return s.direct
}
