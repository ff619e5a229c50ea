// Package gate tracks whether the host is in pose or cutscene mode and
// whether external tools have frozen parts of the pose.
package gate

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrHookCallFailure reports a state-change listener that failed or panicked.
var ErrHookCallFailure = errors.New("state change listener failed")

// State is the host's pose mode.
type State int32

// Pose mode states.
const (
	Outside State = iota
	AttemptExit
	Exiting
	Inside
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Outside:
		return "Outside"
	case AttemptExit:
		return "AttemptExit"
	case Exiting:
		return "Exiting"
	case Inside:
		return "Inside"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Transitional reports whether the host is leaving pose mode.
func (s State) Transitional() bool {
	return s == AttemptExit || s == Exiting
}

// Listener is notified after a state change has been committed.
type Listener func(from, to State) error

// Tracker holds the current State and notifies listeners of changes.
type Tracker struct {
	mu        sync.RWMutex
	state     State
	fake      bool
	listeners []Listener
	log       *zap.Logger
}

// NewTracker creates a tracker in the Outside state.
func NewTracker(log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{log: log}
}

// State returns the committed state.
func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// OnChange registers a listener. Listeners run in registration order.
func (t *Tracker) OnChange(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, l)
}

// Override pins the state for tests. While pinned, HandleChange rejects
// every transition and no listener runs.
func (t *Tracker) Override(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = s
	t.fake = true
}

// ClearOverride ends a pinned state. The pinned value stays current.
func (t *Tracker) ClearOverride() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fake = false
}

// HandleChange commits s and notifies every listener. It returns false
// without doing anything when s is already current or the state is pinned.
// It also returns false when a listener fails; the new state stays committed
// and the remaining listeners still run.
func (t *Tracker) HandleChange(s State) bool {
	t.mu.Lock()
	if s == t.state || t.fake {
		t.mu.Unlock()
		return false
	}
	from := t.state
	t.state = s
	listeners := make([]Listener, len(t.listeners))
	copy(listeners, t.listeners)
	t.mu.Unlock()

	t.log.Debug("pose state changed",
		zap.Stringer("from", from),
		zap.Stringer("to", s))

	ok := true
	for i, l := range listeners {
		if err := notify(l, from, s); err != nil {
			t.log.Error("state listener failed",
				zap.Int("listener", i),
				zap.Stringer("from", from),
				zap.Stringer("to", s),
				zap.Error(err))
			ok = false
		}
	}
	return ok
}

func notify(l Listener, from, to State) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrHookCallFailure, r)
		}
	}()
	if err := l(from, to); err != nil {
		return fmt.Errorf("%w: %w", ErrHookCallFailure, err)
	}
	return nil
}
