package gate

import (
	"fmt"

	"go.uber.org/zap"
)

// Hooks wrap the host's enter and exit pose mode functions. A detour layer
// calls them with the original function; they never panic.
type Hooks struct {
	tracker *Tracker
	log     *zap.Logger
}

// NewHooks creates hooks driving tracker.
func NewHooks(tracker *Tracker, log *zap.Logger) *Hooks {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hooks{tracker: tracker, log: log}
}

// Enter calls the original enter function first and moves to Inside only if
// it reported success. The original's result is returned unchanged.
func (h *Hooks) Enter(original func() bool) (ok bool) {
	defer h.guard("enter", &ok)

	ok = original()
	if ok {
		h.tracker.HandleChange(Inside)
	}
	return ok
}

// Exit moves to AttemptExit and calls the original exit function only if
// that change succeeded, or the tracker was already waiting to exit. After
// the original returns, the state moves through Exiting to Outside.
func (h *Hooks) Exit(original func()) {
	defer h.guard("exit", nil)

	if h.tracker.State() != AttemptExit && !h.tracker.HandleChange(AttemptExit) {
		h.log.Warn("pose exit blocked", zap.Stringer("state", h.tracker.State()))
		return
	}
	original()
	h.tracker.HandleChange(Exiting)
	h.tracker.HandleChange(Outside)
}

func (h *Hooks) guard(hook string, ok *bool) {
	if r := recover(); r != nil {
		if ok != nil {
			*ok = false
		}
		h.log.Error("pose hook panicked",
			zap.String("hook", hook),
			zap.Error(fmt.Errorf("%w: %v", ErrHookCallFailure, r)))
	}
}
