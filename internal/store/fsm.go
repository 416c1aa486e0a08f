package store

import (
	"errors"
	"fmt"
	"log/slog"
)

// The persistence degradation ladder as an explicit state machine.
// Each quota failure advances one rung; any successful write resets to
// normal; suspended stays put until storage is explicitly relieved.

type writeState string
type writeEvent string

const (
	// States
	stateNormal            writeState = "normal"
	stateDegradedCompleted writeState = "degraded_completed"
	stateDegradedActive    writeState = "degraded_active"
	stateSuspended         writeState = "suspended"

	// Events
	eventWriteOK        writeEvent = "write_ok"
	eventQuotaExceeded  writeEvent = "quota_exceeded"
	eventStorageCleared writeEvent = "storage_cleared"
)

var ErrInvalidTransition = errors.New("invalid transition")

type writeFSM struct {
	current     writeState
	transitions map[writeState]map[writeEvent]writeState
}

func newWriteFSM() *writeFSM {
	return &writeFSM{
		current: stateNormal,
		transitions: map[writeState]map[writeEvent]writeState{
			stateNormal: {
				eventWriteOK:       stateNormal,
				eventQuotaExceeded: stateDegradedCompleted,
			},
			stateDegradedCompleted: {
				eventWriteOK:       stateNormal,
				eventQuotaExceeded: stateDegradedActive,
			},
			stateDegradedActive: {
				eventWriteOK:       stateNormal,
				eventQuotaExceeded: stateSuspended,
			},
			stateSuspended: {
				eventStorageCleared: stateNormal,
			},
		},
	}
}

func (f *writeFSM) Current() writeState {
	return f.current
}

func (f *writeFSM) Trigger(event writeEvent) error {
	next, ok := f.transitions[f.current][event]
	if !ok {
		return fmt.Errorf("%w: %s --(%s)--> ?", ErrInvalidTransition, f.current, event)
	}
	if next != f.current {
		slog.Debug("[STORE] write state change",
			"from", f.current, "event", event, "to", next)
	}
	f.current = next
	return nil
}

// safeTrigger - logs instead of failing; an impossible transition here
// is a programming error, not a runtime condition.
func (f *writeFSM) safeTrigger(event writeEvent) {
	if err := f.Trigger(event); err != nil {
		slog.Warn("[STORE] write state transition skipped",
			"state", f.current, "event", event, "err", err)
	}
}
