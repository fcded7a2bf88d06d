package liveengine

import "errors"

// Sentinel errors surfaced at the live event boundary: structured, never
// a crash, and the state machine is left unchanged by a rejected event.
var (
	ErrUnknownEvent     = errors.New("liveengine: unknown event")
	ErrIllegalAction    = errors.New("liveengine: illegal action")
	ErrMissingHoleCards = errors.New("liveengine: hole cards not yet known")
	ErrNoHandInProgress = errors.New("liveengine: no hand in progress")
	ErrHandAlreadyOver  = errors.New("liveengine: hand already over")
	ErrWrongStreet      = errors.New("liveengine: event does not match current street")
)
