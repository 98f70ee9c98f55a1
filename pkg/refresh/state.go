package refresh

import (
	"fmt"
	"time"

	"github.com/agentstation/inkwell/pkg/errors"
)

// State is the refresh lifecycle state.
type State int

// Refresh states. Loaded and Failed are terminal for one flight and settle
// back to Idle immediately after observers have been told.
const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

// String returns the lower-case name of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	for _, st := range []State{Idle, Loading, Loaded, Failed} {
		if string(b) == st.String() {
			*s = st
			return nil
		}
	}
	return errors.NewValidationError("state", string(b), "unknown refresh state")
}

// Event triggers a state transition.
type Event int

// Refresh events.
const (
	EventRequest Event = iota // a manual or scheduled refresh was asked for
	EventSucceed              // fetch and merge completed
	EventFail                 // fetch failed or timed out
	EventCancel               // the in-flight fetch was abandoned
	EventSettle               // a terminal state folds back to idle
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case EventRequest:
		return "request"
	case EventSucceed:
		return "succeed"
	case EventFail:
		return "fail"
	case EventCancel:
		return "cancel"
	case EventSettle:
		return "settle"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// transitions is the full table of allowed moves.
var transitions = map[State]map[Event]State{
	Idle: {
		EventRequest: Loading,
	},
	Loading: {
		EventSucceed: Loaded,
		EventFail:    Failed,
		EventCancel:  Idle,
	},
	Loaded: {
		EventSettle: Idle,
	},
	Failed: {
		EventSettle: Idle,
	},
}

// Transition returns the state reached from s on ev. A request while loading
// returns errors.ErrInFlight so the caller can join the running flight; any
// other move outside the table is a validation error.
func Transition(s State, ev Event) (State, error) {
	if next, ok := transitions[s][ev]; ok {
		return next, nil
	}
	if s == Loading && ev == EventRequest {
		return s, errors.ErrInFlight
	}
	return s, &errors.ValidationError{
		Field:   "event",
		Value:   ev.String(),
		Message: fmt.Sprintf("not allowed in state %s", s),
	}
}

// Status is the observable refresh status.
type Status struct {
	State  State     `json:"state"`
	Reason string    `json:"reason,omitempty"` // Set for Failed
	At     time.Time `json:"at"`
}

// String formats the status as "failed(timeout)" or "idle".
func (s Status) String() string {
	if s.Reason != "" {
		return fmt.Sprintf("%s(%s)", s.State, s.Reason)
	}
	return s.State.String()
}
