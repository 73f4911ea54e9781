package key

import (
	"fmt"
	"strings"
	"time"
)

// Action distinguishes key presses from key releases.
type Action uint8

const (
	// ActionDown is a physical key press.
	ActionDown Action = iota

	// ActionUp is a physical key release.
	ActionUp
)

// String returns the DOM event name for the action.
func (a Action) String() string {
	switch a {
	case ActionDown:
		return "keydown"
	case ActionUp:
		return "keyup"
	default:
		return fmt.Sprintf("Action(%d)", a)
	}
}

// ParseAction parses "keydown"/"down" or "keyup"/"up" (case-insensitive).
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "keydown", "down":
		return ActionDown, nil
	case "keyup", "up":
		return ActionUp, nil
	default:
		return 0, fmt.Errorf("unknown key action %q", s)
	}
}

// Event is a single key press or release.
type Event struct {
	// Action is press or release.
	Action Action

	// Key is the key identifier.
	Key string

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewDown creates a key press event with the current timestamp.
func NewDown(id string) Event {
	return Event{Action: ActionDown, Key: id, Timestamp: time.Now()}
}

// NewUp creates a key release event with the current timestamp.
func NewUp(id string) Event {
	return Event{Action: ActionUp, Key: id, Timestamp: time.Now()}
}

// IsDown returns true for key presses.
func (e Event) IsDown() bool {
	return e.Action == ActionDown
}

// IsUp returns true for key releases.
func (e Event) IsUp() bool {
	return e.Action == ActionUp
}

// Equals returns true if two events have the same action and key.
// Timestamps are not compared.
func (e Event) Equals(other Event) bool {
	return e.Action == other.Action && e.Key == other.Key
}

// String returns a representation like "keydown Control".
func (e Event) String() string {
	return e.Action.String() + " " + fmt.Sprintf("%q", e.Key)
}

// Chord expands a chord into the ordered press/release sequence a physical
// keyboard would produce: modifiers down, key down, key up, modifiers up in
// reverse order.
func Chord(modifiers []string, id string) []Event {
	events := make([]Event, 0, 2*len(modifiers)+2)
	for _, m := range modifiers {
		events = append(events, NewDown(m))
	}
	events = append(events, NewDown(id), NewUp(id))
	for i := len(modifiers) - 1; i >= 0; i-- {
		events = append(events, NewUp(modifiers[i]))
	}
	return events
}
