package capture

import (
	"fmt"

	"github.com/dshills/keychord/internal/input/key"
)

// Status holds the capture flags hosts use for feedback and styling.
type Status struct {
	// InProgress is true while at least one key is held.
	InProgress bool

	// Valid is true when the held keys form a valid shortcut.
	Valid bool

	// Committed is true once a value has been accepted, either from a
	// valid combination or from an external write, since the last Reset.
	Committed bool
}

// String returns a compact representation like "progress valid committed".
func (s Status) String() string {
	flag := func(on bool, name string) string {
		if on {
			return name
		}
		return "-"
	}
	return fmt.Sprintf("%s %s %s",
		flag(s.InProgress, "progress"),
		flag(s.Valid, "valid"),
		flag(s.Committed, "committed"))
}

// State is the complete state of a Machine.
type State struct {
	// Pressed holds the currently held keys in press order, without duplicates.
	Pressed []string

	// ModifierCount is the number of modifiers in Pressed.
	ModifierCount int

	// NonModifierCount is the number of non-modifiers in Pressed.
	NonModifierCount int

	// Status holds the capture flags.
	Status Status

	// Display is the key sequence currently shown to the user.
	Display []string

	// Value is the last committed or seeded shortcut string.
	Value string
}

// clone returns a deep copy of the state.
func (s State) clone() State {
	s.Pressed = cloneKeys(s.Pressed)
	s.Display = cloneKeys(s.Display)
	return s
}

// Check verifies the state invariants against a modifier set and returns
// a description of the first violation, or nil.
func (s State) Check(mods key.ModifierSet) error {
	modifiers, others := mods.Count(s.Pressed)
	if modifiers != s.ModifierCount || others != s.NonModifierCount {
		return fmt.Errorf("counters (%d, %d) disagree with pressed keys %v (%d, %d)",
			s.ModifierCount, s.NonModifierCount, s.Pressed, modifiers, others)
	}
	if want := key.Valid(s.ModifierCount, s.NonModifierCount); s.Status.Valid != want {
		return fmt.Errorf("valid = %v with counters (%d, %d)", s.Status.Valid, s.ModifierCount, s.NonModifierCount)
	}
	if s.Status.InProgress != (len(s.Pressed) > 0) {
		return fmt.Errorf("in progress = %v with %d keys held", s.Status.InProgress, len(s.Pressed))
	}
	seen := make(map[string]bool, len(s.Pressed))
	for _, k := range s.Pressed {
		if seen[k] {
			return fmt.Errorf("key %q held twice", k)
		}
		seen[k] = true
	}
	return nil
}

func cloneKeys(keys []string) []string {
	if keys == nil {
		return nil
	}
	result := make([]string, len(keys))
	copy(result, keys)
	return result
}

func indexOf(keys []string, id string) int {
	for i, k := range keys {
		if k == id {
			return i
		}
	}
	return -1
}
