package capture

import "github.com/dshills/keychord/internal/input/key"

// RepeatFilter drops auto-repeated key presses.
//
// It remembers the last press it let through. A press of that same key is
// dropped; any release, and Reset, clears the memory. This mirrors what a
// keyboard does when a key is held: one press, then repeats of that key
// until something is released.
type RepeatFilter struct {
	last key.Event
}

// Allow reports whether ev should reach the machine.
func (f *RepeatFilter) Allow(ev key.Event) bool {
	if ev.IsUp() {
		f.last = key.Event{}
		return true
	}
	if ev.Key == "" || ev.Equals(f.last) {
		return false
	}
	f.last = ev
	return true
}

// Reset clears the remembered press.
func (f *RepeatFilter) Reset() {
	f.last = key.Event{}
}

// Last returns the key of the last press let through since the last
// release or Reset.
func (f *RepeatFilter) Last() string {
	return f.last.Key
}
