package capture

import (
	"testing"
	"time"

	"github.com/dshills/keychord/internal/input/key"
)

func TestRepeatFilter(t *testing.T) {
	var f RepeatFilter

	steps := []struct {
		ev   key.Event
		want bool
	}{
		{key.Event{Action: key.ActionDown, Key: key.Control}, true},
		{key.Event{Action: key.ActionDown, Key: key.Control}, false}, // auto-repeat
		{key.Event{Action: key.ActionDown, Key: "K"}, true},
		{key.Event{Action: key.ActionDown, Key: "K"}, false},
		{key.Event{Action: key.ActionUp, Key: "K"}, true},
		{key.Event{Action: key.ActionDown, Key: "K"}, true}, // memo cleared by release
		{key.Event{Action: key.ActionDown, Key: ""}, false},
		{key.Event{Action: key.ActionUp, Key: "Unknown"}, true},
	}

	for i, s := range steps {
		if got := f.Allow(s.ev); got != s.want {
			t.Errorf("step %d: Allow(%v) = %v, want %v", i, s.ev, got, s.want)
		}
	}
}

func TestRepeatFilterReset(t *testing.T) {
	var f RepeatFilter
	f.Allow(key.NewDown(key.Alt))
	if f.Last() != key.Alt {
		t.Errorf("Last() = %q, want Alt", f.Last())
	}

	f.Reset()
	if f.Last() != "" {
		t.Errorf("Last() after Reset = %q, want empty", f.Last())
	}
	if !f.Allow(key.NewDown(key.Alt)) {
		t.Error("press after Reset should be allowed")
	}
}

func TestRepeatFilterOnlyRemembersLastPress(t *testing.T) {
	var f RepeatFilter
	f.Allow(key.NewDown(key.Control))
	f.Allow(key.NewDown("K"))

	// Control is no longer the last press, so it passes; the machine
	// ignores it because Control is still held.
	if !f.Allow(key.NewDown(key.Control)) {
		t.Error("non-consecutive press should be allowed")
	}
}

func TestRepeatFilterIgnoresTimestamps(t *testing.T) {
	var f RepeatFilter
	first := key.NewDown("K")
	repeat := key.Event{Action: key.ActionDown, Key: "K", Timestamp: first.Timestamp.Add(30 * time.Millisecond)}

	if !f.Allow(first) {
		t.Fatal("first press should be allowed")
	}
	if f.Allow(repeat) {
		t.Error("repeat with a later timestamp should be dropped")
	}
}
