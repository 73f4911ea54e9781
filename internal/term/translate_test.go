package term

import (
	"reflect"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keychord/internal/input/key"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		ev       *tcell.EventKey
		wantMods []string
		wantID   string
		wantOK   bool
	}{
		{"lower letter", tcell.NewEventKey(tcell.KeyRune, 'k', tcell.ModNone), nil, "K", true},
		{"upper letter", tcell.NewEventKey(tcell.KeyRune, 'K', tcell.ModNone), []string{"Shift"}, "K", true},
		{"digit", tcell.NewEventKey(tcell.KeyRune, '1', tcell.ModNone), nil, "1", true},
		{"alt letter", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModAlt), []string{"Alt"}, "X", true},
		{"space", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), nil, key.Space, true},
		{"ctrl letter", tcell.NewEventKey(tcell.KeyCtrlK, 0, tcell.ModCtrl), []string{"Control"}, "K", true},
		{"ctrl shift letter", tcell.NewEventKey(tcell.KeyCtrlK, 0, tcell.ModCtrl|tcell.ModShift), []string{"Control", "Shift"}, "K", true},
		{"tab", tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone), nil, "Tab", true},
		{"ctrl i", tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModCtrl), []string{"Control"}, "I", true},
		{"backtab", tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModNone), []string{"Shift"}, "Tab", true},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), nil, "Enter", true},
		{"alt up", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModAlt), []string{"Alt"}, "ArrowUp", true},
		{"ctrl shift f5", tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModCtrl|tcell.ModShift), []string{"Control", "Shift"}, "F5", true},
		{"meta delete", tcell.NewEventKey(tcell.KeyDelete, 0, tcell.ModMeta), []string{"Meta"}, "Delete", true},
		{"ctrl space", tcell.NewEventKey(tcell.KeyCtrlSpace, 0, tcell.ModCtrl), []string{"Control"}, key.Space, true},
		{"unmapped", tcell.NewEventKey(tcell.KeyF20, 0, tcell.ModNone), nil, "", false},
		{"non-printable rune", tcell.NewEventKey(tcell.KeyRune, '\u200b', tcell.ModNone), nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mods, id, ok := Translate(tt.ev)
			if ok != tt.wantOK {
				t.Fatalf("Translate() ok = %v, want %v", ok, tt.wantOK)
			}
			if id != tt.wantID {
				t.Errorf("Translate() id = %q, want %q", id, tt.wantID)
			}
			if !reflect.DeepEqual(mods, tt.wantMods) {
				t.Errorf("Translate() mods = %v, want %v", mods, tt.wantMods)
			}
		})
	}
}

func TestEvents(t *testing.T) {
	events := Events(tcell.NewEventKey(tcell.KeyCtrlK, 0, tcell.ModCtrl|tcell.ModAlt))

	want := []key.Event{
		key.NewDown("Control"),
		key.NewDown("Alt"),
		key.NewDown("K"),
		key.NewUp("K"),
		key.NewUp("Alt"),
		key.NewUp("Control"),
	}
	if len(events) != len(want) {
		t.Fatalf("Events() = %v, want %v", events, want)
	}
	for i := range want {
		if !events[i].Equals(want[i]) {
			t.Errorf("Events()[%d] = %v, want %v", i, events[i], want[i])
		}
	}

	if got := Events(tcell.NewEventKey(tcell.KeyF20, 0, tcell.ModNone)); got != nil {
		t.Errorf("Events(unmapped) = %v, want nil", got)
	}
}

func TestIsQuit(t *testing.T) {
	if !isQuit(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("bare Esc should quit")
	}
	if isQuit(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModAlt)) {
		t.Error("Alt+Esc should not quit")
	}
	if isQuit(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Error("q should not quit")
	}
}
