package term

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keychord/internal/input/key"
)

// namedKeys maps tcell special keys to key identifiers. Keys that share a
// code with a Ctrl+letter (Tab, Enter, Backspace, Esc) are only looked up
// here when Ctrl is not held.
var namedKeys = map[tcell.Key]string{
	tcell.KeyEnter:      key.Enter,
	tcell.KeyTab:        key.Tab,
	tcell.KeyBacktab:    key.Tab,
	tcell.KeyBackspace:  key.Backspace,
	tcell.KeyBackspace2: key.Backspace,
	tcell.KeyEscape:     key.Escape,
	tcell.KeyDelete:     key.Delete,
	tcell.KeyInsert:     key.Insert,
	tcell.KeyHome:       key.Home,
	tcell.KeyEnd:        key.End,
	tcell.KeyPgUp:       key.PageUp,
	tcell.KeyPgDn:       key.PageDown,
	tcell.KeyUp:         key.ArrowUp,
	tcell.KeyDown:       key.ArrowDown,
	tcell.KeyLeft:       key.ArrowLeft,
	tcell.KeyRight:      key.ArrowRight,
	tcell.KeyF1:         key.F1,
	tcell.KeyF2:         key.F2,
	tcell.KeyF3:         key.F3,
	tcell.KeyF4:         key.F4,
	tcell.KeyF5:         key.F5,
	tcell.KeyF6:         key.F6,
	tcell.KeyF7:         key.F7,
	tcell.KeyF8:         key.F8,
	tcell.KeyF9:         key.F9,
	tcell.KeyF10:        key.F10,
	tcell.KeyF11:        key.F11,
	tcell.KeyF12:        key.F12,
	tcell.KeyCtrlSpace:  key.Space,
}

// Translate converts a tcell key event into the held modifiers and the
// pressed key. ok is false for events that carry no usable key.
//
// Terminals report a chord as a single event, so the modifiers are
// reconstructed from the event's modifier mask: Ctrl+letter codes yield
// Control, Backtab yields Shift, and an upper-case letter implies Shift.
func Translate(ev *tcell.EventKey) (mods []string, id string, ok bool) {
	mask := ev.Modifiers()
	k := ev.Key()

	switch {
	case k == tcell.KeyRune:
		r := ev.Rune()
		if r == ' ' {
			id = key.Space
			break
		}
		if unicode.IsUpper(r) {
			mask |= tcell.ModShift
		}
		id = string(unicode.ToUpper(r))
		if !key.IsCharacter(id) {
			return nil, "", false
		}

	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ && (mask&tcell.ModCtrl != 0 || namedKeys[k] == ""):
		mask |= tcell.ModCtrl
		id = string(rune('A' + (k - tcell.KeyCtrlA)))

	default:
		name, found := namedKeys[k]
		if !found {
			return nil, "", false
		}
		if k == tcell.KeyBacktab {
			mask |= tcell.ModShift
		}
		if k == tcell.KeyCtrlSpace {
			mask |= tcell.ModCtrl
		}
		id = name
	}

	return modifierNames(mask), id, true
}

// Events expands a tcell key event into the press and release sequence a
// keyboard with key-up reporting would have produced.
func Events(ev *tcell.EventKey) []key.Event {
	mods, id, ok := Translate(ev)
	if !ok {
		return nil
	}
	return key.Chord(mods, id)
}

// modifierNames lists the modifiers in mask in display order.
func modifierNames(mask tcell.ModMask) []string {
	var names []string
	if mask&tcell.ModCtrl != 0 {
		names = append(names, key.Control)
	}
	if mask&tcell.ModShift != 0 {
		names = append(names, key.Shift)
	}
	if mask&tcell.ModAlt != 0 {
		names = append(names, key.Alt)
	}
	if mask&tcell.ModMeta != 0 {
		names = append(names, key.Meta)
	}
	return names
}

// isQuit reports whether ev is a bare Esc.
func isQuit(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyEscape && ev.Modifiers() == tcell.ModNone
}
