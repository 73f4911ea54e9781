package key

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Modifier key identifiers.
const (
	Control  = "Control"
	Shift    = "Shift"
	Alt      = "Alt"
	Meta     = "Meta"
	CapsLock = "CapsLock"
)

// Named key identifiers. Values match KeyboardEvent.key.
const (
	Enter       = "Enter"
	Escape      = "Escape"
	Tab         = "Tab"
	Backspace   = "Backspace"
	Delete      = "Delete"
	Insert      = "Insert"
	Home        = "Home"
	End         = "End"
	PageUp      = "PageUp"
	PageDown    = "PageDown"
	ArrowUp     = "ArrowUp"
	ArrowDown   = "ArrowDown"
	ArrowLeft   = "ArrowLeft"
	ArrowRight  = "ArrowRight"
	Space       = " "
	Pause       = "Pause"
	PrintScreen = "PrintScreen"
	ScrollLock  = "ScrollLock"
	NumLock     = "NumLock"
	ContextMenu = "ContextMenu"

	F1  = "F1"
	F2  = "F2"
	F3  = "F3"
	F4  = "F4"
	F5  = "F5"
	F6  = "F6"
	F7  = "F7"
	F8  = "F8"
	F9  = "F9"
	F10 = "F10"
	F11 = "F11"
	F12 = "F12"
)

// aliasMap maps lowercase names and common abbreviations to identifiers.
var aliasMap = map[string]string{
	"ctrl":        Control,
	"control":     Control,
	"shift":       Shift,
	"alt":         Alt,
	"option":      Alt,
	"opt":         Alt,
	"meta":        Meta,
	"cmd":         Meta,
	"command":     Meta,
	"win":         Meta,
	"super":       Meta,
	"capslock":    CapsLock,
	"caps":        CapsLock,
	"enter":       Enter,
	"return":      Enter,
	"cr":          Enter,
	"escape":      Escape,
	"esc":         Escape,
	"tab":         Tab,
	"backspace":   Backspace,
	"bs":          Backspace,
	"delete":      Delete,
	"del":         Delete,
	"insert":      Insert,
	"ins":         Insert,
	"home":        Home,
	"end":         End,
	"pageup":      PageUp,
	"pgup":        PageUp,
	"pagedown":    PageDown,
	"pgdn":        PageDown,
	"up":          ArrowUp,
	"down":        ArrowDown,
	"left":        ArrowLeft,
	"right":       ArrowRight,
	"arrowup":     ArrowUp,
	"arrowdown":   ArrowDown,
	"arrowleft":   ArrowLeft,
	"arrowright":  ArrowRight,
	"space":       Space,
	"spacebar":    Space,
	"pause":       Pause,
	"printscreen": PrintScreen,
	"print":       PrintScreen,
	"scrolllock":  ScrollLock,
	"numlock":     NumLock,
	"contextmenu": ContextMenu,
	"menu":        ContextMenu,
}

// Normalize returns the canonical identifier for a key name.
//
// Single characters are returned unchanged so that "k" and "K" stay
// distinct. Known names and abbreviations are matched case-insensitively.
// Unknown lowercase names are title-cased ("mediaplay" -> "Mediaplay");
// anything containing an uppercase letter is assumed to be canonical already.
// Normalize is safe for concurrent use.
func Normalize(name string) string {
	if name == Space {
		return Space
	}
	name = strings.TrimSpace(name)
	if !IsNamed(name) {
		return name
	}

	lower := strings.ToLower(name)
	if id, ok := aliasMap[lower]; ok {
		return id
	}
	if isFunctionKey(lower) {
		return strings.ToUpper(lower)
	}
	if name == lower {
		// A Caser keeps state between calls and cannot be shared.
		return cases.Title(language.Und).String(name)
	}
	return name
}

// IsNamed returns true if id is a multi-character key name rather than a
// single character.
func IsNamed(id string) bool {
	return utf8.RuneCountInString(id) > 1
}

// IsCharacter returns true if id is a single printable character.
func IsCharacter(id string) bool {
	r, size := utf8.DecodeRuneInString(id)
	return size > 0 && size == len(id) && r != utf8.RuneError && unicode.IsPrint(r)
}

// isFunctionKey reports whether lower is "f1" through "f24".
func isFunctionKey(lower string) bool {
	if len(lower) < 2 || len(lower) > 3 || lower[0] != 'f' {
		return false
	}
	n := 0
	for _, c := range lower[1:] {
		if c < '0' || c > '9' {
			return false
		}
		n = n*10 + int(c-'0')
	}
	return n >= 1 && n <= 24
}
