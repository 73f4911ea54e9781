package key

import (
	"errors"
	"fmt"
	"strings"
)

// Separator joins key identifiers in a serialized shortcut.
const Separator = "+"

// Parse errors
var (
	ErrEmptySpec       = errors.New("empty shortcut")
	ErrNoModifier      = errors.New("shortcut has no modifier key")
	ErrNoKey           = errors.New("shortcut has no non-modifier key")
	ErrTooManyKeys     = errors.New("shortcut has more than one non-modifier key")
	ErrDuplicateKey    = errors.New("shortcut repeats a key")
	ErrEmptyIdentifier = errors.New("shortcut contains an empty key")
)

// Join serializes keys in press order, e.g. ["Control", "K"] -> "Control+K".
func Join(keys []string) string {
	return strings.Join(keys, Separator)
}

// Split converts a serialized shortcut back into its key sequence.
// It performs no validation; an empty string yields nil.
func Split(spec string) []string {
	if spec == "" {
		return nil
	}
	return strings.Split(spec, Separator)
}

// Valid reports whether a held-key combination forms a shortcut:
// at least one modifier and exactly one non-modifier key.
func Valid(modifiers, others int) bool {
	return modifiers > 0 && others == 1
}

// IsValid applies the validity rule to a key sequence.
func IsValid(keys []string, mods ModifierSet) bool {
	return Valid(mods.Count(keys))
}

// Parse parses a user-written shortcut such as "ctrl+shift+k" and checks
// that it forms a valid shortcut for mods.
//
// Each part is normalized with Normalize, so aliases like "cmd" or "esc"
// are accepted. Single characters keep their case.
func Parse(spec string, mods ModifierSet) ([]string, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, ErrEmptySpec
	}

	parts := Split(spec)
	keys := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))

	for _, p := range parts {
		if strings.TrimSpace(p) == "" && p != Space {
			return nil, fmt.Errorf("%w: %q", ErrEmptyIdentifier, spec)
		}
		id := Normalize(p)
		if seen[id] {
			return nil, fmt.Errorf("%w: %q in %q", ErrDuplicateKey, id, spec)
		}
		seen[id] = true
		keys = append(keys, id)
	}

	if err := Check(keys, mods); err != nil {
		return nil, fmt.Errorf("%w: %q", err, spec)
	}
	return keys, nil
}

// Check explains why keys are not a valid shortcut, or returns nil.
func Check(keys []string, mods ModifierSet) error {
	modifiers, others := mods.Count(keys)
	switch {
	case others == 0:
		return ErrNoKey
	case others > 1:
		return ErrTooManyKeys
	case modifiers == 0:
		return ErrNoModifier
	}
	return nil
}

// NormalizeSpec parses and re-joins a shortcut in canonical form.
func NormalizeSpec(spec string, mods ModifierSet) (string, error) {
	keys, err := Parse(spec, mods)
	if err != nil {
		return "", err
	}
	return Join(keys), nil
}
