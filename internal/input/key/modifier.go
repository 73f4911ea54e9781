package key

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyModifierName is returned when a configured modifier name is blank.
var ErrEmptyModifierName = errors.New("empty modifier name")

// ModifierSet is an immutable set of key identifiers that count as
// modifiers. The zero value contains no modifiers.
type ModifierSet struct {
	keys  map[string]struct{}
	order []string
}

// NewModifierSet creates a set from the given identifiers.
// Identifiers are used as given; empty strings and duplicates are skipped.
func NewModifierSet(keys ...string) ModifierSet {
	s := ModifierSet{
		keys:  make(map[string]struct{}, len(keys)),
		order: make([]string, 0, len(keys)),
	}
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := s.keys[k]; ok {
			continue
		}
		s.keys[k] = struct{}{}
		s.order = append(s.order, k)
	}
	return s
}

// DefaultModifiers returns the standard modifier set:
// Control, Shift, Alt, Meta and CapsLock.
func DefaultModifiers() ModifierSet {
	return NewModifierSet(Control, Shift, Alt, Meta, CapsLock)
}

// ParseModifierSet builds a set from configured names, normalizing each
// one ("ctrl" -> "Control", "cmd" -> "Meta").
func ParseModifierSet(names []string) (ModifierSet, error) {
	ids := make([]string, 0, len(names))
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return ModifierSet{}, fmt.Errorf("modifier %d: %w", i, ErrEmptyModifierName)
		}
		ids = append(ids, Normalize(name))
	}
	return NewModifierSet(ids...), nil
}

// Contains returns true if id is a modifier.
func (s ModifierSet) Contains(id string) bool {
	_, ok := s.keys[id]
	return ok
}

// Len returns the number of modifiers in the set.
func (s ModifierSet) Len() int {
	return len(s.order)
}

// IsEmpty returns true if the set has no modifiers.
func (s ModifierSet) IsEmpty() bool {
	return len(s.order) == 0
}

// Keys returns the modifiers in the order they were supplied.
func (s ModifierSet) Keys() []string {
	result := make([]string, len(s.order))
	copy(result, s.order)
	return result
}

// Count returns how many of keys are modifiers and how many are not.
func (s ModifierSet) Count(keys []string) (modifiers, others int) {
	for _, k := range keys {
		if s.Contains(k) {
			modifiers++
		} else {
			others++
		}
	}
	return modifiers, others
}

// String returns the modifiers joined with ", ".
func (s ModifierSet) String() string {
	return strings.Join(s.order, ", ")
}
