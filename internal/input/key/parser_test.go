package key

import (
	"errors"
	"reflect"
	"testing"
)

func TestJoinSplit(t *testing.T) {
	tests := []struct {
		keys []string
		spec string
	}{
		{[]string{Control, "K"}, "Control+K"},
		{[]string{Control, Shift, "K"}, "Control+Shift+K"},
		{[]string{Alt, Tab}, "Alt+Tab"},
		{[]string{"K"}, "K"},
	}

	for _, tt := range tests {
		if got := Join(tt.keys); got != tt.spec {
			t.Errorf("Join(%v) = %q, want %q", tt.keys, got, tt.spec)
		}
		if got := Split(tt.spec); !reflect.DeepEqual(got, tt.keys) {
			t.Errorf("Split(%q) = %v, want %v", tt.spec, got, tt.keys)
		}
	}
}

func TestSplitEmpty(t *testing.T) {
	if got := Split(""); got != nil {
		t.Errorf("Split(\"\") = %v, want nil", got)
	}
	if got := Join(nil); got != "" {
		t.Errorf("Join(nil) = %q, want empty", got)
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		modifiers int
		others    int
		want      bool
	}{
		{0, 0, false},
		{1, 0, false},
		{0, 1, false},
		{1, 1, true},
		{3, 1, true},
		{1, 2, false},
		{2, 2, false},
	}

	for _, tt := range tests {
		if got := Valid(tt.modifiers, tt.others); got != tt.want {
			t.Errorf("Valid(%d, %d) = %v, want %v", tt.modifiers, tt.others, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	mods := DefaultModifiers()

	tests := []struct {
		spec string
		want []string
	}{
		{"Control+K", []string{Control, "K"}},
		{"ctrl+shift+k", []string{Control, Shift, "k"}},
		{"cmd+space", []string{Meta, Space}},
		{" alt + f4 ", []string{Alt, F4}},
		{"Shift+Control+esc", []string{Shift, Control, Escape}},
	}

	for _, tt := range tests {
		got, err := Parse(tt.spec, mods)
		if err != nil {
			t.Errorf("Parse(%q) error = %v", tt.spec, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Parse(%q) = %v, want %v", tt.spec, got, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	mods := DefaultModifiers()

	tests := []struct {
		spec string
		want error
	}{
		{"", ErrEmptySpec},
		{"   ", ErrEmptySpec},
		{"K", ErrNoModifier},
		{"Control", ErrNoKey},
		{"Control+Shift", ErrNoKey},
		{"Control+K+J", ErrTooManyKeys},
		{"Control+Control+K", ErrDuplicateKey},
		{"ctrl+Control+K", ErrDuplicateKey},
		{"Control++K", ErrEmptyIdentifier},
	}

	for _, tt := range tests {
		_, err := Parse(tt.spec, mods)
		if !errors.Is(err, tt.want) {
			t.Errorf("Parse(%q) error = %v, want %v", tt.spec, err, tt.want)
		}
	}
}

func TestNormalizeSpec(t *testing.T) {
	got, err := NormalizeSpec("ctrl+shift+k", DefaultModifiers())
	if err != nil {
		t.Fatalf("NormalizeSpec() error = %v", err)
	}
	if got != "Control+Shift+k" {
		t.Errorf("NormalizeSpec() = %q, want %q", got, "Control+Shift+k")
	}
}
