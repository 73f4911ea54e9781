package script

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/keychord/internal/capture"
	"github.com/dshills/keychord/internal/input/key"
)

// Scenario is a named sequence of steps replayed against a fresh recorder.
type Scenario struct {
	Name string `yaml:"name"`

	// Modifiers overrides the runner's modifier set when non-empty.
	Modifiers []string `yaml:"modifiers,omitempty"`

	// Initial seeds the recorder before the first step.
	Initial string `yaml:"initial,omitempty"`

	Steps []Step `yaml:"steps"`
}

// Step is a single operation plus optional expectations checked after it.
// Exactly one operation field must be set.
type Step struct {
	Down  string `yaml:"down,omitempty"`
	Up    string `yaml:"up,omitempty"`
	Press string `yaml:"press,omitempty"`
	Blur  bool   `yaml:"blur,omitempty"`
	Write string `yaml:"write,omitempty"`
	Reset bool   `yaml:"reset,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Op returns the step's operation name and argument.
func (s Step) Op() (op, arg string, err error) {
	var ops []string
	if s.Down != "" {
		ops, op, arg = append(ops, "down"), "down", s.Down
	}
	if s.Up != "" {
		ops, op, arg = append(ops, "up"), "up", s.Up
	}
	if s.Press != "" {
		ops, op, arg = append(ops, "press"), "press", s.Press
	}
	if s.Blur {
		ops, op, arg = append(ops, "blur"), "blur", ""
	}
	if s.Write != "" {
		ops, op, arg = append(ops, "write"), "write", s.Write
	}
	if s.Reset {
		ops, op, arg = append(ops, "reset"), "reset", ""
	}

	switch len(ops) {
	case 0:
		return "", "", fmt.Errorf("%w: no operation", ErrInvalidStep)
	case 1:
		return op, arg, nil
	default:
		return "", "", fmt.Errorf("%w: several operations (%s)", ErrInvalidStep, strings.Join(ops, ", "))
	}
}

// Expect lists the properties to check after a step. Unset fields are not
// checked.
type Expect struct {
	Display    *[]string `yaml:"display,omitempty"`
	Value      *string   `yaml:"value,omitempty"`
	InProgress *bool     `yaml:"in_progress,omitempty"`
	Valid      *bool     `yaml:"valid,omitempty"`
	Committed  *bool     `yaml:"committed,omitempty"`

	// Emitted lists the values emitted by this step, in order.
	Emitted *[]string `yaml:"emitted,omitempty"`
}

// Check compares snap against the expectations and returns one StepError
// per mismatch, with Scenario, Step and Op left for the caller to fill.
func (e *Expect) Check(snap capture.Snapshot) []*StepError {
	if e == nil {
		return nil
	}

	var errs []*StepError
	mismatch := func(field string, got, want any) {
		errs = append(errs, &StepError{Field: field, Got: got, Want: want})
	}

	if e.Display != nil && !sameKeys(snap.Display, *e.Display) {
		mismatch("display", snap.Display, *e.Display)
	}
	if e.Value != nil && snap.Value != *e.Value {
		mismatch("value", snap.Value, *e.Value)
	}
	if e.InProgress != nil && snap.InProgress != *e.InProgress {
		mismatch("in_progress", snap.InProgress, *e.InProgress)
	}
	if e.Valid != nil && snap.Valid != *e.Valid {
		mismatch("valid", snap.Valid, *e.Valid)
	}
	if e.Committed != nil && snap.Committed != *e.Committed {
		mismatch("committed", snap.Committed, *e.Committed)
	}
	if e.Emitted != nil && !sameKeys(snap.Emitted, *e.Emitted) {
		mismatch("emitted", snap.Emitted, *e.Emitted)
	}
	return errs
}

// sameKeys compares lists treating nil and empty as equal.
func sameKeys(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return slices.Equal(a, b)
}

// ParseScenarios decodes every YAML document in r. source names the input
// in error messages and is used as the default scenario name.
func ParseScenarios(r io.Reader, source string) ([]*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var scenarios []*Scenario
	for i := 1; ; i++ {
		s := &Scenario{}
		err := dec.Decode(s)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: document %d: %w", source, i, err)
		}
		if s.Name == "" {
			s.Name = fmt.Sprintf("%s#%d", source, i)
		}
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// LoadScenarios reads a YAML scenario file.
func LoadScenarios(path string) ([]*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseScenarios(f, path)
}

// validate checks the step shapes and the modifier names. Whether an
// initial value is a valid shortcut is not checked, since seeding accepts
// any serialized value.
func (s *Scenario) validate() error {
	if _, err := key.ParseModifierSet(s.Modifiers); err != nil {
		return fmt.Errorf("scenario %q: modifiers: %w", s.Name, err)
	}
	for i, step := range s.Steps {
		if _, _, err := step.Op(); err != nil {
			return fmt.Errorf("scenario %q: step %d: %w", s.Name, i+1, err)
		}
	}
	return nil
}
