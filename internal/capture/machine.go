package capture

import (
	"slices"

	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/logging"
	"github.com/dshills/keychord/internal/notify"
)

// Machine is the shortcut capture state machine.
//
// All methods are total: unexpected input (unknown releases, repeated
// presses, empty writes) is absorbed without error.
type Machine struct {
	mods     key.ModifierSet
	state    State
	notifier *notify.Notifier
	source   string
	logger   *logging.Logger
}

// NewMachine creates a machine that classifies keys with mods.
// The modifier set is fixed for the machine's lifetime.
func NewMachine(mods key.ModifierSet, opts ...Option) *Machine {
	o := buildOptions(opts)
	logger := o.logger.WithComponent("capture")
	if o.id != "" {
		logger = logger.WithField("recorder", o.id)
	}
	return &Machine{
		mods:     mods,
		notifier: o.notifier,
		source:   o.id,
		logger:   logger,
	}
}

// Modifiers returns the machine's modifier set.
func (m *Machine) Modifiers() key.ModifierSet {
	return m.mods
}

// Notifier returns the notifier the machine publishes to.
func (m *Machine) Notifier() *notify.Notifier {
	return m.notifier
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	return m.state.clone()
}

// Status returns the current capture flags.
func (m *Machine) Status() Status {
	return m.state.Status
}

// Display returns a copy of the displayed key sequence.
func (m *Machine) Display() []string {
	return cloneKeys(m.state.Display)
}

// Value returns the last committed or seeded shortcut string.
func (m *Machine) Value() string {
	return m.state.Value
}

// KeyDown handles a key press.
//
// Empty identifiers and keys that are already held are ignored; a
// RepeatFilter upstream normally drops those before they get here.
func (m *Machine) KeyDown(id string) {
	if id == "" || indexOf(m.state.Pressed, id) >= 0 {
		return
	}

	batch := m.notifier.NewBatch()
	prev := m.state.Status

	if m.mods.Contains(id) {
		m.state.ModifierCount++
	} else {
		m.state.NonModifierCount++
	}
	m.state.Pressed = append(m.state.Pressed, id)
	m.state.Status.InProgress = true

	valid := m.valid()
	m.state.Status.Valid = valid

	if m.state.Status.Committed {
		// Keep showing the previous value until a new valid one appears.
		if valid {
			m.setDisplay(batch, m.state.Pressed)
		}
	} else {
		if valid {
			m.state.Status.Committed = true
		}
		m.setDisplay(batch, m.state.Pressed)
	}

	m.logger.Debug("keydown %q pressed=%v status=[%s]", id, m.state.Pressed, m.state.Status)
	m.finish(batch, prev)
}

// KeyUp handles a key release. Releases of keys that are not held are ignored.
func (m *Machine) KeyUp(id string) {
	idx := indexOf(m.state.Pressed, id)
	if idx < 0 {
		return
	}

	batch := m.notifier.NewBatch()
	prev := m.state.Status

	if m.mods.Contains(id) {
		m.state.ModifierCount--
	} else {
		m.state.NonModifierCount--
	}
	m.state.Pressed = append(m.state.Pressed[:idx:idx], m.state.Pressed[idx+1:]...)
	if len(m.state.Pressed) == 0 {
		m.state.Pressed = nil
		m.state.Status.InProgress = false
	}
	m.state.Status.Valid = m.valid()

	// A committed display is frozen; releasing keys never erases it.
	if !m.state.Status.Committed && !m.state.Status.Valid {
		m.setDisplay(batch, nil)
	}

	m.logger.Debug("keyup %q pressed=%v status=[%s]", id, m.state.Pressed, m.state.Status)
	m.finish(batch, prev)
}

// Blur handles loss of input focus. When keys are still held it drops them,
// since their releases will never be delivered. With nothing held it does
// nothing.
func (m *Machine) Blur() {
	if m.state.ModifierCount == 0 && m.state.NonModifierCount == 0 {
		return
	}

	batch := m.notifier.NewBatch()
	prev := m.state.Status

	dropped := m.state.Pressed
	m.state.ModifierCount = 0
	m.state.NonModifierCount = 0
	m.state.Pressed = nil
	m.state.Status.InProgress = false
	m.state.Status.Valid = false

	if !m.state.Status.Committed {
		m.setDisplay(batch, nil)
	}

	m.logger.Debug("blur dropped=%v status=[%s]", dropped, m.state.Status)
	m.finish(batch, prev)
}

// WriteValue seeds the machine with a serialized shortcut, for example a
// previously saved "Alt+Tab". Held keys are left alone and no value change
// is emitted. An empty value is ignored.
func (m *Machine) WriteValue(value string) {
	if value == "" {
		return
	}

	batch := m.notifier.NewBatch()
	prev := m.state.Status

	old := m.state.Display
	m.state.Display = key.Split(value)
	m.state.Value = value
	m.state.Status.Committed = true
	m.displayChanged(batch, old)

	m.logger.Debug("write %q", value)
	m.finish(batch, prev)
}

// Reset returns the machine to its initial state: nothing held, nothing
// displayed and nothing committed.
func (m *Machine) Reset() {
	batch := m.notifier.NewBatch()
	prev := m.state.Status

	old := m.state.Display
	m.state = State{}
	m.displayChanged(batch, old)

	m.logger.Debug("reset")
	m.finish(batch, prev)
}

// RegisterOnChange calls fn with every newly committed value.
func (m *Machine) RegisterOnChange(fn func(value string)) *notify.Subscription {
	return m.notifier.SubscribeTopic(notify.TopicValue, func(c notify.Change) {
		if c.Source != m.source {
			return
		}
		if v, ok := c.NewValue.(string); ok {
			fn(v)
		}
	})
}

// valid applies the validity rule to the current counters.
func (m *Machine) valid() bool {
	return key.Valid(m.state.ModifierCount, m.state.NonModifierCount)
}

// setDisplay replaces the display and, when the held combination is valid,
// commits and emits the joined value.
func (m *Machine) setDisplay(batch *notify.Batch, keys []string) {
	old := m.state.Display
	m.state.Display = cloneKeys(keys)
	batch.Add(notify.Change{
		Topic:    notify.TopicDisplay,
		OldValue: old,
		NewValue: cloneKeys(keys),
		Source:   m.source,
	})

	if !m.state.Status.Valid {
		return
	}

	oldValue := m.state.Value
	m.state.Value = key.Join(keys)
	batch.Add(notify.Change{
		Topic:    notify.TopicValue,
		OldValue: oldValue,
		NewValue: m.state.Value,
		Source:   m.source,
	})
	m.logger.Debug("commit %q", m.state.Value)
}

// displayChanged adds a display change to batch unless the display still
// equals old.
func (m *Machine) displayChanged(batch *notify.Batch, old []string) {
	if slices.Equal(old, m.state.Display) {
		return
	}
	batch.Add(notify.Change{
		Topic:    notify.TopicDisplay,
		OldValue: cloneKeys(old),
		NewValue: cloneKeys(m.state.Display),
		Source:   m.source,
	})
}

// finish appends a status change if the flags moved and delivers the batch.
func (m *Machine) finish(batch *notify.Batch, prev Status) {
	if m.state.Status != prev {
		batch.Add(notify.Change{
			Topic:    notify.TopicStatus,
			OldValue: prev,
			NewValue: m.state.Status,
			Source:   m.source,
		})
	}
	batch.Commit()
}
