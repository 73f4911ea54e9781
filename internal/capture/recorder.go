package capture

import (
	"github.com/google/uuid"

	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/logging"
	"github.com/dshills/keychord/internal/notify"
)

// Stats counts what a Recorder has processed.
type Stats struct {
	// Presses is the number of key presses received.
	Presses int

	// Releases is the number of key releases received.
	Releases int

	// Repeats is the number of presses dropped as auto-repeat.
	Repeats int

	// Blurs is the number of focus-loss notifications received.
	Blurs int

	// Commits is the number of values emitted.
	Commits int
}

// Recorder is the per-widget entry point for raw key events. It filters
// auto-repeat and forwards everything else to its Machine.
type Recorder struct {
	id      string
	machine *Machine
	filter  RepeatFilter
	logger  *logging.Logger
	stats   Stats
	sub     *notify.Subscription

	// ownsNotifier is true when the notifier was created for this recorder
	// rather than passed in with WithNotifier.
	ownsNotifier bool
}

// NewRecorder creates a recorder for one widget. Unless WithID is given the
// recorder gets a random UUID.
func NewRecorder(mods key.ModifierSet, opts ...Option) *Recorder {
	o := buildOptions(opts)
	if o.id == "" {
		o.id = uuid.New().String()
	}

	r := &Recorder{
		id:           o.id,
		logger:       o.logger.WithComponent("recorder").WithField("recorder", o.id),
		ownsNotifier: o.ownsNotifier,
	}
	r.machine = NewMachine(mods, WithLogger(o.logger), WithNotifier(o.notifier), WithID(o.id))
	r.sub = r.machine.RegisterOnChange(func(string) { r.stats.Commits++ })
	return r
}

// ID returns the recorder's instance id.
func (r *Recorder) ID() string {
	return r.id
}

// Machine returns the underlying state machine.
func (r *Recorder) Machine() *Machine {
	return r.machine
}

// Notifier returns the notifier the recorder publishes to.
func (r *Recorder) Notifier() *notify.Notifier {
	return r.machine.Notifier()
}

// Handle routes a raw key event.
func (r *Recorder) Handle(ev key.Event) {
	switch ev.Action {
	case key.ActionDown:
		r.KeyDown(ev.Key)
	case key.ActionUp:
		r.KeyUp(ev.Key)
	default:
		r.logger.Warn("ignoring event with unknown action %v", ev.Action)
	}
}

// HandleAll routes events in order.
func (r *Recorder) HandleAll(events []key.Event) {
	for _, ev := range events {
		r.Handle(ev)
	}
}

// KeyDown handles a raw key press, dropping auto-repeats.
func (r *Recorder) KeyDown(id string) {
	r.stats.Presses++
	if !r.filter.Allow(key.Event{Action: key.ActionDown, Key: id}) {
		r.stats.Repeats++
		return
	}
	r.machine.KeyDown(id)
}

// KeyUp handles a raw key release.
func (r *Recorder) KeyUp(id string) {
	r.stats.Releases++
	r.filter.Allow(key.Event{Action: key.ActionUp, Key: id})
	r.machine.KeyUp(id)
}

// Blur handles loss of focus.
func (r *Recorder) Blur() {
	r.stats.Blurs++
	r.filter.Reset()
	r.machine.Blur()
}

// WriteValue seeds the widget with a serialized shortcut.
func (r *Recorder) WriteValue(value string) {
	r.machine.WriteValue(value)
}

// Reset clears everything, including the committed value.
func (r *Recorder) Reset() {
	r.filter.Reset()
	r.machine.Reset()
}

// RegisterOnChange calls fn with every newly committed value.
func (r *Recorder) RegisterOnChange(fn func(value string)) *notify.Subscription {
	return r.machine.RegisterOnChange(fn)
}

// State returns a copy of the machine state.
func (r *Recorder) State() State {
	return r.machine.State()
}

// Value returns the last committed or seeded value.
func (r *Recorder) Value() string {
	return r.machine.Value()
}

// Stats returns the event counters.
func (r *Recorder) Stats() Stats {
	return r.stats
}

// Rebuild returns a recorder with a new modifier set that keeps this
// recorder's id, notifier and logger and is seeded with its current value.
// Held keys are not carried over. The receiver should not be used afterwards;
// closing it leaves the shared notifier open.
func (r *Recorder) Rebuild(mods key.ModifierSet) *Recorder {
	r.sub.Unsubscribe()

	next := &Recorder{
		id:           r.id,
		logger:       r.logger,
		stats:        r.stats,
		ownsNotifier: r.ownsNotifier,
	}
	r.ownsNotifier = false
	next.machine = NewMachine(mods,
		WithLogger(r.machine.logger),
		WithNotifier(r.machine.Notifier()),
		WithID(r.id))
	next.sub = next.machine.RegisterOnChange(func(string) { next.stats.Commits++ })
	next.machine.WriteValue(r.machine.Value())

	r.logger.Info("rebuilt with modifiers [%s]", mods)
	return next
}

// Close detaches the recorder from its notifier and closes the notifier if
// the recorder created it. A notifier passed in with WithNotifier stays open.
func (r *Recorder) Close() {
	r.sub.Unsubscribe()
	if r.ownsNotifier {
		r.machine.Notifier().Close()
		r.ownsNotifier = false
	}
}
