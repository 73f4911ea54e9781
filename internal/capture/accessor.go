package capture

import "github.com/dshills/keychord/internal/notify"

// ValueWriter accepts a value from outside the widget, such as a saved
// shortcut loaded into a form.
type ValueWriter interface {
	WriteValue(value string)
}

// ChangeNotifier reports values the user commits.
type ChangeNotifier interface {
	RegisterOnChange(fn func(value string)) *notify.Subscription
}

// Accessor is a widget that can be bound to a form field.
type Accessor interface {
	ValueWriter
	ChangeNotifier
}

// Field is a form field bound to a capture widget. Writes flow from the
// field into the widget, commits flow from the widget into the field.
type Field struct {
	name     string
	value    string
	dirty    bool
	writer   ValueWriter
	sub      *notify.Subscription
	onChange []func(name, value string)
}

// Bind connects a field to a widget and seeds the widget with initial.
func Bind(name string, a Accessor, initial string) *Field {
	f := &Field{
		name:   name,
		value:  initial,
		writer: a,
	}
	a.WriteValue(initial)
	f.sub = a.RegisterOnChange(f.commit)
	return f
}

// Name returns the field name.
func (f *Field) Name() string {
	return f.name
}

// Value returns the field's current value.
func (f *Field) Value() string {
	return f.value
}

// Dirty returns true if the user committed a value since the field was
// bound or last set.
func (f *Field) Dirty() bool {
	return f.dirty
}

// SetValue sets the field programmatically and pushes the value into the
// widget. It clears the dirty flag.
func (f *Field) SetValue(value string) {
	f.value = value
	f.dirty = false
	if f.writer != nil {
		f.writer.WriteValue(value)
	}
}

// OnChange registers fn to run after each user commit.
func (f *Field) OnChange(fn func(name, value string)) {
	f.onChange = append(f.onChange, fn)
}

// Unbind detaches the field from the widget.
func (f *Field) Unbind() {
	f.sub.Unsubscribe()
	f.sub = nil
	f.writer = nil
}

func (f *Field) commit(value string) {
	f.value = value
	f.dirty = true
	for _, fn := range f.onChange {
		fn(f.name, value)
	}
}

var (
	_ Accessor = (*Machine)(nil)
	_ Accessor = (*Recorder)(nil)
)
