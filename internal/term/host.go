package term

import (
	"context"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/keychord/internal/capture"
	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/logging"
	"github.com/dshills/keychord/internal/notify"
)

// Default indicator colors.
var (
	DefaultValidColor   = colorful.Color{R: 0x50 / 255.0, G: 0xfa / 255.0, B: 0x7b / 255.0}
	DefaultInvalidColor = colorful.Color{R: 1, G: 0x55 / 255.0, B: 0x55 / 255.0}
)

// Host drives a Recorder from a tcell screen.
//
// The screen, the recorder and all rendering belong to the goroutine
// running Run. Other goroutines talk to it through SetModifiers and by
// canceling the context.
type Host struct {
	screen  tcell.Screen
	rec     *capture.Recorder
	sub     *notify.Subscription
	logger  *logging.Logger
	valid   tcell.Style
	invalid tcell.Style
	last    string
}

// Option configures a Host.
type Option func(*Host)

// WithColors sets the indicator colors.
func WithColors(valid, invalid colorful.Color) Option {
	return func(h *Host) {
		h.valid = styleFor(valid)
		h.invalid = styleFor(invalid)
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(h *Host) {
		h.logger = l
	}
}

// New creates a host rendering rec on screen. Call Init before Run.
func New(screen tcell.Screen, rec *capture.Recorder, opts ...Option) *Host {
	h := &Host{
		screen:  screen,
		valid:   styleFor(DefaultValidColor),
		invalid: styleFor(DefaultInvalidColor),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = logging.OrDefault(h.logger).WithComponent("term")
	h.attach(rec)
	return h
}

// Recorder returns the recorder currently driven by the host.
func (h *Host) Recorder() *capture.Recorder {
	return h.rec
}

// modifierUpdate asks the event loop to rebuild the recorder.
type modifierUpdate struct {
	mods key.ModifierSet
}

// SetModifiers replaces the modifier set. It is safe to call from any
// goroutine; the change is applied by the event loop, keeping the
// committed value.
func (h *Host) SetModifiers(mods key.ModifierSet) error {
	return h.screen.PostEvent(tcell.NewEventInterrupt(modifierUpdate{mods: mods}))
}

// Init initializes the screen and enables focus reporting.
func (h *Host) Init() error {
	if err := h.screen.Init(); err != nil {
		return err
	}
	h.screen.EnableFocus()
	h.screen.HideCursor()
	return nil
}

// Run processes events until Esc is pressed, the context is canceled or
// the screen is finalized, then finalizes the screen and closes the
// recorder. It returns the committed value at exit.
func (h *Host) Run(ctx context.Context) (string, error) {
	defer h.screen.Fini()
	defer func() {
		h.sub.Unsubscribe()
		h.rec.Close()
	}()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = h.screen.PostEvent(tcell.NewEventInterrupt(ctx.Err()))
		case <-stop:
		}
	}()

	h.logger.Info("recording with modifiers [%s]", h.rec.Machine().Modifiers())
	h.Draw()

	for {
		ev := h.screen.PollEvent()
		if ev == nil {
			return h.rec.Value(), nil
		}
		if quit := h.HandleEvent(ev); quit {
			return h.rec.Value(), ctx.Err()
		}
		h.Draw()
	}
}

// HandleEvent applies a single screen event and reports whether the host
// should stop.
func (h *Host) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if isQuit(ev) {
			return true
		}
		events := Events(ev)
		if len(events) == 0 {
			h.logger.Debug("ignoring key %s", ev.Name())
			return false
		}
		h.rec.HandleAll(events)

	case *tcell.EventFocus:
		if !ev.Focused {
			h.rec.Blur()
		}

	case *tcell.EventInterrupt:
		switch data := ev.Data().(type) {
		case modifierUpdate:
			old := h.rec
			h.attach(old.Rebuild(data.mods))
			old.Close()
		case error:
			return true
		}

	case *tcell.EventResize:
		h.screen.Sync()
	}
	return false
}

// attach makes rec the host's recorder and tracks its emissions.
func (h *Host) attach(rec *capture.Recorder) {
	if h.sub != nil {
		h.sub.Unsubscribe()
	}
	h.rec = rec
	h.sub = rec.RegisterOnChange(func(v string) {
		h.last = v
		h.logger.Info("captured %s", v)
	})
}

// Draw renders the widget.
func (h *Host) Draw() {
	s := h.screen
	s.Clear()
	width, height := s.Size()
	if width <= 0 || height <= 0 {
		return
	}

	st := h.rec.State()
	mods := h.rec.Machine().Modifiers()
	plain := tcell.StyleDefault
	dim := plain.Dim(true)

	y := height/2 - 2
	if y < 0 {
		y = 0
	}

	drawCentered(s, y, "Press a shortcut", plain.Bold(true))

	field := h.invalid
	if key.IsValid(st.Display, mods) {
		field = h.valid
	}
	shown := "(none)"
	if len(st.Display) > 0 {
		shown = formatKeys(st.Display)
	}
	drawCentered(s, y+2, " "+shown+" ", field.Reverse(true))

	drawCentered(s, y+4, "value: "+orDash(st.Value)+"   status: "+st.Status.String(), dim)
	if h.last != "" {
		drawCentered(s, y+5, "last captured: "+h.last, dim)
	}
	drawText(s, 0, height-1, "Esc quits   modifiers: "+mods.String(), dim)

	s.Show()
}

// formatKeys renders a key list the way it is typed, spelling out the
// space key.
func formatKeys(keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		if k == key.Space {
			k = "Space"
		}
		parts[i] = k
	}
	return strings.Join(parts, " + ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func styleFor(c colorful.Color) tcell.Style {
	r, g, b := c.Clamped().RGB255()
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
}
