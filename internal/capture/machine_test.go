package capture

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/logging"
	"github.com/dshills/keychord/internal/notify"
)

// recorded collects everything a machine publishes.
type recorded struct {
	values   []string
	displays [][]string
	statuses []Status
}

func newTestMachine(t *testing.T, mods ...string) (*Machine, *recorded) {
	t.Helper()
	m := NewMachine(key.NewModifierSet(mods...), WithLogger(logging.Null()), WithID("test"))
	rec := &recorded{}
	m.Notifier().Subscribe(func(c notify.Change) {
		switch c.Topic {
		case notify.TopicValue:
			rec.values = append(rec.values, c.NewValue.(string))
		case notify.TopicDisplay:
			rec.displays = append(rec.displays, c.NewValue.([]string))
		case notify.TopicStatus:
			rec.statuses = append(rec.statuses, c.NewValue.(Status))
		}
	})
	return m, rec
}

func assertDisplay(t *testing.T, m *Machine, want ...string) {
	t.Helper()
	got := m.Display()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Display() = %v, want %v", got, want)
	}
}

func assertInvariants(t *testing.T, m *Machine) {
	t.Helper()
	if err := m.State().Check(m.Modifiers()); err != nil {
		t.Fatalf("invariant violated: %v", err)
	}
}

func TestScenarioA_CommitOnFirstValidCombination(t *testing.T) {
	m, rec := newTestMachine(t, key.Control, key.Shift)

	m.KeyDown(key.Control)
	assertDisplay(t, m, key.Control)
	if m.Status().Valid {
		t.Error("Control alone should be invalid")
	}
	if len(rec.values) != 0 {
		t.Errorf("emitted %v before a valid combination", rec.values)
	}

	m.KeyDown("K")
	st := m.State()
	if st.ModifierCount != 1 || st.NonModifierCount != 1 {
		t.Errorf("counters = (%d, %d), want (1, 1)", st.ModifierCount, st.NonModifierCount)
	}
	if !st.Status.Valid || !st.Status.Committed || !st.Status.InProgress {
		t.Errorf("Status = %+v, want valid, committed, in progress", st.Status)
	}
	assertDisplay(t, m, key.Control, "K")
	if !reflect.DeepEqual(rec.values, []string{"Control+K"}) {
		t.Errorf("emitted %v, want [Control+K]", rec.values)
	}
	if m.Value() != "Control+K" {
		t.Errorf("Value() = %q, want Control+K", m.Value())
	}
	assertInvariants(t, m)
}

func TestScenarioB_ReleaseKeepsCommittedDisplay(t *testing.T) {
	m, rec := newTestMachine(t, key.Control, key.Shift)
	m.KeyDown(key.Control)
	m.KeyDown("K")

	m.KeyUp("K")
	assertDisplay(t, m, key.Control, "K")
	if !m.Status().Committed {
		t.Error("Committed should survive a release")
	}

	m.KeyUp(key.Control)
	assertDisplay(t, m, key.Control, "K")
	if m.Status().InProgress {
		t.Error("InProgress should be false with nothing held")
	}
	if len(rec.values) != 1 {
		t.Errorf("releases emitted values: %v", rec.values)
	}
	assertInvariants(t, m)
}

func TestScenarioC_ExploratoryDisplayClearsOnRelease(t *testing.T) {
	m, rec := newTestMachine(t, key.Control, key.Shift)

	m.KeyDown("K")
	st := m.State()
	if st.ModifierCount != 0 || st.NonModifierCount != 1 {
		t.Errorf("counters = (%d, %d), want (0, 1)", st.ModifierCount, st.NonModifierCount)
	}
	if st.Status.Valid {
		t.Error("K alone should be invalid")
	}
	assertDisplay(t, m, "K")

	m.KeyUp("K")
	assertDisplay(t, m)
	if len(rec.values) != 0 {
		t.Errorf("emitted %v for an invalid combination", rec.values)
	}
	assertInvariants(t, m)
}

func TestScenarioD_WriteValueSeedsWithoutEmitting(t *testing.T) {
	m, rec := newTestMachine(t, key.Control, key.Shift)

	m.WriteValue("Alt+Tab")
	assertDisplay(t, m, key.Alt, key.Tab)
	if !m.Status().Committed {
		t.Error("WriteValue should mark a value as committed")
	}
	if m.Value() != "Alt+Tab" {
		t.Errorf("Value() = %q, want Alt+Tab", m.Value())
	}
	if len(rec.values) != 0 {
		t.Errorf("WriteValue emitted %v", rec.values)
	}
	if len(rec.displays) != 1 {
		t.Errorf("display observers notified %d times, want 1", len(rec.displays))
	}
}

func TestScenarioE_BlurWithNothingHeldIsNoop(t *testing.T) {
	m, rec := newTestMachine(t, key.Control, key.Shift)
	m.WriteValue("Alt+Tab")
	before := m.State()
	notified := len(rec.displays) + len(rec.statuses) + len(rec.values)

	m.Blur()

	if !reflect.DeepEqual(m.State(), before) {
		t.Errorf("State() = %+v, want unchanged %+v", m.State(), before)
	}
	if got := len(rec.displays) + len(rec.statuses) + len(rec.values); got != notified {
		t.Error("Blur with nothing held published changes")
	}
}

func TestCommittedValueReplacedByNewValidCombination(t *testing.T) {
	m, rec := newTestMachine(t, key.Control, key.Shift)
	m.KeyDown(key.Control)
	m.KeyDown("K")
	m.KeyUp("K")

	m.KeyDown("J")
	assertDisplay(t, m, key.Control, "J")

	m.KeyDown("L")
	if m.Status().Valid {
		t.Error("two non-modifiers should be invalid")
	}
	assertDisplay(t, m, key.Control, "J")

	want := []string{"Control+K", "Control+J"}
	if !reflect.DeepEqual(rec.values, want) {
		t.Errorf("emitted %v, want %v", rec.values, want)
	}
	assertInvariants(t, m)
}

func TestCommittedValueExtendedByModifier(t *testing.T) {
	m, rec := newTestMachine(t, key.Control, key.Shift)
	m.KeyDown(key.Control)
	m.KeyDown("K")
	m.KeyDown(key.Shift)

	assertDisplay(t, m, key.Control, "K", key.Shift)
	if rec.values[len(rec.values)-1] != "Control+K+Shift" {
		t.Errorf("last emitted = %q, want Control+K+Shift", rec.values[len(rec.values)-1])
	}
}

func TestInvalidPressAfterSeedKeepsSeed(t *testing.T) {
	m, rec := newTestMachine(t, key.Control, key.Shift)
	m.WriteValue("Alt+Tab")

	m.KeyDown(key.Control)
	assertDisplay(t, m, key.Alt, key.Tab)
	m.KeyUp(key.Control)
	assertDisplay(t, m, key.Alt, key.Tab)

	m.KeyDown("Q")
	m.KeyUp("Q")
	assertDisplay(t, m, key.Alt, key.Tab)

	if len(rec.values) != 0 {
		t.Errorf("emitted %v without a valid combination", rec.values)
	}
}

func TestTwoNonModifiersNeverCommit(t *testing.T) {
	m, rec := newTestMachine(t, key.Control)
	m.KeyDown("K")
	m.KeyDown("J")
	m.KeyDown(key.Control)

	assertDisplay(t, m, "K", "J", key.Control)
	if m.Status().Valid || m.Status().Committed {
		t.Errorf("Status = %+v, want invalid and uncommitted", m.Status())
	}

	m.KeyUp(key.Control)
	assertDisplay(t, m)
	if len(rec.values) != 0 {
		t.Errorf("emitted %v", rec.values)
	}
}

func TestReleaseIntoValidCombinationDoesNotCommit(t *testing.T) {
	m, rec := newTestMachine(t, key.Control)
	m.KeyDown("K")
	m.KeyDown("J")
	m.KeyDown(key.Control)

	m.KeyUp("J")
	if !m.Status().Valid {
		t.Error("Control+K held should be valid")
	}
	if m.Status().Committed {
		t.Error("a release should never commit")
	}
	assertDisplay(t, m, "K", "J", key.Control)
	if len(rec.values) != 0 {
		t.Errorf("emitted %v on release", rec.values)
	}
	assertInvariants(t, m)
}

func TestOrphanKeyUpIgnored(t *testing.T) {
	m, rec := newTestMachine(t, key.Control)
	m.KeyDown(key.Control)
	before := m.State()
	published := len(rec.displays)

	m.KeyUp("K")
	m.KeyUp("")

	if !reflect.DeepEqual(m.State(), before) {
		t.Errorf("orphan release changed state to %+v", m.State())
	}
	if len(rec.displays) != published {
		t.Error("orphan release published a display change")
	}
}

func TestDuplicateKeyDownIgnored(t *testing.T) {
	m, _ := newTestMachine(t, key.Control)
	m.KeyDown(key.Control)
	m.KeyDown(key.Control)
	m.KeyDown("")

	st := m.State()
	if len(st.Pressed) != 1 || st.ModifierCount != 1 {
		t.Errorf("State = %+v, want one Control held", st)
	}
	assertInvariants(t, m)
}

func TestBlurClearsHeldKeys(t *testing.T) {
	tests := []struct {
		name        string
		seed        string
		wantDisplay []string
	}{
		{"uncommitted display is cleared", "", nil},
		{"committed display is kept", "Alt+Tab", []string{key.Alt, key.Tab}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestMachine(t, key.Control, key.Alt)
			m.WriteValue(tt.seed)
			m.KeyDown("X")
			m.KeyDown("Y")
			m.KeyDown(key.Alt)

			m.Blur()

			st := m.State()
			if st.Status.InProgress || len(st.Pressed) != 0 {
				t.Errorf("State = %+v, want nothing held", st)
			}
			if st.ModifierCount != 0 || st.NonModifierCount != 0 {
				t.Errorf("counters = (%d, %d), want zero", st.ModifierCount, st.NonModifierCount)
			}
			if st.Status.Valid {
				t.Error("Valid should be false after Blur")
			}
			assertDisplay(t, m, tt.wantDisplay...)
			assertInvariants(t, m)
		})
	}
}

func TestBlurThenReleasesAreOrphans(t *testing.T) {
	m, _ := newTestMachine(t, key.Alt)
	m.KeyDown(key.Alt)
	m.KeyDown(key.Tab)
	m.Blur()

	m.KeyUp(key.Tab)
	m.KeyUp(key.Alt)
	if m.Status().InProgress {
		t.Error("late releases should be ignored after Blur")
	}
	assertDisplay(t, m, key.Alt, key.Tab)
}

func TestWriteValueIdempotent(t *testing.T) {
	m, rec := newTestMachine(t, key.Control)
	m.WriteValue("Control+K")
	first := m.State()
	statuses := len(rec.statuses)

	m.WriteValue("Control+K")
	if !reflect.DeepEqual(m.State(), first) {
		t.Errorf("second write changed state: %+v vs %+v", m.State(), first)
	}
	if len(rec.statuses) != statuses {
		t.Error("second write toggled status")
	}
}

func TestWriteValueEmptyIsNoop(t *testing.T) {
	m, rec := newTestMachine(t, key.Control)
	m.WriteValue("")
	if m.Status().Committed {
		t.Error("empty write should not commit")
	}
	if len(rec.displays)+len(rec.statuses) != 0 {
		t.Error("empty write published changes")
	}
}

func TestWriteValueLeavesHeldKeys(t *testing.T) {
	m, rec := newTestMachine(t, key.Control)
	m.KeyDown(key.Control)
	m.WriteValue("Alt+F4")

	st := m.State()
	if !reflect.DeepEqual(st.Pressed, []string{key.Control}) || st.ModifierCount != 1 {
		t.Errorf("State = %+v, want Control still held", st)
	}
	assertDisplay(t, m, key.Alt, key.F4)

	// Committed now, so an invalid release keeps the seed on screen.
	m.KeyUp(key.Control)
	assertDisplay(t, m, key.Alt, key.F4)
	if len(rec.values) != 0 {
		t.Errorf("emitted %v", rec.values)
	}
}

func TestReset(t *testing.T) {
	m, rec := newTestMachine(t, key.Control)
	m.KeyDown(key.Control)
	m.KeyDown("K")

	m.Reset()
	st := m.State()
	if !reflect.DeepEqual(st, State{}) {
		t.Errorf("State after Reset = %+v, want zero", st)
	}

	m.KeyDown("K")
	assertDisplay(t, m, "K")
	m.KeyUp("K")
	assertDisplay(t, m)

	m.KeyDown(key.Control)
	m.KeyDown("S")
	if got := rec.values[len(rec.values)-1]; got != "Control+S" {
		t.Errorf("last emitted = %q, want Control+S", got)
	}
}

func TestStatusPublishedOnlyOnChange(t *testing.T) {
	m, rec := newTestMachine(t, key.Control, key.Shift)

	m.KeyDown(key.Control) // progress
	m.KeyDown(key.Shift)   // unchanged
	m.KeyDown("K")         // valid, committed
	m.KeyUp("K")           // invalid
	m.KeyUp(key.Shift)     // unchanged
	m.KeyUp(key.Control)   // idle

	want := []Status{
		{InProgress: true},
		{InProgress: true, Valid: true, Committed: true},
		{InProgress: true, Committed: true},
		{Committed: true},
	}
	if !reflect.DeepEqual(rec.statuses, want) {
		t.Errorf("statuses = %v, want %v", rec.statuses, want)
	}
}

func TestDisplayPublishedOnlyOnChange(t *testing.T) {
	m, rec := newTestMachine(t, key.Control)

	m.Reset()
	if len(rec.displays) != 0 {
		t.Errorf("Reset of an empty display published %v", rec.displays)
	}

	m.WriteValue("Control+K")
	m.WriteValue("Control+K")
	if len(rec.displays) != 1 {
		t.Errorf("display observers notified %d times after repeated write, want 1", len(rec.displays))
	}

	m.WriteValue("Control+J")
	m.Reset()
	m.Reset()
	want := [][]string{{key.Control, "K"}, {key.Control, "J"}, nil}
	if !reflect.DeepEqual(rec.displays, want) {
		t.Errorf("displays = %v, want %v", rec.displays, want)
	}
}

func TestRegisterOnChange(t *testing.T) {
	m, _ := newTestMachine(t, key.Control)

	var got []string
	sub := m.RegisterOnChange(func(v string) { got = append(got, v) })

	m.WriteValue("Control+Z")
	m.KeyDown(key.Control)
	m.KeyDown("Y")
	sub.Unsubscribe()
	m.KeyUp("Y")
	m.KeyDown("X")

	if !reflect.DeepEqual(got, []string{"Control+Y"}) {
		t.Errorf("changes = %v, want [Control+Y]", got)
	}
}

func TestRegisterOnChangeIgnoresOtherSources(t *testing.T) {
	n := notify.New()
	a := NewMachine(key.NewModifierSet(key.Control), WithNotifier(n), WithID("a"), WithLogger(logging.Null()))
	b := NewMachine(key.NewModifierSet(key.Control), WithNotifier(n), WithID("b"), WithLogger(logging.Null()))

	var got []string
	a.RegisterOnChange(func(v string) { got = append(got, v) })

	b.KeyDown(key.Control)
	b.KeyDown("B")
	a.KeyDown(key.Control)
	a.KeyDown("A")

	if !reflect.DeepEqual(got, []string{"Control+A"}) {
		t.Errorf("changes = %v, want [Control+A]", got)
	}
}

func TestDisplayIsCopy(t *testing.T) {
	m, _ := newTestMachine(t, key.Control)
	m.KeyDown(key.Control)
	m.KeyDown("K")

	d := m.Display()
	d[0] = "Hijacked"
	s := m.State()
	s.Pressed[0] = "Hijacked"

	assertDisplay(t, m, key.Control, "K")
	if m.State().Pressed[0] != key.Control {
		t.Error("modifying State().Pressed affected the machine")
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{Status{}, "- - -"},
		{Status{InProgress: true, Valid: true, Committed: true}, "progress valid committed"},
		{Status{Committed: true}, "- - committed"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

// TestRandomSequencesKeepInvariants drives the machine with random event
// sequences and checks the properties that must hold in every state.
func TestRandomSequencesKeepInvariants(t *testing.T) {
	keys := []string{key.Control, key.Shift, key.Alt, "K", "J", "L"}
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		m, _ := newTestMachine(t, key.Control, key.Shift, key.Alt)

		for step := 0; step < 60; step++ {
			id := keys[rng.Intn(len(keys))]
			switch op := rng.Intn(10); {
			case op < 5:
				m.KeyDown(id)
			case op < 9:
				before := m.State()
				m.KeyUp(id)
				if before.Status.Committed && !reflect.DeepEqual(m.Display(), before.Display) {
					t.Fatalf("run %d step %d: release of %q changed committed display %v -> %v",
						run, step, id, before.Display, m.Display())
				}
			default:
				m.Blur()
				st := m.State()
				if st.Status.InProgress || len(st.Pressed) != 0 {
					t.Fatalf("run %d step %d: state after Blur = %+v", run, step, st)
				}
			}

			if err := m.State().Check(m.Modifiers()); err != nil {
				t.Fatalf("run %d step %d: %v", run, step, err)
			}
		}
	}
}
