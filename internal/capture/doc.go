// Package capture implements the shortcut capture state machine.
//
// A Machine consumes key presses, key releases, focus loss and external
// value writes, and decides what to display and what to commit while a
// user records a keyboard shortcut such as "Control+Shift+K".
//
// # Validity
//
// A held-key combination is valid when at least one modifier and exactly
// one non-modifier key are held. Validity is re-evaluated after every press
// and release.
//
// # Display and Commit
//
// Until a combination has been committed the display mirrors the held keys
// (exploratory state) and is cleared when an invalid combination is
// released. The first valid combination commits: the joined value is
// emitted on notify.TopicValue and the display freezes on it. Later presses
// replace the display only when they form a new valid combination; releases
// never change a committed display.
//
// # Focus Loss
//
// Blur clears held keys when focus moves away before releases arrive, for
// example when a system shortcut switches windows. With nothing held it is a
// no-op.
//
// # Recorder
//
// A Recorder wraps a Machine with a RepeatFilter that drops auto-repeated
// presses of the key pressed last, and is what hosts feed raw events to.
//
// # Thread Safety
//
// Machines and Recorders are not safe for concurrent use. Each widget owns
// one Recorder and must deliver its events from a single goroutine, in the
// order they physically occurred.
package capture
