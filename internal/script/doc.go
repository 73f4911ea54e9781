// Package script replays recorded key sequences against a capture.Recorder.
//
// Two formats are supported. YAML scenario files list steps, each with one
// operation and optional expectations about the resulting state:
//
//	name: control-k
//	modifiers: [Control, Shift]
//	steps:
//	  - down: Control
//	    expect: {display: [Control], valid: false}
//	  - down: K
//	    expect: {display: [Control, K], emitted: [Control+K]}
//
// A file may hold several scenarios as separate YAML documents.
//
// Lua scripts drive the recorder through global functions (keydown, keyup,
// press, blur, write, reset, modifiers) and inspect it with display, value,
// valid, progress, committed and emitted. expect(cond, message) records a
// failure without stopping the script.
//
// Every operation writes one JSON line to the runner's trace.
package script
