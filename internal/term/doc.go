// Package term is the terminal host for the capture widget.
//
// It runs a tcell screen, expands every key event into the press/release
// sequence of the chord it represents (terminals do not report key-up),
// maps focus-out to a blur and renders the current display with a
// valid/invalid color. A bare Esc quits.
package term
