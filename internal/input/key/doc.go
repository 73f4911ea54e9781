// Package key provides key identifiers, modifier classification and the
// canonical shortcut serialization used by the capture machine.
//
// Keys are identified by stable strings in the KeyboardEvent.key domain:
//
//   - Modifiers: "Control", "Shift", "Alt", "Meta", "CapsLock"
//   - Named keys: "Enter", "Escape", "Tab", "ArrowUp", "F5"
//   - Characters: "k", "K", "1", "/"
//
// # Modifier Sets
//
// A ModifierSet classifies identifiers as modifier or non-modifier. It is
// built once and never changes. Configured names go through Normalize so
// that "ctrl", "Ctrl" and "control" all mean "Control".
//
// # Shortcut Strings
//
// A recorded shortcut is serialized as identifiers joined with "+" in press
// order, for example "Control+Shift+K". Identifiers never contain "+".
// Split and Join convert between the two forms; Parse additionally checks
// that the keys form a valid shortcut for a given ModifierSet.
package key
