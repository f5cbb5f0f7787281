//go:build windows

package startup

// Backslashes are path separators in a Run value and are never escaped.
const (
	reservedChars = " \t\""
	quotedEscapes = `"`
)
