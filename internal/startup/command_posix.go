//go:build !windows

package startup

// Desktop entry Exec values and the LaunchAgent's /bin/sh -c follow the same
// shell-like rules.
const (
	reservedChars = " \t\n\"'\\><~|&;$*?#()`"
	quotedEscapes = "\"`$\\"
)
