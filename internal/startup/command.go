package startup

import "strings"

// LaunchCommand builds the command line stored in the auto-start entry: the
// quoted executable path followed by the given arguments. Arguments are
// quoted only when they contain a character the platform treats specially.
func LaunchCommand(exe string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quote(exe))
	for _, arg := range args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	if arg == "" {
		return `""`
	}
	if !strings.ContainsAny(arg, reservedChars) {
		return arg
	}
	return quote(arg)
}

// quote wraps s in double quotes, escaping the characters that keep their
// meaning inside them.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		if strings.ContainsRune(quotedEscapes, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
