package log

import "unicode/utf8"

// Clip truncates s to max bytes, keeping a trailing newline.
// Nothing is cut when max is 0 or tracing is on.
func Clip(s string, max int) string {
	if IsTrace() || max <= 0 || len(s) <= max {
		return s
	}
	trailing := "..."
	if s[len(s)-1] == '\n' {
		trailing = "...\n"
	}
	return Truncate(s, max) + trailing
}

// Truncate returns at most max bytes of s without splitting a UTF-8 character.
func Truncate(s string, max int) string {
	if max < 0 {
		max = 0
	}
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
