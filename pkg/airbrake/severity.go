// severity.go defines the canonical severity set and log message interpolation.

package airbrake

import (
	"fmt"
	"strings"
)

// Severity indicates how serious a reported event is.
type Severity string

const (
	// SeverityCritical indicates an unrecoverable failure such as a panic.
	SeverityCritical Severity = "critical"

	// SeverityError indicates a recoverable error that caused an operation to fail.
	SeverityError Severity = "error"

	// SeverityWarning indicates a non-fatal issue that may need attention.
	SeverityWarning Severity = "warning"

	// SeverityInfo indicates an informational event.
	SeverityInfo Severity = "info"

	// SeverityDebug indicates a diagnostic event.
	SeverityDebug Severity = "debug"
)

// known reports whether s is a member of the canonical severity set.
func (s Severity) known() bool {
	switch s {
	case SeverityCritical, SeverityError, SeverityWarning, SeverityInfo, SeverityDebug:
		return true
	}
	return false
}

// ParseSeverity maps an arbitrary level name onto the canonical severity
// set, case-insensitively. Unrecognized levels map to fallback so that a
// logging facade with a wider vocabulary (notice, alert, emergency, ...)
// still produces a severity the remote service understands.
func ParseSeverity(level string, fallback Severity) Severity {
	s := Severity(strings.ToLower(strings.TrimSpace(level)))
	if s.known() {
		return s
	}
	return fallback
}

// Interpolate replaces {name} placeholders in message with the matching
// scalar entries of params. The message is scanned once, left to right:
// placeholders without a matching scalar entry are left untouched,
// non-scalar values (maps, slices, structs) are never interpolated, and
// substituted text is not rescanned, so a value containing a brace token
// cannot trigger another substitution.
func Interpolate(message string, params map[string]any) string {
	if len(params) == 0 || !strings.Contains(message, "{") {
		return message
	}
	var b strings.Builder
	b.Grow(len(message))
	for {
		open := strings.IndexByte(message, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(message[open:], '}')
		if end < 0 {
			break
		}
		end += open
		// A later opener before the brace closes starts the placeholder.
		if inner := strings.LastIndexByte(message[open+1:end], '{'); inner >= 0 {
			open += 1 + inner
		}
		value, ok := params[message[open+1:end]]
		if ok && isScalar(value) {
			b.WriteString(message[:open])
			fmt.Fprint(&b, value)
		} else {
			b.WriteString(message[:end+1])
		}
		message = message[end+1:]
	}
	b.WriteString(message)
	return b.String()
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}
