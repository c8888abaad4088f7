// backtrace.go captures and normalizes call stacks for notice errors.

package airbrake

import (
	"runtime"
	"strings"
)

// internalFileMarker stands in for frames with no file information
// (assembly, cgo, stripped frames).
const internalFileMarker = "[internal]"

// projectRootMarker replaces the configured root directory in frame paths.
const projectRootMarker = "[PROJECT_ROOT]"

// modulePrefix identifies this library's own frames so they can be
// trimmed from captured stacks. The trailing dot keeps sibling packages
// (for example external test packages) from matching.
const modulePrefix = "github.com/driftsignal/airbrake-go/pkg/airbrake."

// Caller is an optional capability interface: error types that record
// their own call stack expose it as raw program counters, and the
// notice builder uses those instead of capturing at the call site.
type Caller interface {
	Callers() []uintptr
}

// captureBacktrace records the current call stack, normalized, with this
// library's own frames trimmed off the top. The remaining frames start at
// the caller of the exported entry point.
func captureBacktrace(root string) []StackFrame {
	pcs := make([]uintptr, 64)
	// Skip runtime.Callers and captureBacktrace itself; the prefix trim
	// below removes the rest of this package's frames.
	n := runtime.Callers(2, pcs)
	if n == 0 {
		return []StackFrame{}
	}
	return trimmedFrames(pcs[:n], root)
}

// backtraceFromCallers normalizes program counters supplied by an error
// value implementing Caller. No trimming: the error recorded exactly the
// frames it wanted.
func backtraceFromCallers(pcs []uintptr, root string) []StackFrame {
	if len(pcs) == 0 {
		return []StackFrame{}
	}
	frames := runtime.CallersFrames(pcs)
	var out []StackFrame
	for {
		frame, more := frames.Next()
		out = append(out, normalizeFrame(frame, root))
		if !more {
			break
		}
	}
	return out
}

func trimmedFrames(pcs []uintptr, root string) []StackFrame {
	frames := runtime.CallersFrames(pcs)
	var out []StackFrame
	trimming := true
	for {
		frame, more := frames.Next()
		if trimming && strings.HasPrefix(frame.Function, modulePrefix) {
			if !more {
				break
			}
			continue
		}
		trimming = false
		out = append(out, normalizeFrame(frame, root))
		if !more {
			break
		}
	}
	if out == nil {
		out = []StackFrame{}
	}
	return out
}

// normalizeFrame converts one runtime frame to the wire shape. Unwind
// order is preserved by the callers; frames are never sorted or
// de-duplicated, so recursive calls appear repeatedly.
func normalizeFrame(frame runtime.Frame, root string) StackFrame {
	return StackFrame{
		File:     rewritePath(frame.File, root),
		Line:     frame.Line,
		Function: frame.Function,
	}
}

// rewritePath replaces the configured root directory in file with the
// project-root marker. An empty root disables rewriting; an empty file
// becomes the internal marker.
func rewritePath(file, root string) string {
	if file == "" {
		return internalFileMarker
	}
	if root == "" {
		return file
	}
	return strings.Replace(file, root, projectRootMarker, 1)
}
