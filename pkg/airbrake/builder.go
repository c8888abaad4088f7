// builder.go assembles notices from error chains and ambient context.

package airbrake

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/samber/lo"
)

// NoticeOption customizes a notice while it is being built. Options run
// after the notice skeleton and error chain are in place, in the order
// given.
type NoticeOption func(*Notice)

// WithRequest merges request metadata into the notice.
func WithRequest(rc *RequestContext) NoticeOption {
	return func(notice *Notice) {
		rc.apply(notice)
	}
}

// WithSeverity overrides the notice severity.
func WithSeverity(s Severity) NoticeOption {
	return func(notice *Notice) {
		notice.Context[ctxSeverity] = string(s)
	}
}

// WithParams merges entries into the notice params map.
func WithParams(params map[string]any) NoticeOption {
	return func(notice *Notice) {
		notice.Params = lo.Assign(notice.Params, params)
	}
}

// WithSession merges entries into the notice session map.
func WithSession(session map[string]any) NoticeOption {
	return func(notice *Notice) {
		notice.Session = lo.Assign(notice.Session, session)
	}
}

// WithContextValue sets one notice context key.
func WithContextValue(key string, value any) NoticeOption {
	return func(notice *Notice) {
		notice.Context[key] = value
	}
}

// ErrorDescriptor describes an error reported by a host framework's error
// pipeline: the code location is known but no Go error value carrying a
// stack exists. Its file and line become the first backtrace frame.
type ErrorDescriptor struct {
	// Type categorizes the error. Defaults to "error" when empty.
	Type string

	// Message is the human-readable description.
	Message string

	// File and Line locate the error site. A zero Line means unknown and
	// suppresses the throw-site frame.
	File string
	Line int
}

// BuildNotice assembles a notice from err and its cause chain plus the
// ambient process context. It is a pure transform: no I/O, no network.
// The notice is ready for SendNotice or further enrichment by filters.
func (n *Notifier) BuildNotice(err error, opts ...NoticeOption) *Notice {
	notice := n.newNotice()
	for i, cause := range errorChain(err) {
		notice.Errors = append(notice.Errors, n.buildError(cause, i == 0))
	}
	for _, opt := range opts {
		opt(notice)
	}
	return notice
}

// BuildDescriptorNotice assembles a notice for a framework-reported error
// with a known file and line. The throw site is emitted as the first
// frame, with an empty function name, followed by the stack captured at
// this call.
func (n *Notifier) BuildDescriptorNotice(d ErrorDescriptor, opts ...NoticeOption) *Notice {
	notice := n.newNotice()
	notice.Errors = append(notice.Errors, n.buildDescriptorError(d))
	for _, opt := range opts {
		opt(notice)
	}
	return notice
}

// newNotice builds the notice skeleton: empty payload maps and the
// ambient context every notice carries.
func (n *Notifier) newNotice() *Notice {
	context := map[string]any{
		ctxNotifier: map[string]any{
			"name":    notifierName,
			"version": notifierVersion,
			"url":     notifierURL,
		},
		ctxSeverity: string(n.cfg.DefaultSeverity),
	}
	for key, value := range runtimeContext() {
		context[key] = value
	}
	if n.cfg.Environment != "" {
		context[ctxEnvironment] = n.cfg.Environment
	}
	if n.cfg.AppVersion != "" {
		context[ctxVersion] = n.cfg.AppVersion
	}
	if n.cfg.RootDirectory != "" {
		context[ctxRootDirectory] = n.cfg.RootDirectory
	}
	return &Notice{
		Errors:      make([]Error, 0, 1),
		Context:     context,
		Environment: serverEnvironment(),
		Params:      map[string]any{},
		Session:     map[string]any{},
	}
}

// buildError converts one link of a cause chain. Errors that recorded
// their own stack (the Caller capability) keep it; otherwise only the
// outermost error gets a stack, captured at the notifier entry point.
// Inner causes without recorded stacks get an empty backtrace rather
// than a misleading copy of the outer one.
func (n *Notifier) buildError(err error, outermost bool) Error {
	e := Error{
		Type:      fmt.Sprintf("%T", err),
		Message:   err.Error(),
		Backtrace: []StackFrame{},
	}
	// Direct assertion, not errors.As: each chain link reports only the
	// stack it recorded itself.
	if caller, ok := err.(Caller); ok && len(caller.Callers()) > 0 {
		e.Backtrace = backtraceFromCallers(caller.Callers(), n.cfg.RootDirectory)
	} else if outermost {
		e.Backtrace = captureBacktrace(n.cfg.RootDirectory)
	}
	return e
}

func (n *Notifier) buildDescriptorError(d ErrorDescriptor) Error {
	e := Error{
		Type:      d.Type,
		Message:   d.Message,
		Backtrace: []StackFrame{},
	}
	if e.Type == "" {
		e.Type = "error"
	}
	if d.Line > 0 {
		e.Backtrace = append(e.Backtrace, StackFrame{
			File: rewritePath(d.File, n.cfg.RootDirectory),
			Line: d.Line,
		})
	}
	e.Backtrace = append(e.Backtrace, captureBacktrace(n.cfg.RootDirectory)...)
	return e
}

// errorChain unwinds err into its cause chain, outermost first. The walk
// is iterative with a visited set so a malformed cyclic chain cannot
// loop forever: unwinding stops at the first repeat and the links
// collected so far are kept. Only comparable error values enter the
// visited set; non-comparable types are appended without cycle tracking
// rather than risking a map-key panic.
func errorChain(err error) []error {
	var chain []error
	seen := make(map[error]struct{})
	for err != nil {
		if reflect.TypeOf(err).Comparable() {
			if _, dup := seen[err]; dup {
				break
			}
			seen[err] = struct{}{}
		}
		chain = append(chain, err)
		err = errors.Unwrap(err)
	}
	return chain
}
