// notice.go defines the canonical notice data structure sent over the wire.

package airbrake

// Notifier identity reported in the context block of every notice.
const (
	notifierName    = "airbrake-go"
	notifierVersion = "1.1.0"
	notifierURL     = "https://github.com/driftsignal/airbrake-go"
)

// Reserved context keys. Filters may set additional free-form keys, but
// these are the ones the remote service assigns meaning to.
const (
	ctxEnvironment   = "environment"
	ctxVersion       = "version"
	ctxHostname      = "hostname"
	ctxOS            = "os"
	ctxLanguage      = "language"
	ctxSeverity      = "severity"
	ctxURL           = "url"
	ctxHTTPMethod    = "httpMethod"
	ctxUserAgent     = "userAgent"
	ctxUserAddr      = "userAddr"
	ctxRoute         = "route"
	ctxComponent     = "component"
	ctxAction        = "action"
	ctxUser          = "user"
	ctxNotifier      = "notifier"
	ctxRootDirectory = "rootDirectory"
)

// StackFrame is one frame of an error backtrace.
type StackFrame struct {
	// File is the source file, rewritten to be project-root relative when a
	// root directory is configured, or the literal "[internal]" for frames
	// with no file information.
	File string `json:"file"`

	// Line is the line number within File. Zero means unknown.
	Line int `json:"line"`

	// Function is the fully qualified function or method name. Empty for a
	// frame that only records a throw site.
	Function string `json:"function"`
}

// Error is one link of a cause chain: a single error with its backtrace.
type Error struct {
	// Type is the concrete type name of the error value.
	Type string `json:"type"`

	// Message is the error's message text.
	Message string `json:"message"`

	// Backtrace is the normalized call stack, innermost call first.
	Backtrace []StackFrame `json:"backtrace"`
}

// Notice is the unit of work and the wire payload: one error event,
// fully assembled, filtered, and ready for delivery.
//
// The five tagged fields form the JSON body POSTed to the notices
// endpoint. The remaining fields carry the delivery outcome back to the
// caller and are never serialized.
type Notice struct {
	// Errors holds the cause chain, outermost error first.
	Errors []Error `json:"errors"`

	// Context holds notice metadata. Free-form, with reserved keys for
	// severity, request attributes, and the notifier identity block.
	Context map[string]any `json:"context"`

	// Environment holds server environment variables relevant to
	// reproducing the error.
	Environment map[string]string `json:"environment"`

	// Params holds request or log context parameters.
	Params map[string]any `json:"params"`

	// Session holds session identifying data (ids only, never raw
	// session contents).
	Session map[string]any `json:"session"`

	// Delivery outcome

	// ID is the remote notice id. Set on successful delivery.
	ID string `json:"-"`

	// URL is the remote notice permalink, when the service provides one.
	URL string `json:"-"`

	// Err reports why the notice was not delivered. Nil on success.
	// Exactly one of ID or Err is set after SendNotice returns.
	Err error `json:"-"`
}
