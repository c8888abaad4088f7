// notifier.go provides the Notifier facade: construction and the
// build-and-send entry points.

package airbrake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Sentinel delivery outcomes, reported in-band on Notice.Err and
// classifiable with errors.Is.
var (
	// ErrDisabled reports a send suppressed by Config.Disabled.
	ErrDisabled = errors.New("airbrake: notifier is disabled")

	// ErrIPRateLimited reports a send refused by the service's rate limit
	// or suppressed locally while the limit is still in effect.
	ErrIPRateLimited = errors.New("airbrake: IP is rate limited")

	// ErrNoticeFiltered reports a notice vetoed by a filter.
	ErrNoticeFiltered = errors.New("airbrake: notice was filtered")

	// ErrUnauthorized reports rejected credentials.
	ErrUnauthorized = errors.New("airbrake: unauthorized - check projectId and projectKey")
)

// Notifier builds notices and delivers them to an Airbrake-compatible
// endpoint. Construct one per process scope with NewNotifier and share
// it; it holds no per-notice state.
//
// The rate-limit backoff learned from 429 responses is tracked per
// instance, not per process or per project key. Multiple instances (or
// multiple processes) sharing one key each take one 429 before backing
// off.
type Notifier struct {
	cfg        Config
	filters    []Filter
	client     *resty.Client
	noticesURL string
	log        *slog.Logger

	mu             sync.Mutex
	rateLimitReset time.Time

	// nowFunc is replaced in tests to simulate the passage of time.
	nowFunc func() time.Time
}

// NewNotifier builds a Notifier from cfg. It fails when ProjectID or
// ProjectKey is missing or a blocklist pattern does not compile, so a
// misconfigured integration is caught at wiring time rather than at the
// first error. The returned notifier already carries the mandatory
// redaction filter.
func NewNotifier(cfg Config) (*Notifier, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	patterns, err := compileBlocklist(cfg.KeysBlocklist)
	if err != nil {
		return nil, err
	}
	n := &Notifier{
		cfg:        cfg,
		client:     newHTTPClient(cfg),
		noticesURL: buildNoticesURL(cfg.Host, cfg.ProjectID),
		log:        cfg.Logger,
		nowFunc:    time.Now,
	}
	n.filters = append(n.filters, newRedactionFilter(patterns))
	return n, nil
}

// Notify builds a notice from err and delivers it. Sugar for
// SendNotice(ctx, BuildNotice(err, opts...)).
func (n *Notifier) Notify(ctx context.Context, err error, opts ...NoticeOption) *Notice {
	return n.SendNotice(ctx, n.BuildNotice(err, opts...))
}

// NotifyDescriptor builds a notice from a framework-reported error
// descriptor and delivers it.
func (n *Notifier) NotifyDescriptor(ctx context.Context, d ErrorDescriptor, opts ...NoticeOption) *Notice {
	return n.SendNotice(ctx, n.BuildDescriptorNotice(d, opts...))
}

// Log reports a log record as a notice. The level is normalized onto the
// canonical severity set, falling back to Config.DefaultSeverity for
// unrecognized levels; {name} placeholders in message are interpolated
// from scalar params entries; params travel in the notice params map.
func (n *Notifier) Log(ctx context.Context, level Severity, message string, params map[string]any, opts ...NoticeOption) *Notice {
	severity := ParseSeverity(string(level), n.cfg.DefaultSeverity)
	d := ErrorDescriptor{
		Type:    string(severity),
		Message: Interpolate(message, params),
	}
	opts = append([]NoticeOption{WithSeverity(severity), WithParams(params)}, opts...)
	return n.SendNotice(ctx, n.BuildDescriptorNotice(d, opts...))
}

// NotifyPanic reports a recovered panic value as a critical notice.
// Callers normally reach it through Recover or a framework middleware.
func (n *Notifier) NotifyPanic(ctx context.Context, recovered any, opts ...NoticeOption) *Notice {
	notice := n.newNotice()
	notice.Errors = append(notice.Errors, Error{
		Type:      panicType(recovered),
		Message:   formatRecovered(recovered),
		Backtrace: captureBacktrace(n.cfg.RootDirectory),
	})
	opts = append([]NoticeOption{WithSeverity(SeverityCritical)}, opts...)
	for _, opt := range opts {
		opt(notice)
	}
	return n.SendNotice(ctx, notice)
}

func panicType(recovered any) string {
	if err, ok := recovered.(error); ok {
		return fmt.Sprintf("%T", err)
	}
	return "panic"
}

func formatRecovered(recovered any) string {
	if recovered == nil {
		return "<nil>"
	}
	if err, ok := recovered.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", recovered)
}
