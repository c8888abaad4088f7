// Package airbrake is an error reporting client for Airbrake-compatible
// APIs.
//
// airbrake captures Go errors, panics, and log records, normalizes them
// into structured notices, redacts sensitive fields, and delivers each
// notice synchronously over HTTPS. Delivery outcomes come back in-band
// on the returned notice, so the reporting side channel never interrupts
// the host application.
//
// # Core Components
//
// The library is organized around these concepts:
//
//   - Notice: The canonical error document and wire payload (errors, context, environment, params, session)
//   - Notifier: The configured client that builds and delivers notices
//   - Filter: An ordered transform-or-veto hook applied to every notice before delivery
//   - RequestContext: Optional request metadata merged into notices by framework adapters
//
// # Quick Start
//
// Construct a notifier once at startup and share it:
//
//	notifier, err := airbrake.NewNotifier(airbrake.Config{
//	    ProjectID:  123456,
//	    ProjectKey: os.Getenv("AIRBRAKE_PROJECT_KEY"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	notifier.AddFilter(func(notice *airbrake.Notice) *airbrake.Notice {
//	    notice.Context["component"] = "billing"
//	    return notice
//	})
//
//	if err := doWork(); err != nil {
//	    notice := notifier.Notify(ctx, err)
//	    if notice.Err != nil {
//	        slog.Warn("error report not delivered", "error", notice.Err)
//	    }
//	}
//
// For panic capture in goroutines:
//
//	defer airbrake.Recover(ctx, notifier)
//
// # Design Principles
//
//   - Reporting never disturbs the host: every per-notice failure is returned on Notice.Err, never raised
//   - Mandatory redaction: the keys-blocklist filter is always first in the chain and cannot be removed
//   - Fail loudly at wiring time: missing credentials or invalid blocklist patterns fail construction, not the first error
//   - Synchronous, single-attempt delivery: callers wanting queues or retries offload the call themselves
package airbrake
