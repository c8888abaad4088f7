// recover.go provides the Recover helper for panic capture in handlers
// and goroutines.

package airbrake

import "context"

// Recover captures a panic, reports it through the notifier, and returns
// the recovered value. It does NOT re-panic: callers decide whether the
// panic should propagate.
//
// Recover must be deferred directly; recover() has no effect when called
// through a wrapper:
//
//	func worker(ctx context.Context) {
//	    defer airbrake.Recover(ctx, notifier)
//	    // code that might panic
//	}
//
// To convert the panic into an error instead, call recover yourself and
// hand the value to NotifyPanic:
//
//	func worker(ctx context.Context) (err error) {
//	    defer func() {
//	        if r := recover(); r != nil {
//	            notifier.NotifyPanic(ctx, r)
//	            err = fmt.Errorf("panic: %v", r)
//	        }
//	    }()
//	    // code that might panic
//	}
func Recover(ctx context.Context, n *Notifier, opts ...NoticeOption) any {
	r := recover()
	if r == nil {
		return nil
	}
	// Delivery failures are reported on the returned notice; a reporting
	// side channel must never disturb the recovering caller.
	_ = n.NotifyPanic(ctx, r, opts...)
	return r
}
