// context.go propagates a notifier through context.Context so deeply
// nested code can report errors without plumbing the instance.

package airbrake

import "context"

type notifierKey struct{}

// ContextWithNotifier returns a context carrying n. Middleware attaches
// the notifier here so request handlers can report without a direct
// reference.
func ContextWithNotifier(ctx context.Context, n *Notifier) context.Context {
	return context.WithValue(ctx, notifierKey{}, n)
}

// FromContext extracts the notifier attached by ContextWithNotifier.
// Returns false when none is attached.
func FromContext(ctx context.Context) (*Notifier, bool) {
	n, ok := ctx.Value(notifierKey{}).(*Notifier)
	return n, ok && n != nil
}
