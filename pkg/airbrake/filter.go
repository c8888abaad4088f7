// filter.go implements the ordered, short-circuiting notice filter chain.

package airbrake

import "regexp"

// Filter transforms a notice before delivery. A filter may modify the
// notice in place and return it, return a replacement, or return nil to
// veto delivery entirely. Filters run in registration order; the first
// nil return stops the chain and later filters never see the notice.
type Filter func(*Notice) *Notice

// AddFilter appends f to the filter chain and returns the notifier for
// chaining. The mandatory redaction filter is always first; caller-added
// filters run after it in registration order.
//
// Registration is a setup-time operation: add all filters before sharing
// the notifier across goroutines.
func (n *Notifier) AddFilter(f Filter) *Notifier {
	n.filters = append(n.filters, f)
	return n
}

// applyFilters runs the chain, short-circuiting on the first veto.
func (n *Notifier) applyFilters(notice *Notice) *Notice {
	for _, f := range n.filters {
		notice = f(notice)
		if notice == nil {
			return nil
		}
	}
	return notice
}

// newRedactionFilter builds the mandatory first filter: key-pattern
// redaction over the context, params, session, and environment sub-maps.
// Error messages and backtraces are never redacted here.
func newRedactionFilter(patterns []*regexp.Regexp) Filter {
	return func(notice *Notice) *Notice {
		notice.Context = redactMap(notice.Context, patterns)
		notice.Params = redactMap(notice.Params, patterns)
		notice.Session = redactMap(notice.Session, patterns)
		notice.Environment = redactStringMap(notice.Environment, patterns)
		return notice
	}
}
