// request.go defines the request metadata shape merged into notices by
// framework adapters.

package airbrake

import (
	"net"
	"net/http"
	"strings"

	"github.com/samber/lo"
)

// RequestContext carries request metadata into a notice. Every field is
// optional; adapters fill what their framework exposes and the builder
// merges only what is set. The explicit struct replaces any runtime
// probing of framework request objects: the core never asks a request
// what it is capable of.
type RequestContext struct {
	// URL is the full request URL.
	URL string

	// Method is the HTTP method.
	Method string

	// Host is the server name handling the request.
	Host string

	// UserAgent is the client's user agent string.
	UserAgent string

	// RemoteAddr is the directly connected peer, host or host:port.
	RemoteAddr string

	// ForwardedFor is the raw forwarded-for header value. When set, the
	// client address is taken from its last comma-separated hop.
	ForwardedFor string

	// Route is the matched route pattern, when the router exposes one.
	Route string

	// Component and Action identify the handling controller and handler.
	Component string
	Action    string

	// Authenticated identity, reported under the user context block.
	UserID    string
	UserName  string
	UserEmail string

	// Params holds request parameters (query values, form fields).
	Params map[string]any

	// SessionID identifies the session. Only the id is ever reported.
	SessionID string
}

// RequestContextFromHTTP extracts a RequestContext from a net/http
// request. Adapters for routers layered over net/http can start from
// this and fill in route information.
func RequestContextFromHTTP(r *http.Request) *RequestContext {
	if r == nil {
		return nil
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	rc := &RequestContext{
		URL:          scheme + "://" + r.Host + r.URL.RequestURI(),
		Method:       r.Method,
		Host:         r.Host,
		UserAgent:    r.UserAgent(),
		RemoteAddr:   r.RemoteAddr,
		ForwardedFor: r.Header.Get("X-Forwarded-For"),
	}
	if query := r.URL.Query(); len(query) > 0 {
		rc.Params = make(map[string]any, len(query))
		for key, values := range query {
			if len(values) == 1 {
				rc.Params[key] = values[0]
				continue
			}
			rc.Params[key] = values
		}
	}
	return rc
}

// apply merges the request metadata into the notice: reserved context
// keys, the environment allow-list entries, request params, and the
// session id.
func (rc *RequestContext) apply(notice *Notice) {
	if rc == nil {
		return
	}
	setIfPresent := func(key, value string) {
		if value != "" {
			notice.Context[key] = value
		}
	}
	setIfPresent(ctxURL, rc.URL)
	setIfPresent(ctxHTTPMethod, rc.Method)
	setIfPresent(ctxUserAgent, rc.UserAgent)
	setIfPresent(ctxUserAddr, resolveUserAddr(rc.ForwardedFor, rc.RemoteAddr))
	setIfPresent(ctxRoute, rc.Route)
	setIfPresent(ctxComponent, rc.Component)
	setIfPresent(ctxAction, rc.Action)

	if rc.UserID != "" || rc.UserName != "" || rc.UserEmail != "" {
		user := map[string]any{}
		if rc.UserID != "" {
			user["id"] = rc.UserID
		}
		if rc.UserName != "" {
			user["name"] = rc.UserName
		}
		if rc.UserEmail != "" {
			user["email"] = rc.UserEmail
		}
		notice.Context[ctxUser] = user
	}

	if rc.Method != "" {
		notice.Environment["REQUEST_METHOD"] = rc.Method
	}
	if rc.Host != "" {
		notice.Environment["SERVER_NAME"] = rc.Host
	}

	if len(rc.Params) > 0 {
		notice.Params = lo.Assign(notice.Params, rc.Params)
	}
	if rc.SessionID != "" {
		notice.Session["id"] = rc.SessionID
	}
}

// resolveUserAddr picks the client address: the last hop of the
// forwarded-for chain when present, otherwise the remote address with
// any port stripped.
func resolveUserAddr(forwardedFor, remoteAddr string) string {
	if forwardedFor != "" {
		hops := strings.Split(forwardedFor, ",")
		return strings.TrimSpace(hops[len(hops)-1])
	}
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
