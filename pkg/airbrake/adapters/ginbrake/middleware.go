// middleware.go implements the gin middleware that reports handler
// panics and attached errors to Airbrake.

package ginbrake

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/driftsignal/airbrake-go/pkg/airbrake"
)

// Middleware returns a gin middleware that reports every panic and every
// error attached to the context via c.Error. Panics are re-raised after
// reporting so an outer recovery middleware (or the server) still
// produces the 500; reporting never changes how the request fails.
//
// Install gin.Recovery before this middleware. Gin unwinds deferred
// handlers innermost first, so a recovery layer registered after this
// one would consume the panic before it could be reported:
//
//	router := gin.New()
//	router.Use(gin.Recovery(), ginbrake.Middleware(notifier))
//
// The notifier is also attached to the request context, so handlers can
// reach it with airbrake.FromContext without a direct reference.
func Middleware(n *airbrake.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := requestContext(c)
		ctx := airbrake.ContextWithNotifier(c.Request.Context(), n)
		c.Request = c.Request.WithContext(ctx)

		defer func() {
			if r := recover(); r != nil {
				// Delivery outcomes ride on the returned notice; a failed
				// report must not mask the panic.
				_ = n.NotifyPanic(ctx, r, airbrake.WithRequest(rc))
				panic(r)
			}
		}()

		c.Next()

		for _, ginErr := range c.Errors {
			_ = n.Notify(ctx, ginErr.Err, airbrake.WithRequest(rc))
		}
	}
}

// requestContext builds the notice request metadata from the gin context,
// adding the matched route and handler identity on top of what the raw
// HTTP request carries.
func requestContext(c *gin.Context) *airbrake.RequestContext {
	rc := airbrake.RequestContextFromHTTP(c.Request)
	if rc == nil {
		return nil
	}
	rc.Route = c.FullPath()
	rc.Component, rc.Action = splitHandlerName(c.HandlerName())
	if len(c.Params) > 0 {
		routeParams := make(map[string]any, len(c.Params))
		for _, p := range c.Params {
			routeParams[p.Key] = p.Value
		}
		// Query values win over a same-named route parameter.
		rc.Params = lo.Assign(routeParams, rc.Params)
	}
	return rc
}

// splitHandlerName splits a runtime handler name like
// "github.com/acme/shop/handlers.(*Orders).Show-fm" into the package
// qualifier and the function name, dropping the method-value suffix gin
// leaves on bound methods.
func splitHandlerName(name string) (component, action string) {
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		component = name[:idx+1]
		name = name[idx+1:]
	}
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return "", strings.TrimSuffix(name, "-fm")
	}
	component += name[:idx]
	action = strings.TrimSuffix(name[idx+1:], "-fm")
	return component, action
}
