package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// MuxRouter implements the [Router] interface on top of [mux.Router],
// giving method-aware route matching.
type MuxRouter struct {
	mux         *mux.Router
	middlewares []Middleware
}

// NewMuxRouter creates a new [MuxRouter] instance.
func NewMuxRouter() *MuxRouter {
	return &MuxRouter{
		mux:         mux.NewRouter(),
		middlewares: []Middleware{},
	}
}

// Use adds [Middleware] to the [Router] instance's middleware stack, applied in the order it's added.
//
// Middleware registered here also wraps the not-found handler so error pages
// get logging and recovery too.
func (r *MuxRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers a handler for the specified HTTP method and path.
//
// The handler is wrapped with all middleware registered so far.
func (r *MuxRouter) Handle(method, path string, handler http.Handler) {
	r.mux.Handle(path, r.Apply(handler)).Methods(method)
}

// PathPrefix registers a handler for every path under the given prefix,
// regardless of method. Used for static assets.
func (r *MuxRouter) PathPrefix(prefix string, handler http.Handler) {
	r.mux.PathPrefix(prefix).Handler(r.Apply(handler))
}

// NotFound sets the handler invoked for unmatched routes.
func (r *MuxRouter) NotFound(handler http.Handler) {
	r.mux.NotFoundHandler = r.Apply(handler)
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *MuxRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps a handler with all registered middleware.
//
// Middleware is applied in reverse order (last added wraps first).
func (r *MuxRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}

	return wrapped
}
