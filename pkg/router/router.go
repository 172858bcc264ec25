// Package router is a thin wrapper over chi that keeps route registration
// readable and lets middleware stack per-group.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router wraps a chi mux.
type Router struct {
	mux chi.Router
}

// New returns an empty router.
func New() *Router {
	return &Router{mux: chi.NewRouter()}
}

// Use appends middleware to the chain. Must be called before routes are added.
func (r *Router) Use(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

func (r *Router) Get(pattern string, h http.HandlerFunc)    { r.mux.Get(pattern, h) }
func (r *Router) Post(pattern string, h http.HandlerFunc)   { r.mux.Post(pattern, h) }
func (r *Router) Put(pattern string, h http.HandlerFunc)    { r.mux.Put(pattern, h) }
func (r *Router) Delete(pattern string, h http.HandlerFunc) { r.mux.Delete(pattern, h) }

// HandleFunc registers a handler for all methods on the pattern.
func (r *Router) HandleFunc(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// Handle mounts a plain http.Handler (static files, metrics endpoints).
func (r *Router) Handle(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

// Group registers a sub-router under prefix with its own middleware chain.
func (r *Router) Group(prefix string, fn func(*Router), mw ...func(http.Handler) http.Handler) {
	r.mux.Route(prefix, func(cr chi.Router) {
		cr.Use(mw...)
		fn(&Router{mux: cr})
	})
}

// Param extracts a URL parameter from the request.
func Param(req *http.Request, name string) string {
	return chi.URLParam(req, name)
}

// ServeHTTP makes Router an http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
