// Package router maps page paths onto views of the console document.
package router

import (
	"github.com/park285/board-console/internal/dom"
)

const (
	ViewConfig    = "view-config"
	ViewGame      = "view-game"
	ViewBoardView = "view-board-view"
	ViewBoardEdit = "view-board-edit"

	DefaultView = ViewConfig
	navID       = "nav"
	viewClass   = "view"
)

var routes = map[string]string{
	"/":           ViewConfig,
	"/game":       ViewGame,
	"/board-view": ViewBoardView,
	"/board-edit": ViewBoardEdit,
}

// Resolve maps a path to its view id; unknown paths get the default view.
func Resolve(path string) string {
	if id, ok := routes[path]; ok {
		return id
	}
	return DefaultView
}

// Paths lists the routed paths.
func Paths() []string {
	return []string{"/", "/game", "/board-view", "/board-edit"}
}

// Controller is one activation of a view.
type Controller interface {
	Activate()
	Deactivate()
}

// Factory creates a fresh controller for each activation.
type Factory func() Controller

// Router is driven from the session loop only.
type Router struct {
	doc       *dom.Document
	factories map[string]Factory

	current string
	path    string
	active  Controller

	onNavigate func(path, viewID string)
}

type Option func(*Router)

// OnNavigate registers a hook run after every navigation.
func OnNavigate(fn func(path, viewID string)) Option {
	return func(r *Router) { r.onNavigate = fn }
}

func New(doc *dom.Document, factories map[string]Factory, opts ...Option) *Router {
	r := &Router{doc: doc, factories: factories}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start performs the initial navigation without touching history.
func (r *Router) Start(path string) {
	if path == "" {
		path = "/"
	}
	r.Navigate(path, false)
}

// Navigate shows the view for path and activates a fresh controller for it.
func (r *Router) Navigate(path string, pushHistory bool) {
	viewID := Resolve(path)

	for _, v := range r.doc.ByClass(viewClass) {
		r.doc.SetDisplay(v.ID, "none")
	}

	if r.active != nil {
		r.active.Deactivate()
		r.active = nil
	}

	if r.doc.Has(viewID) {
		r.doc.SetDisplay(viewID, "block")
		r.current = viewID
		if f := r.factories[viewID]; f != nil {
			if c := f(); c != nil {
				r.active = c
				c.Activate()
			}
		}
	}

	r.doc.SetDisplay(navID, "flex")

	if pushHistory {
		r.doc.PushHistory(path)
	}
	r.path = path
	if r.onNavigate != nil {
		r.onNavigate(path, viewID)
	}
}

// Popstate follows browser back/forward.
func (r *Router) Popstate(path string) { r.Navigate(path, false) }

// Current returns the active view id, "" before Start.
func (r *Router) Current() string { return r.current }

// Path is the last navigated path.
func (r *Router) Path() string { return r.path }

// Active returns the live controller, if any.
func (r *Router) Active() Controller { return r.active }

// Close deactivates the live controller.
func (r *Router) Close() {
	if r.active != nil {
		r.active.Deactivate()
		r.active = nil
	}
}
