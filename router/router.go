package router

import (
	"sort"
	"strings"

	"github.com/kbukum/axin/errors"
)

// Page identifies a view of the web client.
type Page string

const (
	PageHome     Page = "home"
	PagePlanApp  Page = "plan-app"
	PageManusApp Page = "manus-app"
)

// Route maps a path to a page.
type Route struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Page Page   `json:"page"`
}

// DefaultRoutes returns the web client's route table.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/", Name: "Home", Page: PageHome},
		{Path: "/plan-app", Name: "PlanApp", Page: PagePlanApp},
		{Path: "/manus-app", Name: "ManusApp", Page: PageManusApp},
	}
}

// Router resolves paths against a fixed route table. It is immutable and
// safe for concurrent use.
type Router struct {
	routes []Route
	byPath map[string]Route
}

// New builds a router. With no routes it uses DefaultRoutes. Paths must be
// absolute and unique.
func New(routes ...Route) (*Router, error) {
	if len(routes) == 0 {
		routes = DefaultRoutes()
	}

	r := &Router{byPath: make(map[string]Route, len(routes))}
	for _, route := range routes {
		if !strings.HasPrefix(route.Path, "/") {
			return nil, errors.InvalidInput("path", "must start with /: "+route.Path)
		}
		route.Path = normalize(route.Path)
		if _, dup := r.byPath[route.Path]; dup {
			return nil, errors.Conflict("duplicate route " + route.Path)
		}
		r.byPath[route.Path] = route
		r.routes = append(r.routes, route)
	}
	return r, nil
}

// Routes returns the route table in registration order.
func (r *Router) Routes() []Route {
	return append([]Route(nil), r.routes...)
}

// Resolve returns the route for path. The query, the fragment and a trailing
// slash are ignored.
func (r *Router) Resolve(path string) (Route, error) {
	key := normalize(path)
	route, ok := r.byPath[key]
	if !ok {
		return Route{}, errors.NotFound("route", key)
	}
	return route, nil
}

// Lookup returns the route named name.
func (r *Router) Lookup(name string) (Route, bool) {
	for _, route := range r.routes {
		if route.Name == name {
			return route, true
		}
	}
	return Route{}, false
}

// Paths returns every registered path, sorted.
func (r *Router) Paths() []string {
	paths := make([]string, 0, len(r.byPath))
	for p := range r.byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(path, "/")
	if path == "" {
		return "/"
	}
	return path
}
