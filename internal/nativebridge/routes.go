package nativebridge

import (
	"fmt"
	"regexp"
)

// RouteKind distinguishes resolve hooks from load hooks.
type RouteKind int

const (
	RouteResolve RouteKind = iota
	RouteLoad
)

func (k RouteKind) String() string {
	if k == RouteLoad {
		return "load"
	}
	return "resolve"
}

// Route is one entry of the bridge's dispatch table. Filter is a Go regular
// expression matched against the import path, as esbuild does.
type Route struct {
	Name      string
	Kind      RouteKind
	Filter    string
	Namespace Namespace

	re *regexp.Regexp
}

type routeKey struct {
	kind      RouteKind
	filter    string
	namespace Namespace
}

// Routes is an ordered dispatch table. Entries are registered with esbuild
// in slice order, which is the order esbuild consults them.
type Routes []Route

// NewRoutes validates a dispatch table. Two entries with the same kind,
// filter and namespace would make dispatch depend on registration order,
// so they are rejected.
func NewRoutes(routes ...Route) (Routes, error) {
	out := make(Routes, 0, len(routes))
	seen := make(map[routeKey]string, len(routes))
	for _, r := range routes {
		if r.Name == "" {
			return nil, fmt.Errorf("route with filter %q has no name", r.Filter)
		}
		re, err := regexp.Compile(r.Filter)
		if err != nil {
			return nil, fmt.Errorf("route %s: invalid filter %q: %w", r.Name, r.Filter, err)
		}
		r.re = re
		key := routeKey{kind: r.Kind, filter: r.Filter, namespace: r.Namespace}
		if other, ok := seen[key]; ok {
			return nil, fmt.Errorf("routes %s and %s both %s %q in namespace %s",
				other, r.Name, r.Kind, r.Filter, r.Namespace)
		}
		seen[key] = r.Name
		out = append(out, r)
	}
	return out, nil
}

// Lookup returns the first route of the given kind whose namespace and
// filter match.
func (rs Routes) Lookup(kind RouteKind, namespace Namespace, path string) (Route, bool) {
	for _, r := range rs {
		if r.Kind != kind || r.Namespace != namespace {
			continue
		}
		re := r.re
		if re == nil {
			re = regexp.MustCompile(r.Filter)
		}
		if re.MatchString(path) {
			return r, true
		}
	}
	return Route{}, false
}
