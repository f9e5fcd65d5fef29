package nativebridge

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/conneroisu/targetforge/internal/logging"
)

// DefaultExtension is the file extension of native addons.
const DefaultExtension = ".node"

// Route names.
const (
	RouteTerminal = "native-binary-terminal"
	RouteRedirect = "native-binary-redirect"
	RouteShim     = "native-binary-shim"
)

// Options configures a Bridge.
type Options struct {
	// Extension defaults to DefaultExtension.
	Extension string
	// Resolver defaults to NodeResolver.
	Resolver Resolver
	Logger   logging.Logger
	Observer Observer
}

// Bridge implements the native-binary resolution protocol.
type Bridge struct {
	extension string
	filter    *regexp.Regexp
	resolver  Resolver
	routes    Routes
	logger    logging.Logger
	observer  Observer
}

// New creates a Bridge.
func New(opts Options) (*Bridge, error) {
	ext := opts.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
		return nil, fmt.Errorf("native extension %q must start with a dot", ext)
	}

	filter := regexp.QuoteMeta(ext) + "$"

	// The terminal route is listed first so that the shim's own import of
	// the binary can never be redirected again.
	routes, err := NewRoutes(
		Route{Name: RouteTerminal, Kind: RouteResolve, Filter: filter, Namespace: NamespaceNativeBinary},
		Route{Name: RouteRedirect, Kind: RouteResolve, Filter: filter, Namespace: NamespaceSource},
		Route{Name: RouteShim, Kind: RouteLoad, Filter: ".*", Namespace: NamespaceNativeBinary},
	)
	if err != nil {
		return nil, err
	}

	resolver := opts.Resolver
	if resolver == nil {
		resolver = NodeResolver{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Bridge{
		extension: ext,
		filter:    regexp.MustCompile(filter),
		resolver:  resolver,
		routes:    routes,
		logger:    logger.WithComponent("nativebridge"),
		observer:  opts.Observer,
	}, nil
}

// Extension returns the file extension the bridge claims.
func (b *Bridge) Extension() string {
	return b.extension
}

// Routes returns the dispatch table in registration order.
func (b *Bridge) Routes() Routes {
	out := make(Routes, len(b.routes))
	copy(out, b.routes)
	return out
}

// Resolve computes the next reference for ref.
//
// An import of a native file from the source namespace is redirected into
// the native-binary namespace under its absolute path. An import of a
// native file from the native-binary namespace, which only the loader shim
// produces, is returned to the source namespace unchanged and is terminal.
// Anything else yields TransitionNone. A native file that does not exist
// yields TransitionNone and an error wrapping ErrNotFound; the caller
// should leave it to the bundler so its own resolution error is reported.
func (b *Bridge) Resolve(ref ModuleReference) (ModuleReference, Transition, error) {
	route, ok := b.routes.Lookup(RouteResolve, ref.Namespace, ref.Path)
	if !ok {
		return ref, TransitionNone, nil
	}

	switch route.Name {
	case RouteTerminal:
		next := ModuleReference{Path: ref.Path, Namespace: NamespaceSource, ResolveDir: ref.ResolveDir}
		b.emit(TransitionTerminal, ref, next)
		return next, TransitionTerminal, nil

	case RouteRedirect:
		abs, err := b.resolver.Resolve(ref.Path, ref.ResolveDir)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				b.logger.Debug(context.Background(), "native binary not found, deferring to bundler",
					"path", ref.Path, "resolve_dir", ref.ResolveDir)
			}
			return ref, TransitionNone, err
		}
		next := ModuleReference{Path: abs, Namespace: NamespaceNativeBinary, ResolveDir: ref.ResolveDir}
		b.emit(TransitionRedirect, ref, next)
		return next, TransitionRedirect, nil
	}

	return ref, TransitionNone, nil
}

// Load returns the loader shim for a reference in the native-binary
// namespace.
func (b *Bridge) Load(ref ModuleReference) (LoaderShim, error) {
	if _, ok := b.routes.Lookup(RouteLoad, ref.Namespace, ref.Path); !ok {
		return LoaderShim{}, fmt.Errorf("cannot load %q from namespace %s", ref.Path, ref.Namespace)
	}
	shim := LoaderShim{BinaryPath: ref.Path}
	b.emit(TransitionLoad, ref, ref)
	return shim, nil
}

// Matches reports whether path names a native binary.
func (b *Bridge) Matches(path string) bool {
	return b.filter.MatchString(path)
}

func (b *Bridge) emit(t Transition, from, to ModuleReference) {
	b.logger.Debug(context.Background(), "native binary transition",
		"transition", t.String(),
		"from", from.Path,
		"from_namespace", from.Namespace.String(),
		"to", to.Path,
		"to_namespace", to.Namespace.String())
	if b.observer != nil {
		b.observer(Event{Transition: t, From: from, To: to})
	}
}
