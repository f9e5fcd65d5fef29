package nativebridge

// Namespace is the dispatch key that tells esbuild which handler owns a
// module reference next.
type Namespace string

const (
	// NamespaceSource is esbuild's default "file" namespace.
	NamespaceSource Namespace = "file"
	// NamespaceNativeBinary is owned by the bridge.
	NamespaceNativeBinary Namespace = "native-binary"
)

func (n Namespace) String() string {
	return string(n)
}

// ModuleReference is one edge of the module graph being resolved. Namespace
// is the namespace of the importing module.
type ModuleReference struct {
	Path       string
	Namespace  Namespace
	ResolveDir string
}

// Transition names the step the bridge took for a reference.
type Transition int

const (
	// TransitionNone leaves the reference to esbuild's default handling.
	TransitionNone Transition = iota
	// TransitionRedirect moves a source import of a native file into the
	// bridge's namespace under its absolute path.
	TransitionRedirect
	// TransitionTerminal returns the shim's import of the absolute path to
	// the source namespace, where it is treated as a file asset.
	TransitionTerminal
	// TransitionLoad emits the loader shim.
	TransitionLoad
)

func (t Transition) String() string {
	switch t {
	case TransitionNone:
		return "none"
	case TransitionRedirect:
		return "redirect"
	case TransitionTerminal:
		return "terminal"
	case TransitionLoad:
		return "load"
	default:
		return "unknown"
	}
}

// Event is reported to an Observer for every hook invocation.
type Event struct {
	Transition Transition
	From       ModuleReference
	To         ModuleReference
}

// Observer receives bridge events. It is called from esbuild's worker
// goroutines and must be safe for concurrent use.
type Observer func(Event)
