package nativebridge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when a specifier does not name an existing file.
var ErrNotFound = errors.New("native module not found")

// Resolver maps an import specifier to the absolute path of an existing
// file using node's lookup rules: relative and absolute specifiers are
// joined against the importing directory, bare specifiers are searched in
// node_modules directories from the importer up to the filesystem root.
type Resolver interface {
	Resolve(specifier, resolveDir string) (string, error)
}

// NodeResolver is the default Resolver.
type NodeResolver struct{}

// Resolve implements Resolver. The returned path is absolute, cleaned and
// has symlinks evaluated, so resolving it again yields the same path.
func (NodeResolver) Resolve(specifier, resolveDir string) (string, error) {
	if specifier == "" {
		return "", fmt.Errorf("%w: empty specifier", ErrNotFound)
	}

	dir, err := filepath.Abs(resolveDir)
	if err != nil {
		return "", fmt.Errorf("resolving importer directory %q: %w", resolveDir, err)
	}

	if filepath.IsAbs(specifier) || isRelative(specifier) {
		candidate := specifier
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(dir, specifier)
		}
		if path, ok := existingFile(candidate); ok {
			return path, nil
		}
		return "", fmt.Errorf("%w: %s (from %s)", ErrNotFound, specifier, dir)
	}

	for {
		if path, ok := existingFile(filepath.Join(dir, "node_modules", specifier)); ok {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w: %s (from %s)", ErrNotFound, specifier, resolveDir)
}

func isRelative(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") ||
		strings.HasPrefix(specifier, `.\`) || strings.HasPrefix(specifier, `..\`)
}

func existingFile(candidate string) (string, bool) {
	info, err := os.Stat(candidate)
	if err != nil || info.IsDir() {
		return "", false
	}
	real, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return "", false
	}
	abs, err := filepath.Abs(real)
	if err != nil {
		return "", false
	}
	return abs, true
}
