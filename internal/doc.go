// Package internal contains the core implementation packages for targetforge.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the targetforge CLI tool.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - config: Declarative build configuration, loading and validation
//   - target: The enumerated deployment targets and their aliases
//   - directive: Per-target resolution of the configuration into bundles
//   - build: esbuild driver, bundle reports, native artifacts and metrics
//   - nativebridge: esbuild plugin that routes ".node" imports to loader shims
//   - watcher: File system monitoring with debouncing
//   - output: Table, JSON and YAML rendering for command output
//   - errors: Structured error types, handler and remediation hints
//   - logging: Structured logging on log/slog
//   - version: Build and module version information
//
// # Inter-Package Communication
//
// Data flows in one direction:
//
//   - Config decodes files and environment into a Spec
//   - Directive resolves a Spec and a Target into a Directive
//   - Build turns a Directive into a Report, attaching the native bridge to
//     the desktop shell's privileged preload bundle
//   - Watcher batches source changes and hands them to a rebuild handler
//
// For detailed documentation, see the individual package documentation.
package internal
