// Package cmd provides the targetforge command-line interface.
//
// # Available Commands
//
//   - resolve: print the build directive for one target
//   - build: bundle every entry point of a target with esbuild
//   - watch: build once and rebuild on source changes
//   - targets: list the deployment targets and their aliases
//   - version: print build information
//
// # Configuration
//
// The declarative specification is read from, in order of precedence:
//
//  1. the --config flag
//  2. the TARGETFORGE_CONFIG_FILE environment variable
//  3. .targetforge.yml, .targetforge.yaml, .targetforge.json or
//     .targetforge.jsonc in the current directory
//
// Individual keys can be overridden with TARGETFORGE_<SECTION>_<KEY>
// environment variables, for example TARGETFORGE_SSR_PROD_PORT=4000.
// Paths in the configuration are relative to the directory holding the
// configuration file.
//
// # Examples
//
//	targetforge resolve --target desktop-shell -o yaml
//	targetforge build --target electron --write --analyze
//	targetforge watch --target web
package cmd
