// Package nativebridge lets the desktop shell's privileged preload bundle
// import compiled platform binaries (".node" addons) through esbuild.
//
// esbuild cannot parse a native addon, and the addon must be loaded by the
// host at run time rather than inlined at bundle time. The bridge routes
// every import of a native file through three steps keyed on the importer's
// namespace:
//
//	SOURCE     --(path ends in the extension)--> NATIVE_BINARY
//	NATIVE_BINARY --(load)--> loader shim, stays NATIVE_BINARY
//	NATIVE_BINARY --(shim's own import of the absolute path)--> SOURCE (terminal)
//
// The terminal step hands the binary back to esbuild's default file handler
// so it is copied verbatim into the output directory and the shim receives
// its final on-disk path. Load failures at run time are discarded by the
// shim; callers must treat an unset export as "unavailable on this
// platform".
//
// The transition function is pure and exported (Bridge.Resolve,
// Bridge.Load) so it can be exercised without running a build; Plugin
// adapts it to esbuild's OnResolve and OnLoad callbacks.
package nativebridge
