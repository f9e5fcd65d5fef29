package nativebridge

import (
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
)

// PluginName identifies the bridge in esbuild diagnostics.
const PluginName = "native-binary-bridge"

// Plugin adapts the bridge to esbuild. Registering it also maps the native
// extension to esbuild's file loader, so the terminal reference is copied
// into the output directory and replaced by its emitted path.
func (b *Bridge) Plugin() api.Plugin {
	return api.Plugin{
		Name: PluginName,
		Setup: func(build api.PluginBuild) {
			if build.InitialOptions.Loader == nil {
				build.InitialOptions.Loader = make(map[string]api.Loader)
			}
			build.InitialOptions.Loader[b.extension] = api.LoaderFile

			for _, route := range b.routes {
				switch route.Kind {
				case RouteResolve:
					build.OnResolve(api.OnResolveOptions{Filter: route.Filter, Namespace: route.Namespace.String()}, b.onResolve)
				case RouteLoad:
					build.OnLoad(api.OnLoadOptions{Filter: route.Filter, Namespace: route.Namespace.String()}, b.onLoad)
				}
			}
		},
	}
}

func (b *Bridge) onResolve(args api.OnResolveArgs) (api.OnResolveResult, error) {
	next, transition, err := b.Resolve(ModuleReference{
		Path:       args.Path,
		Namespace:  Namespace(args.Namespace),
		ResolveDir: args.ResolveDir,
	})
	// An unresolvable binary is left to esbuild, which reports it as
	// "Could not resolve" against the importing file.
	if err != nil || transition == TransitionNone {
		return api.OnResolveResult{}, nil
	}

	return api.OnResolveResult{
		Path:       next.Path,
		Namespace:  next.Namespace.String(),
		PluginName: PluginName,
	}, nil
}

func (b *Bridge) onLoad(args api.OnLoadArgs) (api.OnLoadResult, error) {
	shim, err := b.Load(ModuleReference{Path: args.Path, Namespace: Namespace(args.Namespace)})
	if err != nil {
		return api.OnLoadResult{}, err
	}

	contents := shim.Contents()
	return api.OnLoadResult{
		Contents:   &contents,
		ResolveDir: filepath.Dir(args.Path),
		Loader:     api.LoaderJS,
		PluginName: PluginName,
	}, nil
}
