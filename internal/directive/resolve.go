package directive

import (
	"path"
	"strings"

	"github.com/conneroisu/targetforge/internal/config"
	"github.com/conneroisu/targetforge/internal/errors"
	"github.com/conneroisu/targetforge/internal/target"
)

// Documented defaults applied to omitted fields.
const (
	DefaultRoot             = "."
	DefaultEntry            = "src/main.ts"
	DefaultPublicDir        = "public"
	DefaultDistRoot         = "dist"
	DefaultPublicPath       = "/"
	DefaultRouterMode       = "hash"
	DefaultNodeTarget       = "node16"
	DefaultDevHost          = "localhost"
	DefaultDevPort          = 8080
	DefaultSSRProdPort      = 3000
	DefaultSSREntry         = "src-ssr/server.ts"
	DefaultWorkboxMode      = "generateSW"
	DefaultSWFilename       = "sw.js"
	DefaultManifestFilename = "manifest.json"
	DefaultElectronMain     = "src-electron/electron-main.ts"
	DefaultElectronPreload  = "src-electron/electron-preload.ts"
	DefaultElectronBundler  = "builder"
	DefaultInspectPort      = 5858
	DefaultNativeExtension  = ".node"
	DefaultMobileShell      = "capacitor"
	DefaultBexScriptDir     = "src-bex"
	DefaultBootDir          = "src/boot"
	DefaultCSSDir           = "src/css"
)

var (
	DefaultBrowserTargets = []string{"es2019", "edge88", "firefox78", "chrome87", "safari13.1"}
	DefaultExtras         = []string{"roboto-font", "material-icons"}
	DefaultSSRMiddlewares = []string{"render"}

	// assetExtensions are copied verbatim into the output by every target.
	assetExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico", ".woff", ".woff2", ".ttf", ".eot"}
)

// Resolve selects the subtree of spec that applies to t, fills in defaults
// and returns the flat build directive. It fails with an unknown target
// error when t is not enumerated and with a configuration error when a
// field required by t is absent.
func Resolve(spec *config.Spec, t target.Target) (*Directive, error) {
	if !t.Valid() {
		return nil, errors.NewUnknownTargetError(string(t), target.Names())
	}
	if spec == nil {
		spec = &config.Spec{}
	}
	if err := config.Validate(spec); err != nil {
		return nil, err
	}

	d := &Directive{
		Target:         t,
		Name:           spec.Source.Name,
		Root:           orDefault(spec.Source.Root, DefaultRoot),
		DistDir:        orDefault(spec.Build.DistDir, path.Join(DefaultDistRoot, distMode(spec, t))),
		PublicDir:      orDefault(spec.Source.PublicDir, DefaultPublicDir),
		PublicPath:     orDefault(spec.Build.PublicPath, DefaultPublicPath),
		RouterMode:     orDefault(spec.Build.RouterMode, DefaultRouterMode),
		BrowserTargets: sliceOrDefault(spec.Build.Target.Browser, DefaultBrowserTargets),
		NodeTarget:     orDefault(spec.Build.Target.Node, DefaultNodeTarget),
		Minify:         boolOrDefault(spec.Build.Minify, true),
		Sourcemap:      spec.Build.Sourcemap,
		Define:         defines(spec.Build.Env),
		External:       append([]string(nil), spec.Build.External...),
		Loaders:        assetLoaders(),
		Extras:         sliceOrDefault(spec.Extras, DefaultExtras),
		DevServer: DevServer{
			Host:  orDefault(spec.DevServer.Host, DefaultDevHost),
			Port:  intOrDefault(spec.DevServer.Port, DefaultDevPort),
			Open:  spec.DevServer.Open,
			HTTPS: spec.DevServer.HTTPS,
		},
	}

	entry := orDefault(spec.Source.Entry, DefaultEntry)
	app := Bundle{
		Name:     "app",
		Entry:    entry,
		Platform: PlatformBrowser,
		Format:   FormatESM,
		Inject:   bootFiles(spec.Boot),
		Styles:   underDir(DefaultCSSDir, spec.CSS),
	}

	switch t {
	case target.Web, target.MobileShell, target.ProgressiveWebApp:
		app.OutDir = d.DistDir
		d.Bundles = []Bundle{app}
	case target.ServerRendered:
		app.Name = "client"
		app.OutDir = path.Join(d.DistDir, "client")
		d.Bundles = []Bundle{app, {
			Name:     "server",
			Entry:    orDefault(spec.SSR.Entry, DefaultSSREntry),
			OutDir:   path.Join(d.DistDir, "server"),
			Platform: PlatformNode,
			Format:   FormatCommonJS,
		}}
	case target.DesktopShell:
		app.OutDir = path.Join(d.DistDir, "renderer")
		d.Bundles = []Bundle{app,
			{
				Name:     "main",
				Entry:    orDefault(spec.Electron.Main, DefaultElectronMain),
				OutDir:   path.Join(d.DistDir, "main"),
				Platform: PlatformNode,
				Format:   FormatCommonJS,
				External: []string{"electron"},
			},
			{
				Name:       "preload",
				Entry:      orDefault(spec.Electron.Preload, DefaultElectronPreload),
				OutDir:     path.Join(d.DistDir, "preload"),
				Platform:   PlatformNode,
				Format:     FormatCommonJS,
				External:   []string{"electron"},
				Privileged: true,
			},
		}
	case target.BrowserExtension:
		app.OutDir = path.Join(d.DistDir, "www")
		d.Bundles = []Bundle{app}
	}

	var err error
	switch t {
	case target.ServerRendered:
		d.SSR = resolveSSR(&spec.SSR)
	case target.ProgressiveWebApp:
		d.PWA = resolvePWA(&spec.PWA)
	case target.DesktopShell:
		d.Desktop, err = resolveDesktop(spec)
	case target.MobileShell:
		d.Mobile = resolveMobile(spec)
	case target.BrowserExtension:
		d.Extension, err = resolveExtension(&spec.Bex)
		if err == nil {
			for _, script := range d.Extension.ContentScripts {
				d.Bundles = append(d.Bundles, Bundle{
					Name:     "content-script:" + script,
					Entry:    path.Join(DefaultBexScriptDir, script+".ts"),
					OutDir:   path.Join(d.DistDir, "content-scripts"),
					Platform: PlatformBrowser,
					Format:   FormatIIFE,
				})
			}
		}
	}
	if err != nil {
		return nil, err
	}

	return d, nil
}

func resolveSSR(ssr *config.SSRConfig) *SSR {
	return &SSR{
		ProdPort:    intOrDefault(ssr.ProdPort, DefaultSSRProdPort),
		PWA:         ssr.PWA,
		Middlewares: sliceOrDefault(ssr.Middlewares, DefaultSSRMiddlewares),
	}
}

func resolvePWA(pwa *config.PWAConfig) *PWA {
	return &PWA{
		WorkboxMode:                  orDefault(pwa.WorkboxMode, DefaultWorkboxMode),
		InjectPWAMetaTags:            boolOrDefault(pwa.InjectPWAMetaTags, true),
		SWFilename:                   orDefault(pwa.SWFilename, DefaultSWFilename),
		ManifestFilename:             orDefault(pwa.ManifestFilename, DefaultManifestFilename),
		UseCredentialsForManifestTag: pwa.UseCredentialsForManifestTag,
	}
}

func resolveDesktop(spec *config.Spec) (*Desktop, error) {
	electron := &spec.Electron
	desktop := &Desktop{
		Bundler:         orDefault(electron.Bundler, DefaultElectronBundler),
		InspectPort:     intOrDefault(electron.InspectPort, DefaultInspectPort),
		NativeExtension: orDefault(electron.NativeExtension, DefaultNativeExtension),
		Platform:        electron.Packager.Platform,
		Arch:            electron.Packager.Arch,
	}

	switch desktop.Bundler {
	case "builder":
		if electron.Builder.AppID == "" {
			return nil, errors.NewMissingFieldError("electron.builder.app_id",
				"desktop packaging with the builder bundler requires an application identifier")
		}
		desktop.AppID = electron.Builder.AppID
		desktop.ProductName = orDefault(electron.Builder.ProductName, spec.Source.Name)
	case "packager":
		desktop.PackagerName = orDefault(electron.Packager.Name, spec.Source.Name)
		if desktop.PackagerName == "" {
			return nil, errors.NewMissingFieldError("electron.packager.name",
				"desktop packaging with the packager bundler requires a name (or source.name)")
		}
	}

	return desktop, nil
}

// distMode names the default output directory under dist. Mobile builds
// are named after their shell so capacitor and cordova outputs never mix.
func distMode(spec *config.Spec, t target.Target) string {
	if t == target.MobileShell {
		return orDefault(spec.Mobile.Shell, DefaultMobileShell)
	}
	return t.Mode()
}

func resolveMobile(spec *config.Spec) *Mobile {
	return &Mobile{
		Shell:                orDefault(spec.Mobile.Shell, DefaultMobileShell),
		AppID:                spec.Mobile.AppID,
		HideSplashscreen:     boolOrDefault(spec.Capacitor.HideSplashscreen, true),
		NoIOSLegacyBuildFlag: spec.Cordova.NoIOSLegacyBuildFlag,
	}
}

func resolveExtension(bex *config.BexConfig) (*Extension, error) {
	if len(bex.ContentScripts) == 0 {
		return nil, errors.NewMissingFieldError("bex.content_scripts",
			"a browser extension requires at least one content script")
	}
	return &Extension{ContentScripts: append([]string(nil), bex.ContentScripts...)}, nil
}

// bootFiles places boot names under src/boot. A name without an extension
// refers to a TypeScript module.
func bootFiles(names []string) []string {
	files := underDir(DefaultBootDir, names)
	for i, f := range files {
		if path.Ext(f) == "" {
			files[i] = f + ".ts"
		}
	}
	return files
}

func underDir(dir string, names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = path.Join(dir, name)
	}
	return out
}

// defines maps environment entries to process.env constants. Keys are
// upper-cased because Viper lower-cases every key it reads.
func defines(env map[string]string) map[string]string {
	if len(env) == 0 {
		return nil
	}
	out := make(map[string]string, len(env))
	for k, v := range env {
		out["process.env."+strings.ToUpper(k)] = quoteJS(v)
	}
	return out
}

func quoteJS(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)
	return `"` + r.Replace(s) + `"`
}

func assetLoaders() map[string]Loader {
	loaders := make(map[string]Loader, len(assetExtensions))
	for _, ext := range assetExtensions {
		loaders[ext] = LoaderFile
	}
	return loaders
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

func intOrDefault(value, def int) int {
	if value == 0 {
		return def
	}
	return value
}

func boolOrDefault(value *bool, def bool) bool {
	if value == nil {
		return def
	}
	return *value
}

func sliceOrDefault(value, def []string) []string {
	if len(value) == 0 {
		return append([]string(nil), def...)
	}
	return append([]string(nil), value...)
}
