package directive

import (
	"testing"

	"github.com/conneroisu/targetforge/internal/config"
	"github.com/conneroisu/targetforge/internal/errors"
	"github.com/conneroisu/targetforge/internal/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

// completeSpec mirrors a project that configures every target.
func completeSpec() *config.Spec {
	return &config.Spec{
		Source: config.SourceConfig{Name: "hs-configurator"},
		Electron: config.ElectronConfig{
			Builder: config.BuilderConfig{AppID: "hs-configurator"},
		},
		Bex: config.BexConfig{ContentScripts: []string{"my-content-script"}},
	}
}

func TestResolveEveryTarget(t *testing.T) {
	for _, tgt := range target.All() {
		t.Run(tgt.String(), func(t *testing.T) {
			d, err := Resolve(completeSpec(), tgt)
			require.NoError(t, err)
			assert.Equal(t, tgt, d.Target)
			assert.NotEmpty(t, d.Bundles)
			if tgt == target.MobileShell {
				assert.Equal(t, "dist/capacitor", d.DistDir)
			} else {
				assert.Equal(t, "dist/"+tgt.Mode(), d.DistDir)
			}

			_, privileged := d.PrivilegedBundle()
			assert.Equal(t, tgt == target.DesktopShell, privileged)

			_, hasNative := d.Loaders[DefaultNativeExtension]
			assert.False(t, hasNative, "directives never configure the native extension")
		})
	}
}

func TestResolveDefaults(t *testing.T) {
	d, err := Resolve(completeSpec(), target.Web)
	require.NoError(t, err)

	assert.Equal(t, ".", d.Root)
	assert.Equal(t, "/", d.PublicPath)
	assert.Equal(t, "hash", d.RouterMode)
	assert.Equal(t, DefaultBrowserTargets, d.BrowserTargets)
	assert.Equal(t, "node16", d.NodeTarget)
	assert.Equal(t, []string{"roboto-font", "material-icons"}, d.Extras)
	assert.Equal(t, DevServer{Host: "localhost", Port: 8080}, d.DevServer)
	assert.True(t, d.Minify)
	assert.Equal(t, LoaderFile, d.Loaders[".woff2"])

	require.Len(t, d.Bundles, 1)
	assert.Equal(t, Bundle{Name: "app", Entry: "src/main.ts", OutDir: "dist/spa", Platform: PlatformBrowser, Format: FormatESM}, d.Bundles[0])

	assert.Nil(t, d.SSR)
	assert.Nil(t, d.Desktop)
}

func TestResolveOverrides(t *testing.T) {
	spec := completeSpec()
	spec.Build.RouterMode = "history"
	spec.Build.DistDir = "out"
	spec.Build.Minify = boolPtr(false)
	spec.Build.Env = map[string]string{"api_url": `https://api.example.com/"v1"`}
	spec.Extras = []string{"mdi-v5"}
	spec.DevServer.Port = 9000

	d, err := Resolve(spec, target.Web)
	require.NoError(t, err)

	assert.Equal(t, "history", d.RouterMode)
	assert.Equal(t, "out", d.DistDir)
	assert.False(t, d.Minify)
	assert.Equal(t, []string{"mdi-v5"}, d.Extras)
	assert.Equal(t, 9000, d.DevServer.Port)
	assert.Equal(t, map[string]string{"process.env.API_URL": `"https://api.example.com/\"v1\""`}, d.Define)
}

func TestResolveServerRendered(t *testing.T) {
	d, err := Resolve(completeSpec(), target.ServerRendered)
	require.NoError(t, err)

	require.NotNil(t, d.SSR)
	assert.Equal(t, 3000, d.SSR.ProdPort)
	assert.Equal(t, []string{"render"}, d.SSR.Middlewares)
	assert.False(t, d.SSR.PWA)

	server, ok := d.Bundle("server")
	require.True(t, ok)
	assert.Equal(t, PlatformNode, server.Platform)
	assert.Equal(t, FormatCommonJS, server.Format)
	assert.Equal(t, "src-ssr/server.ts", server.Entry)

	client, ok := d.Bundle("client")
	require.True(t, ok)
	assert.Equal(t, "dist/ssr/client", client.OutDir)
}

func TestResolveProgressiveWebApp(t *testing.T) {
	d, err := Resolve(completeSpec(), target.ProgressiveWebApp)
	require.NoError(t, err)

	require.NotNil(t, d.PWA)
	assert.Equal(t, PWA{
		WorkboxMode:       "generateSW",
		InjectPWAMetaTags: true,
		SWFilename:        "sw.js",
		ManifestFilename:  "manifest.json",
	}, *d.PWA)
}

func TestResolveDesktopShell(t *testing.T) {
	d, err := Resolve(completeSpec(), target.DesktopShell)
	require.NoError(t, err)

	require.NotNil(t, d.Desktop)
	assert.Equal(t, "builder", d.Desktop.Bundler)
	assert.Equal(t, "hs-configurator", d.Desktop.AppID)
	assert.Equal(t, "hs-configurator", d.Desktop.ProductName)
	assert.Equal(t, 5858, d.Desktop.InspectPort)
	assert.Equal(t, ".node", d.Desktop.NativeExtension)

	preload, ok := d.PrivilegedBundle()
	require.True(t, ok)
	assert.Equal(t, "preload", preload.Name)
	assert.Equal(t, "src-electron/electron-preload.ts", preload.Entry)
	assert.Equal(t, PlatformNode, preload.Platform)
	assert.Equal(t, []string{"electron"}, preload.External)

	main, ok := d.Bundle("main")
	require.True(t, ok)
	assert.False(t, main.Privileged)
}

func TestResolveDesktopShellRequiredFields(t *testing.T) {
	t.Run("builder without app id", func(t *testing.T) {
		spec := completeSpec()
		spec.Electron.Builder.AppID = ""

		_, err := Resolve(spec, target.DesktopShell)
		require.Error(t, err)
		assert.True(t, errors.IsConfigurationError(err))
		assert.Contains(t, err.Error(), "electron.builder.app_id")
	})

	t.Run("packager falls back to source name", func(t *testing.T) {
		spec := completeSpec()
		spec.Electron.Bundler = "packager"

		d, err := Resolve(spec, target.DesktopShell)
		require.NoError(t, err)
		assert.Equal(t, "hs-configurator", d.Desktop.PackagerName)
	})

	t.Run("packager without any name", func(t *testing.T) {
		spec := completeSpec()
		spec.Source.Name = ""
		spec.Electron.Bundler = "packager"

		_, err := Resolve(spec, target.DesktopShell)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "electron.packager.name")
	})

	t.Run("missing app id does not affect other targets", func(t *testing.T) {
		spec := completeSpec()
		spec.Electron.Builder.AppID = ""

		_, err := Resolve(spec, target.Web)
		assert.NoError(t, err)
	})
}

func TestResolveMobileShell(t *testing.T) {
	spec := completeSpec()
	spec.Capacitor.HideSplashscreen = boolPtr(false)

	d, err := Resolve(spec, target.MobileShell)
	require.NoError(t, err)
	require.NotNil(t, d.Mobile)
	assert.Equal(t, "capacitor", d.Mobile.Shell)
	assert.False(t, d.Mobile.HideSplashscreen)
	assert.Equal(t, "dist/capacitor", d.DistDir)
	assert.Equal(t, "dist/capacitor", d.Bundles[0].OutDir)
}

func TestResolveMobileShellDistFollowsShell(t *testing.T) {
	spec := completeSpec()
	spec.Mobile.Shell = "cordova"
	spec.Cordova.NoIOSLegacyBuildFlag = true

	parsed, err := target.Parse("mobile")
	require.NoError(t, err)
	d, err := Resolve(spec, parsed)
	require.NoError(t, err)

	assert.Equal(t, "cordova", d.Mobile.Shell)
	assert.True(t, d.Mobile.NoIOSLegacyBuildFlag)
	assert.Equal(t, "dist/cordova", d.DistDir)
	assert.Equal(t, "dist/cordova", d.Bundles[0].OutDir)

	spec.Build.DistDir = "out/phone"
	d, err = Resolve(spec, target.MobileShell)
	require.NoError(t, err)
	assert.Equal(t, "out/phone", d.DistDir)
}

func TestResolveBootAndStylesheets(t *testing.T) {
	spec := completeSpec()
	spec.Boot = []string{"axios", "theme.js"}
	spec.CSS = []string{"app.css"}

	for _, tgt := range []target.Target{target.Web, target.ServerRendered, target.DesktopShell} {
		d, err := Resolve(spec, tgt)
		require.NoError(t, err)

		app := d.Bundles[0]
		assert.Equal(t, []string{"src/boot/axios.ts", "src/boot/theme.js"}, app.Inject, tgt)
		assert.Equal(t, []string{"src/css/app.css"}, app.Styles, tgt)
		for _, other := range d.Bundles[1:] {
			assert.Empty(t, other.Inject, other.Name)
			assert.Empty(t, other.Styles, other.Name)
		}
	}

	d, err := Resolve(completeSpec(), target.Web)
	require.NoError(t, err)
	assert.Nil(t, d.Bundles[0].Inject)
	assert.Nil(t, d.Bundles[0].Styles)

	spec.CSS = []string{"app.scss"}
	_, err = Resolve(spec, target.Web)
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
}

func TestResolveBrowserExtension(t *testing.T) {
	spec := completeSpec()
	spec.Bex.ContentScripts = []string{"my-content-script", "overlay"}

	d, err := Resolve(spec, target.BrowserExtension)
	require.NoError(t, err)

	require.Len(t, d.Bundles, 3)
	script, ok := d.Bundle("content-script:overlay")
	require.True(t, ok)
	assert.Equal(t, "src-bex/overlay.ts", script.Entry)
	assert.Equal(t, FormatIIFE, script.Format)

	spec.Bex.ContentScripts = nil
	_, err = Resolve(spec, target.BrowserExtension)
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
}

func TestResolveUnknownTarget(t *testing.T) {
	_, err := Resolve(completeSpec(), target.Target("tv"))
	require.Error(t, err)
	assert.True(t, errors.IsUnknownTarget(err))
}

func TestResolveInvalidSpec(t *testing.T) {
	spec := completeSpec()
	spec.SSR.ProdPort = -5

	_, err := Resolve(spec, target.ServerRendered)
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
}

func TestResolveIsPure(t *testing.T) {
	spec := completeSpec()

	first, err := Resolve(spec, target.DesktopShell)
	require.NoError(t, err)
	first.Extras[0] = "mutated"
	first.Bundles[0].Name = "mutated"

	second, err := Resolve(spec, target.DesktopShell)
	require.NoError(t, err)
	assert.Equal(t, "roboto-font", second.Extras[0])
	assert.Equal(t, "app", second.Bundles[0].Name)
	assert.Equal(t, completeSpec(), spec)
}

func TestResolveAliasEquivalence(t *testing.T) {
	for alias, canonical := range map[string]target.Target{
		"electron": target.DesktopShell,
		"ssr":      target.ServerRendered,
		"mobile":   target.MobileShell,
	} {
		parsed, err := target.Parse(alias)
		require.NoError(t, err)

		fromAlias, err := Resolve(completeSpec(), parsed)
		require.NoError(t, err)
		fromCanonical, err := Resolve(completeSpec(), canonical)
		require.NoError(t, err)
		assert.Equal(t, fromCanonical, fromAlias)
	}
}

func TestResolveNilSpec(t *testing.T) {
	d, err := Resolve(nil, target.Web)
	require.NoError(t, err)
	assert.Equal(t, "dist/spa", d.DistDir)
}
