package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/targetforge/internal/errors"
)

const projectConfig = `source:
  name: hs-configurator
build:
  minify: false
electron:
  builder:
    app_id: org.example.configurator
bex:
  content_scripts: [dom]
`

const projectConfigJSONC = `{
  // desktop shell only
  "source": {"name": "hs-configurator"},
  "electron": {"builder": {"app_id": "org.example.configurator"},},
}
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newProject writes a source tree with a configuration file named name
// and returns the configuration file's path.
func newProject(t *testing.T, name, content string) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, name), content)
	writeFile(t, filepath.Join(root, "src", "main.ts"), `console.log("app");`)
	writeFile(t, filepath.Join(root, "src-electron", "electron-main.ts"), `import { app } from "electron";
app.whenReady();
`)
	writeFile(t, filepath.Join(root, "src-electron", "electron-preload.ts"), `const foo = require("./bindings/foo.node");
export default foo;
`)
	writeFile(t, filepath.Join(root, "src-electron", "bindings", "foo.node"), "\x7fELF addon")
	return filepath.Join(root, name)
}

// run executes the root command with fresh global state.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	require.NoError(t, viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level")))
	require.NoError(t, viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format")))
	cfgFile, configPath = "", ""
	resolveFlags = TargetFlags{Target: "web", OutputFormat: "table"}
	buildFlags = TargetFlags{Target: "web", OutputFormat: "table"}
	targetsFlags = TargetFlags{OutputFormat: "table"}
	versionFlags = TargetFlags{OutputFormat: "table"}
	buildWrite, buildAnalyze, buildTop = false, false, 10
	versionShort = false

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), err
}

func TestTargetsCommand(t *testing.T) {
	out, err := run(t, "targets")
	require.NoError(t, err)

	assert.Contains(t, out, "TARGET")
	assert.Contains(t, out, "desktop-shell")
	assert.Contains(t, out, "Desktop Shell")
	assert.Contains(t, out, "capacitor or cordova")
}

func TestTargetsJSON(t *testing.T) {
	out, err := run(t, "targets", "-o", "json")
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 6)
	assert.Equal(t, "web", rows[0]["target"])
	assert.Equal(t, "spa", rows[0]["mode"])
}

func TestResolveCommand(t *testing.T) {
	cfg := newProject(t, ".targetforge.yml", projectConfig)

	out, err := run(t, "resolve", "--config", cfg, "--target", "electron")
	require.NoError(t, err)

	assert.Contains(t, out, "desktop-shell")
	assert.Contains(t, out, "Native extension")
	assert.Contains(t, out, "preload")
	assert.Contains(t, out, "src-electron/electron-preload.ts")
}

func TestResolveJSONC(t *testing.T) {
	cfg := newProject(t, ".targetforge.jsonc", projectConfigJSONC)

	out, err := run(t, "resolve", "--config", cfg, "-t", "desktop-shell", "-o", "json")
	require.NoError(t, err)

	var d struct {
		Name    string `json:"name"`
		Desktop struct {
			AppID           string `json:"app_id"`
			NativeExtension string `json:"native_extension"`
		} `json:"desktop"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, "hs-configurator", d.Name)
	assert.Equal(t, "org.example.configurator", d.Desktop.AppID)
	assert.Equal(t, ".node", d.Desktop.NativeExtension)
}

func TestResolveEnvironmentOverride(t *testing.T) {
	cfg := newProject(t, ".targetforge.yml", projectConfig)
	t.Setenv("TARGETFORGE_SSR_PROD_PORT", "4000")

	out, err := run(t, "resolve", "--config", cfg, "--target", "ssr", "-o", "json")
	require.NoError(t, err)

	var d struct {
		SSR struct {
			ProdPort int `json:"prod_port"`
		} `json:"ssr"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, 4000, d.SSR.ProdPort)
}

func TestResolveMobileShellFromConfig(t *testing.T) {
	cfg := newProject(t, ".targetforge.yml", projectConfig+"mobile:\n  shell: cordova\n")

	out, err := run(t, "resolve", "--config", cfg, "--target", "mobile", "-o", "json")
	require.NoError(t, err)

	var d struct {
		DistDir string `json:"dist_dir"`
		Mobile  struct {
			Shell string `json:"shell"`
		} `json:"mobile"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, "cordova", d.Mobile.Shell)
	assert.Equal(t, "dist/cordova", d.DistDir)
}

func TestResolveUnknownTarget(t *testing.T) {
	_, err := run(t, "resolve", "--target", "smart-tv")
	require.Error(t, err)
	assert.True(t, errors.IsUnknownTarget(err))
}

func TestResolveInvalidFormat(t *testing.T) {
	_, err := run(t, "resolve", "-o", "xml")
	assert.Error(t, err)
}

func TestBuildDesktopShell(t *testing.T) {
	cfg := newProject(t, ".targetforge.yml", projectConfig)
	root := filepath.Dir(cfg)

	out, err := run(t, "build", "--config", cfg, "--target", "desktop-shell", "--write", "--analyze")
	require.NoError(t, err)

	assert.Contains(t, out, "BLAKE3")
	assert.Contains(t, out, "preload inputs:")
	assert.Contains(t, out, "Built 3 bundle(s) for desktop-shell")

	matches, err := filepath.Glob(filepath.Join(root, "dist", "electron", "preload", "foo-*.node"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestBuildJSONWithoutWrite(t *testing.T) {
	cfg := newProject(t, ".targetforge.yml", projectConfig)
	root := filepath.Dir(cfg)

	out, err := run(t, "build", "--config", cfg, "-o", "json")
	require.NoError(t, err)

	var report struct {
		Target  string `json:"target"`
		Bundles []struct {
			Name string `json:"name"`
		} `json:"bundles"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "web", report.Target)
	require.Len(t, report.Bundles, 1)
	assert.Equal(t, "app", report.Bundles[0].Name)

	_, err = os.Stat(filepath.Join(root, "dist"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuildMissingNativeBinary(t *testing.T) {
	cfg := newProject(t, ".targetforge.yml", projectConfig)
	require.NoError(t, os.Remove(filepath.Join(filepath.Dir(cfg), "src-electron", "bindings", "foo.node")))

	_, err := run(t, "build", "--config", cfg, "-t", "desktop-shell")
	require.Error(t, err)
	assert.True(t, errors.IsModuleNotFound(err))
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version", "--short")
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	out, err = run(t, "version", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "go_version:")
}

func TestNormalizeFlagName(t *testing.T) {
	assert.Equal(t, "log-level", string(normalizeFlagName(nil, "log_level")))
	assert.Equal(t, "no-headers", string(normalizeFlagName(nil, "no-headers")))
}
