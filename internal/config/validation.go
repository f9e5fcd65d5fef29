package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/conneroisu/targetforge/internal/errors"
)

// Accepted values for enumerated fields. The empty string means "use the
// default" and is always accepted.
var (
	RouterModes     = []string{"hash", "history"}
	WorkboxModes    = []string{"generateSW", "injectManifest"}
	ElectronBundles = []string{"builder", "packager"}
	MobileShells    = []string{"capacitor", "cordova"}
)

// Validate checks the values present in spec for correctness. Missing
// fields are not reported here; whether a field is required depends on the
// target and is decided by the resolver.
func Validate(spec *Spec) error {
	if err := validateSource(&spec.Source); err != nil {
		return err
	}
	if err := validateBuild(&spec.Build); err != nil {
		return err
	}
	if err := validateAppFiles(spec); err != nil {
		return err
	}
	if err := validatePort("dev_server.port", spec.DevServer.Port); err != nil {
		return err
	}
	if err := validatePort("ssr.prod_port", spec.SSR.ProdPort); err != nil {
		return err
	}
	if err := validateOneOf("pwa.workbox_mode", spec.PWA.WorkboxMode, WorkboxModes); err != nil {
		return err
	}
	if err := validateElectron(&spec.Electron); err != nil {
		return err
	}
	if err := validateOneOf("mobile.shell", spec.Mobile.Shell, MobileShells); err != nil {
		return err
	}
	for _, script := range spec.Bex.ContentScripts {
		if err := validateScriptName(script); err != nil {
			return err
		}
	}
	return nil
}

func validateSource(source *SourceConfig) error {
	return validateRelativePaths([][2]string{
		{"source.root", source.Root},
		{"source.entry", source.Entry},
		{"source.public_dir", source.PublicDir},
	})
}

func validateBuild(build *BuildConfig) error {
	if err := validateRelativePath("build.dist_dir", build.DistDir); err != nil {
		return err
	}
	if err := validateOneOf("build.router_mode", build.RouterMode, RouterModes); err != nil {
		return err
	}
	if build.PublicPath != "" && !strings.HasPrefix(build.PublicPath, "/") && !strings.Contains(build.PublicPath, "://") {
		return errors.NewConfigurationError("build.public_path",
			fmt.Sprintf("%q must be absolute (start with /) or a full URL", build.PublicPath))
	}
	for _, browser := range build.Target.Browser {
		if strings.TrimSpace(browser) == "" {
			return errors.NewConfigurationError("build.target.browser", "browser targets cannot be empty")
		}
	}
	return nil
}

// validateAppFiles checks boot files (under src/boot) and global
// stylesheets (under src/css). Stylesheets must be plain CSS because the
// bundler has no preprocessor.
func validateAppFiles(spec *Spec) error {
	for _, boot := range spec.Boot {
		if strings.TrimSpace(boot) == "" {
			return errors.NewConfigurationError("boot", "boot file name cannot be empty")
		}
		if err := validateRelativePath("boot", boot); err != nil {
			return err
		}
	}
	for _, css := range spec.CSS {
		if err := validateRelativePath("css", css); err != nil {
			return err
		}
		if ext := strings.ToLower(filepath.Ext(css)); ext != ".css" {
			return errors.NewConfigurationError("css",
				fmt.Sprintf("%q must be a .css stylesheet; compile %s sources to CSS first", css, strings.TrimPrefix(ext, ".")))
		}
	}
	return nil
}

func validateElectron(electron *ElectronConfig) error {
	if err := validatePort("electron.inspect_port", electron.InspectPort); err != nil {
		return err
	}
	if err := validateOneOf("electron.bundler", electron.Bundler, ElectronBundles); err != nil {
		return err
	}
	if ext := electron.NativeExtension; ext != "" {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 || strings.ContainsAny(ext, `/\ `) {
			return errors.NewConfigurationError("electron.native_extension",
				fmt.Sprintf("%q must be a file extension such as .node", ext))
		}
	}
	return validateRelativePaths([][2]string{
		{"electron.main", electron.Main},
		{"electron.preload", electron.Preload},
	})
}

func validatePort(field string, port int) error {
	// 0 means unset
	if port < 0 || port > 65535 {
		return errors.NewConfigurationError(field,
			fmt.Sprintf("port %d is not in valid range 0-65535", port)).WithContext("value", port)
	}
	return nil
}

func validateOneOf(field, value string, allowed []string) error {
	if value == "" {
		return nil
	}
	for _, candidate := range allowed {
		if value == candidate {
			return nil
		}
	}
	return errors.NewConfigurationError(field,
		fmt.Sprintf("%q is not one of %s", value, strings.Join(allowed, ", ")))
}

// validateRelativePaths checks (field, path) pairs in order and reports the
// first violation.
func validateRelativePaths(fields [][2]string) error {
	for _, f := range fields {
		if err := validateRelativePath(f[0], f[1]); err != nil {
			return err
		}
	}
	return nil
}

// validateRelativePath rejects absolute paths and traversal outside the
// project root.
func validateRelativePath(field, path string) error {
	if path == "" {
		return nil
	}

	cleanPath := filepath.Clean(path)

	if filepath.IsAbs(cleanPath) {
		return errors.NewConfigurationError(field, fmt.Sprintf("%s should be a relative path", path))
	}

	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return errors.NewConfigurationError(field, fmt.Sprintf("%s contains path traversal", path))
	}

	return nil
}

func validateScriptName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.NewConfigurationError("bex.content_scripts", "content script name cannot be empty")
	}
	for _, char := range name {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '-' || char == '_') {
			return errors.NewConfigurationError("bex.content_scripts",
				fmt.Sprintf("content script name contains invalid character: %s", name))
		}
	}
	return nil
}
