// Package directive resolves the declarative build specification for one
// deployment target into a flat, fully defaulted Directive that the build
// driver and target-specific packagers consume.
//
// Resolution is a pure function of the configuration and the target. It
// never reads or writes files and never invokes the bundler.
package directive

import (
	"github.com/conneroisu/targetforge/internal/target"
)

// Platform is the runtime a bundle is compiled for.
type Platform string

const (
	PlatformBrowser Platform = "browser"
	PlatformNode    Platform = "node"
)

// Format is the module format of a bundle's output.
type Format string

const (
	FormatESM      Format = "esm"
	FormatCommonJS Format = "cjs"
	FormatIIFE     Format = "iife"
)

// Loader names how the bundler handles files with a given extension.
type Loader string

const (
	LoaderFile Loader = "file"
	LoaderText Loader = "text"
	LoaderJSON Loader = "json"
)

// Directive is the normalized build description for one target.
type Directive struct {
	Target     target.Target `json:"target" yaml:"target"`
	Name       string        `json:"name" yaml:"name"`
	Root       string        `json:"root" yaml:"root"`
	DistDir    string        `json:"dist_dir" yaml:"dist_dir"`
	PublicDir  string        `json:"public_dir" yaml:"public_dir"`
	PublicPath string        `json:"public_path" yaml:"public_path"`
	RouterMode string        `json:"router_mode" yaml:"router_mode"`

	BrowserTargets []string          `json:"browser_targets" yaml:"browser_targets"`
	NodeTarget     string            `json:"node_target" yaml:"node_target"`
	Minify         bool              `json:"minify" yaml:"minify"`
	Sourcemap      bool              `json:"sourcemap" yaml:"sourcemap"`
	Define         map[string]string `json:"define,omitempty" yaml:"define,omitempty"`
	External       []string          `json:"external,omitempty" yaml:"external,omitempty"`
	Loaders        map[string]Loader `json:"loaders" yaml:"loaders"`
	Extras         []string          `json:"extras" yaml:"extras"`

	DevServer DevServer `json:"dev_server" yaml:"dev_server"`
	Bundles   []Bundle  `json:"bundles" yaml:"bundles"`

	// Target-specific sections. Exactly the one matching Target is set.
	SSR       *SSR       `json:"ssr,omitempty" yaml:"ssr,omitempty"`
	PWA       *PWA       `json:"pwa,omitempty" yaml:"pwa,omitempty"`
	Desktop   *Desktop   `json:"desktop,omitempty" yaml:"desktop,omitempty"`
	Mobile    *Mobile    `json:"mobile,omitempty" yaml:"mobile,omitempty"`
	Extension *Extension `json:"extension,omitempty" yaml:"extension,omitempty"`
}

// Bundle is one entry point built by the bundler.
type Bundle struct {
	Name       string   `json:"name" yaml:"name"`
	Entry      string   `json:"entry" yaml:"entry"`
	OutDir     string   `json:"out_dir" yaml:"out_dir"`
	Platform   Platform `json:"platform" yaml:"platform"`
	Format     Format   `json:"format" yaml:"format"`
	External   []string `json:"external,omitempty" yaml:"external,omitempty"`
	Privileged bool     `json:"privileged,omitempty" yaml:"privileged,omitempty"`

	// Inject lists boot files evaluated before Entry. Styles are built as
	// extra stylesheet entry points next to it.
	Inject []string `json:"inject,omitempty" yaml:"inject,omitempty"`
	Styles []string `json:"styles,omitempty" yaml:"styles,omitempty"`
}

type DevServer struct {
	Host  string `json:"host" yaml:"host"`
	Port  int    `json:"port" yaml:"port"`
	Open  bool   `json:"open" yaml:"open"`
	HTTPS bool   `json:"https" yaml:"https"`
}

type SSR struct {
	ProdPort    int      `json:"prod_port" yaml:"prod_port"`
	PWA         bool     `json:"pwa" yaml:"pwa"`
	Middlewares []string `json:"middlewares" yaml:"middlewares"`
}

type PWA struct {
	WorkboxMode                  string `json:"workbox_mode" yaml:"workbox_mode"`
	InjectPWAMetaTags            bool   `json:"inject_pwa_meta_tags" yaml:"inject_pwa_meta_tags"`
	SWFilename                   string `json:"sw_filename" yaml:"sw_filename"`
	ManifestFilename             string `json:"manifest_filename" yaml:"manifest_filename"`
	UseCredentialsForManifestTag bool   `json:"use_credentials_for_manifest_tag" yaml:"use_credentials_for_manifest_tag"`
}

type Desktop struct {
	Bundler         string `json:"bundler" yaml:"bundler"`
	AppID           string `json:"app_id,omitempty" yaml:"app_id,omitempty"`
	ProductName     string `json:"product_name,omitempty" yaml:"product_name,omitempty"`
	PackagerName    string `json:"packager_name,omitempty" yaml:"packager_name,omitempty"`
	Platform        string `json:"platform,omitempty" yaml:"platform,omitempty"`
	Arch            string `json:"arch,omitempty" yaml:"arch,omitempty"`
	InspectPort     int    `json:"inspect_port" yaml:"inspect_port"`
	NativeExtension string `json:"native_extension" yaml:"native_extension"`
}

type Mobile struct {
	Shell                string `json:"shell" yaml:"shell"`
	AppID                string `json:"app_id,omitempty" yaml:"app_id,omitempty"`
	HideSplashscreen     bool   `json:"hide_splashscreen" yaml:"hide_splashscreen"`
	NoIOSLegacyBuildFlag bool   `json:"no_ios_legacy_build_flag" yaml:"no_ios_legacy_build_flag"`
}

type Extension struct {
	ContentScripts []string `json:"content_scripts" yaml:"content_scripts"`
}

// PrivilegedBundle returns the bundle that may load native binaries, if the
// directive has one.
func (d *Directive) PrivilegedBundle() (Bundle, bool) {
	for _, b := range d.Bundles {
		if b.Privileged {
			return b, true
		}
	}
	return Bundle{}, false
}

// Bundle returns the bundle with the given name.
func (d *Directive) Bundle(name string) (Bundle, bool) {
	for _, b := range d.Bundles {
		if b.Name == name {
			return b, true
		}
	}
	return Bundle{}, false
}
