// Package config loads the declarative build specification for every
// deployment target using Viper for flexible configuration loading from
// files and environment variables.
//
// One file describes all targets at once. Sections that do not apply to the
// target being built are ignored; defaults are applied later by the
// directive resolver, so a Spec only holds what the author wrote. YAML,
// JSON and JSONC (JSON with comments and trailing commas) files are
// supported, and environment variables with the TARGETFORGE_ prefix
// override individual keys.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/spf13/viper"
	"github.com/tidwall/jsonc"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "TARGETFORGE"

// DefaultConfigName is the base name searched for when no file is given.
const DefaultConfigName = ".targetforge"

type Spec struct {
	Source    SourceConfig    `mapstructure:"source" yaml:"source" json:"source"`
	Build     BuildConfig     `mapstructure:"build" yaml:"build" json:"build"`
	Boot      []string        `mapstructure:"boot" yaml:"boot,omitempty" json:"boot,omitempty"`
	CSS       []string        `mapstructure:"css" yaml:"css,omitempty" json:"css,omitempty"`
	Extras    []string        `mapstructure:"extras" yaml:"extras,omitempty" json:"extras,omitempty"`
	DevServer DevServerConfig `mapstructure:"dev_server" yaml:"dev_server" json:"dev_server"`
	SSR       SSRConfig       `mapstructure:"ssr" yaml:"ssr" json:"ssr"`
	PWA       PWAConfig       `mapstructure:"pwa" yaml:"pwa" json:"pwa"`
	Electron  ElectronConfig  `mapstructure:"electron" yaml:"electron" json:"electron"`
	Mobile    MobileConfig    `mapstructure:"mobile" yaml:"mobile" json:"mobile"`
	Capacitor CapacitorConfig `mapstructure:"capacitor" yaml:"capacitor" json:"capacitor"`
	Cordova   CordovaConfig   `mapstructure:"cordova" yaml:"cordova" json:"cordova"`
	Bex       BexConfig       `mapstructure:"bex" yaml:"bex" json:"bex"`
}

type SourceConfig struct {
	Name      string `mapstructure:"name" yaml:"name,omitempty" json:"name,omitempty"`
	Root      string `mapstructure:"root" yaml:"root,omitempty" json:"root,omitempty"`
	Entry     string `mapstructure:"entry" yaml:"entry,omitempty" json:"entry,omitempty"`
	PublicDir string `mapstructure:"public_dir" yaml:"public_dir,omitempty" json:"public_dir,omitempty"`
}

type BuildConfig struct {
	DistDir    string            `mapstructure:"dist_dir" yaml:"dist_dir,omitempty" json:"dist_dir,omitempty"`
	PublicPath string            `mapstructure:"public_path" yaml:"public_path,omitempty" json:"public_path,omitempty"`
	RouterMode string            `mapstructure:"router_mode" yaml:"router_mode,omitempty" json:"router_mode,omitempty"`
	Target     EngineTargets     `mapstructure:"target" yaml:"target" json:"target"`
	Minify     *bool             `mapstructure:"minify" yaml:"minify,omitempty" json:"minify,omitempty"`
	Sourcemap  bool              `mapstructure:"sourcemap" yaml:"sourcemap,omitempty" json:"sourcemap,omitempty"`
	Env        map[string]string `mapstructure:"env" yaml:"env,omitempty" json:"env,omitempty"`
	External   []string          `mapstructure:"external" yaml:"external,omitempty" json:"external,omitempty"`
}

// EngineTargets lists the runtimes the emitted code must support.
type EngineTargets struct {
	Browser []string `mapstructure:"browser" yaml:"browser,omitempty" json:"browser,omitempty"`
	Node    string   `mapstructure:"node" yaml:"node,omitempty" json:"node,omitempty"`
}

type DevServerConfig struct {
	Port  int    `mapstructure:"port" yaml:"port,omitempty" json:"port,omitempty"`
	Host  string `mapstructure:"host" yaml:"host,omitempty" json:"host,omitempty"`
	Open  bool   `mapstructure:"open" yaml:"open,omitempty" json:"open,omitempty"`
	HTTPS bool   `mapstructure:"https" yaml:"https,omitempty" json:"https,omitempty"`
}

type SSRConfig struct {
	Entry       string   `mapstructure:"entry" yaml:"entry,omitempty" json:"entry,omitempty"`
	ProdPort    int      `mapstructure:"prod_port" yaml:"prod_port,omitempty" json:"prod_port,omitempty"`
	PWA         bool     `mapstructure:"pwa" yaml:"pwa,omitempty" json:"pwa,omitempty"`
	Middlewares []string `mapstructure:"middlewares" yaml:"middlewares,omitempty" json:"middlewares,omitempty"`
}

type PWAConfig struct {
	WorkboxMode                  string `mapstructure:"workbox_mode" yaml:"workbox_mode,omitempty" json:"workbox_mode,omitempty"`
	InjectPWAMetaTags            *bool  `mapstructure:"inject_pwa_meta_tags" yaml:"inject_pwa_meta_tags,omitempty" json:"inject_pwa_meta_tags,omitempty"`
	SWFilename                   string `mapstructure:"sw_filename" yaml:"sw_filename,omitempty" json:"sw_filename,omitempty"`
	ManifestFilename             string `mapstructure:"manifest_filename" yaml:"manifest_filename,omitempty" json:"manifest_filename,omitempty"`
	UseCredentialsForManifestTag bool   `mapstructure:"use_credentials_for_manifest_tag" yaml:"use_credentials_for_manifest_tag,omitempty" json:"use_credentials_for_manifest_tag,omitempty"`
}

type ElectronConfig struct {
	Main            string         `mapstructure:"main" yaml:"main,omitempty" json:"main,omitempty"`
	Preload         string         `mapstructure:"preload" yaml:"preload,omitempty" json:"preload,omitempty"`
	InspectPort     int            `mapstructure:"inspect_port" yaml:"inspect_port,omitempty" json:"inspect_port,omitempty"`
	Bundler         string         `mapstructure:"bundler" yaml:"bundler,omitempty" json:"bundler,omitempty"`
	NativeExtension string         `mapstructure:"native_extension" yaml:"native_extension,omitempty" json:"native_extension,omitempty"`
	Packager        PackagerConfig `mapstructure:"packager" yaml:"packager" json:"packager"`
	Builder         BuilderConfig  `mapstructure:"builder" yaml:"builder" json:"builder"`
}

type PackagerConfig struct {
	Name     string `mapstructure:"name" yaml:"name,omitempty" json:"name,omitempty"`
	Platform string `mapstructure:"platform" yaml:"platform,omitempty" json:"platform,omitempty"`
	Arch     string `mapstructure:"arch" yaml:"arch,omitempty" json:"arch,omitempty"`
}

type BuilderConfig struct {
	AppID       string `mapstructure:"app_id" yaml:"app_id,omitempty" json:"app_id,omitempty"`
	ProductName string `mapstructure:"product_name" yaml:"product_name,omitempty" json:"product_name,omitempty"`
}

type MobileConfig struct {
	Shell string `mapstructure:"shell" yaml:"shell,omitempty" json:"shell,omitempty"`
	AppID string `mapstructure:"app_id" yaml:"app_id,omitempty" json:"app_id,omitempty"`
}

type CapacitorConfig struct {
	HideSplashscreen *bool `mapstructure:"hide_splashscreen" yaml:"hide_splashscreen,omitempty" json:"hide_splashscreen,omitempty"`
}

type CordovaConfig struct {
	NoIOSLegacyBuildFlag bool `mapstructure:"no_ios_legacy_build_flag" yaml:"no_ios_legacy_build_flag,omitempty" json:"no_ios_legacy_build_flag,omitempty"`
}

type BexConfig struct {
	ContentScripts []string `mapstructure:"content_scripts" yaml:"content_scripts,omitempty" json:"content_scripts,omitempty"`
}

// Load decodes the global Viper state into a Spec and validates it.
func Load() (*Spec, error) {
	return Decode(viper.GetViper())
}

// LoadFile reads a single configuration file into a fresh Viper instance.
func LoadFile(path string) (*Spec, error) {
	v := viper.New()
	if err := ReadInto(v, path); err != nil {
		return nil, err
	}
	return Decode(v)
}

// Keys lists the dotted key of every Spec field that can be set from a
// single environment variable. Maps are left out because one variable
// cannot express them.
func Keys() []string {
	return fieldKeys(reflect.TypeOf(Spec{}), "")
}

func fieldKeys(t reflect.Type, prefix string) []string {
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			continue
		}
		key := prefix + name

		ft := field.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		switch ft.Kind() {
		case reflect.Struct:
			keys = append(keys, fieldKeys(ft, key+".")...)
		case reflect.Map:
		default:
			keys = append(keys, key)
		}
	}
	return keys
}

// BindEnv registers every key from Keys with v. AutomaticEnv alone only
// overrides keys Viper already knows from a file, so a variable such as
// TARGETFORGE_SSR_PROD_PORT would be ignored when the file has no ssr
// section.
func BindEnv(v *viper.Viper) error {
	for _, key := range Keys() {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("binding environment for %s: %w", key, err)
		}
	}
	return nil
}

// Decode unmarshals v into a Spec and validates the values that are set.
func Decode(v *viper.Viper) (*Spec, error) {
	var spec Spec
	if err := v.Unmarshal(&spec); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}

	// Viper does not split comma separated env values into slices
	if v.IsSet("bex.content_scripts") && len(spec.Bex.ContentScripts) == 0 {
		spec.Bex.ContentScripts = v.GetStringSlice("bex.content_scripts")
	}
	for key, slice := range map[string]*[]string{"boot": &spec.Boot, "css": &spec.CSS, "extras": &spec.Extras} {
		if v.IsSet(key) && len(*slice) == 0 {
			*slice = v.GetStringSlice(key)
		}
	}

	if err := Validate(&spec); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &spec, nil
}

// ReadInto loads path into v. JSONC files are stripped of comments and
// trailing commas before Viper parses them as JSON.
func ReadInto(v *viper.Viper, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonc":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		v.SetConfigType("json")
		if err := v.ReadConfig(bytes.NewReader(jsonc.ToJSON(data))); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return nil
	case ".yml", ".yaml", ".json":
		v.SetConfigType(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return nil
	default:
		return fmt.Errorf("%s: unsupported configuration format %q", path, filepath.Ext(path))
	}
}

// Find returns the first default configuration file present in dir.
func Find(dir string) (string, bool) {
	for _, ext := range []string{".yml", ".yaml", ".json", ".jsonc"} {
		candidate := filepath.Join(dir, DefaultConfigName+ext)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}
