// Package build drives esbuild for every bundle of a resolved directive.
//
// Bundles are built one at a time in directive order. The native-binary
// bridge is attached to the desktop shell's privileged bundle and to no
// other, so any other bundle importing a native file fails with esbuild's
// own "No loader is configured" error.
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/conneroisu/targetforge/internal/directive"
	"github.com/conneroisu/targetforge/internal/errors"
	"github.com/conneroisu/targetforge/internal/logging"
	"github.com/conneroisu/targetforge/internal/nativebridge"
	"github.com/conneroisu/targetforge/internal/target"
)

// Options configures a Builder.
type Options struct {
	// Write writes output files to disk. Without it the build only
	// reports what would be written.
	Write bool
	// AbsWorkingDir is the directory the directive's paths are relative
	// to. It defaults to the process working directory.
	AbsWorkingDir string
	// Analyze attaches a metafile analysis to every bundle report.
	Analyze bool
	Logger  logging.Logger
	// Observer is handed to the native-binary bridge.
	Observer nativebridge.Observer
}

// Builder runs esbuild for directives.
type Builder struct {
	opts   Options
	logger logging.Logger
}

// New creates a Builder.
func New(opts Options) *Builder {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Builder{opts: opts, logger: logger.WithComponent("build")}
}

// Build builds every bundle of d. The first failing bundle stops the build
// and its error is returned alongside the report of the bundles built so
// far.
func (b *Builder) Build(ctx context.Context, d *directive.Directive) (*Report, error) {
	if d == nil {
		return nil, errors.NewInternalError("nil directive", nil)
	}

	workDir, err := b.workingDir()
	if err != nil {
		return nil, err
	}

	perf := logging.StartOperation(b.logger.With("target", d.Target.String()), "build")
	start := time.Now()
	report := &Report{Target: d.Target}

	for _, bundle := range d.Bundles {
		if err := ctx.Err(); err != nil {
			perf.EndWithError(ctx, err)
			return report, err
		}

		bundleReport, artifacts, err := b.buildBundle(ctx, workDir, d, bundle)
		if err != nil {
			perf.EndWithError(ctx, err)
			return report, err
		}
		report.Bundles = append(report.Bundles, bundleReport)
		report.NativeArtifacts = append(report.NativeArtifacts, artifacts...)
	}

	report.Duration = time.Since(start)
	perf.End(ctx)
	return report, nil
}

func (b *Builder) workingDir() (string, error) {
	dir := b.opts.AbsWorkingDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.NewIOError(errors.ErrCodeInternalError, "determining working directory", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeInternalError, "resolving working directory", err)
	}
	return abs, nil
}

func (b *Builder) buildBundle(ctx context.Context, workDir string, d *directive.Directive, bundle directive.Bundle) (BundleReport, []NativeArtifact, error) {
	logger := b.logger.With("bundle", bundle.Name)
	start := time.Now()

	options, err := esbuildOptions(workDir, d, bundle)
	if err != nil {
		return BundleReport{}, nil, err
	}

	var extension string
	if attachesBridge(d, bundle) {
		extension = d.Desktop.NativeExtension
		bridge, err := nativebridge.New(nativebridge.Options{
			Extension: extension,
			Logger:    logger,
			Observer:  b.opts.Observer,
		})
		if err != nil {
			return BundleReport{}, nil, errors.NewConfigurationError("electron.native_extension", err.Error())
		}
		options.Plugins = append(options.Plugins, bridge.Plugin())
		logger.Debug(ctx, "Attached native binary bridge", "extension", extension)
	}

	result := api.Build(options)
	if len(result.Errors) > 0 {
		return BundleReport{}, nil, classify(bundle.Name, result.Errors)
	}

	report := BundleReport{
		Name:       bundle.Name,
		OutDir:     bundle.OutDir,
		Privileged: bundle.Privileged,
		Warnings:   messageTexts(result.Warnings),
	}
	for _, out := range result.OutputFiles {
		report.Outputs = append(report.Outputs, OutputFile{Path: out.Path, Bytes: len(out.Contents)})
		report.TotalBytes += len(out.Contents)
	}

	if b.opts.Analyze && result.Metafile != "" {
		meta, err := ParseMetafile(result.Metafile)
		if err != nil {
			return BundleReport{}, nil, errors.NewInternalError("analyzing bundle "+bundle.Name, err)
		}
		analysis := meta.Analyze(workDir)
		report.Analysis = &analysis
	}

	if b.opts.Write {
		if err := writeOutputs(result.OutputFiles); err != nil {
			return BundleReport{}, nil, err
		}
	}

	var artifacts []NativeArtifact
	if extension != "" {
		artifacts = nativeArtifacts(bundle.Name, extension, result.OutputFiles)
	}

	report.Duration = time.Since(start)
	for _, w := range report.Warnings {
		logger.Warn(ctx, nil, "Bundler warning", "message", w)
	}
	logger.Info(ctx, "Bundle built",
		"outputs", len(report.Outputs),
		"bytes", report.TotalBytes,
		"native_artifacts", len(artifacts),
		"duration_ms", report.Duration.Milliseconds())

	return report, artifacts, nil
}

func attachesBridge(d *directive.Directive, bundle directive.Bundle) bool {
	return d.Target == target.DesktopShell && bundle.Privileged && d.Desktop != nil
}

// esbuildOptions maps one bundle of a directive to esbuild's build options.
// Outputs are never written by esbuild itself.
func esbuildOptions(workDir string, d *directive.Directive, bundle directive.Bundle) (api.BuildOptions, error) {
	root := filepath.Join(workDir, filepath.FromSlash(d.Root))

	targets := d.BrowserTargets
	field := "build.target.browser"
	if bundle.Platform == directive.PlatformNode {
		targets = []string{d.NodeTarget}
		field = "build.target.node"
	}
	languageTarget, engines, err := ParseTargets(targets)
	if err != nil {
		return api.BuildOptions{}, errors.NewConfigurationError(field, err.Error())
	}

	loaders := make(map[string]api.Loader, len(d.Loaders))
	for ext, loader := range d.Loaders {
		l, err := esbuildLoader(loader)
		if err != nil {
			return api.BuildOptions{}, errors.NewConfigurationError("loaders", err.Error())
		}
		loaders[ext] = l
	}

	external := make([]string, 0, len(d.External)+len(bundle.External))
	external = append(external, d.External...)
	external = append(external, bundle.External...)

	define := make(map[string]string, len(d.Define))
	for k, v := range d.Define {
		define[k] = v
	}

	sourcemap := api.SourceMapNone
	if d.Sourcemap {
		sourcemap = api.SourceMapLinked
	}

	entryPoints := []string{filepath.Join(root, filepath.FromSlash(bundle.Entry))}
	for _, style := range bundle.Styles {
		entryPoints = append(entryPoints, filepath.Join(root, filepath.FromSlash(style)))
	}
	var inject []string
	for _, boot := range bundle.Inject {
		inject = append(inject, filepath.Join(root, filepath.FromSlash(boot)))
	}

	return api.BuildOptions{
		EntryPoints:       entryPoints,
		Inject:            inject,
		Outdir:            filepath.Join(root, filepath.FromSlash(bundle.OutDir)),
		AbsWorkingDir:     workDir,
		PublicPath:        publicPath(d, bundle),
		Bundle:            true,
		Write:             false,
		Metafile:          true,
		LogLevel:          api.LogLevelSilent,
		Platform:          esbuildPlatform(bundle.Platform),
		Format:            esbuildFormat(bundle.Format),
		Target:            languageTarget,
		Engines:           engines,
		Loader:            loaders,
		Define:            define,
		External:          external,
		Sourcemap:         sourcemap,
		MinifyWhitespace:  d.Minify,
		MinifyIdentifiers: d.Minify,
		MinifySyntax:      d.Minify,
	}, nil
}

// publicPath applies to browser bundles only; node bundles load assets
// relative to themselves.
func publicPath(d *directive.Directive, bundle directive.Bundle) string {
	if bundle.Platform == directive.PlatformNode || d.PublicPath == "/" {
		return ""
	}
	return d.PublicPath
}

func esbuildPlatform(p directive.Platform) api.Platform {
	if p == directive.PlatformNode {
		return api.PlatformNode
	}
	return api.PlatformBrowser
}

func esbuildFormat(f directive.Format) api.Format {
	switch f {
	case directive.FormatCommonJS:
		return api.FormatCommonJS
	case directive.FormatIIFE:
		return api.FormatIIFE
	default:
		return api.FormatESModule
	}
}

func esbuildLoader(l directive.Loader) (api.Loader, error) {
	switch l {
	case directive.LoaderFile:
		return api.LoaderFile, nil
	case directive.LoaderText:
		return api.LoaderText, nil
	case directive.LoaderJSON:
		return api.LoaderJSON, nil
	default:
		return api.LoaderNone, fmt.Errorf("unsupported loader %q", l)
	}
}

// classify turns esbuild errors into a build error. Messages are kept as
// esbuild reported them.
func classify(bundle string, messages []api.Message) *errors.Error {
	texts := messageTexts(messages)

	code := errors.ErrCodeBuildFailed
	for _, msg := range messages {
		if strings.HasPrefix(msg.Text, "Could not resolve") {
			code = errors.ErrCodeModuleNotFound
			break
		}
	}

	return errors.NewBuildError(code, fmt.Sprintf("%d bundler error(s)", len(texts)), texts).
		WithBundle(bundle)
}

func messageTexts(messages []api.Message) []string {
	if len(messages) == 0 {
		return nil
	}
	texts := make([]string, 0, len(messages))
	for _, msg := range messages {
		text := msg.Text
		if msg.Location != nil {
			text = fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
		}
		texts = append(texts, text)
	}
	return texts
}

func writeOutputs(outputs []api.OutputFile) error {
	for _, out := range outputs {
		if err := os.MkdirAll(filepath.Dir(out.Path), 0o755); err != nil {
			return errors.NewIOError(errors.ErrCodeInternalError, "creating output directory", err)
		}
		if err := os.WriteFile(out.Path, out.Contents, 0o644); err != nil {
			return errors.NewIOError(errors.ErrCodeInternalError, "writing "+out.Path, err)
		}
	}
	return nil
}
