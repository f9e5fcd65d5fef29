package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/targetforge/internal/build"
	"github.com/conneroisu/targetforge/internal/directive"
	"github.com/conneroisu/targetforge/internal/logging"
	"github.com/conneroisu/targetforge/internal/watcher"
)

var (
	watchFlags    TargetFlags
	watchDebounce time.Duration
	watchVerbose  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild a target whenever its sources change",
	Long: `Build the selected target once, then watch the project tree and rebuild
after every batch of source changes. Output files are always written.

Examples:
  targetforge watch --target web
  targetforge watch --target desktop-shell --debounce 500ms
  targetforge watch -t ssr --verbose`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addTargetFlags(watchCmd, &watchFlags)

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period before a rebuild")
	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "log every changed file")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	d, err := resolveDirective(&watchFlags)
	if err != nil {
		return err
	}
	dir, err := projectDir()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := commandLogger(cmd).With("target", d.Target.String())
	builder := build.New(build.Options{Write: true, AbsWorkingDir: dir, Logger: logger})
	metrics := build.NewMetrics()

	rebuild := func(ctx context.Context) {
		start := time.Now()
		report, err := builder.Build(ctx, d)
		metrics.Record(report, err, time.Since(start))
		if err != nil {
			logger.Warn(ctx, err, "Build failed")
			return
		}
		snap := metrics.Snapshot()
		logger.Info(ctx, "Build succeeded",
			"bundles", len(report.Bundles),
			"bytes", report.TotalBytes(),
			"native_artifacts", len(report.NativeArtifacts),
			"builds", snap.TotalBuilds,
			"success_rate", fmt.Sprintf("%.0f%%", metrics.SuccessRate()))
	}

	fileWatcher, err := newProjectWatcher(dir, d, logger)
	if err != nil {
		return err
	}
	defer fileWatcher.Stop()

	fileWatcher.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		if watchVerbose {
			for _, event := range events {
				logger.Info(ctx, "File changed", "type", event.Type.String(), "path", displayPath(dir, event.Path))
			}
		} else {
			logger.Info(ctx, "Files changed", "count", len(events))
		}
		rebuild(ctx)
		return nil
	})

	rebuild(ctx)

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	logger.Info(ctx, "Watching for changes", "dirs", len(fileWatcher.WatchedPaths()))

	<-ctx.Done()
	logger.Info(context.Background(), "Stopping file watcher")
	return nil
}

// newProjectWatcher watches dir for source changes, ignoring the
// directive's output tree.
func newProjectWatcher(dir string, d *directive.Directive, logger logging.Logger) (*watcher.FileWatcher, error) {
	fileWatcher, err := watcher.New(watcher.Options{Debounce: watchDebounce, Logger: logger})
	if err != nil {
		return nil, err
	}

	fileWatcher.AddFilter(watcher.SourceFilter)
	fileWatcher.AddFilter(watcher.NoDirFilter("node_modules"))
	fileWatcher.AddFilter(watcher.NoOutputFilter(filepath.Join(dir, d.Root, d.DistDir)))

	if err := fileWatcher.AddRecursive(dir); err != nil {
		_ = fileWatcher.Stop()
		return nil, err
	}
	return fileWatcher, nil
}
