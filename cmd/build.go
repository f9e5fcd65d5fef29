package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/targetforge/internal/build"
	"github.com/conneroisu/targetforge/internal/output"
)

var (
	buildFlags   TargetFlags
	buildWrite   bool
	buildAnalyze bool
	buildTop     int
)

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"b"},
	Short:   "Bundle every entry point of a target",
	Long: `Resolve the configuration for one deployment target and bundle each of its
entry points with esbuild. Without --write the build only reports what it
would produce.

Native ".node" addons may only be imported from the desktop shell's preload
bundle. They are copied next to the bundle and listed with their BLAKE3
digest.

Examples:
  targetforge build --target web --write
  targetforge build --target desktop-shell --write --analyze
  targetforge build -t ssr -o json`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	addTargetFlags(buildCmd, &buildFlags)
	addOutputFlags(buildCmd, &buildFlags)

	buildCmd.Flags().BoolVarP(&buildWrite, "write", "w", false, "write output files to disk")
	buildCmd.Flags().BoolVar(&buildAnalyze, "analyze", false, "report each input's share of the bundle size")
	buildCmd.Flags().IntVar(&buildTop, "top", 10, "number of inputs listed per bundle with --analyze")
}

func runBuild(cmd *cobra.Command, _ []string) error {
	d, err := resolveDirective(&buildFlags)
	if err != nil {
		return err
	}
	formatter, err := buildFlags.formatter(cmd)
	if err != nil {
		return err
	}
	dir, err := projectDir()
	if err != nil {
		return err
	}

	builder := build.New(build.Options{
		Write:         buildWrite,
		AbsWorkingDir: dir,
		Analyze:       buildAnalyze,
		Logger:        commandLogger(cmd),
	})

	report, err := builder.Build(cmd.Context(), d)
	if err != nil {
		return err
	}

	if formatter.Format.Structured() {
		return formatter.Print(report)
	}
	return printReport(formatter, report, dir)
}

func printReport(f *output.Formatter, report *build.Report, dir string) error {
	rows := make([][]string, 0, len(report.Bundles))
	for _, b := range report.Bundles {
		rows = append(rows, []string{
			b.Name,
			displayPath(dir, b.OutDir),
			strconv.Itoa(len(b.Outputs)),
			output.HumanBytes(b.TotalBytes),
			strconv.FormatBool(b.Privileged),
			b.Duration.Round(time.Millisecond).String(),
		})
	}
	if err := f.PrintTable(output.TableData{
		Headers: []string{"Bundle", "Out Dir", "Files", "Size", "Privileged", "Duration"},
		Rows:    rows,
	}); err != nil {
		return err
	}

	if len(report.NativeArtifacts) > 0 {
		fmt.Fprintln(f.Writer)
		rows = rows[:0]
		for _, a := range report.NativeArtifacts {
			rows = append(rows, []string{a.Bundle, displayPath(dir, a.Path), output.HumanBytes(a.Size), a.Digest})
		}
		if err := f.PrintTable(output.TableData{
			Headers: []string{"Bundle", "Native Binary", "Size", "BLAKE3"},
			Rows:    rows,
		}); err != nil {
			return err
		}
	}

	for _, b := range report.Bundles {
		if b.Analysis == nil {
			continue
		}
		fmt.Fprintf(f.Writer, "\n%s inputs:\n", b.Name)
		rows = rows[:0]
		for i, in := range b.Analysis.Inputs {
			if buildTop > 0 && i >= buildTop {
				break
			}
			rows = append(rows, []string{in.Path, output.HumanBytes(in.BytesInOutput), fmt.Sprintf("%.1f%%", in.Percentage)})
		}
		if err := f.PrintTable(output.TableData{Headers: []string{"Input", "In Output", "Share"}, Rows: rows}); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(f.Writer, "\nBuilt %d bundle(s) for %s, %s in %s\n",
		len(report.Bundles), report.Target, output.HumanBytes(report.TotalBytes()), report.Duration.Round(time.Millisecond))
	return err
}

func displayPath(dir, path string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	if rel, err := filepath.Rel(dir, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}
