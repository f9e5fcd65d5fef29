package cmd

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/targetforge/internal/directive"
	"github.com/conneroisu/targetforge/internal/output"
)

var resolveFlags TargetFlags

var resolveCmd = &cobra.Command{
	Use:     "resolve",
	Aliases: []string{"r"},
	Short:   "Print the build directive for a target",
	Long: `Resolve the configuration for one deployment target into the flat build
directive used by the build command, with every default applied.

Examples:
  targetforge resolve --target desktop-shell
  targetforge resolve --target ssr -o json
  targetforge resolve -t bex -o yaml`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	addTargetFlags(resolveCmd, &resolveFlags)
	addOutputFlags(resolveCmd, &resolveFlags)
}

func runResolve(cmd *cobra.Command, _ []string) error {
	d, err := resolveDirective(&resolveFlags)
	if err != nil {
		return err
	}

	formatter, err := resolveFlags.formatter(cmd)
	if err != nil {
		return err
	}
	if formatter.Format.Structured() {
		return formatter.Print(d)
	}
	return printDirective(formatter, d)
}

func resolveDirective(flags *TargetFlags) (*directive.Directive, error) {
	t, err := flags.target()
	if err != nil {
		return nil, err
	}
	spec, err := loadSpec()
	if err != nil {
		return nil, err
	}
	return directive.Resolve(spec, t)
}

func printDirective(f *output.Formatter, d *directive.Directive) error {
	pairs := [][2]string{
		{"Target", d.Target.String()},
		{"Name", d.Name},
		{"Root", d.Root},
		{"Dist dir", d.DistDir},
		{"Public path", d.PublicPath},
		{"Router mode", d.RouterMode},
		{"Browser targets", strings.Join(d.BrowserTargets, ", ")},
		{"Node target", d.NodeTarget},
		{"Minify", strconv.FormatBool(d.Minify)},
		{"Sourcemap", strconv.FormatBool(d.Sourcemap)},
		{"Dev server", d.DevServer.Host + ":" + strconv.Itoa(d.DevServer.Port)},
	}
	if d.Desktop != nil {
		pairs = append(pairs,
			[2]string{"Desktop bundler", d.Desktop.Bundler},
			[2]string{"Native extension", d.Desktop.NativeExtension})
	}
	if d.SSR != nil {
		pairs = append(pairs, [2]string{"SSR port", strconv.Itoa(d.SSR.ProdPort)})
	}
	if d.Mobile != nil {
		pairs = append(pairs, [2]string{"Mobile shell", d.Mobile.Shell})
	}
	if err := f.PrintKeyValues(pairs); err != nil {
		return err
	}

	if _, err := f.Writer.Write([]byte("\n")); err != nil {
		return err
	}

	rows := make([][]string, 0, len(d.Bundles))
	for _, b := range d.Bundles {
		rows = append(rows, []string{
			b.Name,
			strings.Join(append(append(append([]string(nil), b.Inject...), b.Entry), b.Styles...), ","),
			b.OutDir,
			string(b.Platform),
			string(b.Format),
			strings.Join(b.External, ","),
			strconv.FormatBool(b.Privileged),
		})
	}
	return f.PrintTable(output.TableData{
		Headers: []string{"Bundle", "Entry", "Out Dir", "Platform", "Format", "External", "Privileged"},
		Rows:    rows,
	})
}
