package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/targetforge/internal/output"
	"github.com/conneroisu/targetforge/internal/target"
)

// TargetFlags are shared by every command that works on one target.
type TargetFlags struct {
	Target       string
	OutputFormat output.Format
	NoHeaders    bool
}

func addTargetFlags(cmd *cobra.Command, flags *TargetFlags) {
	cmd.Flags().StringVarP(&flags.Target, "target", "t", target.Web.String(),
		"deployment target ("+strings.Join(target.Names(), ", ")+")")
	_ = cmd.RegisterFlagCompletionFunc("target", completeTargets)
}

func addOutputFlags(cmd *cobra.Command, flags *TargetFlags) {
	flags.OutputFormat = output.FormatTable
	cmd.Flags().VarP(&flags.OutputFormat, "output", "o", "output format (table, json, yaml)")
	cmd.Flags().BoolVar(&flags.NoHeaders, "no-headers", false, "omit table headers")
	_ = cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		formats := make([]string, len(output.Formats))
		for i, f := range output.Formats {
			formats[i] = string(f)
		}
		return formats, cobra.ShellCompDirectiveNoFileComp
	})
}

func completeTargets(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, t := range target.All() {
		names = append(names, t.String())
		names = append(names, t.Aliases()...)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func (f *TargetFlags) target() (target.Target, error) {
	return target.Parse(f.Target)
}

func (f *TargetFlags) formatter(cmd *cobra.Command) (*output.Formatter, error) {
	format, err := output.ParseFormat(string(f.OutputFormat))
	if err != nil {
		return nil, err
	}
	formatter := output.NewFormatter(format, cmd.OutOrStdout())
	formatter.NoHeaders = f.NoHeaders
	return formatter, nil
}
