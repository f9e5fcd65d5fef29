package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/conneroisu/targetforge/internal/output"
	"github.com/conneroisu/targetforge/internal/target"
)

var targetsFlags TargetFlags

var targetsCmd = &cobra.Command{
	Use:     "targets",
	Aliases: []string{"ls"},
	Short:   "List the deployment targets",
	Long: `List every deployment target with its build mode, accepted aliases and a
short description.

Examples:
  targetforge targets
  targetforge targets -o json`,
	Args: cobra.NoArgs,
	RunE: runTargets,
}

func init() {
	rootCmd.AddCommand(targetsCmd)
	addOutputFlags(targetsCmd, &targetsFlags)
}

func runTargets(cmd *cobra.Command, _ []string) error {
	formatter, err := targetsFlags.formatter(cmd)
	if err != nil {
		return err
	}

	title := cases.Title(language.English)
	var rows [][]string
	for _, t := range target.All() {
		rows = append(rows, []string{
			t.String(),
			title.String(strings.ReplaceAll(t.String(), "-", " ")),
			t.Mode(),
			strings.Join(t.Aliases(), ", "),
			t.Description(),
		})
	}

	return formatter.PrintTable(output.TableData{
		Headers: []string{"Target", "Name", "Mode", "Aliases", "Description"},
		Rows:    rows,
	})
}
