package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/targetforge/internal/version"
)

var (
	versionFlags TargetFlags
	versionShort bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Show the targetforge version, build details and the bundled esbuild version.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := version.Get()
		if versionShort {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), info.Short())
			return err
		}

		formatter, err := versionFlags.formatter(cmd)
		if err != nil {
			return err
		}
		if formatter.Format.Structured() {
			return formatter.Print(info)
		}
		return formatter.PrintKeyValues(info.Pairs())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	addOutputFlags(versionCmd, &versionFlags)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version number")
}
