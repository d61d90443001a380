package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/idoutils/pkg/core/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "idoutils v%s\n", info.Version)
		fmt.Fprintf(out, "  Git Commit: %s\n", info.GitCommit)
		fmt.Fprintf(out, "  Build Date: %s\n", info.BuildDate)
		fmt.Fprintf(out, "  Go Version: %s\n", info.GoVersion)
		fmt.Fprintf(out, "  OS/Arch:    %s\n", info.Platform)

		if verbose {
			fmt.Fprintln(out, "  Components:")
			for _, name := range []string{"dbuf", "filex", "stringx", "record", "spool", "archive"} {
				fmt.Fprintf(out, "    %-8s %s\n", name, version.ComponentVersion(name))
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
