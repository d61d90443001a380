package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/idoutils/foundation/utils/filex"
)

var moveSync bool

var moveCmd = &cobra.Command{
	Use:   "move SRC DST",
	Short: "Move a file, copying across filesystems when needed",
	Long: `Moves SRC to DST. If both are on the same filesystem the file is renamed.
Otherwise its content is copied to DST and SRC is removed afterwards.`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

func init() {
	rootCmd.AddCommand(moveCmd)
	moveCmd.Flags().BoolVar(&moveSync, "sync", false, "fsync the destination after a copy")
}

func runMove(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	opts := moveOptions(cfg)
	if moveSync {
		opts.Sync = true
	}

	timer := logger.StartTimer("move").WithField("source", args[0]).WithField("destination", args[1])
	if err := filex.Move(args[0], args[1], opts); err != nil {
		timer.StopWithError(err)
		return err
	}
	timer.Stop()

	if verbose {
		size, _ := filex.Size(args[1])
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", args[0], args[1], filex.FormatSize(size))
	}
	return nil
}
