package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	idoerrors "github.com/msto63/idoutils/foundation/core/errors"
	"github.com/msto63/idoutils/foundation/utils/filex"
	"github.com/msto63/idoutils/internal/archive"
)

var (
	archiveWatch   bool
	archiveInbox   string
	archivePattern string
	archiveSettle  time.Duration
)

var archiveCmd = &cobra.Command{
	Use:   "archive [FILE...]",
	Short: "Move files into the archive and record them in the catalog",
	Long: `Moves the given files into the archive directory and records each move in
the catalog. With --watch the inbox directory is watched instead and every
file matching the pattern is archived once it stops changing.`,
	RunE: runArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.Flags().BoolVarP(&archiveWatch, "watch", "w", false, "watch the inbox until interrupted")
	archiveCmd.Flags().StringVar(&archiveInbox, "inbox", "", "inbox directory (default from config)")
	archiveCmd.Flags().StringVar(&archivePattern, "pattern", "", "file name glob (default from config)")
	archiveCmd.Flags().DurationVar(&archiveSettle, "settle", archive.DefaultSettle, "quiet period before a changed file is archived")
}

func runArchive(cmd *cobra.Command, args []string) error {
	if !archiveWatch && len(args) == 0 {
		return idoerrors.InvalidArgument(idoerrors.ModuleArchive, "archive", "files", "no files given, use --watch to watch the inbox")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	a, cleanup, err := openArchiver(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()

	if archiveWatch {
		inbox := archiveInbox
		if inbox == "" {
			inbox = cfg.Archive.InboxDir
		}
		pattern := archivePattern
		if pattern == "" {
			pattern = cfg.Archive.Pattern
		}

		w, err := archive.NewWatcher(archive.WatcherConfig{
			InboxDir: inbox,
			Pattern:  pattern,
			Settle:   archiveSettle,
		}, a, logger)
		if err != nil {
			return err
		}
		if err := w.Run(ctx); err != nil {
			return err
		}

		archived, failed := w.Counts()
		fmt.Fprintf(cmd.OutOrStdout(), "archived=%d failed=%d\n", archived, failed)
		return nil
	}

	var firstErr error
	for _, path := range args {
		entry, err := a.Archive(ctx, path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %v\n", errorStyle.Render("failed"), path, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s (%s)\n",
			okStyle.Render("archived"), path, entry.Destination, filex.FormatSize(entry.Size))
	}
	return firstErr
}
