package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	idoerrors "github.com/msto63/idoutils/foundation/core/errors"
	idolog "github.com/msto63/idoutils/foundation/core/log"
	"github.com/msto63/idoutils/foundation/utils/timex"
	"github.com/msto63/idoutils/internal/archive"
)

var pruneOlderThan string

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old entries from the archive catalog",
	Long: `Removes catalog entries older than the retention period. Archived files
are not deleted.`,
	Example: `  idoutils prune --older-than 30d
  idoutils prune --older-than "2 weeks"`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)
	pruneCmd.Flags().StringVar(&pruneOlderThan, "older-than", "", "age limit (default: archive.retention from config)")
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	age := cfg.Archive.Retention.Duration
	if pruneOlderThan != "" {
		age, err = timex.ParseDuration(pruneOlderThan)
		if err != nil {
			return idoerrors.InvalidArgument(idoerrors.ModuleArchive, "prune", "older-than", err.Error())
		}
	}

	catalog, err := archive.NewSQLiteCatalog(archive.SQLiteCatalogConfig{Path: cfg.Archive.CatalogPath})
	if err != nil {
		return err
	}
	defer catalog.Close()

	deleted, err := catalog.Prune(cmd.Context(), age)
	if err != nil {
		return err
	}

	newLogger(cfg).Info("catalog pruned", idolog.Fields{
		"deleted":    deleted,
		"older_than": timex.FormatDurationCompact(age),
	})
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d entries older than %s\n",
		okStyle.Render("pruned"), deleted, timex.FormatDurationCompact(age))
	return nil
}
