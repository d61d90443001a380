package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/idoutils/foundation/utils/filex"
	"github.com/msto63/idoutils/foundation/utils/timex"
	"github.com/msto63/idoutils/internal/archive"
	"github.com/msto63/idoutils/internal/spool"
	"github.com/msto63/idoutils/pkg/core/config"
	"github.com/msto63/idoutils/pkg/core/health"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show spool and archive state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().IntVarP(&statusLimit, "limit", "n", 5, "number of recent archive entries to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	spoolPath := filepath.Join(cfg.Spool.Dir, cfg.Spool.Name+spool.Extension)

	var catalog archive.Catalog
	if filex.Exists(cfg.Archive.CatalogPath) {
		c, err := archive.NewSQLiteCatalog(archive.SQLiteCatalogConfig{Path: cfg.Archive.CatalogPath})
		if err != nil {
			return err
		}
		defer c.Close()
		catalog = c
	}

	fmt.Fprintln(out, titleStyle.Render(cfg.General.Name+" status"))

	fmt.Fprintln(out, sectionStyle.Render("Spool"))
	fmt.Fprintln(out, row("file", spoolPath))
	if size, err := filex.Size(spoolPath); err == nil {
		fmt.Fprintln(out, row("size", fmt.Sprintf("%s of %s",
			filex.FormatSize(size), filex.FormatSize(int64(cfg.Spool.MaxSize)))))
	} else {
		fmt.Fprintln(out, row("size", mutedStyle.Render("no spool file")))
	}
	rotate := "disabled"
	if cfg.Spool.RotateInterval.Duration > 0 {
		rotate = cfg.Spool.RotateInterval.String()
	}
	fmt.Fprintln(out, row("rotate every", rotate))

	fmt.Fprintln(out, sectionStyle.Render("Archive"))
	fmt.Fprintln(out, row("directory", cfg.Archive.Dir))
	fmt.Fprintln(out, row("inbox", cfg.Archive.InboxDir+" ("+cfg.Archive.Pattern+")"))
	if catalog == nil {
		fmt.Fprintln(out, row("catalog", mutedStyle.Render("not created yet")))
	} else if err := printCatalog(ctx, cmd, catalog); err != nil {
		return err
	}

	report := statusChecks(cfg, spoolPath, catalog).Check(ctx)
	fmt.Fprintln(out, sectionStyle.Render("Checks"))
	for _, c := range report.Checks {
		fmt.Fprintln(out, row(c.Name, statusBadge(c.Status)+" "+mutedStyle.Render(c.Message)))
	}
	return nil
}

func printCatalog(ctx context.Context, cmd *cobra.Command, catalog archive.Catalog) error {
	out := cmd.OutOrStdout()

	stats, err := catalog.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, row("files", fmt.Sprintf("%d", stats.Count)))
	fmt.Fprintln(out, row("total", filex.FormatSize(stats.TotalBytes)+" "+
		mutedStyle.Render("("+filex.FormatSize(stats.StoredBytes)+" on disk)")))
	if stats.Count > 0 {
		fmt.Fprintln(out, row("last", stats.LastArchived.Local().Format(time.DateTime)+" "+
			mutedStyle.Render("("+timex.Ago(stats.LastArchived, time.Now())+")")))
	}

	if statusLimit <= 0 || stats.Count == 0 {
		return nil
	}

	entries, err := catalog.List(ctx, statusLimit)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, sectionStyle.Render("Recent"))
	for _, e := range entries {
		fmt.Fprintf(out, "  %s %s %s\n",
			mutedStyle.Render(e.ArchivedAt.Local().Format(time.DateTime)),
			e.Destination,
			okStyle.Render(filex.FormatSize(e.Size)))
	}
	return nil
}

func statusChecks(cfg *config.Config, spoolPath string, catalog archive.Catalog) *health.Registry {
	reg := health.NewRegistry(cfg.General.Name)
	reg.Register(health.WritableDirCheck("spool dir", cfg.Spool.Dir))
	reg.Register(health.FileSizeCheck("spool size", spoolPath, int64(cfg.Spool.MaxSize)))
	reg.Register(health.WritableDirCheck("archive dir", cfg.Archive.Dir))
	reg.Register(health.WritableDirCheck("inbox", cfg.Archive.InboxDir))
	if catalog != nil {
		reg.Register(health.ErrorCheck("catalog", func(ctx context.Context) error {
			_, err := catalog.Stats(ctx)
			return err
		}))
	}
	return reg
}

func statusBadge(s health.Status) string {
	switch s {
	case health.StatusHealthy:
		return okStyle.Render("ok")
	case health.StatusDegraded:
		return warnStyle.Render("warn")
	default:
		return errorStyle.Render("fail")
	}
}
