package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	idolog "github.com/msto63/idoutils/foundation/core/log"
	"github.com/msto63/idoutils/foundation/utils/filex"
	"github.com/msto63/idoutils/internal/archive"
	"github.com/msto63/idoutils/internal/spool"
	"github.com/msto63/idoutils/pkg/core/config"
)

var spoolNoArchive bool

var spoolCmd = &cobra.Command{
	Use:   "spool",
	Short: "Append to, rotate and inspect the spool file",
}

var spoolWriteCmd = &cobra.Command{
	Use:   "write TYPE [KEY=VALUE...]",
	Short: "Append one record to the spool file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSpoolWrite,
}

var spoolRotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Rotate the spool file into the archive",
	Args:  cobra.NoArgs,
	RunE:  runSpoolRotate,
}

func init() {
	rootCmd.AddCommand(spoolCmd)
	spoolCmd.AddCommand(spoolWriteCmd, spoolRotateCmd)
	spoolCmd.PersistentFlags().BoolVar(&spoolNoArchive, "no-archive", false, "keep rotated files in the spool directory")
}

// openSpool opens the configured spool. Unless archiving is disabled the
// returned cleanup also closes the archive catalog.
func openSpool(cfg *config.Config, logger *idolog.Logger) (*spool.Spool, func(), error) {
	var arch spool.Archiver
	closeArchive := func() {}

	if !spoolNoArchive {
		a, cleanup, err := openArchiver(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		arch = a
		closeArchive = cleanup
	}

	s, err := spool.Open(spool.Config{
		Dir:            cfg.Spool.Dir,
		Name:           cfg.Spool.Name,
		MaxSize:        int64(cfg.Spool.MaxSize),
		RotateInterval: cfg.Spool.RotateInterval.Duration,
		ChunkSize:      cfg.Buffer.ChunkSize,
		MaxAllocation:  int(cfg.Buffer.MaxAllocation),
	}, arch, logger)
	if err != nil {
		closeArchive()
		return nil, nil, err
	}

	return s, func() {
		s.Close()
		closeArchive()
	}, nil
}

// openArchiver opens the catalog and the archiver built on it
func openArchiver(cfg *config.Config, logger *idolog.Logger) (*archive.Archiver, func(), error) {
	catalog, err := archive.NewSQLiteCatalog(archive.SQLiteCatalogConfig{Path: cfg.Archive.CatalogPath})
	if err != nil {
		return nil, nil, err
	}

	a, err := archive.NewArchiver(archive.Config{
		Dir:         cfg.Archive.Dir,
		MoveOptions: moveOptions(cfg),
		Compress:    cfg.Archive.Compress,
	}, catalog, logger)
	if err != nil {
		catalog.Close()
		return nil, nil, err
	}
	return a, func() { catalog.Close() }, nil
}

func runSpoolWrite(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	rec, err := parseRecord(args)
	if err != nil {
		return err
	}

	s, cleanup, err := openSpool(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := s.Write(cmd.Context(), rec); err != nil {
		return err
	}

	stats := s.Stats()
	logger.Debug("record spooled", idolog.Fields{"path": stats.Path, "size": stats.Size})
	return nil
}

func runSpoolRotate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	s, cleanup, err := openSpool(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	entry, err := s.Rotate(cmd.Context())
	if err != nil {
		return err
	}
	if entry == nil {
		fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("spool is empty, nothing to rotate"))
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n",
		okStyle.Render("rotated"), entry.Destination, filex.FormatSize(entry.Size))
	return nil
}
