package cmd

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"

	idoerr "github.com/msto63/idoutils/foundation/core/error"
	idoerrors "github.com/msto63/idoutils/foundation/core/errors"
	idolog "github.com/msto63/idoutils/foundation/core/log"
	"github.com/msto63/idoutils/foundation/utils/dbuf"
	"github.com/msto63/idoutils/foundation/utils/filex"
	"github.com/msto63/idoutils/pkg/core/config"
	"github.com/msto63/idoutils/pkg/core/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "idoutils",
	Short: "IDO data-out utilities",
	Long: `idoutils bundles the low-level helpers of the IDO data-out path:

  move     - move a file, copying across filesystems when needed
  strip    - trim surrounding whitespace from lines
  encode   - build a delimited record
  replay   - decode the records of a spool file
  spool    - append to, rotate and inspect the spool file
  archive  - archive files, optionally watching an inbox
  prune    - drop old catalog entries
  status   - show spool and archive state`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $IDOUTILS_CONFIG or ./configs/idoutils.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the config file named by --config, or the discovered
// one. Without any config file the defaults are used.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}

	cfg, err := config.LoadFromEnv()
	if idoerr.HasCode(err, idoerr.CodeNotFound) {
		return config.Default(), nil
	}
	return cfg, err
}

func newLogger(cfg *config.Config) *idolog.Logger {
	lc := logging.DefaultLoggerConfig(cfg.General.Name)
	lc.Level = cfg.General.LogLevel
	lc.Format = cfg.General.LogFormat
	if verbose {
		lc.Level = "debug"
	}
	return logging.NewLogger(lc)
}

func bufferOptions(cfg *config.Config) dbuf.Options {
	opts := dbuf.DefaultOptions()
	if cfg.Buffer.MaxAllocation > 0 {
		opts.Allocator = dbuf.HeapAllocator{Limit: int(cfg.Buffer.MaxAllocation)}
	}
	return opts
}

func moveOptions(cfg *config.Config) filex.MoveOptions {
	opts := filex.DefaultMoveOptions()
	opts.BufferSize = int(cfg.Move.BufferSize)
	opts.Sync = cfg.Move.Sync
	return opts
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("error:"), err)
	if !verbose {
		return
	}
	if module := idoerrors.ExtractModule(err); module != "" {
		fmt.Fprintf(os.Stderr, "  module=%s\n", module)
	}
	details := idoerrors.ExtractDetails(err)
	for _, k := range slices.Sorted(maps.Keys(details)) {
		if k != "module" {
			fmt.Fprintf(os.Stderr, "  %s=%v\n", k, details[k])
		}
	}
}
