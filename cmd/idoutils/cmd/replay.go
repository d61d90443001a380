package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	idoerrors "github.com/msto63/idoutils/foundation/core/errors"
	"github.com/msto63/idoutils/internal/record"
	"github.com/msto63/idoutils/internal/spool"
)

var replayFormat string

var replayCmd = &cobra.Command{
	Use:   "replay FILE",
	Short: "Decode the records of a spool file",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().StringVarP(&replayFormat, "format", "f", "text", "output format: text or yaml")
}

func runReplay(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	var emit func(record.Record) error
	switch replayFormat {
	case "text":
		emit = func(r record.Record) error {
			return writeRecordText(out, r)
		}
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		emit = func(r record.Record) error {
			return enc.Encode(r)
		}
	default:
		return idoerrors.InvalidArgument(idoerrors.ModuleRecord, "replay", "format", "must be text or yaml")
	}

	n, err := spool.Replay(args[0], emit)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d records\n", n)
	}
	return nil
}

func writeRecordText(w io.Writer, r record.Record) error {
	if _, err := fmt.Fprintf(w, "%s\n", r.Type); err != nil {
		return err
	}
	for _, f := range r.Fields {
		if _, err := fmt.Fprintf(w, "  %s = %s\n", f.Key, strconv.Quote(f.Value)); err != nil {
			return err
		}
	}
	return nil
}
