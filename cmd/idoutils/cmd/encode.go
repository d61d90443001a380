package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	idoerrors "github.com/msto63/idoutils/foundation/core/errors"
	"github.com/msto63/idoutils/internal/record"
)

var encodeCmd = &cobra.Command{
	Use:     "encode TYPE [KEY=VALUE...]",
	Short:   "Encode one record to stdout",
	Example: `  idoutils encode hoststatus host=web01 state=0 "output=PING OK"`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runEncode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
}

func runEncode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rec, err := parseRecord(args)
	if err != nil {
		return err
	}

	enc, err := record.NewEncoder(cfg.Buffer.ChunkSize, bufferOptions(cfg))
	if err != nil {
		return err
	}
	defer enc.Release()

	if err := enc.Encode(rec); err != nil {
		return err
	}
	_, err = enc.WriteTo(cmd.OutOrStdout())
	return err
}

// parseRecord builds a record from a type and KEY=VALUE arguments
func parseRecord(args []string) (record.Record, error) {
	rec := record.Record{Type: args[0]}
	for _, arg := range args[1:] {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return record.Record{}, idoerrors.InvalidArgument(idoerrors.ModuleRecord, "encode", arg, "expected KEY=VALUE")
		}
		rec.Fields = append(rec.Fields, record.Field{Key: key, Value: value})
	}
	return rec, nil
}
