package cmd

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/msto63/idoutils/foundation/utils/stringx"
)

var stripReport bool

var stripCmd = &cobra.Command{
	Use:   "strip [TEXT...]",
	Short: "Trim surrounding whitespace",
	Long: `Trims leading and trailing spaces, tabs, carriage returns and newlines.
Each argument is trimmed separately. Without arguments stdin is trimmed
line by line.`,
	RunE: runStrip,
}

func init() {
	rootCmd.AddCommand(stripCmd)
	stripCmd.Flags().BoolVar(&stripReport, "report", false, "print how many inputs were changed to stderr")
}

func runStrip(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	var trimmed, unchanged int

	emit := func(line []byte) {
		result, res := stringx.Strip(line)
		if res == stringx.StripTrimmed {
			trimmed++
		} else {
			unchanged++
		}
		fmt.Fprintf(out, "%s\n", result)
	}

	if len(args) > 0 {
		for _, a := range args {
			emit([]byte(a))
		}
	} else if err := stripLines(cmd.InOrStdin(), emit); err != nil {
		return err
	}

	if stripReport {
		fmt.Fprintf(cmd.ErrOrStderr(), "trimmed=%d unchanged=%d\n", trimmed, unchanged)
	}
	return nil
}

// stripLines passes each line of r, without its newline, to emit.
// The scanner owns the line buffer, so Strip works on it in place.
func stripLines(r io.Reader, emit func([]byte)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		emit(scanner.Bytes())
	}
	return scanner.Err()
}
