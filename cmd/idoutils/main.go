package main

import (
	"os"

	"github.com/msto63/idoutils/cmd/idoutils/cmd"
	idoerr "github.com/msto63/idoutils/foundation/core/error"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(idoerr.GetCode(err).ExitCode())
	}
}
