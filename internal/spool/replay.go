package spool

import (
	idoerrors "github.com/msto63/idoutils/foundation/core/errors"
	"github.com/msto63/idoutils/internal/archive"
	"github.com/msto63/idoutils/internal/record"
)

// Replay decodes every record in the spool file at path and passes it to
// fn. Compressed archive files are accepted. It returns the number of
// records delivered.
func Replay(path string, fn func(record.Record) error, options ...record.DecoderOptions) (int, error) {
	f, err := archive.OpenReader(path)
	if err != nil {
		return 0, idoerrors.IOFailure(idoerrors.ModuleSpool, "replay", path, err)
	}
	defer f.Close()

	dec := record.NewDecoder(f, options...)
	return dec.DecodeAll(fn)
}
