package archive

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	idoerrors "github.com/msto63/idoutils/foundation/core/errors"
)

// CompressedExt is appended to archived files stored compressed
const CompressedExt = ".zst"

// compressFile writes path+".zst" and removes path. It returns the new path
// and its size. On failure the uncompressed file is kept.
func compressFile(path string) (string, int64, error) {
	dst := path + CompressedExt

	in, err := os.Open(path)
	if err != nil {
		return "", 0, idoerrors.IOFailure(idoerrors.ModuleArchive, "compress", path, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return "", 0, idoerrors.IOFailure(idoerrors.ModuleArchive, "compress", dst, err)
	}

	fail := func(err error) (string, int64, error) {
		out.Close()
		os.Remove(dst)
		return "", 0, idoerrors.IOFailure(idoerrors.ModuleArchive, "compress", dst, err)
	}

	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fail(err)
	}
	if _, err := io.Copy(enc, in); err != nil {
		enc.Close()
		return fail(err)
	}
	if err := enc.Close(); err != nil {
		return fail(err)
	}

	info, err := out.Stat()
	if err != nil {
		return fail(err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", 0, idoerrors.IOFailure(idoerrors.ModuleArchive, "compress", dst, err)
	}

	in.Close()
	if err := os.Remove(path); err != nil {
		return "", 0, idoerrors.IOFailure(idoerrors.ModuleArchive, "compress", path, err)
	}
	return dst, info.Size(), nil
}

// OpenReader opens an archived or spool file for reading. Files ending in
// ".zst" are decompressed on the fly.
func OpenReader(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, CompressedExt) {
		return f, nil
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &zstdFile{Decoder: dec, file: f}, nil
}

type zstdFile struct {
	*zstd.Decoder
	file *os.File
}

func (z *zstdFile) Close() error {
	z.Decoder.Close()
	return z.file.Close()
}
