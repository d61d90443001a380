//go:build unix

package filex

import (
	"errors"

	"golang.org/x/sys/unix"
)

// IsCrossDevice reports whether err is a rename failure caused by source
// and destination living on different filesystems.
func IsCrossDevice(err error) bool {
	return errors.Is(err, unix.EXDEV)
}
