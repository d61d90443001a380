//go:build windows

package filex

import (
	"errors"

	"golang.org/x/sys/windows"
)

// IsCrossDevice reports whether err is a rename failure caused by source
// and destination living on different volumes.
func IsCrossDevice(err error) bool {
	return errors.Is(err, windows.ERROR_NOT_SAME_DEVICE)
}
