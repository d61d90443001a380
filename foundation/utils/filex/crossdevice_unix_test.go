//go:build unix

package filex

import "golang.org/x/sys/unix"

var errCrossDevice error = unix.EXDEV
