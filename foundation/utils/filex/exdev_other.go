//go:build !unix && !windows

package filex

// IsCrossDevice always reports false on platforms without a cross-device
// rename error.
func IsCrossDevice(err error) bool {
	return false
}
