//go:build !unix && !windows

package filex

var errCrossDevice error
