//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package logger

import "os"

// Color is only enabled where terminal detection is supported.
func isTerminal(_ *os.File) bool { return false }
