//go:build !unix

package command

import "os"

// Only unix reports termination by signal.
func terminatingSignal(*os.ProcessState) string {
	return ""
}
