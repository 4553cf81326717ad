package shell

import (
	"os"

	"github.com/pkg/errors"
)

// IsRoot reports whether the process runs with an effective user id of 0.
// Root detection is not implemented for Windows.
func (r *Runner) IsRoot() (bool, error) {
	if r.Platform.IsWindows() {
		return false, errors.Wrap(ErrUnsupported, "root detection")
	}
	return geteuid() == 0, nil
}

var geteuid = os.Geteuid

func IsRoot() (bool, error) {
	return New().IsRoot()
}
