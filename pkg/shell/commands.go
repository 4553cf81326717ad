package shell

import (
	"context"

	"github.com/kballard/go-shellquote"
)

// CommandExists reports whether name resolves to something the platform shell
// can run, builtins included.
func (r *Runner) CommandExists(ctx context.Context, name string) (bool, error) {
	var script string
	if r.Platform.IsWindows() {
		script = `Get-Command "` + name + `"`
	} else {
		script = "command -v " + shellquote.Join(name)
	}
	return r.Try(ctx, Script(script), Options{})
}

// CommandExists checks name on a Runner for the current platform.
func CommandExists(ctx context.Context, name string) (bool, error) {
	return New().CommandExists(ctx, name)
}
