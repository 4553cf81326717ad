package shell

import (
	"context"
	"log/slog"
	"os"

	"github.com/pkg/errors"
)

const quarantineAttribute = "com.apple.quarantine"

// MakeFileExecutable runs chmod +x on path, so the executable bits added
// respect the process umask. On macOS it also tries to clear the quarantine
// attribute that downloaded files carry; failing to do so is logged and ignored.
//
// Windows decides executability by file extension, so this does nothing there.
func (r *Runner) MakeFileExecutable(ctx context.Context, path string) error {
	if r.Platform.IsWindows() {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		return errors.Wrap(err, "failed to stat file")
	}
	if _, err := r.Output(ctx, Args("chmod", "+x", path), Options{}); err != nil {
		return errors.Wrapf(err, "failed to make %s executable", path)
	}

	if err := r.RemoveAppleQuarantine(ctx, path); err != nil {
		r.logger.Warn("failed to remove quarantine attribute",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
	return nil
}

// RemoveAppleQuarantine clears the quarantine attribute macOS applies to
// downloaded files. It does nothing on other platforms.
func (r *Runner) RemoveAppleQuarantine(ctx context.Context, path string) error {
	if !r.Platform.IsDarwin() {
		return nil
	}
	_, err := r.Output(ctx, Args("xattr", "-d", quarantineAttribute, path), Options{})
	return err
}

func MakeFileExecutable(ctx context.Context, path string) error {
	return New().MakeFileExecutable(ctx, path)
}

func RemoveAppleQuarantine(ctx context.Context, path string) error {
	return New().RemoveAppleQuarantine(ctx, path)
}
