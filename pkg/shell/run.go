// Package shell runs child processes with the output handling of a shell's
// command substitution: capture it, stream it, or just ask whether the
// command succeeded.
//
// Every call spawns exactly one process and waits for it. Runners hold no
// per-call state and may be shared between goroutines.
package shell

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/AnteWall/go-shellkit/internal/command"
	"github.com/AnteWall/go-shellkit/pkg/lang"
	"github.com/AnteWall/go-shellkit/pkg/platform"
	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"
)

// Runner spawns processes for one platform.
type Runner struct {
	Platform platform.Platform
	// Stdout and Stderr receive output in Inherit mode.
	Stdout io.Writer
	Stderr io.Writer

	spawner command.Runner
	logger  *slog.Logger
}

// New returns a Runner for the current platform.
func New() *Runner {
	return NewForPlatform(platform.Current())
}

// NewForPlatform returns a Runner that builds commands for p.
func NewForPlatform(p platform.Platform) *Runner {
	return &Runner{
		Platform: p,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		spawner:  command.NewExecRunner(),
		logger:   slog.Default().WithGroup("shell"),
	}
}

// Output runs cmd with piped output and returns its trimmed stdout, like $(cmd) in bash.
func (r *Runner) Output(ctx context.Context, cmd Command, opts Options) (string, error) {
	result, err := r.Piped(ctx, cmd, opts)
	if err != nil {
		return "", err
	}
	return result.Stdout(), nil
}

// Run runs cmd with the output modes given in opts.
func (r *Runner) Run(ctx context.Context, cmd Command, opts Options) (Result, error) {
	return r.execute(ctx, cmd, opts, opts.Stdout, opts.Stderr)
}

// Piped runs cmd capturing both stdout and stderr.
func (r *Runner) Piped(ctx context.Context, cmd Command, opts Options) (Result, error) {
	return r.execute(ctx, cmd, opts, Piped, Piped)
}

// Streamed runs cmd with its output going to the runner's own streams. The
// Result never carries Output.
//
// Stdin still defaults to the null device, so an interactive program will not
// see the terminal unless opts.Stdin is set, e.g. to os.Stdin.
func (r *Runner) Streamed(ctx context.Context, cmd Command, opts Options) (Result, error) {
	return r.execute(ctx, cmd, opts, Inherit, Inherit)
}

// Try reports whether cmd exits zero. A program that cannot be found yields
// false; any other spawn failure is returned.
func (r *Runner) Try(ctx context.Context, cmd Command, opts Options) (bool, error) {
	opts.AllowFailure = true
	result, err := r.Piped(ctx, cmd, opts)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return result.Status.Success, nil
}

func (r *Runner) execute(ctx context.Context, cmd Command, opts Options, stdout, stderr OutputMode) (Result, error) {
	argv, err := cmd.Argv(r.Platform)
	if err != nil {
		return Result{}, err
	}

	var outBuf, errBuf bytes.Buffer
	spec := command.Spec{
		Argv:   argv,
		Dir:    opts.Dir,
		Env:    opts.environ(),
		Stdin:  opts.Stdin,
		Stdout: r.sink(stdout, &outBuf, r.Stdout),
		Stderr: r.sink(stderr, &errBuf, r.Stderr),
	}

	r.logger.Debug("running process",
		slog.String("command", shellquote.Join(argv...)),
		slog.Bool("script", cmd.IsScript()),
		slog.String("stdout", stdout.String()),
		slog.String("stderr", stderr.String()))

	res, err := r.spawner.Run(ctx, spec)
	if err != nil {
		r.logger.Debug("process failed to run", slog.String("program", argv[0]), slog.String("error", err.Error()))
		return Result{}, newSpawnError(argv[0], err)
	}

	result := Result{Status: Status{Code: res.ExitCode, Success: res.ExitCode == 0, Signal: res.Signal}}
	if stdout == Piped || stderr == Piped {
		out := &PipedOutput{Stdout: decode(outBuf.Bytes()), Stderr: decode(errBuf.Bytes())}
		if !opts.KeepTrailingNewline {
			out.Stdout = lang.TrimTrailingNewline(out.Stdout)
			out.Stderr = lang.TrimTrailingNewline(out.Stderr)
		}
		result.Output = out
	}

	if result.Status.Success || opts.AllowFailure {
		return result, nil
	}
	return result, &ProcessError{Result: result}
}

func (r *Runner) sink(mode OutputMode, buf *bytes.Buffer, inherited io.Writer) io.Writer {
	switch mode {
	case Piped:
		return buf
	case Inherit:
		return inherited
	default:
		return nil
	}
}

func decode(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

// Output runs cmd on a Runner for the current platform. See Runner.Output.
func Output(ctx context.Context, cmd Command, opts Options) (string, error) {
	return New().Output(ctx, cmd, opts)
}

// Run runs cmd on a Runner for the current platform. See Runner.Run.
func Run(ctx context.Context, cmd Command, opts Options) (Result, error) {
	return New().Run(ctx, cmd, opts)
}

// RunPiped runs cmd on a Runner for the current platform. See Runner.Piped.
func RunPiped(ctx context.Context, cmd Command, opts Options) (Result, error) {
	return New().Piped(ctx, cmd, opts)
}

// RunStreamed runs cmd on a Runner for the current platform. See Runner.Streamed.
func RunStreamed(ctx context.Context, cmd Command, opts Options) (Result, error) {
	return New().Streamed(ctx, cmd, opts)
}

// Try runs cmd on a Runner for the current platform. See Runner.Try.
func Try(ctx context.Context, cmd Command, opts Options) (bool, error) {
	return New().Try(ctx, cmd, opts)
}
