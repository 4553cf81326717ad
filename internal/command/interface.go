package command

import (
	"context"
	"io"
)

// Spec describes a single child process to spawn.
type Spec struct {
	Argv   []string
	Dir    string
	Env    []string // nil inherits the parent environment
	Stdin  io.Reader
	Stdout io.Writer // nil discards
	Stderr io.Writer // nil discards
}

type Result struct {
	// ExitCode is -1 when the process did not exit normally.
	ExitCode int
	// Signal names the signal that terminated the process, e.g. "killed".
	// Empty when the process exited on its own.
	Signal string
}

// Runner spawns one process per call and waits for it. A process that starts and
// exits non-zero is reported through Result with a nil error; an error means the
// process could not be run at all.
type Runner interface {
	Run(ctx context.Context, spec Spec) (Result, error)
}
