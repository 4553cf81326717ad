package shell

import (
	"io"
	"os"
)

// OutputMode decides where a child's stdout or stderr goes.
type OutputMode int

const (
	// Inherit writes straight to the runner's own streams (os.Stdout/os.Stderr by default).
	Inherit OutputMode = iota
	// Piped captures the stream into the Result.
	Piped
	// Discard sends the stream to the null device.
	Discard
)

func (m OutputMode) String() string {
	switch m {
	case Inherit:
		return "inherit"
	case Piped:
		return "piped"
	case Discard:
		return "null"
	default:
		return "unknown"
	}
}

// Options controls a single run. The zero value throws on a non-zero exit and
// trims one trailing newline from captured output.
type Options struct {
	// Stdout and Stderr are only honoured by Run; the other entry points force their mode.
	Stdout OutputMode
	Stderr OutputMode

	// AllowFailure returns the Result of a non-zero exit instead of a *ProcessError.
	AllowFailure bool
	// KeepTrailingNewline leaves captured output untouched.
	KeepTrailingNewline bool

	Dir string
	// Env entries (KEY=VALUE) are appended to the parent environment.
	Env []string
	// ClearEnv starts the child with only Env.
	ClearEnv bool
	// Stdin defaults to the null device.
	Stdin io.Reader
}

func (o Options) environ() []string {
	if o.ClearEnv {
		return append([]string{}, o.Env...)
	}
	if len(o.Env) == 0 {
		return nil
	}
	return append(os.Environ(), o.Env...)
}
