package shell

import (
	"fmt"
	"io/fs"
	"os/exec"

	"github.com/pkg/errors"
)

var (
	ErrEmptyCommand = errors.New("command has no program to run")
	// ErrNotFound matches spawn failures where the program could not be located.
	ErrNotFound = errors.New("executable not found")
	// ErrNonZeroExit matches every *ProcessError.
	ErrNonZeroExit = errors.New("process exited with non-zero status")
	ErrUnsupported = errors.New("not supported on this platform")
)

// ErrorKind classifies failures returned by a Runner.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// KindNotFound: the program does not exist.
	KindNotFound
	// KindSpawn: the program could not be started or waited on for another reason.
	KindSpawn
	// KindExit: the program ran and exited non-zero.
	KindExit
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNotFound:
		return "not found"
	case KindSpawn:
		return "spawn failure"
	case KindExit:
		return "non-zero exit"
	default:
		return "unknown"
	}
}

// KindOf reports which kind of failure err is.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var pe *ProcessError
	if errors.As(err, &pe) {
		return KindExit
	}
	var se *SpawnError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindSpawn
}

// SpawnError is returned when the process could not be run at all.
type SpawnError struct {
	Kind    ErrorKind
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to run %s: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

func (e *SpawnError) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindNotFound
}

func newSpawnError(program string, err error) *SpawnError {
	kind := KindSpawn
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		kind = KindNotFound
	}
	return &SpawnError{Kind: kind, Command: program, Err: err}
}

// ProcessError is returned when a process exits non-zero and failures were not
// allowed. The message embeds the exit code, or the signal that killed the
// process, and any captured stderr/stdout.
type ProcessError struct {
	Result Result
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("Process exited with return code of: %d", e.Result.Status.Code)
	if sig := e.Result.Status.Signal; sig != "" {
		msg = "Process was terminated by signal: " + sig
	}
	if out := e.Result.Output; out != nil {
		if len(out.Stderr) > 0 {
			msg += "\n" + out.Stderr
		}
		if len(out.Stdout) > 0 {
			msg += "\n" + out.Stdout
		}
	}
	return msg
}

func (e *ProcessError) Is(target error) bool {
	return target == ErrNonZeroExit
}

func (e *ProcessError) ExitCode() int {
	return e.Result.Status.Code
}
