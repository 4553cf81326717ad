package command

import (
	"context"
	"os/exec"

	"github.com/pkg/errors"
)

var ErrEmptyArgv = errors.New("empty argument vector")

type execRunner struct{}

func (e *execRunner) Run(ctx context.Context, spec Spec) (Result, error) {
	if len(spec.Argv) == 0 {
		return Result{}, ErrEmptyArgv
	}
	command := exec.CommandContext(ctx, spec.Argv[0], spec.Argv[1:]...)
	command.Dir = spec.Dir
	command.Env = spec.Env
	command.Stdin = spec.Stdin
	command.Stdout, command.Stderr = spec.Stdout, spec.Stderr

	runErr := command.Run()
	if runErr == nil {
		return Result{ExitCode: 0}, nil
	}
	var ee *exec.ExitError
	if !errors.As(runErr, &ee) || ee.ProcessState == nil {
		return Result{ExitCode: -1}, runErr
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		// killed by CommandContext, not a genuine exit
		return Result{ExitCode: ee.ProcessState.ExitCode()}, errors.Wrap(ctxErr, runErr.Error())
	}
	return Result{ExitCode: ee.ProcessState.ExitCode(), Signal: terminatingSignal(ee.ProcessState)}, nil
}

func NewExecRunner() Runner {
	return &execRunner{}
}
