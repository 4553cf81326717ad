package command

import (
	"context"
	"io"
	"strings"
	"sync"
)

// Script is the canned behavior of a FakeRunner for one argument vector.
type Script struct {
	Stdout   string
	Stderr   string
	ExitCode int
	// Signal simulates death by a signal; ExitCode should then be -1.
	Signal string
	Err    error
}

// FakeRunner replays scripted results keyed by the space-joined argv. Unknown
// commands succeed with no output. Every call is recorded.
type FakeRunner struct {
	mu      sync.Mutex
	Scripts map[string]Script
	Calls   []Spec
}

func (f *FakeRunner) Run(ctx context.Context, spec Spec) (Result, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, spec)
	script, ok := f.Scripts[key(spec.Argv)]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{ExitCode: -1}, err
	}
	if !ok {
		return Result{}, nil
	}
	if script.Err != nil {
		return Result{ExitCode: -1}, script.Err
	}
	if spec.Stdout != nil && script.Stdout != "" {
		io.WriteString(spec.Stdout, script.Stdout)
	}
	if spec.Stderr != nil && script.Stderr != "" {
		io.WriteString(spec.Stderr, script.Stderr)
	}
	return Result{ExitCode: script.ExitCode, Signal: script.Signal}, nil
}

func (f *FakeRunner) AddScript(argv []string, script Script) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Scripts[key(argv)] = script
}

// LastCall returns the most recently spawned spec, or false if nothing ran.
func (f *FakeRunner) LastCall() (Spec, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Calls) == 0 {
		return Spec{}, false
	}
	return f.Calls[len(f.Calls)-1], true
}

func key(argv []string) string {
	return strings.Join(argv, " ")
}

func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Scripts: make(map[string]Script),
	}
}
