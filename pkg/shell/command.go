package shell

import (
	"github.com/AnteWall/go-shellkit/pkg/platform"
	"github.com/kballard/go-shellquote"
)

// Command is either an argument vector run as-is or a script statement handed
// to the platform shell. Build one with Args or Script.
type Command struct {
	argv     []string
	script   string
	isScript bool
}

// Args builds a command from a program and its arguments. The arguments are
// passed literally: no shell splits, expands or interprets them.
func Args(argv ...string) Command {
	return Command{argv: append([]string(nil), argv...)}
}

// Script builds a command from a complete shell statement, e.g. "make && make install".
// The statement is forwarded to the shell as a single argument.
func Script(statement string) Command {
	return Command{script: statement, isScript: true}
}

// IsScript reports whether c was built with Script.
func (c Command) IsScript() bool {
	return c.isScript
}

// Argv resolves the argument vector that will be spawned on p.
func (c Command) Argv(p platform.Platform) ([]string, error) {
	if c.isScript {
		return p.ShellArgv(c.script), nil
	}
	if len(c.argv) == 0 || c.argv[0] == "" {
		return nil, ErrEmptyCommand
	}
	return append([]string(nil), c.argv...), nil
}

func (c Command) String() string {
	if c.isScript {
		return c.script
	}
	return shellquote.Join(c.argv...)
}
