// Package platform describes the host operating system in the terms the rest of
// the library cares about: which shell runs script statements and which line
// ending the system prefers.
package platform

import (
	"os"
	"runtime"
)

// Line ending sequences.
const (
	LF   = "\n"
	CRLF = "\r\n"
)

const (
	defaultShell   = "/bin/bash"
	windowsShell   = "PowerShell.exe"
	unixShellFlag  = "-c"
	windowsCommand = "-Command"
)

// Family groups operating systems by the behavior that differs between them.
type Family int

const (
	Linux Family = iota
	Darwin
	Windows
	OtherUnix
)

func (f Family) String() string {
	switch f {
	case Linux:
		return "linux"
	case Darwin:
		return "darwin"
	case Windows:
		return "windows"
	default:
		return "unix"
	}
}

// Platform represents the OS-specific behavior used when building and running commands.
type Platform struct {
	Family    Family `yaml:"family" json:"family"`
	Shell     string `yaml:"shell" json:"shell"`
	ShellFlag string `yaml:"shell_flag" json:"shellFlag"`
	EOL       string `yaml:"eol" json:"eol"`
}

// Current describes the platform this process is running on.
func Current() Platform {
	return ForOS(runtime.GOOS, os.Getenv)
}

// ForOS builds the descriptor for goos, reading SHELL through getenv.
func ForOS(goos string, getenv func(string) string) Platform {
	switch goos {
	case "windows":
		return Platform{Family: Windows, Shell: windowsShell, ShellFlag: windowsCommand, EOL: CRLF}
	}

	family := OtherUnix
	switch goos {
	case "linux":
		family = Linux
	case "darwin", "ios":
		family = Darwin
	}
	shell := defaultShell
	if getenv != nil {
		if s := getenv("SHELL"); s != "" {
			shell = s
		}
	}
	return Platform{Family: family, Shell: shell, ShellFlag: unixShellFlag, EOL: LF}
}

// ShellArgv wraps a script statement so the platform shell interprets it as a
// single unit. The script itself is never split.
func (p Platform) ShellArgv(script string) []string {
	return []string{p.Shell, p.ShellFlag, script}
}

func (p Platform) IsWindows() bool {
	return p.Family == Windows
}

func (p Platform) IsDarwin() bool {
	return p.Family == Darwin
}

// SystemEOL is the preferred line ending of the running system. LF is often the
// better choice for files shared across systems, even on Windows.
var SystemEOL = Current().EOL
