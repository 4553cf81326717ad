package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/AnteWall/go-shellkit/pkg/shell"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func newRootCommand() *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:   "shellkit",
		Short: "Run commands, download files and compute checksums",

		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	root.AddCommand(
		newRunCommand(),
		newTryCommand(),
		newExistsCommand(),
		newChecksumCommand(),
		newDownloadCommand(),
		newFetchCommand(),
	)
	return root
}

// exitCode mirrors the child's exit code when a command failed, so the CLI
// can sit transparently in scripts.
func exitCode(err error) int {
	var processErr *shell.ProcessError
	if errors.As(err, &processErr) && processErr.ExitCode() > 0 {
		return processErr.ExitCode()
	}
	return 1
}
