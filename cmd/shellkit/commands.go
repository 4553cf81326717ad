package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/AnteWall/go-shellkit/pkg/checksum"
	"github.com/AnteWall/go-shellkit/pkg/download"
	"github.com/AnteWall/go-shellkit/pkg/fetch"
	"github.com/AnteWall/go-shellkit/pkg/shell"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var errUsage = errors.New("usage")

// shellRunner returns a Runner whose inherited output goes to the command's writers.
func shellRunner(cmd *cobra.Command) *shell.Runner {
	r := shell.New()
	r.Stdout = cmd.OutOrStdout()
	r.Stderr = cmd.ErrOrStderr()
	return r
}

// commandFromArgs builds a literal command from args, or a shell statement
// when script is set. Exactly one of them must be given.
func commandFromArgs(script string, args []string) (shell.Command, error) {
	switch {
	case script != "" && len(args) > 0:
		return shell.Command{}, errors.Wrap(errUsage, "--script cannot be combined with program arguments")
	case script != "":
		return shell.Script(script), nil
	case len(args) == 0:
		return shell.Command{}, errors.Wrap(errUsage, "a program or --script is required")
	default:
		return shell.Args(args...), nil
	}
}

func newRunCommand() *cobra.Command {
	var (
		script       string
		stream       bool
		allowFailure bool
		stdin        bool
	)
	cmd := &cobra.Command{
		Use:   "run [flags] [-- program args...]",
		Short: "Run a command and print its output",
		Long: `Run a program with literal arguments, or a statement through the platform
shell with --script. Output is captured and printed without its trailing
newline unless --stream is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := commandFromArgs(script, args)
			if err != nil {
				return err
			}
			opts := shell.Options{AllowFailure: allowFailure}
			if stdin {
				opts.Stdin = cmd.InOrStdin()
			}

			runner := shellRunner(cmd)
			if stream {
				_, err := runner.Streamed(cmd.Context(), command, opts)
				return err
			}
			result, err := runner.Piped(cmd.Context(), command, opts)
			if err != nil {
				return err
			}
			if out := result.Stdout(); out != "" {
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			if errOut := result.Stderr(); errOut != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), errOut)
			}
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVarP(&script, "script", "c", "", "run a statement through the platform shell")
	cmd.Flags().BoolVar(&stream, "stream", false, "stream output instead of capturing it")
	cmd.Flags().BoolVar(&allowFailure, "allow-failure", false, "exit 0 even when the command fails")
	cmd.Flags().BoolVar(&stdin, "stdin", false, "forward standard input to the command")
	return cmd
}

func newTryCommand() *cobra.Command {
	var script string
	cmd := &cobra.Command{
		Use:   "try [flags] [-- program args...]",
		Short: "Print whether a command ran and exited successfully",
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := commandFromArgs(script, args)
			if err != nil {
				return err
			}
			ok, err := shellRunner(cmd).Try(cmd.Context(), command, shell.Options{})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatBool(ok))
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVarP(&script, "script", "c", "", "run a statement through the platform shell")
	return cmd
}

func newExistsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exists <name>",
		Short: "Print whether a command is available on the PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exists, err := shellRunner(cmd).CommandExists(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatBool(exists))
			return nil
		},
	}
}

func newChecksumCommand() *cobra.Command {
	var algorithm string
	cmd := &cobra.Command{
		Use:   "checksum [file]",
		Short: "Print the hex digest of a file or standard input",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			algo := checksum.Algorithm(algorithm)
			var (
				sum string
				err error
			)
			if len(args) == 0 || args[0] == "-" {
				sum, err = checksum.ReaderHex(cmd.InOrStdin(), algo)
			} else {
				sum, err = checksum.FileHex(args[0], algo)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sum)
			return nil
		},
	}
	names := make([]string, 0, len(checksum.Algorithms()))
	for _, a := range checksum.Algorithms() {
		names = append(names, string(a))
	}
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", string(checksum.Default),
		"digest algorithm, one of "+strings.Join(names, ", "))
	return cmd
}

func newDownloadCommand() *cobra.Command {
	var (
		dir      string
		filename string
		cwd      bool
	)
	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a file and print where it was written",
		Long: `Download a file into --dir, the working directory with --cwd, or a new
temporary directory. The filename is taken from --filename, the server's
Content-Disposition header or the URL path, in that order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := download.Location{Dir: dir, Filename: filename, Special: download.TempDir}
			if cwd {
				location.Special = download.CurrentDir
			}
			path, err := download.File(cmd.Context(), download.Options{URL: args[0], Location: location})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory to download into")
	cmd.Flags().StringVarP(&filename, "filename", "o", "", "name of the downloaded file")
	cmd.Flags().BoolVar(&cwd, "cwd", false, "download into the working directory")
	cmd.MarkFlagsMutuallyExclusive("dir", "cwd")
	return cmd
}

func newFetchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <manifest.yaml>",
		Short: "Download every file listed in a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := fetch.LoadManifest(args[0])
			if err != nil {
				return err
			}
			paths, err := fetch.FetchAll(cmd.Context(), manifest)
			if err != nil {
				return err
			}
			return printLines(cmd.OutOrStdout(), paths)
		},
	}
}

func printLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
