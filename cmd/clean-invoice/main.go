// clean-invoice strips <script> elements and comments from an HTML file and
// prints the remaining markup, pretty-printed, to stdout.
//
// Usage:
//
//	clean-invoice <path-to-html-file>
//
// Exit status is 0 on success, 2 when the path argument is missing or an
// option (--help included) is given, and 1 when the file cannot be read. Nothing is written to stdout on failure.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/invoicekit/internal/logger"
	"github.com/jmylchreest/invoicekit/internal/source"
	"github.com/jmylchreest/invoicekit/pkg/cleaner/scrub"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage error")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "Error: %v\n\n%s", err, cmd.UsageString())
		return exitUsage
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
}

func newCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean-invoice <path-to-html-file>",
		Short: "Strip scripts and comments from an HTML file and pretty-print it",
		Args: func(_ *cobra.Command, args []string) error {
			_, err := pathArg(args)
			return err
		},
		// The command takes no options; --help and -h are usage errors too.
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := pathArg(args)
			if err != nil {
				return err
			}
			return cleanFile(path, cmd.OutOrStdout())
		},
	}
}

// pathArg returns the single path argument. A leading "--" ends option
// processing, so "clean-invoice -- -odd.html" reads a file named -odd.html.
func pathArg(args []string) (string, error) {
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	} else {
		for _, a := range args {
			if len(a) > 1 && strings.HasPrefix(a, "-") {
				return "", fmt.Errorf("%w: unknown flag %s", errUsage, a)
			}
		}
	}
	if len(args) != 1 {
		return "", fmt.Errorf("%w: expected exactly one path argument, got %d", errUsage, len(args))
	}
	return args[0], nil
}

// cleanFile renders the whole cleaned document before writing, so stdout
// receives either the complete output or nothing.
func cleanFile(path string, w io.Writer) error {
	f, err := source.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	c := scrub.New(scrub.InvoiceConfig())
	result, err := c.CleanReader(f)
	if err != nil {
		return fmt.Errorf("cleaning %s: %w", path, err)
	}
	logger.Debug("cleaned invoice",
		"path", path,
		"scripts", result.Stats.ElementsRemoved["script"],
		"comments", result.Stats.ElementsRemoved["comment"])

	_, err = result.WriteTo(w)
	return err
}
