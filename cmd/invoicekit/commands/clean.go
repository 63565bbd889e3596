package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/invoicekit/internal/logger"
	"github.com/jmylchreest/invoicekit/internal/source"
	"github.com/jmylchreest/invoicekit/pkg/cleaner/scrub"
)

func newCleanCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean <path>",
		Short: "Strip scripts and comments from an HTML file",
		Long: `Parse an HTML file, remove unwanted nodes and print the result.

The invoice preset removes <script> elements and comments only. The strict
preset also drops styles, noscript, iframes and common tracking markup.
Extra selectors given with --remove are applied on top of the preset;
elements matching --keep (or containing a match) are never removed by
selector.

Examples:
  invoicekit clean invoice.html
  invoicekit clean invoice.html --preset strict -o clean.html
  invoicekit clean invoice.html --remove ".promo,#footer" --keep ".promo-code"
  invoicekit clean invoice.html --format text --stats`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, v, args[0])
		},
	}

	flags := cmd.Flags()
	flags.String("preset", "invoice", "cleaning preset: "+strings.Join(scrub.PresetNames(), ", "))
	flags.String("format", string(scrub.OutputPretty), "output format: pretty, html, text")
	flags.StringSlice("remove", nil, "additional CSS selectors to remove (can be repeated)")
	flags.StringSlice("keep", nil, "CSS selectors protected from --remove (can be repeated)")
	flags.String("max-size", "10MB", "max input size (e.g., 512KB, 10MB, 0=unlimited)")
	flags.Bool("stats", false, "print cleaning stats to stderr")
	flags.StringP("output", "o", "", "output file (default: stdout)")

	_ = v.BindPFlag("clean.preset", flags.Lookup("preset"))
	_ = v.BindPFlag("clean.format", flags.Lookup("format"))
	_ = v.BindPFlag("clean.remove", flags.Lookup("remove"))
	_ = v.BindPFlag("clean.keep", flags.Lookup("keep"))
	_ = v.BindPFlag("clean.max_size", flags.Lookup("max-size"))

	return cmd
}

func runClean(cmd *cobra.Command, v *viper.Viper, path string) error {
	cfg, err := cleanConfig(v)
	if err != nil {
		return err
	}
	logger.Debug("clean config",
		"preset", v.GetString("clean.preset"),
		"format", cfg.Output,
		"remove", cfg.RemoveSelectors,
		"keep", cfg.KeepSelectors,
		"max_bytes", cfg.MaxInputBytes)

	f, err := source.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	result, err := scrub.New(cfg).CleanReader(f)
	if err != nil {
		return fmt.Errorf("cleaning %s: %w", path, err)
	}
	for _, w := range result.Warnings {
		logger.Warn("cleaner warning", "path", path, "warning", w.String())
	}

	outPath, _ := cmd.Flags().GetString("output")
	if err := writeOutput(cmd, outPath, func(w io.Writer) error {
		_, err := result.WriteTo(w)
		return err
	}); err != nil {
		return err
	}

	if showStats, _ := cmd.Flags().GetBool("stats"); showStats {
		fmt.Fprint(cmd.ErrOrStderr(), result.Stats.String())
	}
	logger.Info("cleaned",
		"path", path,
		"removed", result.Stats.TotalElementsRemoved(),
		"size", humanize.Bytes(uint64(result.Stats.OutputBytes)))
	return nil
}

// cleanConfig resolves the preset and layers flag, env and config file
// overrides on top of it.
func cleanConfig(v *viper.Viper) (*scrub.Config, error) {
	base, err := scrub.Preset(v.GetString("clean.preset"))
	if err != nil {
		return nil, err
	}

	format, err := scrub.ParseOutputFormat(v.GetString("clean.format"))
	if err != nil {
		return nil, err
	}

	maxBytes, err := parseSize(v.GetString("clean.max_size"))
	if err != nil {
		return nil, err
	}

	cfg := base.Merge(&scrub.Config{
		RemoveSelectors: v.GetStringSlice("clean.remove"),
		KeepSelectors:   v.GetStringSlice("clean.keep"),
		Output:          format,
		MaxInputBytes:   maxBytes,
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseSize parses a human-readable size. Empty or "0" means unlimited.
func parseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid max-size %q: %w", s, err)
	}
	return int64(n), nil
}
