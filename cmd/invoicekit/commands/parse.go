package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/invoicekit/internal/logger"
	"github.com/jmylchreest/invoicekit/internal/output"
	"github.com/jmylchreest/invoicekit/internal/source"
	"github.com/jmylchreest/invoicekit/pkg/cleaner"
	"github.com/jmylchreest/invoicekit/pkg/cleaner/scrub"
	"github.com/jmylchreest/invoicekit/pkg/invoice"
)

// wrappedOrder wraps an extracted order with metadata.
type wrappedOrder struct {
	Metadata orderMetadata        `json:"_metadata" yaml:"_metadata"`
	Data     *invoice.OrderDetail `json:"data" yaml:"data"`
}

type orderMetadata struct {
	Path             string `json:"path" yaml:"path"`
	ParsedAt         string `json:"parsed_at" yaml:"parsed_at"`
	Cleaned          bool   `json:"cleaned" yaml:"cleaned"`
	ParseDurationMs  int64  `json:"parse_duration_ms" yaml:"parse_duration_ms"`
	RemovedNodeCount int    `json:"removed_node_count,omitempty" yaml:"removed_node_count,omitempty"`
}

func newParseCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <path>...",
		Short: "Extract order details from saved order pages",
		Long: `Extract the order summary, line items, payment method and shipping
address from one or more saved order pages.

The summary is cross-checked: the total before tax must equal the subtotal
plus shipping plus discounts, and the grand total must equal the total
before tax plus tax, to within one cent. Pages that fail are reported on
stderr and the command exits non-zero after processing the rest.

Examples:
  invoicekit parse order.html
  invoicekit parse orders/*.html --format jsonl -o orders.jsonl
  invoicekit parse order.html --clean --format yaml
  invoicekit parse order.html --remove "#recommendations"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, v, args)
		},
	}

	flags := cmd.Flags()
	flags.String("format", string(output.FormatJSON), "output format: json, jsonl, yaml")
	flags.Bool("clean", false, "strip scripts and comments before extraction")
	flags.StringSlice("remove", nil, "CSS selectors to remove before extraction (can be repeated)")
	flags.Bool("include-metadata", false, "wrap output with _metadata and data keys")
	flags.StringP("output", "o", "", "output file (default: stdout)")

	_ = v.BindPFlag("parse.format", flags.Lookup("format"))
	_ = v.BindPFlag("parse.remove", flags.Lookup("remove"))

	return cmd
}

func runParse(cmd *cobra.Command, v *viper.Viper, paths []string) error {
	format, err := output.ParseFormat(v.GetString("parse.format"))
	if err != nil {
		return err
	}
	clean, _ := cmd.Flags().GetBool("clean")
	includeMetadata, _ := cmd.Flags().GetBool("include-metadata")

	pre, err := newPreParse(clean, v.GetStringSlice("parse.remove"))
	if err != nil {
		return err
	}
	if pre.chain.Len() > 0 {
		logger.Debug("pre-parse cleaning", "cleaner", pre.chain.Name())
	}

	parser := invoice.NewParser()
	var results []any
	failed := 0

	for _, path := range paths {
		start := time.Now()
		log := logger.With("path", path)
		detail, removed, err := pre.parseFile(parser, path)
		if err != nil {
			failed++
			log.Error("failed to parse order page", "error", err)
			continue
		}
		log.Debug("parsed order page",
			"items", len(detail.Items),
			"grand_total", detail.GrandTotal)

		if !includeMetadata {
			results = append(results, detail)
			continue
		}
		results = append(results, wrappedOrder{
			Metadata: orderMetadata{
				Path:             path,
				ParsedAt:         time.Now().UTC().Format(time.RFC3339),
				Cleaned:          pre.chain.Len() > 0,
				ParseDurationMs:  time.Since(start).Milliseconds(),
				RemovedNodeCount: removed,
			},
			Data: detail,
		})
	}

	if len(results) > 0 {
		outPath, _ := cmd.Flags().GetString("output")
		if err := writeOutput(cmd, outPath, func(w io.Writer) error {
			return writeResults(w, format, results)
		}); err != nil {
			return err
		}
	}

	logger.Info("parse complete", "parsed", len(results), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("failed to parse %d of %d files", failed, len(paths))
	}
	return nil
}

// preParse is the cleaning run on each page before extraction.
type preParse struct {
	chain     *cleaner.Chain
	scrubbers []*scrub.Cleaner
}

func newPreParse(clean bool, remove []string) (*preParse, error) {
	p := &preParse{chain: cleaner.NewChain()}
	add := func(cfg *scrub.Config) error {
		cfg.Output = scrub.OutputHTML
		if err := cfg.Validate(); err != nil {
			return err
		}
		sc := scrub.New(cfg)
		p.chain.Append(sc)
		p.scrubbers = append(p.scrubbers, sc)
		return nil
	}

	if clean {
		if err := add(scrub.InvoiceConfig()); err != nil {
			return nil, err
		}
	}
	if len(remove) > 0 {
		if err := add(&scrub.Config{RemoveSelectors: remove}); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// parseFile extracts the order in path after running the chain over it.
// The number of nodes the chain removed is returned alongside.
func (p *preParse) parseFile(parser *invoice.Parser, path string) (*invoice.OrderDetail, int, error) {
	f, err := source.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = f.Close() }()

	if p.chain.Len() == 0 {
		detail, err := parser.ParseReader(f)
		return detail, 0, err
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", path, err)
	}
	cleaned, err := p.chain.Clean(string(data))
	if err != nil {
		return nil, 0, fmt.Errorf("cleaning %s: %w", path, err)
	}

	removed := 0
	for _, sc := range p.scrubbers {
		removed += sc.Stats().TotalElementsRemoved()
	}
	detail, err := parser.ParseReader(strings.NewReader(cleaned))
	return detail, removed, err
}

func writeResults(w io.Writer, format output.Format, results []any) error {
	writer, err := output.NewWriter(w, format)
	if err != nil {
		return err
	}
	for _, r := range results {
		if err := writer.Write(r); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	return writer.Close()
}
