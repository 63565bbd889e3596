// Package scrub implements a goquery-based HTML cleaner. Its default
// configuration strips <script> elements and comment nodes and pretty-prints
// what is left, which is what the invoice tooling needs.
package scrub

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"
)

// OutputFormat specifies how the cleaned document is serialized.
type OutputFormat string

const (
	// OutputPretty renders indented, human-readable HTML.
	OutputPretty OutputFormat = "pretty"
	// OutputHTML renders the document as compact HTML.
	OutputHTML OutputFormat = "html"
	// OutputText renders only the text content of the body.
	OutputText OutputFormat = "text"
)

// ErrInvalidConfig is returned by Validate for unusable configurations.
var ErrInvalidConfig = errors.New("invalid cleaner config")

// Config defines the cleaner options.
type Config struct {
	// StripScripts removes <script> elements and their contents.
	StripScripts bool `json:"strip_scripts" yaml:"strip_scripts"`

	// StripComments removes comment nodes anywhere in the document.
	StripComments bool `json:"strip_comments" yaml:"strip_comments"`

	// StripStyles removes <style> elements and style="" attributes.
	StripStyles bool `json:"strip_styles" yaml:"strip_styles"`

	// StripNoscript removes <noscript> fallback content.
	StripNoscript bool `json:"strip_noscript" yaml:"strip_noscript"`

	// StripIframes removes <iframe> elements.
	StripIframes bool `json:"strip_iframes" yaml:"strip_iframes"`

	// RemoveSelectors lists CSS selectors whose matches are always removed.
	RemoveSelectors []string `json:"remove_selectors" yaml:"remove_selectors"`

	// KeepSelectors protects matching elements from RemoveSelectors.
	KeepSelectors []string `json:"keep_selectors" yaml:"keep_selectors"`

	// Output selects the serialization. Empty means OutputPretty.
	Output OutputFormat `json:"output" yaml:"output"`

	// MaxInputBytes caps the input read by CleanReader. Zero means unlimited.
	MaxInputBytes int64 `json:"max_input_bytes" yaml:"max_input_bytes"`
}

// InvoiceConfig returns the configuration used by clean-invoice: drop
// scripts and comments, keep everything else, pretty-print.
func InvoiceConfig() *Config {
	return &Config{
		StripScripts:  true,
		StripComments: true,
		Output:        OutputPretty,
	}
}

// PresetStrict additionally removes styles, noscript, iframes and common
// tracking markup. Useful before archiving or diffing invoice pages.
func PresetStrict() *Config {
	cfg := InvoiceConfig()
	cfg.StripStyles = true
	cfg.StripNoscript = true
	cfg.StripIframes = true
	cfg.RemoveSelectors = []string{
		"[hidden]",
		"[aria-hidden='true']",
		"img[width='1'][height='1']",
		"link[rel='preload']",
		"link[rel='prefetch']",
	}
	return cfg
}

var presets = map[string]func() *Config{
	"invoice": InvoiceConfig,
	"strict":  PresetStrict,
}

// Preset returns the named preset configuration.
func Preset(name string) (*Config, error) {
	fn, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: unknown preset %q (available: %s)",
			ErrInvalidConfig, name, strings.Join(PresetNames(), ", "))
	}
	return fn(), nil
}

// PresetNames returns the sorted preset names.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseOutputFormat converts a flag value into an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return OutputPretty, nil
	case OutputPretty, OutputHTML, OutputText:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unsupported output format %q", ErrInvalidConfig, s)
	}
}

// Validate checks the output format, size limit and every selector.
func (c *Config) Validate() error {
	if _, err := ParseOutputFormat(string(c.Output)); err != nil {
		return err
	}
	if c.MaxInputBytes < 0 {
		return fmt.Errorf("%w: max input bytes must not be negative", ErrInvalidConfig)
	}
	for _, group := range [][]string{c.RemoveSelectors, c.KeepSelectors} {
		for _, sel := range group {
			if _, err := cascadia.Compile(sel); err != nil {
				return fmt.Errorf("%w: selector %q: %v", ErrInvalidConfig, sel, err)
			}
		}
	}
	return nil
}

// Merge returns a copy of c with other layered on top.
// Boolean removals are OR-ed, selectors are appended without duplicates,
// and a non-empty Output or non-zero MaxInputBytes from other wins.
func (c *Config) Merge(other *Config) *Config {
	merged := *c
	merged.RemoveSelectors = append([]string(nil), c.RemoveSelectors...)
	merged.KeepSelectors = append([]string(nil), c.KeepSelectors...)
	if other == nil {
		return &merged
	}

	merged.StripScripts = merged.StripScripts || other.StripScripts
	merged.StripComments = merged.StripComments || other.StripComments
	merged.StripStyles = merged.StripStyles || other.StripStyles
	merged.StripNoscript = merged.StripNoscript || other.StripNoscript
	merged.StripIframes = merged.StripIframes || other.StripIframes

	merged.RemoveSelectors = appendUnique(merged.RemoveSelectors, other.RemoveSelectors)
	merged.KeepSelectors = appendUnique(merged.KeepSelectors, other.KeepSelectors)

	if other.Output != "" {
		merged.Output = other.Output
	}
	if other.MaxInputBytes > 0 {
		merged.MaxInputBytes = other.MaxInputBytes
	}
	return &merged
}

func appendUnique(dst, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range src {
		if !seen[s] {
			dst = append(dst, s)
			seen[s] = true
		}
	}
	return dst
}
