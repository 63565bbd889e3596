package scrub

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/invoicekit/pkg/cleaner"
	"github.com/jmylchreest/invoicekit/pkg/document"
)

// ErrInputTooLarge is returned by CleanReader when the input exceeds
// Config.MaxInputBytes.
var ErrInputTooLarge = errors.New("input exceeds size limit")

var _ cleaner.Cleaner = (*Cleaner)(nil)

// Cleaner removes unwanted nodes from HTML documents.
type Cleaner struct {
	config *Config
	stats  *Stats
}

// New creates a new Cleaner with the given configuration.
// If config is nil, InvoiceConfig() is used.
func New(config *Config) *Cleaner {
	if config == nil {
		config = InvoiceConfig()
	}
	return &Cleaner{
		config: config,
	}
}

// Name returns the cleaner name for logging.
func (c *Cleaner) Name() string {
	return "scrub"
}

// Config returns the configuration the cleaner was built with.
func (c *Cleaner) Config() *Config {
	return c.config
}

// Stats returns the stats from the last cleaning run.
func (c *Cleaner) Stats() *Stats {
	return c.stats
}

// Clean implements cleaner.Cleaner.
func (c *Cleaner) Clean(html string) (string, error) {
	result := c.CleanWithStats(html)
	if result.Error != nil {
		return "", result.Error
	}
	return result.Content, nil
}

// CleanReader reads the whole of r and cleans it. The returned result is
// non-nil whenever the input could be read, even if cleaning failed.
func (c *Cleaner) CleanReader(r io.Reader) (*Result, error) {
	limit := c.config.MaxInputBytes
	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %s", ErrInputTooLarge, humanize.IBytes(uint64(limit)))
	}

	result := c.CleanWithStats(string(data))
	return result, result.Error
}

// CleanWithStats performs cleaning and returns detailed stats.
// Either Content holds the complete output or Error is set.
func (c *Cleaner) CleanWithStats(html string) *Result {
	startTime := time.Now()
	result := &Result{
		Stats: NewStats(),
	}
	result.Stats.InputBytes = len(html)
	defer func() {
		result.Stats.TotalDuration = time.Since(startTime)
		c.stats = result.Stats
	}()

	parseStart := time.Now()
	root, err := document.Parse(strings.NewReader(html))
	result.Stats.ParseDuration = time.Since(parseStart)
	if err != nil {
		result.AddWarning("parse", "HTML parse failed", err.Error())
		result.Error = fmt.Errorf("parsing html: %w", err)
		return result
	}
	doc := goquery.NewDocumentFromNode(root)

	transformStart := time.Now()
	c.transform(doc, result)
	result.Stats.TransformDuration = time.Since(transformStart)

	outputStart := time.Now()
	output, err := c.generateOutput(doc)
	result.Stats.OutputDuration = time.Since(outputStart)
	if err != nil {
		result.AddWarning("output", "output generation failed", err.Error())
		result.Error = fmt.Errorf("rendering html: %w", err)
		return result
	}

	result.Content = output
	result.Stats.OutputBytes = len(output)
	return result
}

// transform applies all configured removals to the document.
func (c *Cleaner) transform(doc *goquery.Document, result *Result) {
	// User selectors first so keep rules see the original structure.
	if len(c.config.RemoveSelectors) > 0 {
		c.removeBySelectors(doc, result)
	}

	if c.config.StripScripts {
		c.removeElements(doc, "script", result)
	}
	if c.config.StripStyles {
		c.removeElements(doc, "style", result)
		c.removeStyleAttributes(doc, result)
	}
	if c.config.StripNoscript {
		c.removeElements(doc, "noscript", result)
	}
	if c.config.StripIframes {
		c.removeElements(doc, "iframe", result)
	}
	if c.config.StripComments {
		c.removeComments(doc, result)
	}

	for _, root := range doc.Nodes {
		result.Stats.ElementsKept += document.Count(root, document.IsAnyElement)
	}
}

// removeElements removes all elements with the given tag, subtree included.
func (c *Cleaner) removeElements(doc *goquery.Document, tag string, result *Result) {
	for _, root := range doc.Nodes {
		result.Stats.RecordRemovals(tag, document.RemoveAll(root, document.IsElement(tag)))
	}
}

// removeBySelectors removes elements matching user-defined selectors.
func (c *Cleaner) removeBySelectors(doc *goquery.Document, result *Result) {
	for _, selector := range c.config.RemoveSelectors {
		selection := doc.Find(selector)
		count := selection.Length()
		if count == 0 {
			continue
		}
		result.Stats.RecordSelectorMatch(selector, count)
		selection.Each(func(_ int, s *goquery.Selection) {
			if c.shouldKeep(s) {
				return
			}
			result.Stats.RecordRemoval(goquery.NodeName(s))
			s.Remove()
		})
	}
}

// shouldKeep reports whether an element matches a keep selector or
// contains an element that does.
func (c *Cleaner) shouldKeep(s *goquery.Selection) bool {
	for _, selector := range c.config.KeepSelectors {
		if s.Is(selector) || s.Find(selector).Length() > 0 {
			return true
		}
	}
	return false
}

// removeStyleAttributes removes style="" attributes from all elements.
func (c *Cleaner) removeStyleAttributes(doc *goquery.Document, result *Result) {
	doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		s.RemoveAttr("style")
		result.Stats.AttributesRemoved++
	})
}

// removeComments detaches every comment node, including those outside <html>.
// goquery selections only hold elements, so this works on the node tree.
func (c *Cleaner) removeComments(doc *goquery.Document, result *Result) {
	for _, root := range doc.Nodes {
		result.Stats.RecordRemovals(document.KindComment.String(), document.RemoveAll(root, document.IsComment))
	}
}
