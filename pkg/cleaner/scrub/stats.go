package scrub

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats captures metrics about what the cleaner did.
type Stats struct {
	// Size metrics
	InputBytes  int `json:"input_bytes"`
	OutputBytes int `json:"output_bytes"`

	// Node counts
	ElementsRemoved map[string]int `json:"elements_removed"` // tag or "comment" -> count
	ElementsKept    int            `json:"elements_kept"`

	AttributesRemoved int `json:"attributes_removed"`

	SelectorMatches map[string]int `json:"selector_matches"` // selector -> count

	// Timing
	ParseDuration     time.Duration `json:"parse_duration_ms"`
	TransformDuration time.Duration `json:"transform_duration_ms"`
	OutputDuration    time.Duration `json:"output_duration_ms"`
	TotalDuration     time.Duration `json:"total_duration_ms"`
}

// NewStats creates a new Stats instance with initialized maps.
func NewStats() *Stats {
	return &Stats{
		ElementsRemoved: make(map[string]int),
		SelectorMatches: make(map[string]int),
	}
}

// ReductionPercent returns the percentage reduction in size.
func (s *Stats) ReductionPercent() float64 {
	if s.InputBytes == 0 {
		return 0
	}
	return float64(s.InputBytes-s.OutputBytes) / float64(s.InputBytes) * 100
}

// TotalElementsRemoved returns the sum of all removed nodes.
func (s *Stats) TotalElementsRemoved() int {
	total := 0
	for _, count := range s.ElementsRemoved {
		total += count
	}
	return total
}

// RecordRemoval records that a node was removed.
func (s *Stats) RecordRemoval(kind string) {
	s.RecordRemovals(kind, 1)
}

// RecordRemovals records n removals of the same kind. Zero is ignored.
func (s *Stats) RecordRemovals(kind string, n int) {
	if n <= 0 {
		return
	}
	s.ElementsRemoved[strings.ToLower(kind)] += n
}

// RecordSelectorMatch records that a selector matched elements.
func (s *Stats) RecordSelectorMatch(selector string, count int) {
	s.SelectorMatches[selector] += count
}

// String returns a human-readable summary of the stats.
func (s *Stats) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Size: %s -> %s (%.1f%% reduction)\n",
		humanize.Bytes(uint64(s.InputBytes)), humanize.Bytes(uint64(s.OutputBytes)), s.ReductionPercent())

	fmt.Fprintf(&sb, "Nodes: %d removed, %d elements kept\n",
		s.TotalElementsRemoved(), s.ElementsKept)

	if len(s.ElementsRemoved) > 0 {
		sb.WriteString("Removed by kind: ")
		sb.WriteString(joinCounts(s.ElementsRemoved))
		sb.WriteString("\n")
	}

	if len(s.SelectorMatches) > 0 {
		sb.WriteString("Selector matches: ")
		sb.WriteString(joinCounts(s.SelectorMatches))
		sb.WriteString("\n")
	}

	if s.AttributesRemoved > 0 {
		fmt.Fprintf(&sb, "Attributes removed: %d\n", s.AttributesRemoved)
	}

	fmt.Fprintf(&sb, "Timing: parse=%v, transform=%v, output=%v, total=%v\n",
		s.ParseDuration.Round(time.Microsecond),
		s.TransformDuration.Round(time.Microsecond),
		s.OutputDuration.Round(time.Microsecond),
		s.TotalDuration.Round(time.Microsecond))

	return sb.String()
}

func joinCounts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[k])
	}
	return strings.Join(parts, ", ")
}

// Warning represents a non-fatal issue encountered during cleaning.
type Warning struct {
	Phase   string `json:"phase"`   // "parse", "transform", "output"
	Message string `json:"message"` // Human-readable description
	Context string `json:"context"` // Element or selector that caused issue
}

// String returns a formatted warning message.
func (w Warning) String() string {
	if w.Context != "" {
		return fmt.Sprintf("[%s] %s (context: %s)", w.Phase, w.Message, w.Context)
	}
	return fmt.Sprintf("[%s] %s", w.Phase, w.Message)
}

// Result contains the output of a cleaning operation.
type Result struct {
	// Content is the cleaned output. It is empty whenever Error is set.
	Content string `json:"content"`

	Stats *Stats `json:"stats"`

	Warnings []Warning `json:"warnings,omitempty"`

	// Error is set when no complete output could be produced.
	Error error `json:"-"`
}

// AddWarning adds a warning to the result.
func (r *Result) AddWarning(phase, message, context string) {
	r.Warnings = append(r.Warnings, Warning{
		Phase:   phase,
		Message: message,
		Context: context,
	})
}

// HasWarnings returns true if any warnings were recorded.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// WriteTo writes Content followed by a newline if it does not already end
// with one. It implements io.WriterTo.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	content := r.Content
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	n, err := io.WriteString(w, content)
	return int64(n), err
}
