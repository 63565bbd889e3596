package output

import (
	"encoding/json"
	"io"
)

// JSONWriter buffers values and writes them on Close: a single value is
// written as-is, several as one JSON array.
type JSONWriter struct {
	w      io.Writer
	indent string
	items  []any
}

// Write buffers a value.
func (w *JSONWriter) Write(v any) error {
	w.items = append(w.items, v)
	return nil
}

// Close writes the buffered values. With nothing buffered it writes nothing.
func (w *JSONWriter) Close() error {
	if len(w.items) == 0 {
		return nil
	}

	var payload any = w.items
	if len(w.items) == 1 {
		payload = w.items[0]
	}
	w.items = nil

	enc := json.NewEncoder(w.w)
	enc.SetEscapeHTML(false)
	if w.indent != "" {
		enc.SetIndent("", w.indent)
	}
	return enc.Encode(payload)
}

// JSONLWriter writes newline-delimited JSON, one value per line, immediately.
type JSONLWriter struct {
	w io.Writer
}

// Write writes a single value as a JSON line.
func (w *JSONLWriter) Write(v any) error {
	enc := json.NewEncoder(w.w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// Close is a no-op; JSONL output is never buffered.
func (w *JSONLWriter) Close() error {
	return nil
}
