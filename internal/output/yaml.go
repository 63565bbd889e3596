package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLWriter writes each value as its own YAML document.
type YAMLWriter struct {
	w   io.Writer
	enc *yaml.Encoder
}

// Write encodes v as the next document in the stream.
func (w *YAMLWriter) Write(v any) error {
	if w.enc == nil {
		w.enc = yaml.NewEncoder(w.w)
		w.enc.SetIndent(2)
	}
	return w.enc.Encode(v)
}

// Close flushes the encoder.
func (w *YAMLWriter) Close() error {
	if w.enc == nil {
		return nil
	}
	return w.enc.Close()
}
