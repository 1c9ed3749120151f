package sink

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONSink writes one row kind as a newline-indented JSON array,
// streaming: each row is marshaled and appended as soon as it arrives
// rather than buffering the whole result set in memory.
type JSONSink struct {
	kind    Kind
	w       io.Writer
	enc     *json.Encoder
	wrote   bool
	closer  io.Closer
}

// NewJSONSink wraps w for writing rows of the given kind, opening the
// array immediately.
func NewJSONSink(w io.Writer, kind Kind) (*JSONSink, error) {
	if _, err := io.WriteString(w, "[\n"); err != nil {
		return nil, fmt.Errorf("sink: open array: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("  ", "  ")
	closer, _ := w.(io.Closer)
	return &JSONSink{kind: kind, w: w, enc: enc, closer: closer}, nil
}

func (s *JSONSink) writeRow(kind Kind, v any) error {
	if kind != s.kind {
		return fmt.Errorf("sink: json sink opened for %s, got %s row", s.kind.table(), kind.table())
	}
	if s.wrote {
		if _, err := io.WriteString(s.w, ",\n"); err != nil {
			return fmt.Errorf("sink: write separator: %w", err)
		}
	}
	if _, err := io.WriteString(s.w, "  "); err != nil {
		return fmt.Errorf("sink: write indent: %w", err)
	}
	if err := s.enc.Encode(v); err != nil {
		return fmt.Errorf("sink: encode row: %w", err)
	}
	s.wrote = true
	return nil
}

func (s *JSONSink) WriteMFT(row MFTRow) error          { return s.writeRow(KindMFT, row) }
func (s *JSONSink) WriteUsnJrnl(row UsnJrnlRow) error   { return s.writeRow(KindUsnJrnl, row) }
func (s *JSONSink) WriteLogFile(row LogFileRow) error   { return s.writeRow(KindLogFile, row) }
func (s *JSONSink) WriteTimeline(row TimelineRow) error { return s.writeRow(KindTimeline, row) }

// Close terminates the JSON array and, if the underlying writer is an
// io.Closer, closes it too.
func (s *JSONSink) Close() error {
	if _, err := io.WriteString(s.w, "\n]\n"); err != nil {
		return fmt.Errorf("sink: close array: %w", err)
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
