package sink

import (
	"encoding/csv"
	"fmt"
	"io"
)

// utf8BOM is written before the header row so spreadsheet tools that
// sniff a byte-order mark render the file's non-ASCII filenames
// correctly instead of guessing a legacy code page.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TextSink writes one row kind as delimited text (CSV), prefixed with a
// UTF-8 BOM and a header row matching that kind's column list.
type TextSink struct {
	kind   Kind
	w      *csv.Writer
	closer io.Closer
}

// NewTextSink wraps w for writing rows of the given kind. w is BOM- and
// header-prefixed immediately.
func NewTextSink(w io.Writer, kind Kind) (*TextSink, error) {
	if _, err := w.Write(utf8BOM); err != nil {
		return nil, fmt.Errorf("sink: write BOM: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(kind.columns()); err != nil {
		return nil, fmt.Errorf("sink: write header: %w", err)
	}
	closer, _ := w.(io.Closer)
	return &TextSink{kind: kind, w: cw, closer: closer}, nil
}

func (s *TextSink) writeRow(kind Kind, row []string) error {
	if kind != s.kind {
		return fmt.Errorf("sink: text sink opened for %s, got %s row", s.kind.table(), kind.table())
	}
	if err := s.w.Write(row); err != nil {
		return fmt.Errorf("sink: write row: %w", err)
	}
	return nil
}

func (s *TextSink) WriteMFT(row MFTRow) error           { return s.writeRow(KindMFT, row.strings()) }
func (s *TextSink) WriteUsnJrnl(row UsnJrnlRow) error    { return s.writeRow(KindUsnJrnl, row.strings()) }
func (s *TextSink) WriteLogFile(row LogFileRow) error    { return s.writeRow(KindLogFile, row.strings()) }
func (s *TextSink) WriteTimeline(row TimelineRow) error  { return s.writeRow(KindTimeline, row.strings()) }

// Close flushes the CSV writer and, if the underlying writer is an
// io.Closer, closes it too.
func (s *TextSink) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("sink: flush: %w", err)
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
