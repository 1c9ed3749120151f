// Package logfile decodes the $LogFile NTFS transaction log: its RSTR
// restart area, RCRD record pages, and the log records within them,
// recovering a $FILE_NAME for each record through an opcode-driven
// heuristic when the record touches a directory index or MFT entry.
package logfile

import (
	"errors"
	"io"
	"time"

	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/ntfserr"
)

// defaultPageSize is used for both restart-area candidate reads and, when
// the restart area does not report one, the record page size.
const defaultPageSize = 4096

var errNoValidRestartPage = errors.New("no valid $LogFile restart page found in first two pages")

// Decoder pulls Records out of a $LogFile stream one page at a time. It
// is a finite, non-restartable sequence: once Next returns io.EOF it
// always will.
type Decoder struct {
	r        io.Reader
	pageSize int
	loc      *time.Location

	pending    []*Record
	pendingIdx int
	done       bool
}

// NewDecoder reads and validates the restart area (trying the first
// page, then the second), then positions r at the start of the record
// page region before returning. loc governs timestamp rendering for any
// recovered $FILE_NAME content; pass nil for the project default.
func NewDecoder(r io.Reader, loc *time.Location) (*Decoder, error) {
	first := make([]byte, defaultPageSize)
	n1, err := io.ReadFull(r, first)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, ntfserr.NewIO("read $LogFile restart page", err)
	}
	consumed := int64(n1)

	restart, rerr := parseRestartPage(first[:n1])
	if rerr != nil {
		second := make([]byte, defaultPageSize)
		n2, err2 := io.ReadFull(r, second)
		if err2 != nil && err2 != io.ErrUnexpectedEOF && err2 != io.EOF {
			return nil, ntfserr.NewIO("read $LogFile restart page", err2)
		}
		consumed += int64(n2)

		restart, rerr = parseRestartPage(second[:n2])
		if rerr != nil {
			return nil, ntfserr.NewStructure("decode $LogFile restart area", errNoValidRestartPage)
		}
	}

	pageSize := defaultPageSize
	if restart.LogPageSize > 0 {
		pageSize = int(restart.LogPageSize)
	}

	target := int64(pageSize) * 2
	if skip := target - consumed; skip > 0 {
		io.CopyN(io.Discard, r, skip)
	}

	return &Decoder{r: r, pageSize: pageSize, loc: loc}, nil
}

// Next returns the next decoded log record, or io.EOF once the log is
// exhausted.
func (d *Decoder) Next() (*Record, error) {
	for {
		if d.pendingIdx < len(d.pending) {
			rec := d.pending[d.pendingIdx]
			d.pendingIdx++
			return rec, nil
		}
		if d.done {
			return nil, io.EOF
		}
		if err := d.fillPage(); err != nil {
			return nil, err
		}
	}
}

// fillPage reads and decodes the next RCRD page into d.pending. Pages
// that are empty, unrecognized, or fail fixup validation are silently
// skipped — a torn or unused page is expected tail-of-log noise, not a
// fatal condition.
func (d *Decoder) fillPage() error {
	buf := make([]byte, d.pageSize)
	for {
		n, err := io.ReadFull(d.r, buf)
		if err != nil {
			d.done = true
			d.pending = nil
			d.pendingIdx = 0
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			return ntfserr.NewIO("read $LogFile record page", err)
		}
		_ = n

		if isZeroPage(buf) {
			continue
		}

		page, _, err := parseRecordPage(buf)
		if err != nil {
			continue
		}

		records := parsePageRecords(page, d.loc)
		if len(records) == 0 {
			continue
		}
		d.pending = records
		d.pendingIdx = 0
		return nil
	}
}

// parsePageRecords walks every log record on one fixed-up RCRD page
// starting at recordPageHeaderSize, 8-byte-aligning past any record that
// fails to decode.
func parsePageRecords(page []byte, loc *time.Location) []*Record {
	var out []*Record
	offset := recordPageHeaderSize

	for offset+recordHeaderSize <= len(page) {
		if allZero(page[offset : offset+8]) {
			break
		}

		rec := decodeRecord(page, offset, loc)
		if rec == nil {
			offset += 8
			continue
		}

		out = append(out, rec)
		recordSize := recordHeaderSize + int(rec.ClientDataLength)
		recordSize = (recordSize + 7) &^ 7
		offset += recordSize
	}

	return out
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
