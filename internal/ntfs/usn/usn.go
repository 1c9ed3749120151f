// Package usn streams $UsnJrnl:$J records out of an io.Reader with a
// sliding buffer, skipping the journal's large sparse prefix and
// resyncing past corruption the way a live journal's torn tail requires.
package usn

import (
	"encoding/binary"
	"io"
	"unicode/utf16"

	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/ntfstime"
)

const (
	bufferSize  = 1 << 20 // 1 MiB read chunks, matching the Python reference's buffering
	minRecordV2 = 60
	minRecordV3 = 76
	maxRecordLen = 65536
)

// Record is one decoded USN_RECORD (v2, v3, or v4 — v4 carries the same
// fields this project surfaces as v3).
type Record struct {
	RecordLength uint32
	MajorVersion uint16
	MinorVersion uint16
	FileRef      ntfstime.FileReference
	ParentRef    ntfstime.FileReference
	USN          int64
	TimestampRaw int64
	Reason       ntfstime.UsnReason
	SourceInfo   uint32
	SecurityID   uint32
	FileAttr     ntfstime.FileAttr
	Name         string
}

// Scanner pulls Records one at a time from an underlying io.Reader. It is
// a finite, non-restartable sequence: once Next returns io.EOF it always
// will.
type Scanner struct {
	r              io.Reader
	buf            []byte
	processedBytes int64
	totalSize      int64
	sourceEOF      bool
}

// NewScanner wraps r. totalSize is the journal's advertised size, used
// only for Progress(); pass 0 if unknown.
func NewScanner(r io.Reader, totalSize int64) *Scanner {
	return &Scanner{r: r, totalSize: totalSize}
}

// Progress returns the fraction of totalSize consumed so far, clamped to
// [0, 1], or 0 if totalSize was never supplied.
func (s *Scanner) Progress() float64 {
	if s.totalSize <= 0 {
		return 0
	}
	p := float64(s.processedBytes) / float64(s.totalSize)
	if p > 1 {
		p = 1
	}
	return p
}

// fill reads from the source until buf holds at least need bytes or the
// source is exhausted.
func (s *Scanner) fill(need int) {
	for len(s.buf) < need && !s.sourceEOF {
		chunk := make([]byte, bufferSize)
		n, err := s.r.Read(chunk)
		if n > 0 {
			s.buf = append(s.buf, chunk[:n]...)
		}
		if err != nil {
			s.sourceEOF = true
		}
	}
}

// Next decodes and returns the next record, or io.EOF when the stream is
// exhausted. Unparseable records (unknown major version, truncated tail)
// are silently skipped rather than returned as errors, matching the
// journal's own tolerance of a torn final record.
func (s *Scanner) Next() (*Record, error) {
	for {
		s.fill(minRecordV2)
		if len(s.buf) < minRecordV2 {
			return nil, io.EOF
		}

		if isZero8(s.buf[:8]) {
			n := countZeroRun(s.buf)
			s.processedBytes += int64(n)
			s.buf = s.buf[n:]
			continue
		}

		recordLength := binary.LittleEndian.Uint32(s.buf[0:4])
		if recordLength < minRecordV2 || recordLength > maxRecordLen {
			s.resync()
			continue
		}

		if uint32(len(s.buf)) < recordLength {
			s.fill(int(recordLength))
			if uint32(len(s.buf)) < recordLength {
				return nil, io.EOF
			}
		}

		recordData := s.buf[:recordLength]
		s.processedBytes += int64(recordLength)
		s.buf = s.buf[recordLength:]

		if rec := decodeRecord(recordData); rec != nil {
			return rec, nil
		}
	}
}

func isZero8(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// countZeroRun returns the 8-byte-aligned length of the zero run at the
// start of buf. buf[:8] is assumed already known to be zero.
func countZeroRun(buf []byte) int {
	limit := len(buf) - 8
	for i := 0; i < limit; i += 8 {
		if !isZero8(buf[i : i+8]) {
			return i
		}
	}
	return (len(buf) / 8) * 8
}

// resync probes 8-byte-aligned offsets for a plausible record header
// (length in range, major version 2-4, minor version 0) and advances to
// it. If none is found in the current window, it keeps the trailing
// minRecordV2 bytes per the original reference's retention policy, then
// tops up the buffer with fresh source bytes — ensuring forward progress
// even when that trailing window can never resolve to a valid header, a
// case the original Python scan can spin on indefinitely.
func (s *Scanner) resync() {
	limit := len(s.buf) - 8
	for i := 8; i < limit; i += 8 {
		potentialLen := binary.LittleEndian.Uint32(s.buf[i : i+4])
		if potentialLen < minRecordV2 || potentialLen > maxRecordLen {
			continue
		}
		major := binary.LittleEndian.Uint16(s.buf[i+4 : i+6])
		minor := binary.LittleEndian.Uint16(s.buf[i+6 : i+8])
		if minor == 0 && (major == 2 || major == 3 || major == 4) {
			s.processedBytes += int64(i)
			s.buf = s.buf[i:]
			return
		}
	}

	drop := len(s.buf) - minRecordV2
	if drop > 0 {
		s.processedBytes += int64(drop)
		s.buf = s.buf[drop:]
	}
	s.fill(minRecordV2 + 1)
}

func decodeRecord(data []byte) *Record {
	if len(data) < minRecordV2 {
		return nil
	}
	major := binary.LittleEndian.Uint16(data[4:6])
	minor := binary.LittleEndian.Uint16(data[6:8])
	switch major {
	case 2:
		return decodeV2(data, major, minor)
	case 3, 4:
		return decodeV3(data, major, minor)
	default:
		return nil
	}
}

func decodeV2(data []byte, major, minor uint16) *Record {
	if len(data) < minRecordV2 {
		return nil
	}
	rec := &Record{
		RecordLength: binary.LittleEndian.Uint32(data[0:4]),
		MajorVersion: major,
		MinorVersion: minor,
		FileRef:      ntfstime.FileReference(binary.LittleEndian.Uint64(data[8:16])),
		ParentRef:    ntfstime.FileReference(binary.LittleEndian.Uint64(data[16:24])),
		USN:          int64(binary.LittleEndian.Uint64(data[24:32])),
		TimestampRaw: int64(binary.LittleEndian.Uint64(data[32:40])),
		Reason:       ntfstime.UsnReason(binary.LittleEndian.Uint32(data[40:44])),
		SourceInfo:   binary.LittleEndian.Uint32(data[44:48]),
		SecurityID:   binary.LittleEndian.Uint32(data[48:52]),
		FileAttr:     ntfstime.FileAttr(binary.LittleEndian.Uint32(data[52:56])),
	}
	rec.Name = decodeName(data, binary.LittleEndian.Uint16(data[58:60]), binary.LittleEndian.Uint16(data[56:58]))
	return rec
}

// decodeV3 covers both v3 and v4: the 128-bit file/parent references are
// halved into the low 64 bits this project surfaces and a high-64 half
// (extra_info) that carries no field of interest here, matching the
// reference parser's own v3/v4 field selection.
func decodeV3(data []byte, major, minor uint16) *Record {
	if len(data) < minRecordV3 {
		return nil
	}
	rec := &Record{
		RecordLength: binary.LittleEndian.Uint32(data[0:4]),
		MajorVersion: major,
		MinorVersion: minor,
		FileRef:      ntfstime.FileReference(binary.LittleEndian.Uint64(data[8:16])),
		ParentRef:    ntfstime.FileReference(binary.LittleEndian.Uint64(data[24:32])),
		USN:          int64(binary.LittleEndian.Uint64(data[40:48])),
		TimestampRaw: int64(binary.LittleEndian.Uint64(data[48:56])),
		Reason:       ntfstime.UsnReason(binary.LittleEndian.Uint32(data[56:60])),
		SourceInfo:   binary.LittleEndian.Uint32(data[60:64]),
		SecurityID:   binary.LittleEndian.Uint32(data[64:68]),
		FileAttr:     ntfstime.FileAttr(binary.LittleEndian.Uint32(data[68:72])),
	}
	rec.Name = decodeName(data, binary.LittleEndian.Uint16(data[74:76]), binary.LittleEndian.Uint16(data[72:74]))
	return rec
}

func decodeName(data []byte, offset, length uint16) string {
	start := int(offset)
	end := start + int(length)
	if start < 0 || end > len(data) || start > end {
		return ""
	}
	u := make([]uint16, length/2)
	for i := range u {
		u[i] = binary.LittleEndian.Uint16(data[start+i*2:])
	}
	return string(utf16.Decode(u))
}
