package extract

import (
	"bytes"
	"io"
	"testing"

	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/partition"
)

const testSectorSize = 512

func putUint16(b []byte, v uint16) { b[0] = byte(v); b[1] = byte(v >> 8) }
func putUint32(b []byte, v uint32) {
	b[0], b[1], b[2], b[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
}

// buildResidentDataRecord assembles a one-sector FILE record with a
// single resident $DATA (0x80) attribute holding value.
func buildResidentDataRecord(value []byte) []byte {
	const attrOffset = 56
	data := make([]byte, testSectorSize)
	copy(data[0:4], "FILE")
	putUint16(data[4:6], 48)
	putUint16(data[6:8], 2)
	putUint16(data[20:22], attrOffset)
	putUint16(data[22:24], 1) // in use

	attrLen := 24 + len(value)
	for attrLen%8 != 0 {
		attrLen++
	}
	putUint32(data[24:28], uint32(attrOffset+attrLen+8))
	putUint32(data[28:32], uint32(testSectorSize))

	putUint32(data[attrOffset:attrOffset+4], 0x80)
	putUint32(data[attrOffset+4:attrOffset+8], uint32(attrLen))
	putUint32(data[attrOffset+16:attrOffset+20], uint32(len(value)))
	putUint16(data[attrOffset+20:attrOffset+22], 24)
	copy(data[attrOffset+24:], value)
	putUint32(data[attrOffset+attrLen:attrOffset+attrLen+4], 0xFFFFFFFF)

	putUint16(data[510:512], 0x1234)
	putUint16(data[48:50], 0x1234)
	putUint16(data[50:52], 0x5678)

	return data
}

// singleEntryImage serves one fixed-size MFT entry at entry 0 and nothing
// else; enough to exercise Extractor.dataStream.
type singleEntryImage struct{ entry []byte }

func (s *singleEntryImage) ReadAt(offset int64, length int) ([]byte, error) {
	if offset != 0 {
		return make([]byte, length), nil
	}
	buf := make([]byte, length)
	copy(buf, s.entry)
	return buf, nil
}
func (s *singleEntryImage) Size() int64  { return int64(len(s.entry)) }
func (s *singleEntryImage) Close() error { return nil }

func TestExtractor_MFT_ResidentData(t *testing.T) {
	value := []byte("hello mft")
	img := &singleEntryImage{entry: buildResidentDataRecord(value)}
	part := &partition.Partition{
		Image:          img,
		MFTOffsetBytes: 0,
		MFTEntrySize:   testSectorSize,
	}

	e := New(part)
	r, err := e.MFT()
	if err != nil {
		t.Fatalf("MFT(): %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Fatalf("got %q, want %q", got, value)
	}
}

func TestExtractor_DataStream_MissingAttribute(t *testing.T) {
	raw := make([]byte, testSectorSize)
	copy(raw[0:4], "FILE")
	putUint16(raw[4:6], 48)
	putUint16(raw[6:8], 2)
	putUint16(raw[20:22], 56) // attrOffset points straight at an end marker
	putUint32(raw[24:28], 64)
	putUint32(raw[28:32], testSectorSize)
	putUint32(raw[56:60], 0xFFFFFFFF)
	putUint16(raw[510:512], 0x1234)
	putUint16(raw[48:50], 0x1234)
	putUint16(raw[50:52], 0x5678)

	img := &singleEntryImage{entry: raw}
	part := &partition.Partition{Image: img, MFTOffsetBytes: 0, MFTEntrySize: testSectorSize}

	e := New(part)
	if _, err := e.MFT(); err == nil {
		t.Fatalf("MFT(): expected error for record with no $DATA attribute")
	}
}

func TestExtractor_UsnJrnl_NotFound(t *testing.T) {
	// Only entry 0 decodes (singleEntryImage serves zeros at every other
	// offset); it has no matching $FILE_NAME, no $Extend index and no
	// $DATA to bound a fallback scan, so every lookup path should fail.
	raw := make([]byte, testSectorSize)
	copy(raw[0:4], "FILE")
	putUint16(raw[4:6], 48)
	putUint16(raw[6:8], 2)
	putUint16(raw[20:22], 56)
	putUint32(raw[24:28], 64)
	putUint32(raw[28:32], testSectorSize)
	putUint32(raw[56:60], 0xFFFFFFFF)
	putUint16(raw[510:512], 0x1234)
	putUint16(raw[48:50], 0x1234)
	putUint16(raw[50:52], 0x5678)

	img := &singleEntryImage{entry: raw}
	part := &partition.Partition{Image: img, MFTOffsetBytes: 0, MFTEntrySize: testSectorSize}

	e := New(part)
	if _, err := e.UsnJrnl(); err == nil {
		t.Fatalf("UsnJrnl(): expected not-found error")
	}
}
