package usn

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

func putU16(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }
func putU32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
func putU64(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }

// buildV2Record assembles one well-formed v2 USN_RECORD for name, padded
// to an 8-byte multiple as the journal itself does.
func buildV2Record(name string, usnValue int64) []byte {
	nameUTF16 := utf16Encode(name)
	const headerLen = 60
	total := headerLen + len(nameUTF16)
	for total%8 != 0 {
		total++
	}
	buf := make([]byte, total)

	putU32(buf[0:4], uint32(total))
	putU16(buf[4:6], 2)
	putU16(buf[6:8], 0)
	putU64(buf[8:16], 0x1111)
	putU64(buf[16:24], 0x2222)
	binary.LittleEndian.PutUint64(buf[24:32], uint64(usnValue))
	putU64(buf[32:40], 0)
	putU32(buf[40:44], 0x00000002) // FILE_CREATE
	putU32(buf[44:48], 0)
	putU32(buf[48:52], 0)
	putU32(buf[52:56], 0x10) // FILE_ATTRIBUTE_DIRECTORY
	putU16(buf[56:58], uint16(len(nameUTF16)))
	putU16(buf[58:60], headerLen)
	copy(buf[headerLen:], nameUTF16)
	return buf
}

func buildV3Record(name string, usnValue int64) []byte {
	nameUTF16 := utf16Encode(name)
	const headerLen = 76
	total := headerLen + len(nameUTF16)
	for total%8 != 0 {
		total++
	}
	buf := make([]byte, total)

	putU32(buf[0:4], uint32(total))
	putU16(buf[4:6], 3)
	putU16(buf[6:8], 0)
	putU64(buf[8:16], 0xAAAA)
	putU64(buf[16:24], 0) // extra_info1
	putU64(buf[24:32], 0xBBBB)
	putU64(buf[32:40], 0) // extra_info2
	binary.LittleEndian.PutUint64(buf[40:48], uint64(usnValue))
	putU64(buf[48:56], 0)
	putU32(buf[56:60], 0x00000001) // FILE_DATA_OVERWRITE
	putU32(buf[60:64], 0)
	putU32(buf[64:68], 0)
	putU32(buf[68:72], 0x20) // FILE_ATTRIBUTE_ARCHIVE
	putU16(buf[72:74], uint16(len(nameUTF16)))
	putU16(buf[74:76], headerLen)
	copy(buf[headerLen:], nameUTF16)
	return buf
}

func utf16Encode(s string) []byte {
	var out []byte
	for _, r := range s {
		out = append(out, byte(r), byte(r>>8))
	}
	return out
}

func TestScanner_DecodesV2Record(t *testing.T) {
	rec := buildV2Record("foo.txt", 4096)
	s := NewScanner(bytes.NewReader(rec), int64(len(rec)))

	got, err := s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.Name != "foo.txt" {
		t.Fatalf("Name = %q, want foo.txt", got.Name)
	}
	if got.USN != 4096 {
		t.Fatalf("USN = %d, want 4096", got.USN)
	}
	if got.MajorVersion != 2 {
		t.Fatalf("MajorVersion = %d, want 2", got.MajorVersion)
	}
	if got.FileRef.EntryNumber() != 0x1111 {
		t.Fatalf("FileRef = %#x, want 0x1111", uint64(got.FileRef))
	}

	if _, err := s.Next(); err != io.EOF {
		t.Fatalf("second Next err = %v, want io.EOF", err)
	}
}

func TestScanner_DecodesV3Record(t *testing.T) {
	rec := buildV3Record("bar.dat", 8192)
	s := NewScanner(bytes.NewReader(rec), int64(len(rec)))

	got, err := s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.Name != "bar.dat" {
		t.Fatalf("Name = %q, want bar.dat", got.Name)
	}
	if got.USN != 8192 {
		t.Fatalf("USN = %d, want 8192", got.USN)
	}
	if got.FileRef.EntryNumber() != 0xAAAA {
		t.Fatalf("FileRef = %#x, want 0xAAAA", uint64(got.FileRef))
	}
	if got.ParentRef.EntryNumber() != 0xBBBB {
		t.Fatalf("ParentRef = %#x, want 0xBBBB", uint64(got.ParentRef))
	}
}

func TestScanner_SkipsSparseZeroPrefix(t *testing.T) {
	zeros := make([]byte, 4096)
	rec := buildV2Record("after-gap.txt", 1)
	stream := append(zeros, rec...)

	s := NewScanner(bytes.NewReader(stream), int64(len(stream)))
	got, err := s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.Name != "after-gap.txt" {
		t.Fatalf("Name = %q, want after-gap.txt", got.Name)
	}
}

func TestScanner_MultipleRecordsInSequence(t *testing.T) {
	a := buildV2Record("a.txt", 1)
	b := buildV3Record("b.txt", 2)
	c := buildV2Record("c.txt", 3)
	stream := append(append(a, b...), c...)

	s := NewScanner(bytes.NewReader(stream), int64(len(stream)))
	var names []string
	for {
		rec, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		names = append(names, rec.Name)
	}

	want := []string{"a.txt", "b.txt", "c.txt"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestScanner_ResyncsPastGarbage(t *testing.T) {
	garbage := bytes.Repeat([]byte{0xFF}, 128)
	rec := buildV2Record("recovered.txt", 42)
	stream := append(garbage, rec...)

	s := NewScanner(bytes.NewReader(stream), int64(len(stream)))
	got, err := s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.Name != "recovered.txt" {
		t.Fatalf("Name = %q, want recovered.txt", got.Name)
	}
}

func TestScanner_EmptyStreamYieldsEOF(t *testing.T) {
	s := NewScanner(bytes.NewReader(nil), 0)
	if _, err := s.Next(); err != io.EOF {
		t.Fatalf("Next err = %v, want io.EOF", err)
	}
}

func TestScanner_Progress(t *testing.T) {
	rec := buildV2Record("x.txt", 1)
	s := NewScanner(bytes.NewReader(rec), int64(len(rec)))
	if p := s.Progress(); p != 0 {
		t.Fatalf("Progress before read = %v, want 0", p)
	}
	if _, err := s.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if p := s.Progress(); p != 1 {
		t.Fatalf("Progress after full read = %v, want 1", p)
	}
}

func TestScanner_ProgressWithoutTotalSize(t *testing.T) {
	rec := buildV2Record("x.txt", 1)
	s := NewScanner(bytes.NewReader(rec), 0)
	if _, err := s.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if p := s.Progress(); p != 0 {
		t.Fatalf("Progress = %v, want 0 when totalSize unknown", p)
	}
}
