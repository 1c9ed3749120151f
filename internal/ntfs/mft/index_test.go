package mft

import "testing"

func buildIndexEntry(name string, fileRef uint64, last bool) []byte {
	fn := make([]byte, 66+len(name)*2)
	fn[64] = byte(len(name))
	fn[65] = 1 // Win32
	for i, r := range name {
		fn[66+i*2] = byte(r)
	}

	entryLen := 16 + len(fn)
	// round up to 8-byte alignment like real index entries
	for entryLen%8 != 0 {
		entryLen++
	}
	buf := make([]byte, entryLen)
	buf[0] = byte(fileRef)
	buf[1] = byte(fileRef >> 8)
	putUint16(buf[8:], uint16(entryLen))
	putUint16(buf[10:], uint16(len(fn)))
	if last {
		buf[12] = 0x02
	}
	copy(buf[16:], fn)
	return buf
}

func putUint16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func TestParseIndexEntries_StopsAtLastFlag(t *testing.T) {
	var data []byte
	data = append(data, buildIndexEntry("alpha", 10, false)...)
	data = append(data, buildIndexEntry("beta", 11, false)...)
	data = append(data, buildIndexEntry("", 0, true)...)

	entries := parseIndexEntries(data)
	if len(entries) != 2 {
		t.Fatalf("parseIndexEntries: got %d entries, want 2", len(entries))
	}
	if entries[0].FileName.Name != "alpha" || entries[1].FileName.Name != "beta" {
		t.Fatalf("unexpected names: %+v", entries)
	}
}

func TestLookupName(t *testing.T) {
	entries := []IndexEntry{
		{FileRef: 10, FileName: FileName{Name: "target"}, HasName: true},
		{FileRef: 11, FileName: FileName{Name: "other"}, HasName: true},
	}
	ref, ok := LookupName(entries, "target")
	if !ok || ref != 10 {
		t.Fatalf("LookupName = %d, %v, want 10, true", ref, ok)
	}
	if _, ok := LookupName(entries, "missing"); ok {
		t.Fatalf("LookupName: expected not found")
	}
}

func TestParseIndexRoot_SmallIndex(t *testing.T) {
	entriesOffset := uint32(16) // relative to the node-header start at byte 16
	header := make([]byte, 32)
	putUint32(header[0:4], 0x30)
	putUint32(header[16:20], entriesOffset)
	header[28] = 0x00 // not a large index

	var data []byte
	data = append(data, header...)
	data = append(data, buildIndexEntry("only", 5, false)...)
	data = append(data, buildIndexEntry("", 0, true)...)

	entries, large := ParseIndexRoot(data)
	if large {
		t.Fatalf("ParseIndexRoot: large=true, want false")
	}
	if len(entries) != 1 || entries[0].FileName.Name != "only" {
		t.Fatalf("ParseIndexRoot entries=%+v", entries)
	}
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
