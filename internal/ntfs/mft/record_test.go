package mft

import "testing"

// buildMFTRecord assembles a minimal one-sector FILE record with a fixup
// array covering a single 512-byte sector and one resident attribute.
func buildMFTRecord(attrType uint32, attrValue []byte) []byte {
	const attrOffset = 56
	data := make([]byte, sectorSize)
	copy(data[0:4], "FILE")
	putUint16(data[4:6], 48)  // usaOffset
	putUint16(data[6:8], 2)   // usaCount: 1 sector + signature word
	putUint16(data[16:18], 1) // sequence number
	putUint16(data[18:20], 1) // link count
	putUint16(data[20:22], attrOffset)
	putUint16(data[22:24], 1) // MFT_RECORD_IN_USE

	attrLen := 24 + len(attrValue)
	for attrLen%8 != 0 {
		attrLen++
	}
	putUint32(data[24:28], uint32(attrOffset+attrLen+8)) // used size
	putUint32(data[28:32], uint32(sectorSize))           // allocated size

	putUint32(data[attrOffset:attrOffset+4], attrType)
	putUint32(data[attrOffset+4:attrOffset+8], uint32(attrLen))
	putUint32(data[attrOffset+16:attrOffset+20], uint32(len(attrValue)))
	putUint16(data[attrOffset+20:attrOffset+22], 24)
	copy(data[attrOffset+24:], attrValue)

	putUint32(data[attrOffset+attrLen:attrOffset+attrLen+4], 0xFFFFFFFF)

	// fixup: set the sector-tail signature and the matching array entry
	const signature = uint16(0x4242)
	putUint16(data[510:512], signature)
	putUint16(data[48:50], signature)
	putUint16(data[50:52], 0xABCD)

	return data
}

func TestDecode_RoundTripsAttribute(t *testing.T) {
	value := []byte{1, 2, 3, 4}
	raw := buildMFTRecord(uint32(0x80), value)

	rec, err := Decode(raw, 42)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if rec.EntryNumber != 42 {
		t.Fatalf("EntryNumber = %d, want 42", rec.EntryNumber)
	}
	if !rec.InUse() {
		t.Fatalf("InUse() = false, want true")
	}

	// Fixup must have replaced the sector tail with the array entry.
	if rec.data[510] != 0xCD || rec.data[511] != 0xAB {
		t.Fatalf("sector tail after fixup = %x %x, want CD AB", rec.data[510], rec.data[511])
	}

	attr := rec.FindFirst(0x80, "")
	if attr == nil {
		t.Fatalf("FindFirst(0x80): not found")
	}
	if string(attr.Value) != string(value) {
		t.Fatalf("attribute value = %v, want %v", attr.Value, value)
	}
}

func TestDecode_RejectsBadSignature(t *testing.T) {
	raw := make([]byte, sectorSize)
	copy(raw[0:4], "BAAD")
	if _, err := Decode(raw, 0); err == nil {
		t.Fatalf("Decode: expected error for BAAD signature")
	}
}

func TestDecode_RejectsTooSmall(t *testing.T) {
	if _, err := Decode(make([]byte, 10), 0); err == nil {
		t.Fatalf("Decode: expected error for undersized buffer")
	}
}

func TestFindAll_ReturnsEveryMatch(t *testing.T) {
	raw := buildMFTRecord(uint32(0x30), make([]byte, 66))
	rec, err := Decode(raw, 1)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := rec.FindAll(0x30); len(got) != 1 {
		t.Fatalf("FindAll(0x30) = %d results, want 1", len(got))
	}
	if got := rec.FindAll(0x10); len(got) != 0 {
		t.Fatalf("FindAll(0x10) = %d results, want 0", len(got))
	}
}
