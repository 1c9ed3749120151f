package mft

import "testing"

func buildFixedUpRecord(sectors int, signature uint16, usaOffset uint16) []byte {
	data := make([]byte, sectors*sectorSize)
	for i := 0; i < sectors; i++ {
		tail := (i+1)*sectorSize - 2
		data[tail] = byte(signature)
		data[tail+1] = byte(signature >> 8)
	}
	data[usaOffset] = byte(signature)
	data[usaOffset+1] = byte(signature >> 8)
	for i := 0; i < sectors; i++ {
		off := usaOffset + 2 + uint16(i)*2
		data[off] = byte(0xAB + i)
		data[off+1] = byte(0xCD + i)
	}
	return data
}

func TestApplyFixup_ReplacesSectorTails(t *testing.T) {
	const usaOffset = 42
	data := buildFixedUpRecord(2, 0x5A5A, usaOffset)

	if err := ApplyFixup(data, usaOffset, 3); err != nil {
		t.Fatalf("ApplyFixup: %v", err)
	}

	if data[510] != 0xAB || data[511] != 0xCD {
		t.Fatalf("sector 1 tail = %x %x, want AB CD", data[510], data[511])
	}
	if data[1022] != 0xAC || data[1023] != 0xCE {
		t.Fatalf("sector 2 tail = %x %x, want AC CE", data[1022], data[1023])
	}
}

func TestApplyFixup_MismatchRejected(t *testing.T) {
	const usaOffset = 42
	data := buildFixedUpRecord(1, 0x5A5A, usaOffset)
	data[510] = 0xFF // torn write: sector tail no longer matches the signature word

	if err := ApplyFixup(data, usaOffset, 2); err == nil {
		t.Fatalf("ApplyFixup: expected mismatch error, got nil")
	}
}

func TestApplyFixup_ShortCountIsNoop(t *testing.T) {
	data := make([]byte, sectorSize)
	if err := ApplyFixup(data, 0, 1); err != nil {
		t.Fatalf("ApplyFixup with usaCount<2: %v", err)
	}
}

func TestApplyFixup_OutOfBounds(t *testing.T) {
	data := make([]byte, 16)
	if err := ApplyFixup(data, 10, 10); err == nil {
		t.Fatalf("ApplyFixup: expected out-of-bounds error, got nil")
	}
}
