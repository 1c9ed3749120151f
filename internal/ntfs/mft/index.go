package mft

import (
	"encoding/binary"

	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/ntfstime"
)

const indexEntryLastFlag = 0x02

// IndexEntry is one decoded $I30 directory index entry.
type IndexEntry struct {
	FileRef  ntfstime.FileReference
	FileName FileName
	HasName  bool
}

// ParseIndexRoot decodes a resident $INDEX_ROOT (0x90, name "$I30") value
// and returns its entries plus whether the index is marked LARGE_INDEX
// (meaning a companion $INDEX_ALLOCATION must also be walked).
func ParseIndexRoot(value []byte) (entries []IndexEntry, largeIndex bool) {
	if len(value) < 32 {
		return nil, false
	}
	entriesOffset := binary.LittleEndian.Uint32(value[16:20])
	indexFlags := value[28]
	largeIndex = indexFlags&0x01 != 0

	base := 16
	start := base + int(entriesOffset)
	if start < 0 || start > len(value) {
		return nil, largeIndex
	}
	return parseIndexEntries(value[start:]), largeIndex
}

// ParseIndexAllocation decodes a non-resident $INDEX_ALLOCATION (0xA0,
// name "$I30") stream: a sequence of indexRecordSize-byte INDX-signed
// blocks, each fixed up the same way as an MFT entry.
func ParseIndexAllocation(data []byte, indexRecordSize int) []IndexEntry {
	var all []IndexEntry
	if indexRecordSize <= 0 {
		return all
	}

	for offset := 0; offset+indexRecordSize <= len(data); offset += indexRecordSize {
		block := make([]byte, indexRecordSize)
		copy(block, data[offset:offset+indexRecordSize])

		if string(block[0:4]) != "INDX" {
			continue
		}

		usaOffset := binary.LittleEndian.Uint16(block[4:6])
		usaCount := binary.LittleEndian.Uint16(block[6:8])
		if err := ApplyFixup(block, usaOffset, usaCount); err != nil {
			continue
		}

		if len(block) < 28 {
			continue
		}
		entriesOffset := binary.LittleEndian.Uint32(block[24:28])
		start := 24 + int(entriesOffset)
		if start < 0 || start > len(block) {
			continue
		}

		all = append(all, parseIndexEntries(block[start:])...)
	}

	return all
}

func parseIndexEntries(data []byte) []IndexEntry {
	var entries []IndexEntry
	offset := 0

	for offset+16 <= len(data) {
		fileRef := ntfstime.FileReference(binary.LittleEndian.Uint64(data[offset : offset+8]))
		entryLength := binary.LittleEndian.Uint16(data[offset+8 : offset+10])
		contentLength := binary.LittleEndian.Uint16(data[offset+10 : offset+12])
		flags := binary.LittleEndian.Uint32(data[offset+12 : offset+16])

		if entryLength == 0 {
			break
		}

		if flags&indexEntryLastFlag == 0 && contentLength >= 66 {
			contentEnd := offset + 16 + int(contentLength)
			if contentEnd <= len(data) {
				if fn, ok := DecodeFileName(data[offset+16 : contentEnd]); ok {
					entries = append(entries, IndexEntry{FileRef: fileRef, FileName: fn, HasName: true})
				}
			}
		}

		if flags&indexEntryLastFlag != 0 {
			break
		}

		offset += int(entryLength)
	}

	return entries
}

// LookupName returns the file reference for an exact-match child name
// among entries, or false if not found. Namespace is not filtered here;
// callers that need to skip DOS-only aliases do so themselves.
func LookupName(entries []IndexEntry, name string) (ntfstime.FileReference, bool) {
	for _, e := range entries {
		if e.HasName && e.FileName.Name == name {
			return e.FileRef, true
		}
	}
	return 0, false
}
