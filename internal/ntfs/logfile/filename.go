package logfile

import (
	"encoding/binary"
	"time"
	"unicode"
	"unicode/utf16"

	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/ntfstime"
)

// indexEntryOps add or remove an $I30 index entry; their redo/undo
// payload is an index entry wrapping a $FILE_NAME attribute.
var indexEntryOps = map[ntfstime.LogOpcode]bool{
	ntfstime.OpAddIndexEntryRoot:          true,
	ntfstime.OpDeleteIndexEntryRoot:       true,
	ntfstime.OpAddIndexEntryAllocation:    true,
	ntfstime.OpUpdateFileNameRoot:         true,
	ntfstime.OpUpdateFileNameAllocation:   true,
	ntfstime.OpDeleteIndexEntryAllocation: true,
}

// decodeClientData runs the $FILE_NAME heuristic over one record's
// client (redo + undo) data, trying progressively more generic
// interpretations until one yields a plausible filename.
func decodeClientData(rec *Record, data []byte, loc *time.Location) {
	if len(data) == 0 {
		return
	}

	if indexEntryOps[rec.RedoOp] {
		if window, ok := slice(data, int(rec.RedoOffset), int(rec.RedoLength)); ok {
			extractFileNameFromIndexEntry(rec, window, loc)
		}
		if rec.FileName == "" {
			extractFileNameFromIndexEntry(rec, data, loc)
		}
	}

	if rec.FileName == "" && indexEntryOps[rec.UndoOp] {
		if window, ok := slice(data, int(rec.UndoOffset), int(rec.UndoLength)); ok {
			extractFileNameFromIndexEntry(rec, window, loc)
		}
	}

	if rec.FileName == "" && rec.RedoOp == ntfstime.OpInitializeFileRecordSegment {
		if window, ok := slice(data, int(rec.RedoOffset), int(rec.RedoLength)); ok {
			scanForFileName(rec, window, loc)
		}
		if rec.FileName == "" {
			scanForFileName(rec, data, loc)
		}
	}

	if rec.FileName == "" && (rec.RedoOp == ntfstime.OpCreateAttribute || rec.RedoOp == ntfstime.OpDeleteAttribute) {
		if window, ok := slice(data, int(rec.RedoOffset), int(rec.RedoLength)); ok {
			parseAttributeForFileName(rec, window, loc)
		}
		if rec.FileName == "" {
			parseAttributeForFileName(rec, data, loc)
		}
	}

	if rec.FileName == "" && len(data) >= 0x44 {
		scanForFileName(rec, data, loc)
	}
}

func slice(data []byte, offset, length int) ([]byte, bool) {
	if length <= 0 || offset < 0 || offset+length > len(data) {
		return nil, false
	}
	return data[offset : offset+length], true
}

// extractFileNameFromIndexEntry treats data as an $I30 index entry: an
// 8-byte file reference, a 2-byte entry length, a 2-byte $FILE_NAME
// attribute length, 4 bytes of flags, and the $FILE_NAME content at
// offset 0x10.
func extractFileNameFromIndexEntry(rec *Record, data []byte, loc *time.Location) {
	const indexEntryHeaderSize = 0x52
	if len(data) < indexEntryHeaderSize {
		parseFileNameAttribute(rec, data, 0, loc)
		return
	}

	fileRef := binary.LittleEndian.Uint64(data[0x00:0x08])
	entryLen := binary.LittleEndian.Uint16(data[0x08:0x0A])
	nameAttrLen := binary.LittleEndian.Uint16(data[0x0A:0x0C])

	entryNumber := fileRef & 0x0000FFFFFFFFFFFF
	if entryNumber < 0x1000000000 && entryLen > 0x10 && nameAttrLen > 0 && len(data) >= 0x10+0x44 {
		rec.FileReference = ntfstime.FileReference(fileRef)
		parseFileNameAttribute(rec, data, 0x10, loc)
		if rec.FileName != "" {
			return
		}
	}

	parseFileNameAttribute(rec, data, 0, loc)
}

// parseFileNameAttribute decodes a $FILE_NAME attribute body found at
// offset within data, populating rec only when the content is plausible.
func parseFileNameAttribute(rec *Record, data []byte, offset int, loc *time.Location) {
	const bodyMin = 0x44
	if offset+bodyMin > len(data) {
		return
	}

	nameLen := int(data[offset+0x40])
	namespace := data[offset+0x41]
	if nameLen < 1 || nameLen > 255 || namespace > 3 {
		return
	}

	nameEnd := offset + 0x42 + nameLen*2
	if nameEnd > len(data) {
		return
	}

	name := decodeUTF16Printable(data[offset+0x42 : nameEnd])
	if name == "" {
		return
	}

	rec.FileName = name
	rec.ParentReference = ntfstime.FileReference(binary.LittleEndian.Uint64(data[offset : offset+8]))

	creation := int64(binary.LittleEndian.Uint64(data[offset+0x08 : offset+0x10]))
	if creation > 0 {
		rec.Timestamp = ntfstime.FromFileTime(creation, loc)
	}

	rec.FileAttr = ntfstime.FileAttr(binary.LittleEndian.Uint32(data[offset+0x38 : offset+0x3C]))
}

// parseAttributeForFileName treats data as a resident attribute record:
// a 4-byte type code, a 4-byte length, then (for $FILE_NAME) a 24-byte
// resident header before the $FILE_NAME body.
func parseAttributeForFileName(rec *Record, data []byte, loc *time.Location) {
	const residentHeaderSize = 0x18
	if len(data) < residentHeaderSize {
		return
	}

	attrType := ntfstime.AttrType(binary.LittleEndian.Uint32(data[0:4]))
	if attrType != ntfstime.AttrFileName {
		scanForFileName(rec, data, loc)
		return
	}

	attrLength := binary.LittleEndian.Uint32(data[4:8])
	if attrLength > residentHeaderSize && len(data) > residentHeaderSize {
		parseFileNameAttribute(rec, data, residentHeaderSize, loc)
	}
}

// scanForFileName is the fallback: probe 8-byte-aligned offsets for a
// plausible $FILE_NAME body, accepting the first candidate whose
// namespace byte, name length, and parent-reference entry portion all
// look sane and whose decoded name is fully printable.
func scanForFileName(rec *Record, data []byte, loc *time.Location) {
	const bodyMin = 0x44
	if len(data) < bodyMin {
		return
	}

	for offset := 0; offset <= len(data)-bodyMin; offset += 8 {
		nameLen := int(data[offset+0x40])
		namespace := data[offset+0x41]
		if nameLen < 1 || nameLen > 255 || namespace > 3 {
			continue
		}

		nameEnd := offset + 0x42 + nameLen*2
		if nameEnd > len(data) {
			continue
		}

		name := decodeUTF16Printable(data[offset+0x42 : nameEnd])
		if name == "" {
			continue
		}

		parentRef := binary.LittleEndian.Uint64(data[offset : offset+8])
		if parentRef&0x0000FFFFFFFFFFFF >= 0x10000000000 {
			continue
		}

		rec.FileName = name
		rec.ParentReference = ntfstime.FileReference(parentRef)

		ts := int64(binary.LittleEndian.Uint64(data[offset+0x08 : offset+0x10]))
		if ts > 0 {
			rec.Timestamp = ntfstime.FromFileTime(ts, loc)
		}
		rec.FileAttr = ntfstime.FileAttr(binary.LittleEndian.Uint32(data[offset+0x38 : offset+0x3C]))
		return
	}
}

// decodeUTF16Printable decodes raw to a string, returning "" unless the
// whole result is printable (allowing space, dot, and tab), guarding
// against interpreting arbitrary binary as a filename.
func decodeUTF16Printable(raw []byte) string {
	if len(raw)%2 != 0 {
		return ""
	}
	u := make([]uint16, len(raw)/2)
	for i := range u {
		u[i] = binary.LittleEndian.Uint16(raw[i*2:])
	}
	name := string(utf16.Decode(u))
	if name == "" {
		return ""
	}
	for _, r := range name {
		if r == ' ' || r == '.' || r == '\t' {
			continue
		}
		if !unicode.IsPrint(r) {
			return ""
		}
	}
	return name
}
