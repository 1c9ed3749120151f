package mft

import (
	"encoding/binary"
	"unicode/utf16"

	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/ntfstime"
)

// DataRun is one decoded cluster extent: Sparse runs carry no LCN.
type DataRun struct {
	StartLCN int64
	Length   uint64
	Sparse   bool
}

// Attribute is one decoded MFT attribute header plus its resident value or
// non-resident run list.
type Attribute struct {
	Type        ntfstime.AttrType
	Name        string
	NonResident bool
	Flags       uint16
	AttrID      uint16

	// Resident
	Value []byte

	// Non-resident
	StartVCN      uint64
	EndVCN        uint64
	AllocatedSize uint64
	RealSize      uint64
	InitSize      uint64
	Runs          []DataRun
}

// parseAttributes walks the attribute list starting at offset within data,
// stopping at the end-of-list marker, a zero or overlong length, or the
// record's declared used size. Malformed attributes are dropped and the
// walk stops at the first one rather than guessing a resync point, per the
// tolerant-decoder policy: a corrupt attribute list almost always means
// the rest of the record is untrustworthy too.
func parseAttributes(data []byte, start uint16, usedSize uint32) []Attribute {
	var attrs []Attribute
	offset := int(start)
	limit := len(data)
	if int(usedSize) < limit {
		limit = int(usedSize)
	}

	for offset+4 <= limit {
		attrType := ntfstime.AttrType(binary.LittleEndian.Uint32(data[offset : offset+4]))
		if attrType == ntfstime.AttrEnd {
			break
		}
		if offset+16 > limit {
			break
		}
		length := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		if length == 0 || int(length) > limit-offset {
			break
		}

		nonResident := data[offset+8] != 0
		nameLength := data[offset+9]
		nameOffset := binary.LittleEndian.Uint16(data[offset+10 : offset+12])
		flags := binary.LittleEndian.Uint16(data[offset+12 : offset+14])
		attrID := binary.LittleEndian.Uint16(data[offset+14 : offset+16])

		var name string
		if nameLength > 0 {
			nameStart := offset + int(nameOffset)
			nameEnd := nameStart + int(nameLength)*2
			if nameEnd <= limit {
				name = decodeUTF16LE(data[nameStart:nameEnd])
			}
		}

		attr := Attribute{
			Type:        attrType,
			Name:        name,
			NonResident: nonResident,
			Flags:       flags,
			AttrID:      attrID,
		}

		if nonResident {
			if offset+64 <= limit {
				attr.StartVCN = binary.LittleEndian.Uint64(data[offset+16 : offset+24])
				attr.EndVCN = binary.LittleEndian.Uint64(data[offset+24 : offset+32])
				runListOffset := binary.LittleEndian.Uint16(data[offset+32 : offset+34])
				attr.AllocatedSize = binary.LittleEndian.Uint64(data[offset+40 : offset+48])
				attr.RealSize = binary.LittleEndian.Uint64(data[offset+48 : offset+56])
				attr.InitSize = binary.LittleEndian.Uint64(data[offset+56 : offset+64])

				runStart := offset + int(runListOffset)
				runEnd := offset + int(length)
				if runStart >= 0 && runStart <= limit && runEnd <= limit && runStart <= runEnd {
					attr.Runs = parseDataRuns(data[runStart:runEnd])
				}
			}
		} else {
			if offset+24 <= limit {
				valueLength := binary.LittleEndian.Uint32(data[offset+16 : offset+20])
				valueOffset := binary.LittleEndian.Uint16(data[offset+20 : offset+22])
				valueStart := offset + int(valueOffset)
				valueEnd := valueStart + int(valueLength)
				if valueStart >= 0 && valueEnd <= limit && valueStart <= valueEnd {
					attr.Value = data[valueStart:valueEnd]
				}
			}
		}

		attrs = append(attrs, attr)
		offset += int(length)
	}

	return attrs
}

// parseDataRuns decodes a run-list byte stream: each run is a header byte
// (low nibble = length-size L, high nibble = offset-size O), L bytes of
// unsigned length, then O bytes of a little-endian two's-complement signed
// LCN delta. O == 0 marks a sparse run; the running LCN is otherwise
// accumulated across runs. The list ends at a zero header byte or when the
// declared sizes would read past data.
func parseDataRuns(data []byte) []DataRun {
	var runs []DataRun
	offset := 0
	currentLCN := int64(0)

	for offset < len(data) {
		header := data[offset]
		if header == 0 {
			break
		}

		lengthSize := int(header & 0x0F)
		offsetSize := int(header >> 4)
		if offset+1+lengthSize+offsetSize > len(data) {
			break
		}

		length := uint64(0)
		for i := 0; i < lengthSize; i++ {
			length |= uint64(data[offset+1+i]) << uint(i*8)
		}

		sparse := offsetSize == 0
		if !sparse {
			delta := int64(0)
			for i := 0; i < offsetSize; i++ {
				delta |= int64(data[offset+1+lengthSize+i]) << uint(i*8)
			}
			if data[offset+lengthSize+offsetSize]&0x80 != 0 {
				for i := offsetSize; i < 8; i++ {
					delta |= int64(0xFF) << uint(i*8)
				}
			}
			currentLCN += delta
		}

		runs = append(runs, DataRun{
			StartLCN: currentLCN,
			Length:   length,
			Sparse:   sparse,
		})

		offset += 1 + lengthSize + offsetSize
	}

	return runs
}

func decodeUTF16LE(b []byte) string {
	u := make([]uint16, len(b)/2)
	for i := range u {
		u[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return string(utf16.Decode(u))
}

// StandardInformation is the decoded 0x10 attribute.
type StandardInformation struct {
	CreateTime int64
	ModifyTime int64
	MFTModTime int64
	AccessTime int64
	FileAttr   ntfstime.FileAttr
}

// DecodeStandardInformation decodes a $STANDARD_INFORMATION resident
// value. It returns false when the value is too short to hold the fixed
// portion.
func DecodeStandardInformation(value []byte) (StandardInformation, bool) {
	if len(value) < 48 {
		return StandardInformation{}, false
	}
	return StandardInformation{
		CreateTime: int64(binary.LittleEndian.Uint64(value[0:8])),
		ModifyTime: int64(binary.LittleEndian.Uint64(value[8:16])),
		MFTModTime: int64(binary.LittleEndian.Uint64(value[16:24])),
		AccessTime: int64(binary.LittleEndian.Uint64(value[24:32])),
		FileAttr:   ntfstime.FileAttr(binary.LittleEndian.Uint32(value[32:36])),
	}, true
}

// FileName is the decoded 0x30 attribute.
type FileName struct {
	ParentRef     ntfstime.FileReference
	CreateTime    int64
	ModifyTime    int64
	MFTModTime    int64
	AccessTime    int64
	AllocatedSize uint64
	RealSize      uint64
	FileAttr      ntfstime.FileAttr
	Namespace     ntfstime.FileNamespace
	Name          string
}

// DecodeFileName decodes a $FILE_NAME resident value. It returns false
// when the value is too short to hold the fixed header and declared name.
func DecodeFileName(value []byte) (FileName, bool) {
	if len(value) < 66 {
		return FileName{}, false
	}
	nameLength := int(value[64])
	nameEnd := 66 + nameLength*2
	if len(value) < nameEnd {
		return FileName{}, false
	}
	return FileName{
		ParentRef:     ntfstime.FileReference(binary.LittleEndian.Uint64(value[0:8])),
		CreateTime:    int64(binary.LittleEndian.Uint64(value[8:16])),
		ModifyTime:    int64(binary.LittleEndian.Uint64(value[16:24])),
		MFTModTime:    int64(binary.LittleEndian.Uint64(value[24:32])),
		AccessTime:    int64(binary.LittleEndian.Uint64(value[32:40])),
		AllocatedSize: binary.LittleEndian.Uint64(value[40:48]),
		RealSize:      binary.LittleEndian.Uint64(value[48:56]),
		FileAttr:      ntfstime.FileAttr(binary.LittleEndian.Uint32(value[56:60])),
		Namespace:     ntfstime.FileNamespace(value[65]),
		Name:          decodeUTF16LE(value[66:nameEnd]),
	}, true
}

// BestFileName picks the display name from every decoded $FILE_NAME
// attribute on a record: highest namespace rank wins, ties broken by
// first occurrence (on-disk attribute order).
func BestFileName(names []FileName) (FileName, bool) {
	if len(names) == 0 {
		return FileName{}, false
	}
	best := names[0]
	bestRank := best.Namespace.Rank()
	for _, n := range names[1:] {
		if n.Namespace.Rank() > bestRank {
			best = n
			bestRank = n.Namespace.Rank()
		}
	}
	return best, true
}

// AttributeListEntry is one decoded $ATTRIBUTE_LIST (0x20) entry: a
// pointer to an attribute that may live in a different (child) MFT record
// than the one the list itself was read from.
type AttributeListEntry struct {
	Type       ntfstime.AttrType
	Name       string
	StartVCN   uint64
	MFTRef     ntfstime.FileReference
	AttributeID uint16
}

// DecodeAttributeList decodes a full $ATTRIBUTE_LIST value (the
// concatenation of the attribute's resident content, or its assembled
// non-resident payload) into its entries.
func DecodeAttributeList(value []byte) []AttributeListEntry {
	var entries []AttributeListEntry
	offset := 0

	for offset+26 <= len(value) {
		recordLength := binary.LittleEndian.Uint16(value[offset+4 : offset+6])
		if recordLength == 0 || int(recordLength) > len(value)-offset {
			break
		}

		entry := AttributeListEntry{
			Type:        ntfstime.AttrType(binary.LittleEndian.Uint32(value[offset : offset+4])),
			StartVCN:    binary.LittleEndian.Uint64(value[offset+8 : offset+16]),
			MFTRef:      ntfstime.FileReference(binary.LittleEndian.Uint64(value[offset+16 : offset+24])),
			AttributeID: binary.LittleEndian.Uint16(value[offset+24 : offset+26]),
		}

		nameLength := value[offset+6]
		nameOffset := value[offset+7]
		if nameLength > 0 {
			nameStart := offset + int(nameOffset)
			nameEnd := nameStart + int(nameLength)*2
			if nameEnd <= len(value) && nameStart >= offset {
				entry.Name = decodeUTF16LE(value[nameStart:nameEnd])
			}
		}

		entries = append(entries, entry)
		offset += int(recordLength)
	}

	return entries
}
