// Package mft decodes MFT entries, their attributes, and the $I30 directory
// index structures carried inside directory entries.
package mft

import (
	"encoding/binary"

	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/ntfserr"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/ntfstime"
)

// Record is one decoded MFT entry: header fields plus its attribute list.
// data is Decode's own fixed-up copy of the raw entry; every attribute's
// resident payload and run-list slices point into it, so a Record stays
// valid after the caller's raw buffer is reused.
type Record struct {
	EntryNumber   uint64
	SequenceNum   uint16
	LinkCount     uint16
	Flags         ntfstime.MftRecordFlag
	UsedSize      uint32
	AllocatedSize uint32
	BaseRecord    ntfstime.FileReference
	NextAttrID    uint16
	Attributes    []Attribute

	data []byte
}

// InUse reports whether the MFT_RECORD_IN_USE flag is set.
func (r *Record) InUse() bool { return r.Flags&ntfstime.MftRecordInUse != 0 }

// IsDirectory reports whether the MFT_RECORD_IS_DIRECTORY flag is set.
func (r *Record) IsDirectory() bool { return r.Flags&ntfstime.MftRecordDirectory != 0 }

// Decode parses one "FILE"-signed MFT entry from a raw, not-yet-fixed-up
// buffer of exactly entrySize bytes (INDX blocks go through
// ParseIndexAllocation instead). It applies the fixup array to a copy of
// raw, leaving raw unchanged, and then walks the attribute list.
func Decode(raw []byte, entryNumber uint64) (*Record, error) {
	if len(raw) < 48 {
		return nil, ntfserr.NewStructure("decode MFT record", errTooSmall)
	}
	if string(raw[0:4]) != "FILE" {
		return nil, ntfserr.NewStructure("decode MFT record", errBadSignature)
	}

	data := make([]byte, len(raw))
	copy(data, raw)

	usaOffset := binary.LittleEndian.Uint16(data[4:6])
	usaCount := binary.LittleEndian.Uint16(data[6:8])
	if err := ApplyFixup(data, usaOffset, usaCount); err != nil {
		return nil, ntfserr.NewStructure("apply fixup", err)
	}

	rec := &Record{
		EntryNumber:   entryNumber,
		SequenceNum:   binary.LittleEndian.Uint16(data[16:18]),
		LinkCount:     binary.LittleEndian.Uint16(data[18:20]),
		Flags:         ntfstime.MftRecordFlag(binary.LittleEndian.Uint16(data[22:24])),
		UsedSize:      binary.LittleEndian.Uint32(data[24:28]),
		AllocatedSize: binary.LittleEndian.Uint32(data[28:32]),
		BaseRecord:    ntfstime.FileReference(binary.LittleEndian.Uint64(data[32:40])),
		NextAttrID:    binary.LittleEndian.Uint16(data[40:42]),
		data:          data,
	}

	attrOffset := binary.LittleEndian.Uint16(data[20:22])
	rec.Attributes = parseAttributes(data, attrOffset, rec.UsedSize)

	return rec, nil
}

// FindFirst returns the first attribute matching attrType and name (name
// comparison is exact; pass "" for the unnamed stream), or nil if absent.
func (r *Record) FindFirst(attrType ntfstime.AttrType, name string) *Attribute {
	for i := range r.Attributes {
		if r.Attributes[i].Type == attrType && r.Attributes[i].Name == name {
			return &r.Attributes[i]
		}
	}
	return nil
}

// FindAll returns every attribute matching attrType, in on-disk order.
func (r *Record) FindAll(attrType ntfstime.AttrType) []*Attribute {
	var out []*Attribute
	for i := range r.Attributes {
		if r.Attributes[i].Type == attrType {
			out = append(out, &r.Attributes[i])
		}
	}
	return out
}
