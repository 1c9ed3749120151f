package logfile

import (
	"encoding/binary"
	"time"

	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/ntfstime"
)

// recordHeaderSize is the fixed 88-byte log record header preceding any
// client (redo/undo) data.
const recordHeaderSize = 0x58

// Record is one decoded $LogFile transaction log record, with the
// client-data $FILE_NAME heuristic already applied.
type Record struct {
	ThisLSN         uint64
	PreviousLSN     uint64
	ClientUndoLSN   uint64
	ClientDataLength uint32
	ClientID        uint32
	RecordType      uint32
	TransactionID   uint32
	Flags           uint16
	RedoOp          ntfstime.LogOpcode
	UndoOp          ntfstime.LogOpcode
	RedoOffset      uint16
	RedoLength      uint16
	UndoOffset      uint16
	UndoLength      uint16
	TargetAttribute uint16
	LCNsToFollow    uint16
	RecordOffset    uint16
	AttributeOffset uint16
	TargetVCN       uint64
	TargetLCN       uint32

	FileName        string
	FileReference   ntfstime.FileReference
	ParentReference ntfstime.FileReference
	Timestamp       time.Time
	FileAttr        ntfstime.FileAttr
}

// EventLabel is the opcode name driving this record, matching every
// sink's "Event" column.
func (r *Record) EventLabel() string { return r.RedoOp.Name() }

// maxClientDataLength rejects a record whose claimed payload size would
// run past any plausible page, the same sanity check the reference
// parser applies before trusting the length field.
const maxClientDataLength = 0x10000

// decodeRecord reads one log record's header (and, when present, its
// client data) starting at offset within page. It returns nil when the
// header is truncated, clearly bogus, or this_lsn is zero (the marker
// for unused page space).
func decodeRecord(page []byte, offset int, loc *time.Location) *Record {
	if offset+recordHeaderSize > len(page) {
		return nil
	}
	data := page[offset:]

	thisLSN := binary.LittleEndian.Uint64(data[0x00:0x08])
	if thisLSN == 0 {
		return nil
	}

	clientDataLength := binary.LittleEndian.Uint32(data[0x18:0x1C])
	if clientDataLength > maxClientDataLength {
		return nil
	}

	rec := &Record{
		ThisLSN:          thisLSN,
		PreviousLSN:      binary.LittleEndian.Uint64(data[0x08:0x10]),
		ClientUndoLSN:    binary.LittleEndian.Uint64(data[0x10:0x18]),
		ClientDataLength: clientDataLength,
		ClientID:         binary.LittleEndian.Uint32(data[0x1C:0x20]),
		RecordType:       binary.LittleEndian.Uint32(data[0x20:0x24]),
		TransactionID:    binary.LittleEndian.Uint32(data[0x24:0x28]),
		Flags:            binary.LittleEndian.Uint16(data[0x28:0x2A]),
		RedoOp:           ntfstime.LogOpcode(binary.LittleEndian.Uint16(data[0x30:0x32])),
		UndoOp:           ntfstime.LogOpcode(binary.LittleEndian.Uint16(data[0x32:0x34])),
		RedoOffset:       binary.LittleEndian.Uint16(data[0x34:0x36]),
		RedoLength:       binary.LittleEndian.Uint16(data[0x36:0x38]),
		UndoOffset:       binary.LittleEndian.Uint16(data[0x38:0x3A]),
		UndoLength:       binary.LittleEndian.Uint16(data[0x3A:0x3C]),
		TargetAttribute:  binary.LittleEndian.Uint16(data[0x3C:0x3E]),
		LCNsToFollow:     binary.LittleEndian.Uint16(data[0x3E:0x40]),
		RecordOffset:     binary.LittleEndian.Uint16(data[0x40:0x42]),
		AttributeOffset:  binary.LittleEndian.Uint16(data[0x42:0x44]),
		TargetVCN:        binary.LittleEndian.Uint64(data[0x48:0x50]),
		// target_lcn is read as 4 bytes though most NTFS references treat
		// it as 8; preserved as observed in the original reference parser.
		TargetLCN: binary.LittleEndian.Uint32(data[0x50:0x54]),
	}

	clientOffset := recordHeaderSize + int(rec.ClientDataLength)
	if rec.ClientDataLength > 0 && clientOffset <= len(data) {
		decodeClientData(rec, data[recordHeaderSize:clientOffset], loc)
	}

	return rec
}
