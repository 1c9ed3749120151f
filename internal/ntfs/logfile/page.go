package logfile

import (
	"encoding/binary"
	"errors"

	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/mft"
)

var (
	errPageTooSmall     = errors.New("page shorter than its header")
	errBadRestartSig    = errors.New("missing RSTR signature")
	errBadRecordSig     = errors.New("missing RCRD signature")
)

// restartPage is the decoded $LogFile restart area (RSTR page).
type restartPage struct {
	SystemPageSize uint32
	LogPageSize    uint32
	RestartOffset  uint16
	MinorVersion   uint16
	MajorVersion   uint16
	CurrentLSN     uint64
	LogClients     uint16
}

// parseRestartPage decodes one RSTR page. Fixup mismatches are tolerated
// the same way a missing signature is: the page is simply not a valid
// restart area, and the caller tries the next candidate.
func parseRestartPage(data []byte) (*restartPage, error) {
	if len(data) < 0x40 {
		return nil, errPageTooSmall
	}
	if string(data[0:4]) != "RSTR" {
		return nil, errBadRestartSig
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	usaOffset := binary.LittleEndian.Uint16(buf[0x04:0x06])
	usaCount := binary.LittleEndian.Uint16(buf[0x06:0x08])
	if usaCount > 1 && usaOffset > 0 {
		if err := mft.ApplyFixup(buf, usaOffset, usaCount); err != nil {
			return nil, err
		}
	}

	return &restartPage{
		SystemPageSize: binary.LittleEndian.Uint32(buf[0x10:0x14]),
		LogPageSize:    binary.LittleEndian.Uint32(buf[0x14:0x18]),
		RestartOffset:  binary.LittleEndian.Uint16(buf[0x18:0x1A]),
		MinorVersion:   binary.LittleEndian.Uint16(buf[0x1A:0x1C]),
		MajorVersion:   binary.LittleEndian.Uint16(buf[0x1C:0x1E]),
		CurrentLSN:     binary.LittleEndian.Uint64(buf[0x30:0x38]),
		LogClients:     binary.LittleEndian.Uint16(buf[0x38:0x3A]),
	}, nil
}

// recordPageHeaderSize is the common page header preceding the first log
// record on an RCRD page.
const recordPageHeaderSize = 0x30

type recordPageHeader struct {
	LastLSN          uint64
	Flags            uint32
	PageCount        uint16
	PagePosition     uint16
	NextRecordOffset uint16
	LastEndLSN       uint64
}

// parseRecordPage decodes one RCRD page's common header and returns the
// fixed-up page bytes alongside it, ready for record-by-record scanning
// starting at recordPageHeaderSize.
func parseRecordPage(data []byte) ([]byte, *recordPageHeader, error) {
	if len(data) < recordPageHeaderSize {
		return nil, nil, errPageTooSmall
	}
	if string(data[0:4]) != "RCRD" {
		return nil, nil, errBadRecordSig
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	usaOffset := binary.LittleEndian.Uint16(buf[0x04:0x06])
	usaCount := binary.LittleEndian.Uint16(buf[0x06:0x08])
	if usaCount > 1 && usaOffset > 0 {
		if err := mft.ApplyFixup(buf, usaOffset, usaCount); err != nil {
			return nil, nil, err
		}
	}

	hdr := &recordPageHeader{
		LastLSN:          binary.LittleEndian.Uint64(buf[0x08:0x10]),
		Flags:            binary.LittleEndian.Uint32(buf[0x10:0x14]),
		PageCount:        binary.LittleEndian.Uint16(buf[0x14:0x16]),
		PagePosition:     binary.LittleEndian.Uint16(buf[0x16:0x18]),
		NextRecordOffset: binary.LittleEndian.Uint16(buf[0x18:0x1A]),
		LastEndLSN:       binary.LittleEndian.Uint64(buf[0x20:0x28]),
	}
	return buf, hdr, nil
}

func isZeroPage(data []byte) bool {
	return len(data) >= 4 && data[0] == 0 && data[1] == 0 && data[2] == 0 && data[3] == 0
}
