// Package partition discovers NTFS partitions on an image via MBR/GPT
// walks and decodes the NTFS boot sector to establish cluster geometry.
package partition

import (
	"encoding/binary"
	"fmt"

	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/image"
)

// Partition is a view on an Image: an offset plus the cluster/MFT geometry
// decoded from its NTFS boot sector.
type Partition struct {
	Image             image.Image
	OffsetBytes       int64
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ClusterSize       int64
	MFTOffsetBytes    int64
	MFTEntrySize      int64
	IndexRecordSize   int64
}

// microsoftBasicDataGUID is the partition type GUID Windows uses for NTFS
// data partitions in a GPT partition table.
var microsoftBasicDataGUID = [16]byte{
	0xA2, 0xA0, 0xD0, 0xEB, 0xE5, 0xB9, 0x33, 0x44,
	0x87, 0xC0, 0x68, 0xB6, 0xB7, 0x26, 0x99, 0xC7,
}

const sectorSize = 512

// ReadAt reads length bytes at an offset relative to the partition start.
func (p *Partition) ReadAt(offset int64, length int) ([]byte, error) {
	return p.Image.ReadAt(p.OffsetBytes+offset, length)
}

// ReadCluster reads one cluster at the given LCN, relative to the
// partition start.
func (p *Partition) ReadCluster(lcn int64) ([]byte, error) {
	return p.Image.ReadAt(p.OffsetBytes+lcn*p.ClusterSize, int(p.ClusterSize))
}

// ReadMFTEntry reads one fixed-size MFT entry by entry number.
func (p *Partition) ReadMFTEntry(entryNumber int64) ([]byte, error) {
	offset := p.MFTOffsetBytes + entryNumber*p.MFTEntrySize
	return p.Image.ReadAt(offset, int(p.MFTEntrySize))
}

// parseBootSector decodes the NTFS boot sector for the partition at
// offsetBytes within img. It returns (nil, false) — not an error — when the
// candidate offset does not hold a valid NTFS boot sector; per §4.C,
// failures here are non-fatal and the candidate is simply skipped.
func parseBootSector(img image.Image, offsetBytes int64) (*Partition, bool) {
	data, err := img.ReadAt(offsetBytes, sectorSize)
	if err != nil || len(data) < 512 {
		return nil, false
	}
	if string(data[3:11]) != "NTFS    " {
		return nil, false
	}

	bytesPerSector := binary.LittleEndian.Uint16(data[0x0B:0x0D])
	sectorsPerCluster := data[0x0D]
	if bytesPerSector == 0 || sectorsPerCluster == 0 {
		return nil, false
	}
	clusterSize := int64(bytesPerSector) * int64(sectorsPerCluster)

	mftCluster := binary.LittleEndian.Uint64(data[0x30:0x38])
	mftOffset := offsetBytes + int64(mftCluster)*clusterSize

	mftEntrySizeRaw := int8(data[0x40])
	var mftEntrySize int64
	if mftEntrySizeRaw > 0 {
		mftEntrySize = int64(mftEntrySizeRaw) * clusterSize
	} else {
		mftEntrySize = 1 << uint(-mftEntrySizeRaw)
	}

	indexRecordSizeRaw := int8(data[0x44])
	var indexRecordSize int64
	if indexRecordSizeRaw > 0 {
		indexRecordSize = int64(indexRecordSizeRaw) * clusterSize
	} else {
		indexRecordSize = 1 << uint(-indexRecordSizeRaw)
	}

	return &Partition{
		Image:             img,
		OffsetBytes:       offsetBytes,
		BytesPerSector:    bytesPerSector,
		SectorsPerCluster: sectorsPerCluster,
		ClusterSize:       clusterSize,
		MFTOffsetBytes:    mftOffset,
		MFTEntrySize:      mftEntrySize,
		IndexRecordSize:   indexRecordSize,
	}, true
}

// Probe walks the MBR and GPT partition tables of img and returns every
// candidate offset that decodes to a valid NTFS boot sector. If there is no
// MBR signature at all, the whole image is tried as a single unpartitioned
// NTFS volume.
func Probe(img image.Image) ([]*Partition, error) {
	mbr, err := img.ReadAt(0, sectorSize)
	if err != nil {
		return nil, fmt.Errorf("read MBR: %w", err)
	}

	var partitions []*Partition

	if len(mbr) < 512 || mbr[510] != 0x55 || mbr[511] != 0xAA {
		if p, ok := parseBootSector(img, 0); ok {
			partitions = append(partitions, p)
		}
		return partitions, nil
	}

	for i := 0; i < 4; i++ {
		entryOffset := 446 + i*16
		entry := mbr[entryOffset : entryOffset+16]
		partitionType := entry[4]
		if partitionType != 0x07 && partitionType != 0x17 && partitionType != 0x27 {
			continue
		}
		lbaStart := binary.LittleEndian.Uint32(entry[8:12])
		offset := int64(lbaStart) * sectorSize
		if p, ok := parseBootSector(img, offset); ok {
			partitions = append(partitions, p)
		}
	}

	gptHeader, err := img.ReadAt(sectorSize, sectorSize)
	if err == nil && len(gptHeader) >= 8 && string(gptHeader[:8]) == "EFI PART" {
		partitionEntryLBA := binary.LittleEndian.Uint64(gptHeader[72:80])
		numEntries := binary.LittleEndian.Uint32(gptHeader[80:84])
		entrySize := binary.LittleEndian.Uint32(gptHeader[84:88])

		if numEntries > 128 {
			numEntries = 128
		}
		for i := uint32(0); i < numEntries; i++ {
			entryOffset := int64(partitionEntryLBA)*sectorSize + int64(i)*int64(entrySize)
			entry, err := img.ReadAt(entryOffset, int(entrySize))
			if err != nil || len(entry) < 40 {
				continue
			}
			var typeGUID [16]byte
			copy(typeGUID[:], entry[0:16])
			// Preserves the observed (weak) filtering: accept the Microsoft
			// Basic Data GUID, or any other non-zero GUID.
			if typeGUID == ([16]byte{}) {
				continue
			}
			startLBA := binary.LittleEndian.Uint64(entry[32:40])
			if startLBA == 0 {
				continue
			}
			if p, ok := parseBootSector(img, int64(startLBA)*sectorSize); ok {
				partitions = append(partitions, p)
			}
		}
	}

	return partitions, nil
}
