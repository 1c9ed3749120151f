package image

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	kzlib "github.com/klauspost/compress/zlib"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/ntfserr"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// evfFileHeader is the 13-byte segment file header (§2.1.1 of the EWF
// specification): signature, a fixed fields-start byte, the segment
// number, and a fixed fields-end word.
type evfFileHeader struct {
	Signature     [8]byte
	FieldsStart   uint8
	SegmentNumber uint16
	FieldsEnd     uint16
}

// evfSection is the 76-byte section descriptor that precedes every section
// body and forms a singly linked list via NextOffset.
type evfSection struct {
	TypeDefinition [16]byte
	NextOffset     uint64
	SectionSize    uint64
	Padding        [40]byte
	Checksum       uint32
}

// evfVolume is the "disk"/"volume" section body (EnCase 5+ layout), giving
// chunk geometry and compression level.
type evfVolume struct {
	MediaType        uint8
	_                [3]byte
	ChunkCount       uint32
	SectorsPerChunk  uint32
	BytesPerSector   uint32
	SectorCount      uint64
	_                [12]byte // CHS geometry, unused
	MediaFlag        uint8
	_                [3]byte
	_                uint32 // PALM volume start sector
	_                uint32
	_                uint32 // SMART logs start sector
	CompressionLevel uint8
	_                [3]byte
	_                uint32 // sector error granularity
	_                uint32
	SegmentSetID     [16]byte
}

// chunk describes one compressed-or-stored chunk's location within a
// segment file, resolved from a "table"/"table2" section's entry array.
type chunk struct {
	file       *os.File
	offset     int64
	size       int64 // 0 when unresolved (last entry in a table, sized lazily)
	compressed bool
}

// ewfImage implements Image over one or more EWF/E01 segment files.
type ewfImage struct {
	files     []*os.File
	chunkSize int64 // bytes_per_sector * sectors_per_chunk
	chunks    []chunk
	totalSize int64
	Metadata  EWFMetadata
}

// EWFMetadata holds the case/examiner fields out of the "header"/"header2"
// section, surfaced for --verbose logging. It has no bearing on decoding.
type EWFMetadata struct {
	CaseNumber      string
	EvidenceNumber  string
	ExaminerName    string
	Notes           string
	AcquisitionDate string
}

// Metadata returns evidence-file metadata, or the zero value for raw
// images.
func Metadata(img Image) (EWFMetadata, bool) {
	e, ok := img.(*ewfImage)
	if !ok {
		return EWFMetadata{}, false
	}
	return e.Metadata, true
}

// openEWF globs companion segment files (.E01, .E02, ... and the .Exx/.sxx
// family) and parses each one's section list.
func openEWF(firstPath string) (Image, error) {
	paths, err := globSegments(firstPath)
	if err != nil {
		return nil, ntfserr.NewFeature("evidence-format backend", err)
	}
	if len(paths) == 0 {
		paths = []string{firstPath}
	}

	img := &ewfImage{}
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			img.Close()
			return nil, ntfserr.NewIO("open evidence segment "+p, err)
		}
		img.files = append(img.files, f)
		if err := img.parseSegment(f); err != nil {
			img.Close()
			return nil, ntfserr.NewStructure("parse evidence segment "+p, err)
		}
	}
	if img.chunkSize == 0 || len(img.chunks) == 0 {
		img.Close()
		return nil, ntfserr.NewFeature("evidence-format backend", fmt.Errorf("no volume/chunk sections found"))
	}
	img.totalSize = int64(len(img.chunks)) * img.chunkSize
	return img, nil
}

// globSegments expands "image.E01" into ["image.E01", "image.E02", ...]
// by probing successive extensions until one is missing.
func globSegments(firstPath string) ([]string, error) {
	dir := filepath.Dir(firstPath)
	base := filepath.Base(firstPath)
	ext := filepath.Ext(base)
	if len(ext) != 4 { // ".E01"
		return []string{firstPath}, nil
	}
	stem := strings.TrimSuffix(base, ext)
	prefix := ext[:2] // ".E"

	var out []string
	for n := 1; n <= 999; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s%s%02d", stem, prefix, n))
		if _, err := os.Stat(candidate); err != nil {
			break
		}
		out = append(out, candidate)
	}
	if len(out) == 0 {
		return []string{firstPath}, nil
	}
	return out, nil
}

func (img *ewfImage) parseSegment(f *os.File) error {
	if _, err := f.Seek(13, io.SeekStart); err != nil {
		return err
	}

	var sectorsSectionStart int64 = -1

	offset := int64(13)
	for {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return err
		}
		var sec evfSection
		if err := binary.Read(f, binary.LittleEndian, &sec); err != nil {
			return err
		}
		typeName := strings.TrimRight(string(sec.TypeDefinition[:]), "\x00")

		switch typeName {
		case "done", "next":
			return nil
		case "disk", "volume":
			var vol evfVolume
			if err := binary.Read(f, binary.LittleEndian, &vol); err != nil {
				return fmt.Errorf("volume section: %w", err)
			}
			img.chunkSize = int64(vol.BytesPerSector) * int64(vol.SectorsPerChunk)
		case "header", "header2":
			if img.Metadata.CaseNumber == "" && img.Metadata.ExaminerName == "" {
				if err := img.parseHeader(f, sec.SectionSize); err != nil {
					return fmt.Errorf("header section: %w", err)
				}
			}
		case "sectors":
			sectorsSectionStart = offset + 76
		case "table", "table2":
			if err := img.parseTable(f, offset, sec.SectionSize, sectorsSectionStart); err != nil {
				return fmt.Errorf("table section: %w", err)
			}
		}

		if sec.NextOffset == 0 || sec.NextOffset == uint64(offset) {
			return nil
		}
		offset = int64(sec.NextOffset)
	}
}

// parseHeader decompresses a "header"/"header2" section body and extracts
// the tab-separated case/examiner fields from its EnCase-style text block.
// The two-byte byte-order mark at the start of the decompressed text
// (0xfffe little-endian, 0xfeff big-endian) selects the UTF-16 decoder.
func (img *ewfImage) parseHeader(f *os.File, sectionSize uint64) error {
	compressed := make([]byte, sectionSize-76)
	if _, err := io.ReadFull(f, compressed); err != nil {
		return err
	}
	zr, err := kzlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return err
	}
	defer zr.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, zr); err != nil && buf.Len() == 0 {
		return err
	}

	text := decodeHeaderText(buf.Bytes())
	lines := strings.Split(text, "\n")
	if len(lines) < 4 {
		return nil
	}
	flags := strings.Split(strings.TrimRight(lines[2], "\r"), "\t")
	values := strings.Split(strings.TrimRight(lines[3], "\r"), "\t")
	for i, flag := range flags {
		if i >= len(values) {
			break
		}
		switch flag {
		case "c":
			img.Metadata.CaseNumber = values[i]
		case "n":
			img.Metadata.EvidenceNumber = values[i]
		case "e":
			img.Metadata.ExaminerName = values[i]
		case "t":
			img.Metadata.Notes = values[i]
		case "m":
			img.Metadata.AcquisitionDate = values[i]
		}
	}
	return nil
}

// decodeHeaderText transcodes a BOM-prefixed UTF-16 header block to UTF-8.
// Falls back to treating the bytes as already-UTF-8 text (some EnCase 4
// images omit the BOM) when no recognized mark is present.
func decodeHeaderText(raw []byte) string {
	if len(raw) < 2 {
		return string(raw)
	}
	var enc encoding.Encoding
	switch {
	case raw[0] == 0xff && raw[1] == 0xfe:
		enc = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case raw[0] == 0xfe && raw[1] == 0xff:
		enc = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	default:
		return string(raw)
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), raw[2:])
	if err != nil {
		return string(raw[2:])
	}
	return string(decoded)
}

// parseTable reads the EWF chunk-offset table: a uint32 entry count, 16
// bytes of padding and a uint32 checksum, then that many uint32 offsets
// (relative to sectorsSectionStart; the high bit marks zlib-compressed
// storage). A table whose first entry resolves to the same chunk as the
// first entry of the table parsed just before it (a table2 copy) is
// skipped; every other table appends its chunks.
func (img *ewfImage) parseTable(f *os.File, sectionOffset int64, sectionSize uint64, sectorsSectionStart int64) error {
	if _, err := f.Seek(sectionOffset+76, io.SeekStart); err != nil {
		return err
	}
	var entryCount uint32
	if err := binary.Read(f, binary.LittleEndian, &entryCount); err != nil {
		return err
	}
	var pad [16]byte
	var checksum uint32
	if err := binary.Read(f, binary.LittleEndian, &pad); err != nil {
		return err
	}
	if err := binary.Read(f, binary.LittleEndian, &checksum); err != nil {
		return err
	}
	if sectorsSectionStart < 0 {
		return fmt.Errorf("table section without preceding sectors section")
	}

	entries := make([]uint32, entryCount)
	if err := binary.Read(f, binary.LittleEndian, entries); err != nil {
		return err
	}
	if n := len(entries); n > 0 && len(img.chunks) >= n {
		first := img.chunks[len(img.chunks)-n]
		if first.file == f && first.offset == sectorsSectionStart+int64(entries[0]&^0x80000000) {
			return nil
		}
	}

	for i, raw := range entries {
		compressed := raw&0x80000000 != 0
		relOffset := int64(raw &^ 0x80000000)
		c := chunk{
			file:       f,
			offset:     sectorsSectionStart + relOffset,
			compressed: compressed,
		}
		if i+1 < len(entries) {
			nextRel := int64(entries[i+1] &^ 0x80000000)
			c.size = (sectorsSectionStart + nextRel) - c.offset
		}
		img.chunks = append(img.chunks, c)
	}
	return nil
}

func (img *ewfImage) Size() int64 { return img.totalSize }

func (img *ewfImage) ReadAt(offset int64, length int) ([]byte, error) {
	if offset >= img.totalSize {
		return nil, nil
	}
	end := offset + int64(length)
	if end > img.totalSize {
		end = img.totalSize
	}

	out := make([]byte, 0, length)
	for pos := offset; pos < end; {
		chunkIdx := pos / img.chunkSize
		if int(chunkIdx) >= len(img.chunks) {
			break
		}
		data, err := img.readChunk(int(chunkIdx))
		if err != nil {
			return nil, ntfserr.NewIO("read evidence chunk", err)
		}
		chunkStart := chunkIdx * img.chunkSize
		withinChunk := pos - chunkStart
		if withinChunk >= int64(len(data)) {
			break
		}
		avail := data[withinChunk:]
		need := end - pos
		if int64(len(avail)) > need {
			avail = avail[:need]
		}
		out = append(out, avail...)
		pos += int64(len(avail))
	}
	return out, nil
}

func (img *ewfImage) readChunk(idx int) ([]byte, error) {
	c := img.chunks[idx]
	size := c.size
	if size <= 0 {
		size = img.chunkSize + 64 // unresolved trailing chunk: generous upper bound
	}
	raw := make([]byte, size)
	n, err := c.file.ReadAt(raw, c.offset)
	if err != nil && n == 0 {
		return nil, err
	}
	raw = raw[:n]

	if !c.compressed {
		if int64(len(raw)) > img.chunkSize {
			raw = raw[:img.chunkSize]
		}
		return raw, nil
	}

	zr, err := kzlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("zlib chunk: %w", err)
	}
	defer zr.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, zr); err != nil && buf.Len() == 0 {
		return nil, fmt.Errorf("zlib chunk inflate: %w", err)
	}
	return buf.Bytes(), nil
}

func (img *ewfImage) Close() error {
	var firstErr error
	seen := map[*os.File]bool{}
	for _, f := range img.files {
		if seen[f] {
			continue
		}
		seen[f] = true
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
