// Package extract pulls well-known NTFS system streams — $MFT, $LogFile,
// and $UsnJrnl:$J — out of a decoded partition as plain io.Readers.
package extract

import (
	"bytes"
	"errors"
	"io"

	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/mft"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/ntfserr"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/ntfstime"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/partition"
)

// maxMFTScan bounds the fallback linear scan for $UsnJrnl when it cannot
// be found via the $Extend directory index.
const maxMFTScan = 100_000

var (
	errNoDataAttribute = errors.New("no $DATA attribute")
	errUsnJrnlNotFound  = errors.New("$UsnJrnl not found: USN journal may be disabled or deleted on this volume")
	errNoDataRuns       = errors.New("$J has no data runs")
)

// Extractor pulls well-known system streams out of one decoded partition.
type Extractor struct {
	Partition *partition.Partition
}

// New builds an Extractor over an already-probed partition.
func New(p *partition.Partition) *Extractor {
	return &Extractor{Partition: p}
}

func (e *Extractor) readEntry(entryNumber uint64) (*mft.Record, error) {
	raw, err := e.Partition.ReadMFTEntry(int64(entryNumber))
	if err != nil {
		return nil, ntfserr.NewIO("read MFT entry", err)
	}
	return mft.Decode(raw, entryNumber)
}

// MFT returns a reader over $MFT's own unnamed $DATA attribute.
func (e *Extractor) MFT() (io.Reader, error) {
	return e.dataStream(uint64(ntfstime.EntryMFT))
}

// LogFile returns a reader over $LogFile's unnamed $DATA attribute.
func (e *Extractor) LogFile() (io.Reader, error) {
	return e.dataStream(uint64(ntfstime.EntryLogFile))
}

func (e *Extractor) dataStream(entryNumber uint64) (io.Reader, error) {
	rec, err := e.readEntry(entryNumber)
	if err != nil {
		return nil, err
	}
	attr := rec.FindFirst(ntfstime.AttrData, "")
	if attr == nil {
		return nil, ntfserr.NewStructure("locate $DATA", errNoDataAttribute)
	}
	return e.attributeReader(attr), nil
}

func (e *Extractor) attributeReader(attr *mft.Attribute) io.Reader {
	if !attr.NonResident {
		return bytes.NewReader(attr.Value)
	}
	return newRunReader(e.Partition, attr.Runs, int64(attr.RealSize))
}

func (e *Extractor) readRunsFull(runs []mft.DataRun, limit int64) ([]byte, error) {
	return io.ReadAll(newRunReader(e.Partition, runs, limit))
}

// UsnJrnl locates $UsnJrnl (as a child of $Extend, or by falling back to a
// bounded MFT scan), collects every $DATA:$J extent across any MFT
// records an $ATTRIBUTE_LIST spreads it over, and returns a single reader
// over the concatenated, VCN-ordered, sparse-zero-filled stream.
func (e *Extractor) UsnJrnl() (io.Reader, error) {
	entryNum, err := e.findUsnJrnlEntry()
	if err != nil {
		return nil, err
	}
	rec, err := e.readEntry(entryNum)
	if err != nil {
		return nil, err
	}
	return e.extractJStream(rec)
}

func (e *Extractor) findUsnJrnlEntry() (uint64, error) {
	if extend, err := e.readEntry(uint64(ntfstime.EntryExtend)); err == nil {
		if n, ok := e.lookupChild(extend, "$UsnJrnl"); ok {
			return n, nil
		}
	}
	if n, ok := e.scanMFTForUsnJrnl(); ok {
		return n, nil
	}
	return 0, ntfserr.NewFeature("locate $UsnJrnl", errUsnJrnlNotFound)
}

// lookupChild resolves name inside dir's $I30 index, walking
// $INDEX_ALLOCATION too when $INDEX_ROOT reports LARGE_INDEX.
func (e *Extractor) lookupChild(dir *mft.Record, name string) (uint64, bool) {
	var entries []mft.IndexEntry

	root := dir.FindFirst(ntfstime.AttrIndexRoot, "$I30")
	if root == nil {
		return 0, false
	}
	rootEntries, large := mft.ParseIndexRoot(root.Value)
	entries = append(entries, rootEntries...)

	if large {
		if alloc := dir.FindFirst(ntfstime.AttrIndexAllocation, "$I30"); alloc != nil {
			data, err := e.readRunsFull(alloc.Runs, int64(alloc.RealSize))
			if err == nil {
				entries = append(entries, mft.ParseIndexAllocation(data, int(e.Partition.IndexRecordSize))...)
			}
		}
	}

	ref, ok := mft.LookupName(entries, name)
	if !ok {
		return 0, false
	}
	return ref.EntryNumber(), true
}

// scanMFTForUsnJrnl is the fallback when $UsnJrnl is absent from the
// $Extend index (a corrupted or manually-relocated journal): a bounded
// linear scan for a $FILE_NAME naming "$UsnJrnl" with parent entry 11.
func (e *Extractor) scanMFTForUsnJrnl() (uint64, bool) {
	mftRec, err := e.readEntry(uint64(ntfstime.EntryMFT))
	if err != nil {
		return 0, false
	}
	dataAttr := mftRec.FindFirst(ntfstime.AttrData, "")
	if dataAttr == nil || e.Partition.MFTEntrySize == 0 {
		return 0, false
	}

	totalEntries := int64(dataAttr.RealSize) / e.Partition.MFTEntrySize
	if totalEntries > maxMFTScan {
		totalEntries = maxMFTScan
	}

	for entryNum := int64(0); entryNum < totalEntries; entryNum++ {
		rec, err := e.readEntry(uint64(entryNum))
		if err != nil {
			continue
		}
		for _, attr := range rec.FindAll(ntfstime.AttrFileName) {
			fn, ok := mft.DecodeFileName(attr.Value)
			if !ok {
				continue
			}
			if fn.Name == "$UsnJrnl" && fn.ParentRef.EntryNumber() == uint64(ntfstime.EntryExtend) {
				return uint64(entryNum), true
			}
		}
	}
	return 0, false
}

// extractJStream assembles the $J stream for an already-located $UsnJrnl
// record: if an $ATTRIBUTE_LIST is present, every referenced MFT entry's
// $DATA:$J extents are collected (real size taken from the VCN-0
// extent's attribute); otherwise $DATA:$J is read directly off rec.
func (e *Extractor) extractJStream(rec *mft.Record) (io.Reader, error) {
	if alAttr := rec.FindFirst(ntfstime.AttrAttributeList, ""); alAttr != nil {
		listData := alAttr.Value
		if alAttr.NonResident {
			data, err := e.readRunsFull(alAttr.Runs, int64(alAttr.RealSize))
			if err != nil {
				return nil, err
			}
			listData = data
		}
		entries := mft.DecodeAttributeList(listData)

		var allRuns []mft.DataRun
		var realSize int64
		for _, al := range entries {
			if al.Type != ntfstime.AttrData || al.Name != "$J" {
				continue
			}
			refRec, err := e.readEntry(al.MFTRef.EntryNumber())
			if err != nil {
				continue
			}
			for _, attr := range refRec.FindAll(ntfstime.AttrData) {
				if attr.Name != "$J" || !attr.NonResident {
					continue
				}
				allRuns = append(allRuns, attr.Runs...)
				if attr.StartVCN == 0 {
					realSize = int64(attr.RealSize)
				}
			}
		}
		if len(allRuns) == 0 {
			return nil, ntfserr.NewStructure("extract $J", errNoDataRuns)
		}
		return newRunReader(e.Partition, allRuns, realSize), nil
	}

	jAttr := rec.FindFirst(ntfstime.AttrData, "$J")
	if jAttr == nil {
		return nil, ntfserr.NewStructure("extract $J", errNoDataAttribute)
	}
	return e.attributeReader(jAttr), nil
}
