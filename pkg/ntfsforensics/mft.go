package ntfsforensics

import (
	"fmt"

	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/mft"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/ntfstime"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/partition"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/pathresolve"
	"github.com/s0up4200/go-ntfsforensics/internal/sink"
)

// mftEntryCount reads entry 0 ($MFT itself) to learn how many fixed-size
// entries the table holds, the same arithmetic
// internal/ntfs/extract.Extractor.scanMFTForUsnJrnl uses for its own
// bounded linear scan.
func mftEntryCount(p *partition.Partition) (int64, error) {
	raw, err := p.ReadMFTEntry(0)
	if err != nil {
		return 0, fmt.Errorf("read $MFT entry 0: %w", err)
	}
	rec, err := mft.Decode(raw, uint64(ntfstime.EntryMFT))
	if err != nil {
		return 0, fmt.Errorf("decode $MFT entry 0: %w", err)
	}
	data := rec.FindFirst(ntfstime.AttrData, "")
	if data == nil {
		return 0, fmt.Errorf("$MFT entry 0 has no $DATA attribute")
	}
	return int64(data.RealSize) / p.MFTEntrySize, nil
}

// decodedMFTEntry is one fully-decoded MFT entry's display-relevant
// fields, built from the record's best $FILE_NAME and its
// $STANDARD_INFORMATION.
type decodedMFTEntry struct {
	record   *mft.Record
	name     mft.FileName
	hasName  bool
	si       mft.StandardInformation
	hasSI    bool
	dataSize int64
	resident bool
}

func decodeMFTEntry(p *partition.Partition, entryNum int64) (*decodedMFTEntry, error) {
	raw, err := p.ReadMFTEntry(entryNum)
	if err != nil {
		return nil, err
	}
	rec, err := mft.Decode(raw, uint64(entryNum))
	if err != nil {
		return nil, err
	}

	d := &decodedMFTEntry{record: rec}

	var names []mft.FileName
	for _, attr := range rec.FindAll(ntfstime.AttrFileName) {
		if fn, ok := mft.DecodeFileName(attr.Value); ok {
			names = append(names, fn)
		}
	}
	if best, ok := mft.BestFileName(names); ok {
		d.name, d.hasName = best, true
	}

	if siAttr := rec.FindFirst(ntfstime.AttrStandardInformation, ""); siAttr != nil {
		if si, ok := mft.DecodeStandardInformation(siAttr.Value); ok {
			d.si, d.hasSI = si, true
		}
	}

	if dataAttr := rec.FindFirst(ntfstime.AttrData, ""); dataAttr != nil {
		d.resident = !dataAttr.NonResident
		if d.resident {
			d.dataSize = int64(len(dataAttr.Value))
		} else {
			d.dataSize = int64(dataAttr.RealSize)
		}
	}

	return d, nil
}

// buildPathCache reads every MFT entry once to build the parent/name
// arena internal/ntfs/pathresolve.NewCache needs, shared by MFT, USN,
// and timeline path resolution within one partition.
func buildPathCache(p *partition.Partition, total int64) *pathresolve.Cache {
	entries := make([]pathresolve.Entry, 0, total)
	for n := int64(0); n < total; n++ {
		d, err := decodeMFTEntry(p, n)
		if err != nil || !d.hasName {
			continue
		}
		entries = append(entries, pathresolve.Entry{
			EntryNumber: uint64(n),
			Name:        d.name.Name,
			ParentEntry: d.name.ParentRef.EntryNumber(),
		})
	}
	return pathresolve.NewCache(entries)
}

func walkMFT(p *partition.Partition, opts Options, res *Result) error {
	total, err := mftEntryCount(p)
	if err != nil {
		return err
	}

	var paths *pathresolve.Cache
	if opts.Settings.IncludePath {
		paths = buildPathCache(p, total)
	}

	for n := int64(0); n < total; n++ {
		d, err := decodeMFTEntry(p, n)
		if err != nil {
			continue
		}
		if !d.hasName {
			continue
		}
		if !opts.Settings.IncludeDeleted && !d.record.InUse() {
			continue
		}
		if opts.Settings.ActiveOnly && !d.record.InUse() {
			continue
		}

		row := sink.MFTRow{
			Entry:          uint64(n),
			Sequence:       d.record.SequenceNum,
			InUse:          d.record.InUse(),
			IsDirectory:    d.record.IsDirectory(),
			FileName:       d.name.Name,
			AttributeLabel: d.name.FileAttr.String(),
			DataSize:       d.dataSize,
			Residency:      residencyLabel(d.resident),
		}
		if paths != nil {
			row.FullPath = paths.Path(uint64(n))
		}
		if d.hasSI {
			row.SICreated = ntfstime.FromFileTime(d.si.CreateTime, opts.Settings.Timezone)
			row.SIModified = ntfstime.FromFileTime(d.si.ModifyTime, opts.Settings.Timezone)
			row.SIAccessed = ntfstime.FromFileTime(d.si.AccessTime, opts.Settings.Timezone)
			row.SIEntryMod = ntfstime.FromFileTime(d.si.MFTModTime, opts.Settings.Timezone)
		}
		row.FNCreated = ntfstime.FromFileTime(d.name.CreateTime, opts.Settings.Timezone)
		row.FNModified = ntfstime.FromFileTime(d.name.ModifyTime, opts.Settings.Timezone)
		row.FNAccessed = ntfstime.FromFileTime(d.name.AccessTime, opts.Settings.Timezone)
		row.FNEntryMod = ntfstime.FromFileTime(d.name.MFTModTime, opts.Settings.Timezone)

		if err := opts.Sink.WriteMFT(row); err != nil {
			return fmt.Errorf("write MFT row: %w", err)
		}
		res.RecordsWritten++
	}
	return nil
}

func residencyLabel(resident bool) string {
	if resident {
		return "resident"
	}
	return "non-resident"
}
