package ntfsforensics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/extract"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/logfile"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/ntfstime"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/partition"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/pathresolve"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/timeline"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/usn"
	"github.com/s0up4200/go-ntfsforensics/internal/sink"
)

func walkTimeline(ctx context.Context, p *partition.Partition, opts Options, res *Result) error {
	ex := extract.New(p)

	var total int64
	var haveTotal bool
	if opts.Settings.IncludePath || !opts.Settings.SkipMFT {
		t, err := mftEntryCount(p)
		if err != nil {
			return fmt.Errorf("count $MFT entries: %w", err)
		}
		total, haveTotal = t, true
	}

	var paths *pathresolve.Cache
	if opts.Settings.IncludePath && haveTotal {
		paths = buildPathCache(p, total)
	}

	var mftEntries []timeline.MFTEntry
	if !opts.Settings.SkipMFT {
		mftEntries = collectMFTEntries(p, total, paths, opts)
	}

	var scanner *usn.Scanner
	if !opts.Settings.SkipUsnJrnl {
		r, err := ex.UsnJrnl()
		if err != nil {
			return fmt.Errorf("locate $UsnJrnl: %w", err)
		}
		scanner = usn.NewScanner(r, 0)
	}

	var dec *logfile.Decoder
	if !opts.Settings.SkipLogFile {
		r, err := ex.LogFile()
		if err != nil {
			return fmt.Errorf("locate $LogFile: %w", err)
		}
		dec, err = logfile.NewDecoder(r, opts.Settings.Timezone)
		if err != nil {
			return fmt.Errorf("open $LogFile decoder: %w", err)
		}
	}

	emitter := timeline.NewEmitter(mftEntries, scanner, paths, dec, opts.Settings.Timezone)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, err := emitter.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("emit timeline event: %w", err)
		}

		row := sink.TimelineRow{
			Timestamp:       ev.Timestamp,
			Source:          ev.Source,
			EventLabel:      ev.EventLabel,
			FileName:        ev.FileName,
			FullPath:        ev.FullPath,
			AttributeLabel:  ev.FileAttr,
			FileReference:   ev.FileReference,
			ParentReference: ev.ParentReference,
			ExtraInfo:       ev.ExtraInfo,
		}
		if err := opts.Sink.WriteTimeline(row); err != nil {
			return fmt.Errorf("write timeline row: %w", err)
		}
		res.RecordsWritten++
	}
}

func collectMFTEntries(p *partition.Partition, total int64, paths *pathresolve.Cache, opts Options) []timeline.MFTEntry {
	entries := make([]timeline.MFTEntry, 0, total)
	for n := int64(0); n < total; n++ {
		d, err := decodeMFTEntry(p, n)
		if err != nil || !d.hasName {
			continue
		}
		if !opts.Settings.IncludeDeleted && !d.record.InUse() {
			continue
		}
		if opts.Settings.ActiveOnly && !d.record.InUse() {
			continue
		}

		var created, modified time.Time
		if d.hasSI {
			created = ntfstime.FromFileTime(d.si.CreateTime, opts.Settings.Timezone)
			modified = ntfstime.FromFileTime(d.si.ModifyTime, opts.Settings.Timezone)
		}

		e := timeline.MFTEntry{
			EntryNumber: uint64(n),
			SequenceNum: d.record.SequenceNum,
			ParentRef:   d.name.ParentRef,
			FileName:    d.name.Name,
			FileAttr:    d.name.FileAttr,
			Created:     created,
			Modified:    modified,
		}
		if paths != nil {
			e.FullPath = paths.Path(uint64(n))
		}
		entries = append(entries, e)
	}
	return entries
}
