package ntfsforensics

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/extract"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/ntfstime"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/partition"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/pathresolve"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/usn"
	"github.com/s0up4200/go-ntfsforensics/internal/sink"
)

func walkUsnJrnl(ctx context.Context, p *partition.Partition, opts Options, res *Result) error {
	ex := extract.New(p)
	r, err := ex.UsnJrnl()
	if err != nil {
		return fmt.Errorf("locate $UsnJrnl: %w", err)
	}

	var paths *pathresolve.Cache
	if opts.Settings.IncludePath {
		if total, err := mftEntryCount(p); err == nil {
			paths = buildPathCache(p, total)
		}
	}

	scanner := usn.NewScanner(r, 0)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := scanner.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decode $UsnJrnl record: %w", err)
		}

		row := sink.UsnJrnlRow{
			Timestamp:      ntfstime.FromFileTime(rec.TimestampRaw, opts.Settings.Timezone),
			FileName:       rec.Name,
			EventLabel:     rec.Reason.String(),
			AttributeLabel: rec.FileAttr.String(),
			USN:            rec.USN,
			SourceInfo:     rec.SourceInfo,
			SecurityID:     rec.SecurityID,
		}
		if paths != nil {
			row.FullPath = paths.Path(rec.FileRef.EntryNumber())
		}

		if err := opts.Sink.WriteUsnJrnl(row); err != nil {
			return fmt.Errorf("write UsnJrnl row: %w", err)
		}
		res.RecordsWritten++
	}
}
