package ntfsforensics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/extract"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/logfile"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/partition"
	"github.com/s0up4200/go-ntfsforensics/internal/sink"
)

func walkLogFile(ctx context.Context, p *partition.Partition, opts Options, res *Result) error {
	ex := extract.New(p)
	r, err := ex.LogFile()
	if err != nil {
		return fmt.Errorf("locate $LogFile: %w", err)
	}

	dec, err := logfile.NewDecoder(r, opts.Settings.Timezone)
	if err != nil {
		return fmt.Errorf("open $LogFile decoder: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decode $LogFile record: %w", err)
		}

		row := sink.LogFileRow{
			LSN:            rec.ThisLSN,
			Timestamp:      rec.Timestamp,
			FileName:       rec.FileName,
			EventLabel:     rec.EventLabel(),
			AttributeLabel: rec.FileAttr.String(),
			TransactionID:  rec.TransactionID,
			RedoOpName:     rec.RedoOp.Name(),
			UndoOpName:     rec.UndoOp.Name(),
			TargetAttribute: strconv.FormatUint(uint64(rec.TargetAttribute), 10),
		}
		if rec.FileReference != 0 {
			row.FileReference = rec.FileReference.String()
		}
		if rec.ParentReference != 0 {
			row.ParentReference = rec.ParentReference.String()
		}

		if err := opts.Sink.WriteLogFile(row); err != nil {
			return fmt.Errorf("write LogFile row: %w", err)
		}
		res.RecordsWritten++
	}
}
