// Package ntfsforensics is the library-facing entry point every
// cmd/ntfsforensics subcommand builds on: open an image, probe its NTFS
// partitions, and stream decoded MFT / $UsnJrnl / $LogFile / timeline
// records into a caller-supplied sink.Sink. Callers that want the CLI's
// exact behavior without a subprocess use this package directly.
package ntfsforensics

import (
	"context"
	"fmt"
	"time"

	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/image"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/partition"
	"github.com/s0up4200/go-ntfsforensics/internal/settings"
	"github.com/s0up4200/go-ntfsforensics/internal/sink"
)

// Stage is a coarse progress marker reported through Options.OnProgress.
type Stage string

const (
	StageOpeningImage    Stage = "opening_image"
	StageProbingPartition Stage = "probing_partitions"
	StageDecoding        Stage = "decoding"
	StageDone            Stage = "done"
)

// ProgressEvent is emitted as Run moves between stages.
type ProgressEvent struct {
	Stage          Stage
	PartitionIndex int
	RecordsWritten int
	OccurredAt     time.Time
}

func emit(cb func(ProgressEvent), ev ProgressEvent) {
	if cb != nil {
		cb(ev)
	}
}

// Options configures one analyzer run.
type Options struct {
	ImagePath  string
	Settings   settings.Settings
	Sink       sink.Sink
	OnProgress func(ProgressEvent)
}

// Result summarizes one completed run.
type Result struct {
	PartitionsProcessed int
	RecordsWritten       int
}

// ParseMFT walks every $MFT entry of each selected partition and writes
// one sink.MFTRow per entry.
func ParseMFT(ctx context.Context, opts Options) (Result, error) {
	return runPerPartition(ctx, opts, func(ctx context.Context, p *partition.Partition, opts Options, res *Result) error {
		return walkMFT(p, opts, res)
	})
}

// ParseUsnJrnl streams every $UsnJrnl record of each selected partition
// and writes one sink.UsnJrnlRow per record, resolving full paths when
// opts.Settings.IncludePath is set.
func ParseUsnJrnl(ctx context.Context, opts Options) (Result, error) {
	return runPerPartition(ctx, opts, func(ctx context.Context, p *partition.Partition, opts Options, res *Result) error {
		return walkUsnJrnl(ctx, p, opts, res)
	})
}

// ParseLogFile streams every $LogFile log record of each selected
// partition and writes one sink.LogFileRow per yielded record.
func ParseLogFile(ctx context.Context, opts Options) (Result, error) {
	return runPerPartition(ctx, opts, func(ctx context.Context, p *partition.Partition, opts Options, res *Result) error {
		return walkLogFile(ctx, p, opts, res)
	})
}

// Analyze builds the unified timeline (§4.J) across whichever of
// $MFT/$UsnJrnl/$LogFile are not skipped, and writes one
// sink.TimelineRow per emitted event.
func Analyze(ctx context.Context, opts Options) (Result, error) {
	return runPerPartition(ctx, opts, func(ctx context.Context, p *partition.Partition, opts Options, res *Result) error {
		return walkTimeline(ctx, p, opts, res)
	})
}

func runPerPartition(ctx context.Context, opts Options, fn func(context.Context, *partition.Partition, Options, *Result) error) (Result, error) {
	if opts.ImagePath == "" {
		return Result{}, fmt.Errorf("ntfsforensics: image path is required")
	}
	if opts.Sink == nil {
		return Result{}, fmt.Errorf("ntfsforensics: sink is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	emit(opts.OnProgress, ProgressEvent{Stage: StageOpeningImage, OccurredAt: time.Now()})
	img, err := image.Open(opts.ImagePath)
	if err != nil {
		return Result{}, fmt.Errorf("ntfsforensics: open image: %w", err)
	}
	defer img.Close()

	emit(opts.OnProgress, ProgressEvent{Stage: StageProbingPartition, OccurredAt: time.Now()})
	partitions, err := partition.Probe(img)
	if err != nil {
		return Result{}, fmt.Errorf("ntfsforensics: probe partitions: %w", err)
	}
	if len(partitions) == 0 {
		return Result{}, fmt.Errorf("ntfsforensics: no NTFS partitions found")
	}

	var res Result
	for i, p := range partitions {
		if opts.Settings.PartitionIndex != settings.AllPartitions && opts.Settings.PartitionIndex != i {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		emit(opts.OnProgress, ProgressEvent{Stage: StageDecoding, PartitionIndex: i, OccurredAt: time.Now()})
		if err := fn(ctx, p, opts, &res); err != nil {
			return res, fmt.Errorf("ntfsforensics: partition %d: %w", i, err)
		}
		res.PartitionsProcessed++
	}

	emit(opts.OnProgress, ProgressEvent{Stage: StageDone, RecordsWritten: res.RecordsWritten, OccurredAt: time.Now()})
	return res, nil
}
