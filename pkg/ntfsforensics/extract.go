package ntfsforensics

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/s0up4200/go-ntfsforensics/internal/concurrency"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/extract"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/image"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/partition"
)

// ExtractOptions configures a raw-stream extraction run.
type ExtractOptions struct {
	ImagePath      string
	PartitionIndex int
	MFTPath        string
	UsnJrnlPath    string
	LogFilePath    string
}

// Extract locates and copies the raw $MFT, $UsnJrnl:$J, and $LogFile
// streams of one partition to the given output paths. An empty path
// skips that stream.
func Extract(ctx context.Context, opts ExtractOptions) error {
	img, err := image.Open(opts.ImagePath)
	if err != nil {
		return fmt.Errorf("ntfsforensics: open image: %w", err)
	}
	defer img.Close()

	partitions, err := partition.Probe(img)
	if err != nil {
		return fmt.Errorf("ntfsforensics: probe partitions: %w", err)
	}
	if opts.PartitionIndex < 0 || opts.PartitionIndex >= len(partitions) {
		return fmt.Errorf("ntfsforensics: partition index %d out of range (found %d)", opts.PartitionIndex, len(partitions))
	}

	ex := extract.New(partitions[opts.PartitionIndex])
	return extractStreams(ctx, ex, opts)
}

// ExtractAnalyze runs Extract's three streams concurrently (each targets
// a distinct output file, per SPEC_FULL.md §5's extract-analyze
// carve-out) and then runs Analyze over the extracted partition.
func ExtractAnalyze(ctx context.Context, extractOpts ExtractOptions, analyzeOpts Options) (Result, error) {
	if err := Extract(ctx, extractOpts); err != nil {
		return Result{}, err
	}
	return Analyze(ctx, analyzeOpts)
}

func extractStreams(ctx context.Context, ex *extract.Extractor, opts ExtractOptions) error {
	var tasks []concurrency.ExtractTask
	if opts.MFTPath != "" {
		tasks = append(tasks, concurrency.ExtractTask{Name: "mft", Run: func(context.Context) error {
			r, err := ex.MFT()
			if err != nil {
				return err
			}
			return copyToFile(opts.MFTPath, r)
		}})
	}
	if opts.UsnJrnlPath != "" {
		tasks = append(tasks, concurrency.ExtractTask{Name: "usnjrnl", Run: func(context.Context) error {
			r, err := ex.UsnJrnl()
			if err != nil {
				return err
			}
			return copyToFile(opts.UsnJrnlPath, r)
		}})
	}
	if opts.LogFilePath != "" {
		tasks = append(tasks, concurrency.ExtractTask{Name: "logfile", Run: func(context.Context) error {
			r, err := ex.LogFile()
			if err != nil {
				return err
			}
			return copyToFile(opts.LogFilePath, r)
		}})
	}
	return concurrency.RunExtractions(ctx, tasks)
}

func copyToFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
