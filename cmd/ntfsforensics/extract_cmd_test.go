package main

import (
	"context"
	"testing"

	"github.com/s0up4200/go-ntfsforensics/pkg/ntfsforensics"
)

func resetExtractFlags() {
	flagExtractMFT = ""
	flagExtractUsnJrnl = ""
	flagExtractLogFile = ""
}

func TestBuildExtractOptions_RequiresAtLeastOneOutput(t *testing.T) {
	defer resetExtractFlags()
	resetExtractFlags()

	if _, err := buildExtractOptions("image.raw"); err == nil {
		t.Fatal("expected error when no output path is set")
	}
}

func TestBuildExtractOptions_PassesThroughPaths(t *testing.T) {
	defer resetExtractFlags()
	resetExtractFlags()
	flagExtractMFT = "mft.bin"

	opts, err := buildExtractOptions("image.raw")
	if err != nil {
		t.Fatalf("buildExtractOptions: %v", err)
	}
	if opts.ImagePath != "image.raw" || opts.MFTPath != "mft.bin" {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

func TestPartitionOrDefault_TreatsAllPartitionsAsZero(t *testing.T) {
	defer func() { flagPartition = -1 }()

	flagPartition = -1
	if got := partitionOrDefault(); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
	flagPartition = 2
	if got := partitionOrDefault(); got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
}

func TestExecuteExtract_PropagatesRunnerError(t *testing.T) {
	defer resetExtractFlags()
	resetExtractFlags()
	flagExtractMFT = "mft.bin"

	orig := runExtract
	defer func() { runExtract = orig }()
	runExtract = func(ctx context.Context, opts ntfsforensics.ExtractOptions) error {
		return errBoom
	}

	cmd := newExtractCommand()
	_, err := execCmd(t, cmd, "image.raw")
	if err == nil {
		t.Fatal("expected error from runner")
	}
}
