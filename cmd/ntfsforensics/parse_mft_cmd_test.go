package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/s0up4200/go-ntfsforensics/pkg/ntfsforensics"
	"github.com/spf13/cobra"
)

var errBoom = errors.New("boom")

func execCmd(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestExecuteParseMFT_WritesRowsThroughFakeRunner(t *testing.T) {
	defer resetRootFlags()
	resetRootFlags()

	orig := runParseMFT
	defer func() { runParseMFT = orig }()

	var gotPath string
	runParseMFT = func(ctx context.Context, opts ntfsforensics.Options) (ntfsforensics.Result, error) {
		gotPath = opts.ImagePath
		row := opts.Sink
		if row == nil {
			t.Fatal("expected non-nil sink")
		}
		return ntfsforensics.Result{PartitionsProcessed: 1, RecordsWritten: 3}, nil
	}

	cmd := newParseMFTCommand()
	out, err := execCmd(t, cmd, "image.raw")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if gotPath != "image.raw" {
		t.Fatalf("got image path %q, want image.raw", gotPath)
	}
	if !bytes.Contains([]byte(out), []byte("parsed 3 $MFT entries")) {
		t.Fatalf("output missing summary line: %q", out)
	}
}

func TestExecuteParseMFT_PropagatesRunnerError(t *testing.T) {
	defer resetRootFlags()
	resetRootFlags()

	orig := runParseMFT
	defer func() { runParseMFT = orig }()

	runParseMFT = func(ctx context.Context, opts ntfsforensics.Options) (ntfsforensics.Result, error) {
		return ntfsforensics.Result{}, errBoom
	}

	cmd := newParseMFTCommand()
	_, err := execCmd(t, cmd, "image.raw")
	if err == nil {
		t.Fatal("expected error from runner")
	}
}

func TestExecuteParseMFT_RejectsRelationalWithoutOutput(t *testing.T) {
	defer resetRootFlags()
	resetRootFlags()
	flagFormat = "relational"

	cmd := newParseMFTCommand()
	_, err := execCmd(t, cmd, "image.raw")
	if err == nil {
		t.Fatal("expected error requiring --output for relational format")
	}
}
