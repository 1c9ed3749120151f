package main

import (
	"github.com/s0up4200/go-ntfsforensics/internal/sink"
	"github.com/s0up4200/go-ntfsforensics/internal/util"
	"github.com/s0up4200/go-ntfsforensics/pkg/ntfsforensics"
	"github.com/spf13/cobra"
)

var runAnalyze = ntfsforensics.Analyze

func newAnalyzeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze IMAGE_FILE",
		Short: "Build a unified timeline across $MFT, $UsnJrnl, and $LogFile",
		Args:  cobra.ExactArgs(1),
		RunE:  executeAnalyze,
	}
}

func executeAnalyze(cmd *cobra.Command, args []string) error {
	s, err := buildSettings()
	if err != nil {
		return err
	}

	sk, err := openSink(cmd, s, sink.KindTimeline)
	if err != nil {
		return err
	}
	defer sk.Close()

	res, err := runAnalyze(cmd.Context(), ntfsforensics.Options{
		ImagePath:  args[0],
		Settings:   s,
		Sink:       sk,
		OnProgress: progressLogger(cmd),
	})
	if err != nil {
		return err
	}

	cmd.PrintErrf("emitted %s timeline events across %d partition(s)\n", util.FormatNumber(int64(res.RecordsWritten)), res.PartitionsProcessed)
	return nil
}

// progressLogger prints one line per stage transition when --verbose is
// set, matching the CLI's quiet-by-default / chatty-with-v convention.
func progressLogger(cmd *cobra.Command) func(ntfsforensics.ProgressEvent) {
	if !flagVerbose {
		return nil
	}
	return func(ev ntfsforensics.ProgressEvent) {
		cmd.PrintErrf("[%s] partition=%d records=%d\n", ev.Stage, ev.PartitionIndex, ev.RecordsWritten)
	}
}
