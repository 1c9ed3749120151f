package main

import (
	"github.com/s0up4200/go-ntfsforensics/internal/sink"
	"github.com/s0up4200/go-ntfsforensics/internal/util"
	"github.com/s0up4200/go-ntfsforensics/pkg/ntfsforensics"
	"github.com/spf13/cobra"
)

// runParseMFT is a package var so tests can substitute a fake without a
// real image on disk.
var runParseMFT = ntfsforensics.ParseMFT

func newParseMFTCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse-mft IMAGE_FILE",
		Short: "Decode every $MFT entry of an NTFS image",
		Args:  cobra.ExactArgs(1),
		RunE:  executeParseMFT,
	}
}

func executeParseMFT(cmd *cobra.Command, args []string) error {
	s, err := buildSettings()
	if err != nil {
		return err
	}

	sk, err := openSink(cmd, s, sink.KindMFT)
	if err != nil {
		return err
	}
	defer sk.Close()

	res, err := runParseMFT(cmd.Context(), ntfsforensics.Options{
		ImagePath: args[0],
		Settings:  s,
		Sink:      sk,
	})
	if err != nil {
		return err
	}

	cmd.PrintErrf("parsed %s $MFT entries across %d partition(s)\n", util.FormatNumber(int64(res.RecordsWritten)), res.PartitionsProcessed)
	return nil
}
