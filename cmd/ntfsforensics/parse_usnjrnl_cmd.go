package main

import (
	"github.com/s0up4200/go-ntfsforensics/internal/sink"
	"github.com/s0up4200/go-ntfsforensics/internal/util"
	"github.com/s0up4200/go-ntfsforensics/pkg/ntfsforensics"
	"github.com/spf13/cobra"
)

var runParseUsnJrnl = ntfsforensics.ParseUsnJrnl

func newParseUsnJrnlCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse-usnjrnl IMAGE_FILE",
		Short: "Decode every $UsnJrnl:$J record of an NTFS image",
		Args:  cobra.ExactArgs(1),
		RunE:  executeParseUsnJrnl,
	}
}

func executeParseUsnJrnl(cmd *cobra.Command, args []string) error {
	s, err := buildSettings()
	if err != nil {
		return err
	}

	sk, err := openSink(cmd, s, sink.KindUsnJrnl)
	if err != nil {
		return err
	}
	defer sk.Close()

	res, err := runParseUsnJrnl(cmd.Context(), ntfsforensics.Options{
		ImagePath: args[0],
		Settings:  s,
		Sink:      sk,
	})
	if err != nil {
		return err
	}

	cmd.PrintErrf("parsed %s $UsnJrnl records across %d partition(s)\n", util.FormatNumber(int64(res.RecordsWritten)), res.PartitionsProcessed)
	return nil
}
