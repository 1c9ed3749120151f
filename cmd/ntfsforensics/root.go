package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/s0up4200/go-ntfsforensics/internal/logging"
	"github.com/s0up4200/go-ntfsforensics/internal/settings"
	"github.com/s0up4200/go-ntfsforensics/internal/sink"
	"github.com/spf13/cobra"
)

// Shared flag values, populated by root's persistent flags and read by
// every decoding subcommand's RunE.
var (
	flagIncludeDeleted bool
	flagNoPath         bool
	flagActiveOnly     bool
	flagFormat         string
	flagOutput         string
	flagTimezone       string
	flagSkipMFT        bool
	flagSkipUsnJrnl    bool
	flagSkipLogFile    bool
	flagKeepTemp       bool
	flagPartition      int
	flagVerbose        bool
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "ntfsforensics",
		Short:         "Parse and analyze NTFS forensic artifacts ($MFT, $UsnJrnl, $LogFile)",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := logging.Init(flagVerbose)
			return err
		},
	}

	root.PersistentFlags().BoolVar(&flagIncludeDeleted, "include-deleted", false, "include entries/records for deleted files")
	root.PersistentFlags().BoolVar(&flagNoPath, "no-path", false, "skip full path resolution (faster on large images)")
	root.PersistentFlags().BoolVar(&flagActiveOnly, "active-only", false, "only report entries currently in use")
	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format: text, json, or relational")
	root.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "output path (stdout for text/json when empty; required for relational)")
	root.PersistentFlags().StringVar(&flagTimezone, "timezone", "UTC", "IANA timezone name used to render timestamps")
	root.PersistentFlags().BoolVar(&flagSkipMFT, "skip-mft", false, "skip the $MFT source in analyze")
	root.PersistentFlags().BoolVar(&flagSkipUsnJrnl, "skip-usnjrnl", false, "skip the $UsnJrnl source in analyze")
	root.PersistentFlags().BoolVar(&flagSkipLogFile, "skip-logfile", false, "skip the $LogFile source in analyze")
	root.PersistentFlags().BoolVar(&flagKeepTemp, "keep-temp", false, "keep temporary files extracted from segmented images")
	root.PersistentFlags().IntVar(&flagPartition, "partition", settings.AllPartitions, "partition index to process (-1 for all)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newParseMFTCommand())
	root.AddCommand(newParseUsnJrnlCommand())
	root.AddCommand(newParseLogFileCommand())
	root.AddCommand(newAnalyzeCommand())
	root.AddCommand(newExtractCommand())
	root.AddCommand(newExtractAnalyzeCommand())
	root.AddCommand(newVersionCommand())

	return root
}

// buildSettings assembles a settings.Settings from the root's persistent
// flags. OutputPath is the --output flag as given, so it stays empty
// (stdout for text/json) when the flag is unset.
func buildSettings() (settings.Settings, error) {
	loc, err := time.LoadLocation(flagTimezone)
	if err != nil {
		return settings.Settings{}, fmt.Errorf("invalid --timezone %q: %w", flagTimezone, err)
	}

	s := settings.Default(flagOutput)
	s.IncludeDeleted = flagIncludeDeleted
	s.IncludePath = !flagNoPath
	s.ActiveOnly = flagActiveOnly
	s.Timezone = loc
	s.SkipMFT = flagSkipMFT
	s.SkipUsnJrnl = flagSkipUsnJrnl
	s.SkipLogFile = flagSkipLogFile
	s.KeepTemp = flagKeepTemp
	s.PartitionIndex = flagPartition
	s.Verbose = flagVerbose

	switch flagFormat {
	case "text":
		s.OutputFormat = settings.OutputText
	case "json":
		s.OutputFormat = settings.OutputJSON
	case "relational":
		s.OutputFormat = settings.OutputRelational
	default:
		return settings.Settings{}, fmt.Errorf("unsupported --format %q (supported: text, json, relational)", flagFormat)
	}
	return s, nil
}

// openSink opens the sink.Sink named by s.OutputFormat for the given row
// kind. For text/json an empty s.OutputPath writes to stdout; relational
// always requires a file path since a database cannot stream to a pipe.
func openSink(cmd *cobra.Command, s settings.Settings, kind sink.Kind) (sink.Sink, error) {
	switch s.OutputFormat {
	case settings.OutputRelational:
		if s.OutputPath == "" {
			return nil, fmt.Errorf("--output is required for --format relational")
		}
		return sink.NewRelationalSink(s.OutputPath, kind)
	case settings.OutputJSON:
		w, err := openOutputWriter(cmd, s.OutputPath)
		if err != nil {
			return nil, err
		}
		return sink.NewJSONSink(w, kind)
	default:
		w, err := openOutputWriter(cmd, s.OutputPath)
		if err != nil {
			return nil, err
		}
		return sink.NewTextSink(w, kind)
	}
}

func openOutputWriter(cmd *cobra.Command, path string) (io.Writer, error) {
	if path == "" {
		return cmd.OutOrStdout(), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return f, nil
}
