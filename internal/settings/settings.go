// Package settings holds the configuration surface every subcommand in
// cmd/ntfsforensics builds before touching the decoding core.
package settings

import "time"

// OutputFormat selects which internal/sink writer a run feeds.
type OutputFormat string

const (
	OutputText       OutputFormat = "text"
	OutputJSON       OutputFormat = "json"
	OutputRelational OutputFormat = "relational"
)

// AllPartitions tells the partition probe to walk every NTFS partition it
// finds instead of a single selected index.
const AllPartitions = -1

// Settings mirrors the options a single analyzer run is configured with.
type Settings struct {
	IncludeDeleted bool
	IncludePath    bool
	ActiveOnly     bool
	OutputFormat   OutputFormat
	Timezone       *time.Location
	SkipMFT        bool
	SkipUsnJrnl    bool
	SkipLogFile    bool
	KeepTemp       bool
	PartitionIndex int
	Verbose        bool
	OutputPath     string
}

// Default returns the baseline configuration every subcommand starts
// from before flags override individual fields.
func Default(outputPath string) Settings {
	return Settings{
		IncludeDeleted: false,
		IncludePath:    true,
		ActiveOnly:     false,
		OutputFormat:   OutputText,
		Timezone:       time.UTC,
		SkipMFT:        false,
		SkipUsnJrnl:    false,
		SkipLogFile:    false,
		KeepTemp:       false,
		PartitionIndex: AllPartitions,
		Verbose:        false,
		OutputPath:     outputPath,
	}
}
