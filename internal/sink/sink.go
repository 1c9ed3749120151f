// Package sink renders decoded records to the three external formats
// named in SPEC_FULL.md §6: delimited text, a JSON array, and a
// relational store. Every sink is write-only and forward-only, mirroring
// the decoders' own pull-based, non-restartable shape.
package sink

import (
	"time"

	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/ntfstime"
)

// MFTRow is one row of the MFT output columns: entry, sequence, in-use,
// is-directory, filename, full path, attribute label, four SI
// timestamps, four FN timestamps, data size, residency.
type MFTRow struct {
	Entry          uint64
	Sequence       uint16
	InUse          bool
	IsDirectory    bool
	FileName       string
	FullPath       string
	AttributeLabel string
	SICreated      time.Time
	SIModified     time.Time
	SIAccessed     time.Time
	SIEntryMod     time.Time
	FNCreated      time.Time
	FNModified     time.Time
	FNAccessed     time.Time
	FNEntryMod     time.Time
	DataSize       int64
	Residency      string
}

// MFTColumns is MFTRow's header, in column order.
var MFTColumns = []string{
	"entry", "sequence", "in_use", "is_directory", "filename", "full_path",
	"attribute", "si_created", "si_modified", "si_accessed", "si_entry_modified",
	"fn_created", "fn_modified", "fn_accessed", "fn_entry_modified",
	"data_size", "residency",
}

func (r MFTRow) strings() []string {
	return []string{
		formatUint(r.Entry), formatUint(uint64(r.Sequence)),
		formatBool(r.InUse), formatBool(r.IsDirectory),
		r.FileName, r.FullPath, r.AttributeLabel,
		ntfstime.Format(r.SICreated), ntfstime.Format(r.SIModified),
		ntfstime.Format(r.SIAccessed), ntfstime.Format(r.SIEntryMod),
		ntfstime.Format(r.FNCreated), ntfstime.Format(r.FNModified),
		ntfstime.Format(r.FNAccessed), ntfstime.Format(r.FNEntryMod),
		formatInt(r.DataSize), r.Residency,
	}
}

// UsnJrnlRow is one row of the $UsnJrnl output columns: timestamp,
// filename, full path, event label, attribute label, USN, source-info,
// security-id.
type UsnJrnlRow struct {
	Timestamp      time.Time
	FileName       string
	FullPath       string
	EventLabel     string
	AttributeLabel string
	USN            int64
	SourceInfo     uint32
	SecurityID     uint32
}

// UsnJrnlColumns is UsnJrnlRow's header, in column order.
var UsnJrnlColumns = []string{
	"timestamp", "filename", "full_path", "event", "attribute",
	"usn", "source_info", "security_id",
}

func (r UsnJrnlRow) strings() []string {
	return []string{
		ntfstime.Format(r.Timestamp), r.FileName, r.FullPath, r.EventLabel,
		r.AttributeLabel, formatInt(r.USN), formatUint(uint64(r.SourceInfo)),
		formatUint(uint64(r.SecurityID)),
	}
}

// LogFileRow is one row of the $LogFile output columns: LSN, timestamp,
// filename, event, attribute label, file-ref, parent-ref, transaction
// id, redo-op name, undo-op name, target-attribute.
type LogFileRow struct {
	LSN             uint64
	Timestamp       time.Time
	FileName        string
	EventLabel      string
	AttributeLabel  string
	FileReference   string
	ParentReference string
	TransactionID   uint32
	RedoOpName      string
	UndoOpName      string
	TargetAttribute string
}

// LogFileColumns is LogFileRow's header, in column order.
var LogFileColumns = []string{
	"lsn", "timestamp", "filename", "event", "attribute",
	"file_ref", "parent_ref", "transaction_id", "redo_op", "undo_op",
	"target_attribute",
}

func (r LogFileRow) strings() []string {
	return []string{
		formatUint(r.LSN), ntfstime.Format(r.Timestamp), r.FileName,
		r.EventLabel, r.AttributeLabel, r.FileReference, r.ParentReference,
		formatUint(uint64(r.TransactionID)), r.RedoOpName, r.UndoOpName,
		r.TargetAttribute,
	}
}

// TimelineRow is one row of the unified timeline output columns:
// timestamp, source, event, filename, full path, attribute label,
// file-ref, parent-ref, extra-info.
type TimelineRow struct {
	Timestamp       time.Time
	Source          string
	EventLabel      string
	FileName        string
	FullPath        string
	AttributeLabel  string
	FileReference   string
	ParentReference string
	ExtraInfo       string
}

// TimelineColumns is TimelineRow's header, in column order.
var TimelineColumns = []string{
	"timestamp", "source", "event", "filename", "full_path",
	"attribute", "file_ref", "parent_ref", "extra_info",
}

func (r TimelineRow) strings() []string {
	return []string{
		ntfstime.Format(r.Timestamp), r.Source, r.EventLabel, r.FileName,
		r.FullPath, r.AttributeLabel, r.FileReference, r.ParentReference,
		r.ExtraInfo,
	}
}

// Sink accepts one record kind at a time; which Write* methods are
// valid depends on the Kind a sink was constructed with, matching how
// each subcommand only ever produces one row kind per run (parse-mft
// writes only MFTRow, analyze writes only TimelineRow, and so on).
type Sink interface {
	WriteMFT(row MFTRow) error
	WriteUsnJrnl(row UsnJrnlRow) error
	WriteLogFile(row LogFileRow) error
	WriteTimeline(row TimelineRow) error
	Close() error
}

// Kind names which row type a sink was opened for.
type Kind int

const (
	KindMFT Kind = iota
	KindUsnJrnl
	KindLogFile
	KindTimeline
)

func (k Kind) columns() []string {
	switch k {
	case KindMFT:
		return MFTColumns
	case KindUsnJrnl:
		return UsnJrnlColumns
	case KindLogFile:
		return LogFileColumns
	case KindTimeline:
		return TimelineColumns
	default:
		return nil
	}
}

func (k Kind) table() string {
	switch k {
	case KindMFT:
		return "mft"
	case KindUsnJrnl:
		return "usnjrnl"
	case KindLogFile:
		return "logfile"
	case KindTimeline:
		return "timeline"
	default:
		return ""
	}
}
