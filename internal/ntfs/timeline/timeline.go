// Package timeline concatenates MFT, $UsnJrnl, and $LogFile events into
// one unified, lazily-pulled sequence. It does not sort: callers index
// by timestamp afterward if a globally-sorted view is needed.
package timeline

import (
	"io"
	"strconv"
	"time"

	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/logfile"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/ntfstime"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/pathresolve"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/usn"
)

// Source names an event's origin decoder, matching every sink's
// "Source" column.
const (
	SourceMFT     = "MFT"
	SourceUsnJrnl = "UsnJrnl"
	SourceLogFile = "LogFile"
)

// Event is one unified timeline row.
type Event struct {
	Timestamp       time.Time
	Source          string
	EventLabel      string
	FileName        string
	FullPath        string
	FileAttr        string
	FileReference   string
	ParentReference string
	ExtraInfo       string
}

// MFTEntry is the subset of one decoded, path-resolved MFT record the
// timeline needs. Callers build these from mft.Record plus a
// pathresolve.Cache before handing them to NewEmitter.
type MFTEntry struct {
	EntryNumber uint64
	SequenceNum uint16
	ParentRef   ntfstime.FileReference
	FileName    string
	FileAttr    ntfstime.FileAttr
	Created     time.Time
	Modified    time.Time
	FullPath    string
}

func (e MFTEntry) fileRefString() string {
	return ntfstime.FileReference(e.EntryNumber | uint64(e.SequenceNum)<<48).String()
}

// Emitter is a finite, non-restartable, source-ordered iterator: every
// MFT event is yielded before the first $UsnJrnl event, which in turn
// precedes every $LogFile event. Each underlying source is itself
// pulled lazily.
type Emitter struct {
	mftEntries []MFTEntry
	mftIdx     int
	mftPending *Event

	usnScanner *usn.Scanner
	usnPaths   *pathresolve.Cache
	usnLoc     *time.Location

	lf *logfile.Decoder

	stage int
}

const (
	stageMFT = iota
	stageUsnJrnl
	stageLogFile
	stageDone
)

// NewEmitter assembles the unified iterator. usnScanner and lf may be
// nil when that source was skipped (per the `skip_{mft,usnjrnl,logfile}`
// configuration option); usnPaths may be nil when no MFT pass was
// available to resolve $UsnJrnl full paths. loc governs $UsnJrnl
// timestamp rendering; nil uses the project default zone.
func NewEmitter(mftEntries []MFTEntry, usnScanner *usn.Scanner, usnPaths *pathresolve.Cache, lf *logfile.Decoder, loc *time.Location) *Emitter {
	return &Emitter{
		mftEntries: mftEntries,
		usnScanner: usnScanner,
		usnPaths:   usnPaths,
		usnLoc:     loc,
		lf:         lf,
	}
}

// Next returns the next unified event, or io.EOF once every source is
// exhausted.
func (e *Emitter) Next() (*Event, error) {
	for {
		switch e.stage {
		case stageMFT:
			if ev := e.nextMFTEvent(); ev != nil {
				return ev, nil
			}
			e.stage = stageUsnJrnl

		case stageUsnJrnl:
			if e.usnScanner == nil {
				e.stage = stageLogFile
				continue
			}
			rec, err := e.usnScanner.Next()
			if err == io.EOF {
				e.stage = stageLogFile
				continue
			}
			if err != nil {
				return nil, err
			}
			return e.usnEvent(rec), nil

		case stageLogFile:
			if e.lf == nil {
				e.stage = stageDone
				continue
			}
			rec, err := e.lf.Next()
			if err == io.EOF {
				e.stage = stageDone
				continue
			}
			if err != nil {
				return nil, err
			}
			if rec.FileName == "" && rec.EventLabel() == "" {
				continue
			}
			return logFileEvent(rec), nil

		default:
			return nil, io.EOF
		}
	}
}

// nextMFTEvent pops the next pending MFT-derived event: a $STANDARD_INFORMATION
// create event, immediately followed (on the next call) by its modify
// event when the modify time differs from creation, per entry.
func (e *Emitter) nextMFTEvent() *Event {
	if e.mftPending != nil {
		ev := e.mftPending
		e.mftPending = nil
		return ev
	}

	for e.mftIdx < len(e.mftEntries) {
		entry := e.mftEntries[e.mftIdx]
		e.mftIdx++

		if entry.Created.IsZero() {
			continue
		}

		ref := entry.fileRefString()
		parent := entry.ParentRef.String()

		if !entry.Modified.IsZero() && !entry.Modified.Equal(entry.Created) {
			e.mftPending = &Event{
				Timestamp:       entry.Modified,
				Source:          SourceMFT,
				EventLabel:      "FileModify (SI)",
				FileName:        entry.FileName,
				FullPath:        entry.FullPath,
				FileAttr:        entry.FileAttr.String(),
				FileReference:   ref,
				ParentReference: parent,
			}
		}

		return &Event{
			Timestamp:       entry.Created,
			Source:          SourceMFT,
			EventLabel:      "FileCreate (SI)",
			FileName:        entry.FileName,
			FullPath:        entry.FullPath,
			FileAttr:        entry.FileAttr.String(),
			FileReference:   ref,
			ParentReference: parent,
		}
	}
	return nil
}

func (e *Emitter) usnEvent(rec *usn.Record) *Event {
	fullPath := ""
	if e.usnPaths != nil {
		fullPath = e.usnPaths.Path(rec.FileRef.EntryNumber())
	}
	return &Event{
		Timestamp:       ntfstime.FromFileTime(rec.TimestampRaw, e.usnLoc),
		Source:          SourceUsnJrnl,
		EventLabel:      rec.Reason.String(),
		FileName:        rec.Name,
		FullPath:        fullPath,
		FileAttr:        rec.FileAttr.String(),
		FileReference:   rec.FileRef.String(),
		ParentReference: rec.ParentRef.String(),
		ExtraInfo:       "USN:" + strconv.FormatInt(rec.USN, 10),
	}
}

func logFileEvent(rec *logfile.Record) *Event {
	var fileRef, parentRef string
	if rec.FileReference != 0 {
		fileRef = rec.FileReference.String()
	}
	if rec.ParentReference != 0 {
		parentRef = rec.ParentReference.String()
	}
	return &Event{
		Timestamp:       rec.Timestamp,
		Source:          SourceLogFile,
		EventLabel:      rec.EventLabel(),
		FileName:        rec.FileName,
		FileReference:   fileRef,
		ParentReference: parentRef,
		ExtraInfo:       "LSN:" + strconv.FormatUint(rec.ThisLSN, 10),
	}
}
