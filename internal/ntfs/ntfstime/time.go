// Package ntfstime converts NTFS FILETIME values and renders them in a
// fixed, configurable timezone.
package ntfstime

import "time"

// epochDiff is the number of 100ns intervals between the NTFS epoch
// (1601-01-01T00:00:00Z) and the Unix epoch (1970-01-01T00:00:00Z).
const epochDiff = 116444736000000000

const ticksPerSecond = 10_000_000

// DefaultZone is the fixed offset applied when a caller has not configured
// one: UTC+9, matching the KST constant carried over from the original
// reference implementation's constants module.
var DefaultZone = time.FixedZone("UTC+9", 9*60*60)

// FromFileTime converts a raw FILETIME (100ns ticks since 1601-01-01 UTC)
// to a time.Time in loc. A zero or negative FILETIME is not a valid
// timestamp and yields the zero time.Time; callers render it as empty per
// the "decoded empty strings are never substituted with placeholders" rule.
func FromFileTime(filetime int64, loc *time.Location) time.Time {
	if filetime <= 0 {
		return time.Time{}
	}
	if loc == nil {
		loc = DefaultZone
	}
	unixTicks := filetime - epochDiff
	sec := unixTicks / ticksPerSecond
	nsec := (unixTicks % ticksPerSecond) * 100
	return time.Unix(sec, nsec).In(loc)
}

// ToFileTime is the inverse of FromFileTime at 100ns resolution; the zero
// time.Time maps to 0.
func ToFileTime(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	unixTicks := t.Unix()*ticksPerSecond + int64(t.Nanosecond()/100)
	return unixTicks + epochDiff
}

// Format renders t as "YYYY-MM-DD HH:MM:SS", or the empty string for the
// zero time.
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

// FormatFileTime is the common entry point used by every record type and
// sink: given a raw FILETIME and a rendering zone, produce the display
// string directly.
func FormatFileTime(filetime int64, loc *time.Location) string {
	return Format(FromFileTime(filetime, loc))
}
