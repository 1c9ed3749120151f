package util

import "testing"

func TestFormatFileSize_HumanScalesToLargestUnit(t *testing.T) {
	got := FormatFileSize(1572864, true)
	want := "1.50 MB"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatFileSize_NonHumanStaysInBytes(t *testing.T) {
	got := FormatFileSize(2048, false)
	want := "2048.00 B"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatFileSize_ZeroOrNegative(t *testing.T) {
	if got := FormatFileSize(0, true); got != "0" {
		t.Fatalf("got %q, want 0", got)
	}
	if got := FormatFileSize(-5, true); got != "0" {
		t.Fatalf("got %q, want 0", got)
	}
}

func TestFormatNumber_AddsThousandsSeparators(t *testing.T) {
	cases := map[int64]string{
		0:        "0",
		7:        "7",
		999:      "999",
		1000:     "1,000",
		1234567:  "1,234,567",
		-42000:   "-42,000",
	}
	for in, want := range cases {
		if got := FormatNumber(in); got != want {
			t.Fatalf("FormatNumber(%d) = %q, want %q", in, got, want)
		}
	}
}
