package settings

import "testing"

func TestDefault(t *testing.T) {
	s := Default("/tmp/out.txt")

	if s.OutputFormat != OutputText {
		t.Errorf("OutputFormat = %v, want %v", s.OutputFormat, OutputText)
	}
	if s.PartitionIndex != AllPartitions {
		t.Errorf("PartitionIndex = %d, want %d", s.PartitionIndex, AllPartitions)
	}
	if s.Timezone == nil || s.Timezone.String() != "UTC" {
		t.Errorf("Timezone = %v, want UTC", s.Timezone)
	}
	if s.SkipMFT || s.SkipUsnJrnl || s.SkipLogFile {
		t.Errorf("Default() should not skip any source")
	}
	if s.Verbose {
		t.Errorf("Default() should not be verbose")
	}
	if s.OutputPath != "/tmp/out.txt" {
		t.Errorf("OutputPath = %q, want /tmp/out.txt", s.OutputPath)
	}
}

func TestOutputFormatValues(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{OutputText, "text"},
		{OutputJSON, "json"},
		{OutputRelational, "relational"},
	}
	for _, tt := range tests {
		if string(tt.format) != tt.want {
			t.Errorf("format = %q, want %q", tt.format, tt.want)
		}
	}
}
