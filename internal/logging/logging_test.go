package logging

import "testing"

func TestInit_QuietByDefault(t *testing.T) {
	logger, err := Init(false)
	if err != nil {
		t.Fatalf("Init(false): %v", err)
	}
	if logger.Core().Enabled(-1) { // debug level
		t.Errorf("debug level should not be enabled when verbose is false")
	}
	if !logger.Core().Enabled(1) { // warn level
		t.Errorf("warn level should be enabled regardless of verbose")
	}
}

func TestInit_VerboseEnablesDebug(t *testing.T) {
	logger, err := Init(true)
	if err != nil {
		t.Fatalf("Init(true): %v", err)
	}
	if !logger.Core().Enabled(-1) { // debug level
		t.Errorf("debug level should be enabled when verbose is true")
	}
}

func TestSugar_ReturnsUsableLogger(t *testing.T) {
	if _, err := Init(false); err != nil {
		t.Fatalf("Init: %v", err)
	}
	s := Sugar()
	if s == nil {
		t.Fatal("Sugar() returned nil")
	}
	s.Debugw("test message", "key", "value")
}
