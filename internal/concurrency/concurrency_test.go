package concurrency

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
)

func TestRunExtractions_AllSucceed(t *testing.T) {
	var ran int32
	tasks := []ExtractTask{
		{Name: "mft", Run: func(context.Context) error { atomic.AddInt32(&ran, 1); return nil }},
		{Name: "usnjrnl", Run: func(context.Context) error { atomic.AddInt32(&ran, 1); return nil }},
		{Name: "logfile", Run: func(context.Context) error { atomic.AddInt32(&ran, 1); return nil }},
	}
	if err := RunExtractions(context.Background(), tasks); err != nil {
		t.Fatalf("RunExtractions: %v", err)
	}
	if ran != 3 {
		t.Errorf("ran = %d, want 3", ran)
	}
}

func TestRunExtractions_PropagatesNamedError(t *testing.T) {
	boom := errors.New("boom")
	tasks := []ExtractTask{
		{Name: "mft", Run: func(context.Context) error { return nil }},
		{Name: "logfile", Run: func(context.Context) error { return boom }},
	}
	err := RunExtractions(context.Background(), tasks)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "logfile") || !errors.Is(err, boom) {
		t.Errorf("err = %v, want it to name logfile and wrap boom", err)
	}
}
