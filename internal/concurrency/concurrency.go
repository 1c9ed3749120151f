// Package concurrency runs the extract-analyze subcommand's three
// independent artifact extractions side by side. Every decoder in
// internal/ntfs remains single-threaded and pull-based; this package
// only parallelizes the outer extraction step, where each task targets
// a distinct output file and shares no mutable state with the others.
package concurrency

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ExtractTask is one named, cancellable extraction step.
type ExtractTask struct {
	Name string
	Run  func(context.Context) error
}

// RunExtractions runs every task concurrently via errgroup, the same
// way s0up4200-go-bdinfo's internal/bdrom.runParallel bounds concurrent
// work, generalized here to a fixed small task list instead of a
// semaphore-bounded worker pool (there are at most three extractions:
// $MFT, $UsnJrnl, $LogFile). It returns the first error encountered,
// wrapped with the task's name. The context handed to every task is
// cancelled as soon as one task fails; RunExtractions still waits for all
// tasks to return before it returns.
func RunExtractions(ctx context.Context, tasks []ExtractTask) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			if err := task.Run(gctx); err != nil {
				return fmt.Errorf("%s: %w", task.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
