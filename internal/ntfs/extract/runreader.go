package extract

import (
	"io"

	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/mft"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/partition"
)

// runReader is an io.Reader over a non-resident attribute's data runs,
// pulling clusters from the partition lazily as Read is called. Sparse
// runs are filled with zero bytes rather than skipped, preserving file
// offsets the way §4.F requires for $UsnJrnl:$J. It is a finite,
// non-restartable sequence: once exhausted it always returns io.EOF,
// mirroring the udf package's fileReader/extentReader pair.
type runReader struct {
	part   *partition.Partition
	runs   []mft.DataRun
	limit  int64 // total bytes to deliver; -1 means unlimited
	written int64

	runIdx     int
	clusterIdx uint64
	pending    []byte
}

func newRunReader(part *partition.Partition, runs []mft.DataRun, limit int64) *runReader {
	return &runReader{part: part, runs: runs, limit: limit}
}

func (r *runReader) Read(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		if r.limit >= 0 && r.written >= r.limit {
			if total > 0 {
				return total, nil
			}
			return 0, io.EOF
		}

		if len(r.pending) == 0 {
			if err := r.fill(); err != nil {
				if total > 0 {
					return total, nil
				}
				return 0, err
			}
			if len(r.pending) == 0 {
				if total > 0 {
					return total, nil
				}
				return 0, io.EOF
			}
		}

		n := copy(p[total:], r.pending)
		r.pending = r.pending[n:]
		r.written += int64(n)
		total += n
	}
	return total, nil
}

// fill advances to the next cluster in the run list and loads it into
// pending, zero-filling for sparse runs. It leaves pending empty (with a
// nil error) only when every run has been exhausted.
func (r *runReader) fill() error {
	for r.runIdx < len(r.runs) {
		run := r.runs[r.runIdx]
		if r.clusterIdx >= run.Length {
			r.runIdx++
			r.clusterIdx = 0
			continue
		}

		var chunk []byte
		if run.Sparse {
			chunk = make([]byte, r.part.ClusterSize)
		} else {
			data, err := r.part.ReadCluster(run.StartLCN + int64(r.clusterIdx))
			if err != nil {
				return err
			}
			chunk = data
		}
		r.clusterIdx++

		if r.limit >= 0 {
			remaining := r.limit - r.written
			if int64(len(chunk)) > remaining {
				chunk = chunk[:remaining]
			}
		}

		r.pending = chunk
		return nil
	}
	return nil
}
