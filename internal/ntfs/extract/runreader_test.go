package extract

import (
	"bytes"
	"io"
	"testing"

	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/image"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/mft"
	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/partition"
)

// memImage backs an in-memory byte slice as an image.Image for tests.
type memImage struct{ data []byte }

func (m *memImage) ReadAt(offset int64, length int) ([]byte, error) {
	if offset >= int64(len(m.data)) {
		return nil, io.EOF
	}
	end := offset + int64(length)
	if end > int64(len(m.data)) {
		end = int64(len(m.data))
	}
	return m.data[offset:end], nil
}
func (m *memImage) Size() int64  { return int64(len(m.data)) }
func (m *memImage) Close() error { return nil }

func newTestPartition(clusterSize int64, clusterCount int64, fill func(cluster int64, buf []byte)) *partition.Partition {
	data := make([]byte, clusterSize*clusterCount)
	for c := int64(0); c < clusterCount; c++ {
		fill(c, data[c*clusterSize:(c+1)*clusterSize])
	}
	img := &memImage{data: data}
	return &partition.Partition{
		Image:       img,
		ClusterSize: clusterSize,
	}
}

var _ image.Image = (*memImage)(nil)

func TestRunReader_ReadsRealClustersThenSparseZero(t *testing.T) {
	const clusterSize = 8
	part := newTestPartition(clusterSize, 3, func(c int64, buf []byte) {
		for i := range buf {
			buf[i] = byte('A' + c)
		}
	})

	runs := []mft.DataRun{
		{StartLCN: 0, Length: 1, Sparse: false},
		{StartLCN: 0, Length: 1, Sparse: true},
		{StartLCN: 2, Length: 1, Sparse: false},
	}

	r := newRunReader(part, runs, -1)
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	want := append(bytes.Repeat([]byte{'A'}, clusterSize), make([]byte, clusterSize)...)
	want = append(want, bytes.Repeat([]byte{'C'}, clusterSize)...)

	if !bytes.Equal(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRunReader_TruncatesAtLimit(t *testing.T) {
	const clusterSize = 8
	part := newTestPartition(clusterSize, 2, func(c int64, buf []byte) {
		for i := range buf {
			buf[i] = byte('X')
		}
	})

	runs := []mft.DataRun{{StartLCN: 0, Length: 2, Sparse: false}}
	r := newRunReader(part, runs, 10)

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("len(got) = %d, want 10", len(got))
	}
}

func TestRunReader_EmptyRunsYieldsEOFImmediately(t *testing.T) {
	part := newTestPartition(8, 1, func(int64, []byte) {})
	r := newRunReader(part, nil, -1)

	buf := make([]byte, 4)
	n, err := r.Read(buf)
	if n != 0 || err != io.EOF {
		t.Fatalf("Read on empty runs = (%d, %v), want (0, io.EOF)", n, err)
	}
}

func TestRunReader_SmallReadsAccumulateAcrossCalls(t *testing.T) {
	const clusterSize = 4
	part := newTestPartition(clusterSize, 2, func(c int64, buf []byte) {
		for i := range buf {
			buf[i] = byte('0' + c)
		}
	})
	runs := []mft.DataRun{{StartLCN: 0, Length: 2, Sparse: false}}
	r := newRunReader(part, runs, -1)

	var got []byte
	buf := make([]byte, 3)
	for {
		n, err := r.Read(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
	}

	want := []byte{'0', '0', '0', '0', '1', '1', '1', '1'}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}
