// Package image provides uniform byte-range reads over raw disk images and
// segmented evidence-file (EWF/E01) containers, detected by magic.
package image

import (
	"os"

	"github.com/s0up4200/go-ntfsforensics/internal/ntfs/ntfserr"
)

// Image is a random-access source of bytes with an advertised total media
// size. The layer is seekable but never cached; any caching lives above it.
type Image interface {
	// ReadAt reads length bytes starting at offset. It returns fewer bytes
	// than requested only at EOF, matching io.ReaderAt semantics.
	ReadAt(offset int64, length int) ([]byte, error)
	// Size returns the total advertised media size in bytes.
	Size() int64
	// Close releases the underlying file handle(s).
	Close() error
}

// evfMagic is the signature of an EWF/E01 segment file: "EVF" followed by
// the fixed trailer bytes 09 0d 0a ff 00.
var evfMagic = [8]byte{'E', 'V', 'F', 0x09, 0x0d, 0x0a, 0xff, 0x00}

// Open inspects the first eight bytes of path and returns the appropriate
// Image backend: a raw file reader, or an EWF segmented-container reader
// when the EVF magic is present.
func Open(path string) (Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ntfserr.NewIO("open image", err)
	}

	var header [8]byte
	n, err := f.ReadAt(header[:], 0)
	if err != nil && n < 8 {
		f.Close()
		return nil, ntfserr.NewIO("read image header", err)
	}

	if header == evfMagic {
		f.Close()
		return openEWF(path)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ntfserr.NewIO("stat image", err)
	}

	return &rawImage{file: f, size: info.Size()}, nil
}

// rawImage backs Image directly with *os.File, mirroring the teacher's
// DiskFileSystem-over-os.File pattern.
type rawImage struct {
	file *os.File
	size int64
}

func (r *rawImage) ReadAt(offset int64, length int) ([]byte, error) {
	buf := make([]byte, length)
	n, err := r.file.ReadAt(buf, offset)
	if err != nil && n == 0 {
		return nil, ntfserr.NewIO("read raw image", err)
	}
	return buf[:n], nil
}

func (r *rawImage) Size() int64 { return r.size }

func (r *rawImage) Close() error { return r.file.Close() }
