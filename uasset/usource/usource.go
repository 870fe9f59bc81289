// Package usource provides the byte-range providers behind serialized files.
//
// Every RangeReader must allow concurrent ReadRange calls at arbitrary
// offsets: objects are visited in path-id order, not byte order, and
// independent decodes may run in parallel.
package usource

import (
	"io"

	"unity-viewer/uasset/uerr"
)

type (
	RangeReader interface {
		ReadRange(offset int64, length int64) ([]byte, error)
		Size() int64
	}
	Provider interface {
		Open(path string) (RangeReader, error)
		// List returns the regular files below dir, recursively.
		List(dir string) ([]string, error)
	}
	// Bytes is an in-memory RangeReader.
	Bytes []byte
)

func checkRange(caller string, offset int64, length int64, size int64) error {
	if offset < 0 || length < 0 || offset > size || length > size-offset {
		return uerr.Formatf(
			caller, uerr.ErrUnexpectedEOF,
			"range [%d, +%d) outside of %d bytes", offset, length, size,
		)
	}
	return nil
}

func (b Bytes) Size() int64 {
	return int64(len(b))
}

// ReadRange returns a copy, so callers may keep the result after the
// backing slice changes.
func (b Bytes) ReadRange(offset int64, length int64) ([]byte, error) {
	if err := checkRange("Bytes.ReadRange", offset, length, b.Size()); err != nil {
		return nil, err
	}
	bs := make([]byte, length)
	copy(bs, b[offset:offset+length])
	return bs, nil
}

// ReaderAt adapts any io.ReaderAt with a known size.
type ReaderAt struct {
	R    io.ReaderAt
	Len  int64
	Name string
}

func (r ReaderAt) Size() int64 {
	return r.Len
}

func (r ReaderAt) ReadRange(offset int64, length int64) ([]byte, error) {
	if err := checkRange("ReaderAt.ReadRange", offset, length, r.Len); err != nil {
		return nil, err
	}
	bs := make([]byte, length)
	n, err := r.R.ReadAt(bs, offset)
	if n == len(bs) {
		return bs, nil
	}
	// provider errors are handed back untouched
	return nil, err
}
