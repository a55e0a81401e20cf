package scanner

import (
	"errors"
	"io"
)

const defaultWindow = 64 * 1024

// window incrementally buffers data from a ReaderAt in fixed-size chunks.
// Loaded bytes are retained, so any offset below len(data) is addressable.
type window struct {
	reader    io.ReaderAt
	data      []byte
	size      int64
	chunkSize int64
	eof       bool
}

func newWindow(r io.ReaderAt, size, chunk int64) *window {
	if chunk <= 0 {
		chunk = defaultWindow
	}
	return &window{reader: r, size: size, chunkSize: chunk}
}

// ensure loads data until offset n is buffered. It returns io.EOF when the
// source ends before n.
func (w *window) ensure(n int64) error {
	for int64(len(w.data)) <= n {
		if w.eof {
			return io.EOF
		}
		if err := w.loadMore(); err != nil {
			return err
		}
	}
	return nil
}

func (w *window) loadMore() error {
	want := w.chunkSize
	off := int64(len(w.data))
	if w.size >= 0 && off+want > w.size {
		want = w.size - off
	}
	if want <= 0 {
		w.eof = true
		return nil
	}
	buf := make([]byte, want)
	n, err := w.reader.ReadAt(buf, off)
	if n > 0 {
		w.data = append(w.data, buf[:n]...)
	}
	if errors.Is(err, io.EOF) || n == 0 {
		w.eof = true
		return nil
	}
	return err
}

// at returns the byte at offset i.
func (w *window) at(i int64) (byte, error) {
	if i < 0 {
		return 0, ErrEndOfSource
	}
	if err := w.ensure(i); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, ErrEndOfSource
		}
		return 0, err
	}
	return w.data[i], nil
}

// slice returns data[from:to], clipped to the end of the source.
func (w *window) slice(from, to int64) ([]byte, error) {
	if to > from {
		if err := w.ensure(to - 1); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	}
	if to > int64(len(w.data)) {
		to = int64(len(w.data))
	}
	if from > to {
		from = to
	}
	return w.data[from:to], nil
}
