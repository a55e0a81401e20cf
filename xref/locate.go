package xref

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ErrNoStartXRef is returned when the file tail has no usable startxref.
var ErrNoStartXRef = errors.New("xref: startxref not found")

const tailChunk = 1024

// Tail describes the end of a PDF file.
type Tail struct {
	StartXRef       int64 // value following the last startxref keyword
	EOFOffset       int64 // position of the last %%EOF marker, -1 if absent
	PostEOFDataSize int   // bytes after %%EOF beyond a single EOL, 0 if none
}

// LocateTail scans backwards from the end of r for the last %%EOF marker and
// the startxref keyword preceding it. A missing marker is not an error; a
// missing or unreadable startxref returns ErrNoStartXRef together with the
// marker information found so far.
func LocateTail(r io.ReaderAt, size int64) (Tail, error) {
	tail := Tail{StartXRef: -1, EOFOffset: -1}
	eof, err := lastOccurrence(r, size, []byte("%%EOF"), size)
	if err != nil {
		return tail, err
	}
	searchEnd := size
	if eof >= 0 {
		tail.EOFOffset = eof
		tail.PostEOFDataSize, err = postEOFSize(r, eof+5, size)
		if err != nil {
			return tail, err
		}
		searchEnd = eof
	}

	pos, err := lastOccurrence(r, size, []byte("startxref"), searchEnd)
	if err != nil {
		return tail, err
	}
	if pos < 0 {
		return tail, ErrNoStartXRef
	}
	buf := make([]byte, 32)
	n, err := r.ReadAt(buf, pos+9)
	if err != nil && !errors.Is(err, io.EOF) {
		return tail, err
	}
	fields := bytes.Fields(buf[:n])
	if len(fields) == 0 {
		return tail, ErrNoStartXRef
	}
	off, err := strconv.ParseInt(string(fields[0]), 10, 64)
	if err != nil || off < 0 || off >= size {
		return tail, fmt.Errorf("%w: invalid offset %q", ErrNoStartXRef, fields[0])
	}
	tail.StartXRef = off
	return tail, nil
}

// postEOFSize returns the number of bytes in [from, size) unless they form a
// single EOL marker.
func postEOFSize(r io.ReaderAt, from, size int64) (int, error) {
	rem := size - from
	switch {
	case rem <= 0:
		return 0, nil
	case rem > 2:
		return int(rem), nil
	}
	buf := make([]byte, rem)
	if _, err := r.ReadAt(buf, from); err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}
	if rem == 2 && buf[0] == '\r' && buf[1] == '\n' {
		return 0, nil
	}
	if rem == 1 && (buf[0] == '\r' || buf[0] == '\n') {
		return 0, nil
	}
	return int(rem), nil
}

// lastOccurrence returns the position of the last match of pat starting
// before end, reading backwards in fixed-size chunks. It returns -1 when
// there is no match.
func lastOccurrence(r io.ReaderAt, size int64, pat []byte, end int64) (int64, error) {
	if end > size {
		end = size
	}
	buf := make([]byte, tailChunk+len(pat))
	for end > 0 {
		start := end - tailChunk
		if start < 0 {
			start = 0
		}
		stop := end + int64(len(pat)) - 1
		if stop > size {
			stop = size
		}
		chunk := buf[:stop-start]
		n, err := r.ReadAt(chunk, start)
		if err != nil && !errors.Is(err, io.EOF) {
			return -1, err
		}
		chunk = chunk[:n]
		for {
			i := bytes.LastIndex(chunk, pat)
			if i < 0 {
				break
			}
			if start+int64(i) < end {
				return start + int64(i), nil
			}
			chunk = chunk[:i+len(pat)-1]
		}
		end = start
	}
	return -1, nil
}
