package xref

import (
	"bufio"
	"fmt"
	"io"
)

// WriteOptions controls the layout of a serialized table.
type WriteOptions struct {
	// EOL terminates the keyword and subsection header lines. Default "\n".
	EOL string
	// EntryEOL terminates each 18-byte entry. Default " \n", giving the
	// 20-byte entries required by the file format.
	EntryEOL string
}

func (o WriteOptions) withDefaults() WriteOptions {
	if o.EOL == "" {
		o.EOL = "\n"
	}
	if o.EntryEOL == "" {
		o.EntryEOL = " \n"
	}
	return o
}

// WriteTo serializes the table as a classic xref section without trailer.
// Object 0 is written as the head of the free list; consecutive object
// numbers are grouped into subsections. A section holds one entry per
// object number, so only the highest generation of a number is written.
func (t *Table) WriteTo(w io.Writer, opts WriteOptions) (int64, error) {
	opts = opts.withDefaults()
	bw := bufio.NewWriter(w)
	var written int64
	emit := func(format string, args ...interface{}) error {
		n, err := fmt.Fprintf(bw, format, args...)
		written += int64(n)
		return err
	}

	type row struct {
		num, gen int
		off      int64
		kind     byte
	}
	rows := []row{{num: 0, gen: 65535, kind: 'f'}}
	for _, ref := range t.Refs() {
		if ref.Num == 0 {
			continue
		}
		r := row{num: ref.Num, gen: ref.Gen, off: t.entries[ref], kind: 'n'}
		if last := &rows[len(rows)-1]; last.num == r.num {
			*last = r
			continue
		}
		rows = append(rows, r)
	}

	if err := emit("xref%s", opts.EOL); err != nil {
		return written, err
	}
	for i := 0; i < len(rows); {
		j := i + 1
		for j < len(rows) && rows[j].num == rows[j-1].num+1 {
			j++
		}
		if err := emit("%d %d%s", rows[i].num, j-i, opts.EOL); err != nil {
			return written, err
		}
		for _, r := range rows[i:j] {
			if err := emit("%010d %05d %c%s", r.off, r.gen, r.kind, opts.EntryEOL); err != nil {
				return written, err
			}
		}
		i = j
	}
	return written, bw.Flush()
}
