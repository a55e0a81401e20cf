package xref_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/wudi/pdfaparser/xref"
)

func locate(t *testing.T, src string) (xref.Tail, error) {
	t.Helper()
	return xref.LocateTail(strings.NewReader(src), int64(len(src)))
}

func TestLocateTailPostEOFData(t *testing.T) {
	const head = "%PDF-1.4\n0123456789\nstartxref\n9\n%%EOF"
	tests := []struct {
		name string
		tail string
		want int
	}{
		{"none", "", 0},
		{"LF", "\n", 0},
		{"CR", "\r", 0},
		{"CRLF", "\r\n", 0},
		{"two LF", "\n\n", 2},
		{"LF CR", "\n\r", 2},
		{"space", " ", 1},
		{"garbage", "\ngarbage", 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tail, err := locate(t, head+tt.tail)
			if err != nil {
				t.Fatalf("locate: %v", err)
			}
			if tail.StartXRef != 9 {
				t.Fatalf("startxref = %d, want 9", tail.StartXRef)
			}
			if tail.EOFOffset != int64(len(head)-5) {
				t.Fatalf("%%%%EOF at %d, want %d", tail.EOFOffset, len(head)-5)
			}
			if tail.PostEOFDataSize != tt.want {
				t.Fatalf("post-EOF size = %d, want %d", tail.PostEOFDataSize, tt.want)
			}
		})
	}
}

func TestLocateTailUsesLastMarker(t *testing.T) {
	src := "%PDF-1.4\n0123456789\nstartxref\n9\n%%EOF\nupdate\nstartxref\n12\n%%EOF\n"
	tail, err := locate(t, src)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if tail.StartXRef != 12 || tail.EOFOffset != int64(strings.LastIndex(src, "%%EOF")) {
		t.Fatalf("unexpected tail %+v", tail)
	}
}

func TestLocateTailAcrossChunks(t *testing.T) {
	// startxref straddles the boundary of the first backwards chunk.
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n0123456789\n")
	buf.WriteString("startxref\n9\n")
	buf.WriteString(strings.Repeat(" ", 1028-len("startxref\n9\n")))
	buf.WriteString("%%EOF\n")
	tail, err := locate(t, buf.String())
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if tail.StartXRef != 9 {
		t.Fatalf("unexpected tail %+v", tail)
	}
}

func TestLocateTailMissingMarkers(t *testing.T) {
	tail, err := locate(t, "%PDF-1.4\n0123456789\nstartxref\n9\n")
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if tail.EOFOffset != -1 || tail.StartXRef != 9 || tail.PostEOFDataSize != 0 {
		t.Fatalf("unexpected tail %+v", tail)
	}

	for _, src := range []string{
		"%PDF-1.4\n%%EOF\n",
		"%PDF-1.4\nstartxref\n%%EOF\n",
		"%PDF-1.4\nstartxref\nabc\n%%EOF\n",
		"%PDF-1.4\nstartxref\n99999\n%%EOF\n",
	} {
		tail, err := locate(t, src)
		if !errors.Is(err, xref.ErrNoStartXRef) {
			t.Errorf("%q: expected ErrNoStartXRef, got %v", src, err)
		}
		if tail.EOFOffset < 0 {
			t.Errorf("%q: the %%%%EOF marker should still be reported", src)
		}
	}
}
