package xref_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wudi/pdfaparser/compliance"
	"github.com/wudi/pdfaparser/ir/raw"
	"github.com/wudi/pdfaparser/parser"
	"github.com/wudi/pdfaparser/scanner"
	"github.com/wudi/pdfaparser/xref"
)

func repair(t *testing.T, data []byte) (*xref.Section, error) {
	t.Helper()
	s := scanner.NewBytes(data, scanner.Config{})
	return xref.Repair(context.Background(), s, parser.Values(nil, nil, compliance.TrailerOwner))
}

func TestRepairWithoutXRef(t *testing.T) {
	// Build a PDF with NO xref table or startxref
	buf := &bytes.Buffer{}
	buf.WriteString("%PDF-1.7\n")

	off1 := buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	off2 := buf.Len()
	buf.WriteString("2 0 obj\n<< /Type /Pages /Count 0 >>\nendobj\n")

	buf.WriteString("trailer\n<< /Size 3 /Root 1 0 R >>\n")
	buf.WriteString("%%EOF\n")

	sec, err := repair(t, buf.Bytes())
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	want := map[raw.ObjectRef]int64{objRef(1, 0): int64(off1), objRef(2, 0): int64(off2)}
	if diff := cmp.Diff(want, sec.Entries.Entries()); diff != "" {
		t.Fatalf("entries (-want +got):\n%s", diff)
	}
	if sec.Entries.Type() != "repaired" || sec.Offset != -1 {
		t.Fatalf("unexpected section %+v", sec)
	}
	if _, ok := sec.Trailer.Get(raw.NameLiteral("Root")); !ok {
		t.Fatalf("trailer /Root not recovered")
	}
}

func TestRepairGarbagePrefix(t *testing.T) {
	// Test case for "999 2 0 obj" where "999" is garbage
	buf := &bytes.Buffer{}
	buf.WriteString("%PDF-1.7\n999 ")
	off := buf.Len()
	buf.WriteString("2 0 obj\n<< >>\nendobj\n")

	sec, err := repair(t, buf.Bytes())
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	if got, ok := sec.Entries.Lookup(objRef(2, 0)); !ok || got != int64(off) {
		t.Fatalf("object 2 at %d (%v), want %d", got, ok, off)
	}
	if size, _ := sec.Trailer.GetInt("Size"); size != 3 {
		t.Fatalf("synthesized trailer /Size = %d, want 3", size)
	}
}

func TestRepairLaterDefinitionWins(t *testing.T) {
	buf := &bytes.Buffer{}
	buf.WriteString("%PDF-1.7\n1 0 obj\n(old)\nendobj\n")
	off := buf.Len()
	buf.WriteString("1 0 obj\n(new)\nendobj\n")

	sec, err := repair(t, buf.Bytes())
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	if got, _ := sec.Entries.Lookup(objRef(1, 0)); got != int64(off) {
		t.Fatalf("object 1 at %d, want %d", got, off)
	}
}

func TestRepairSkipsStreamData(t *testing.T) {
	buf := &bytes.Buffer{}
	buf.WriteString("%PDF-1.7\n1 0 obj\n<< /Length 12 >>\nstream\n9 0 obj here\nendstream\nendobj\n")
	buf.WriteString("trailer\n<< /Size 2 >>\ntrailer\n<< /Size 2 /Root 1 0 R >>\ntrailer\n<< /Size 9 >>\n")

	sec, err := repair(t, buf.Bytes())
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	if _, ok := sec.Entries.Lookup(objRef(9, 0)); ok {
		t.Fatalf("object header inside stream data should be ignored")
	}
	if _, ok := sec.Trailer.Get(raw.NameLiteral("Root")); !ok {
		t.Fatalf("trailer with /Root should be preferred, got %+v", sec.Trailer)
	}
}

func TestRepairFailures(t *testing.T) {
	if _, err := repair(t, []byte("%PDF-1.7\nno objects here\n")); !errors.Is(err, xref.ErrRepairFailed) {
		t.Fatalf("expected ErrRepairFailed, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := scanner.NewBytes([]byte("%PDF-1.7\n1 0 obj\n(x)\nendobj\n"), scanner.Config{})
	if _, err := xref.Repair(ctx, s, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
