package compliance

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wudi/pdfaparser/ir/raw"
)

func TestRecordDefaults(t *testing.T) {
	doc := NewDocumentRecord()
	if !doc.XRefEOLCompliant || !doc.SubsectionHeaderSpaceSeparated {
		t.Fatalf("document flags must start compliant: %+v", doc)
	}
	if doc.HasBinaryComment() {
		t.Fatalf("absent comment bytes reported as binary comment")
	}
	doc.HeaderCommentBytes = [4]int{0xE2, 0xE3, 0xCF, 0xD3}
	if !doc.HasBinaryComment() {
		t.Fatalf("high-bit comment not recognised")
	}

	obj := NewObjectRecord()
	if !obj.Compliant() {
		t.Fatalf("new object record must be compliant")
	}
	obj.FailFooterEOL()
	if obj.Compliant() || !obj.HeaderEOLCompliant {
		t.Fatalf("unexpected flags after footer failure: %+v", obj)
	}

	st := NewStreamRecord()
	if st.DeclaredLength != -1 || !st.LeadingSpacingCompliant || !st.TrailingSpacingCompliant {
		t.Fatalf("unexpected stream defaults: %+v", st)
	}
}

func TestRecordsSideTable(t *testing.T) {
	recs := NewRecords()
	a := recs.Object(raw.ObjectRef{Num: 2})
	b := recs.Object(raw.ObjectRef{Num: 2})
	if a != b {
		t.Fatalf("Object must return the same record for the same ref")
	}
	recs.Object(raw.ObjectRef{Num: 1, Gen: 3})
	recs.Object(raw.ObjectRef{Num: 1})
	want := []raw.ObjectRef{{Num: 1}, {Num: 1, Gen: 3}, {Num: 2}}
	if diff := cmp.Diff(want, recs.ObjectRefs()); diff != "" {
		t.Fatalf("ObjectRefs mismatch (-want +got):\n%s", diff)
	}

	hex := NewHexStringRecord()
	recs.AddHexString(raw.ObjectRef{Num: 4}, 17, hex)
	hex.HexDigitCount = 9
	if got := recs.HexStrings[0].Record.HexDigitCount; got != 0 {
		t.Fatalf("AddHexString must copy the record, got count %d", got)
	}
}

func TestNopPolicyLeavesRecords(t *testing.T) {
	var p Policy = NopPolicy{}
	doc := NewDocumentRecord()
	obj := NewObjectRecord()
	st := NewStreamRecord()
	hex := NewHexStringRecord()

	p.OnHeader(&doc, Header{Offset: 5, Text: "junk"})
	p.OnXRef(&doc, XRefKeywordEOL, false)
	p.OnEOF(&doc, 12)
	p.OnTrailer(&doc, raw.Dict())
	p.OnObjectBoundary(obj, BeforeObjectHeader, false)
	p.OnStreamBoundary(st, BeforeEndstream, false)
	p.OnHexChar(hex, 'S', HexInvalid)

	if diff := cmp.Diff(NewDocumentRecord(), doc); diff != "" {
		t.Fatalf("document record changed (-want +got):\n%s", diff)
	}
	if !obj.Compliant() || !st.TrailingSpacingCompliant || !hex.ContainsOnlyHex || hex.HexDigitCount != 0 {
		t.Fatalf("nop policy modified records")
	}
}

func TestReportCodes(t *testing.T) {
	r := &Report{Violations: []Violation{
		{Code: "6.1.2-1", Description: "Header is not at offset 0", Location: "Header"},
		{Code: "6.1.8-3", Description: "endobj is not followed by an EOL marker", Location: "Object 4 0 R"},
	}}
	if diff := cmp.Diff([]string{"6.1.2-1", "6.1.8-3"}, r.Codes()); diff != "" {
		t.Fatalf("codes (-want +got):\n%s", diff)
	}
	if got, want := r.Violations[1].String(), "6.1.8-3 endobj is not followed by an EOL marker (Object 4 0 R)"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if diff := cmp.Diff([]string{}, (&Report{}).Codes()); diff != "" {
		t.Fatalf("empty report codes (-want +got):\n%s", diff)
	}
}
