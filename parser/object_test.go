package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wudi/pdfaparser/compliance"
	"github.com/wudi/pdfaparser/compliance/pdfa"
	"github.com/wudi/pdfaparser/ir/raw"
	"github.com/wudi/pdfaparser/observability"
	"github.com/wudi/pdfaparser/recovery"
	"github.com/wudi/pdfaparser/scanner"
	"github.com/wudi/pdfaparser/security"
)

func newTestObjectParser(data string) (*objectParser, *compliance.Records, *observability.MemoryLogger) {
	log := observability.NewMemoryLogger()
	recs := compliance.NewRecords()
	p := &objectParser{
		s:        scanner.NewBytes([]byte(data), scanner.Config{}),
		policy:   pdfa.StrictPolicy{},
		recs:     recs,
		recovery: recovery.NewStrictStrategy(),
		logger:   log,
		limits:   security.DefaultLimits(),
	}
	return p, recs, log
}

func TestObjectFraming(t *testing.T) {
	tests := []struct {
		name string
		data string
		want compliance.ObjectRecord
	}{
		{
			name: "compliant",
			data: "\n4 0 obj\n(x)\nendobj\n",
			want: compliance.ObjectRecord{HeaderEOLCompliant: true, HeaderFormatCompliant: true, FooterEOLCompliant: true},
		},
		{
			name: "no EOL before header",
			data: "x4 0 obj\n(x)\nendobj\n",
			want: compliance.ObjectRecord{HeaderEOLCompliant: false, HeaderFormatCompliant: true, FooterEOLCompliant: true},
		},
		{
			name: "no EOL after obj",
			data: "\n4 0 obj (x)\nendobj\n",
			want: compliance.ObjectRecord{HeaderEOLCompliant: false, HeaderFormatCompliant: true, FooterEOLCompliant: true},
		},
		{
			name: "double space after number",
			data: "\n4  0 obj\n(x)\nendobj\n",
			want: compliance.ObjectRecord{HeaderEOLCompliant: true, HeaderFormatCompliant: false, FooterEOLCompliant: true},
		},
		{
			name: "no space before obj",
			data: "\n4 0obj\n(x)\nendobj\n",
			want: compliance.ObjectRecord{HeaderEOLCompliant: true, HeaderFormatCompliant: false, FooterEOLCompliant: true},
		},
		{
			name: "newline separator",
			data: "\n4\n0 obj\n(x)\nendobj\n",
			want: compliance.ObjectRecord{HeaderEOLCompliant: true, HeaderFormatCompliant: false, FooterEOLCompliant: true},
		},
		{
			name: "space before endobj",
			data: "\n4 0 obj\n(x) endobj\n",
			want: compliance.ObjectRecord{HeaderEOLCompliant: true, HeaderFormatCompliant: true, FooterEOLCompliant: false},
		},
		{
			name: "endobj at end of file",
			data: "\n4 0 obj\n(x)\nendobj",
			want: compliance.ObjectRecord{HeaderEOLCompliant: true, HeaderFormatCompliant: true, FooterEOLCompliant: false},
		},
		{
			name: "next object on the same line",
			data: "\n4 0 obj\n(x)\nendobj 5 0 obj\n",
			want: compliance.ObjectRecord{HeaderEOLCompliant: true, HeaderFormatCompliant: true, FooterEOLCompliant: false},
		},
		{
			name: "CRLF everywhere",
			data: "\r\n4 0 obj\r\n(x)\r\nendobj\r\n",
			want: compliance.ObjectRecord{HeaderEOLCompliant: true, HeaderFormatCompliant: true, FooterEOLCompliant: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, recs, _ := newTestObjectParser(tt.data)
			obj, err := p.parseIndirect(context.Background(), ref(4), 1, 0)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if diff := cmp.Diff(raw.Str([]byte("x")), obj); diff != "" {
				t.Fatalf("value (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.want, *recs.Objects[ref(4)]); diff != "" {
				t.Fatalf("record (-want +got):\n%s", diff)
			}
		})
	}
}

// The stream cases pin the EOL arithmetic around the stream data: which
// bytes belong to the data, how many EOL bytes before endstream are
// discounted, and which boundaries are reported.
func TestStreamBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		length   string
		body     string
		data     string
		resolved int64
		leading  bool
		trailing bool
	}{
		{"LF", "10", "stream\n0123456789\nendstream", "0123456789", 10, true, true},
		{"CRLF", "10", "stream\r\n0123456789\r\nendstream", "0123456789", 10, true, true},
		{"length covers CR", "10", "stream\n012345678\r\nendstream", "012345678\r", 10, true, true},
		{"no EOL before endstream", "10", "stream\n0123456789endstream", "0123456789", 10, true, false},
		{"CR before endstream", "10", "stream\n0123456789\rendstream", "0123456789", 10, true, false},
		{"length too short", "5", "stream\n0123456789\nendstream", "0123456789", 10, true, true},
		{"length too long", "50", "stream\n0123456789\nendstream", "0123456789", 10, true, true},
		{"CR after stream", "10", "stream\r0123456789\nendstream", "0123456789", 10, false, true},
		{"space after stream", "10", "stream 0123456789\nendstream", "0123456789", 11, false, true},
		{"empty", "0", "stream\n\nendstream", "", 0, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := "\n4 0 obj\n<< /Length " + tt.length + " >>\n" + tt.body + "\nendobj\n"
			p, recs, _ := newTestObjectParser(data)
			obj, err := p.parseIndirect(context.Background(), ref(4), 1, 0)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			stream, ok := obj.(*raw.StreamObj)
			if !ok {
				t.Fatalf("expected stream, got %T", obj)
			}
			if string(stream.Data) != tt.data {
				t.Fatalf("data = %q, want %q", stream.Data, tt.data)
			}
			st := recs.Streams[ref(4)]
			if st.ResolvedLength != tt.resolved {
				t.Fatalf("resolved length = %d, want %d", st.ResolvedLength, tt.resolved)
			}
			if st.LeadingSpacingCompliant != tt.leading || st.TrailingSpacingCompliant != tt.trailing {
				t.Fatalf("spacing = (%v, %v), want (%v, %v)",
					st.LeadingSpacingCompliant, st.TrailingSpacingCompliant, tt.leading, tt.trailing)
			}
			if !recs.Objects[ref(4)].Compliant() {
				t.Fatalf("object framing should be compliant: %+v", recs.Objects[ref(4)])
			}
		})
	}
}

func TestStreamFollowedBySecondEndstream(t *testing.T) {
	p, recs, log := newTestObjectParser("\n4 0 obj\n<< /Length 3 >>\nstream\nabc\nendstream\nendstream\nendobj\n")
	obj, err := p.parseIndirect(context.Background(), ref(4), 1, 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := obj.(*raw.StreamObj); !ok {
		t.Fatalf("expected stream, got %T", obj)
	}
	if !log.Contains(observability.LevelWarn, "second endstream") {
		t.Fatalf("expected the duplicate keyword to be logged")
	}
	if !recs.Objects[ref(4)].Compliant() {
		t.Fatalf("unexpected framing record %+v", recs.Objects[ref(4)])
	}
}

func TestStreamWithUnresolvableLength(t *testing.T) {
	p, recs, _ := newTestObjectParser("\n4 0 obj\n<< /Length 9 0 R >>\nstream\n0123456789\nendstream\nendobj\n")
	obj, err := p.parseIndirect(context.Background(), ref(4), 1, 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	stream := obj.(*raw.StreamObj)
	if string(stream.Data) != "0123456789" {
		t.Fatalf("unexpected data %q", stream.Data)
	}
	if _, ok := stream.Dict.Get(raw.NameLiteral("Length")); ok {
		t.Fatalf("unresolvable /Length should be removed")
	}
	if st := recs.Streams[ref(4)]; st.DeclaredLength != -1 || st.ResolvedLength != 10 {
		t.Fatalf("unexpected stream record %+v", st)
	}
}

func TestObjectErrors(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		check func(error) bool
	}{
		{
			name:  "missing length",
			data:  "\n4 0 obj\n<< >>\nstream\nabc\nendstream\nendobj\n",
			check: func(err error) bool { var e *MissingLengthError; return errors.As(err, &e) },
		},
		{
			name:  "stream without dictionary",
			data:  "\n4 0 obj\n[1 2]\nstream\nabc\nendstream\nendobj\n",
			check: func(err error) bool { return errors.Is(err, ErrStreamWithoutDict) },
		},
		{
			name:  "endstream never found",
			data:  "\n4 0 obj\n<< /Length 100 >>\nstream\nabc",
			check: func(err error) bool { var e *MalformedFileError; return errors.As(err, &e) },
		},
		{
			name:  "not an object header",
			data:  "\nfoo bar\n",
			check: func(err error) bool { var e *MalformedFileError; return errors.As(err, &e) },
		},
		{
			name:  "unterminated hex string",
			data:  "\n4 0 obj\n<41",
			check: func(err error) bool { return errors.Is(err, ErrUnterminatedHexString) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, _ := newTestObjectParser(tt.data)
			_, err := p.parseIndirect(context.Background(), ref(4), 1, 0)
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

func TestObjectIdentityMismatch(t *testing.T) {
	p, _, log := newTestObjectParser("\n5 0 obj\n(x)\nendobj\n")
	obj, err := p.parseIndirect(context.Background(), ref(4), 1, 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := obj.(raw.NullObj); !ok {
		t.Fatalf("expected null for a mismatched object, got %T", obj)
	}
	if !log.Contains(observability.LevelWarn, "xref points to wrong object") {
		t.Fatalf("expected the mismatch to be logged")
	}
}

func TestCheckObjectHeader(t *testing.T) {
	s := scanner.NewBytes([]byte("xx\n 12 3 obj\n12 3 objx\n"), scanner.Config{})
	tests := []struct {
		ref  raw.ObjectRef
		off  int64
		want bool
	}{
		{raw.ObjectRef{Num: 12, Gen: 3}, 2, true},
		{raw.ObjectRef{Num: 12, Gen: 3}, 4, true},
		{raw.ObjectRef{Num: 12, Gen: 0}, 2, false},
		{raw.ObjectRef{Num: 2, Gen: 3}, 4, false},
		{raw.ObjectRef{Num: 12, Gen: 3}, 13, false},
		{raw.ObjectRef{Num: 12, Gen: 3}, 0, false},
		{raw.ObjectRef{Num: 12, Gen: 3}, 1000, false},
	}
	for _, tt := range tests {
		if got := checkObjectHeader(s, tt.ref, tt.off); got != tt.want {
			t.Errorf("checkObjectHeader(%s, %d) = %v, want %v", tt.ref, tt.off, got, tt.want)
		}
	}
}

func TestCheckObjectHeaderRejectsOverflow(t *testing.T) {
	s := scanner.NewBytes([]byte("18446744073709551617 0 obj\n"), scanner.Config{})
	if checkObjectHeader(s, raw.ObjectRef{Num: 1, Gen: 0}, 0) {
		t.Fatalf("an object number beyond int64 must not wrap around to 1")
	}
}
