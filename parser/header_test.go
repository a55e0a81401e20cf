package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wudi/pdfaparser/compliance"
	"github.com/wudi/pdfaparser/compliance/pdfa"
	"github.com/wudi/pdfaparser/observability"
	"github.com/wudi/pdfaparser/scanner"
)

func TestValidateHeader(t *testing.T) {
	absent := [4]int{-1, -1, -1, -1}
	binary := [4]int{0xE2, 0xE3, 0xCF, 0xD3}
	tests := []struct {
		name string
		data string
		want headerInfo
	}{
		{
			name: "compliant",
			data: "%PDF-1.4\n" + binaryComment + "1 0 obj\n",
			want: headerInfo{Offset: 0, Text: "%PDF-1.4", Version: "1.4", Comment: binary},
		},
		{
			name: "CRLF",
			data: "%PDF-1.6\r\n%\xE2\xE3\xCF\xD3\r\n",
			want: headerInfo{Offset: 0, Text: "%PDF-1.6", Version: "1.6", Comment: binary},
		},
		{
			name: "leading junk line",
			data: "junk\n%PDF-1.5\n" + binaryComment,
			want: headerInfo{Offset: 5, Text: "%PDF-1.5", Version: "1.5", Comment: binary},
		},
		{
			name: "marker inside line",
			data: "xx%PDF-1.3\n" + binaryComment,
			want: headerInfo{Offset: 2, Text: "xx%PDF-1.3", Version: "1.3", Comment: binary},
		},
		{
			name: "marker without percent",
			data: "PDF-1.2\n" + binaryComment,
			want: headerInfo{Offset: 0, Text: "PDF-1.2", Version: "1.2", Comment: binary},
		},
		{
			name: "text comment",
			data: "%PDF-1.4\n%abcd\n",
			want: headerInfo{Offset: 0, Text: "%PDF-1.4", Version: "1.4", Comment: [4]int{'a', 'b', 'c', 'd'}},
		},
		{
			name: "short comment",
			data: "%PDF-1.4\n%\xE2\xE3\n",
			want: headerInfo{Offset: 0, Text: "%PDF-1.4", Version: "1.4", Comment: absent},
		},
		{
			name: "no version",
			data: "%PDF-\n" + binaryComment,
			want: headerInfo{Offset: 0, Text: "%PDF-", Version: defaultVersion, Comment: binary},
		},
		{
			name: "unparsable version",
			data: "%PDF-1.x\n" + binaryComment,
			want: headerInfo{Offset: 0, Text: "%PDF-1.x", Version: defaultVersion, Comment: binary},
		},
		{
			name: "no header before first object",
			data: "1 0 obj\n<< >>\nendobj\n",
			want: headerInfo{Offset: -1, Version: defaultVersion, Comment: absent},
		},
		{
			name: "empty file",
			data: "",
			want: headerInfo{Offset: -1, Version: defaultVersion, Comment: absent},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := scanner.NewBytes([]byte(tt.data), scanner.Config{})
			doc := compliance.NewDocumentRecord()
			got := validateHeader(s, pdfa.StrictPolicy{}, &doc, observability.NopLogger{})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("header (-want +got):\n%s", diff)
			}
			if doc.HeaderOffset != tt.want.Offset || doc.HeaderText != tt.want.Text || doc.HeaderCommentBytes != tt.want.Comment {
				t.Fatalf("policy not told about the header: %+v", doc)
			}
			if s.Position() != 0 {
				t.Fatalf("scanner left at %d", s.Position())
			}
		})
	}
}

func TestReadHeaderPushesBackGarbage(t *testing.T) {
	tests := []struct {
		name string
		data string
		rest string
	}{
		{"LF", "%PDF-1.7 extra\n%\xE2\xE3\xCF\xD3\n", " extra"},
		{"CRLF", "%PDF-1.6xyz\r\n%\xE2\xE3\xCF\xD3\r\n", "xyz"},
		{"no EOL", "%PDF-1.5abc", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := scanner.NewBytes([]byte(tt.data), scanner.Config{})
			log := observability.NewMemoryLogger()
			info := readHeader(s, log)
			if info.Version != tt.data[5:8] {
				t.Fatalf("version = %q, want %q", info.Version, tt.data[5:8])
			}
			if s.Position() != 8 {
				t.Fatalf("expected the cursor after the version, got %d", s.Position())
			}
			line, err := s.ReadLine()
			if err != nil || line != tt.rest {
				t.Fatalf("next line = %q (%v), want %q", line, err, tt.rest)
			}
		})
	}
}

func TestValidateHeaderLogsMissingHeader(t *testing.T) {
	log := observability.NewMemoryLogger()
	s := scanner.NewBytes([]byte("1 0 obj\n"), scanner.Config{})
	doc := compliance.NewDocumentRecord()
	validateHeader(s, compliance.NopPolicy{}, &doc, log)
	if !log.Contains(observability.LevelWarn, "no PDF header found") {
		t.Fatalf("expected a warning, got %+v", log.Entries())
	}
	if doc.HeaderOffset != 0 {
		t.Fatalf("the no-op policy must not record anything, got offset %d", doc.HeaderOffset)
	}
}
