package parser

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/wudi/pdfaparser/compliance/pdfa"
)

func BenchmarkParseManyObjects(b *testing.B) {
	objects := []string{"<< /Type /Catalog >>"}
	for i := 0; i < 2000; i++ {
		objects = append(objects, fmt.Sprintf("<< /Length 16 /Index %d >>\nstream\n0123456789ABCDEF\nendstream", i))
	}
	data := testPDF{Objects: objects, Trailer: "/Root 1 0 R " + fileID}.bytes()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := NewDocumentParser(Config{Policy: pdfa.StrictPolicy{}, Eager: true})
		if _, err := p.Parse(context.Background(), bytes.NewReader(data), int64(len(data))); err != nil {
			b.Fatalf("parse failed: %v", err)
		}
	}
}
