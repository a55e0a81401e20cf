package parser

import (
	"github.com/wudi/pdfaparser/observability"
	"github.com/wudi/pdfaparser/scanner"
	"github.com/wudi/pdfaparser/xref"
)

// validateOffsets removes the table entries whose offset does not lead to
// the header of the object they name. Negative offsets are left alone. It
// returns the number of entries removed.
func validateOffsets(s *scanner.Scanner, table *xref.Table, log observability.Logger) int {
	removed := 0
	for _, ref := range table.Refs() {
		off, _ := table.Lookup(ref)
		if off < 0 {
			continue
		}
		if !checkObjectHeader(s, ref, off) {
			table.Delete(ref)
			removed++
			log.Warn("object has invalid offset",
				observability.String("object", ref.String()),
				observability.Offset(off))
		}
	}
	return removed
}
