package parser

import (
	"context"

	"github.com/wudi/pdfaparser/compliance"
	"github.com/wudi/pdfaparser/ir/raw"
	"github.com/wudi/pdfaparser/observability"
	"github.com/wudi/pdfaparser/scanner"
)

const linearizationWindow = 1024

// detectLinearization looks for the first object within the leading
// window and reports whether it is a linearization dictionary whose /L
// matches size and which ends inside the window. The object is parsed into
// a scratch record table so the load's records are not touched.
func detectLinearization(ctx context.Context, p *objectParser, size int64) bool {
	scratch := *p
	scratch.recs = compliance.NewRecords()
	scratch.logger = observability.NopLogger{}
	scratch.length = nil
	s := scratch.s

	ref, off, found := firstObjectHeader(s, size)
	if !found {
		p.logger.Debug("linearization dictionary not found")
		return false
	}
	obj, err := scratch.parseIndirect(ctx, ref, off, 0)
	if err != nil {
		p.logger.Debug("cannot parse first object", observability.Error("error", err))
		return false
	}
	dict, ok := obj.(*raw.DictObj)
	if !ok {
		return false
	}
	if _, ok := dict.Get(raw.NameLiteral("Linearized")); !ok {
		return false
	}
	l, ok := dict.GetInt("L")
	if !ok {
		return false
	}
	return l == size && s.Position() < linearizationWindow
}

// firstObjectHeader tries every offset of the leading window, after the
// initial whitespace and comments, for an "num gen obj" header.
func firstObjectHeader(s *scanner.Scanner, size int64) (raw.ObjectRef, int64, bool) {
	bound := size
	if bound > linearizationWindow {
		bound = linearizationWindow
	}
	if err := s.SeekTo(0); err != nil {
		return raw.ObjectRef{}, 0, false
	}
	s.SkipSpaces()
	for off := s.Position(); off < bound; off++ {
		if ref, ok := objectHeaderAt(s, off); ok {
			return ref, off, true
		}
	}
	return raw.ObjectRef{}, 0, false
}

func objectHeaderAt(s *scanner.Scanner, off int64) (raw.ObjectRef, bool) {
	if err := s.SeekTo(off); err != nil {
		return raw.ObjectRef{}, false
	}
	s.SkipSpaces()
	num, err := s.ReadInt()
	if err != nil || num < 0 {
		return raw.ObjectRef{}, false
	}
	s.SkipSpaces()
	gen, err := s.ReadInt()
	if err != nil || gen < 0 {
		return raw.ObjectRef{}, false
	}
	s.SkipSpaces()
	if s.ReadExpectedLiteral("obj", true) != nil {
		return raw.ObjectRef{}, false
	}
	return raw.ObjectRef{Num: int(num), Gen: int(gen)}, true
}
