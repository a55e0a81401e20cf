package parser

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/wudi/pdfaparser/compliance"
	"github.com/wudi/pdfaparser/observability"
	"github.com/wudi/pdfaparser/scanner"
	"github.com/wudi/pdfaparser/xref"
)

// loadXRef reads the cross-reference chain starting at startxref. When the
// chain cannot be read the file is scanned for object headers instead.
func (p *DocumentParser) loadXRef(ctx context.Context, s *scanner.Scanner, r io.ReaderAt, size int64, recs *compliance.Records) (*xref.TrailerResolver, error) {
	log := p.cfg.Logger
	tail, err := xref.LocateTail(r, size)
	if tail.EOFOffset >= 0 {
		p.cfg.Policy.OnEOF(&recs.Document, tail.PostEOFDataSize)
	} else {
		log.Warn("missing %%EOF marker")
	}

	var resolver *xref.TrailerResolver
	if err == nil {
		resolver, err = p.readChain(ctx, s, tail.StartXRef, size, recs)
	}
	if err == nil {
		return resolver, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	log.Warn("cross-reference table unusable, scanning file for objects", observability.Error("error", err))
	sec, repairErr := xref.Repair(ctx, s, Values(p.cfg.Policy, compliance.NewRecords(), compliance.TrailerOwner))
	if repairErr != nil {
		return nil, &MalformedFileError{Pos: tail.StartXRef, Err: errors.Join(err, repairErr)}
	}
	resolver = xref.NewTrailerResolver()
	resolver.Add(sec)
	return resolver, nil
}

// readChain parses the section at start and every section reachable
// through /Prev.
func (p *DocumentParser) readChain(ctx context.Context, s *scanner.Scanner, start, size int64, recs *compliance.Records) (*xref.TrailerResolver, error) {
	log := p.cfg.Logger
	xp := &xref.Parser{
		Values:   Values(p.cfg.Policy, recs, compliance.TrailerOwner),
		Policy:   p.cfg.Policy,
		Document: &recs.Document,
		Logger:   log,
	}
	resolver := xref.NewTrailerResolver()
	off := start
	for depth := 0; ; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if depth >= p.cfg.Limits.MaxXRefDepth {
			return nil, &MalformedFileError{Pos: off, Err: fmt.Errorf("cross-reference chain longer than %d sections", p.cfg.Limits.MaxXRefDepth)}
		}
		if err := s.SeekTo(off); err != nil {
			return nil, &MalformedFileError{Pos: off, Err: err}
		}
		sec, err := xp.ParseTable(s, off)
		switch {
		case errors.Is(err, xref.ErrNotTable):
			return nil, &MalformedFileError{Pos: off, Err: fmt.Errorf("cross-reference streams are not supported: %w", err)}
		case err != nil && !errors.Is(err, xref.ErrEmptyTable):
			return nil, &MalformedFileError{Pos: off, Err: err}
		}
		resolver.Add(sec)

		prev, ok := sec.Prev()
		if !ok {
			return resolver, nil
		}
		if resolver.Seen(prev) {
			log.Warn("cross-reference /Prev loop", observability.Offset(prev))
			return resolver, nil
		}
		if prev < 0 || prev >= size {
			log.Warn("cross-reference /Prev outside the file", observability.Offset(prev))
			return resolver, nil
		}
		off = prev
	}
}
