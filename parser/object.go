package parser

import (
	"bytes"
	"context"
	"strings"

	"github.com/wudi/pdfaparser/compliance"
	"github.com/wudi/pdfaparser/ir/raw"
	"github.com/wudi/pdfaparser/observability"
	"github.com/wudi/pdfaparser/recovery"
	"github.com/wudi/pdfaparser/scanner"
	"github.com/wudi/pdfaparser/security"
)

// lengthResolver loads the object an indirect /Length points to.
type lengthResolver func(ctx context.Context, ref raw.ObjectRef, depth int) (raw.Object, error)

// objectParser reads indirect objects for one load and records their
// framing. It owns the scanner exclusively.
type objectParser struct {
	s        *scanner.Scanner
	policy   compliance.Policy
	recs     *compliance.Records
	recovery recovery.Strategy
	logger   observability.Logger
	limits   security.Limits
	length   lengthResolver
}

func (p *objectParser) values(ctx context.Context, owner raw.ObjectRef) *valueParser {
	return &valueParser{
		ctx:      ctx,
		s:        p.s,
		policy:   p.policy,
		recs:     p.recs,
		recovery: p.recovery,
		owner:    owner,
		maxDepth: p.limits.MaxIndirectDepth,
	}
}

// parseIndirect parses the object expected at off. An object whose header
// names a different object than ref is returned as null.
func (p *objectParser) parseIndirect(ctx context.Context, ref raw.ObjectRef, off int64, depth int) (raw.Object, error) {
	s := p.s
	rec := p.recs.Object(ref)
	if err := s.SeekTo(off); err != nil {
		return nil, &MalformedFileError{Pos: off, Err: err}
	}
	s.SkipSpaces()
	p.policy.OnObjectBoundary(rec, compliance.BeforeObjectHeader, p.precededByEOL())

	num, gen, err := p.readObjectHeader(rec)
	if err != nil {
		return nil, err
	}
	if num != int64(ref.Num) || gen != int64(ref.Gen) {
		p.logger.Warn("xref points to wrong object",
			observability.String("want", ref.String()),
			observability.Int64("object", num),
			observability.Int64("generation", gen),
			observability.Offset(off))
		return raw.NullObj{}, nil
	}
	c, err := s.Peek()
	p.policy.OnObjectBoundary(rec, compliance.AfterObjectHeader, err == nil && scanner.IsEOL(c))

	value, err := p.values(ctx, ref).parse()
	if err != nil {
		return nil, err
	}

	s.SkipSpaces()
	marker := p.byteBefore()
	kwPos := s.Position()
	keyword, _ := s.ReadToken()
	if keyword == "stream" {
		dict, ok := value.(*raw.DictObj)
		if !ok {
			return nil, &MalformedFileError{Pos: kwPos, Err: ErrStreamWithoutDict}
		}
		if err := s.SeekTo(kwPos); err != nil {
			return nil, err
		}
		stream, err := p.parseStream(ctx, ref, dict, depth)
		if err != nil {
			return nil, err
		}
		value = stream

		s.SkipSpaces()
		marker = p.byteBefore()
		keyword = readWord(s)
		if !strings.HasPrefix(keyword, "endobj") && strings.HasPrefix(keyword, "endstream") {
			p.logger.Warn("second endstream before endobj", observability.String("object", ref.String()))
			keyword = strings.TrimSpace(keyword[len("endstream"):])
			if keyword == "" {
				s.SkipSpaces()
				marker = p.byteBefore()
				keyword = readWord(s)
			}
		}
	}
	p.policy.OnObjectBoundary(rec, compliance.BeforeObjectFooter, scanner.IsEOL(marker))

	if !strings.HasPrefix(keyword, "endobj") {
		p.logger.Warn("object does not end with endobj",
			observability.String("object", ref.String()),
			observability.Offset(off),
			observability.String("found", keyword))
	}
	c, err = s.Read()
	if err != nil || !scanner.IsEOL(c) {
		p.policy.OnObjectBoundary(rec, compliance.AfterObjectFooter, false)
		if err == nil {
			s.Rewind(1)
		}
	}
	return value, nil
}

// readObjectHeader reads "num gen obj", reporting whether each separator is
// exactly one space.
func (p *objectParser) readObjectHeader(rec *compliance.ObjectRecord) (num, gen int64, err error) {
	s := p.s
	pos := s.Position()
	if num, err = s.ReadInt(); err != nil {
		return 0, 0, &MalformedFileError{Pos: pos, Err: err}
	}
	p.policy.OnObjectBoundary(rec, compliance.ObjectHeaderFormat, singleSpace(s))
	s.SkipSpaces()
	if gen, err = s.ReadInt(); err != nil {
		return 0, 0, &MalformedFileError{Pos: s.Position(), Err: err}
	}
	p.policy.OnObjectBoundary(rec, compliance.ObjectHeaderFormat, singleSpace(s))
	s.SkipSpaces()
	if err := s.ReadExpectedLiteral("obj", false); err != nil {
		return 0, 0, &MalformedFileError{Pos: s.Position(), Err: err}
	}
	return num, gen, nil
}

func singleSpace(s *scanner.Scanner) bool {
	c, err := s.Read()
	if err != nil {
		return false
	}
	if c != ' ' {
		s.Rewind(1)
		return false
	}
	return s.SkipSpaces() == 0
}

func (p *objectParser) precededByEOL() bool {
	c, err := p.s.PeekAt(-1)
	return err == nil && scanner.IsEOL(c)
}

// byteBefore returns the byte preceding the cursor, 0 at the start.
func (p *objectParser) byteBefore() byte {
	c, err := p.s.PeekAt(-1)
	if err != nil {
		return 0
	}
	return c
}

// readWord reads up to the next space or EOL byte without skipping anything.
func readWord(s *scanner.Scanner) string {
	w, _ := s.ReadUntilSpaceOrEOL()
	return w
}

// parseStream reads the stream that starts with the keyword at the cursor.
// The stream data is taken from /Length when that length leads to the
// endstream keyword, and from a scan for endstream otherwise. The
// dictionary's /Length is left as found unless it cannot be resolved, in
// which case it is removed.
func (p *objectParser) parseStream(ctx context.Context, ref raw.ObjectRef, dict *raw.DictObj, depth int) (*raw.StreamObj, error) {
	s := p.s
	st := p.recs.Stream(ref)
	if err := s.ReadExpectedLiteral("stream", false); err != nil {
		return nil, &MalformedFileError{Pos: s.Position(), Err: err}
	}
	ok, sawEOL := p.checkStreamSpacing()
	p.policy.OnStreamBoundary(st, compliance.AfterStreamKeyword, ok)
	origin := s.Position()
	if !sawEOL {
		skipStreamEOL(s)
	}
	dataStart := s.Position()

	lengthObj, found := dict.Get(raw.NameLiteral("Length"))
	if !found {
		return nil, &MissingLengthError{Ref: ref, Pos: origin}
	}
	declared, resolved := p.resolveLength(ctx, lengthObj, depth)
	st.DeclaredLength = declared

	var data []byte
	var err error
	if resolved && p.lengthLeadsToEndstream(dataStart, declared) {
		data, err = s.Bytes(dataStart, dataStart+declared)
		if err == nil {
			err = s.SeekTo(dataStart + declared)
		}
	} else {
		if !resolved {
			dict.Delete(raw.NameLiteral("Length"))
		}
		p.logger.Warn("stream length is invalid, scanning for endstream",
			observability.String("object", ref.String()),
			observability.Int64("length", declared))
		data, err = p.scanToEndstream(dataStart)
	}
	if err != nil {
		return nil, err
	}

	p.checkEndStreamSpacing(st, origin, declared)

	pos := s.Position()
	if kw, _ := s.ReadToken(); kw != "endstream" {
		return nil, errorf(pos, "expected endstream, found %q", kw)
	}
	return raw.NewStream(dict, data), nil
}

// checkStreamSpacing reads the EOL after the stream keyword: CRLF or LF.
// A CR followed by anything else, or a missing EOL, is reported and the
// unexpected byte pushed back. sawEOL reports whether an EOL byte was
// consumed.
func (p *objectParser) checkStreamSpacing() (ok, sawEOL bool) {
	s := p.s
	c, err := s.Read()
	switch {
	case err != nil:
		return false, false
	case c == '\r':
		next, err := s.Read()
		if err != nil {
			return false, true
		}
		if next != '\n' {
			s.Rewind(1)
			return false, true
		}
		return true, true
	case c == '\n':
		return true, true
	default:
		p.logger.Warn("stream has no EOL marker", observability.Offset(s.Position()))
		s.Rewind(1)
		return false, false
	}
}

// skipStreamEOL skips spaces and a single EOL marker.
func skipStreamEOL(s *scanner.Scanner) {
	for {
		c, err := s.Peek()
		if err != nil || c != ' ' {
			break
		}
		s.Read()
	}
	c, err := s.Peek()
	if err != nil {
		return
	}
	switch c {
	case '\r':
		s.Read()
		if next, err := s.Peek(); err == nil && next == '\n' {
			s.Read()
		}
	case '\n':
		s.Read()
	}
}

// resolveLength returns the integer value of a /Length entry, following an
// indirect reference. The cursor is preserved.
func (p *objectParser) resolveLength(ctx context.Context, obj raw.Object, depth int) (int64, bool) {
	switch v := obj.(type) {
	case raw.NumberObj:
		return v.Int(), true
	case raw.RefObj:
		if p.length == nil {
			return -1, false
		}
		save := p.s.Position()
		target, err := p.length(ctx, v.R, depth+1)
		p.s.SeekTo(save)
		if err != nil {
			p.logger.Warn("cannot resolve stream length",
				observability.String("reference", v.R.String()),
				observability.Error("error", err))
			return -1, false
		}
		if n, ok := target.(raw.NumberObj); ok {
			return n.Int(), true
		}
	}
	return -1, false
}

// lengthLeadsToEndstream reports whether skipping length bytes from start
// and any whitespace lands on the endstream keyword.
func (p *objectParser) lengthLeadsToEndstream(start, length int64) bool {
	s := p.s
	if length < 0 || start+length > s.Len() {
		return false
	}
	save := s.Position()
	defer s.SeekTo(save)
	if err := s.SeekTo(start + length); err != nil {
		return false
	}
	s.SkipSpaces()
	return s.HasPrefix("endstream")
}

// scanToEndstream captures everything from start up to the endstream
// keyword, minus one trailing EOL marker, and leaves the cursor on the
// keyword.
func (p *objectParser) scanToEndstream(start int64) ([]byte, error) {
	s := p.s
	if err := s.SeekTo(start); err != nil {
		return nil, err
	}
	end := s.Index([]byte("endstream"), p.limits.MaxStreamScan)
	if end < 0 {
		return nil, errorf(start, "endstream not found")
	}
	data, err := s.Bytes(start, end)
	if err != nil {
		return nil, err
	}
	switch {
	case bytes.HasSuffix(data, []byte("\r\n")):
		data = data[:len(data)-2]
	case bytes.HasSuffix(data, []byte("\n")), bytes.HasSuffix(data, []byte("\r")):
		data = data[:len(data)-1]
	}
	return data, s.SeekTo(end)
}

// checkEndStreamSpacing measures the gap between the stream data and the
// endstream keyword. The number of EOL bytes attributed to the gap is one
// for LF or CR, and two for CRLF unless the declared length already covers
// the CR. The stream's resolved length is the distance from origin to the
// keyword minus those EOL bytes.
func (p *objectParser) checkEndStreamSpacing(st *compliance.StreamRecord, origin, declared int64) {
	s := p.s
	s.SkipSpaces()
	approx := s.Position() - origin
	diff := approx - declared

	first, _ := s.PeekAt(-2)
	second, _ := s.PeekAt(-1)
	var eol int64
	ok := true
	switch {
	case second == '\n' && first == '\r':
		eol = 2
		if diff == 1 {
			eol = 1
		}
	case second == '\n':
		eol = 1
	case second == '\r':
		eol = 1
		ok = false
	default:
		ok = false
		p.logger.Warn("endstream is not preceded by an EOL marker", observability.Offset(s.Position()))
	}
	st.ResolvedLength = approx - eol
	if st.ResolvedLength < 0 {
		st.ResolvedLength = 0
	}
	p.policy.OnStreamBoundary(st, compliance.BeforeEndstream, ok)
}

// checkObjectHeader reports whether "num gen obj" for ref starts at off,
// ignoring leading whitespace.
func checkObjectHeader(s *scanner.Scanner, ref raw.ObjectRef, off int64) bool {
	if err := s.SeekTo(off); err != nil {
		return false
	}
	s.SkipSpaces()
	num, err := s.ReadInt()
	if err != nil || num != int64(ref.Num) {
		return false
	}
	s.SkipSpaces()
	gen, err := s.ReadInt()
	if err != nil || gen != int64(ref.Gen) {
		return false
	}
	s.SkipSpaces()
	return s.ReadExpectedLiteral("obj", true) == nil
}
