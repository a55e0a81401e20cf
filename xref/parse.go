package xref

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wudi/pdfaparser/compliance"
	"github.com/wudi/pdfaparser/ir/raw"
	"github.com/wudi/pdfaparser/observability"
	"github.com/wudi/pdfaparser/scanner"
)

var (
	// ErrNotTable is returned when the data at the section offset does not
	// start with the xref keyword, as is the case for cross-reference streams.
	ErrNotTable = errors.New("xref: not a cross-reference table")
	// ErrEmptyTable is returned together with a usable Section when the
	// table has no subsections.
	ErrEmptyTable = errors.New("xref: empty cross-reference table")
	// ErrMissingTrailer is returned when no trailer dictionary follows the
	// table.
	ErrMissingTrailer = errors.New("xref: missing trailer dictionary")
)

// CorruptEntryError reports an entry whose type is neither n nor f or whose
// fields are not numeric.
type CorruptEntryError struct {
	Pos    int64
	ObjNum int64
	Line   string
	Err    error
}

func (e *CorruptEntryError) Error() string {
	msg := fmt.Sprintf("xref: corrupt entry for object %d at offset %d: %q", e.ObjNum, e.Pos, e.Line)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CorruptEntryError) Unwrap() error { return e.Err }

// ValueParser reads one PDF value at the scanner position.
type ValueParser func(s *scanner.Scanner) (raw.Object, error)

// Section is one parsed cross-reference table and its trailer.
type Section struct {
	Offset  int64 // position of the xref keyword
	Entries *Table
	Trailer *raw.DictObj
}

// Prev returns the /Prev offset of the section trailer.
func (sec *Section) Prev() (int64, bool) {
	if sec.Trailer == nil {
		return 0, false
	}
	return sec.Trailer.GetInt("Prev")
}

// Parser reads classic cross-reference tables.
type Parser struct {
	Values   ValueParser
	Policy   compliance.Policy
	Document *compliance.DocumentRecord
	Logger   observability.Logger
}

func (p *Parser) policy() compliance.Policy {
	if p.Policy == nil {
		return compliance.NopPolicy{}
	}
	return p.Policy
}

func (p *Parser) logger() observability.Logger {
	if p.Logger == nil {
		return observability.NopLogger{}
	}
	return p.Logger
}

func (p *Parser) document() *compliance.DocumentRecord {
	if p.Document == nil {
		d := compliance.NewDocumentRecord()
		p.Document = &d
	}
	return p.Document
}

// lineClass is the classification of the next line inside a subsection.
type lineClass int

const (
	lineEntry lineClass = iota
	lineTrailer
	lineMalformed
	lineEndOfSubsection
)

// ParseTable parses the table whose xref keyword starts at the scanner
// position (after optional whitespace). start identifies the section and is
// normally the offset named by startxref or /Prev.
func (p *Parser) ParseTable(s *scanner.Scanner, start int64) (*Section, error) {
	s.SkipSpaces()
	if c, err := s.Peek(); err != nil || c != 'x' {
		return nil, ErrNotTable
	}
	kw, err := s.ReadToken()
	if err != nil || strings.TrimSpace(kw) != "xref" {
		return nil, ErrNotTable
	}
	sec := &Section{Offset: start, Entries: NewTable()}
	p.checkKeywordEOL(s)

	next, err := s.ReadToken()
	if err == nil {
		if rerr := s.Rewind(len(next)); rerr != nil {
			return nil, rerr
		}
	}
	if strings.HasPrefix(next, "trailer") {
		p.logger().Warn("skipping empty xref table", observability.Offset(start))
		if err := p.parseTrailer(s, sec); err != nil {
			return nil, err
		}
		return sec, ErrEmptyTable
	}

	for {
		if err := p.parseSubsection(s, sec); err != nil {
			return nil, err
		}
		s.SkipSpaces()
		if c, err := s.Peek(); err != nil || !scanner.IsDigit(c) {
			break
		}
	}
	if err := p.parseTrailer(s, sec); err != nil {
		return nil, err
	}
	return sec, nil
}

// checkKeywordEOL validates the separator between xref and the first
// subsection header: CRLF, LF or CR, then a digit.
func (p *Parser) checkKeywordEOL(s *scanner.Scanner) {
	ok := true
	c, err := s.Read()
	switch {
	case err != nil:
		ok = false
	case c == '\r':
		if next, err := s.Peek(); err == nil && next == '\n' {
			s.Read()
		}
		ok = nextIsDigit(s)
	case c != '\n':
		ok = false
	default:
		ok = nextIsDigit(s)
	}
	p.policy().OnXRef(p.document(), compliance.XRefKeywordEOL, ok)
}

func nextIsDigit(s *scanner.Scanner) bool {
	c, err := s.Peek()
	return err == nil && scanner.IsDigit(c)
}

func (p *Parser) parseSubsection(s *scanner.Scanner, sec *Section) error {
	s.SkipSpaces()
	headerPos := s.Position()
	first, err := s.ReadInt()
	if err != nil || first < 0 {
		return &CorruptEntryError{Pos: headerPos, ObjNum: first, Line: "subsection header", Err: err}
	}
	sep, err := s.Read()
	p.policy().OnXRef(p.document(), compliance.SubsectionSpacing, err == nil && sep == ' ' && nextIsDigit(s))

	s.SkipSpaces()
	count, err := s.ReadInt()
	if err != nil || count < 0 {
		return &CorruptEntryError{Pos: headerPos, ObjNum: first, Line: "subsection header", Err: err}
	}
	s.SkipSpaces()

	objNum := first
	for i := int64(0); i < count; i++ {
		linePos := s.Position()
		class, fields, line := classifyLine(s)
		switch class {
		case lineTrailer, lineEndOfSubsection:
			return nil
		case lineMalformed:
			p.logger().Warn("invalid xref line",
				observability.String("line", line),
				observability.Offset(linePos))
			return nil
		}
		switch {
		case fields[len(fields)-1] == "n":
			off, err := strconv.ParseInt(fields[0], 10, 64)
			if err != nil {
				return &CorruptEntryError{Pos: linePos, ObjNum: objNum, Line: line, Err: err}
			}
			gen, err := strconv.Atoi(fields[1])
			if err != nil {
				return &CorruptEntryError{Pos: linePos, ObjNum: objNum, Line: line, Err: err}
			}
			sec.Entries.SetIfAbsent(raw.ObjectRef{Num: int(objNum), Gen: gen}, off)
		case fields[2] != "f":
			return &CorruptEntryError{Pos: linePos, ObjNum: objNum, Line: line}
		}
		objNum++
		s.SkipSpaces()
	}
	return nil
}

// classifyLine looks at the next line of a subsection. Entry lines are
// consumed and split on single whitespace characters.
func classifyLine(s *scanner.Scanner) (lineClass, []string, string) {
	c, err := s.Peek()
	if err != nil || scanner.IsWhitespace(c) || scanner.IsDelimiter(c) {
		return lineEndOfSubsection, nil, ""
	}
	if c == 't' {
		return lineTrailer, nil, ""
	}
	line, err := s.ReadLine()
	if err != nil {
		return lineEndOfSubsection, nil, ""
	}
	fields := splitEntry(line)
	if len(fields) < 3 {
		return lineMalformed, fields, line
	}
	return lineEntry, fields, line
}

// splitEntry splits on every whitespace character and drops trailing empty
// fields, so "0000000009 00000 n " yields three fields.
func splitEntry(line string) []string {
	var fields []string
	start := 0
	for i := 0; i < len(line); i++ {
		if scanner.IsWhitespace(line[i]) {
			fields = append(fields, line[start:i])
			start = i + 1
		}
	}
	fields = append(fields, line[start:])
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}

func (p *Parser) parseTrailer(s *scanner.Scanner, sec *Section) error {
	s.SkipSpaces()
	if !s.HasPrefix("trailer") {
		return fmt.Errorf("%w at offset %d", ErrMissingTrailer, s.Position())
	}
	if err := s.ReadExpectedLiteral("trailer", false); err != nil {
		return err
	}
	s.SkipSpaces()
	if p.Values == nil {
		return fmt.Errorf("%w: no value parser configured", ErrMissingTrailer)
	}
	obj, err := p.Values(s)
	if err != nil {
		return fmt.Errorf("xref: trailer at offset %d: %w", s.Position(), err)
	}
	dict, ok := obj.(*raw.DictObj)
	if !ok {
		return fmt.Errorf("%w: found %s", ErrMissingTrailer, obj.Type())
	}
	sec.Trailer = dict
	return nil
}
