package parser

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/wudi/pdfaparser/compliance"
	"github.com/wudi/pdfaparser/ir/raw"
	"github.com/wudi/pdfaparser/recovery"
	"github.com/wudi/pdfaparser/scanner"
	"github.com/wudi/pdfaparser/security"
	"github.com/wudi/pdfaparser/xref"
)

// valueParser reads direct values. Hex strings are lexed through the policy
// and recorded against owner.
type valueParser struct {
	ctx      context.Context
	s        *scanner.Scanner
	policy   compliance.Policy
	recs     *compliance.Records
	recovery recovery.Strategy
	owner    raw.ObjectRef
	maxDepth int
}

// Values returns an xref.ValueParser that records hex strings into recs
// under owner. A nil policy records nothing.
func Values(policy compliance.Policy, recs *compliance.Records, owner raw.ObjectRef) xref.ValueParser {
	return func(s *scanner.Scanner) (raw.Object, error) {
		vp := &valueParser{ctx: context.Background(), s: s, policy: policy, recs: recs, owner: owner}
		return vp.parse()
	}
}

func (v *valueParser) parse() (raw.Object, error) {
	if v.policy == nil {
		v.policy = compliance.NopPolicy{}
	}
	if v.maxDepth <= 0 {
		v.maxDepth = security.DefaultLimits().MaxIndirectDepth
	}
	return v.value(0)
}

func (v *valueParser) value(depth int) (raw.Object, error) {
	if depth > v.maxDepth {
		return nil, &MalformedFileError{Pos: v.s.Position(), Err: ErrTooDeep}
	}
	s := v.s
	s.SkipSpaces()
	c, err := s.Peek()
	if err != nil {
		return nil, &MalformedFileError{Pos: s.Position(), Err: err}
	}
	switch {
	case c == '<':
		if next, err := s.PeekAt(1); err == nil && next == '<' {
			return v.dict(depth)
		}
		return v.hexString()
	case c == '[':
		return v.array(depth)
	case c == '(':
		b, err := s.ReadLiteralString()
		if err != nil {
			return nil, &MalformedFileError{Pos: s.Position(), Err: err}
		}
		return raw.Str(b), nil
	case c == '/':
		name, err := s.ReadName()
		if err != nil {
			return nil, &MalformedFileError{Pos: s.Position(), Err: err}
		}
		return raw.NameLiteral(name), nil
	case scanner.IsDigit(c) || c == '+' || c == '-' || c == '.':
		return v.numberOrRef()
	}

	pos := s.Position()
	tok, err := s.ReadToken()
	if err != nil {
		return nil, &MalformedFileError{Pos: pos, Err: err}
	}
	switch tok {
	case "true":
		return raw.Bool(true), nil
	case "false":
		return raw.Bool(false), nil
	case "null":
		return raw.NullObj{}, nil
	case "":
		return nil, errorf(pos, "unexpected delimiter %q", c)
	}
	if err := s.SeekTo(pos); err != nil {
		return nil, err
	}
	return nil, errorf(pos, "unexpected token %q", tok)
}

func (v *valueParser) hexString() (raw.Object, error) {
	pos := v.s.Position()
	if _, err := v.s.Read(); err != nil {
		return nil, &MalformedFileError{Pos: pos, Err: err}
	}
	rec := compliance.NewHexStringRecord()
	data, err := ReadHexString(v.s, v.policy, rec)
	if err != nil {
		return nil, err
	}
	if v.recs != nil {
		v.recs.AddHexString(v.owner, pos, rec)
	}
	return raw.HexStr(data), nil
}

func (v *valueParser) array(depth int) (raw.Object, error) {
	s := v.s
	s.Read()
	arr := raw.NewArray()
	for {
		s.SkipSpaces()
		c, err := s.Peek()
		if err != nil {
			return nil, &MalformedFileError{Pos: s.Position(), Err: err}
		}
		if c == ']' {
			s.Read()
			return arr, nil
		}
		item, err := v.value(depth + 1)
		if err != nil {
			return nil, err
		}
		arr.Append(item)
	}
}

func (v *valueParser) dict(depth int) (raw.Object, error) {
	s := v.s
	start := s.Position()
	if err := s.ReadExpectedLiteral("<<", false); err != nil {
		return nil, &MalformedFileError{Pos: start, Err: err}
	}
	d := raw.Dict()
	for {
		s.SkipSpaces()
		if s.HasPrefix(">>") {
			s.ReadExpectedLiteral(">>", false)
			return d, nil
		}
		c, err := s.Peek()
		if err != nil {
			return nil, &MalformedFileError{Pos: s.Position(), Err: err}
		}
		if c != '/' {
			if s.HasPrefix("endobj") || s.HasPrefix("stream") {
				err := errorf(s.Position(), "unexpected %s in dictionary (missing >>?)", keywordAt(s))
				if v.recovery != nil && v.recovery.OnError(v.ctx, err, recovery.Location{
					ByteOffset: s.Position(),
					ObjectNum:  v.owner.Num,
					ObjectGen:  v.owner.Gen,
					Component:  "parser",
				}) != recovery.ActionFail {
					return d, nil
				}
				return nil, err
			}
			return nil, errorf(s.Position(), "expected name in dictionary, found %q", c)
		}
		key, err := s.ReadName()
		if err != nil {
			return nil, &MalformedFileError{Pos: s.Position(), Err: err}
		}
		val, err := v.value(depth + 1)
		if err != nil {
			return nil, err
		}
		d.Set(raw.NameLiteral(key), val)
	}
}

func keywordAt(s *scanner.Scanner) string {
	if s.HasPrefix("endobj") {
		return "endobj"
	}
	return "stream"
}

// numberOrRef reads a number and, when it is a non-negative integer
// followed by "<gen> R", the reference it starts.
func (v *valueParser) numberOrRef() (raw.Object, error) {
	s := v.s
	pos := s.Position()
	text, err := s.ReadNumber()
	if err != nil {
		return nil, &MalformedFileError{Pos: pos, Err: err}
	}
	if strings.ContainsRune(text, '.') {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, errorf(pos, "invalid number %q", text)
		}
		return raw.NumberFloat(f), nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		f, _ := strconv.ParseFloat(text, 64)
		return raw.NumberFloat(f), nil
	}
	if err != nil {
		return nil, errorf(pos, "invalid number %q: %v", text, err)
	}
	if text[0] == '+' || text[0] == '-' {
		return raw.NumberInt(n), nil
	}
	if ref, ok := v.tryRef(n); ok {
		return ref, nil
	}
	return raw.NumberInt(n), nil
}

func (v *valueParser) tryRef(num int64) (raw.Object, bool) {
	s := v.s
	save := s.Position()
	restore := func() (raw.Object, bool) {
		s.SeekTo(save)
		return nil, false
	}
	if s.SkipSpaces() == 0 {
		return restore()
	}
	if c, err := s.Peek(); err != nil || !scanner.IsDigit(c) {
		return restore()
	}
	gen, err := s.ReadInt()
	if err != nil || s.SkipSpaces() == 0 {
		return restore()
	}
	if err := s.ReadExpectedLiteral("R", true); err != nil {
		return restore()
	}
	return raw.Ref(int(num), int(gen)), true
}

