package scanner

import (
	"bytes"
	"fmt"
)

// ReadName reads a name token starting with '/' and returns it without the
// slash, with #xx escapes decoded.
func (s *Scanner) ReadName() (string, error) {
	if err := s.ReadExpectedLiteral("/", false); err != nil {
		return "", err
	}
	var out bytes.Buffer
	for {
		c, err := s.Peek()
		if err != nil || IsWhitespace(c) || IsDelimiter(c) {
			break
		}
		s.pos++
		if c == '#' {
			start := s.pos
			hi, okHi := s.hexNibble()
			lo, okLo := s.hexNibble()
			if okHi && okLo {
				out.WriteByte(hi<<4 | lo)
				continue
			}
			// An incomplete escape is kept as written.
			s.pos = start
		}
		out.WriteByte(c)
	}
	return out.String(), nil
}

func (s *Scanner) hexNibble() (byte, bool) {
	c, err := s.Peek()
	if err != nil || !IsHexDigit(c) {
		return 0, false
	}
	s.pos++
	return FromHex(c), true
}

// FromHex returns the value of a hex digit; non-digits decode as 0.
func FromHex(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

// ReadLiteralString reads a parenthesised string (PDF 7.3.4.2) and returns
// its unescaped bytes.
func (s *Scanner) ReadLiteralString() ([]byte, error) {
	start := s.pos
	if err := s.ReadExpectedLiteral("(", false); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	depth := 1
	for {
		c, err := s.Read()
		if err != nil {
			return nil, fmt.Errorf("unterminated literal string at offset %d: %w", start, err)
		}
		switch c {
		case '\\':
			esc, err := s.Read()
			if err != nil {
				return nil, fmt.Errorf("unterminated literal string at offset %d: %w", start, err)
			}
			switch {
			case esc == '\r':
				if next, err := s.Peek(); err == nil && next == '\n' {
					s.pos++
				}
			case esc == '\n':
			case esc >= '0' && esc <= '7':
				val := int(esc - '0')
				for k := 0; k < 2; k++ {
					d, err := s.Peek()
					if err != nil || d < '0' || d > '7' {
						break
					}
					val = val<<3 + int(d-'0')
					s.pos++
				}
				buf.WriteByte(byte(val))
			default:
				buf.WriteByte(translateEscape(esc))
			}
		case '(':
			depth++
			buf.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				return buf.Bytes(), nil
			}
			buf.WriteByte(c)
		default:
			buf.WriteByte(c)
		}
	}
}

func translateEscape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	}
	return c
}

// ReadNumber reads the text of a numeric token: an optional sign, digits and
// at most one decimal point.
func (s *Scanner) ReadNumber() (string, error) {
	start := s.pos
	seenDot := false
	digits := 0
	for {
		c, err := s.Peek()
		if err != nil {
			break
		}
		if (c == '+' || c == '-') && s.pos == start {
			s.pos++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			s.pos++
			continue
		}
		if !IsDigit(c) {
			break
		}
		digits++
		s.pos++
	}
	if digits == 0 {
		s.pos = start
		return "", &SyntaxError{Pos: start, Want: "number"}
	}
	b, err := s.src.slice(start, s.pos)
	return string(b), err
}
