// Package scanner implements a random-access byte cursor over PDF sources.
//
// The Scanner exposes the low level primitives the structure parser is built
// from: single byte reads with bounded rewind, whitespace and comment skipping,
// line reads that treat CR, LF and CRLF alike, and literal expectations.
package scanner

import (
	"bytes"
	"io"
	"math"
	"strings"
)

// Config controls buffering and rewind limits. Zero values select defaults.
type Config struct {
	WindowSize int64 // bytes loaded per read from the source (default 64 KiB)
	Lookback   int64 // maximum distance Rewind may move backwards (default 64 KiB)
}

// Scanner is a cursor over a random-access source. It is not safe for
// concurrent use; a load owns its scanner exclusively.
type Scanner struct {
	src      *window
	pos      int64
	lookback int64
}

// New returns a scanner over size bytes of r.
func New(r io.ReaderAt, size int64, cfg Config) *Scanner {
	lb := cfg.Lookback
	if lb <= 0 {
		lb = defaultWindow
	}
	return &Scanner{src: newWindow(r, size, cfg.WindowSize), lookback: lb}
}

// NewBytes returns a scanner over an in-memory buffer.
func NewBytes(data []byte, cfg Config) *Scanner {
	return New(bytes.NewReader(data), int64(len(data)), cfg)
}

func (s *Scanner) Position() int64 { return s.pos }
func (s *Scanner) Len() int64      { return s.src.size }
func (s *Scanner) EOF() bool       { return s.pos >= s.src.size }

// Read returns the byte under the cursor and advances past it.
func (s *Scanner) Read() (byte, error) {
	c, err := s.src.at(s.pos)
	if err != nil {
		return 0, err
	}
	s.pos++
	return c, nil
}

// Peek returns the byte under the cursor without consuming it.
func (s *Scanner) Peek() (byte, error) { return s.src.at(s.pos) }

// PeekAt returns the byte n positions after the cursor.
func (s *Scanner) PeekAt(n int64) (byte, error) { return s.src.at(s.pos + n) }

// Rewind moves the cursor back n bytes. Moving before the start of the
// source or further back than the configured lookback fails with a
// *BoundsError and leaves the cursor unchanged.
func (s *Scanner) Rewind(n int) error {
	target := s.pos - int64(n)
	limit := s.pos - s.lookback
	if limit < 0 {
		limit = 0
	}
	if n < 0 || target < limit {
		return &BoundsError{Pos: s.pos, Target: target, Limit: limit}
	}
	s.pos = target
	return nil
}

// SeekTo moves the cursor to an absolute offset within [0, Len()].
func (s *Scanner) SeekTo(pos int64) error {
	if pos < 0 || pos > s.src.size {
		return &BoundsError{Pos: s.pos, Target: pos, Limit: 0}
	}
	s.pos = pos
	return nil
}

// SkipSpaces skips whitespace and comments and returns the number of bytes
// skipped.
func (s *Scanner) SkipSpaces() int {
	start := s.pos
	for {
		c, err := s.Peek()
		if err != nil {
			break
		}
		if c == '%' {
			for {
				c, err = s.Read()
				if err != nil || IsEOL(c) {
					break
				}
			}
			continue
		}
		if !IsWhitespace(c) {
			break
		}
		s.pos++
	}
	return int(s.pos - start)
}

// SkipWhitespace skips space, tab, CR, LF, NUL and FF bytes.
func (s *Scanner) SkipWhitespace() {
	for {
		c, err := s.Peek()
		if err != nil || !IsWhitespace(c) {
			return
		}
		s.pos++
	}
}

// ReadLine returns the bytes up to the next end-of-line marker and consumes
// the marker. CR, LF and CRLF each terminate a single line.
func (s *Scanner) ReadLine() (string, error) {
	if s.EOF() {
		return "", ErrEndOfSource
	}
	var sb strings.Builder
	for {
		c, err := s.Read()
		if err != nil {
			break
		}
		if c == '\n' {
			break
		}
		if c == '\r' {
			if next, err := s.Peek(); err == nil && next == '\n' {
				s.pos++
			}
			break
		}
		sb.WriteByte(c)
	}
	return sb.String(), nil
}

// ReadExpectedLiteral consumes lit. With strict set, the literal must also be
// followed by whitespace, a delimiter or the end of the source. On failure
// the cursor is left where the mismatch was detected.
func (s *Scanner) ReadExpectedLiteral(lit string, strict bool) error {
	start := s.pos
	for i := 0; i < len(lit); i++ {
		c, err := s.Read()
		if err != nil {
			return err
		}
		if c != lit[i] {
			s.pos--
			return &SyntaxError{Pos: start, Want: lit, Got: lit[:i] + string(c)}
		}
	}
	if strict {
		if c, err := s.Peek(); err == nil && !IsWhitespace(c) && !IsDelimiter(c) {
			return &SyntaxError{Pos: start, Want: lit, Got: lit + string(c)}
		}
	}
	return nil
}

// ReadInt reads an optionally signed decimal integer at the cursor. Leading
// whitespace is not skipped.
func (s *Scanner) ReadInt() (int64, error) {
	start := s.pos
	neg := false
	if c, err := s.Peek(); err != nil {
		return 0, err
	} else if c == '+' || c == '-' {
		neg = c == '-'
		s.pos++
	}
	var v int64
	digits := 0
	for {
		c, err := s.Peek()
		if err != nil || !IsDigit(c) {
			break
		}
		if v > (math.MaxInt64-int64(c-'0'))/10 {
			got, _ := s.src.slice(start, s.pos+1)
			s.pos = start
			return 0, &SyntaxError{Pos: start, Want: "integer in int64 range", Got: string(got)}
		}
		v = v*10 + int64(c-'0')
		digits++
		s.pos++
	}
	if digits == 0 {
		got, _ := s.src.slice(start, s.pos+1)
		s.pos = start
		return 0, &SyntaxError{Pos: start, Want: "integer", Got: string(got)}
	}
	if neg {
		v = -v
	}
	return v, nil
}

// ReadToken skips spaces and reads bytes up to the next whitespace or
// delimiter.
func (s *Scanner) ReadToken() (string, error) {
	s.SkipSpaces()
	if s.EOF() {
		return "", ErrEndOfSource
	}
	start := s.pos
	for {
		c, err := s.Peek()
		if err != nil || IsWhitespace(c) || IsDelimiter(c) {
			break
		}
		s.pos++
	}
	tok, err := s.src.slice(start, s.pos)
	return string(tok), err
}

// ReadUntilSpaceOrEOL reads bytes up to, but not including, the next space
// or end-of-line byte.
func (s *Scanner) ReadUntilSpaceOrEOL() (string, error) {
	if s.EOF() {
		return "", ErrEndOfSource
	}
	start := s.pos
	for {
		c, err := s.Peek()
		if err != nil || IsEOL(c) || c == ' ' {
			break
		}
		s.pos++
	}
	tok, err := s.src.slice(start, s.pos)
	return string(tok), err
}

// HasPrefix reports whether the bytes at the cursor start with lit.
func (s *Scanner) HasPrefix(lit string) bool {
	b, err := s.src.slice(s.pos, s.pos+int64(len(lit)))
	return err == nil && string(b) == lit
}

// Index returns the absolute offset of the first occurrence of pattern at or
// after the cursor, looking at most limit bytes ahead (limit <= 0 means no
// limit). It returns -1 when the pattern is not found.
func (s *Scanner) Index(pattern []byte, limit int64) int64 {
	end := s.src.size
	if limit > 0 && s.pos+limit+int64(len(pattern)) < end {
		end = s.pos + limit + int64(len(pattern))
	}
	from := s.pos
	for from < end {
		to := from + s.src.chunkSize + int64(len(pattern))
		if to > end {
			to = end
		}
		chunk, err := s.src.slice(from, to)
		if err != nil || len(chunk) == 0 {
			return -1
		}
		if i := bytes.Index(chunk, pattern); i >= 0 {
			return from + int64(i)
		}
		if to == end {
			break
		}
		from = to - int64(len(pattern)) + 1
	}
	return -1
}

// Bytes returns a copy of the source bytes in [from, to).
func (s *Scanner) Bytes(from, to int64) ([]byte, error) {
	b, err := s.src.slice(from, to)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// IsEOL reports whether c is CR or LF.
func IsEOL(c byte) bool { return c == '\r' || c == '\n' }

// IsWhitespace reports whether c is PDF whitespace.
func IsWhitespace(c byte) bool {
	return c == 0x00 || c == 0x09 || c == 0x0A || c == 0x0C || c == 0x0D || c == 0x20
}

// IsDelimiter reports whether c is a PDF delimiter character.
func IsDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func IsDigit(c byte) bool { return c >= '0' && c <= '9' }

func IsHexDigit(c byte) bool {
	return IsDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
