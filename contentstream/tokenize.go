package contentstream

import (
	"errors"
	"fmt"

	"github.com/wudi/pdfaparser/compliance"
	"github.com/wudi/pdfaparser/ir/raw"
	"github.com/wudi/pdfaparser/parser"
	"github.com/wudi/pdfaparser/scanner"
)

// ErrUnterminatedInlineImage is returned when no EI operator follows the
// data of an inline image.
var ErrUnterminatedInlineImage = errors.New("unterminated inline image")

// Scan lexes decoded content stream data and records every hex string it
// contains against owner. Operators are not interpreted: dictionary
// brackets, names, literal strings and comments are stepped over, and the
// data between ID and EI of an inline image is skipped. It returns the
// number of hex strings recorded.
func Scan(data []byte, policy compliance.Policy, recs *compliance.Records, owner raw.ObjectRef) (int, error) {
	s := scanner.NewBytes(data, scanner.Config{})
	found := 0
	inImage := false
	for {
		s.SkipSpaces()
		c, err := s.Peek()
		if err != nil {
			return found, nil
		}
		pos := s.Position()
		switch c {
		case '<':
			if next, err := s.PeekAt(1); err == nil && next == '<' {
				s.SeekTo(pos + 2)
				continue
			}
			s.Read()
			rec := compliance.NewHexStringRecord()
			if _, err := parser.ReadHexString(s, policy, rec); err != nil {
				return found, err
			}
			recs.AddHexString(owner, pos, rec)
			found++
		case '(':
			if _, err := s.ReadLiteralString(); err != nil {
				return found, fmt.Errorf("literal string at offset %d: %w", pos, err)
			}
		case '/':
			if _, err := s.ReadName(); err != nil {
				return found, fmt.Errorf("name at offset %d: %w", pos, err)
			}
		default:
			tok, _ := s.ReadToken()
			switch {
			case tok == "":
				s.Read()
			case tok == "BI":
				inImage = true
			case tok == "ID" && inImage:
				if err := skipInlineImage(s); err != nil {
					return found, err
				}
				inImage = false
			}
		}
	}
}

// skipInlineImage moves past the image data following ID and the EI
// operator ending it. EI only counts when preceded by whitespace and
// followed by whitespace, a delimiter or the end of the data.
func skipInlineImage(s *scanner.Scanner) error {
	start := s.Position()
	if c, err := s.Peek(); err == nil && scanner.IsWhitespace(c) {
		s.Read()
	}
	dataStart := s.Position()
	for {
		i := s.Index([]byte("EI"), 0)
		if i < 0 {
			return fmt.Errorf("offset %d: %w", start, ErrUnterminatedInlineImage)
		}
		if err := s.SeekTo(i); err != nil {
			return err
		}
		before, _ := s.PeekAt(-1)
		after, err := s.PeekAt(2)
		if i >= dataStart && scanner.IsWhitespace(before) &&
			(err != nil || scanner.IsWhitespace(after) || scanner.IsDelimiter(after)) {
			return s.SeekTo(i + 2)
		}
		if err := s.SeekTo(i + 1); err != nil {
			return err
		}
	}
}
