package parser

import (
	"github.com/wudi/pdfaparser/compliance"
	"github.com/wudi/pdfaparser/scanner"
)

// ReadHexString reads the body of a hex string whose opening '<' has already
// been consumed, up to and including the closing '>'. Every byte is reported
// to policy: digits are kept, whitespace is skipped, anything else occupies a
// position but is discarded. An odd number of digits is completed with a
// trailing 0 nibble.
func ReadHexString(s *scanner.Scanner, policy compliance.Policy, rec *compliance.HexStringRecord) ([]byte, error) {
	if policy == nil {
		policy = compliance.NopPolicy{}
	}
	var digits []byte
	for {
		c, err := s.Read()
		if err != nil {
			return nil, &MalformedFileError{Pos: s.Position(), Err: ErrUnterminatedHexString}
		}
		switch {
		case scanner.IsHexDigit(c):
			digits = append(digits, c)
			policy.OnHexChar(rec, c, compliance.HexDigit)
		case c == '>':
			return decodeHexDigits(digits), nil
		case scanner.IsWhitespace(c):
			policy.OnHexChar(rec, c, compliance.HexWhitespace)
		default:
			policy.OnHexChar(rec, c, compliance.HexInvalid)
		}
	}
}

func decodeHexDigits(digits []byte) []byte {
	out := make([]byte, 0, (len(digits)+1)/2)
	for i := 0; i < len(digits); i += 2 {
		hi := scanner.FromHex(digits[i])
		var lo byte
		if i+1 < len(digits) {
			lo = scanner.FromHex(digits[i+1])
		}
		out = append(out, hi<<4|lo)
	}
	return out
}
