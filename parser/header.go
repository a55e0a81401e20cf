package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/wudi/pdfaparser/compliance"
	"github.com/wudi/pdfaparser/observability"
	"github.com/wudi/pdfaparser/scanner"
)

const (
	headerMarker   = "%PDF-"
	defaultVersion = "1.4"
)

var versionPattern = regexp.MustCompile(`^%PDF-\d\.\d$`)

// headerInfo is what the header validator learned about the first lines.
type headerInfo struct {
	Offset  int64 // position of the marker, -1 when no header was found
	Text    string
	Version string
	Comment [4]int
}

// validateHeader checks the header line and the binary comment following it
// and reports them to policy. The scanner is left at offset 0.
func validateHeader(s *scanner.Scanner, policy compliance.Policy, doc *compliance.DocumentRecord, log observability.Logger) headerInfo {
	info := readHeader(s, log)
	info.Comment = readHeaderComment(s)
	policy.OnHeader(doc, compliance.Header{Offset: info.Offset, Text: info.Text, Comment: info.Comment})
	s.SeekTo(0)
	return info
}

// readHeader finds the header line and leaves the scanner after it. Garbage
// following "%PDF-n.n" on the same line is pushed back together with the
// line terminator, so the next read starts at the garbage.
func readHeader(s *scanner.Scanner, log observability.Logger) headerInfo {
	info := headerInfo{Offset: -1, Version: defaultVersion}
	for {
		lineStart := s.Position()
		line, err := s.ReadLine()
		if err != nil {
			log.Warn("no PDF header found, using default version", observability.String("version", defaultVersion))
			return info
		}
		idx, markerLen := strings.Index(line, headerMarker), len(headerMarker)
		if idx < 0 {
			idx, markerLen = strings.Index(line, headerMarker[1:]), len(headerMarker)-1
		}
		if idx < 0 {
			if len(line) > 0 && scanner.IsDigit(line[0]) {
				log.Warn("no PDF header found, using default version", observability.String("version", defaultVersion))
				return info
			}
			continue
		}

		info.Offset = lineStart + int64(idx)
		info.Text = line
		version := line[idx+markerLen:]
		if !versionPattern.MatchString(line[idx:]) {
			if len(version) < 3 {
				log.Warn("no version found in header, using default", observability.String("version", defaultVersion))
				version = defaultVersion
			} else if garbage := len(version) - 3; garbage > 0 {
				eol := int(s.Position() - lineStart - int64(len(line)))
				if err := s.Rewind(garbage + eol); err != nil {
					log.Warn("cannot push back header garbage", observability.Error("error", err))
				}
				version = version[:3]
			}
		}
		if _, err := strconv.ParseFloat(version, 64); err != nil {
			log.Warn("cannot parse the header version, using default",
				observability.String("header", line),
				observability.String("version", defaultVersion))
			version = defaultVersion
		}
		info.Version = version
		return info
	}
}

// readHeaderComment reads the line after the header. It is valid when it
// starts with '%' and carries at least four more bytes; the four bytes after
// the '%' are returned, or the absent sentinel for an invalid comment.
func readHeaderComment(s *scanner.Scanner) [4]int {
	out := [4]int{compliance.CommentByteAbsent, compliance.CommentByteAbsent, compliance.CommentByteAbsent, compliance.CommentByteAbsent}
	line, err := s.ReadLine()
	if err != nil || len(line) < 5 || line[0] != '%' {
		return out
	}
	for i := range out {
		out[i] = int(line[i+1])
	}
	return out
}
