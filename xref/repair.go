package xref

import (
	"context"
	"errors"
	"strconv"

	"github.com/wudi/pdfaparser/ir/raw"
	"github.com/wudi/pdfaparser/scanner"
)

// ErrRepairFailed is returned when a repair scan finds no object headers.
var ErrRepairFailed = errors.New("xref: repair failed: no objects found")

type repairToken struct {
	text string
	pos  int64
}

// Repair scans the entire source for "<num> <gen> obj" headers and trailer
// dictionaries to rebuild the offset table. Later definitions of an object
// replace earlier ones. The returned section has Offset -1.
func Repair(ctx context.Context, s *scanner.Scanner, values ValueParser) (*Section, error) {
	t := NewTable()
	t.kind = "repaired"
	var trailer *raw.DictObj
	var prev1, prev2 repairToken
	maxNum := 0

	if err := s.SeekTo(0); err != nil {
		return nil, err
	}
	for n := 0; ; n++ {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		s.SkipSpaces()
		if s.EOF() {
			break
		}
		pos := s.Position()
		text, err := s.ReadToken()
		if err != nil {
			break
		}
		if text == "" {
			// delimiter
			s.Read()
			prev1, prev2 = repairToken{}, repairToken{}
			continue
		}
		switch text {
		case "obj":
			num, errNum := strconv.Atoi(prev2.text)
			gen, errGen := strconv.Atoi(prev1.text)
			if errNum == nil && errGen == nil && num >= 0 && gen >= 0 {
				t.Set(raw.ObjectRef{Num: num, Gen: gen}, prev2.pos)
				if num > maxNum {
					maxNum = num
				}
			}
		case "stream":
			if i := s.Index([]byte("endstream"), 0); i >= 0 {
				if err := s.SeekTo(i + int64(len("endstream"))); err != nil {
					return nil, err
				}
			}
		case "trailer":
			if values == nil {
				break
			}
			s.SkipSpaces()
			if obj, err := values(s); err == nil {
				if d, ok := obj.(*raw.DictObj); ok {
					if _, hasRoot := d.Get(raw.NameLiteral("Root")); hasRoot || trailer == nil {
						trailer = d
					}
				}
			}
		}
		prev2, prev1 = prev1, repairToken{text: text, pos: pos}
	}

	if t.Len() == 0 {
		return nil, ErrRepairFailed
	}
	if trailer == nil {
		trailer = raw.Dict()
		trailer.Set(raw.NameLiteral("Size"), raw.NumberInt(int64(maxNum+1)))
	}
	return &Section{Offset: -1, Entries: t, Trailer: trailer}, nil
}
