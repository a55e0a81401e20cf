package compliance

import "github.com/wudi/pdfaparser/ir/raw"

// Boundary names a framing position checked while parsing an indirect object
// or stream.
type Boundary int

const (
	BeforeObjectHeader Boundary = iota // EOL preceding "N G obj"
	ObjectHeaderFormat                 // single spaces inside "N G obj"
	AfterObjectHeader                  // EOL following "obj"
	BeforeObjectFooter                 // EOL preceding endobj
	AfterObjectFooter                  // EOL following endobj
	AfterStreamKeyword                 // EOL following "stream"
	BeforeEndstream                    // EOL preceding "endstream"
)

func (b Boundary) String() string {
	switch b {
	case BeforeObjectHeader:
		return "before object header"
	case ObjectHeaderFormat:
		return "object header format"
	case AfterObjectHeader:
		return "after object header"
	case BeforeObjectFooter:
		return "before object footer"
	case AfterObjectFooter:
		return "after object footer"
	case AfterStreamKeyword:
		return "after stream keyword"
	case BeforeEndstream:
		return "before endstream"
	default:
		return "unknown"
	}
}

// XRefCheck names a cross-reference table formatting check.
type XRefCheck int

const (
	XRefKeywordEOL    XRefCheck = iota // EOL after the xref keyword
	SubsectionSpacing                  // single space in "first count"
)

// HexClass classifies a byte inside a hex string.
type HexClass int

const (
	HexDigit HexClass = iota
	HexWhitespace
	HexInvalid
)

// Header carries the observations of the header validator.
type Header struct {
	Offset  int64
	Text    string
	Comment [4]int
}

// Policy receives conformance observations from the parser. The parser always
// runs the same code path; a policy decides what, if anything, is recorded.
type Policy interface {
	OnHeader(doc *DocumentRecord, h Header)
	OnXRef(doc *DocumentRecord, check XRefCheck, ok bool)
	OnEOF(doc *DocumentRecord, postEOFDataSize int)
	OnTrailer(doc *DocumentRecord, trailer *raw.DictObj)
	OnObjectBoundary(obj *ObjectRecord, b Boundary, ok bool)
	OnStreamBoundary(st *StreamRecord, b Boundary, ok bool)
	OnHexChar(hex *HexStringRecord, c byte, class HexClass)
}

// NopPolicy ignores every observation.
type NopPolicy struct{}

func (NopPolicy) OnHeader(*DocumentRecord, Header)               {}
func (NopPolicy) OnXRef(*DocumentRecord, XRefCheck, bool)        {}
func (NopPolicy) OnEOF(*DocumentRecord, int)                     {}
func (NopPolicy) OnTrailer(*DocumentRecord, *raw.DictObj)        {}
func (NopPolicy) OnObjectBoundary(*ObjectRecord, Boundary, bool) {}
func (NopPolicy) OnStreamBoundary(*StreamRecord, Boundary, bool) {}
func (NopPolicy) OnHexChar(*HexStringRecord, byte, HexClass)     {}
