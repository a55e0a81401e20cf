package compliance

import (
	"slices"

	"github.com/wudi/pdfaparser/ir/raw"
)

// CommentByteAbsent marks a header comment byte that could not be read.
const CommentByteAbsent = -1

// DocumentRecord collects file level observations (clauses 6.1.2 to 6.1.4).
type DocumentRecord struct {
	HeaderOffset                   int64
	HeaderText                     string
	HeaderCommentBytes             [4]int
	PostEOFDataSize                int
	XRefEOLCompliant               bool
	SubsectionHeaderSpaceSeparated bool
	Linearized                     bool
	Version                        float64
	TrailerHasID                   bool // every trailer seen carries /ID
	Encrypted                      bool // a trailer carries /Encrypt
}

// NewDocumentRecord returns a record with every flag compliant and the
// comment bytes absent.
func NewDocumentRecord() DocumentRecord {
	return DocumentRecord{
		HeaderCommentBytes:             [4]int{CommentByteAbsent, CommentByteAbsent, CommentByteAbsent, CommentByteAbsent},
		XRefEOLCompliant:               true,
		SubsectionHeaderSpaceSeparated: true,
		TrailerHasID:                   true,
	}
}

func (d *DocumentRecord) FailXRefEOL()           { d.XRefEOLCompliant = false }
func (d *DocumentRecord) FailSubsectionSpacing() { d.SubsectionHeaderSpaceSeparated = false }

// HasBinaryComment reports whether all four comment bytes are present and
// above 127.
func (d *DocumentRecord) HasBinaryComment() bool {
	for _, b := range d.HeaderCommentBytes {
		if b <= 127 {
			return false
		}
	}
	return true
}

// ObjectRecord describes the framing of one indirect object (clause 6.1.8).
// Flags start out compliant and are only ever downgraded.
type ObjectRecord struct {
	HeaderEOLCompliant    bool
	HeaderFormatCompliant bool
	FooterEOLCompliant    bool
}

func NewObjectRecord() *ObjectRecord {
	return &ObjectRecord{HeaderEOLCompliant: true, HeaderFormatCompliant: true, FooterEOLCompliant: true}
}

func (o *ObjectRecord) FailHeaderEOL()    { o.HeaderEOLCompliant = false }
func (o *ObjectRecord) FailHeaderFormat() { o.HeaderFormatCompliant = false }
func (o *ObjectRecord) FailFooterEOL()    { o.FooterEOLCompliant = false }

// Compliant reports whether no framing deviation was recorded.
func (o *ObjectRecord) Compliant() bool {
	return o.HeaderEOLCompliant && o.HeaderFormatCompliant && o.FooterEOLCompliant
}

// StreamRecord describes the raw content boundaries of a stream (clause
// 6.1.7). ResolvedLength is the authoritative content length; DeclaredLength
// is the /Length value found in the dictionary, or -1 when absent.
type StreamRecord struct {
	ResolvedLength           int64
	DeclaredLength           int64
	LeadingSpacingCompliant  bool
	TrailingSpacingCompliant bool
}

func NewStreamRecord() *StreamRecord {
	return &StreamRecord{DeclaredLength: -1, LeadingSpacingCompliant: true, TrailingSpacingCompliant: true}
}

func (s *StreamRecord) FailLeadingSpacing()  { s.LeadingSpacingCompliant = false }
func (s *StreamRecord) FailTrailingSpacing() { s.TrailingSpacingCompliant = false }

// HexStringRecord describes one hex string token (clause 6.1.6).
// HexDigitCount counts every non-whitespace byte between the delimiters.
type HexStringRecord struct {
	ContainsOnlyHex bool
	HexDigitCount   int64
	IsHex           bool
}

func NewHexStringRecord() *HexStringRecord {
	return &HexStringRecord{ContainsOnlyHex: true, IsHex: true}
}

// HexStringEntry ties a hex string record to the object it was read from.
// Offset is the position of the opening '<' within the object's source
// (the file for indirect objects, the decoded data for content streams).
type HexStringEntry struct {
	Owner  raw.ObjectRef
	Offset int64
	Record HexStringRecord
}

// TrailerOwner is the owner recorded for hex strings read from trailer
// dictionaries.
var TrailerOwner = raw.ObjectRef{}

// Records is the side table of compliance records for one load, keyed by
// object identity.
type Records struct {
	Document   DocumentRecord
	Objects    map[raw.ObjectRef]*ObjectRecord
	Streams    map[raw.ObjectRef]*StreamRecord
	HexStrings []HexStringEntry
}

func NewRecords() *Records {
	return &Records{
		Document: NewDocumentRecord(),
		Objects:  make(map[raw.ObjectRef]*ObjectRecord),
		Streams:  make(map[raw.ObjectRef]*StreamRecord),
	}
}

// Object returns the record for ref, creating it on first access.
func (r *Records) Object(ref raw.ObjectRef) *ObjectRecord {
	rec, ok := r.Objects[ref]
	if !ok {
		rec = NewObjectRecord()
		r.Objects[ref] = rec
	}
	return rec
}

// Stream returns the stream record for ref, creating it on first access.
func (r *Records) Stream(ref raw.ObjectRef) *StreamRecord {
	rec, ok := r.Streams[ref]
	if !ok {
		rec = NewStreamRecord()
		r.Streams[ref] = rec
	}
	return rec
}

// AddHexString appends a hex string record in parse order.
func (r *Records) AddHexString(owner raw.ObjectRef, offset int64, rec *HexStringRecord) {
	r.HexStrings = append(r.HexStrings, HexStringEntry{Owner: owner, Offset: offset, Record: *rec})
}

// ObjectRefs returns the keys of Objects in ascending order.
func (r *Records) ObjectRefs() []raw.ObjectRef { return sortedRefs(r.Objects) }

// StreamRefs returns the keys of Streams in ascending order.
func (r *Records) StreamRefs() []raw.ObjectRef { return sortedRefs(r.Streams) }

func sortedRefs[V any](m map[raw.ObjectRef]V) []raw.ObjectRef {
	refs := make([]raw.ObjectRef, 0, len(m))
	for ref := range m {
		refs = append(refs, ref)
	}
	slices.SortFunc(refs, raw.ObjectRef.Compare)
	return refs
}
