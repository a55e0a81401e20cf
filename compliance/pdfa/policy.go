package pdfa

import (
	"github.com/wudi/pdfaparser/compliance"
	"github.com/wudi/pdfaparser/ir/raw"
)

// StrictPolicy records every observation reported by the parser.
type StrictPolicy struct{}

var _ compliance.Policy = StrictPolicy{}

func (StrictPolicy) OnHeader(doc *compliance.DocumentRecord, h compliance.Header) {
	doc.HeaderOffset = h.Offset
	doc.HeaderText = h.Text
	doc.HeaderCommentBytes = h.Comment
}

func (StrictPolicy) OnXRef(doc *compliance.DocumentRecord, check compliance.XRefCheck, ok bool) {
	if ok {
		return
	}
	switch check {
	case compliance.XRefKeywordEOL:
		doc.FailXRefEOL()
	case compliance.SubsectionSpacing:
		doc.FailSubsectionSpacing()
	}
}

func (StrictPolicy) OnEOF(doc *compliance.DocumentRecord, postEOFDataSize int) {
	doc.PostEOFDataSize = postEOFDataSize
}

func (StrictPolicy) OnTrailer(doc *compliance.DocumentRecord, trailer *raw.DictObj) {
	if trailer == nil {
		return
	}
	if _, ok := trailer.Get(raw.NameLiteral("ID")); !ok {
		doc.TrailerHasID = false
	}
	if _, ok := trailer.Get(raw.NameLiteral("Encrypt")); ok {
		doc.Encrypted = true
	}
}

func (StrictPolicy) OnObjectBoundary(obj *compliance.ObjectRecord, b compliance.Boundary, ok bool) {
	if ok {
		return
	}
	switch b {
	case compliance.BeforeObjectHeader, compliance.AfterObjectHeader:
		obj.FailHeaderEOL()
	case compliance.ObjectHeaderFormat:
		obj.FailHeaderFormat()
	case compliance.BeforeObjectFooter, compliance.AfterObjectFooter:
		obj.FailFooterEOL()
	}
}

func (StrictPolicy) OnStreamBoundary(st *compliance.StreamRecord, b compliance.Boundary, ok bool) {
	if ok {
		return
	}
	switch b {
	case compliance.AfterStreamKeyword:
		st.FailLeadingSpacing()
	case compliance.BeforeEndstream:
		st.FailTrailingSpacing()
	}
}

func (StrictPolicy) OnHexChar(hex *compliance.HexStringRecord, _ byte, class compliance.HexClass) {
	switch class {
	case compliance.HexDigit:
		hex.HexDigitCount++
	case compliance.HexInvalid:
		hex.HexDigitCount++
		hex.ContainsOnlyHex = false
	}
}
