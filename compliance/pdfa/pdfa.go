// Package pdfa reports PDF/A-1b file structure violations (ISO 19005-1
// clause 6.1) from the records collected by the parser.
package pdfa

import (
	"fmt"
	"regexp"

	"github.com/wudi/pdfaparser/compliance"
)

var headerPattern = regexp.MustCompile(`^%PDF-\d\.\d$`)

type validator struct {
	level Level
}

// NewValidator returns a validator reporting against level.
func NewValidator(level Level) compliance.Validator { return &validator{level: level} }

// Validate reports the violations recorded for a PDF/A-1b document.
func Validate(ctx compliance.Context, recs *compliance.Records) (*compliance.Report, error) {
	return NewValidator(PDFA1B).Validate(ctx, recs)
}

func (v *validator) Validate(ctx compliance.Context, recs *compliance.Records) (*compliance.Report, error) {
	report := &compliance.Report{
		Standard:   v.level.String(),
		Violations: []compliance.Violation{},
	}
	add := func(code, desc, loc string) {
		report.Violations = append(report.Violations, compliance.Violation{Code: code, Description: desc, Location: loc})
	}

	doc := recs.Document
	if doc.HeaderOffset != 0 {
		add("6.1.2-1", fmt.Sprintf("File header starts at offset %d instead of 0", doc.HeaderOffset), "Header")
	} else if !headerPattern.MatchString(doc.HeaderText) {
		add("6.1.2-1", fmt.Sprintf("File header line %q is not %%PDF-n.n", doc.HeaderText), "Header")
	}
	if !doc.HasBinaryComment() {
		add("6.1.2-2", "Header is not followed by a comment with four bytes above 127", "Header")
	}
	if doc.PostEOFDataSize > 0 {
		add("6.1.3-1", fmt.Sprintf("%d bytes of data follow the last %%%%EOF marker", doc.PostEOFDataSize), "Trailer")
	}
	if !doc.TrailerHasID {
		add("6.1.3-2", "Trailer dictionary does not contain the ID keyword", "Trailer")
	}
	if doc.Encrypted {
		add("6.1.3-3", "Trailer dictionary contains the Encrypt keyword", "Trailer")
	}
	if !doc.XRefEOLCompliant {
		add("6.1.4-1", "xref keyword is not followed by a single EOL marker", "XRef")
	}
	if !doc.SubsectionHeaderSpaceSeparated {
		add("6.1.4-2", "xref subsection header is not separated by a single space", "XRef")
	}

	for _, h := range recs.HexStrings {
		loc := fmt.Sprintf("Object %s, offset %d", h.Owner, h.Offset)
		if !h.Record.ContainsOnlyHex {
			add("6.1.6-1", "Hex string contains non-hexadecimal characters", loc)
		}
		if h.Record.HexDigitCount%2 != 0 {
			add("6.1.6-2", fmt.Sprintf("Hex string has an odd number of digits (%d)", h.Record.HexDigitCount), loc)
		}
	}
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	for _, ref := range recs.StreamRefs() {
		st := recs.Streams[ref]
		loc := "Object " + ref.String()
		if !st.LeadingSpacingCompliant {
			add("6.1.7-1", "stream keyword is not followed by CRLF or LF", loc)
		}
		if !st.TrailingSpacingCompliant {
			add("6.1.7-2", "endstream keyword is not preceded by an EOL marker", loc)
		}
		if st.DeclaredLength != st.ResolvedLength {
			add("6.1.7-3", fmt.Sprintf("Declared /Length %d does not match the %d bytes of stream data", st.DeclaredLength, st.ResolvedLength), loc)
		}
	}

	for _, ref := range recs.ObjectRefs() {
		if err := checkCancelled(ctx); err != nil {
			return nil, err
		}
		obj := recs.Objects[ref]
		loc := "Object " + ref.String()
		if !obj.HeaderEOLCompliant {
			add("6.1.8-1", "Object header is not surrounded by EOL markers", loc)
		}
		if !obj.HeaderFormatCompliant {
			add("6.1.8-2", "Object number, generation and obj keyword are not separated by single spaces", loc)
		}
		if !obj.FooterEOLCompliant {
			add("6.1.8-3", "endobj keyword is not surrounded by EOL markers", loc)
		}
	}

	report.Compliant = len(report.Violations) == 0
	return report, nil
}

func checkCancelled(ctx compliance.Context) error {
	select {
	case <-ctx.Done():
		return &ValidationCancelledError{}
	default:
		return nil
	}
}

type ValidationCancelledError struct{}

func (e *ValidationCancelledError) Error() string { return "validation cancelled" }
