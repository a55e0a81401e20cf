// Package compliance holds the conformance records produced while parsing
// and the policy hooks that populate them.
package compliance

import (
	"context"
	"fmt"
)

// Context is the context accepted by validators.
type Context = context.Context

// Violation is one failed clause. Location names the object, stream or file
// region the record came from.
type Violation struct {
	Code        string
	Description string
	Location    string
}

func (v Violation) String() string { return fmt.Sprintf("%s %s (%s)", v.Code, v.Description, v.Location) }

// Report is the outcome of validating the records of one load.
type Report struct {
	Compliant  bool
	Standard   string // e.g. "PDF/A-1b"
	Violations []Violation
}

// Codes returns the clause code of every violation in report order.
func (r *Report) Codes() []string {
	codes := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		codes = append(codes, v.Code)
	}
	return codes
}

// Validator turns the records of a parsed document into a report.
type Validator interface {
	Validate(ctx Context, recs *Records) (*Report, error)
}
