// Package observability provides the logging and tracing hooks used by the
// parser. Tolerated input problems are reported as warnings through Logger;
// conformance deviations go to compliance records instead.
package observability

import "context"

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Field is a key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field      { return Field{Key: key, Value: value} }
func Int(key string, value int) Field     { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }
func Error(key string, err error) Field   { return Field{Key: key, Value: err} }

// Offset is the byte position in the source a message refers to.
func Offset(pos int64) Field { return Field{Key: "offset", Value: pos} }

type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }

// Tracer wraps a load in a span.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

type Span interface {
	SetTag(key string, value any)
	SetError(err error)
	Finish()
}

type nopTracer struct{}

func (nopTracer) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, nopSpan{}
}

func NopTracer() Tracer { return nopTracer{} }

type nopSpan struct{}

func (nopSpan) SetTag(string, any) {}
func (nopSpan) SetError(error)     {}
func (nopSpan) Finish()            {}

// Span tags set by parser.DocumentParser.Parse.
const (
	TagSourceSize    = "pdf.source.bytes"
	TagObjectCount   = "pdf.xref.entries"
	TagPrunedOffsets = "pdf.xref.pruned"
	TagRepaired      = "pdf.xref.repaired"
	TagParseTime     = "pdf.parse.duration"
)
