// Package parser loads the structure of a PDF file: header, cross-reference
// tables, trailers and indirect objects. Every framing detail that PDF/A-1b
// constrains is reported to a compliance.Policy while parsing continues.
package parser

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/wudi/pdfaparser/compliance"
	"github.com/wudi/pdfaparser/ir/raw"
	"github.com/wudi/pdfaparser/observability"
	"github.com/wudi/pdfaparser/recovery"
	"github.com/wudi/pdfaparser/scanner"
	"github.com/wudi/pdfaparser/security"
)

// Config controls a load. Zero values select defaults.
type Config struct {
	// Policy receives conformance observations. Default: compliance.NopPolicy.
	Policy compliance.Policy
	// Recovery decides whether a broken object fails the load. Default:
	// lenient, which logs the error and turns the object into null.
	Recovery recovery.Strategy
	Logger   observability.Logger
	Tracer   observability.Tracer
	// Security decrypts strings and stream data after parsing.
	Security security.Handler
	Limits   security.Limits
	Scanner  scanner.Config
	// Eager parses every object during Parse instead of on first access.
	Eager bool
}

// DocumentParser loads documents with a fixed configuration.
type DocumentParser struct {
	cfg Config
}

func NewDocumentParser(cfg Config) *DocumentParser {
	if cfg.Policy == nil {
		cfg.Policy = compliance.NopPolicy{}
	}
	if cfg.Logger == nil {
		cfg.Logger = observability.NopLogger{}
	}
	if cfg.Tracer == nil {
		cfg.Tracer = observability.NopTracer()
	}
	if cfg.Recovery == nil {
		cfg.Recovery = recovery.NewLenientStrategy(cfg.Logger)
	}
	if cfg.Security == nil {
		cfg.Security = security.NoopHandler()
	}
	cfg.Limits = cfg.Limits.WithDefaults()
	return &DocumentParser{cfg: cfg}
}

// Parse loads the size bytes of r. The returned document owns a scanner over
// r; r must stay readable while objects are resolved.
func (p *DocumentParser) Parse(ctx context.Context, r io.ReaderAt, size int64) (*Document, error) {
	ctx, span := p.cfg.Tracer.StartSpan(ctx, "parser.Parse")
	defer span.Finish()
	start := time.Now()
	span.SetTag(observability.TagSourceSize, size)

	if size > p.cfg.Limits.MaxSourceSize {
		err := fmt.Errorf("source size %d exceeds limit %d", size, p.cfg.Limits.MaxSourceSize)
		span.SetError(err)
		return nil, err
	}
	log := p.cfg.Logger
	policy := p.cfg.Policy
	recs := compliance.NewRecords()
	s := scanner.New(r, size, p.cfg.Scanner)

	header := validateHeader(s, policy, &recs.Document, log)
	if v, err := strconv.ParseFloat(header.Version, 64); err == nil {
		recs.Document.Version = v
	}

	op := &objectParser{
		s:        s,
		policy:   policy,
		recs:     recs,
		recovery: p.cfg.Recovery,
		logger:   log,
		limits:   p.cfg.Limits,
	}
	doc := &Document{
		Records:  recs,
		Version:  header.Version,
		parser:   op,
		security: p.cfg.Security,
		recovery: p.cfg.Recovery,
		maxDepth: p.cfg.Limits.MaxIndirectDepth,
		cache:    make(map[raw.ObjectRef]raw.Object),
		loading:  make(map[raw.ObjectRef]bool),
	}
	op.length = doc.resolve

	resolver, err := p.loadXRef(ctx, s, r, size, recs)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	doc.Table = resolver.Table()
	doc.FirstTrailer = resolver.FirstTrailer()
	doc.LastTrailer = resolver.LastTrailer()
	policy.OnTrailer(&recs.Document, doc.FirstTrailer)
	if doc.LastTrailer != doc.FirstTrailer {
		policy.OnTrailer(&recs.Document, doc.LastTrailer)
	}

	removed := validateOffsets(s, doc.Table, log)
	if removed > 0 {
		log.Info("removed cross-reference entries with invalid offsets", observability.Int("count", removed))
	}
	span.SetTag(observability.TagPrunedOffsets, removed)
	span.SetTag(observability.TagRepaired, doc.Table.Type() == "repaired")
	doc.Linearized = detectLinearization(ctx, op, size)
	recs.Document.Linearized = doc.Linearized
	span.SetTag(observability.TagObjectCount, doc.Table.Len())

	if p.cfg.Eager {
		if err := doc.ResolveAll(ctx); err != nil {
			span.SetError(err)
			return nil, err
		}
	}
	span.SetTag(observability.TagParseTime, time.Since(start))
	log.Debug("document loaded",
		observability.Int("objects", doc.Table.Len()),
		observability.String("version", doc.Version),
		observability.String("xref", doc.Table.Type()))
	return doc, nil
}
