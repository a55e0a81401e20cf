// Package contentstream checks the hex strings found in page content
// streams. Content streams are decoded through the filter pipeline and
// lexed without interpreting operators, so the same hexadecimal string
// rules that apply to objects are measured inside drawing instructions.
package contentstream

import (
	"context"
	"errors"
	"fmt"

	"github.com/wudi/pdfaparser/compliance"
	"github.com/wudi/pdfaparser/filters"
	"github.com/wudi/pdfaparser/ir/raw"
	"github.com/wudi/pdfaparser/observability"
	"github.com/wudi/pdfaparser/security"
)

// ErrPageTreeTooDeep is returned when /Kids nesting exceeds the configured
// depth.
var ErrPageTreeTooDeep = errors.New("page tree too deep")

// Source gives access to a loaded document. *parser.Document satisfies it.
type Source interface {
	Catalog(ctx context.Context) (*raw.DictObj, error)
	Deref(ctx context.Context, obj raw.Object) (raw.Object, error)
}

// Config controls a Checker. Zero values select defaults.
type Config struct {
	// Policy receives hex string observations. Default: compliance.NopPolicy.
	Policy   compliance.Policy
	Logger   observability.Logger
	Pipeline *filters.Pipeline
	// MaxDepth bounds the nesting of the page tree.
	MaxDepth int
}

// Stats summarises one walk of the page tree.
type Stats struct {
	Pages      int
	Streams    int
	HexStrings int
	// Skipped counts content streams that could not be decoded or lexed.
	Skipped int
}

// Checker walks the page tree and scans every content stream once.
type Checker struct {
	cfg Config
}

func NewChecker(cfg Config) *Checker {
	if cfg.Policy == nil {
		cfg.Policy = compliance.NopPolicy{}
	}
	if cfg.Logger == nil {
		cfg.Logger = observability.NopLogger{}
	}
	if cfg.Pipeline == nil {
		cfg.Pipeline = filters.NewDefaultPipeline(filters.Limits{
			MaxDecompressedSize: security.DefaultLimits().MaxDecompressedSize,
		})
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = security.DefaultLimits().MaxIndirectDepth
	}
	return &Checker{cfg: cfg}
}

type walk struct {
	c       *Checker
	src     Source
	recs    *compliance.Records
	visited map[raw.ObjectRef]bool
	seen    map[raw.ObjectRef]bool
	stats   Stats
}

// CheckPages scans the content streams of every page reachable from the
// catalog and adds their hex string records to recs. A stream shared by
// several pages is scanned once. Streams that fail to decode are logged and
// skipped; a broken page tree fails the call.
func (c *Checker) CheckPages(ctx context.Context, src Source, recs *compliance.Records) (Stats, error) {
	catalog, err := src.Catalog(ctx)
	if err != nil {
		return Stats{}, err
	}
	root, ok := catalog.Get(raw.NameLiteral("Pages"))
	if !ok {
		return Stats{}, fmt.Errorf("catalog has no /Pages")
	}
	w := &walk{
		c:       c,
		src:     src,
		recs:    recs,
		visited: make(map[raw.ObjectRef]bool),
		seen:    make(map[raw.ObjectRef]bool),
	}
	err = w.node(ctx, root, 0)
	return w.stats, err
}

func (w *walk) node(ctx context.Context, obj raw.Object, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth > w.c.cfg.MaxDepth {
		return ErrPageTreeTooDeep
	}
	if ref, ok := obj.(raw.RefObj); ok {
		if w.visited[ref.Ref()] {
			w.c.cfg.Logger.Warn("page tree loop", observability.String("ref", ref.Ref().String()))
			return nil
		}
		w.visited[ref.Ref()] = true
	}
	resolved, err := w.src.Deref(ctx, obj)
	if err != nil {
		return err
	}
	dict, ok := resolved.(*raw.DictObj)
	if !ok {
		w.c.cfg.Logger.Warn("page tree node is not a dictionary", observability.String("type", resolved.Type()))
		return nil
	}

	if kids, ok := dict.Get(raw.NameLiteral("Kids")); ok {
		kids, err := w.src.Deref(ctx, kids)
		if err != nil {
			return err
		}
		arr, ok := kids.(*raw.ArrayObj)
		if !ok {
			return fmt.Errorf("/Kids is a %s, not an array", kids.Type())
		}
		for _, kid := range arr.Items {
			if err := w.node(ctx, kid, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	w.stats.Pages++
	contents, ok := dict.Get(raw.NameLiteral("Contents"))
	if !ok {
		return nil
	}
	if _, isRef := contents.(raw.RefObj); isRef {
		target, err := w.src.Deref(ctx, contents)
		if err != nil {
			return err
		}
		if arr, ok := target.(*raw.ArrayObj); ok {
			contents = arr
		}
	}
	switch v := contents.(type) {
	case *raw.ArrayObj:
		for _, item := range v.Items {
			if err := w.content(ctx, item); err != nil {
				return err
			}
		}
		return nil
	default:
		return w.content(ctx, v)
	}
}

func (w *walk) content(ctx context.Context, obj raw.Object) error {
	ref, ok := obj.(raw.RefObj)
	if !ok {
		w.c.cfg.Logger.Warn("direct content stream ignored", observability.String("type", obj.Type()))
		return nil
	}
	if w.seen[ref.Ref()] {
		return nil
	}
	w.seen[ref.Ref()] = true

	resolved, err := w.src.Deref(ctx, obj)
	if err != nil {
		return err
	}
	stream, ok := resolved.(*raw.StreamObj)
	if !ok {
		w.c.cfg.Logger.Warn("content is not a stream",
			observability.String("ref", ref.Ref().String()),
			observability.String("type", resolved.Type()))
		return nil
	}

	data, err := w.decode(ctx, stream)
	if err != nil {
		w.stats.Skipped++
		w.c.cfg.Logger.Warn("content stream not decoded",
			observability.String("ref", ref.Ref().String()),
			observability.Error("error", err))
		return nil
	}
	n, err := Scan(data, w.c.cfg.Policy, w.recs, ref.Ref())
	w.stats.Streams++
	w.stats.HexStrings += n
	if err != nil {
		w.stats.Skipped++
		w.c.cfg.Logger.Warn("content stream not fully scanned",
			observability.String("ref", ref.Ref().String()),
			observability.Error("error", err))
	}
	return nil
}

// decode runs the stream's filters. Filter and DecodeParms may be indirect,
// so they are resolved into a copy of the dictionary first.
func (w *walk) decode(ctx context.Context, stream *raw.StreamObj) ([]byte, error) {
	if stream.Dict == nil {
		return stream.Data, nil
	}
	dict := raw.Dict()
	for _, key := range []string{"Filter", "DecodeParms"} {
		v, ok := stream.Dict.Get(raw.NameLiteral(key))
		if !ok {
			continue
		}
		v, err := w.src.Deref(ctx, v)
		if err != nil {
			return nil, err
		}
		if arr, ok := v.(*raw.ArrayObj); ok {
			items := make([]raw.Object, len(arr.Items))
			for i, item := range arr.Items {
				if items[i], err = w.src.Deref(ctx, item); err != nil {
					return nil, err
				}
			}
			v = raw.NewArray(items...)
		}
		dict.Set(raw.NameLiteral(key), v)
	}
	names, params := filters.ExtractFilters(dict)
	if len(names) == 0 {
		return stream.Data, nil
	}
	return w.c.cfg.Pipeline.Decode(ctx, stream.Data, names, params)
}
