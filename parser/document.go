package parser

import (
	"context"
	"fmt"
	"sync"

	"github.com/wudi/pdfaparser/compliance"
	"github.com/wudi/pdfaparser/ir/raw"
	"github.com/wudi/pdfaparser/recovery"
	"github.com/wudi/pdfaparser/security"
	"github.com/wudi/pdfaparser/xref"
)

// Document is the result of one load: the compliance records, the validated
// cross-reference table and the trailers. Objects are parsed on first
// access and cached.
type Document struct {
	Records      *compliance.Records
	Table        *xref.Table
	FirstTrailer *raw.DictObj
	LastTrailer  *raw.DictObj
	Version      string
	Linearized   bool

	mu       sync.Mutex
	parser   *objectParser
	security security.Handler
	recovery recovery.Strategy
	maxDepth int
	cache    map[raw.ObjectRef]raw.Object
	loading  map[raw.ObjectRef]bool
}

// Resolve returns the object stored under ref. Objects missing from the
// table resolve to null. A structural error inside the object is handed to
// the recovery strategy, which either fails the call or turns the object
// into null.
func (d *Document) Resolve(ctx context.Context, ref raw.ObjectRef) (raw.Object, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resolve(ctx, ref, 0)
}

// ResolveAll parses every object of the table in ascending order and
// returns the first error the recovery strategy refuses to skip.
func (d *Document) ResolveAll(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, ref := range d.Table.Refs() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := d.resolve(ctx, ref, 0); err != nil {
			return err
		}
	}
	return nil
}

// Catalog resolves the /Root entry of the trailer named by startxref,
// falling back to the last trailer parsed.
func (d *Document) Catalog(ctx context.Context) (*raw.DictObj, error) {
	trailer := d.LastTrailer
	if d.FirstTrailer != nil {
		trailer = d.FirstTrailer
	}
	if trailer == nil {
		return nil, fmt.Errorf("document has no trailer")
	}
	root, ok := trailer.Get(raw.NameLiteral("Root"))
	if !ok {
		return nil, fmt.Errorf("trailer has no /Root")
	}
	obj, err := d.Deref(ctx, root)
	if err != nil {
		return nil, err
	}
	catalog, ok := obj.(*raw.DictObj)
	if !ok {
		return nil, fmt.Errorf("catalog is a %s, not a dictionary", obj.Type())
	}
	return catalog, nil
}

// Deref resolves obj when it is a reference and returns it unchanged
// otherwise.
func (d *Document) Deref(ctx context.Context, obj raw.Object) (raw.Object, error) {
	if ref, ok := obj.(raw.RefObj); ok {
		return d.Resolve(ctx, ref.Ref())
	}
	return obj, nil
}

func (d *Document) resolve(ctx context.Context, ref raw.ObjectRef, depth int) (raw.Object, error) {
	if obj, ok := d.cache[ref]; ok {
		return obj, nil
	}
	if depth > d.maxDepth {
		return nil, fmt.Errorf("object %s: %w", ref, ErrTooDeep)
	}
	if d.loading[ref] {
		return nil, fmt.Errorf("object %s: %w", ref, ErrCircularReference)
	}
	off, ok := d.Table.Lookup(ref)
	if !ok {
		return raw.NullObj{}, nil
	}

	d.loading[ref] = true
	obj, err := d.parser.parseIndirect(ctx, ref, off, depth)
	delete(d.loading, ref)
	if err == nil {
		obj, err = d.decryptObject(ref, obj)
	}
	if err != nil {
		action := d.recovery.OnError(ctx, err, recovery.Location{
			ByteOffset: off,
			ObjectNum:  ref.Num,
			ObjectGen:  ref.Gen,
			Component:  "parser",
		})
		if action == recovery.ActionFail {
			return nil, fmt.Errorf("object %s: %w", ref, err)
		}
		obj = raw.NullObj{}
	}
	d.cache[ref] = obj
	return obj, nil
}

func (d *Document) decryptObject(ref raw.ObjectRef, obj raw.Object) (raw.Object, error) {
	if d.security == nil || !d.security.IsEncrypted() {
		return obj, nil
	}
	switch v := obj.(type) {
	case raw.StringObj:
		dec, err := d.security.Decrypt(ref.Num, ref.Gen, v.Value(), security.DataClassString)
		if err != nil {
			return nil, err
		}
		return raw.StringObj{Bytes: dec, Hex: v.Hex}, nil
	case *raw.ArrayObj:
		for i, item := range v.Items {
			dec, err := d.decryptObject(ref, item)
			if err != nil {
				return nil, err
			}
			v.Items[i] = dec
		}
		return v, nil
	case *raw.DictObj:
		for key, item := range v.KV {
			dec, err := d.decryptObject(ref, item)
			if err != nil {
				return nil, err
			}
			v.KV[key] = dec
		}
		return v, nil
	case *raw.StreamObj:
		class := security.DataClassStream
		if v.Dict != nil {
			if _, err := d.decryptObject(ref, v.Dict); err != nil {
				return nil, err
			}
			if name, ok := v.Dict.GetName("Type"); ok && name == "Metadata" {
				class = security.DataClassMetadataStream
			}
		}
		dec, err := d.security.Decrypt(ref.Num, ref.Gen, v.Data, class)
		if err != nil {
			return nil, err
		}
		v.Data = dec
		return v, nil
	default:
		return obj, nil
	}
}
