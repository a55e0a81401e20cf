package xref

import "github.com/wudi/pdfaparser/ir/raw"

// TrailerResolver accumulates the sections of one load. Sections are added
// in the order they are parsed, which for a /Prev chain is newest first.
type TrailerResolver struct {
	sections []*Section
	seen     map[int64]bool
	first    *raw.DictObj
	last     *raw.DictObj
}

func NewTrailerResolver() *TrailerResolver {
	return &TrailerResolver{seen: make(map[int64]bool)}
}

// Seen reports whether a section starting at offset was already added.
func (r *TrailerResolver) Seen(offset int64) bool { return r.seen[offset] }

// Add registers a parsed section. The last trailer is replaced on every call;
// the first trailer is set once, by the first section carrying one.
func (r *TrailerResolver) Add(sec *Section) {
	r.sections = append(r.sections, sec)
	r.seen[sec.Offset] = true
	if sec.Trailer == nil {
		return
	}
	r.last = sec.Trailer
	if r.first == nil {
		r.first = sec.Trailer
	}
}

func (r *TrailerResolver) FirstTrailer() *raw.DictObj { return r.first }
func (r *TrailerResolver) LastTrailer() *raw.DictObj  { return r.last }
func (r *TrailerResolver) Sections() []*Section       { return r.sections }

// Table merges the entries of every section. Entries from sections added
// earlier take precedence over those added later.
func (r *TrailerResolver) Table() *Table {
	t := NewTable()
	for _, sec := range r.sections {
		if sec.Entries == nil {
			continue
		}
		for ref, off := range sec.Entries.entries {
			t.SetIfAbsent(ref, off)
		}
		if sec.Entries.kind != "table" {
			t.kind = sec.Entries.kind
		}
	}
	return t
}
