// Package xref parses classic cross-reference tables and reconciles the
// sections of incrementally updated files.
package xref

import (
	"slices"

	"github.com/wudi/pdfaparser/ir/raw"
)

// Table maps object identity to the byte offset of the object header.
type Table struct {
	entries map[raw.ObjectRef]int64
	kind    string
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[raw.ObjectRef]int64), kind: "table"}
}

// Lookup returns the offset recorded for ref.
func (t *Table) Lookup(ref raw.ObjectRef) (int64, bool) {
	off, ok := t.entries[ref]
	return off, ok
}

// Set records off for ref, replacing any previous entry.
func (t *Table) Set(ref raw.ObjectRef, off int64) { t.entries[ref] = off }

// SetIfAbsent records off for ref unless ref already has an entry. It
// reports whether the entry was added.
func (t *Table) SetIfAbsent(ref raw.ObjectRef, off int64) bool {
	if _, ok := t.entries[ref]; ok {
		return false
	}
	t.entries[ref] = off
	return true
}

func (t *Table) Delete(ref raw.ObjectRef) { delete(t.entries, ref) }
func (t *Table) Len() int                 { return len(t.entries) }

// Type is "table" for parsed tables and "repaired" for tables rebuilt by
// scanning the file.
func (t *Table) Type() string { return t.kind }

// Refs returns the table keys ordered by object number then generation.
func (t *Table) Refs() []raw.ObjectRef {
	out := make([]raw.ObjectRef, 0, len(t.entries))
	for ref := range t.entries {
		out = append(out, ref)
	}
	slices.SortFunc(out, raw.ObjectRef.Compare)
	return out
}

// Entries returns a copy of the table contents.
func (t *Table) Entries() map[raw.ObjectRef]int64 {
	out := make(map[raw.ObjectRef]int64, len(t.entries))
	for k, v := range t.entries {
		out[k] = v
	}
	return out
}

// FromEntries builds a table from a key to offset map.
func FromEntries(entries map[raw.ObjectRef]int64) *Table {
	t := NewTable()
	for k, v := range entries {
		t.entries[k] = v
	}
	return t
}
