// Package raw is the object model produced by the parser: direct values,
// streams with their undecoded data and references to indirect objects.
package raw

import (
	"cmp"
	"fmt"
)

// ObjectRef identifies an indirect object by number and generation.
type ObjectRef struct {
	Num int
	Gen int
}

func (r ObjectRef) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

// Compare orders references by object number, then generation.
func (r ObjectRef) Compare(o ObjectRef) int {
	if c := cmp.Compare(r.Num, o.Num); c != 0 {
		return c
	}
	return cmp.Compare(r.Gen, o.Gen)
}

// Object is implemented by every value the parser produces. Type returns
// the lower-case PDF type name used in diagnostics.
type Object interface {
	Type() string
	IsIndirect() bool
}

// Dictionary is the read-write view of a dictionary shared by stream
// dictionaries and filter parameters.
type Dictionary interface {
	Object
	Get(key Name) (Object, bool)
	Set(key Name, value Object)
	Delete(key Name)
	Keys() []Name
	Len() int
}

type Name interface {
	Object
	Value() string
}

type Number interface {
	Object
	Int() int64
	Float() float64
	IsInteger() bool
}

type Boolean interface {
	Object
	Value() bool
}
