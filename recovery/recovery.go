// Package recovery decides how the parser reacts to structural errors
// confined to a single object.
package recovery

import "fmt"

type Strategy interface {
	OnError(ctx Context, err error, location Location) Action
}

type Location struct {
	ByteOffset int64
	ObjectNum  int
	ObjectGen  int
	Component  string
}

func (l Location) String() string {
	if l.ObjectNum > 0 || l.ObjectGen > 0 {
		return fmt.Sprintf("%s: object %d %d at offset %d", l.Component, l.ObjectNum, l.ObjectGen, l.ByteOffset)
	}
	return fmt.Sprintf("%s: offset %d", l.Component, l.ByteOffset)
}

type Action int

const (
	ActionFail Action = iota // abort the load
	ActionSkip               // replace the object with null and continue
	ActionWarn               // keep what was parsed and continue
)

func (a Action) String() string {
	switch a {
	case ActionFail:
		return "fail"
	case ActionSkip:
		return "skip"
	case ActionWarn:
		return "warn"
	default:
		return "unknown"
	}
}

type Context interface{ Done() <-chan struct{} }
