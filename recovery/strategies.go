package recovery

import (
	"fmt"

	"github.com/wudi/pdfaparser/observability"
)

// StrictStrategy implements a fail-fast recovery strategy.
type StrictStrategy struct{}

func NewStrictStrategy() *StrictStrategy {
	return &StrictStrategy{}
}

func (s *StrictStrategy) OnError(ctx Context, err error, location Location) Action {
	return ActionFail
}

// LenientStrategy records every error, logs it and skips the failing object.
type LenientStrategy struct {
	Logger observability.Logger
	Errors []error
}

func NewLenientStrategy(logger observability.Logger) *LenientStrategy {
	if logger == nil {
		logger = observability.NopLogger{}
	}
	return &LenientStrategy{Logger: logger}
}

func (s *LenientStrategy) OnError(ctx Context, err error, location Location) Action {
	s.Errors = append(s.Errors, fmt.Errorf("[%s] offset %d: %w", location.Component, location.ByteOffset, err))
	if s.Logger != nil {
		s.Logger.Warn("object replaced with null",
			observability.String("component", location.Component),
			observability.Offset(location.ByteOffset),
			observability.Int("object", location.ObjectNum),
			observability.Int("generation", location.ObjectGen),
			observability.Error("error", err),
		)
	}
	if ctx != nil {
		select {
		case <-ctx.Done():
			return ActionFail
		default:
		}
	}
	return ActionSkip
}
