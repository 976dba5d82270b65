package playthrough

import (
	"fmt"

	"go.uber.org/zap"
)

// AssertionMode controls how failed expectations are reported.
type AssertionMode int

const (
	// AssertionStrict stops the run at the first failed expectation.
	AssertionStrict AssertionMode = iota
	// AssertionLogOnly logs failed expectations and keeps going.
	AssertionLogOnly
)

// String returns the mode name.
func (m AssertionMode) String() string {
	if m == AssertionLogOnly {
		return "log-only"
	}
	return "strict"
}

// Assertions reports script failures according to Mode.
type Assertions struct {
	Mode   AssertionMode
	Logger *zap.Logger
	// Failed counts expectations that failed in log-only mode.
	Failed int
}

// Failf reports a failure that always stops the run.
func (a *Assertions) Failf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Assertf reports a failed expectation. In log-only mode it is logged and
// the run continues.
func (a *Assertions) Assertf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	if a.Mode != AssertionLogOnly {
		return err
	}
	a.Failed++
	if a.Logger != nil {
		a.Logger.Warn("expectation failed", zap.Error(err))
	}
	return nil
}
