package scrape

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/plugin-exporter/pkg/registers"
)

// UnitFailure is the failure shape for a collector run, whether the
// collector returned an error or panicked.
type UnitFailure struct {
	Collector string
	Panicked  bool
	Err       error
}

func (f *UnitFailure) Error() string {
	if f.Panicked {
		return fmt.Sprintf("collector %q panicked: %v", f.Collector, f.Err)
	}
	return fmt.Sprintf("collector %q failed: %v", f.Collector, f.Err)
}

func (f *UnitFailure) Unwrap() error { return f.Err }

// Runner executes a single collector and contains its failures.
type Runner struct {
	logger *zap.Logger
}

// NewRunner returns a Runner logging failures to logger.
func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger}
}

// Run calls c.Collect. A returned error or a recovered panic comes back as
// *UnitFailure after being logged with the collector name and its trace.
func (r *Runner) Run(c registers.Collector) (err error) {
	name := c.Name()
	var failure *UnitFailure
	defer func() {
		if rec := recover(); rec != nil {
			failure = &UnitFailure{Collector: name, Panicked: true, Err: panicError(rec)}
		}
		if failure != nil {
			// the cause, not the wrapper, so zap prints the pkg/errors stack as errorVerbose
			r.logger.Error("collector generated an error",
				zap.String("collector", name),
				zap.Bool("panicked", failure.Panicked),
				zap.Error(failure.Err))
			err = failure
		}
	}()

	if cerr := c.Collect(); cerr != nil {
		failure = &UnitFailure{Collector: name, Err: cerr}
	}
	return nil
}

// panicError records the stack while the panicking frames are still on it.
func panicError(rec any) error {
	if e, ok := rec.(error); ok {
		return errors.WithStack(e)
	}
	return errors.Errorf("%v", rec)
}
