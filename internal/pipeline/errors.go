package pipeline

import (
	"errors"
	"fmt"
)

// Error classes, matched with errors.Is. Missing parameters surface as
// params.ErrMissing instead.
var (
	// ErrConfig: invalid enum values, disallowed argument combinations,
	// unknown degradation keys and type mismatches.
	ErrConfig = errors.New("configuration error")
	// ErrDataAvailability: the requested electrode layout does not match the
	// parameter file.
	ErrDataAvailability = errors.New("data availability error")
	// ErrPhysicalConstraint: a parameter value the selected model cannot use.
	ErrPhysicalConstraint = errors.New("physical constraint violation")
	// ErrOptionConflict: an extra model option collides with a derived one.
	ErrOptionConflict = errors.New("model option conflict")
)

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

// StageError wraps the failure of one stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Stage
	}
	return e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
