package registry

import (
	"errors"
	"fmt"
	"time"
)

// Default retention bounds for closed contexts.
const (
	DefaultMaxClosed    = 16
	DefaultMaxClosedAge = 10 * time.Minute
)

// Policy bounds how many closed contexts are retained and for how long.
// A zero value disables that bound.
type Policy struct {
	MaxClosed    int
	MaxClosedAge time.Duration
}

// DefaultPolicy returns the default retention bounds.
func DefaultPolicy() Policy {
	return Policy{MaxClosed: DefaultMaxClosed, MaxClosedAge: DefaultMaxClosedAge}
}

// Validate rejects negative bounds.
func (p Policy) Validate() error {
	var errs []error
	if p.MaxClosed < 0 {
		errs = append(errs, fmt.Errorf("max_closed must not be negative, got %d", p.MaxClosed))
	}
	if p.MaxClosedAge < 0 {
		errs = append(errs, fmt.Errorf("max_closed_age must not be negative, got %s", p.MaxClosedAge))
	}
	return errors.Join(errs...)
}
