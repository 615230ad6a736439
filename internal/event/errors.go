package event

import (
	"errors"
	"fmt"
)

// ErrMalformedEvent is the sentinel every *MalformedEventError matches.
var ErrMalformedEvent = errors.New("malformed event")

// MalformedEventError describes input that could not become a valid Event.
// Method is set when the failure happened while decoding an envelope, Kind
// once the event variant is known.
type MalformedEventError struct {
	Method string
	Kind   Kind
	Field  string
	Reason string
	Err    error
}

func (e *MalformedEventError) Error() string {
	msg := "malformed event"
	switch {
	case e.Kind != "":
		msg += " " + string(e.Kind)
	case e.Method != "":
		msg += " " + e.Method
	}
	if e.Field != "" {
		msg += fmt.Sprintf(": field %q", e.Field)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrMalformedEvent) true.
func (e *MalformedEventError) Is(target error) bool {
	return target == ErrMalformedEvent
}

func (e *MalformedEventError) Unwrap() error {
	return e.Err
}
