// Package check defines the precondition errors raised by the playback engine and the policy
// that decides whether a violation is fatal or logged.
package check

import (
	"errors"

	"github.com/playsync/playsync/log"
)

// Precondition violations.
var (
	ErrNoActiveCanvas = errors.New("no active canvas")
	ErrNoAnimation    = errors.New("canvas has no animation interface")
	ErrNoProducer     = errors.New("no producer registered for the active canvas")
)

// ErrNotImplemented is returned by operations that are part of the API surface but have no behaviour yet.
var ErrNotImplemented = errors.New("not implemented")

// Policy selects how precondition violations are handled at the engine boundary.
type Policy int

const (
	// Tolerant logs the violation and turns the operation into a no-op.
	Tolerant Policy = iota
	// Checked panics on the violation.
	Checked
)

func (p Policy) String() string {
	if p == Checked {
		return "checked"
	}
	return "tolerant"
}

// Build is the policy selected by the build configuration.
func Build() Policy {
	if checkedBuild {
		return Checked
	}
	return Tolerant
}

// IsPrecondition reports whether err is one of the precondition violations.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrNoActiveCanvas) ||
		errors.Is(err, ErrNoAnimation) ||
		errors.Is(err, ErrNoProducer)
}

// onlyPreconditions reports whether every leaf of err's tree is a precondition violation.
func onlyPreconditions(err error) bool {
	switch e := err.(type) {
	case nil:
		return false
	case interface{ Unwrap() []error }:
		children := e.Unwrap()
		if len(children) == 0 {
			return false
		}
		for _, child := range children {
			if !onlyPreconditions(child) {
				return false
			}
		}
		return true
	}

	if inner := errors.Unwrap(err); inner != nil {
		return onlyPreconditions(inner)
	}
	return err == ErrNoActiveCanvas || err == ErrNoAnimation || err == ErrNoProducer
}

// Handle applies the policy to err. Precondition violations panic under Checked and are logged
// and swallowed under Tolerant. Any other error is returned unchanged, including one that joins
// a violation with a real failure.
func (p Policy) Handle(op string, err error) error {
	if err == nil || !onlyPreconditions(err) {
		return err
	}

	if p == Checked {
		panic(&Violation{Op: op, Err: err})
	}

	log.Warnf("%s: precondition violated: %v", op, err)
	return nil
}

// Violation is the panic value raised under the Checked policy.
type Violation struct {
	Op  string
	Err error
}

func (v *Violation) Error() string {
	return v.Op + ": " + v.Err.Error()
}

func (v *Violation) Unwrap() error {
	return v.Err
}
