// Package failure classifies errors raised by the incentive engine.
//
// Every package declares its sentinel errors through the constructors below so
// that callers can both match a specific condition with errors.Is and decide on
// the broad category with KindOf.
package failure

import (
	"errors"
	"fmt"
)

// Kind is the category of a failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindArithmetic covers overflow, divide-by-zero and domain errors.
	KindArithmetic
	// KindStateInvariant signals caller misuse: missing or duplicate entities.
	KindStateInvariant
	// KindPolicyViolation is a request rejected by a governance rule.
	KindPolicyViolation
	// KindUnauthorized is a request from a caller lacking the required role.
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindArithmetic:
		return "arithmetic"
	case KindStateInvariant:
		return "state_invariant"
	case KindPolicyViolation:
		return "policy_violation"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Sentinel is a comparable error value carrying a Kind.
type Sentinel struct {
	kind Kind
	msg  string
}

func (s *Sentinel) Error() string { return s.msg }

// Kind returns the category of the sentinel.
func (s *Sentinel) Kind() Kind { return s.kind }

// Arithmetic declares a sentinel of KindArithmetic.
func Arithmetic(msg string) *Sentinel { return &Sentinel{kind: KindArithmetic, msg: msg} }

// StateInvariant declares a sentinel of KindStateInvariant.
func StateInvariant(msg string) *Sentinel { return &Sentinel{kind: KindStateInvariant, msg: msg} }

// PolicyViolation declares a sentinel of KindPolicyViolation.
func PolicyViolation(msg string) *Sentinel { return &Sentinel{kind: KindPolicyViolation, msg: msg} }

// Unauthorized declares a sentinel of KindUnauthorized.
func Unauthorized(msg string) *Sentinel { return &Sentinel{kind: KindUnauthorized, msg: msg} }

// Error decorates a failure with the operation and entity it concerns.
type Error struct {
	Op     string
	Entity string
	Err    error
}

// Wrap annotates err with an operation name and the entity involved.
// A nil err yields nil.
func Wrap(op, entity string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Entity: entity, Err: err}
}

func (e *Error) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Kind returns the category of the wrapped failure.
func (e *Error) Kind() Kind { return KindOf(e.Err) }

type kinded interface {
	Kind() Kind
}

// KindOf returns the category of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var s *Sentinel
	if errors.As(err, &s) {
		return s.kind
	}
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}
