package fixed

import "github.com/LeJamon/goMIXR/internal/core/failure"

var (
	// ErrOverflow is returned when a result leaves the representable range.
	ErrOverflow = failure.Arithmetic("fixed point overflow")

	// ErrDivideByZero is returned by Div and Reciprocal for a zero divisor.
	ErrDivideByZero = failure.Arithmetic("fixed point division by zero")

	// ErrDomain is returned by Ln for non-positive operands.
	ErrDomain = failure.Arithmetic("logarithm of a non-positive number")

	// ErrInvalidDecimal is returned when text cannot be parsed as a decimal number.
	ErrInvalidDecimal = failure.PolicyViolation("invalid decimal number")
)
