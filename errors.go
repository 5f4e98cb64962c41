package gocas

import (
	"errors"
	"fmt"
)

// ============================================================
// Errors
// ============================================================

var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrDomain         = errors.New("domain error")
	ErrUnsolvable     = errors.New("unsolvable")
	ErrMalformedInput = errors.New("malformed input")

	// ErrNonTerminatingDivision is returned by LongDivision for an
	// improper fraction. Callers fold it into a Product-of-inverse.
	ErrNonTerminatingDivision = errors.New("non-terminating division")
)

// DomainError reports an operation outside the domain the engine supports,
// such as ordering Gaussian values or isolating an unknown in an exponent.
type DomainError struct {
	Op     string
	Reason string
}

func (e *DomainError) Error() string { return "domain error: " + e.Op + ": " + e.Reason }
func (e *DomainError) Unwrap() error { return ErrDomain }

// UnsolvableError is returned once every isolation move has been tried.
type UnsolvableError struct {
	Unknown  string
	Residual Statement
	Reason   string
}

func (e *UnsolvableError) Error() string {
	msg := fmt.Sprintf("cannot solve for %s", e.Unknown)
	if e.Residual != nil {
		msg += " in " + e.Residual.String()
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *UnsolvableError) Unwrap() error { return ErrUnsolvable }

// kernelPanic carries an arithmetic error out of node constructors, which
// return bare Nodes. Exported entry points recover it into an error.
type kernelPanic struct{ err error }

func raise(err error) { panic(kernelPanic{err: err}) }

func recoverKernel(errp *error) {
	if r := recover(); r != nil {
		kp, ok := r.(kernelPanic)
		if !ok {
			panic(r)
		}
		*errp = kp.err
	}
}

// Catch runs fn and converts an arithmetic failure raised while building
// nodes (for example 0^-1) into an error.
func Catch(fn func() Node) (n Node, err error) {
	defer recoverKernel(&err)
	return fn(), nil
}
