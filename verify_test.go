package gocas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBalanced_ApproximateResidual(t *testing.T) {
	s := NewSolver(DefaultOptions())
	l := F(1000000000001, 1000000000000)
	assert.False(t, s.balanced(l, one, exactOnly))
	assert.True(t, s.balanced(l, one, 1))
	assert.True(t, s.balanced(one, one, exactOnly))
}

func TestBalanced_UncheckableRejected(t *testing.T) {
	s := NewSolver(DefaultOptions())
	a := S("a")
	// Every sample value of a hits a pole.
	d := MulOf(
		PowOf(Sub(a, F(7, 3)), negOne),
		PowOf(AddOf(a, F(5, 11)), negOne),
		PowOf(Sub(a, F(13, 2)), negOne),
	)
	assert.False(t, s.balanced(d, zero, exactOnly))
	assert.False(t, s.nearZero(a, 1))
}

func TestSession_MarksApproximateRoots(t *testing.T) {
	s := NewSolver(DefaultOptions())
	assert.False(t, s.approximate(one))
	s.markApprox(one)

	c := s.session()
	c.markApprox(two)
	assert.True(t, c.approximate(two))
	assert.False(t, c.approximate(one))
}
