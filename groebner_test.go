package gocas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocas"
)

// ============================================================
// Gröbner basis tests
// ============================================================

func TestGroebner_CircleLine(t *testing.T) {
	basis, err := gocas.GroebnerBasis([]gocas.Node{
		gocas.AddOf(pow(x, 2), pow(y, 2), gocas.N(-1)),
		gocas.Sub(x, y),
	}, []string{"x", "y"})
	require.NoError(t, err)
	require.Len(t, basis, 2)

	// The y-only element comes first; every element vanishes on the
	// intersection points.
	assert.Equal(t, []string{"y"}, gocas.Symbols(basis[0]))
	r := gocas.Sqrt(gocas.F(1, 2))
	for _, pt := range []gocas.Node{r, gocas.Neg(r)} {
		for _, b := range basis {
			v, err := gocas.Subs(b, map[string]gocas.Node{"x": pt, "y": pt})
			require.NoError(t, err)
			z, ok := gocas.Approx(v)
			require.True(t, ok)
			assert.InDelta(t, 0, real(z), 1e-12, b.String())
		}
	}
}

func TestGroebner_Inconsistent(t *testing.T) {
	basis, err := gocas.GroebnerBasis([]gocas.Node{
		gocas.AddOf(x, y, gocas.N(-1)),
		gocas.AddOf(x, y, gocas.N(-2)),
	}, []string{"x", "y"})
	require.NoError(t, err)
	require.Len(t, basis, 1)
	assert.Empty(t, gocas.Symbols(basis[0]))
	assert.False(t, gocas.IsZero(basis[0]))
}

func TestGroebner_Errors(t *testing.T) {
	_, err := gocas.GroebnerBasis([]gocas.Node{x}, nil)
	assert.ErrorIs(t, err, gocas.ErrMalformedInput)

	_, err = gocas.GroebnerBasis([]gocas.Node{gocas.Sqrt(x)}, []string{"x"})
	assert.Error(t, err)
}
