package gocas_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocas"
)

func frac(t *testing.T, p, q int64) gocas.Scalar {
	t.Helper()
	s, err := gocas.ScalarFrac(p, q)
	require.NoError(t, err)
	return s
}

// ============================================================
// Scalar tests
// ============================================================

func TestScalar_Reduced(t *testing.T) {
	s := frac(t, 6, -8)
	assert.Equal(t, "-3/4", s.String())
	assert.True(t, s.Negative())
	assert.False(t, s.IsInteger())
}

func TestScalar_ZeroDenominator(t *testing.T) {
	_, err := gocas.ScalarFrac(1, 0)
	assert.ErrorIs(t, err, gocas.ErrDivisionByZero)
}

func TestScalar_Arithmetic(t *testing.T) {
	half := frac(t, 1, 2)
	third := frac(t, 1, 3)
	assert.Equal(t, "5/6", half.Add(third).String())
	assert.Equal(t, "1/6", half.Sub(third).String())
	assert.Equal(t, "1/6", half.Mul(third).String())
	q, err := half.Div(third)
	require.NoError(t, err)
	assert.Equal(t, "3/2", q.String())
}

func TestScalar_Gaussian(t *testing.T) {
	i, err := gocas.ParseScalar("i")
	require.NoError(t, err)
	sq := i.Mul(i)
	assert.True(t, sq.Equal(gocas.ScalarInt(-1)))

	z, err := gocas.ParseScalar("3+2i")
	require.NoError(t, err)
	assert.Equal(t, "3 + 2i", z.String())
	assert.True(t, z.Mul(z.Conj()).Equal(gocas.ScalarInt(13)))

	inv, err := z.Inv()
	require.NoError(t, err)
	assert.True(t, z.Mul(inv).IsOne())
}

func TestScalar_DivisionByZero(t *testing.T) {
	_, err := gocas.ScalarInt(3).Div(gocas.ScalarInt(0))
	assert.True(t, errors.Is(err, gocas.ErrDivisionByZero))

	_, err = gocas.ScalarInt(0).Pow(-2)
	assert.ErrorIs(t, err, gocas.ErrDivisionByZero)
}

func TestScalar_Pow(t *testing.T) {
	p, err := frac(t, -2, 3).Pow(3)
	require.NoError(t, err)
	assert.Equal(t, "-8/27", p.String())

	p, err = gocas.ScalarInt(2).Pow(-2)
	require.NoError(t, err)
	assert.Equal(t, "1/4", p.String())
}

func TestScalar_CmpGaussian(t *testing.T) {
	i, _ := gocas.ParseScalar("i")
	_, err := i.Cmp(gocas.ScalarInt(1))
	var de *gocas.DomainError
	assert.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, gocas.ErrDomain)

	c, err := frac(t, 1, 3).Cmp(frac(t, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, -1, c)
}

func TestScalar_Abs(t *testing.T) {
	z, _ := gocas.ParseScalar("3-4i")
	a, err := z.Abs()
	require.NoError(t, err)
	assert.Equal(t, "5", a.String())

	w, _ := gocas.ParseScalar("1+i")
	_, err = w.Abs()
	assert.ErrorIs(t, err, gocas.ErrDomain)
}

func TestScalar_ParseMalformed(t *testing.T) {
	for _, in := range []string{"", "abc", "1/0x", "2+ji"} {
		_, err := gocas.ParseScalar(in)
		assert.ErrorIs(t, err, gocas.ErrMalformedInput, in)
	}
}
