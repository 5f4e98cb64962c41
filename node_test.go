package gocas_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocas"
)

var (
	x = gocas.S("x")
	y = gocas.S("y")
	z = gocas.S("z")
)

func assertNode(t *testing.T, want, got gocas.Node) {
	t.Helper()
	require.NotNil(t, got)
	assert.Truef(t, want.Equal(got), "want %s, got %s", want, got)
}

func pow(b gocas.Node, e int64) gocas.Node { return gocas.PowOf(b, gocas.N(e)) }

// ============================================================
// Const and Symbol tests
// ============================================================

func TestConst_String(t *testing.T) {
	assert.Equal(t, "42", gocas.N(42).String())
	assert.Equal(t, "1/3", gocas.F(1, 3).String())
	assert.Equal(t, "i", gocas.I().String())
}

func TestConst_ImaginarySquare(t *testing.T) {
	assertNode(t, gocas.N(-1), gocas.MulOf(gocas.I(), gocas.I()))
}

func TestConst_DistinctDigests(t *testing.T) {
	a := gocas.F(7, 120270595)
	b := gocas.AddOf(gocas.F(7, 3), gocas.MulOf(gocas.F(2830087, 3), gocas.I()))
	assert.False(t, a.Equal(b))
	assert.NotEqual(t, a.Hash(), b.Hash())
	assert.False(t, gocas.IsZero(gocas.Sub(gocas.PowOf(x, a), gocas.PowOf(x, b))))
	assert.Equal(t, 2, gocas.NewSolutionSet(a, b).Len())

	var consts []gocas.Node
	for p := int64(-12); p <= 12; p++ {
		for q := int64(1); q <= 12; q++ {
			consts = append(consts, gocas.F(p, q), gocas.AddOf(gocas.F(p, q), gocas.MulOf(gocas.F(q, 7), gocas.I())))
		}
	}
	for i, ci := range consts {
		for _, cj := range consts[i+1:] {
			if ci.String() != cj.String() {
				assert.Falsef(t, ci.Equal(cj), "%s equals %s", ci, cj)
			}
		}
	}
}

func TestSymbol_Equal(t *testing.T) {
	assert.True(t, gocas.S("x").Equal(x))
	assert.False(t, x.Equal(y))
	assert.False(t, x.Equal(gocas.N(1)))
}

// ============================================================
// Sum tests
// ============================================================

func TestSum_LikeTerms(t *testing.T) {
	got := gocas.AddOf(x, x, x, gocas.N(2))
	assertNode(t, gocas.AddOf(gocas.MulOf(gocas.N(3), x), gocas.N(2)), got)
	assert.Equal(t, "3*x + 2", got.String())
}

func TestSum_CollapseToZero(t *testing.T) {
	assert.True(t, gocas.IsZero(gocas.AddOf(x, gocas.Neg(x))))
}

func TestSum_OrderIndependent(t *testing.T) {
	a := gocas.AddOf(x, y, gocas.N(1))
	b := gocas.AddOf(gocas.N(1), y, x)
	assertNode(t, a, b)
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestSum_Idempotent(t *testing.T) {
	s := gocas.AddOf(pow(x, 2), gocas.MulOf(gocas.N(-2), x), y)
	assertNode(t, s, gocas.AddOf(s))
	assertNode(t, s, gocas.AddOf(s, gocas.N(0)))
}

func TestSum_NegativeTermsPrint(t *testing.T) {
	assert.Equal(t, "x - 1", gocas.Sub(x, gocas.N(1)).String())
}

func TestSum_ImaginaryTermsPrint(t *testing.T) {
	assert.Equal(t, "x - 1/2*i", gocas.AddOf(x, gocas.MulOf(gocas.F(-1, 2), gocas.I())).String())
	assert.Equal(t, "x + 1/2*i", gocas.AddOf(x, gocas.MulOf(gocas.F(1, 2), gocas.I())).String())
	assert.NotContains(t, gocas.AddOf(x, gocas.MulOf(gocas.N(-3), gocas.I(), y)).String(), "+ -")
}

// ============================================================
// Product tests
// ============================================================

func TestProduct_ZeroCollapse(t *testing.T) {
	assert.True(t, gocas.IsZero(gocas.MulOf(x, y, gocas.N(0))))
}

func TestProduct_OneElide(t *testing.T) {
	assertNode(t, x, gocas.MulOf(gocas.N(1), x))
}

func TestProduct_PowersCombine(t *testing.T) {
	assertNode(t, pow(x, 3), gocas.MulOf(x, x, x))
	assertNode(t, gocas.N(1), gocas.MulOf(pow(x, 2), pow(x, -2)))
}

func TestProduct_Radicals(t *testing.T) {
	assertNode(t, gocas.N(4), gocas.MulOf(gocas.Sqrt(gocas.N(2)), gocas.Sqrt(gocas.N(8))))
}

func TestProduct_OrderIndependent(t *testing.T) {
	a := gocas.MulOf(gocas.N(2), x, gocas.AddOf(y, gocas.N(1)))
	b := gocas.MulOf(gocas.AddOf(gocas.N(1), y), x, gocas.N(2))
	assertNode(t, a, b)
}

// ============================================================
// Power tests
// ============================================================

func TestPower_Rules(t *testing.T) {
	assertNode(t, gocas.N(1), pow(x, 0))
	assertNode(t, x, pow(x, 1))
	assertNode(t, pow(x, 6), gocas.PowOf(pow(x, 2), gocas.N(3)))
	assertNode(t, gocas.N(1), gocas.PowOf(gocas.N(1), y))
}

func TestPower_ConstFolds(t *testing.T) {
	assertNode(t, gocas.N(1024), pow(gocas.N(2), 10))
	assertNode(t, gocas.F(1, 8), pow(gocas.N(2), -3))
}

func TestPower_ZeroNegativeExponent(t *testing.T) {
	_, err := gocas.Catch(func() gocas.Node { return pow(gocas.N(0), -1) })
	assert.ErrorIs(t, err, gocas.ErrDivisionByZero)
}

func TestPower_SqrtSimplifies(t *testing.T) {
	assertNode(t, gocas.MulOf(gocas.N(2), gocas.Sqrt(gocas.N(2))), gocas.Sqrt(gocas.N(8)))
	assertNode(t, gocas.N(3), gocas.Sqrt(gocas.N(9)))

	v, ok := gocas.Approx(gocas.Sqrt(gocas.N(-4)))
	require.True(t, ok)
	assert.InDelta(t, 0, real(v), 1e-12)
	assert.InDelta(t, 2, imag(v), 1e-12)
}

// ============================================================
// Arithmetic helpers
// ============================================================

func TestDiv_ByZero(t *testing.T) {
	_, err := gocas.Div(x, gocas.N(0))
	assert.ErrorIs(t, err, gocas.ErrDivisionByZero)
}

func TestDiv_Cancels(t *testing.T) {
	got, err := gocas.Div(gocas.Sub(pow(x, 2), gocas.N(1)), gocas.Sub(x, gocas.N(1)))
	require.NoError(t, err)
	assertNode(t, gocas.AddOf(x, gocas.N(1)), gocas.Expand(got))
}

func TestExpand_Square(t *testing.T) {
	got := gocas.Expand(pow(gocas.AddOf(x, gocas.N(1)), 2))
	assertNode(t, gocas.AddOf(pow(x, 2), gocas.MulOf(gocas.N(2), x), gocas.N(1)), got)
	assert.Equal(t, "x^2 + 2*x + 1", got.String())
}

func TestExpand_Idempotent(t *testing.T) {
	e := gocas.Expand(gocas.MulOf(gocas.AddOf(x, y), gocas.Sub(x, y)))
	assertNode(t, gocas.Sub(pow(x, 2), pow(y, 2)), e)
	assertNode(t, e, gocas.Expand(e))
}

func TestSubs(t *testing.T) {
	got, err := gocas.Subs(gocas.AddOf(pow(x, 2), y), map[string]gocas.Node{"x": gocas.N(2), "y": gocas.N(3)})
	require.NoError(t, err)
	assertNode(t, gocas.N(7), got)
}

func TestSubs_DivisionByZero(t *testing.T) {
	_, err := gocas.Substitute(pow(x, -1), "x", gocas.N(0))
	assert.ErrorIs(t, err, gocas.ErrDivisionByZero)
}

func TestApprox(t *testing.T) {
	v, ok := gocas.Approx(gocas.AddOf(gocas.Sqrt(gocas.N(2)), gocas.N(1)))
	require.True(t, ok)
	assert.InDelta(t, 1+math.Sqrt2, real(v), 1e-12)

	_, ok = gocas.Approx(x)
	assert.False(t, ok)
}

func TestSymbols(t *testing.T) {
	assert.Equal(t, []string{"x", "y", "z"}, gocas.Symbols(gocas.AddOf(gocas.MulOf(y, x), z)))
	assert.Empty(t, gocas.Symbols(gocas.N(3)))
	assert.True(t, gocas.Contains(gocas.MulOf(x, y), "y"))
}
