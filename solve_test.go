package gocas_test

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocas"
)

func requireEq(t *testing.T, st gocas.Statement, name string, want gocas.Node) {
	t.Helper()
	c, ok := st.(gocas.Comparison)
	require.Truef(t, ok, "want comparison, got %T %s", st, st)
	require.Equal(t, gocas.RelEq, c.Rel)
	assertNode(t, gocas.S(name), c.Left)
	assertNode(t, want, c.Right)
}

func requireMember(t *testing.T, st gocas.Statement, name string) gocas.Set {
	t.Helper()
	c, ok := st.(gocas.Comparison)
	require.Truef(t, ok, "want comparison, got %T %s", st, st)
	require.Equal(t, gocas.RelIn, c.Rel)
	assertNode(t, gocas.S(name), c.Left)
	return c.Set
}

func lookup(t *testing.T, st gocas.Statement, name string) gocas.Node {
	t.Helper()
	sys, ok := st.(*gocas.System)
	require.Truef(t, ok, "want system, got %T %s", st, st)
	v, ok := sys.Lookup(name)
	require.Truef(t, ok, "%s not bound in %s", name, sys)
	return v
}

// ============================================================
// Linear and polynomial equations
// ============================================================

func TestSolve_Linear(t *testing.T) {
	st, err := gocas.SolveFor("x", gocas.Eq(gocas.AddOf(gocas.MulOf(gocas.N(5), x), gocas.N(3)), gocas.N(13)))
	require.NoError(t, err)
	requireEq(t, st, "x", gocas.N(2))
	assert.Equal(t, "x = 2", st.String())
}

func TestSolve_Quadratic(t *testing.T) {
	eq := gocas.Eq(gocas.AddOf(
		gocas.MulOf(gocas.N(2), pow(x, 2)),
		gocas.MulOf(gocas.N(3), x),
		gocas.N(-5),
	), gocas.N(0))
	st, err := gocas.SolveFor("x", eq)
	require.NoError(t, err)

	set := requireMember(t, st, "x").(*gocas.SolutionSet)
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains(gocas.N(1)))
	assert.True(t, set.Contains(gocas.F(-5, 2)))
}

func TestSolve_SquareRoots(t *testing.T) {
	st, err := gocas.SolveFor("x", gocas.Eq(pow(x, 2), gocas.N(4)))
	require.NoError(t, err)
	set := requireMember(t, st, "x").(*gocas.SolutionSet)
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains(gocas.N(-2)))
	assert.True(t, set.Contains(gocas.N(2)))
	assert.Equal(t, "{-2, 2}", set.String())
}

func TestSolve_ComplexRoots(t *testing.T) {
	st, err := gocas.SolveFor("x", gocas.Eq(gocas.AddOf(pow(x, 2), gocas.N(1)), gocas.N(0)))
	require.NoError(t, err)
	set := requireMember(t, st, "x").(*gocas.SolutionSet)
	require.Equal(t, 2, set.Len())
	var ims []float64
	for _, v := range set.Values() {
		z, ok := gocas.Approx(v)
		require.True(t, ok)
		assert.InDelta(t, 0, real(z), 1e-9)
		ims = append(ims, imag(z))
	}
	assert.InDelta(t, 0, ims[0]+ims[1], 1e-9)
	assert.InDelta(t, 1, ims[0]*ims[0], 1e-9)
}

// solutions lists the values of x in `x = v` or `x ∈ {…}`.
func solutions(t *testing.T, st gocas.Statement) []gocas.Node {
	t.Helper()
	c, ok := st.(gocas.Comparison)
	require.Truef(t, ok, "want comparison, got %T %s", st, st)
	if c.Rel == gocas.RelEq {
		return []gocas.Node{c.Right}
	}
	set, ok := c.Set.(*gocas.SolutionSet)
	require.Truef(t, ok, "want solution set, got %s", st)
	return set.Values()
}

// assertSatisfies substitutes each value back and checks both sides agree
// numerically.
func assertSatisfies(t *testing.T, c gocas.Comparison, vals []gocas.Node) {
	t.Helper()
	for _, v := range vals {
		m := map[string]gocas.Node{"x": v}
		l, err := gocas.Subs(c.Left, m)
		require.NoError(t, err)
		r, err := gocas.Subs(c.Right, m)
		require.NoError(t, err)
		zl, okL := gocas.Approx(l)
		zr, okR := gocas.Approx(r)
		require.True(t, okL && okR, v.String())
		scale := math.Max(1, math.Max(cmplx.Abs(zl), cmplx.Abs(zr)))
		assert.LessOrEqualf(t, cmplx.Abs(zl-zr), 1e-6*scale, "%s at x = %s", c, v)
	}
}

func realValues(t *testing.T, vals []gocas.Node) []float64 {
	t.Helper()
	var out []float64
	for _, v := range vals {
		z, ok := gocas.Approx(v)
		require.True(t, ok, v.String())
		if math.Abs(imag(z)) <= 1e-9 {
			out = append(out, real(z))
		}
	}
	return out
}

func TestSolve_CubeRoots(t *testing.T) {
	eq := gocas.Eq(pow(x, 3), gocas.N(2))
	st, err := gocas.SolveFor("x", eq)
	require.NoError(t, err)
	set := requireMember(t, st, "x").(*gocas.SolutionSet)
	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Contains(gocas.Root(gocas.N(2), 3)))
	assertSatisfies(t, eq, set.Values())
}

func TestSolve_AllRoots(t *testing.T) {
	tests := []struct {
		name  string
		eq    gocas.Comparison
		roots int
		reals int
	}{
		{"x^4 = -1", gocas.Eq(gocas.AddOf(pow(x, 4), gocas.N(1)), gocas.N(0)), 4, 0},
		{"x^3 = -1", gocas.Eq(gocas.AddOf(pow(x, 3), gocas.N(1)), gocas.N(0)), 3, 1},
		{"x^6 - 9x^3 + 8", gocas.Eq(gocas.AddOf(pow(x, 6), gocas.MulOf(gocas.N(-9), pow(x, 3)), gocas.N(8)), gocas.N(0)), 6, 2},
		{"x^5 = 2", gocas.Eq(pow(x, 5), gocas.N(2)), 5, 1},
		{"x^6 = 64", gocas.Eq(pow(x, 6), gocas.N(64)), 6, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := gocas.SolveFor("x", tt.eq)
			require.NoError(t, err)
			vals := solutions(t, st)
			assert.Len(t, vals, tt.roots)
			assert.Len(t, realValues(t, vals), tt.reals)
			assertSatisfies(t, tt.eq, vals)
		})
	}
}

func TestSolve_NumericFallback(t *testing.T) {
	tests := []struct {
		name  string
		eq    gocas.Comparison
		roots int
		real  float64
	}{
		{"x^3 - 2x - 5", gocas.Eq(gocas.AddOf(pow(x, 3), gocas.MulOf(gocas.N(-2), x), gocas.N(-5)), gocas.N(0)), 3, 2.0945514815423265},
		{"x^5 - x + 1", gocas.Eq(gocas.AddOf(pow(x, 5), gocas.Neg(x), gocas.N(1)), gocas.N(0)), 5, -1.1673039782614187},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &gocas.MemoryRecorder{}
			opts := gocas.DefaultOptions()
			opts.Recorder = rec
			st, err := gocas.NewSolver(opts).Solve([]string{"x"}, tt.eq)
			require.NoError(t, err)
			vals := solutions(t, st)
			assert.Len(t, vals, tt.roots)
			reals := realValues(t, vals)
			require.Len(t, reals, 1)
			assert.InDelta(t, tt.real, reals[0], 1e-9)
			assertSatisfies(t, tt.eq, vals)
			assert.Contains(t, rec.Render(), "approximate")
			assert.NotContains(t, rec.Render(), "reject extraneous")
		})
	}
}

func TestSolve_NumericFallbackHighDegree(t *testing.T) {
	eq := gocas.Eq(gocas.AddOf(pow(x, 30), gocas.MulOf(gocas.N(7), pow(x, 11)), gocas.N(-3)), gocas.N(0))
	st, err := gocas.SolveFor("x", eq)
	require.NoError(t, err)
	vals := solutions(t, st)
	assert.NotEmpty(t, vals)
	assert.NotEmpty(t, realValues(t, vals))
}

// Every reported root must satisfy its equation.
func TestSolve_Soundness(t *testing.T) {
	eqs := []gocas.Comparison{
		gocas.Eq(gocas.AddOf(gocas.MulOf(gocas.N(5), x), gocas.N(3)), gocas.N(13)),
		gocas.Eq(gocas.AddOf(gocas.MulOf(gocas.N(2), pow(x, 2)), gocas.MulOf(gocas.N(3), x)), gocas.N(5)),
		gocas.Eq(gocas.AddOf(pow(x, 2), gocas.N(1)), gocas.N(0)),
		gocas.Eq(gocas.AddOf(pow(x, 2), gocas.MulOf(gocas.I(), x)), gocas.N(2)),
		gocas.Eq(gocas.AddOf(pow(x, 4), gocas.MulOf(gocas.N(-5), pow(x, 2))), gocas.N(-4)),
		gocas.Eq(pow(gocas.AddOf(x, gocas.N(1)), 3), gocas.N(8)),
		gocas.Eq(gocas.Sqrt(x), gocas.Sub(x, gocas.N(2))),
		gocas.Eq(gocas.AddOf(pow(x, 3), gocas.MulOf(gocas.N(-2), x)), gocas.N(5)),
		gocas.Eq(gocas.MulOf(gocas.AddOf(x, gocas.N(1)), gocas.PowOf(gocas.Sub(x, gocas.N(1)), gocas.N(-1))), gocas.N(3)),
	}
	for _, eq := range eqs {
		t.Run(eq.String(), func(t *testing.T) {
			st, err := gocas.SolveFor("x", eq)
			require.NoError(t, err)
			vals := solutions(t, st)
			assert.NotEmpty(t, vals)
			assertSatisfies(t, eq, vals)
		})
	}
}

func TestSolve_Parametric(t *testing.T) {
	a, b := gocas.S("a"), gocas.S("b")
	st, err := gocas.SolveFor("x", gocas.Eq(gocas.AddOf(gocas.MulOf(a, x), b), gocas.N(0)))
	require.NoError(t, err)
	want, err := gocas.Div(gocas.Neg(b), a)
	require.NoError(t, err)
	requireEq(t, st, "x", want)
}

func TestSolve_Radical(t *testing.T) {
	rec := &gocas.MemoryRecorder{}
	opts := gocas.DefaultOptions()
	opts.Recorder = rec
	st, err := gocas.NewSolver(opts).Solve([]string{"x"}, gocas.Eq(gocas.Sqrt(x), gocas.Sub(x, gocas.N(2))))
	require.NoError(t, err)
	// x = 1 squares to a solution but fails the original equation.
	requireEq(t, st, "x", gocas.N(4))
	assert.Contains(t, rec.Render(), "reject extraneous")
}

func TestSolve_Identity(t *testing.T) {
	st, err := gocas.SolveFor("x", gocas.Eq(gocas.AddOf(x, gocas.N(1)), gocas.AddOf(x, gocas.N(1))))
	require.NoError(t, err)
	set := requireMember(t, st, "x")
	assert.Equal(t, "(-∞, ∞)", set.String())
}

func TestSolve_Contradiction(t *testing.T) {
	st, err := gocas.SolveFor("x", gocas.Eq(gocas.AddOf(x, gocas.N(1)), gocas.AddOf(x, gocas.N(2))))
	require.NoError(t, err)
	assert.True(t, requireMember(t, st, "x").IsEmpty())
}

func TestSolve_UnknownAbsent(t *testing.T) {
	_, err := gocas.SolveFor("z", gocas.Eq(x, gocas.N(1)))
	var ue *gocas.UnsolvableError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "z", ue.Unknown)
	assert.ErrorIs(t, err, gocas.ErrUnsolvable)
}

func TestSolve_Exponential(t *testing.T) {
	_, err := gocas.SolveFor("x", gocas.Eq(gocas.PowOf(gocas.N(2), x), gocas.N(8)))
	assert.ErrorIs(t, err, gocas.ErrDomain)
}

func TestSolve_NoUnknowns(t *testing.T) {
	_, err := gocas.Solve(nil, gocas.Eq(x, gocas.N(1)))
	assert.ErrorIs(t, err, gocas.ErrMalformedInput)
}

func TestSolve_Trace(t *testing.T) {
	rec := &gocas.MemoryRecorder{}
	opts := gocas.DefaultOptions()
	opts.Recorder = rec
	_, err := gocas.NewSolver(opts).Solve([]string{"x"}, gocas.Eq(gocas.AddOf(gocas.MulOf(gocas.N(5), x), gocas.N(3)), gocas.N(13)))
	require.NoError(t, err)
	assert.NotEmpty(t, rec.Lines())
}

// ============================================================
// Inequalities
// ============================================================

func TestSolve_InequalityAlwaysTrue(t *testing.T) {
	st, err := gocas.SolveFor("x", gocas.Gt(gocas.Sub(x, gocas.N(2)), gocas.Sub(x, gocas.N(4))))
	require.NoError(t, err)
	set := requireMember(t, st, "x")
	assert.True(t, set.Contains(gocas.N(-1000)))
	assert.Equal(t, "x ∈ (-∞, ∞)", st.String())
}

func TestSolve_InequalityBand(t *testing.T) {
	st, err := gocas.SolveFor("x", gocas.Lt(gocas.Sub(pow(x, 2), gocas.N(4)), gocas.N(0)))
	require.NoError(t, err)
	set := requireMember(t, st, "x")
	assert.Equal(t, "(-2, 2)", set.String())
	assert.True(t, set.Contains(gocas.N(0)))
	assert.False(t, set.Contains(gocas.N(2)))
}

func TestSolve_InequalityUnion(t *testing.T) {
	st, err := gocas.SolveFor("x", gocas.Ge(pow(x, 2), gocas.N(4)))
	require.NoError(t, err)
	set := requireMember(t, st, "x")
	assert.IsType(t, &gocas.IntervalUnion{}, set)
	assert.True(t, set.Contains(gocas.N(2)))
	assert.True(t, set.Contains(gocas.N(-3)))
	assert.False(t, set.Contains(gocas.N(0)))
}

func TestSolve_InequalityNever(t *testing.T) {
	st, err := gocas.SolveFor("x", gocas.Lt(gocas.AddOf(pow(x, 2), gocas.N(1)), gocas.N(0)))
	require.NoError(t, err)
	assert.True(t, requireMember(t, st, "x").IsEmpty())
}

func TestSolve_InequalityParameter(t *testing.T) {
	_, err := gocas.SolveFor("x", gocas.Lt(x, y))
	var de *gocas.DomainError
	assert.ErrorAs(t, err, &de)
}

func TestSolve_DomainOfRadical(t *testing.T) {
	s := gocas.NewSolver(gocas.DefaultOptions())
	dom, err := s.Domain("x", gocas.Sqrt(gocas.Sub(x, gocas.N(1))))
	require.NoError(t, err)
	assert.Equal(t, "[1, ∞)", dom.String())
}

// ============================================================
// Systems
// ============================================================

func TestSolveSystem_Linear(t *testing.T) {
	sys := gocas.NewSystem(
		gocas.Eq(gocas.AddOf(x, y), gocas.N(5)),
		gocas.Eq(gocas.MulOf(gocas.N(3), x), gocas.AddOf(gocas.MulOf(gocas.N(4), y), gocas.N(1))),
	)
	st, err := gocas.Solve([]string{"x", "y"}, sys)
	require.NoError(t, err)
	assertNode(t, gocas.N(3), lookup(t, st, "x"))
	assertNode(t, gocas.N(2), lookup(t, st, "y"))
}

func TestSolveSystem_Inconsistent(t *testing.T) {
	sys := gocas.NewSystem(
		gocas.Eq(gocas.AddOf(x, y), gocas.N(1)),
		gocas.Eq(gocas.AddOf(x, y), gocas.N(2)),
	)
	st, err := gocas.SolveSystem([]string{"x", "y"}, sys)
	require.NoError(t, err)
	require.IsType(t, &gocas.System{}, st)
	assert.Zero(t, st.(*gocas.System).Len())
	assert.Equal(t, "∅", st.String())
}

func TestSolveSystem_Nonlinear(t *testing.T) {
	sys := gocas.NewSystem(
		gocas.Eq(gocas.AddOf(x, y), gocas.N(3)),
		gocas.Eq(gocas.MulOf(x, y), gocas.N(2)),
	)
	st, err := gocas.Solve([]string{"x", "y"}, sys)
	require.NoError(t, err)
	branches := st.(*gocas.System).Members()
	require.Len(t, branches, 2)
	assertNode(t, gocas.N(1), lookup(t, branches[0], "x"))
	assertNode(t, gocas.N(2), lookup(t, branches[0], "y"))
	assertNode(t, gocas.N(2), lookup(t, branches[1], "x"))
	assertNode(t, gocas.N(1), lookup(t, branches[1], "y"))
}

func TestSolveSystem_NumericFallback(t *testing.T) {
	sys := gocas.NewSystem(
		gocas.Eq(y, x),
		gocas.Eq(gocas.AddOf(pow(x, 3), gocas.MulOf(gocas.N(-2), x)), gocas.N(5)),
	)
	st, err := gocas.Solve([]string{"x", "y"}, sys)
	require.NoError(t, err)
	branches := st.(*gocas.System).Members()
	require.Len(t, branches, 3)
	vx, ok := gocas.Approx(lookup(t, branches[0], "x"))
	require.True(t, ok)
	assert.InDelta(t, 2.0945514815423265, real(vx), 1e-9)
	assert.InDelta(t, 0, imag(vx), 1e-9)
	for _, b := range branches {
		assertNode(t, lookup(t, b, "x"), lookup(t, b, "y"))
	}
}

func TestComparison_PowAndRaise(t *testing.T) {
	st, err := gocas.Eq(pow(x, 2), gocas.N(9)).Pow(gocas.F(1, 2))
	require.NoError(t, err)
	sys, ok := st.(*gocas.System)
	require.True(t, ok)
	assert.Equal(t, 2, sys.Len())

	c := gocas.Eq(gocas.Sqrt(x), gocas.N(3)).Raise(2)
	assertNode(t, x, c.Left)
	assertNode(t, gocas.N(9), c.Right)

	_, err = gocas.Lt(x, gocas.N(1)).Pow(gocas.N(2))
	var de *gocas.DomainError
	assert.ErrorAs(t, err, &de)
}

func TestSolveSystem_UnknownMissing(t *testing.T) {
	_, err := gocas.Solve([]string{"x", "z"}, gocas.NewSystem(gocas.Eq(x, gocas.N(1)), gocas.Eq(y, gocas.N(2))))
	assert.ErrorIs(t, err, gocas.ErrMalformedInput)
}
