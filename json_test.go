package gocas_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocas"
)

// ============================================================
// Node JSON
// ============================================================

func TestJSON_RoundTrip(t *testing.T) {
	for _, n := range []gocas.Node{
		gocas.AddOf(pow(x, 2), gocas.MulOf(gocas.N(2), x), gocas.N(1)),
		gocas.MulOf(gocas.F(3, 4), y, gocas.Sqrt(x)),
		gocas.AddOf(gocas.N(3), gocas.MulOf(gocas.N(2), gocas.I())),
		gocas.PowOf(x, y),
	} {
		js, err := gocas.ToJSON(n)
		require.NoError(t, err)
		back, err := gocas.ParseJSON([]byte(js))
		require.NoError(t, err, js)
		assertNode(t, n, back)
	}
}

func TestJSON_InMemoryMap(t *testing.T) {
	n := gocas.AddOf(pow(x, 2), gocas.N(1))
	back, err := gocas.FromJSON(gocas.NodeMap(n))
	require.NoError(t, err)
	assertNode(t, n, back)
}

func TestJSON_NumberForms(t *testing.T) {
	n, err := gocas.ParseJSON([]byte(`{"type":"num","value":"-3/4"}`))
	require.NoError(t, err)
	assertNode(t, gocas.F(-3, 4), n)

	n, err = gocas.ParseJSON([]byte(`{"type":"num","value":0.5,"imag":"2"}`))
	require.NoError(t, err)
	assert.Equal(t, "1/2 + 2i", n.String())
}

func TestJSON_Malformed(t *testing.T) {
	for _, in := range []string{
		`not json`,
		`{}`,
		`{"type":"sym"}`,
		`{"type":"num","value":"abc"}`,
		`{"type":"add","terms":{}}`,
		`{"type":"frob"}`,
		`{"type":"pow","base":{"type":"sym","name":"x"}}`,
	} {
		_, err := gocas.ParseJSON([]byte(in))
		assert.ErrorIs(t, err, gocas.ErrMalformedInput, in)
	}
}

func TestJSON_DivisionByZero(t *testing.T) {
	_, err := gocas.ParseJSON([]byte(`{"type":"pow","base":{"type":"num","value":"0"},"exp":{"type":"num","value":"-1"}}`))
	assert.ErrorIs(t, err, gocas.ErrDivisionByZero)
}

// ============================================================
// Statement JSON
// ============================================================

func roundTripStatement(t *testing.T, st gocas.Statement) gocas.Statement {
	t.Helper()
	b, err := json.Marshal(gocas.StatementMap(st))
	require.NoError(t, err)
	back, err := gocas.ParseStatementJSON(b)
	require.NoError(t, err, string(b))
	return back
}

func TestStatementJSON_Comparison(t *testing.T) {
	st := gocas.Le(gocas.AddOf(x, gocas.N(1)), pow(y, 2))
	back := roundTripStatement(t, st)
	c, ok := back.(gocas.Comparison)
	require.True(t, ok)
	assert.True(t, st.Equal(c))
}

func TestStatementJSON_Sets(t *testing.T) {
	for _, st := range []gocas.Statement{
		gocas.Member(x, gocas.NewSolutionSet(gocas.N(1), gocas.F(-5, 2))),
		gocas.Member(x, gocas.Interval{Start: gocas.N(-2), End: gocas.N(2), OpenStart: true, OpenEnd: true}),
		gocas.Member(x, gocas.Reals()),
		gocas.Member(x, gocas.Union(
			gocas.Interval{End: gocas.N(-2), OpenEnd: true},
			gocas.Interval{Start: gocas.N(2)},
		)),
	} {
		back := roundTripStatement(t, st)
		assert.Equal(t, st.String(), back.String())
	}
}

func TestStatementJSON_System(t *testing.T) {
	st := gocas.NewSystem(gocas.Eq(x, gocas.N(3)), gocas.Eq(y, gocas.N(2)))
	back := roundTripStatement(t, st)
	sys, ok := back.(*gocas.System)
	require.True(t, ok)
	v, ok := sys.Lookup("y")
	require.True(t, ok)
	assertNode(t, gocas.N(2), v)
}

func TestStatementJSON_Malformed(t *testing.T) {
	for _, in := range []string{
		`{"type":"cmp","left":{"type":"sym","name":"x"},"rel":"~","right":{"type":"num","value":1}}`,
		`{"type":"cmp","left":{"type":"sym","name":"x"},"rel":"in","set":{"type":"blob"}}`,
		`{"type":"system","members":[1]}`,
	} {
		_, err := gocas.ParseStatementJSON([]byte(in))
		assert.ErrorIs(t, err, gocas.ErrMalformedInput, in)
	}
}
