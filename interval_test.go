package gocas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/njchilds90/gocas"
)

// ============================================================
// Interval tests
// ============================================================

func TestInterval_String(t *testing.T) {
	assert.Equal(t, "(-∞, ∞)", gocas.Reals().String())
	assert.Equal(t, "[1, 2)", gocas.Interval{Start: gocas.N(1), End: gocas.N(2), OpenEnd: true}.String())
	assert.Equal(t, "[3, 3]", gocas.Point(gocas.N(3)).String())
}

func TestInterval_Contains(t *testing.T) {
	iv := gocas.Interval{Start: gocas.N(-2), End: gocas.N(2), OpenStart: true}
	assert.False(t, iv.Contains(gocas.N(-2)))
	assert.True(t, iv.Contains(gocas.N(2)))
	assert.True(t, iv.Contains(gocas.Sqrt(gocas.N(2))))
	assert.False(t, iv.Contains(gocas.N(3)))
	assert.True(t, gocas.Reals().Contains(gocas.N(1_000_000)))
}

func TestInterval_Empty(t *testing.T) {
	assert.True(t, gocas.Interval{Start: gocas.N(1), End: gocas.N(1), OpenEnd: true}.IsEmpty())
	assert.True(t, gocas.Interval{Start: gocas.N(2), End: gocas.N(1)}.IsEmpty())
	assert.False(t, gocas.Point(gocas.N(1)).IsEmpty())
}

func TestInterval_Intersect(t *testing.T) {
	a := gocas.Interval{Start: gocas.N(0), End: gocas.N(5)}
	b := gocas.Interval{Start: gocas.N(3), OpenStart: true}
	assert.Equal(t, "(3, 5]", a.Intersect(b).String())
}

func TestUnion_Merges(t *testing.T) {
	u := gocas.Union(
		gocas.Interval{Start: gocas.N(2), End: gocas.N(4), OpenStart: true, OpenEnd: true},
		gocas.Point(gocas.N(2)),
		gocas.Interval{End: gocas.N(-1), OpenEnd: true},
	)
	assert.Len(t, u.Parts(), 2)
	assert.Equal(t, "(-∞, -1) ∪ [2, 4)", u.String())
	assert.True(t, u.Contains(gocas.N(2)))
	assert.False(t, u.Contains(gocas.N(0)))
}

func TestUnion_Empty(t *testing.T) {
	u := gocas.Union(gocas.Interval{Start: gocas.N(1), End: gocas.N(0)})
	assert.True(t, u.IsEmpty())
	assert.Equal(t, "∅", u.String())
}

func TestSolutionSet(t *testing.T) {
	s := gocas.NewSolutionSet(gocas.N(2), gocas.N(1), gocas.N(2))
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains(gocas.N(1)))
	assert.False(t, s.Contains(gocas.N(3)))
	assert.True(t, gocas.NewSolutionSet().IsEmpty())
	assert.Equal(t, "∅", gocas.NewSolutionSet().String())
}
