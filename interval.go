package gocas

import (
	"sort"
	"strings"
)

// ============================================================
// Sets
// ============================================================

// Set is the right side of a membership comparison: a *SolutionSet, an
// Interval or an *IntervalUnion.
type Set interface {
	String() string
	Contains(x Node) bool
	IsEmpty() bool
	set()
}

// Interval is a real interval; a nil endpoint is unbounded.
type Interval struct {
	Start, End         Node
	OpenStart, OpenEnd bool
}

// Reals is (-∞, ∞).
func Reals() Interval { return Interval{OpenStart: true, OpenEnd: true} }

// Point is the degenerate interval [x, x].
func Point(x Node) Interval { return Interval{Start: x, End: x} }

func (iv Interval) set() {}

func (iv Interval) String() string {
	var b strings.Builder
	if iv.Start == nil || iv.OpenStart {
		b.WriteString("(")
	} else {
		b.WriteString("[")
	}
	if iv.Start == nil {
		b.WriteString("-∞")
	} else {
		b.WriteString(iv.Start.String())
	}
	b.WriteString(", ")
	if iv.End == nil {
		b.WriteString("∞")
	} else {
		b.WriteString(iv.End.String())
	}
	if iv.End == nil || iv.OpenEnd {
		b.WriteString(")")
	} else {
		b.WriteString("]")
	}
	return b.String()
}

func (iv Interval) IsEmpty() bool {
	if iv.Start == nil || iv.End == nil {
		return false
	}
	c, err := compareNodes(iv.Start, iv.End)
	if err != nil {
		return false
	}
	return c > 0 || (c == 0 && (iv.OpenStart || iv.OpenEnd))
}

func (iv Interval) Contains(x Node) bool {
	if iv.Start != nil {
		c, err := compareNodes(x, iv.Start)
		if err != nil || c < 0 || (c == 0 && iv.OpenStart) {
			return false
		}
	}
	if iv.End != nil {
		c, err := compareNodes(x, iv.End)
		if err != nil || c > 0 || (c == 0 && iv.OpenEnd) {
			return false
		}
	}
	return true
}

// Intersect returns the overlap of two intervals, possibly empty.
func (iv Interval) Intersect(o Interval) Interval {
	out := iv
	if o.Start != nil {
		if out.Start == nil {
			out.Start, out.OpenStart = o.Start, o.OpenStart
		} else if c, _ := compareNodes(o.Start, out.Start); c > 0 {
			out.Start, out.OpenStart = o.Start, o.OpenStart
		} else if c == 0 {
			out.OpenStart = out.OpenStart || o.OpenStart
		}
	}
	if o.End != nil {
		if out.End == nil {
			out.End, out.OpenEnd = o.End, o.OpenEnd
		} else if c, _ := compareNodes(o.End, out.End); c < 0 {
			out.End, out.OpenEnd = o.End, o.OpenEnd
		} else if c == 0 {
			out.OpenEnd = out.OpenEnd || o.OpenEnd
		}
	}
	return out
}

// IntervalUnion is a sorted list of disjoint, non-touching intervals. The
// empty union prints as ∅.
type IntervalUnion struct {
	parts []Interval
}

// Union normalizes intervals into an IntervalUnion, merging overlapping
// and touching parts.
func Union(parts ...Interval) *IntervalUnion {
	var live []Interval
	for _, p := range parts {
		if !p.IsEmpty() {
			live = append(live, p)
		}
	}
	sort.SliceStable(live, func(i, j int) bool { return startBefore(live[i], live[j]) })
	var out []Interval
	for _, p := range live {
		if n := len(out); n > 0 && touches(out[n-1], p) {
			out[n-1] = hull(out[n-1], p)
			continue
		}
		out = append(out, p)
	}
	return &IntervalUnion{parts: out}
}

func startBefore(a, b Interval) bool {
	switch {
	case a.Start == nil:
		return b.Start != nil || (!a.OpenStart && b.OpenStart)
	case b.Start == nil:
		return false
	}
	c, _ := compareNodes(a.Start, b.Start)
	return c < 0 || (c == 0 && !a.OpenStart && b.OpenStart)
}

// touches reports whether b, starting no earlier than a, overlaps or abuts a.
func touches(a, b Interval) bool {
	if a.End == nil || b.Start == nil {
		return true
	}
	c, _ := compareNodes(b.Start, a.End)
	return c < 0 || (c == 0 && !(a.OpenEnd && b.OpenStart))
}

func hull(a, b Interval) Interval {
	out := a
	if a.End == nil || b.End == nil {
		out.End, out.OpenEnd = nil, true
		return out
	}
	c, _ := compareNodes(b.End, a.End)
	switch {
	case c > 0:
		out.End, out.OpenEnd = b.End, b.OpenEnd
	case c == 0:
		out.OpenEnd = a.OpenEnd && b.OpenEnd
	}
	return out
}

func (u *IntervalUnion) set() {}

func (u *IntervalUnion) Parts() []Interval { return append([]Interval(nil), u.parts...) }
func (u *IntervalUnion) IsEmpty() bool     { return len(u.parts) == 0 }

func (u *IntervalUnion) Contains(x Node) bool {
	for _, p := range u.parts {
		if p.Contains(x) {
			return true
		}
	}
	return false
}

// Intersect intersects every pair of parts.
func (u *IntervalUnion) Intersect(o *IntervalUnion) *IntervalUnion {
	var out []Interval
	for _, a := range u.parts {
		for _, b := range o.parts {
			out = append(out, a.Intersect(b))
		}
	}
	return Union(out...)
}

func (u *IntervalUnion) String() string {
	if len(u.parts) == 0 {
		return "∅"
	}
	parts := make([]string, len(u.parts))
	for i, p := range u.parts {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ∪ ")
}

// simplest returns the single interval when the union has one part.
func (u *IntervalUnion) simplest() Set {
	if len(u.parts) == 1 {
		return u.parts[0]
	}
	return u
}
