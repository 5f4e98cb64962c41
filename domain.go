package gocas

import (
	"errors"
	"sort"
)

// ============================================================
// Domains and inequalities
// ============================================================

// Restriction is the condition Expr Rel 0 under which an expression is a
// defined real: even-root radicands are ≥ 0, denominators are ≠ 0.
type Restriction struct {
	Expr Node
	Rel  Relation
}

func (r Restriction) String() string { return r.Expr.String() + " " + r.Rel.String() + " 0" }

// DomainRestrictions lists the restrictions n imposes on x.
func DomainRestrictions(n Node, x string) []Restriction {
	var out []Restriction
	seen := map[digest]bool{}
	add := func(e Node, rel Relation) {
		k := hashParts('r', []byte{byte(rel)}, digestBytes(e))
		if !seen[k] {
			seen[k] = true
			out = append(out, Restriction{Expr: e, Rel: rel})
		}
	}
	var walk func(n Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *Sum:
			for _, t := range v.terms {
				walk(t)
			}
		case *Product:
			for _, f := range v.factors {
				walk(f)
			}
		case *Power:
			walk(v.base)
			walk(v.exp)
			if !Contains(v.base, x) {
				return
			}
			e, ok := constValue(v.exp)
			if !ok || !e.IsReal() {
				return
			}
			if !e.IsInteger() && e.den.Bit(0) == 0 {
				add(v.base, RelGe)
			}
			if e.Negative() {
				add(v.base, RelNe)
			}
		}
	}
	walk(n)
	return out
}

func digestBytes(n Node) []byte {
	d := n.digest()
	return d[:]
}

// Domain is the set of real x where every node is defined.
func (s *Solver) Domain(x string, nodes ...Node) (Set, error) {
	if s.approx == nil {
		s = s.session()
	}
	dom := Union(Reals())
	for _, n := range nodes {
		if n == nil {
			continue
		}
		for _, r := range DomainRestrictions(n, x) {
			part, err := s.inequalitySet(x, Comparison{Left: r.Expr, Right: zero, Rel: r.Rel})
			if err != nil {
				return nil, err
			}
			dom = dom.Intersect(part)
		}
	}
	return dom.simplest(), nil
}

func (s *Solver) solveInequality(x string, c Comparison) (Statement, error) {
	set, err := s.inequalitySet(x, c)
	if err != nil {
		return nil, err
	}
	return Member(S(x), set.simplest()), nil
}

// inequalitySet splits the real line at the real roots of both sides and
// of every domain boundary, then keeps the points and open pieces where the
// relation holds.
func (s *Solver) inequalitySet(x string, c Comparison) (*IntervalUnion, error) {
	for _, n := range []Node{c.Left, c.Right} {
		if inExponent(n, x) {
			return nil, &DomainError{Op: "solve " + x, Reason: "unknown occurs in an exponent"}
		}
	}
	f := AddOf(c.Left, Neg(c.Right))
	for _, name := range Symbols(f) {
		if name != x {
			return nil, &DomainError{Op: "solve " + x, Reason: "inequality depends on " + name}
		}
	}
	test := func(p Node) bool { return s.holdsAt(x, c, p) }
	if !Contains(f, x) {
		if !test(zero) {
			return Union(), nil
		}
		if rs := DomainRestrictions(f, x); len(rs) == 0 {
			return Union(Reals()), nil
		}
	}

	var points []Node
	num, den := AsRatio(f)
	for _, g := range []Node{num, den} {
		if !Contains(g, x) {
			continue
		}
		rs, err := s.realRoots(x, g)
		if err != nil {
			return nil, err
		}
		points = append(points, rs...)
	}
	for _, r := range DomainRestrictions(f, x) {
		rs, err := s.realRoots(x, r.Expr)
		if err != nil {
			return nil, err
		}
		points = append(points, rs...)
	}
	points = sortPoints(points)
	s.record("split points", nil, NewSolutionSet(points...).statement(x))

	if len(points) == 0 {
		if test(zero) {
			return Union(Reals()), nil
		}
		return Union(), nil
	}
	var parts []Interval
	first := points[0]
	if test(Expand(Sub(first, one))) {
		parts = append(parts, Interval{End: first, OpenStart: true, OpenEnd: true})
	}
	for i, p := range points {
		if test(p) {
			parts = append(parts, Point(p))
		}
		if i+1 < len(points) {
			mid := Expand(MulOf(half, AddOf(p, points[i+1])))
			if test(mid) {
				parts = append(parts, Interval{Start: p, End: points[i+1], OpenStart: true, OpenEnd: true})
			}
		}
	}
	last := points[len(points)-1]
	if test(Expand(AddOf(last, one))) {
		parts = append(parts, Interval{Start: last, OpenStart: true, OpenEnd: true})
	}
	return Union(parts...), nil
}

// realRoots returns the real solutions of g = 0, none for an identity.
func (s *Solver) realRoots(x string, g Node) ([]Node, error) {
	cands, err := s.isolateZero(x, g, 0)
	if errors.Is(err, errIdentity) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []Node
	for _, r := range cands {
		if z, ok := Approx(r); ok && isRealApprox(z) {
			out = append(out, r)
		}
	}
	return out, nil
}

func sortPoints(points []Node) []Node {
	sort.SliceStable(points, func(i, j int) bool {
		c, err := compareNodes(points[i], points[j])
		return err == nil && c < 0
	})
	var out []Node
	for _, p := range points {
		if n := len(out); n > 0 {
			if c, err := compareNodes(out[n-1], p); err == nil && c == 0 {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// holdsAt evaluates c at x = p; undefined or non-real values do not hold.
func (s *Solver) holdsAt(x string, c Comparison, p Node) bool {
	m := map[string]Node{x: p}
	l, err := Subs(c.Left, m)
	if err != nil {
		return false
	}
	r, err := Subs(c.Right, m)
	if err != nil {
		return false
	}
	for _, n := range []Node{l, r} {
		if z, ok := Approx(n); !ok || !isRealApprox(z) {
			return false
		}
	}
	if s.approximate(p) && s.nearZero(Sub(l, r), termScale(m, c.Left, c.Right)) {
		return c.Rel.holds(0)
	}
	sign, ok := signOf(Sub(l, r))
	return ok && c.Rel.holds(sign)
}
