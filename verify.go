package gocas

import (
	"math"
	"math/cmplx"
)

// sampleValues stand in for free parameters when a candidate can only be
// checked numerically.
var sampleValues = []Node{F(7, 3), F(-5, 11), F(13, 2)}

// approxSet holds the digests of values computed by the numeric fallback
// during one Solve or Domain call.
type approxSet map[digest]bool

// session returns a copy of s with its own approxSet.
func (s *Solver) session() *Solver {
	c := *s
	c.approx = approxSet{}
	return &c
}

func (s *Solver) markApprox(nodes ...Node) {
	if s.approx == nil {
		return
	}
	for _, n := range nodes {
		s.approx[n.digest()] = true
	}
}

func (s *Solver) approximate(nodes ...Node) bool {
	for _, n := range nodes {
		if n != nil && s.approx[n.digest()] {
			return true
		}
	}
	return false
}

// exactOnly makes balanced demand an exact zero from a constant residual.
const exactOnly = -1.0

// verify substitutes r for x in c and reports whether c still holds.
// Real candidates of a real equation must also lie in its domain.
func (s *Solver) verify(x string, c Comparison, r Node) bool {
	m := map[string]Node{x: r}
	l, err := Subs(c.Left, m)
	if err != nil {
		return false
	}
	rr, err := Subs(c.Right, m)
	if err != nil {
		return false
	}
	if z, ok := Approx(r); ok && isRealApprox(z) && !hasImaginary(c.Left) && !hasImaginary(c.Right) {
		if !s.inDomain(x, c, r) {
			return false
		}
	}
	scale := exactOnly
	if s.approximate(r) {
		scale = termScale(m, c.Left, c.Right)
	}
	return s.balanced(l, rr, scale)
}

// balanced reports whether l - r vanishes. A constant residual must be
// exactly zero when scale is exactOnly and within tolerance of scale
// otherwise; other residuals are checked numerically, with free parameters
// replaced by sample values. A residual that cannot be evaluated fails.
func (s *Solver) balanced(l, r Node, scale float64) bool {
	d := Expand(Sub(l, r))
	if v, ok := constValue(d); ok && scale < 0 {
		return v.IsZero()
	}
	params := Symbols(d)
	if len(params) == 0 {
		return s.nearZero(d, math.Max(scale, magnitude(l, r)))
	}
	checked := false
	for _, p := range sampleValues {
		pm := make(map[string]Node, len(params))
		for i, name := range params {
			pm[name] = AddOf(p, N(int64(i)))
		}
		pd, err := Subs(d, pm)
		if err != nil {
			continue
		}
		if _, ok := Approx(pd); !ok {
			continue
		}
		pl, _ := Subs(l, pm)
		pr, _ := Subs(r, pm)
		checked = true
		if !s.nearZero(pd, math.Max(scale, magnitude(pl, pr))) {
			return false
		}
	}
	if !checked {
		s.log.Debug("residual not checkable", "residual", d.String())
	}
	return checked
}

// nearZero compares d against the tolerance relative to scale.
func (s *Solver) nearZero(d Node, scale float64) bool {
	z, ok := Approx(d)
	if !ok {
		return false
	}
	return cmplx.Abs(z) <= s.opts.Tolerance*math.Max(1, scale)
}

// termScale is the largest magnitude among the expanded terms of nodes
// evaluated at m. Rounding in m shows up relative to it.
func termScale(m map[string]Node, nodes ...Node) float64 {
	scale := 0.0
	for _, n := range nodes {
		if n == nil {
			continue
		}
		e := Expand(n)
		terms := []Node{e}
		if sum, ok := e.(*Sum); ok {
			terms = sum.terms
		}
		for _, t := range terms {
			if v, err := Subs(t, m); err == nil {
				scale = math.Max(scale, magnitude(v))
			}
		}
	}
	return scale
}

func (s *Solver) inDomain(x string, c Comparison, r Node) bool {
	for _, n := range []Node{c.Left, c.Right} {
		for _, rs := range DomainRestrictions(n, x) {
			v, err := Substitute(rs.Expr, x, r)
			if err != nil {
				return false
			}
			sign, ok := signOf(v)
			if !ok {
				continue
			}
			if !rs.Rel.holds(sign) {
				return false
			}
		}
	}
	return true
}

func hasImaginary(n Node) bool {
	switch v := n.(type) {
	case *Const:
		return !v.v.IsReal()
	case *Sum:
		for _, t := range v.terms {
			if hasImaginary(t) {
				return true
			}
		}
	case *Product:
		for _, f := range v.factors {
			if hasImaginary(f) {
				return true
			}
		}
	case *Power:
		return hasImaginary(v.base) || hasImaginary(v.exp)
	}
	return false
}
