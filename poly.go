package gocas

import "fmt"

// ============================================================
// Polynomials
// ============================================================

// maxDivisionSteps bounds LongDivision; exceeding it is reported as a
// non-terminating division.
const maxDivisionSteps = 4096

// IsPolynomial reports whether n is a polynomial in its symbols with
// exact rational or Gaussian coefficients. Numeric radicals are not
// polynomial coefficients.
func IsPolynomial(n Node) bool {
	switch v := n.(type) {
	case *Const, *Symbol:
		return true
	case *Sum:
		for _, t := range v.terms {
			if !IsPolynomial(t) {
				return false
			}
		}
		return true
	case *Product:
		for _, f := range v.factors {
			if !IsPolynomial(f) {
				return false
			}
		}
		return true
	case *Power:
		e, ok := constValue(v.exp)
		if !ok || !e.IsInteger() || e.Negative() {
			return false
		}
		_, isConst := v.base.(*Const)
		return !isConst && IsPolynomial(v.base)
	}
	return false
}

// Degree is the total degree of a polynomial; ok is false otherwise.
func Degree(n Node) (int, bool) {
	switch v := n.(type) {
	case *Const:
		return 0, true
	case *Symbol:
		return 1, true
	case *Sum:
		d := 0
		for _, t := range v.terms {
			td, ok := Degree(t)
			if !ok {
				return 0, false
			}
			if td > d {
				d = td
			}
		}
		return d, true
	case *Product:
		d := 0
		for _, f := range v.factors {
			fd, ok := Degree(f)
			if !ok {
				return 0, false
			}
			d += fd
		}
		return d, true
	case *Power:
		e, ok := constValue(v.exp)
		if !ok {
			return 0, false
		}
		k, ok := e.Int64()
		if !ok || k < 0 {
			return 0, false
		}
		if _, isConst := v.base.(*Const); isConst {
			return 0, false
		}
		bd, ok := Degree(v.base)
		return bd * int(k), ok
	}
	return 0, false
}

// DegreeIn is the degree of n in symbol name, other symbols and
// unknown-free subterms counting as coefficients.
func DegreeIn(n Node, name string) (int, bool) {
	if !Contains(n, name) {
		return 0, true
	}
	switch v := n.(type) {
	case *Symbol:
		return 1, true
	case *Sum:
		d := 0
		for _, t := range v.terms {
			td, ok := DegreeIn(t, name)
			if !ok {
				return 0, false
			}
			if td > d {
				d = td
			}
		}
		return d, true
	case *Product:
		d := 0
		for _, f := range v.factors {
			fd, ok := DegreeIn(f, name)
			if !ok {
				return 0, false
			}
			d += fd
		}
		return d, true
	case *Power:
		if Contains(v.exp, name) {
			return 0, false
		}
		e, ok := constValue(v.exp)
		if !ok {
			return 0, false
		}
		k, ok := e.Int64()
		if !ok || k < 0 {
			return 0, false
		}
		bd, ok := DegreeIn(v.base, name)
		return bd * int(k), ok
	}
	return 0, false
}

func hasNegativeExponent(n Node) bool {
	for _, f := range factorsOf(n) {
		if p, ok := f.(*Power); ok && isNegativeExp(p.exp) {
			return true
		}
	}
	return false
}

// LongDivision divides polynomial a by b, returning quotient and remainder
// with q·b + r = a. At each step the first tied leading term of the
// remainder whose ratio to the divisor's leading term is a monomial is
// used. When none qualifies and the leading term has higher degree than
// the divisor's, the division is improper: (0, a, ErrNonTerminatingDivision).
func LongDivision(a, b Node) (q, r Node, err error) {
	defer recoverKernel(&err)
	if isZero(b) {
		return nil, nil, ErrDivisionByZero
	}
	a, b = Expand(a), Expand(b)
	if c, ok := constValue(b); ok {
		return MulOf(a, C(ScalarInt(1).mustDiv(c))), zero, nil
	}
	if !IsPolynomial(a) || !IsPolynomial(b) {
		return zero, a, ErrNonTerminatingDivision
	}
	lb := Leading(b)
	var quotient []Node
	r = a
	for step := 0; !isZero(r); step++ {
		if step == maxDivisionSteps {
			return zero, a, fmt.Errorf("%d steps: %w", step, ErrNonTerminatingDivision)
		}
		var ratio Node
		for _, t := range LeadingOptions(r) {
			if x := quo(t, lb); !hasNegativeExponent(x) {
				ratio = x
				break
			}
		}
		if ratio == nil {
			if orderDegree(Leading(r)) > orderDegree(lb) {
				return zero, a, ErrNonTerminatingDivision
			}
			break
		}
		quotient = append(quotient, ratio)
		r = AddOf(r, Neg(multiplyOut(ratio, b)))
	}
	return AddOf(quotient...), r, nil
}

// ============================================================
// Coefficient lists
// ============================================================

// Extract returns the coefficients of n as a polynomial in name, highest
// degree first. ok is false when n is not polynomial in name.
func Extract(n Node, name string) ([]Node, bool) {
	n = Expand(n)
	deg, ok := DegreeIn(n, name)
	if !ok {
		return nil, false
	}
	buckets := make([][]Node, deg+1)
	for _, t := range addends(n) {
		k, c, ok := splitMonomial(t, name)
		if !ok {
			return nil, false
		}
		buckets[deg-k] = append(buckets[deg-k], c)
	}
	out := make([]Node, deg+1)
	for i, b := range buckets {
		out[i] = AddOf(b...)
	}
	return out, true
}

// splitMonomial writes a term as c·name^k with c free of name.
func splitMonomial(t Node, name string) (int, Node, bool) {
	if !Contains(t, name) {
		return 0, t, true
	}
	k := 0
	var rest []Node
	for _, f := range factorsOf(t) {
		if !Contains(f, name) {
			rest = append(rest, f)
			continue
		}
		switch v := f.(type) {
		case *Symbol:
			k++
		case *Power:
			s, ok := v.base.(*Symbol)
			if !ok || s.name != name {
				return 0, nil, false
			}
			e, ok := constValue(v.exp)
			if !ok {
				return 0, nil, false
			}
			n, ok := e.Int64()
			if !ok || n < 0 {
				return 0, nil, false
			}
			k += int(n)
		default:
			return 0, nil, false
		}
	}
	return k, MulOf(rest...), true
}

// Rebuild is the inverse of Extract.
func Rebuild(name string, coeffs []Node) Node {
	x := S(name)
	deg := len(coeffs) - 1
	terms := make([]Node, 0, len(coeffs))
	for i, c := range coeffs {
		terms = append(terms, MulOf(c, PowOf(x, N(int64(deg-i)))))
	}
	return Expand(AddOf(terms...))
}

// SyntheticDivide divides the polynomial with coefficients coeffs by
// (x - r). A zero remainder means r is a root.
func SyntheticDivide(coeffs []Node, r Node) ([]Node, Node) {
	if len(coeffs) == 0 {
		return nil, zero
	}
	acc := coeffs[0]
	q := make([]Node, 0, len(coeffs)-1)
	for _, c := range coeffs[1:] {
		q = append(q, acc)
		acc = Expand(AddOf(c, MulOf(r, acc)))
	}
	return q, acc
}

// ============================================================
// Univariate Scalar polynomials, highest degree first
// ============================================================

func trimPoly(p []Scalar) []Scalar {
	i := 0
	for i < len(p)-1 && p[i].IsZero() {
		i++
	}
	return p[i:]
}

func polyIsZero(p []Scalar) bool {
	p = trimPoly(p)
	return len(p) == 0 || (len(p) == 1 && p[0].IsZero())
}

func polyDegree(p []Scalar) int { return len(trimPoly(p)) - 1 }

// Derivative differentiates a coefficient list.
func Derivative(p []Scalar) []Scalar {
	p = trimPoly(p)
	if len(p) <= 1 {
		return []Scalar{ScalarInt(0)}
	}
	n := len(p) - 1
	out := make([]Scalar, n)
	for i := 0; i < n; i++ {
		out[i] = p[i].Mul(ScalarInt(int64(n - i)))
	}
	return out
}

// PolyDivide divides coefficient lists; b must not be the zero polynomial.
func PolyDivide(a, b []Scalar) (q, r []Scalar, err error) {
	a, b = trimPoly(a), trimPoly(b)
	if polyIsZero(b) {
		return nil, nil, ErrDivisionByZero
	}
	r = append([]Scalar(nil), a...)
	if len(a) < len(b) {
		return []Scalar{ScalarInt(0)}, r, nil
	}
	q = make([]Scalar, len(a)-len(b)+1)
	lead := b[0]
	for i := range q {
		c, err := r[i].Div(lead)
		if err != nil {
			return nil, nil, err
		}
		q[i] = c
		for j := range b {
			r[i+j] = r[i+j].Sub(c.Mul(b[j]))
		}
	}
	rem := trimPoly(r[len(q):])
	if len(rem) == 0 {
		rem = []Scalar{ScalarInt(0)}
	}
	return q, rem, nil
}

// PolyGCD returns the monic gcd of two coefficient lists.
func PolyGCD(a, b []Scalar) []Scalar {
	a, b = trimPoly(a), trimPoly(b)
	for !polyIsZero(b) {
		_, r, err := PolyDivide(a, b)
		if err != nil {
			break
		}
		a, b = b, r
	}
	return monic(a)
}

func monic(p []Scalar) []Scalar {
	p = trimPoly(p)
	if polyIsZero(p) {
		return p
	}
	out := make([]Scalar, len(p))
	for i, c := range p {
		out[i] = c.mustDiv(p[0])
	}
	return out
}

func polySub(a, b []Scalar) []Scalar {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]Scalar, n)
	for i := range out {
		out[i] = ScalarInt(0)
	}
	for i, c := range a {
		out[n-len(a)+i] = out[n-len(a)+i].Add(c)
	}
	for i, c := range b {
		out[n-len(b)+i] = out[n-len(b)+i].Sub(c)
	}
	return trimPoly(out)
}

func exactPolyQuo(a, b []Scalar) []Scalar {
	q, _, err := PolyDivide(a, b)
	if err != nil {
		raise(err)
	}
	return q
}

// SquareFreePart is one factor of a square-free decomposition.
type SquareFreePart struct {
	Coeffs       []Scalar
	Multiplicity int
}

// SquareFree decomposes p into lc·∏ part^multiplicity with monic,
// square-free, pairwise coprime parts (Yun's algorithm).
func SquareFree(p []Scalar) (lc Scalar, parts []SquareFreePart) {
	p = trimPoly(p)
	if polyDegree(p) < 1 {
		if len(p) == 0 {
			return ScalarInt(0), nil
		}
		return p[0], nil
	}
	lc = p[0]
	a := monic(p)
	da := Derivative(a)
	b := PolyGCD(a, da)
	c := exactPolyQuo(a, b)
	d := polySub(exactPolyQuo(da, b), Derivative(c))
	for i := 1; polyDegree(c) > 0; i++ {
		g := PolyGCD(c, d)
		c = exactPolyQuo(c, g)
		d = polySub(exactPolyQuo(d, g), Derivative(c))
		if polyDegree(g) > 0 {
			parts = append(parts, SquareFreePart{Coeffs: g, Multiplicity: i})
		}
	}
	return lc, parts
}

// scalarCoeffs converts numeric coefficient nodes to Scalars.
func scalarCoeffs(cs []Node) ([]Scalar, bool) {
	out := make([]Scalar, len(cs))
	for i, c := range cs {
		v, ok := constValue(c)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func scalarNodes(cs []Scalar) []Node {
	out := make([]Node, len(cs))
	for i, c := range cs {
		out[i] = C(c)
	}
	return out
}
