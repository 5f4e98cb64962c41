package gocas

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"math/cmplx"
)

// ============================================================
// Isolation state machine
// ============================================================

func isSymbol(n Node, name string) bool {
	s, ok := n.(*Symbol)
	return ok && s.name == name
}

func inExponent(n Node, x string) bool {
	switch v := n.(type) {
	case *Sum:
		for _, t := range v.terms {
			if inExponent(t, x) {
				return true
			}
		}
	case *Product:
		for _, f := range v.factors {
			if inExponent(f, x) {
				return true
			}
		}
	case *Power:
		return Contains(v.exp, x) || inExponent(v.base, x)
	}
	return false
}

func (s *Solver) unsolvable(x string, f Node, reason string) error {
	return &UnsolvableError{Unknown: x, Residual: Eq(f, zero), Reason: reason}
}

// isolate returns candidate values of x for the equation c. Candidates may
// include extraneous roots introduced by raising to powers.
func (s *Solver) isolate(x string, c Comparison, depth int) ([]Node, error) {
	if depth > s.opts.MaxSolveDepth {
		return nil, &UnsolvableError{Unknown: x, Residual: c, Reason: "depth ceiling reached"}
	}
	l, r := c.Left, c.Right
	if isSymbol(l, x) && !Contains(r, x) {
		s.record("isolated", nil, c)
		return []Node{r}, nil
	}
	if isSymbol(r, x) && !Contains(l, x) {
		s.record("reverse", nil, c.Reversed())
		return []Node{l}, nil
	}
	if inExponent(l, x) || inExponent(r, x) {
		return nil, &DomainError{Op: "isolate " + x, Reason: "unknown occurs in an exponent"}
	}
	f := AddOf(l, Neg(r))
	s.record("collect", nil, Eq(f, zero))
	return s.isolateZero(x, f, depth+1)
}

// isolateZero solves f = 0.
func (s *Solver) isolateZero(x string, f Node, depth int) ([]Node, error) {
	if depth > s.opts.MaxSolveDepth {
		return nil, s.unsolvable(x, f, "depth ceiling reached")
	}
	if !Contains(f, x) {
		if isZero(f) {
			return nil, errIdentity
		}
		if isConstant(f) {
			return nil, nil
		}
		if isZero(Expand(f)) {
			return nil, errIdentity
		}
		return nil, s.unsolvable(x, f, "unknown does not occur")
	}
	if num, den := AsRatio(f); !isOne(den) {
		s.record("multiply by denominator", den, Eq(num, zero))
		f = num
	}
	if p, ok := f.(*Product); ok {
		var keep, drop []Node
		for _, fac := range p.factors {
			if Contains(fac, x) {
				keep = append(keep, fac)
			} else {
				drop = append(drop, fac)
			}
		}
		if len(drop) > 0 {
			f = MulOf(keep...)
			s.record("divide", MulOf(drop...), Eq(f, zero))
		}
	}
	switch v := f.(type) {
	case *Symbol:
		return []Node{zero}, nil
	case *Product:
		return s.zeroProduct(x, v.factors, depth)
	case *Power:
		if e, ok := constValue(v.exp); ok && e.IsReal() && e.Sign() > 0 {
			s.record("drop exponent", v.exp, Eq(v.base, zero))
			return s.isolateZero(x, v.base, depth+1)
		}
		return nil, s.unsolvable(x, f, "power has no zero")
	}
	if rads := radicalsOf(f, x); len(rads) > 0 {
		return s.isolateRadicals(x, f, rads, depth)
	}
	if g, k, rhs, ok := powerForm(f, x); ok {
		return s.rootOfPower(x, g, k, rhs, depth)
	}
	return s.solvePolynomial(x, f, depth)
}

// zeroProduct splits a product into one branch per factor.
func (s *Solver) zeroProduct(x string, factors []Node, depth int) ([]Node, error) {
	h := s.rec.OpenBranch(len(factors))
	defer s.rec.CloseBranch()
	var out []Node
	for _, fac := range factors {
		h.Next()
		s.record("zero factor", nil, Eq(fac, zero))
		rs, err := s.isolateZero(x, fac, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, rs...)
	}
	return out, nil
}

// powerForm recognizes a·g^k + b with a and b free of x and integer k ≥ 2,
// returning g, k and -b/a.
func powerForm(f Node, x string) (g Node, k int64, rhs Node, ok bool) {
	var xTerm Node
	var rest []Node
	for _, t := range addends(f) {
		if Contains(t, x) {
			if xTerm != nil {
				return nil, 0, nil, false
			}
			xTerm = t
			continue
		}
		rest = append(rest, t)
	}
	if xTerm == nil {
		return nil, 0, nil, false
	}
	var coef []Node
	var pw *Power
	for _, fac := range factorsOf(xTerm) {
		if !Contains(fac, x) {
			coef = append(coef, fac)
			continue
		}
		p, isPow := fac.(*Power)
		if !isPow || pw != nil {
			return nil, 0, nil, false
		}
		pw = p
	}
	if pw == nil {
		return nil, 0, nil, false
	}
	e, isConst := constValue(pw.exp)
	if !isConst {
		return nil, 0, nil, false
	}
	k, isInt := e.Int64()
	if !isInt || k < 2 {
		return nil, 0, nil, false
	}
	return pw.base, k, quo(Neg(AddOf(rest...)), MulOf(coef...)), true
}

// rootOfPower solves g^k = rhs through every kth root of rhs.
func (s *Solver) rootOfPower(x string, g Node, k int64, rhs Node, depth int) ([]Node, error) {
	roots := s.kthRoots(rhs, k)
	branches := make([]Statement, len(roots))
	for i, r := range roots {
		branches[i] = Eq(g, r)
	}
	if len(branches) == 1 {
		s.record("root", N(k), branches[0])
		return s.isolate(x, branches[0].(Comparison), depth+1)
	}
	s.record("root", N(k), NewSystem(branches...))
	h := s.rec.OpenBranch(len(branches))
	defer s.rec.CloseBranch()
	var out []Node
	for _, b := range branches {
		h.Next()
		rs, err := s.isolate(x, b.(Comparison), depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, rs...)
	}
	return out, nil
}

// kthRoots returns the k solutions of u^k = c, splitting k into primes:
// u^(pm) = c gives v^p = c, then u^m = v for each v. Square and cube roots
// are exact. For a prime p ≥ 5 only the principal root is exact; the other
// p-1 are approximated when c is a number and omitted otherwise.
func (s *Solver) kthRoots(c Node, k int64) []Node {
	if k == 1 {
		return []Node{c}
	}
	p := smallestPrime(k)
	var vs []Node
	switch p {
	case 2:
		r := Sqrt(c)
		vs = []Node{r, Neg(r)}
	case 3:
		r := Root(c, 3)
		vs = []Node{r, Expand(MulOf(r, omega(1))), Expand(MulOf(r, omega(-1)))}
	default:
		r := Root(c, p)
		vs = []Node{r}
		if z, ok := Approx(r); ok && len(Symbols(c)) == 0 {
			for j := int64(1); j < p; j++ {
				w := C(scalarFromComplex(z * cmplx.Exp(complex(0, 2*math.Pi*float64(j)/float64(p)))))
				s.markApprox(w)
				vs = append(vs, w)
			}
		} else {
			s.log.Debug("non-real roots omitted", "root", p, "value", c.String())
		}
	}
	if k == p {
		return vs
	}
	var out []Node
	for _, v := range vs {
		if s.approximate(v) {
			out = append(out, s.approxRoots(v, k/p)...)
			continue
		}
		out = append(out, s.kthRoots(v, k/p)...)
	}
	return out
}

// approxRoots returns the m numeric solutions of u^m = v.
func (s *Solver) approxRoots(v Node, m int64) []Node {
	z, _ := Approx(v)
	r := cmplx.Pow(z, complex(1/float64(m), 0))
	out := make([]Node, m)
	for j := int64(0); j < m; j++ {
		out[j] = C(scalarFromComplex(r * cmplx.Exp(complex(0, 2*math.Pi*float64(j)/float64(m)))))
	}
	s.markApprox(out...)
	return out
}

// omega is the primitive cube root of unity (-1 + sign·i√3)/2.
func omega(sign int64) Node {
	return AddOf(F(-1, 2), MulOf(F(sign, 2), I(), Sqrt(N(3))))
}

func smallestPrime(k int64) int64 {
	for p := int64(2); p*p <= k; p++ {
		if k%p == 0 {
			return p
		}
	}
	return k
}

// ============================================================
// Radicals of the unknown
// ============================================================

// radical is base^(1/q) with every fractional power of base a power of it.
type radical struct {
	base Node
	q    int64
}

// radicalsOf collects the distinct radical bases containing x, each with
// the lcm of the roots taken of it.
func radicalsOf(f Node, x string) []radical {
	var out []radical
	index := map[digest]int{}
	var walk func(n Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *Sum:
			for _, t := range v.terms {
				walk(t)
			}
		case *Product:
			for _, fac := range v.factors {
				walk(fac)
			}
		case *Power:
			walk(v.base)
			e, ok := constValue(v.exp)
			if !ok || !e.IsReal() || e.IsInteger() || !Contains(v.base, x) || !e.den.IsInt64() {
				return
			}
			q := e.den.Int64()
			k := v.base.digest()
			if i, ok := index[k]; ok {
				out[i].q = lcmInt(big.NewInt(out[i].q), big.NewInt(q)).Int64()
				return
			}
			index[k] = len(out)
			out = append(out, radical{base: v.base, q: q})
		}
	}
	walk(f)
	return out
}

// liftRadical replaces base^(p/r) by t^(p·q/r), then clears negative
// powers of t.
func liftRadical(f Node, rad radical, t *Symbol) Node {
	var lift func(n Node) Node
	lift = func(n Node) Node {
		switch v := n.(type) {
		case *Sum:
			terms := make([]Node, len(v.terms))
			for i, x := range v.terms {
				terms[i] = lift(x)
			}
			return AddOf(terms...)
		case *Product:
			fs := make([]Node, len(v.factors))
			for i, x := range v.factors {
				fs[i] = lift(x)
			}
			return MulOf(fs...)
		case *Power:
			if v.base.Equal(rad.base) {
				if e, ok := constValue(v.exp); ok && e.IsReal() {
					k := e.Mul(ScalarInt(rad.q))
					if k.IsInteger() {
						return PowOf(t, C(k))
					}
				}
			}
			return PowOf(lift(v.base), v.exp)
		}
		return n
	}
	out := Expand(lift(f))
	low := 0
	for _, term := range addends(out) {
		if e := exponentOf(term, t.name); int(e) < low {
			low = int(e)
		}
	}
	if low < 0 {
		out = Expand(MulOf(out, PowOf(t, N(int64(-low)))))
	}
	return out
}

func auxName(i int) string { return fmt.Sprintf("_r%d", i+1) }

// isolateRadicals removes radicals of x: several radicals are eliminated
// together through a Gröbner basis; otherwise the radical is isolated and
// both sides raised to its root order.
func (s *Solver) isolateRadicals(x string, f Node, rads []radical, depth int) ([]Node, error) {
	if len(rads) > 1 {
		rs, err := s.eliminateRadicals(x, f, rads, depth)
		if err == nil || errors.Is(err, errIdentity) {
			return rs, err
		}
		s.log.Debug("radical elimination failed", "error", err)
	}
	rad := rads[0]
	t := S(auxName(0))
	ft := liftRadical(f, rad, t)
	coeffs, ok := Extract(ft, t.name)
	if !ok {
		return nil, s.unsolvable(x, f, "radical is not isolable")
	}
	if len(coeffs) != 2 {
		return s.eliminateRadicals(x, f, rads[:1], depth)
	}
	a, b := coeffs[0], coeffs[1]
	root := PowOf(rad.base, F(1, rad.q))
	s.record("isolate radical", root, Eq(root, quo(Neg(b), a)))
	g := Expand(Sub(MulOf(rad.base, PowOf(a, N(rad.q))), PowOf(Neg(b), N(rad.q))))
	s.record("raise", N(rad.q), Eq(g, zero))
	return s.isolateZero(x, g, depth+1)
}

// eliminateRadicals introduces t_i = base_i^(1/q_i) with t_i^q_i = base_i
// and takes the element of the lex Gröbner basis free of every t_i.
func (s *Solver) eliminateRadicals(x string, f Node, rads []radical, depth int) ([]Node, error) {
	ft := f
	var polys []Node
	var vars []string
	for i, rad := range rads {
		t := S(auxName(i))
		ft = liftRadical(ft, rad, t)
		polys = append(polys, Sub(PowOf(t, N(rad.q)), rad.base))
		vars = append(vars, t.name)
	}
	vars = append(vars, x)
	basis, err := groebnerBasis(append([]Node{ft}, polys...), vars, s.opts.MaxGroebnerPairs)
	if err != nil {
		return nil, err
	}
	for _, g := range basis {
		if syms := Symbols(g); len(syms) == 1 && syms[0] == x {
			s.record("eliminate radicals", nil, Eq(g, zero))
			return s.isolateZero(x, g, depth+1)
		}
	}
	return nil, s.unsolvable(x, f, "radicals could not be eliminated")
}
