package gocas

// ============================================================
// Polynomial roots
// ============================================================

// solvePolynomial finishes f = 0 once no structural move applies: expand,
// factor, then take roots by degree.
func (s *Solver) solvePolynomial(x string, f Node, depth int) ([]Node, error) {
	e := Expand(f)
	if !e.Equal(f) {
		s.record("expand", nil, Eq(e, zero))
	}
	coeffs, ok := Extract(e, x)
	if !ok {
		if g := s.factorer.Factor(e); !g.Equal(e) && !g.Equal(f) {
			s.record("simplify", nil, Eq(g, zero))
			return s.isolateZero(x, g, depth+1)
		}
		return nil, s.unsolvable(x, f, "not polynomial in "+x)
	}
	deg := len(coeffs) - 1
	switch deg {
	case 0:
		if isZero(coeffs[0]) {
			return nil, errIdentity
		}
		return nil, nil
	case 1:
		root := Expand(quo(Neg(coeffs[1]), coeffs[0]))
		s.record("divide", coeffs[0], Eq(S(x), root))
		return []Node{root}, nil
	}
	if !e.Equal(f) {
		if _, _, _, ok := powerForm(e, x); ok {
			return s.isolateZero(x, e, depth+1)
		}
	}
	if g := s.factorer.Factor(e); splits(g, x) {
		s.record("factor", nil, Eq(g, zero))
		return s.isolateZero(x, g, depth+1)
	}
	if deg == 2 {
		roots := quadraticRoots(coeffs[0], coeffs[1], coeffs[2])
		s.record("quadratic formula", nil, NewSolutionSet(roots...).statement(x))
		return roots, nil
	}
	if k, ok := disguisedQuadratic(coeffs); ok {
		return s.disguised(x, coeffs, k, depth)
	}
	cs, ok := scalarCoeffs(coeffs)
	if !ok {
		return nil, s.unsolvable(x, f, "no closed form for symbolic coefficients")
	}
	zs, err := NumericRoots(cs)
	if err != nil {
		return nil, err
	}
	roots := make([]Node, len(zs))
	for i, z := range zs {
		roots[i] = C(scalarFromComplex(z))
	}
	s.markApprox(roots...)
	s.record("approximate", nil, NewSolutionSet(roots...).statement(x))
	return roots, nil
}

// splits reports whether factoring produced at least two factors in x.
func splits(g Node, x string) bool {
	switch v := g.(type) {
	case *Product:
		n := 0
		for _, f := range v.factors {
			if Contains(f, x) {
				n++
			}
		}
		return n >= 2 || (n == 1 && isPowerIn(v, x))
	case *Power:
		return Contains(v.base, x)
	}
	return false
}

func isPowerIn(p *Product, x string) bool {
	for _, f := range p.factors {
		if pw, ok := f.(*Power); ok && Contains(pw.base, x) {
			return true
		}
	}
	return false
}

// quadraticRoots returns (-b ± √(b²-4ac)) / 2a, a single root when the
// discriminant vanishes.
func quadraticRoots(a, b, c Node) []Node {
	disc := Expand(Sub(PowOf(b, two), MulOf(N(4), a, c)))
	den := MulOf(two, a)
	if isZero(disc) {
		return []Node{Expand(quo(Neg(b), den))}
	}
	sq := Sqrt(disc)
	return []Node{
		Expand(quo(AddOf(Neg(b), sq), den)),
		Expand(quo(Sub(Neg(b), sq), den)),
	}
}

// disguisedQuadratic reports coefficients nonzero only at degrees 2k, k
// and 0 for some k ≥ 2.
func disguisedQuadratic(coeffs []Node) (int, bool) {
	deg := len(coeffs) - 1
	if deg%2 != 0 || deg < 4 {
		return 0, false
	}
	k := deg / 2
	for i, c := range coeffs {
		d := deg - i
		if d != 2*k && d != k && d != 0 && !isZero(c) {
			return 0, false
		}
	}
	return k, true
}

// disguised solves a·u² + b·u + c = 0 for u = x^k, then x^k = u.
func (s *Solver) disguised(x string, coeffs []Node, k, depth int) ([]Node, error) {
	deg := len(coeffs) - 1
	us := quadraticRoots(coeffs[0], coeffs[deg-k], coeffs[deg])
	s.record("substitute", PowOf(S(x), N(int64(k))), NewSolutionSet(us...).statement("u"))
	h := s.rec.OpenBranch(len(us))
	defer s.rec.CloseBranch()
	var out []Node
	for _, u := range us {
		h.Next()
		rs, err := s.isolate(x, Eq(PowOf(S(x), N(int64(k))), u), depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, rs...)
	}
	return out, nil
}

// statement renders candidate values as x ∈ {…} for the trace.
func (ss *SolutionSet) statement(x string) Statement { return Member(S(x), ss) }
