package gocas

import (
	"fmt"
	"math/big"
	"sort"
)

// ============================================================
// Gröbner bases
// ============================================================

// mterm is c·v0^e0·v1^e1… over a fixed variable list.
type mterm struct {
	exp []int
	c   Scalar
}

// mpoly keeps its terms in descending lex order, variables ranked in list
// order.
type mpoly []mterm

func lexCmp(a, b []int) int {
	for i := range a {
		switch {
		case a[i] > b[i]:
			return 1
		case a[i] < b[i]:
			return -1
		}
	}
	return 0
}

func (p mpoly) isZero() bool { return len(p) == 0 }

func (p mpoly) lead() mterm { return p[0] }

func (p mpoly) isConstant() bool {
	if len(p) != 1 {
		return false
	}
	for _, e := range p[0].exp {
		if e != 0 {
			return false
		}
	}
	return true
}

// add merges two sorted polynomials, dropping cancelled terms.
func (p mpoly) add(q mpoly) mpoly {
	out := make(mpoly, 0, len(p)+len(q))
	i, j := 0, 0
	for i < len(p) && j < len(q) {
		switch lexCmp(p[i].exp, q[j].exp) {
		case 1:
			out = append(out, p[i])
			i++
		case -1:
			out = append(out, q[j])
			j++
		default:
			if c := p[i].c.Add(q[j].c); !c.IsZero() {
				out = append(out, mterm{exp: p[i].exp, c: c})
			}
			i++
			j++
		}
	}
	out = append(out, p[i:]...)
	return append(out, q[j:]...)
}

// mulTerm multiplies by c·x^exp.
func (p mpoly) mulTerm(exp []int, c Scalar) mpoly {
	out := make(mpoly, len(p))
	for i, t := range p {
		e := make([]int, len(exp))
		for k := range exp {
			e[k] = t.exp[k] + exp[k]
		}
		out[i] = mterm{exp: e, c: t.c.Mul(c)}
	}
	return out
}

func (p mpoly) monic() mpoly {
	if p.isZero() || p.lead().c.IsOne() {
		return p
	}
	inv := ScalarInt(1).mustDiv(p.lead().c)
	return p.mulTerm(make([]int, len(p.lead().exp)), inv)
}

func expDivides(a, b []int) bool {
	for i := range a {
		if a[i] > b[i] {
			return false
		}
	}
	return true
}

func expSub(a, b []int) []int {
	out := make([]int, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

func expLCM(a, b []int) []int {
	out := make([]int, len(a))
	for i := range a {
		out[i] = a[i]
		if b[i] > out[i] {
			out[i] = b[i]
		}
	}
	return out
}

func coprime(a, b []int) bool {
	for i := range a {
		if a[i] > 0 && b[i] > 0 {
			return false
		}
	}
	return true
}

// spoly cancels the leading terms of monic f and g.
func spoly(f, g mpoly) mpoly {
	m := expLCM(f.lead().exp, g.lead().exp)
	a := f.mulTerm(expSub(m, f.lead().exp), ScalarInt(1).mustDiv(f.lead().c))
	b := g.mulTerm(expSub(m, g.lead().exp), ScalarInt(-1).mustDiv(g.lead().c))
	return a.add(b)
}

// reduce returns the full remainder of f by basis.
func reduce(f mpoly, basis []mpoly) mpoly {
	var rem mpoly
	for !f.isZero() {
		lt := f.lead()
		divided := false
		for _, g := range basis {
			if g.isZero() || !expDivides(g.lead().exp, lt.exp) {
				continue
			}
			c := lt.c.mustDiv(g.lead().c).Neg()
			f = f.add(g.mulTerm(expSub(lt.exp, g.lead().exp), c))
			divided = true
			break
		}
		if !divided {
			rem = append(rem, lt)
			f = f[1:]
		}
	}
	return rem
}

// buchberger completes polys to a reduced Gröbner basis, reducing at most
// maxPairs S-polynomials.
func buchberger(polys []mpoly, maxPairs int) ([]mpoly, error) {
	var g []mpoly
	for _, p := range polys {
		if p = reduce(p, g); !p.isZero() {
			g = append(g, p.monic())
		}
	}
	type pair struct{ i, j int }
	var pairs []pair
	for j := range g {
		for i := 0; i < j; i++ {
			pairs = append(pairs, pair{i, j})
		}
	}
	reduced := 0
	for len(pairs) > 0 {
		pr := pairs[0]
		pairs = pairs[1:]
		if coprime(g[pr.i].lead().exp, g[pr.j].lead().exp) {
			continue
		}
		if reduced++; reduced > maxPairs {
			return nil, fmt.Errorf("%w: gröbner basis exceeded %d pair reductions", ErrUnsolvable, maxPairs)
		}
		s := reduce(spoly(g[pr.i], g[pr.j]), g)
		if s.isZero() {
			continue
		}
		if s.isConstant() {
			return []mpoly{s.monic()}, nil
		}
		g = append(g, s.monic())
		for i := 0; i < len(g)-1; i++ {
			pairs = append(pairs, pair{i, len(g) - 1})
		}
	}
	return reduceBasis(g), nil
}

// reduceBasis drops redundant generators and interreduces the rest.
func reduceBasis(g []mpoly) []mpoly {
	var kept []mpoly
	for i, p := range g {
		redundant := false
		for j, q := range g {
			if i == j || !expDivides(q.lead().exp, p.lead().exp) {
				continue
			}
			if lexCmp(q.lead().exp, p.lead().exp) != 0 || j < i {
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, p)
		}
	}
	out := make([]mpoly, len(kept))
	for i, p := range kept {
		others := make([]mpoly, 0, len(kept)-1)
		others = append(others, kept[:i]...)
		others = append(others, kept[i+1:]...)
		out[i] = reduce(p, others).monic()
	}
	sort.SliceStable(out, func(i, j int) bool { return lexCmp(out[i].lead().exp, out[j].lead().exp) < 0 })
	return out
}

// toMpoly reads n as a polynomial over vars with numeric coefficients.
func toMpoly(n Node, vars []string) (mpoly, error) {
	index := make(map[string]int, len(vars))
	for i, v := range vars {
		index[v] = i
	}
	var p mpoly
	for _, t := range addends(Expand(n)) {
		exp := make([]int, len(vars))
		c := ScalarInt(1)
		for _, f := range factorsOf(t) {
			switch v := f.(type) {
			case *Const:
				c = c.Mul(v.v)
				continue
			case *Symbol:
				if i, ok := index[v.name]; ok {
					exp[i]++
					continue
				}
			case *Power:
				sym, isSym := v.base.(*Symbol)
				e, isConst := constValue(v.exp)
				if isSym && isConst {
					k, isInt := e.Int64()
					if i, ok := index[sym.name]; ok && isInt && k >= 0 {
						exp[i] += int(k)
						continue
					}
				}
			}
			return nil, fmt.Errorf("%w: %s is not a polynomial in %v", ErrMalformedInput, n, vars)
		}
		if !c.IsZero() {
			p = p.add(mpoly{{exp: exp, c: c}})
		}
	}
	return p, nil
}

// fromMpoly rebuilds a node with coprime Gaussian-integer coefficients and
// a positive leading coefficient.
func fromMpoly(p mpoly, vars []string) Node {
	if p.isZero() {
		return zero
	}
	den := big.NewInt(1)
	for _, t := range p {
		den = lcmInt(den, t.c.den)
	}
	scale := newScalar(den, new(big.Int), big.NewInt(1))
	content := new(big.Int)
	ints := make([]Scalar, len(p))
	for i, t := range p {
		ints[i] = t.c.Mul(scale)
		content.GCD(nil, nil, content, new(big.Int).Abs(ints[i].re))
		content.GCD(nil, nil, content, new(big.Int).Abs(ints[i].im))
	}
	lead := ints[0]
	if lead.re.Sign() < 0 || (lead.re.Sign() == 0 && lead.im.Sign() < 0) {
		content.Neg(content)
	}
	div := newScalar(content, new(big.Int), big.NewInt(1))
	terms := make([]Node, len(p))
	for i, t := range p {
		fs := []Node{C(ints[i].mustDiv(div))}
		for k, e := range t.exp {
			if e > 0 {
				fs = append(fs, PowOf(S(vars[k]), N(int64(e))))
			}
		}
		terms[i] = MulOf(fs...)
	}
	return AddOf(terms...)
}

// groebnerBasis returns the reduced lex basis of polys with vars ranked
// highest first. An inconsistent set yields [1].
func groebnerBasis(polys []Node, vars []string, maxPairs int) ([]Node, error) {
	ps := make([]mpoly, 0, len(polys))
	for _, n := range polys {
		p, err := toMpoly(n, vars)
		if err != nil {
			return nil, err
		}
		if !p.isZero() {
			ps = append(ps, p)
		}
	}
	if len(ps) == 0 {
		return nil, nil
	}
	g, err := buchberger(ps, maxPairs)
	if err != nil {
		return nil, err
	}
	out := make([]Node, len(g))
	for i, p := range g {
		out[i] = fromMpoly(p, vars)
	}
	return out, nil
}

// GroebnerBasis returns the reduced Gröbner basis of polys in lex order,
// vars[0] ranked highest. Elements come lowest leading monomial first, so
// the elements in the last variable alone lead the list.
func GroebnerBasis(polys []Node, vars []string) (basis []Node, err error) {
	defer recoverKernel(&err)
	if len(vars) == 0 {
		return nil, fmt.Errorf("%w: no variables", ErrMalformedInput)
	}
	return groebnerBasis(polys, vars, DefaultOptions().MaxGroebnerPairs)
}
