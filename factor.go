package gocas

import (
	"math/big"
	"sort"
)

// ============================================================
// Factoring
// ============================================================

// Factorer factors polynomials, memoizing per coefficient tuple. A
// Factorer is safe for concurrent use.
type Factorer struct {
	cache         *Cache[digest, factorResult]
	maxDegree     int
	maxCandidates int
}

type factorResult struct {
	node Node
	ok   bool
}

func NewFactorer(opts Options) *Factorer {
	opts = opts.withDefaults()
	f := &Factorer{maxDegree: opts.MaxFactorDegree, maxCandidates: opts.MaxRootCandidates}
	if !opts.DisableCache {
		f.cache = NewCache[digest, factorResult]()
	}
	return f
}

var defaultFactorer = NewFactorer(DefaultOptions())

// Factor factors n with the package Factorer.
func Factor(n Node) Node { return defaultFactorer.Factor(n) }

// FactorE is Factor with arithmetic failures returned as errors.
func FactorE(n Node) (Node, error) { return defaultFactorer.FactorE(n) }

func (f *Factorer) FactorE(n Node) (out Node, err error) {
	defer recoverKernel(&err)
	return f.Factor(n), nil
}

// Simplify expands then factors.
func Simplify(n Node) Node { return defaultFactorer.Factor(Expand(n)) }

// CacheStats reports the package Factorer's memo table size.
func CacheStats() (entries int, hits, misses int64) {
	return defaultFactorer.Stats()
}

func (f *Factorer) Stats() (entries int, hits, misses int64) {
	h, m := f.cache.Stats()
	return f.cache.Len(), h, m
}

// Factor rewrites n as a product of irreducible factors over the
// rationals where the rational root theorem finds them. Products and
// powers are factored piecewise; non-polynomial Sums are returned as is.
func (f *Factorer) Factor(n Node) Node {
	switch v := n.(type) {
	case *Sum:
		return f.factorSum(v)
	case *Product:
		fs := make([]Node, len(v.factors))
		for i, x := range v.factors {
			fs[i] = f.Factor(x)
		}
		return MulOf(fs...)
	case *Power:
		return PowOf(f.Factor(v.base), v.exp)
	}
	return n
}

func (f *Factorer) factorSum(s *Sum) Node {
	if !IsPolynomial(s) {
		return s
	}
	c, prim := sumContent(s)
	var body Node = prim
	m := monomialContent(prim)
	if !isOne(m) {
		if q := exactQuotient(prim, m); q != nil {
			body = q
		} else {
			m = one
		}
	}
	if ps, ok := body.(*Sum); ok {
		body = f.pickBest(ps)
	}
	return MulOf(C(c), m, body)
}

// pickBest tries each variable, smallest degree footprint first, and
// keeps the first that splits p.
func (f *Factorer) pickBest(p *Sum) Node {
	for _, v := range footprintOrder(p) {
		if r, ok := f.factorIn(p, v); ok {
			return r
		}
	}
	return p
}

func footprintOrder(p *Sum) []string {
	names := Symbols(p)
	deg := map[string]int{}
	uses := map[string]int{}
	for _, v := range names {
		deg[v], _ = DegreeIn(p, v)
		for _, t := range p.terms {
			if Contains(t, v) {
				uses[v]++
			}
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		a, b := names[i], names[j]
		if deg[a] != deg[b] {
			return deg[a] < deg[b]
		}
		if uses[a] != uses[b] {
			return uses[a] < uses[b]
		}
		return a < b
	})
	return names
}

func factorKey(v string, coeffs []Node) digest {
	parts := make([][]byte, 0, len(coeffs)+1)
	parts = append(parts, []byte(v))
	for _, c := range coeffs {
		d := c.digest()
		parts = append(parts, d[:])
	}
	return hashParts('f', parts...)
}

// factorIn factors p viewed as a polynomial in v. ok is false when no
// proper factorization was found.
func (f *Factorer) factorIn(p *Sum, v string) (Node, bool) {
	coeffs, ok := Extract(p, v)
	if !ok || len(coeffs)-1 > f.maxDegree || len(coeffs) < 2 {
		return nil, false
	}
	key := factorKey(v, coeffs)
	if r, ok := f.cache.Get(key); ok {
		return r.node, r.ok
	}
	node, ok := f.dfs(p, v, coeffs)
	f.cache.Put(key, factorResult{node: node, ok: ok})
	return node, ok
}

func (f *Factorer) dfs(p *Sum, v string, coeffs []Node) (Node, bool) {
	if content := GCD(coeffs...); !isConstant(content) {
		q := exactQuotient(p, content)
		if q == nil {
			return nil, false
		}
		return MulOf(f.Factor(content), f.Factor(q)), true
	}
	var factors []Node
	if cs, ok := scalarCoeffs(coeffs); ok {
		factors = f.univariate(cs, v)
	} else {
		factors = f.symbolicRoots(coeffs, v)
	}
	if len(factors) < 2 {
		return nil, false
	}
	prod := Expand(MulOf(factors...))
	k := exactQuotient(p, prod)
	if k == nil || !isConstant(k) {
		return nil, false
	}
	return MulOf(append(factors, k)...), true
}

// univariate splits a numeric polynomial into square-free parts, then
// pulls rational linear factors out of each part.
func (f *Factorer) univariate(cs []Scalar, v string) []Node {
	x := S(v)
	_, parts := SquareFree(cs)
	var out []Node
	for _, part := range parts {
		roots, rest := f.rationalRoots(integerPoly(part.Coeffs))
		var pieces []Node
		for _, r := range roots {
			pieces = append(pieces, linearFactor(x, r))
		}
		if polyDegree(rest) > 0 {
			pieces = append(pieces, Rebuild(v, scalarNodes(integerPoly(rest))))
		}
		for _, piece := range pieces {
			for i := 0; i < part.Multiplicity; i++ {
				out = append(out, piece)
			}
		}
	}
	return out
}

// linearFactor is q·x - p for the root p/q.
func linearFactor(x Node, r Scalar) Node {
	return AddOf(MulOf(C(newScalar(r.Den(), new(big.Int), big.NewInt(1))), x), C(newScalar(r.Num(), new(big.Int), big.NewInt(1)).Neg()))
}

// integerPoly scales a rational coefficient list to primitive integers.
func integerPoly(p []Scalar) []Scalar {
	p = trimPoly(p)
	if polyIsZero(p) {
		return p
	}
	den := new(bigIntAcc)
	for _, c := range p {
		if !c.IsReal() {
			return p
		}
		den.lcm(c.den)
	}
	scale := newScalar(den.value(), new(big.Int), big.NewInt(1))
	num := new(bigIntAcc)
	out := make([]Scalar, len(p))
	for i, c := range p {
		out[i] = c.Mul(scale)
		num.gcd(out[i].re)
	}
	g := newScalar(num.value(), new(big.Int), big.NewInt(1))
	if out[0].Negative() {
		g = g.Neg()
	}
	for i := range out {
		out[i] = out[i].mustDiv(g)
	}
	return out
}

// RationalRoots returns every rational root of p with multiplicity and the
// cofactor left once they are divided out.
func RationalRoots(p []Scalar) (roots, rest []Scalar) {
	return defaultFactorer.rationalRoots(integerPoly(p))
}

func (f *Factorer) rationalRoots(p []Scalar) (roots, rest []Scalar) {
	p = trimPoly(p)
	for len(p) > 1 && p[len(p)-1].IsZero() {
		roots = append(roots, ScalarInt(0))
		p = p[:len(p)-1]
	}
	if len(p) < 2 {
		return roots, p
	}
	for _, c := range p {
		if !c.IsInteger() {
			return roots, p
		}
	}
	lead, trail := p[0], p[len(p)-1]
	tried := 0
	seen := map[string]bool{}
	for _, num := range intDivisors(trail.re, f.maxCandidates) {
		for _, den := range intDivisors(lead.re, f.maxCandidates) {
			for _, sign := range []int64{1, -1} {
				if len(p) <= 2 {
					break
				}
				r := newScalar(new(big.Int).Mul(num, big.NewInt(sign)), new(big.Int), new(big.Int).Set(den))
				if seen[r.String()] {
					continue
				}
				seen[r.String()] = true
				if tried++; tried > f.maxCandidates {
					return roots, p
				}
				for len(p) > 2 {
					q, rem := syntheticScalar(p, r)
					if !rem.IsZero() {
						break
					}
					roots = append(roots, r)
					p = q
				}
			}
		}
	}
	if len(p) == 2 {
		roots = append(roots, p[1].Neg().mustDiv(p[0]))
		p = p[:1]
	}
	return roots, p
}

func syntheticScalar(p []Scalar, r Scalar) ([]Scalar, Scalar) {
	acc := p[0]
	q := make([]Scalar, 0, len(p)-1)
	for _, c := range p[1:] {
		q = append(q, acc)
		acc = c.Add(r.Mul(acc))
	}
	return q, acc
}

// intDivisors lists the positive divisors of n, at most limit of them.
func intDivisors(n *big.Int, limit int) []*big.Int {
	a := new(big.Int).Abs(n)
	if a.Sign() == 0 {
		return []*big.Int{big.NewInt(1)}
	}
	var small, large []*big.Int
	if !a.IsInt64() {
		return []*big.Int{big.NewInt(1), a}
	}
	m := a.Int64()
	for d := int64(1); d*d <= m && len(small)+len(large) < limit; d++ {
		if m%d == 0 {
			small = append(small, big.NewInt(d))
			if d*d != m {
				large = append(large, big.NewInt(m/d))
			}
		}
	}
	for i := len(large) - 1; i >= 0; i-- {
		small = append(small, large[i])
	}
	return small
}

// symbolicRoots finds linear factors x - r where r divides the trailing
// coefficient over the leading one, coefficients being polynomials in the
// other symbols.
func (f *Factorer) symbolicRoots(coeffs []Node, v string) []Node {
	x := S(v)
	var out []Node
	for len(coeffs) > 1 && isZero(coeffs[len(coeffs)-1]) {
		out = append(out, x)
		coeffs = coeffs[:len(coeffs)-1]
	}
	nums := f.divisors(coeffs[len(coeffs)-1])
	dens := f.divisors(coeffs[0])
	tried := 0
	seen := map[digest]bool{}
	for _, n := range nums {
		for _, d := range dens {
			for _, sign := range []Node{one, negOne} {
				if len(coeffs) <= 2 {
					break
				}
				r := quo(MulOf(sign, n), d)
				if seen[r.digest()] {
					continue
				}
				seen[r.digest()] = true
				if tried++; tried > f.maxCandidates {
					return out
				}
				for len(coeffs) > 2 {
					q, rem := SyntheticDivide(coeffs, r)
					if !isZero(rem) {
						break
					}
					out = append(out, Expand(AddOf(MulOf(d, x), Neg(MulOf(sign, n)))))
					// x - r = (d·x - n)/d, so the cofactor carries 1/d.
					for i := range q {
						q[i] = Expand(quo(q[i], d))
					}
					coeffs = q
				}
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	if len(coeffs) >= 2 {
		out = append(out, Rebuild(v, coeffs))
	}
	return out
}

// Divisors lists the monic divisors of a factored polynomial coefficient:
// integer divisors of its content times every sub-product of its factors.
func Divisors(n Node) []Node { return defaultFactorer.divisors(n) }

func (f *Factorer) divisors(n Node) []Node {
	if isZero(n) {
		return []Node{one}
	}
	c, rest := Canonical(f.Factor(n))
	var out []Node
	for _, d := range intDivisors(c.re, f.maxCandidates) {
		out = append(out, C(newScalar(d, new(big.Int), big.NewInt(1))))
	}
	if isOne(rest) {
		return out
	}
	for _, fp := range FlattenFactors(rest) {
		k, ok := fp.Exp.Int64()
		if !ok || k < 0 {
			k = 1
		}
		next := make([]Node, 0, len(out)*int(k+1))
		for _, d := range out {
			for e := int64(0); e <= k; e++ {
				next = append(next, MulOf(d, PowOf(fp.Base, N(e))))
				if len(next) >= f.maxCandidates {
					return next
				}
			}
		}
		out = next
	}
	return out
}
