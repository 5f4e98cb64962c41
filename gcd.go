package gocas

import (
	"math/big"
	"sort"
)

// ============================================================
// GCD / LCM
// ============================================================

// FactorPower is one base^exp factor of a flattened product.
type FactorPower struct {
	Base Node
	Exp  Scalar
}

// FlattenFactors lists the factors of n with their numeric exponents. The
// numeric coefficient, if any, comes first with exponent 1.
func FlattenFactors(n Node) []FactorPower {
	var out []FactorPower
	for _, f := range factorsOf(n) {
		switch v := f.(type) {
		case *Power:
			if e, ok := constValue(v.exp); ok {
				out = append(out, FactorPower{Base: v.base, Exp: e})
				continue
			}
		}
		out = append(out, FactorPower{Base: f, Exp: ScalarInt(1)})
	}
	return out
}

// GCD returns the greatest common divisor of its arguments, normalized to a
// positive numeric content. Polynomial Sums use the Euclidean algorithm over
// LongDivision; other arguments intersect their factors.
func GCD(args ...Node) Node {
	var nonzero []Node
	for _, a := range args {
		if !isZero(a) {
			nonzero = append(nonzero, a)
		}
	}
	switch len(nonzero) {
	case 0:
		return zero
	case 1:
		return normalizeGCD(nonzero[0])
	}
	g := nonzero[0]
	for _, a := range nonzero[1:] {
		g = gcd2(g, a)
		if isOne(g) {
			return one
		}
	}
	return normalizeGCD(g)
}

func normalizeGCD(n Node) Node {
	switch v := n.(type) {
	case *Const:
		if v.v.IsReal() {
			a, _ := v.v.Abs()
			return C(a)
		}
		return one
	case *Sum:
		_, rest := sumContent(v)
		return rest
	}
	c, rest := Canonical(n)
	if c.Negative() {
		return scaleUnit(c.Neg(), rest)
	}
	return n
}

func gcd2(a, b Node) Node {
	if IsPolynomial(a) && IsPolynomial(b) {
		a, b = Expand(a), Expand(b)
		sa, aSum := a.(*Sum)
		sb, bSum := b.(*Sum)
		switch {
		case aSum && bSum:
			return euclid(sa, sb)
		case aSum:
			return intersectFactors(termContent(sa), b)
		case bSum:
			return intersectFactors(a, termContent(sb))
		}
	}
	return intersectFactors(a, b)
}

func euclid(a, b Node) Node {
	for step := 0; step < maxDivisionSteps; step++ {
		da, _ := Degree(a)
		db, _ := Degree(b)
		if da < db {
			a, b = b, a
		}
		_, r, err := LongDivision(a, b)
		switch {
		case err != nil:
			return one
		case isZero(r):
			return normalizeGCD(b)
		case r.Equal(a):
			return one
		case !isSum(r):
			return gcd2(b, r)
		}
		a, b = b, r
	}
	return one
}

// termContent is the common monomial of the terms of s, numeric content
// included.
func termContent(s *Sum) Node {
	c, _ := sumContent(s)
	a, _ := c.Abs()
	return MulOf(C(a), monomialContent(s))
}

// monomialContent is the largest symbol monomial dividing every term.
func monomialContent(n Node) Node {
	terms := addends(n)
	common := map[string]Scalar{}
	for i, t := range terms {
		exps := map[string]Scalar{}
		for _, f := range FlattenFactors(t) {
			if s, ok := f.Base.(*Symbol); ok && f.Exp.IsReal() && !f.Exp.Negative() {
				exps[s.name] = f.Exp
			}
		}
		if i == 0 {
			common = exps
			continue
		}
		for name, e := range common {
			o, ok := exps[name]
			if !ok {
				delete(common, name)
				continue
			}
			if c, _ := o.Cmp(e); c < 0 {
				common[name] = o
			}
		}
	}
	names := make([]string, 0, len(common))
	for name := range common {
		names = append(names, name)
	}
	sort.Strings(names)
	fs := make([]Node, 0, len(names))
	for _, name := range names {
		fs = append(fs, PowOf(S(name), C(common[name])))
	}
	return MulOf(fs...)
}

// intersectFactors takes each shared base at its minimum exponent and the
// gcd of the numeric coefficients.
func intersectFactors(a, b Node) Node {
	ca, ra := Canonical(a)
	cb, rb := Canonical(b)
	out := []Node{C(gcdScalar(ca, cb))}
	if isOne(ra) || isOne(rb) {
		return out[0]
	}
	fb := map[digest]FactorPower{}
	for _, f := range FlattenFactors(rb) {
		fb[f.Base.digest()] = f
	}
	for _, f := range FlattenFactors(ra) {
		o, ok := fb[f.Base.digest()]
		if !ok || !f.Exp.IsReal() || !o.Exp.IsReal() || f.Exp.Negative() || o.Exp.Negative() {
			continue
		}
		e := f.Exp
		if c, _ := o.Exp.Cmp(e); c < 0 {
			e = o.Exp
		}
		out = append(out, PowOf(f.Base, C(e)))
	}
	return MulOf(out...)
}

// gcdScalar is gcd(num)/lcm(den) for real rationals and 1 otherwise.
func gcdScalar(a, b Scalar) Scalar {
	if !a.IsReal() || !b.IsReal() {
		return ScalarInt(1)
	}
	switch {
	case a.IsZero():
		v, _ := b.Abs()
		return v
	case b.IsZero():
		v, _ := a.Abs()
		return v
	}
	num := new(big.Int).GCD(nil, nil, new(big.Int).Abs(a.re), new(big.Int).Abs(b.re))
	return newScalar(num, new(big.Int), lcmInt(a.den, b.den))
}

// LCM is the least common multiple, computed as a·b/gcd(a, b).
func LCM(args ...Node) Node {
	if len(args) == 0 {
		return one
	}
	l := args[0]
	for _, a := range args[1:] {
		l = lcm2(l, a)
	}
	return normalizeGCD(l)
}

func lcm2(a, b Node) Node {
	if isZero(a) || isZero(b) {
		return zero
	}
	g := GCD(a, b)
	if isOne(g) {
		return Expand(MulOf(a, b))
	}
	if q := exactQuotient(a, g); q != nil {
		return Expand(MulOf(q, b))
	}
	return quo(MulOf(a, b), g)
}

// CancelFactors divides a and b by their gcd.
func CancelFactors(a, b Node) (Node, Node) {
	g := GCD(a, b)
	if isOne(g) || isZero(g) {
		return a, b
	}
	qa, qb := exactQuotient(a, g), exactQuotient(b, g)
	if qa == nil || qb == nil {
		return quo(a, g), quo(b, g)
	}
	return qa, qb
}

// exactQuotient returns a/g when g divides a exactly, nil otherwise.
func exactQuotient(a, g Node) Node {
	if isOne(g) {
		return a
	}
	if c, ok := constValue(g); ok {
		if c.IsZero() {
			return nil
		}
		return MulOf(a, C(ScalarInt(1).mustDiv(c)))
	}
	q, r, err := LongDivision(a, g)
	if err != nil || !isZero(r) {
		return nil
	}
	return q
}
