package gocas

import "math/big"

// ============================================================
// Arithmetic helpers
// ============================================================

// Canonical splits n into its numeric coefficient and the unit-coefficient
// rest. Constants return rest 1.
func Canonical(n Node) (Scalar, Node) {
	switch v := n.(type) {
	case *Const:
		return v.v, one
	case *Product:
		c, ok := v.factors[0].(*Const)
		if !ok {
			return ScalarInt(1), n
		}
		rest := v.factors[1:]
		if len(rest) == 1 {
			return c.v, rest[0]
		}
		return c.v, newProduct(rest)
	}
	return ScalarInt(1), n
}

// scaleUnit rebuilds c·rest for a rest produced by Canonical.
func scaleUnit(c Scalar, rest Node) Node {
	switch {
	case c.IsZero():
		return zero
	case isOne(rest):
		return C(c)
	case c.IsOne():
		return rest
	}
	switch v := rest.(type) {
	case *Product:
		return newProduct(append([]Node{C(c)}, v.factors...))
	case *Sum:
		return scaleSum(v, c)
	}
	return newProduct([]Node{C(c), rest})
}

func scaleTerm(t Node, c Scalar) Node {
	k, rest := Canonical(t)
	return scaleUnit(k.Mul(c), rest)
}

func Neg(n Node) Node    { return MulOf(negOne, n) }
func Sub(a, b Node) Node { return AddOf(a, Neg(b)) }

// Div returns a/b; a zero divisor is ErrDivisionByZero.
func Div(a, b Node) (Node, error) {
	if isZero(b) {
		return nil, ErrDivisionByZero
	}
	return Catch(func() Node { return MulOf(a, PowOf(b, negOne)) })
}

func quo(a, b Node) Node { return MulOf(a, PowOf(b, negOne)) }

// multiplyOut distributes a over b one level deep.
func multiplyOut(a, b Node) Node {
	as, bs := addends(a), addends(b)
	if len(as) == 1 && len(bs) == 1 {
		return MulOf(a, b)
	}
	out := make([]Node, 0, len(as)*len(bs))
	for _, x := range as {
		for _, y := range bs {
			out = append(out, MulOf(x, y))
		}
	}
	return AddOf(out...)
}

func addends(n Node) []Node {
	if s, ok := n.(*Sum); ok {
		return s.terms
	}
	return []Node{n}
}

func factorsOf(n Node) []Node {
	if p, ok := n.(*Product); ok {
		return p.factors
	}
	return []Node{n}
}

// AsRatio splits n into numerator and denominator, the denominator
// collecting every factor with a negative exponent.
func AsRatio(n Node) (num, den Node) {
	switch v := n.(type) {
	case *Power:
		if isNegativeExp(v.exp) {
			return one, PowOf(v.base, Neg(v.exp))
		}
	case *Product:
		var ns, ds []Node
		for _, f := range v.factors {
			if p, ok := f.(*Power); ok && isNegativeExp(p.exp) {
				ds = append(ds, PowOf(p.base, Neg(p.exp)))
				continue
			}
			ns = append(ns, f)
		}
		if len(ds) == 0 {
			return n, one
		}
		return MulOf(ns...), MulOf(ds...)
	}
	return n, one
}

func isNegativeExp(e Node) bool {
	c, _ := Canonical(e)
	return c.Negative()
}

// bigIntAcc folds gcd or lcm over integers; an empty accumulator reads 1.
type bigIntAcc struct{ v *big.Int }

func (a *bigIntAcc) gcd(x *big.Int) {
	ax := new(big.Int).Abs(x)
	if a.v == nil {
		a.v = ax
		return
	}
	a.v.GCD(nil, nil, a.v, ax)
}

func (a *bigIntAcc) lcm(x *big.Int) {
	if a.v == nil {
		a.v = new(big.Int).Abs(x)
		return
	}
	a.v = lcmInt(a.v, x)
}

func (a *bigIntAcc) value() *big.Int {
	if a.v == nil || a.v.Sign() == 0 {
		return big.NewInt(1)
	}
	return a.v
}
