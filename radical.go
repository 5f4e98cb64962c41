package gocas

import (
	"math"
	"math/big"
	"math/cmplx"
)

// ============================================================
// Radicals
// ============================================================

var imagUnit = Scalar{re: new(big.Int), im: big.NewInt(1), den: big.NewInt(1)}

// trialLimit bounds trial division; a cofactor left over above it is kept
// whole under the radical, which is still exact.
const trialLimit = 1 << 20

type primePower struct {
	p *big.Int
	e int
}

func factorInt(n *big.Int) []primePower {
	if n.Cmp(bigOne) <= 0 {
		return nil
	}
	if n.BitLen() > 62 {
		return []primePower{{p: new(big.Int).Set(n), e: 1}}
	}
	m := n.Uint64()
	var out []primePower
	take := func(d uint64) {
		e := 0
		for m%d == 0 {
			m /= d
			e++
		}
		if e > 0 {
			out = append(out, primePower{p: new(big.Int).SetUint64(d), e: e})
		}
	}
	take(2)
	for d := uint64(3); d*d <= m && d < trialLimit; d += 2 {
		take(d)
	}
	if m > 1 {
		out = append(out, primePower{p: new(big.Int).SetUint64(m), e: 1})
	}
	return out
}

// factorScalar factors a positive rational; denominator primes carry
// negative exponents.
func factorScalar(v Scalar) []primePower {
	out := factorInt(v.re)
	for _, f := range factorInt(v.den) {
		out = append(out, primePower{p: f.p, e: -f.e})
	}
	return out
}

func primePow(p *big.Int, e int) Scalar {
	if e >= 0 {
		return Scalar{re: new(big.Int).Exp(p, big.NewInt(int64(e)), nil), im: new(big.Int), den: big.NewInt(1)}
	}
	return Scalar{re: big.NewInt(1), im: new(big.Int), den: new(big.Int).Exp(p, big.NewInt(int64(-e)), nil)}
}

func floorDivMod(a, b int) (int, int) {
	q, r := a/b, a%b
	if r < 0 {
		q--
		r += b
	}
	return q, r
}

func gcdInt(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// SimplifyRadical rewrites scale·value^(1/root) as coef·radicand^(1/r)
// where no prime of the radicand has exponent ≥ r. The radicand is a
// positive integer except for even roots of negative values (r ≥ 4), which
// keep a negative radicand, and Gaussian values, which are returned as is.
func SimplifyRadical(value Scalar, root int, scale Scalar) (coef, radicand Scalar, r int) {
	if root <= 1 {
		return scale.Mul(value), ScalarInt(1), 1
	}
	if value.IsZero() {
		return ScalarInt(0), ScalarInt(1), 1
	}
	if !value.IsReal() {
		return scale, value, root
	}
	negative := value.Negative()
	if negative {
		value = value.Neg()
		switch {
		case root%2 == 1:
			scale, negative = scale.Neg(), false
		case root == 2:
			scale, negative = scale.Mul(imagUnit), false
		}
	}
	factors := factorScalar(value)
	if !negative {
		g := root
		for _, f := range factors {
			g = gcdInt(g, f.e)
		}
		if g > 1 {
			root /= g
			for i := range factors {
				factors[i].e /= g
			}
		}
	}
	coef, radicand = scale, ScalarInt(1)
	for _, f := range factors {
		q, rem := floorDivMod(f.e, root)
		coef = coef.Mul(primePow(f.p, q))
		radicand = radicand.Mul(primePow(f.p, rem))
	}
	if negative {
		radicand = radicand.Neg()
	}
	if root == 1 {
		return coef.Mul(radicand), ScalarInt(1), 1
	}
	return coef, radicand, root
}

// NthRoot returns the real nth root for odd n and negative real x, the
// principal complex root otherwise.
func NthRoot(x complex128, n int) complex128 {
	if n < 1 {
		return cmplx.NaN()
	}
	if imag(x) == 0 {
		if real(x) >= 0 {
			return complex(math.Pow(real(x), 1/float64(n)), 0)
		}
		if n%2 == 1 {
			return complex(-math.Pow(-real(x), 1/float64(n)), 0)
		}
	}
	return cmplx.Pow(x, complex(1/float64(n), 0))
}
