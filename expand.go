package gocas

import (
	"math"
	"math/cmplx"
	"sort"
)

// ============================================================
// Expand / Substitute / Approx
// ============================================================

// maxExpandPower is the largest integer power of a Sum that Expand
// multiplies out; higher powers stay as written.
const maxExpandPower = 64

// Expand distributes products over sums and multiplies out integer powers
// of sums. Quotients of polynomials are divided exactly when possible and
// otherwise reduced by their gcd.
func Expand(n Node) Node {
	switch v := n.(type) {
	case *Sum:
		terms := make([]Node, len(v.terms))
		for i, t := range v.terms {
			terms[i] = Expand(t)
		}
		return AddOf(terms...)
	case *Power:
		return expandPower(v)
	case *Product:
		num, den := Node(one), Node(one)
		for _, f := range v.factors {
			if p, ok := f.(*Power); ok && isNegativeExp(p.exp) {
				den = multiplyOut(den, Expand(PowOf(p.base, Neg(p.exp))))
				continue
			}
			num = multiplyOut(num, Expand(f))
		}
		return divideExpanded(num, den)
	}
	return n
}

func expandPower(p *Power) Node {
	base := Expand(p.base)
	e, ok := constValue(p.exp)
	if !ok || !e.IsReal() {
		return PowOf(base, Expand(p.exp))
	}
	if e.Negative() {
		return divideExpanded(one, expandPower(newPower(base, C(e.Neg()))))
	}
	if _, isSum := base.(*Sum); !isSum {
		return PowOf(base, p.exp)
	}
	if n, ok := e.Int64(); ok {
		if n > maxExpandPower {
			return PowOf(base, p.exp)
		}
		out := base
		for i := int64(1); i < n; i++ {
			out = multiplyOut(out, base)
		}
		return out
	}
	if e.re.IsInt64() && e.re.Int64() > 1 && e.re.Int64() <= maxExpandPower {
		inner := Expand(PowOf(base, C(ScalarInt(e.re.Int64()))))
		return PowOf(inner, C(newScalar(bigOne, bigZero, e.Den())))
	}
	return PowOf(base, p.exp)
}

// divideExpanded forms num/den, dividing exactly when den divides num and
// cancelling their gcd otherwise.
func divideExpanded(num, den Node) Node {
	if isOne(den) {
		return num
	}
	if c, ok := constValue(den); ok {
		return MulOf(num, C(ScalarInt(1).mustDiv(c)))
	}
	if IsPolynomial(num) && IsPolynomial(den) {
		if q, r, err := LongDivision(num, den); err == nil && isZero(r) {
			return q
		}
		if g := GCD(num, den); !isConstant(g) {
			if qn, qd := exactQuotient(num, g), exactQuotient(den, g); qn != nil && qd != nil {
				return quo(qn, qd)
			}
		}
	}
	return quo(num, den)
}

func isConstant(n Node) bool {
	_, ok := n.(*Const)
	return ok
}

// Subs replaces symbols by nodes and expands the result. Arithmetic
// failures such as a zero divisor are returned as errors.
func Subs(n Node, m map[string]Node) (out Node, err error) {
	defer recoverKernel(&err)
	return Expand(substitute(n, m)), nil
}

// Substitute is Subs for a single symbol.
func Substitute(n Node, name string, value Node) (Node, error) {
	return Subs(n, map[string]Node{name: value})
}

func substitute(n Node, m map[string]Node) Node {
	switch v := n.(type) {
	case *Symbol:
		if r, ok := m[v.name]; ok {
			return r
		}
	case *Sum:
		terms := make([]Node, len(v.terms))
		for i, t := range v.terms {
			terms[i] = substitute(t, m)
		}
		return AddOf(terms...)
	case *Product:
		fs := make([]Node, len(v.factors))
		for i, f := range v.factors {
			fs[i] = substitute(f, m)
		}
		return MulOf(fs...)
	case *Power:
		return PowOf(substitute(v.base, m), substitute(v.exp, m))
	}
	return n
}

// Approx evaluates a symbol-free node in complex128. Negative real bases
// under odd roots use the real root.
func Approx(n Node) (complex128, bool) {
	switch v := n.(type) {
	case *Const:
		return v.v.Complex128(), true
	case *Sum:
		var acc complex128
		for _, t := range v.terms {
			x, ok := Approx(t)
			if !ok {
				return 0, false
			}
			acc += x
		}
		return acc, isFinite(acc)
	case *Product:
		acc := complex(1, 0)
		for _, f := range v.factors {
			x, ok := Approx(f)
			if !ok {
				return 0, false
			}
			acc *= x
		}
		return acc, isFinite(acc)
	case *Power:
		b, ok := Approx(v.base)
		if !ok {
			return 0, false
		}
		x, ok := approxPow(b, v.exp)
		return x, ok && isFinite(x)
	}
	return 0, false
}

func approxPow(b complex128, exp Node) (complex128, bool) {
	if e, ok := constValue(exp); ok && e.IsReal() && imag(b) == 0 {
		f := e.Float64()
		switch {
		case real(b) == 0 && f < 0:
			return 0, false
		case real(b) >= 0:
			return complex(math.Pow(real(b), f), 0), true
		case e.den.Bit(0) == 1:
			m := math.Pow(-real(b), f)
			if e.re.Bit(0) == 1 {
				m = -m
			}
			return complex(m, 0), true
		}
	}
	x, ok := Approx(exp)
	if !ok {
		return 0, false
	}
	if b == 0 {
		if real(x) > 0 {
			return 0, true
		}
		return 0, false
	}
	return cmplx.Pow(b, x), true
}

// Symbols returns the sorted names of every symbol in the nodes.
func Symbols(nodes ...Node) []string {
	seen := map[string]bool{}
	for _, n := range nodes {
		collectSymbols(n, seen)
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// FreeSymbols is the symbol set of n.
func FreeSymbols(n Node) map[string]bool {
	seen := map[string]bool{}
	collectSymbols(n, seen)
	return seen
}

func collectSymbols(n Node, seen map[string]bool) {
	switch v := n.(type) {
	case *Symbol:
		seen[v.name] = true
	case *Sum:
		for _, t := range v.terms {
			collectSymbols(t, seen)
		}
	case *Product:
		for _, f := range v.factors {
			collectSymbols(f, seen)
		}
	case *Power:
		collectSymbols(v.base, seen)
		collectSymbols(v.exp, seen)
	}
}

// Contains reports whether symbol name occurs in n.
func Contains(n Node, name string) bool {
	switch v := n.(type) {
	case *Symbol:
		return v.name == name
	case *Sum:
		for _, t := range v.terms {
			if Contains(t, name) {
				return true
			}
		}
	case *Product:
		for _, f := range v.factors {
			if Contains(f, name) {
				return true
			}
		}
	case *Power:
		return Contains(v.base, name) || Contains(v.exp, name)
	}
	return false
}
